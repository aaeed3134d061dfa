package common

import (
	"context"
	"log"
	"strings"

	"account-ledger-go/internal/analysis"
	"account-ledger-go/internal/api"
	"account-ledger-go/internal/config"
	"account-ledger-go/internal/database"
	"account-ledger-go/internal/models"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// init loads environment variables from .env file if it exists
func init() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Note: No .env file found or unable to load it: %v\n", err)
	}
}

type Services struct {
	Store    *database.Service
	Ledger   *api.LedgerService
	Analyzer *analysis.Analyzer
}

func InitializeLogger() (*zap.Logger, func()) {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	zap.ReplaceGlobals(logger)

	cleanup := func() {
		if err := logger.Sync(); err != nil {
			if !isIgnorableSyncError(err) {
				log.Printf("Failed to sync logger: %v\n", err)
			}
		}
	}

	return logger, cleanup
}

func InitializeServices(ctx context.Context, cfg *models.Config) (*Services, error) {
	dbService, err := database.NewService(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	rates, err := config.LoadRates(cfg.Analysis.RatesFile)
	if err != nil {
		dbService.Close()
		return nil, err
	}
	zap.L().Info("Loaded exchange rate table", zap.String("version", rates.Version))

	return &Services{
		Store:    dbService,
		Ledger:   api.NewLedgerService(dbService),
		Analyzer: analysis.NewAnalyzer(dbService, rates),
	}, nil
}

func (cs *Services) Close() {
	if cs.Store != nil {
		cs.Store.Close()
	}
}

func isIgnorableSyncError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "sync /dev/stderr: inappropriate ioctl for device") ||
		strings.Contains(msg, "sync /dev/stdout: inappropriate ioctl for device")
}
