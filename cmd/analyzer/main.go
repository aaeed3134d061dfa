/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"
	"time"

	"account-ledger-go/internal/common"
	"account-ledger-go/internal/config"

	"go.uber.org/zap"
)

// The analyzer recomputes the weekly statistics snapshot on a fixed cadence
// so HTTP reads can serve the cached report. Run with -once for a single
// recomputation (useful from cron).
func main() {
	once := flag.Bool("once", false, "Recompute the analysis snapshot once and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		_, _ = zap.NewProduction()
		zap.L().Fatal("Failed to load configuration", zap.Error(err))
	}

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	recompute := func() {
		start := time.Now()
		stats, err := services.Analyzer.RecomputeAndPublish(ctx)
		if err != nil {
			zap.L().Error("Analysis recomputation failed", zap.Error(err))
			return
		}
		zap.L().Info("Analysis snapshot published",
			zap.Int("windows", len(stats)),
			zap.Duration("took", time.Since(start)))
	}

	recompute()
	if *once {
		return
	}

	zap.L().Info("Starting periodic analysis", zap.Duration("interval", cfg.Analysis.Interval))
	ticker := time.NewTicker(cfg.Analysis.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			recompute()
		case <-ctx.Done():
			zap.L().Info("Analyzer stopping")
			return
		}
	}
}
