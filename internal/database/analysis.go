package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"account-ledger-go/internal/models"
	"account-ledger-go/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

// CountUsersRegistered counts users created within the window, compared by
// calendar date, inclusive on both ends.
func (s *Service) CountUsersRegistered(ctx context.Context, from, to time.Time) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, queryCountUsersRegistered,
		from.Format(dateLayout), to.Format(dateLayout)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count registered users: %w", err)
	}
	return count, nil
}

// CountRegisteredDepositUsers counts users registered in the window that
// made at least one deposit in the same window. With processedOnly set,
// rolled-back deposits do not count.
func (s *Service) CountRegisteredDepositUsers(ctx context.Context, from, to time.Time, processedOnly bool) (int, error) {
	query := queryCountRegisteredDepositUsers
	if processedOnly {
		query = queryCountRegisteredProcessedDepositUsers
	}

	fromDate := from.Format(dateLayout)
	toDate := to.Format(dateLayout)

	var count int
	err := s.db.QueryRowContext(ctx, query, fromDate, toDate, fromDate, toDate).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count deposit users: %w", err)
	}
	return count, nil
}

// SumTransactionAmounts sums per-currency magnitudes of non-rolled-back
// transactions of the given type within the window. Summation happens here
// in decimal rather than in SQL so no precision is lost on the TEXT-stored
// amounts.
func (s *Service) SumTransactionAmounts(ctx context.Context, from, to time.Time, txType models.TransactionType) (map[models.Currency]decimal.Decimal, error) {
	rows, err := s.db.QueryContext(ctx, querySumTransactionAmounts,
		from.Format(dateLayout), to.Format(dateLayout), txType)
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction amounts: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	sums := make(map[models.Currency]decimal.Decimal)
	for rows.Next() {
		var currency models.Currency
		var amountStr string
		if err := rows.Scan(&currency, &amountStr); err != nil {
			return nil, fmt.Errorf("failed to scan amount row: %w", err)
		}
		amount, err := decimal.NewFromString(amountStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse amount %q: %w", amountStr, err)
		}
		sums[currency] = sums[currency].Add(amount)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating amount rows: %w", err)
	}
	return sums, nil
}

// CountTransactions counts transactions within the window. With
// processedOnly set, rolled-back transactions are excluded.
func (s *Service) CountTransactions(ctx context.Context, from, to time.Time, processedOnly bool) (int, error) {
	query := queryCountTransactions
	if processedOnly {
		query = queryCountProcessedTransactions
	}

	var count int
	err := s.db.QueryRowContext(ctx, query,
		from.Format(dateLayout), to.Format(dateLayout)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return count, nil
}

// SaveAnalysisSnapshot replaces the cached report with a new payload. Only
// the latest snapshot is kept.
func (s *Service) SaveAnalysisSnapshot(ctx context.Context, payload []byte) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, queryDeleteSnapshots); err != nil {
		return fmt.Errorf("failed to clear old snapshots: %w", err)
	}
	if _, err := tx.ExecContext(ctx, queryInsertSnapshot,
		uuid.New().String(), string(payload), time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to insert snapshot: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}

	zap.L().Info("Analysis snapshot saved", zap.Int("payload_bytes", len(payload)))
	return nil
}

// GetAnalysisSnapshot returns the latest cached report payload.
func (s *Service) GetAnalysisSnapshot(ctx context.Context) ([]byte, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, queryGetLatestSnapshot).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNoSnapshot
		}
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	return []byte(payload), nil
}
