package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"account-ledger-go/internal/models"
	"account-ledger-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// GetBalance returns the balance row for a (user, currency) pair.
func (s *Service) GetBalance(ctx context.Context, userID int64, currency models.Currency) (*models.Balance, error) {
	balance, err := scanBalance(s.db.QueryRowContext(ctx, queryGetBalance, userID, currency))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: balance for user %d currency %s", store.ErrNotFound, userID, currency)
		}
		zap.L().Error("Failed to get balance",
			zap.Int64("user_id", userID),
			zap.String("currency", string(currency)),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get balance: %w", err)
	}
	return balance, nil
}

// GetUserBalances returns all balance rows for a user, one per supported
// currency.
func (s *Service) GetUserBalances(ctx context.Context, userID int64) ([]models.Balance, error) {
	rows, err := s.db.QueryContext(ctx, queryGetUserBalances, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get balances: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	var balances []models.Balance
	for rows.Next() {
		balance, err := scanBalance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan balance: %w", err)
		}
		balances = append(balances, *balance)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating balance rows: %w", err)
	}
	return balances, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBalance(row rowScanner) (*models.Balance, error) {
	var balance models.Balance
	var amountStr string
	if err := row.Scan(&balance.ID, &balance.UserID, &balance.Currency, &amountStr,
		&balance.Version, &balance.Created); err != nil {
		return nil, err
	}
	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse balance %q: %w", amountStr, err)
	}
	balance.Amount = amount
	return &balance, nil
}

// applyBalanceDelta performs the serialized read-modify-write on a single
// balance row inside the caller's transaction. A delta that would drive the
// amount negative is rejected with no write. The version column guards
// against lost updates from concurrent writers.
func applyBalanceDelta(ctx context.Context, tx *sql.Tx, userID int64, currency models.Currency, delta decimal.Decimal) (decimal.Decimal, error) {
	var balanceID, version int64
	var amountStr string
	err := tx.QueryRowContext(ctx, queryGetBalanceForUpdate, userID, currency).Scan(&balanceID, &amountStr, &version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, fmt.Errorf("%w: balance for user %d currency %s", store.ErrNotFound, userID, currency)
		}
		return decimal.Zero, fmt.Errorf("failed to load balance: %w", err)
	}

	current, err := decimal.NewFromString(amountStr)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse balance %q: %w", amountStr, err)
	}

	next := current.Add(delta)
	if next.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: %s %s would become %s",
			store.ErrNegativeBalance, currency, current, next)
	}

	result, err := tx.ExecContext(ctx, queryUpdateBalance, next.String(), balanceID, version)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to update balance: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return decimal.Zero, fmt.Errorf("balance update failed - %w", store.ErrConcurrentModification)
	}

	return next, nil
}

// ReconcileBalance verifies that the balance row matches the sum of signed
// amounts of currently PROCESSED transactions. Rolled-back transactions do
// not contribute.
func (s *Service) ReconcileBalance(ctx context.Context, userID int64, currency models.Currency) error {
	balance, err := s.GetBalance(ctx, userID, currency)
	if err != nil {
		return fmt.Errorf("failed to get current balance: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, queryGetProcessedAmounts, userID, currency)
	if err != nil {
		return fmt.Errorf("failed to query processed transactions: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	calculated := decimal.Zero
	for rows.Next() {
		var txType models.TransactionType
		var amountStr string
		if err := rows.Scan(&txType, &amountStr); err != nil {
			return fmt.Errorf("failed to scan transaction amount: %w", err)
		}
		amount, err := decimal.NewFromString(amountStr)
		if err != nil {
			return fmt.Errorf("failed to parse amount %q: %w", amountStr, err)
		}
		if txType == models.TransactionTypeWithdraw {
			amount = amount.Neg()
		}
		calculated = calculated.Add(amount)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating transaction rows: %w", err)
	}

	if !balance.Amount.Equal(calculated) {
		zap.L().Error("Balance reconciliation failed",
			zap.Int64("user_id", userID),
			zap.String("currency", string(currency)),
			zap.String("current_balance", balance.Amount.String()),
			zap.String("calculated_balance", calculated.String()))
		return fmt.Errorf("balance mismatch: current=%s, calculated=%s", balance.Amount, calculated)
	}

	return nil
}
