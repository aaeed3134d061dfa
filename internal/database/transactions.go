package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"account-ledger-go/internal/models"
	"account-ledger-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ApplyTransaction atomically applies the balance delta and records the
// transaction row. If the delta is rejected, no row is written; if the
// insert fails, the delta does not commit.
func (s *Service) ApplyTransaction(ctx context.Context, params store.ApplyTransactionParams) (*models.Transaction, error) {
	zap.L().Info("Processing transaction",
		zap.Int64("user_id", params.UserID),
		zap.String("currency", string(params.Currency)),
		zap.String("type", string(params.Type)),
		zap.String("amount", params.Amount.String()))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	delta := params.Amount
	if params.Type == models.TransactionTypeWithdraw {
		delta = delta.Neg()
	}

	newBalance, err := applyBalanceDelta(ctx, tx, params.UserID, params.Currency, delta)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	result, err := tx.ExecContext(ctx, queryInsertTransaction,
		params.UserID, params.Currency, params.Amount.String(),
		models.TransactionStatusProcessed, params.Type, now)
	if err != nil {
		return nil, fmt.Errorf("failed to insert transaction: %w", err)
	}

	transactionID, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get inserted transaction id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	zap.L().Info("Transaction processed successfully",
		zap.Int64("transaction_id", transactionID),
		zap.Int64("user_id", params.UserID),
		zap.String("currency", string(params.Currency)),
		zap.String("new_balance", newBalance.String()))

	return &models.Transaction{
		ID:       transactionID,
		UserID:   params.UserID,
		Currency: params.Currency,
		Amount:   params.Amount,
		Status:   models.TransactionStatusProcessed,
		Type:     params.Type,
		Created:  now,
	}, nil
}

// RollbackTransaction applies the inverse balance delta and flips the
// transaction to ROLLBACKED, both in one commit. The status guard is
// re-checked inside the transaction, so concurrent rollbacks of the same
// row cannot both succeed. A rejected inverse delta leaves the transaction
// PROCESSED.
func (s *Service) RollbackTransaction(ctx context.Context, transactionID int64) (*models.Transaction, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	target, err := scanTransaction(tx.QueryRowContext(ctx, queryGetTransaction, transactionID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: transaction %d", store.ErrNotFound, transactionID)
		}
		return nil, fmt.Errorf("failed to load transaction: %w", err)
	}

	if target.Status == models.TransactionStatusRollbacked {
		return nil, fmt.Errorf("%w: transaction %d", store.ErrAlreadyRolledBack, transactionID)
	}

	// Inverse delta: a rolled-back deposit gives the money back out, a
	// rolled-back withdrawal returns it.
	inverse := target.SignedAmount().Neg()
	if _, err := applyBalanceDelta(ctx, tx, target.UserID, target.Currency, inverse); err != nil {
		return nil, err
	}

	result, err := tx.ExecContext(ctx, queryMarkTransactionRolledBack, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to mark transaction rolled back: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, fmt.Errorf("%w: transaction %d", store.ErrAlreadyRolledBack, transactionID)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit rollback: %w", err)
	}

	zap.L().Info("Transaction rolled back",
		zap.Int64("transaction_id", transactionID),
		zap.Int64("user_id", target.UserID),
		zap.String("currency", string(target.Currency)),
		zap.String("amount", target.Amount.String()))

	target.Status = models.TransactionStatusRollbacked
	return target, nil
}

func (s *Service) GetTransaction(ctx context.Context, transactionID int64) (*models.Transaction, error) {
	transaction, err := scanTransaction(s.db.QueryRowContext(ctx, queryGetTransaction, transactionID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: transaction %d", store.ErrNotFound, transactionID)
		}
		return nil, fmt.Errorf("unable to query transaction: %w", err)
	}
	return transaction, nil
}

// ListTransactions returns transactions newest first, optionally filtered by
// owning user.
func (s *Service) ListTransactions(ctx context.Context, userID *int64) ([]models.Transaction, error) {
	var rows *sql.Rows
	var err error
	if userID != nil {
		rows, err = s.db.QueryContext(ctx, queryListTransactionsByUser, *userID)
	} else {
		rows, err = s.db.QueryContext(ctx, queryListTransactions)
	}
	if err != nil {
		return nil, fmt.Errorf("unable to query transactions: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	var transactions []models.Transaction
	for rows.Next() {
		transaction, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, *transaction)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction rows: %w", err)
	}
	return transactions, nil
}

func scanTransaction(row rowScanner) (*models.Transaction, error) {
	var transaction models.Transaction
	var amountStr string
	if err := row.Scan(&transaction.ID, &transaction.UserID, &transaction.Currency,
		&amountStr, &transaction.Status, &transaction.Type, &transaction.Created); err != nil {
		return nil, err
	}
	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse amount %q: %w", amountStr, err)
	}
	transaction.Amount = amount
	return &transaction, nil
}
