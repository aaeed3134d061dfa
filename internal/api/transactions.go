package api

import (
	"context"
	"fmt"

	"account-ledger-go/internal/models"
	"account-ledger-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Deposit credits the user's balance and records a DEPOSIT transaction.
func (s *LedgerService) Deposit(ctx context.Context, userID int64, currency string, amount decimal.Decimal) (*models.Transaction, error) {
	return s.createTransaction(ctx, userID, currency, amount, models.TransactionTypeDeposit)
}

// Withdraw debits the user's balance and records a WITHDRAW transaction.
// A withdrawal that would drive the balance negative is rejected and
// nothing is recorded.
func (s *LedgerService) Withdraw(ctx context.Context, userID int64, currency string, amount decimal.Decimal) (*models.Transaction, error) {
	return s.createTransaction(ctx, userID, currency, amount, models.TransactionTypeWithdraw)
}

func (s *LedgerService) createTransaction(ctx context.Context, userID int64, rawCurrency string, amount decimal.Decimal, txType models.TransactionType) (*models.Transaction, error) {
	currency, err := models.ParseCurrency(rawCurrency)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive, got %s", ErrValidation, amount)
	}

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Status != models.UserStatusActive {
		return nil, fmt.Errorf("%w: user %d", ErrUserBlocked, userID)
	}

	return s.store.ApplyTransaction(ctx, store.ApplyTransactionParams{
		UserID:   userID,
		Currency: currency,
		Type:     txType,
		Amount:   amount,
	})
}

// Rollback reverses a PROCESSED transaction owned by the given user. The
// inverse delta goes through the same non-negative balance check as any
// other mutation: if intervening activity already spent the funds, the
// rollback is rejected and the transaction stays PROCESSED.
func (s *LedgerService) Rollback(ctx context.Context, userID, transactionID int64) (*models.Transaction, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Status == models.UserStatusBlocked {
		return nil, fmt.Errorf("%w: user %d", ErrUserBlocked, userID)
	}

	transaction, err := s.store.GetTransaction(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if transaction.UserID != userID {
		return nil, fmt.Errorf("%w: transaction %d, user %d", ErrTransactionMismatch, transactionID, userID)
	}
	if transaction.Status == models.TransactionStatusRollbacked {
		return nil, fmt.Errorf("%w: transaction %d", store.ErrAlreadyRolledBack, transactionID)
	}

	rolledBack, err := s.store.RollbackTransaction(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	zap.L().Info("Rollback completed",
		zap.Int64("transaction_id", transactionID),
		zap.Int64("user_id", userID),
		zap.String("type", string(rolledBack.Type)),
		zap.String("amount", rolledBack.Amount.String()))
	return rolledBack, nil
}

// ListTransactions returns transactions newest first, optionally scoped to
// one user.
func (s *LedgerService) ListTransactions(ctx context.Context, userID *int64) ([]models.Transaction, error) {
	return s.store.ListTransactions(ctx, userID)
}
