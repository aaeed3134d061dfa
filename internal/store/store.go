package store

import (
	"context"
	"errors"
	"time"

	"account-ledger-go/internal/models"

	"github.com/shopspring/decimal"
)

// Sentinel errors shared across all backend implementations.
var (
	ErrNotFound               = errors.New("not found")
	ErrEmailExists            = errors.New("email already exists")
	ErrNegativeBalance        = errors.New("negative balance")
	ErrAlreadyRolledBack      = errors.New("transaction already rolled back")
	ErrConcurrentModification = errors.New("concurrent modification detected")
	ErrNoSnapshot             = errors.New("no analysis snapshot")
)

// UserFilter narrows a user listing. Nil fields are ignored.
type UserFilter struct {
	ID     *int64
	Email  *string
	Status *models.UserStatus
}

// ApplyTransactionParams describes a deposit or withdrawal to record.
// Amount is the positive magnitude; Type decides the sign of the balance
// delta.
type ApplyTransactionParams struct {
	UserID   int64
	Currency models.Currency
	Type     models.TransactionType
	Amount   decimal.Decimal
}

// LedgerStore defines the contract the persistence backend must satisfy.
// Every balance mutation is atomic with the transaction record it pairs
// with: either both commit or neither does.
type LedgerStore interface {
	// --- Users ---
	CreateUser(ctx context.Context, email string) (*models.User, error)
	GetUser(ctx context.Context, userID int64) (*models.User, error)
	ListUsers(ctx context.Context, filter UserFilter) ([]models.User, error)
	UpdateUserStatus(ctx context.Context, userID int64, status models.UserStatus) (*models.User, error)

	// --- Balances ---
	GetBalance(ctx context.Context, userID int64, currency models.Currency) (*models.Balance, error)
	GetUserBalances(ctx context.Context, userID int64) ([]models.Balance, error)
	ReconcileBalance(ctx context.Context, userID int64, currency models.Currency) error

	// --- Transactions ---
	ApplyTransaction(ctx context.Context, params ApplyTransactionParams) (*models.Transaction, error)
	RollbackTransaction(ctx context.Context, transactionID int64) (*models.Transaction, error)
	GetTransaction(ctx context.Context, transactionID int64) (*models.Transaction, error)
	ListTransactions(ctx context.Context, userID *int64) ([]models.Transaction, error)

	// --- Analysis window queries ---
	CountUsersRegistered(ctx context.Context, from, to time.Time) (int, error)
	CountRegisteredDepositUsers(ctx context.Context, from, to time.Time, processedOnly bool) (int, error)
	SumTransactionAmounts(ctx context.Context, from, to time.Time, txType models.TransactionType) (map[models.Currency]decimal.Decimal, error)
	CountTransactions(ctx context.Context, from, to time.Time, processedOnly bool) (int, error)

	// --- Analysis snapshot ---
	SaveAnalysisSnapshot(ctx context.Context, payload []byte) error
	GetAnalysisSnapshot(ctx context.Context) ([]byte, error)

	// --- Lifecycle ---
	Close()
}
