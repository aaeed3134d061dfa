package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// User represents an account holder. Users are never hard-deleted; blocking
// is the only way to take one out of service.
type User struct {
	ID       int64      `db:"id"`
	Email    string     `db:"email"`
	Status   UserStatus `db:"status"`
	Created  time.Time  `db:"created"`
	Balances []Balance
}

// Balance is the current amount a user holds in one currency. Exactly one
// row exists per (user, currency) pair, created when the user is created.
type Balance struct {
	ID       int64           `db:"id"`
	UserID   int64           `db:"user_id"`
	Currency Currency        `db:"currency"`
	Amount   decimal.Decimal `db:"amount"`
	Version  int64           `db:"version"`
	Created  time.Time       `db:"created"`
}

// Transaction is an immutable history record. Amount is the positive
// magnitude; Type carries the direction. Status is the only field that ever
// changes after insert.
type Transaction struct {
	ID       int64             `db:"id"`
	UserID   int64             `db:"user_id"`
	Currency Currency          `db:"currency"`
	Amount   decimal.Decimal   `db:"amount"`
	Status   TransactionStatus `db:"status"`
	Type     TransactionType   `db:"type"`
	Created  time.Time         `db:"created"`
}

// SignedAmount returns the balance delta this transaction applied:
// positive for deposits, negative for withdrawals.
func (t Transaction) SignedAmount() decimal.Decimal {
	if t.Type == TransactionTypeWithdraw {
		return t.Amount.Neg()
	}
	return t.Amount
}

// WeeklyStat is one trailing seven-day window of the analysis report.
// Dates are inclusive and formatted as YYYY-MM-DD.
type WeeklyStat struct {
	StartDate                                   string          `json:"start_date"`
	EndDate                                     string          `json:"end_date"`
	RegisteredUsersCount                        int             `json:"registered_users_count"`
	RegisteredAndDepositUsersCount              int             `json:"registered_and_deposit_users_count"`
	RegisteredAndNotRollbackedDepositUsersCount int             `json:"registered_and_not_rollbacked_deposit_users_count"`
	NotRollbackedDepositAmount                  decimal.Decimal `json:"not_rollbacked_deposit_amount"`
	NotRollbackedWithdrawAmount                 decimal.Decimal `json:"not_rollbacked_withdraw_amount"`
	TransactionsCount                           int             `json:"transactions_count"`
	NotRollbackedTransactionsCount              int             `json:"not_rollbacked_transactions_count"`
}

// HasActivity reports whether any of the numeric fields is strictly
// positive. All-zero windows are dropped from the report.
func (s WeeklyStat) HasActivity() bool {
	return s.RegisteredUsersCount > 0 ||
		s.RegisteredAndDepositUsersCount > 0 ||
		s.RegisteredAndNotRollbackedDepositUsersCount > 0 ||
		s.NotRollbackedDepositAmount.IsPositive() ||
		s.NotRollbackedWithdrawAmount.IsPositive() ||
		s.TransactionsCount > 0 ||
		s.NotRollbackedTransactionsCount > 0
}

// RateTable maps currencies to fixed USD exchange rates used for report
// normalization only. It is injected configuration, not live market data.
type RateTable struct {
	Version string
	Rates   map[Currency]decimal.Decimal
}

// Rate returns the USD rate for a currency.
func (r RateTable) Rate(c Currency) (decimal.Decimal, bool) {
	rate, ok := r.Rates[c]
	return rate, ok
}
