package models

import "fmt"

// Currency is the closed set of currencies a balance can be held in.
type Currency string

const (
	CurrencyUSD  Currency = "USD"
	CurrencyEUR  Currency = "EUR"
	CurrencyAUD  Currency = "AUD"
	CurrencyCAD  Currency = "CAD"
	CurrencyARS  Currency = "ARS"
	CurrencyPLN  Currency = "PLN"
	CurrencyBTC  Currency = "BTC"
	CurrencyETH  Currency = "ETH"
	CurrencyDOGE Currency = "DOGE"
	CurrencyUSDT Currency = "USDT"
)

// Currencies lists every supported currency. A user gets one zero balance
// per entry at creation time, so the order here is the seeding order.
func Currencies() []Currency {
	return []Currency{
		CurrencyUSD, CurrencyEUR, CurrencyAUD, CurrencyCAD, CurrencyARS,
		CurrencyPLN, CurrencyBTC, CurrencyETH, CurrencyDOGE, CurrencyUSDT,
	}
}

// ParseCurrency rejects anything outside the supported set.
func ParseCurrency(s string) (Currency, error) {
	switch Currency(s) {
	case CurrencyUSD, CurrencyEUR, CurrencyAUD, CurrencyCAD, CurrencyARS,
		CurrencyPLN, CurrencyBTC, CurrencyETH, CurrencyDOGE, CurrencyUSDT:
		return Currency(s), nil
	}
	return "", fmt.Errorf("unsupported currency %q", s)
}

// UserStatus is the closed set of user lifecycle states.
type UserStatus string

const (
	UserStatusActive  UserStatus = "ACTIVE"
	UserStatusBlocked UserStatus = "BLOCKED"
)

func ParseUserStatus(s string) (UserStatus, error) {
	switch UserStatus(s) {
	case UserStatusActive, UserStatusBlocked:
		return UserStatus(s), nil
	}
	return "", fmt.Errorf("unknown user status %q", s)
}

// TransactionStatus is the closed set of transaction states. The only legal
// transition is Processed -> Rollbacked, and Rollbacked is terminal.
type TransactionStatus string

const (
	TransactionStatusProcessed  TransactionStatus = "PROCESSED"
	TransactionStatusRollbacked TransactionStatus = "ROLLBACKED"
)

func ParseTransactionStatus(s string) (TransactionStatus, error) {
	switch TransactionStatus(s) {
	case TransactionStatusProcessed, TransactionStatusRollbacked:
		return TransactionStatus(s), nil
	}
	return "", fmt.Errorf("unknown transaction status %q", s)
}

// TransactionType carries the direction of a transaction. Amounts are stored
// as positive magnitudes; the type decides the sign of the balance delta.
type TransactionType string

const (
	TransactionTypeDeposit  TransactionType = "DEPOSIT"
	TransactionTypeWithdraw TransactionType = "WITHDRAW"
)

func ParseTransactionType(s string) (TransactionType, error) {
	switch TransactionType(s) {
	case TransactionTypeDeposit, TransactionTypeWithdraw:
		return TransactionType(s), nil
	}
	return "", fmt.Errorf("unknown transaction type %q", s)
}
