package api

import "errors"

// Service-level sentinel errors. Store-level conditions (not found,
// duplicate email, negative balance) surface as the store package sentinels.
var (
	// ErrValidation covers malformed input: empty email, zero or negative
	// amounts, unsupported currencies, negative ids, unknown enum values.
	ErrValidation = errors.New("invalid request")

	// ErrUserBlocked rejects deposits, withdrawals and rollbacks for a
	// blocked user.
	ErrUserBlocked = errors.New("user is blocked")

	// ErrTransactionMismatch rejects a rollback when the transaction does
	// not belong to the given user.
	ErrTransactionMismatch = errors.New("transaction does not belong to user")

	// ErrSameStatus rejects a status update that would not change anything.
	// No-op transitions are explicit failures, not silent successes.
	ErrSameStatus = errors.New("user already in requested status")
)
