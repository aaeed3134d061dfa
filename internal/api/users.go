package api

import (
	"context"
	"fmt"
	"strings"

	"account-ledger-go/internal/models"
	"account-ledger-go/internal/store"

	"go.uber.org/zap"
)

// CreateUser strips all whitespace from the email, rejects an empty result,
// and creates the user together with its seeded zero balances.
func (s *LedgerService) CreateUser(ctx context.Context, email string) (*models.User, error) {
	normalized := strings.Join(strings.Fields(email), "")
	if normalized == "" {
		return nil, fmt.Errorf("%w: email must not be empty", ErrValidation)
	}

	user, err := s.store.CreateUser(ctx, normalized)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// ListUsers returns users matching the optional filters, with balances.
func (s *LedgerService) ListUsers(ctx context.Context, userID *int64, email, status *string) ([]models.User, error) {
	filter := store.UserFilter{ID: userID, Email: email}
	if status != nil {
		parsed, err := models.ParseUserStatus(*status)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		filter.Status = &parsed
	}
	return s.store.ListUsers(ctx, filter)
}

// SetUserStatus toggles a user between ACTIVE and BLOCKED. Setting the
// status the user already has is an error, not a no-op.
func (s *LedgerService) SetUserStatus(ctx context.Context, userID int64, rawStatus string) (*models.User, error) {
	if userID < 0 {
		return nil, fmt.Errorf("%w: user id must not be negative", ErrValidation)
	}

	status, err := models.ParseUserStatus(rawStatus)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Status == status {
		return nil, fmt.Errorf("%w: user %d is already %s", ErrSameStatus, userID, status)
	}

	updated, err := s.store.UpdateUserStatus(ctx, userID, status)
	if err != nil {
		return nil, err
	}

	zap.L().Info("User status changed",
		zap.Int64("user_id", userID),
		zap.String("from", string(user.Status)),
		zap.String("to", string(status)))
	return updated, nil
}
