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

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"account-ledger-go/internal/models"
	"account-ledger-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CreateUser inserts a user and seeds a zero balance for every supported
// currency in one database transaction. A user is never observable with a
// partial balance set. The returned user carries the seeded balances.
func (s *Service) CreateUser(ctx context.Context, email string) (*models.User, error) {
	zap.L().Info("Creating user", zap.String("email", email))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var existingID int64
	err = tx.QueryRowContext(ctx, queryGetUserByEmail, email).Scan(&existingID)
	if err == nil {
		return nil, fmt.Errorf("%w: %s", store.ErrEmailExists, email)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to check for existing email: %w", err)
	}

	now := time.Now().UTC()
	result, err := tx.ExecContext(ctx, queryInsertUser, email, models.UserStatusActive, now)
	if err != nil {
		return nil, fmt.Errorf("unable to insert user: %w", err)
	}

	userID, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("unable to get inserted user id: %w", err)
	}

	balances := make([]models.Balance, 0, len(models.Currencies()))
	for _, currency := range models.Currencies() {
		result, err := tx.ExecContext(ctx, queryInsertBalance, userID, currency, "0", 1, now)
		if err != nil {
			return nil, fmt.Errorf("unable to seed %s balance: %w", currency, err)
		}
		balanceID, err := result.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("unable to get inserted balance id: %w", err)
		}
		balances = append(balances, models.Balance{
			ID:       balanceID,
			UserID:   userID,
			Currency: currency,
			Amount:   decimal.Zero,
			Version:  1,
			Created:  now,
		})
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit user creation: %w", err)
	}

	zap.L().Info("User created successfully",
		zap.Int64("user_id", userID),
		zap.String("email", email),
		zap.Int("seeded_balances", len(balances)))

	return &models.User{
		ID:       userID,
		Email:    email,
		Status:   models.UserStatusActive,
		Created:  now,
		Balances: balances,
	}, nil
}

func (s *Service) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	zap.L().Debug("Querying user by ID", zap.Int64("user_id", userID))

	var user models.User
	err := s.db.QueryRowContext(ctx, queryGetUserById, userID).Scan(
		&user.ID, &user.Email, &user.Status, &user.Created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: user %d", store.ErrNotFound, userID)
		}
		zap.L().Error("Failed to query user by ID", zap.Int64("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("unable to query user by ID: %w", err)
	}

	return &user, nil
}

// ListUsers returns users matching the filter, sorted by creation time
// ascending. Balances are fetched explicitly per user and sorted by amount
// ascending; there is no implicit relation traversal.
func (s *Service) ListUsers(ctx context.Context, filter store.UserFilter) ([]models.User, error) {
	query := `SELECT id, email, status, created FROM users`
	var conditions []string
	var args []any
	if filter.ID != nil {
		conditions = append(conditions, "id = ?")
		args = append(args, *filter.ID)
	}
	if filter.Email != nil {
		conditions = append(conditions, "email = ?")
		args = append(args, *filter.Email)
	}
	if filter.Status != nil {
		conditions = append(conditions, "status = ?")
		args = append(args, *filter.Status)
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		zap.L().Error("Failed to query users", zap.Error(err))
		return nil, fmt.Errorf("unable to query users: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	var users []models.User
	for rows.Next() {
		var user models.User
		if err := rows.Scan(&user.ID, &user.Email, &user.Status, &user.Created); err != nil {
			return nil, fmt.Errorf("unable to scan user row: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}

	for i := range users {
		balances, err := s.GetUserBalances(ctx, users[i].ID)
		if err != nil {
			return nil, err
		}
		sort.SliceStable(balances, func(a, b int) bool {
			return balances[a].Amount.LessThan(balances[b].Amount)
		})
		users[i].Balances = balances
	}

	zap.L().Debug("Retrieved users", zap.Int("count", len(users)))
	return users, nil
}

// UpdateUserStatus sets a user's status. The no-op transition guard lives in
// the service layer; this is the raw write.
func (s *Service) UpdateUserStatus(ctx context.Context, userID int64, status models.UserStatus) (*models.User, error) {
	result, err := s.db.ExecContext(ctx, queryUpdateUserStatus, status, userID)
	if err != nil {
		zap.L().Error("Failed to update user status", zap.Int64("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("unable to update user status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("unable to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, fmt.Errorf("%w: user %d", store.ErrNotFound, userID)
	}

	zap.L().Info("User status updated", zap.Int64("user_id", userID), zap.String("status", string(status)))
	return s.GetUser(ctx, userID)
}
