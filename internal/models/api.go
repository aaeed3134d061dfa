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

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Request bodies accepted at the HTTP boundary. Enum-typed fields arrive as
// raw strings and are validated by the service layer, so unknown values are
// rejected before any business logic runs.

type CreateUserRequest struct {
	Email string `json:"email"`
}

type UpdateUserStatusRequest struct {
	Status string `json:"status"`
}

type TransactionRequest struct {
	Currency string          `json:"currency"`
	Amount   decimal.Decimal `json:"amount"`
}

// Response shapes.

type BalanceResponse struct {
	Currency Currency        `json:"currency"`
	Amount   decimal.Decimal `json:"amount"`
}

type UserResponse struct {
	ID       int64             `json:"id"`
	Email    string            `json:"email"`
	Status   UserStatus        `json:"status"`
	Created  time.Time         `json:"created"`
	Balances []BalanceResponse `json:"balances,omitempty"`
}

type TransactionResponse struct {
	ID       int64             `json:"id"`
	UserID   int64             `json:"user_id"`
	Currency Currency          `json:"currency"`
	Amount   decimal.Decimal   `json:"amount"`
	Status   TransactionStatus `json:"status"`
	Type     TransactionType   `json:"type"`
	Created  time.Time         `json:"created"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// UserToResponse maps a user with its balances to the API shape. Balance
// ordering is the caller's concern.
func UserToResponse(u User) UserResponse {
	resp := UserResponse{
		ID:      u.ID,
		Email:   u.Email,
		Status:  u.Status,
		Created: u.Created,
	}
	for _, b := range u.Balances {
		resp.Balances = append(resp.Balances, BalanceResponse{Currency: b.Currency, Amount: b.Amount})
	}
	return resp
}

// TransactionToResponse maps a transaction to the API shape.
func TransactionToResponse(t Transaction) TransactionResponse {
	return TransactionResponse{
		ID:       t.ID,
		UserID:   t.UserID,
		Currency: t.Currency,
		Amount:   t.Amount,
		Status:   t.Status,
		Type:     t.Type,
		Created:  t.Created,
	}
}
