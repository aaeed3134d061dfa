package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"account-ledger-go/internal/api"
	"account-ledger-go/internal/models"

	"github.com/go-chi/chi/v5"
)

// UsersHandler serves the user lifecycle endpoints.
type UsersHandler struct {
	Ledger *api.LedgerService
}

func NewUsersHandler(ledger *api.LedgerService) *UsersHandler {
	return &UsersHandler{Ledger: ledger}
}

// GetUsers lists users with their balances, sorted by creation time
// ascending; balances sorted by amount ascending.
func (h *UsersHandler) GetUsers(w http.ResponseWriter, r *http.Request) {
	var userID *int64
	if raw := r.URL.Query().Get("user_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("invalid user_id: %q", raw))
			return
		}
		userID = &id
	}

	var email *string
	if raw := r.URL.Query().Get("email"); raw != "" {
		email = &raw
	}

	var status *string
	if raw := r.URL.Query().Get("user_status"); raw != "" {
		status = &raw
	}

	users, err := h.Ledger.ListUsers(r.Context(), userID, email, status)
	if err != nil {
		writeLedgerError(w, err, http.StatusNotFound)
		return
	}

	results := make([]models.UserResponse, 0, len(users))
	for _, user := range users {
		results = append(results, models.UserToResponse(user))
	}
	writeJSON(w, http.StatusOK, results)
}

// PostUser creates a user and its seeded balances.
func (h *UsersHandler) PostUser(w http.ResponseWriter, r *http.Request) {
	var req models.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	user, err := h.Ledger.CreateUser(r.Context(), req.Email)
	if err != nil {
		writeLedgerError(w, err, http.StatusNotFound)
		return
	}

	resp := models.UserToResponse(*user)
	resp.Balances = nil
	writeJSON(w, http.StatusOK, resp)
}

// PatchUser updates a user's status.
func (h *UsersHandler) PatchUser(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid user id")
		return
	}

	var req models.UpdateUserStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	user, err := h.Ledger.SetUserStatus(r.Context(), userID, req.Status)
	if err != nil {
		writeLedgerError(w, err, http.StatusNotFound)
		return
	}

	resp := models.UserToResponse(*user)
	resp.Balances = nil
	writeJSON(w, http.StatusOK, resp)
}
