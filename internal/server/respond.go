package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"account-ledger-go/internal/api"
	"account-ledger-go/internal/models"
	"account-ledger-go/internal/store"

	"go.uber.org/zap"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zap.L().Error("Failed to write response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, models.ErrorResponse{Error: message})
}

// writeLedgerError maps service and store errors to HTTP status codes.
// blockedStatus is caller-supplied because a blocked user is 404 on
// deposit/withdraw but 400 on rollback.
func writeLedgerError(w http.ResponseWriter, err error, blockedStatus int) {
	switch {
	case errors.Is(err, api.ErrValidation):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, api.ErrUserBlocked):
		writeError(w, blockedStatus, err.Error())
	case errors.Is(err, api.ErrTransactionMismatch):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, api.ErrSameStatus):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrEmailExists):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, store.ErrConcurrentModification):
		// A lost optimistic-lock race is retriable by the client.
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, store.ErrNegativeBalance):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrAlreadyRolledBack):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		zap.L().Error("Unhandled service error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
