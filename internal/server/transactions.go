package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"account-ledger-go/internal/analysis"
	"account-ledger-go/internal/api"
	"account-ledger-go/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

// TransactionsHandler serves the transaction and analysis endpoints.
type TransactionsHandler struct {
	Ledger   *api.LedgerService
	Analyzer *analysis.Analyzer
}

func NewTransactionsHandler(ledger *api.LedgerService, analyzer *analysis.Analyzer) *TransactionsHandler {
	return &TransactionsHandler{Ledger: ledger, Analyzer: analyzer}
}

// GetTransactions lists transactions newest first, optionally filtered by
// user.
func (h *TransactionsHandler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	var userID *int64
	if raw := r.URL.Query().Get("user_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("invalid user_id: %q", raw))
			return
		}
		userID = &id
	}

	transactions, err := h.Ledger.ListTransactions(r.Context(), userID)
	if err != nil {
		writeLedgerError(w, err, http.StatusNotFound)
		return
	}

	results := make([]models.TransactionResponse, 0, len(transactions))
	for _, transaction := range transactions {
		results = append(results, models.TransactionToResponse(transaction))
	}
	writeJSON(w, http.StatusOK, results)
}

// PostDeposit credits a user's balance.
func (h *TransactionsHandler) PostDeposit(w http.ResponseWriter, r *http.Request) {
	h.createTransaction(w, r, h.Ledger.Deposit)
}

// PostWithdraw debits a user's balance.
func (h *TransactionsHandler) PostWithdraw(w http.ResponseWriter, r *http.Request) {
	h.createTransaction(w, r, h.Ledger.Withdraw)
}

func (h *TransactionsHandler) createTransaction(w http.ResponseWriter, r *http.Request,
	create func(ctx context.Context, userID int64, currency string, amount decimal.Decimal) (*models.Transaction, error)) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid user id")
		return
	}

	var req models.TransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	transaction, err := create(r.Context(), userID, req.Currency, req.Amount)
	if err != nil {
		// A blocked user reads as absent on transaction creation.
		writeLedgerError(w, err, http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, models.TransactionToResponse(*transaction))
}

// PatchRollback reverses a transaction.
func (h *TransactionsHandler) PatchRollback(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid user id")
		return
	}
	transactionID, err := strconv.ParseInt(chi.URLParam(r, "transactionID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid transaction id")
		return
	}

	transaction, err := h.Ledger.Rollback(r.Context(), userID, transactionID)
	if err != nil {
		writeLedgerError(w, err, http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, models.TransactionToResponse(*transaction))
}

// GetAnalysis serves the weekly statistics report, cached or freshly
// computed.
func (h *TransactionsHandler) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Analyzer.CachedOrRecompute(r.Context())
	if err != nil {
		writeLedgerError(w, err, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
