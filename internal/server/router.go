package server

import (
	"net/http"

	"account-ledger-go/internal/analysis"
	"account-ledger-go/internal/api"

	"github.com/go-chi/chi/v5"
)

// NewRouter wires all endpoints onto a chi router.
func NewRouter(ledger *api.LedgerService, analyzer *analysis.Analyzer) chi.Router {
	users := NewUsersHandler(ledger)
	transactions := NewTransactionsHandler(ledger, analyzer)

	router := chi.NewRouter()
	router.Use(RequestLogger)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := ledger.HealthCheck(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	router.Get("/users", users.GetUsers)
	router.Post("/users", users.PostUser)
	router.Patch("/users/{userID}", users.PatchUser)

	router.Get("/transactions", transactions.GetTransactions)
	router.Get("/transactions/analysis", transactions.GetAnalysis)
	router.Post("/transactions/{userID}/deposit", transactions.PostDeposit)
	router.Post("/transactions/{userID}/withdraw", transactions.PostWithdraw)
	router.Patch("/transactions/{userID}/rollback/{transactionID}", transactions.PatchRollback)

	return router
}
