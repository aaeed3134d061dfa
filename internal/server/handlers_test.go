package server

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"account-ledger-go/internal/analysis"
	"account-ledger-go/internal/api"
	"account-ledger-go/internal/config"
	"account-ledger-go/internal/database"
	"account-ledger-go/internal/models"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestServer(t *testing.T) *httptest.Server {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)

	service := database.NewServiceWithDB(db)
	require.NoError(t, service.InitSchema())

	ledger := api.NewLedgerService(service)
	analyzer := analysis.NewAnalyzer(service, config.DefaultRates())

	ts := httptest.NewServer(NewRouter(ledger, analyzer))
	t.Cleanup(func() {
		ts.Close()
		db.Close()
	})
	return ts
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func createUser(t *testing.T, ts *httptest.Server, email string) models.UserResponse {
	t.Helper()
	resp := doJSON(t, http.MethodPost, ts.URL+"/users", models.CreateUserRequest{Email: email})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return decodeBody[models.UserResponse](t, resp)
}

func TestHealthEndpoint(t *testing.T) {
	ts := setupTestServer(t)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody[map[string]string](t, resp)
	assert.Equal(t, "ok", body["status"])
}

func TestPostUser(t *testing.T) {
	ts := setupTestServer(t)

	user := createUser(t, ts, "first@x.com")
	assert.Equal(t, "first@x.com", user.Email)
	assert.Equal(t, models.UserStatusActive, user.Status)
	assert.Empty(t, user.Balances)

	// Duplicate email conflicts.
	resp := doJSON(t, http.MethodPost, ts.URL+"/users", models.CreateUserRequest{Email: "first@x.com"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	// Blank email fails validation.
	resp = doJSON(t, http.MethodPost, ts.URL+"/users", models.CreateUserRequest{Email: "   "})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	resp.Body.Close()

	// Malformed body fails validation.
	resp = doJSON(t, http.MethodPost, ts.URL+"/users", "not an object")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	resp.Body.Close()
}

func TestGetUsers_OrderingAndFilters(t *testing.T) {
	ts := setupTestServer(t)

	first := createUser(t, ts, "a@x.com")
	second := createUser(t, ts, "b@x.com")

	resp, err := http.Get(ts.URL + "/users")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	users := decodeBody[[]models.UserResponse](t, resp)
	require.Len(t, users, 2)
	assert.Equal(t, first.ID, users[0].ID)
	assert.Equal(t, second.ID, users[1].ID)
	assert.Len(t, users[0].Balances, len(models.Currencies()))

	// A repeated read returns the same ordering.
	resp, err = http.Get(ts.URL + "/users")
	require.NoError(t, err)
	again := decodeBody[[]models.UserResponse](t, resp)
	require.Len(t, again, 2)
	assert.Equal(t, users[0].ID, again[0].ID)
	assert.Equal(t, users[1].ID, again[1].ID)

	resp, err = http.Get(fmt.Sprintf("%s/users?email=%s", ts.URL, "b@x.com"))
	require.NoError(t, err)
	filtered := decodeBody[[]models.UserResponse](t, resp)
	require.Len(t, filtered, 1)
	assert.Equal(t, second.ID, filtered[0].ID)

	resp, err = http.Get(ts.URL + "/users?user_status=GONE")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	resp.Body.Close()
}

func TestPatchUserStatus(t *testing.T) {
	ts := setupTestServer(t)

	user := createUser(t, ts, "patch@x.com")

	resp := doJSON(t, http.MethodPatch, fmt.Sprintf("%s/users/%d", ts.URL, user.ID),
		models.UpdateUserStatusRequest{Status: "BLOCKED"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	updated := decodeBody[models.UserResponse](t, resp)
	assert.Equal(t, models.UserStatusBlocked, updated.Status)

	// Same status again is rejected.
	resp = doJSON(t, http.MethodPatch, fmt.Sprintf("%s/users/%d", ts.URL, user.ID),
		models.UpdateUserStatusRequest{Status: "BLOCKED"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodPatch, ts.URL+"/users/9999",
		models.UpdateUserStatusRequest{Status: "BLOCKED"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodPatch, fmt.Sprintf("%s/users/%d", ts.URL, user.ID),
		models.UpdateUserStatusRequest{Status: "FROZEN"})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	resp.Body.Close()
}

func TestDepositAndWithdraw(t *testing.T) {
	ts := setupTestServer(t)

	user := createUser(t, ts, "money@x.com")

	resp := doJSON(t, http.MethodPost, fmt.Sprintf("%s/transactions/%d/deposit", ts.URL, user.ID),
		models.TransactionRequest{Currency: "USD", Amount: decimal.NewFromInt(100)})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	deposit := decodeBody[models.TransactionResponse](t, resp)
	assert.Equal(t, models.TransactionTypeDeposit, deposit.Type)
	assert.Equal(t, models.TransactionStatusProcessed, deposit.Status)
	assert.True(t, deposit.Amount.Equal(decimal.NewFromInt(100)))

	resp = doJSON(t, http.MethodPost, fmt.Sprintf("%s/transactions/%d/withdraw", ts.URL, user.ID),
		models.TransactionRequest{Currency: "USD", Amount: decimal.NewFromInt(40)})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	withdrawal := decodeBody[models.TransactionResponse](t, resp)
	assert.Equal(t, models.TransactionTypeWithdraw, withdrawal.Type)

	// Overdraft is rejected.
	resp = doJSON(t, http.MethodPost, fmt.Sprintf("%s/transactions/%d/withdraw", ts.URL, user.ID),
		models.TransactionRequest{Currency: "USD", Amount: decimal.NewFromInt(500)})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	// Unknown currency and non-positive amounts fail validation.
	resp = doJSON(t, http.MethodPost, fmt.Sprintf("%s/transactions/%d/deposit", ts.URL, user.ID),
		models.TransactionRequest{Currency: "XYZ", Amount: decimal.NewFromInt(10)})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodPost, fmt.Sprintf("%s/transactions/%d/deposit", ts.URL, user.ID),
		models.TransactionRequest{Currency: "USD", Amount: decimal.Zero})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	resp.Body.Close()

	// Missing user is a 404.
	resp = doJSON(t, http.MethodPost, ts.URL+"/transactions/9999/deposit",
		models.TransactionRequest{Currency: "USD", Amount: decimal.NewFromInt(10)})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestGetTransactions(t *testing.T) {
	ts := setupTestServer(t)

	user := createUser(t, ts, "list@x.com")
	other := createUser(t, ts, "other@x.com")

	for _, amount := range []int64{10, 20, 30} {
		resp := doJSON(t, http.MethodPost, fmt.Sprintf("%s/transactions/%d/deposit", ts.URL, user.ID),
			models.TransactionRequest{Currency: "USD", Amount: decimal.NewFromInt(amount)})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		resp.Body.Close()
	}
	resp := doJSON(t, http.MethodPost, fmt.Sprintf("%s/transactions/%d/deposit", ts.URL, other.ID),
		models.TransactionRequest{Currency: "EUR", Amount: decimal.NewFromInt(5)})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	httpResp, err := http.Get(ts.URL + "/transactions")
	require.NoError(t, err)
	all := decodeBody[[]models.TransactionResponse](t, httpResp)
	require.Len(t, all, 4)
	// Newest first.
	assert.True(t, all[0].Amount.Equal(decimal.NewFromInt(5)))
	assert.True(t, all[3].Amount.Equal(decimal.NewFromInt(10)))

	httpResp, err = http.Get(fmt.Sprintf("%s/transactions?user_id=%d", ts.URL, user.ID))
	require.NoError(t, err)
	scoped := decodeBody[[]models.TransactionResponse](t, httpResp)
	require.Len(t, scoped, 3)
	for _, tx := range scoped {
		assert.Equal(t, user.ID, tx.UserID)
	}
}

func TestPatchRollback(t *testing.T) {
	ts := setupTestServer(t)

	user := createUser(t, ts, "roll@x.com")
	other := createUser(t, ts, "bystander@x.com")

	resp := doJSON(t, http.MethodPost, fmt.Sprintf("%s/transactions/%d/deposit", ts.URL, user.ID),
		models.TransactionRequest{Currency: "USD", Amount: decimal.NewFromInt(100)})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	deposit := decodeBody[models.TransactionResponse](t, resp)

	// Another user cannot roll it back.
	resp = doJSON(t, http.MethodPatch,
		fmt.Sprintf("%s/transactions/%d/rollback/%d", ts.URL, other.ID, deposit.ID), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodPatch,
		fmt.Sprintf("%s/transactions/%d/rollback/%d", ts.URL, user.ID, deposit.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	rolledBack := decodeBody[models.TransactionResponse](t, resp)
	assert.Equal(t, models.TransactionStatusRollbacked, rolledBack.Status)

	// Second rollback is rejected.
	resp = doJSON(t, http.MethodPatch,
		fmt.Sprintf("%s/transactions/%d/rollback/%d", ts.URL, user.ID, deposit.ID), nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	// A blocked user cannot roll back.
	resp = doJSON(t, http.MethodPost, fmt.Sprintf("%s/transactions/%d/deposit", ts.URL, user.ID),
		models.TransactionRequest{Currency: "USD", Amount: decimal.NewFromInt(10)})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	second := decodeBody[models.TransactionResponse](t, resp)

	resp = doJSON(t, http.MethodPatch, fmt.Sprintf("%s/users/%d", ts.URL, user.ID),
		models.UpdateUserStatusRequest{Status: "BLOCKED"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodPatch,
		fmt.Sprintf("%s/transactions/%d/rollback/%d", ts.URL, user.ID, second.ID), nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestGetAnalysis(t *testing.T) {
	ts := setupTestServer(t)

	user := createUser(t, ts, "stats@x.com")
	resp := doJSON(t, http.MethodPost, fmt.Sprintf("%s/transactions/%d/deposit", ts.URL, user.ID),
		models.TransactionRequest{Currency: "USD", Amount: decimal.NewFromInt(10)})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	httpResp, err := http.Get(ts.URL + "/transactions/analysis")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, httpResp.StatusCode)
	stats := decodeBody[[]models.WeeklyStat](t, httpResp)
	require.Len(t, stats, 1)
	assert.Equal(t, 1, stats[0].RegisteredUsersCount)
	assert.True(t, stats[0].NotRollbackedDepositAmount.Equal(decimal.NewFromInt(10)))
}
