package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"spendsheet/internal/core"
	"spendsheet/internal/services"
	"spendsheet/internal/sheets"
)

const testSheetURL = "https://docs.google.com/spreadsheets/d/abc123XYZ/edit#gid=0"

type stubFetcher struct {
	mu       sync.Mutex
	expenses []core.Expense
	err      error
}

func (f *stubFetcher) FetchAll(ctx context.Context, src sheets.Source) ([]core.Expense, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.expenses, f.err
}

func (f *stubFetcher) set(expenses []core.Expense, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.expenses = expenses
	f.err = err
}

func testExpense() core.Expense {
	return core.Expense{
		ID:            "sheet-1-1",
		RecordedAt:    time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC),
		Date:          time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		Category:      core.CategoryFood,
		Amount:        decimal.NewFromInt(450),
		Description:   "Lunch",
		PaymentMethod: core.PaymentUPI,
		Importance:    4,
	}
}

func newTestServer(t *testing.T, fetcher sheets.SnapshotFetcher) (*Server, *services.Refresher) {
	t.Helper()
	refresher := services.NewRefresher(fetcher, nil, nil)
	expenses := services.NewExpenseService(refresher, nil, 5*time.Second)
	srv := NewServer(":0", refresher, expenses)
	t.Cleanup(func() { srv.Shutdown(context.Background()) })
	return srv, refresher
}

func doJSON(t *testing.T, handler http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t, &stubFetcher{})
	rec := doJSON(t, srv.Handler, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestGetExpensesIdle(t *testing.T) {
	srv, _ := newTestServer(t, &stubFetcher{})
	rec := doJSON(t, srv.Handler, http.MethodGet, "/api/expenses", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}

	var resp struct {
		Expenses []core.Expense `json:"expenses"`
		State    string         `json:"state"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.State != "idle" || len(resp.Expenses) != 0 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestConnectInvalidURL(t *testing.T) {
	srv, _ := newTestServer(t, &stubFetcher{})
	rec := doJSON(t, srv.Handler, http.MethodPost, "/api/connect",
		`{"sheetUrl":"https://example.com/whatever"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
}

func TestConnectMissingURL(t *testing.T) {
	srv, _ := newTestServer(t, &stubFetcher{})
	rec := doJSON(t, srv.Handler, http.MethodPost, "/api/connect", `{}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
}

func TestConnectAndListExpenses(t *testing.T) {
	srv, _ := newTestServer(t, &stubFetcher{expenses: []core.Expense{testExpense()}})

	rec := doJSON(t, srv.Handler, http.MethodPost, "/api/connect",
		`{"sheetUrl":"`+testSheetURL+`"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("connect status = %d, body %s", rec.Code, rec.Body)
	}

	rec = doJSON(t, srv.Handler, http.MethodGet, "/api/expenses", "")
	var resp struct {
		Expenses []core.Expense `json:"expenses"`
		State    string         `json:"state"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.State != "ready" {
		t.Fatalf("state = %q, want ready", resp.State)
	}
	if len(resp.Expenses) != 1 || resp.Expenses[0].Description != "Lunch" {
		t.Fatalf("unexpected expenses: %+v", resp.Expenses)
	}
}

func TestConnectFetchFailure(t *testing.T) {
	srv, _ := newTestServer(t, &stubFetcher{err: sheets.ErrFetchFailed})
	rec := doJSON(t, srv.Handler, http.MethodPost, "/api/connect",
		`{"sheetUrl":"`+testSheetURL+`"}`)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
}

func TestConnectNotPublic(t *testing.T) {
	srv, _ := newTestServer(t, &stubFetcher{err: sheets.ErrSourceNotPublic})
	rec := doJSON(t, srv.Handler, http.MethodPost, "/api/connect",
		`{"sheetUrl":"`+testSheetURL+`"}`)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestDisconnect(t *testing.T) {
	srv, _ := newTestServer(t, &stubFetcher{expenses: []core.Expense{testExpense()}})

	doJSON(t, srv.Handler, http.MethodPost, "/api/connect", `{"sheetUrl":"`+testSheetURL+`"}`)
	rec := doJSON(t, srv.Handler, http.MethodDelete, "/api/connect", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("disconnect status = %d", rec.Code)
	}

	var status services.Status
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatal(err)
	}
	if status.State != services.StateIdle || status.Connected {
		t.Fatalf("not idle after disconnect: %+v", status)
	}
}

func TestRefreshNotConnected(t *testing.T) {
	srv, _ := newTestServer(t, &stubFetcher{})
	rec := doJSON(t, srv.Handler, http.MethodPost, "/api/refresh", "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
}

func TestRefreshRecovers(t *testing.T) {
	fetcher := &stubFetcher{err: sheets.ErrFetchFailed}
	srv, _ := newTestServer(t, fetcher)

	doJSON(t, srv.Handler, http.MethodPost, "/api/connect", `{"sheetUrl":"`+testSheetURL+`"}`)

	fetcher.set([]core.Expense{testExpense()}, nil)
	rec := doJSON(t, srv.Handler, http.MethodPost, "/api/refresh", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}

	var status services.Status
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatal(err)
	}
	if status.State != services.StateReady || status.Records != 1 {
		t.Fatalf("unexpected status after refresh: %+v", status)
	}
}

func TestSubmitExpenseNoWebhook(t *testing.T) {
	srv, _ := newTestServer(t, &stubFetcher{})
	doJSON(t, srv.Handler, http.MethodPost, "/api/connect", `{"sheetUrl":"`+testSheetURL+`"}`)

	rec := doJSON(t, srv.Handler, http.MethodPost, "/api/expenses",
		`{"amount":100,"description":"Lunch"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
}

func TestSubmitExpense(t *testing.T) {
	hook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer hook.Close()

	srv, refresher := newTestServer(t, &stubFetcher{})
	doJSON(t, srv.Handler, http.MethodPost, "/api/connect",
		`{"sheetUrl":"`+testSheetURL+`","webhookUrl":"`+hook.URL+`"}`)

	rec := doJSON(t, srv.Handler, http.MethodPost, "/api/expenses",
		`{"date":"2024-03-15","category":"Food","amount":"450","description":"Lunch","paymentMethod":"upi","importance":4}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}

	var created core.Expense
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}
	if !created.Provisional {
		t.Fatal("created expense not marked provisional")
	}
	if got := refresher.Expenses(); len(got) != 1 || got[0].ID != created.ID {
		t.Fatalf("provisional not in collection: %+v", got)
	}
}

func TestSubmitExpenseBadDate(t *testing.T) {
	srv, _ := newTestServer(t, &stubFetcher{})
	doJSON(t, srv.Handler, http.MethodPost, "/api/connect", `{"sheetUrl":"`+testSheetURL+`"}`)

	rec := doJSON(t, srv.Handler, http.MethodPost, "/api/expenses",
		`{"date":"15/03/2024","amount":100}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
}

func TestSubmitExpenseInvalidAmount(t *testing.T) {
	hook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer hook.Close()

	srv, _ := newTestServer(t, &stubFetcher{})
	doJSON(t, srv.Handler, http.MethodPost, "/api/connect",
		`{"sheetUrl":"`+testSheetURL+`","webhookUrl":"`+hook.URL+`"}`)

	rec := doJSON(t, srv.Handler, http.MethodPost, "/api/expenses",
		`{"amount":"-5","description":"bad"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer(t, &stubFetcher{})
	for path, method := range map[string]string{
		"/api/status":  http.MethodPost,
		"/api/refresh": http.MethodGet,
		"/api/connect": http.MethodGet,
	} {
		rec := doJSON(t, srv.Handler, method, path, "")
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("%s %s: status = %d, want 405", method, path, rec.Code)
		}
	}
}

func TestRateLimiter(t *testing.T) {
	rl := newRateLimiter()
	defer rl.stop()

	for i := 0; i < rateLimitBudget; i++ {
		if !rl.allow("10.0.0.1") {
			t.Fatalf("request %d blocked below the budget", i+1)
		}
	}
	if rl.allow("10.0.0.1") {
		t.Fatal("request over budget allowed")
	}
	// A different client is unaffected.
	if !rl.allow("10.0.0.2") {
		t.Fatal("second client blocked")
	}
}
