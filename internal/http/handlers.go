package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"spendsheet/internal/core"
	"spendsheet/internal/services"
	"spendsheet/internal/sheets"
)

type errorResponse struct {
	Error string `json:"error"`
}

type expensesResponse struct {
	Expenses    []core.Expense `json:"expenses"`
	LastUpdated time.Time      `json:"lastUpdated"`
	State       services.State `json:"state"`
}

type connectRequest struct {
	SheetURL   string `json:"sheetUrl"`
	WebhookURL string `json:"webhookUrl"`
}

type submitRequest struct {
	Date            string          `json:"date"`
	Category        string          `json:"category"`
	Amount          decimal.Decimal `json:"amount"`
	Description     string          `json:"description"`
	PaymentMethod   string          `json:"paymentMethod"`
	ReceiptRequired bool            `json:"receiptRequired"`
	Importance      int             `json:"importance"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// statusForError maps domain errors to HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, sheets.ErrInvalidSheetURL):
		return http.StatusUnprocessableEntity
	case errors.Is(err, sheets.ErrSourceNotPublic):
		return http.StatusForbidden
	case errors.Is(err, sheets.ErrFetchFailed):
		return http.StatusBadGateway
	case errors.Is(err, services.ErrNotConnected),
		errors.Is(err, services.ErrNoWebhook):
		return http.StatusConflict
	case errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidCategory),
		errors.Is(err, core.ErrInvalidPayment),
		errors.Is(err, core.ErrInvalidImportance),
		errors.Is(err, core.ErrZeroDate):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// handleExpenses serves the working collection on GET and submits a new
// expense through the webhook on POST.
func (s *Server) handleExpenses(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		status := s.refresher.Status()
		writeJSON(w, http.StatusOK, expensesResponse{
			Expenses:    s.refresher.Expenses(),
			LastUpdated: status.LastUpdated,
			State:       status.State,
		})
	case http.MethodPost:
		s.handleSubmitExpense(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleSubmitExpense(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	in := services.SubmitInput{
		Category:        req.Category,
		Amount:          req.Amount,
		Description:     req.Description,
		PaymentMethod:   req.PaymentMethod,
		ReceiptRequired: req.ReceiptRequired,
		Importance:      req.Importance,
	}
	if req.Date != "" {
		date, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "date must be YYYY-MM-DD")
			return
		}
		in.Date = date
	}

	expense, err := s.expenses.Submit(r.Context(), in)
	if err != nil {
		slog.ErrorContext(r.Context(), "Expense submission failed", "error", err)
		writeError(w, statusForError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, expense)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, s.refresher.Status())
}

// handleConnect connects a sheet on POST and disconnects on DELETE.
func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var req connectRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.SheetURL == "" {
			writeError(w, http.StatusUnprocessableEntity, "sheetUrl is required")
			return
		}
		if err := s.refresher.Connect(r.Context(), req.SheetURL, req.WebhookURL); err != nil {
			slog.ErrorContext(r.Context(), "Connect failed", "error", err)
			// An invalid URL never connects; a fetch failure leaves the
			// connection in place with its error visible in the status.
			writeError(w, statusForError(err), err.Error())
			return
		}
		writeJSON(w, http.StatusOK, s.refresher.Status())
	case http.MethodDelete:
		if err := s.refresher.Disconnect(r.Context()); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, s.refresher.Status())
	default:
		w.Header().Set("Allow", "POST, DELETE")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := s.refresher.Refresh(r.Context()); err != nil {
		slog.ErrorContext(r.Context(), "Manual refresh failed", "error", err)
		writeError(w, statusForError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.refresher.Status())
}
