// Package webhook posts single records to an external append-only endpoint
// (typically an Apps Script web app bound to the spreadsheet). The write is
// fire-and-forget: a 2xx response means "accepted for write" only, and
// durability is confirmed by the next sheet re-fetch.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"spendsheet/internal/core"
	"spendsheet/internal/sheets"
)

type Client struct {
	httpClient *http.Client
	url        string
}

var _ sheets.ExpenseAppender = (*Client)(nil)

func NewClient(url string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		url:        url,
	}
}

// payload is the wire shape the spreadsheet-side script expects: one row of
// cell values, dates in ISO form.
type payload struct {
	Date            string `json:"date"`
	Category        string `json:"category"`
	Amount          string `json:"amount"`
	Description     string `json:"description"`
	PaymentMethod   string `json:"paymentMethod"`
	ReceiptRequired string `json:"receiptRequired"`
	Importance      int    `json:"importance"`
}

// Append submits one record. The returned reference is synthetic; the
// endpoint does not report row positions.
func (c *Client) Append(ctx context.Context, e core.Expense) (string, error) {
	receipt := "No"
	if e.ReceiptRequired {
		receipt = "Yes"
	}
	body, err := json.Marshal(payload{
		Date:            e.Date.Format("2006-01-02"),
		Category:        string(e.Category),
		Amount:          e.Amount.String(),
		Description:     e.Description,
		PaymentMethod:   string(e.PaymentMethod),
		ReceiptRequired: receipt,
		Importance:      e.Importance,
	})
	if err != nil {
		return "", fmt.Errorf("marshal expense: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("post expense: %w", err)
	}
	defer resp.Body.Close()
	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("webhook rejected expense: status %d", resp.StatusCode)
	}

	slog.InfoContext(ctx, "Expense accepted by webhook",
		"description", e.Description,
		"amount", e.Amount.String(),
		"status", resp.StatusCode)

	return "webhook:accepted", nil
}
