// Package public fetches and normalizes the CSV export of a publicly shared
// spreadsheet. No provider authentication is involved: a sheet that is not
// actually public answers the export URL with an HTML page, which this
// adapter reports as a distinct access failure.
package public

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"spendsheet/internal/core"
	"spendsheet/internal/sheets"
)

// Client implements sheets.SnapshotFetcher against the public CSV export
// endpoint.
type Client struct {
	httpClient *http.Client
	dateOrder  DateOrder

	// exportURL builds the fetch target for a source; overridden in tests.
	exportURL func(sheets.Source) string
}

var _ sheets.SnapshotFetcher = (*Client)(nil)

// NewClient builds a fetcher with an explicit request timeout. A hung
// request fails instead of leaving the caller in flight indefinitely.
func NewClient(timeout time.Duration, order DateOrder) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		dateOrder:  order,
		exportURL:  sheets.Source.CSVURL,
	}
}

// FetchAll retrieves the sheet's CSV export and runs the normalization
// pipeline. The returned collection is sorted by expense date descending and
// may be empty.
func (c *Client) FetchAll(ctx context.Context, src sheets.Source) ([]core.Expense, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.exportURL(src), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", sheets.ErrFetchFailed, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", sheets.ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d", sheets.ErrFetchFailed, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", sheets.ErrFetchFailed, err)
	}

	if looksLikeHTML(body) {
		return nil, sheets.ErrSourceNotPublic
	}

	expenses := ParseCSV(string(body), c.dateOrder)
	slog.DebugContext(ctx, "Parsed sheet export",
		"sheet_id", src.SheetID,
		"gid", src.GID,
		"records", len(expenses))
	return expenses, nil
}

// looksLikeHTML detects a document-markup response (a login or consent page
// served in place of CSV data).
func looksLikeHTML(body []byte) bool {
	head := strings.ToLower(string(body[:min(len(body), 1024)]))
	return strings.Contains(head, "<!doctype html") || strings.Contains(head, "<html")
}
