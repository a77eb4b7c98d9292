package sheets

import (
	"context"
	"errors"

	"spendsheet/internal/core"
)

// Pipeline-level failures that propagate to the caller as distinct,
// user-displayable states. Row- and field-level problems are absorbed inside
// the adapters and never surface as errors.
var (
	// ErrInvalidSheetURL means the supplied link does not look like a
	// spreadsheet URL. No network call is attempted.
	ErrInvalidSheetURL = errors.New("invalid spreadsheet URL")

	// ErrSourceNotPublic means the export endpoint answered with an HTML
	// document (a login or consent page) instead of data.
	ErrSourceNotPublic = errors.New("sheet is not publicly accessible")

	// ErrFetchFailed covers transport-level failures (non-success status,
	// connection errors, timeouts).
	ErrFetchFailed = errors.New("fetch failed")
)

// Ports for outbound adapters.
type (
	// SnapshotFetcher retrieves and normalizes the full record collection for
	// a source. A successful fetch may legitimately return an empty slice.
	SnapshotFetcher interface {
		FetchAll(ctx context.Context, src Source) ([]core.Expense, error)
	}

	// ExpenseAppender accepts a single record for append-only write-back.
	// Success means "accepted for write" only; durability is confirmed by a
	// later re-fetch, not by this call.
	ExpenseAppender interface {
		Append(ctx context.Context, e core.Expense) (rowRef string, err error)
	}
)
