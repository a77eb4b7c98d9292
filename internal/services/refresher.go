package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"spendsheet/internal/amqp"
	"spendsheet/internal/cache"
	"spendsheet/internal/core"
	"spendsheet/internal/sheets"
	"spendsheet/internal/storage"
)

// State of the fetch lifecycle.
type State string

const (
	StateIdle     State = "idle"
	StateFetching State = "fetching"
	StateReady    State = "ready"
	StateFailed   State = "failed"
)

// ErrNotConnected is returned by refresh and submit operations before a
// source has been connected.
var ErrNotConnected = errors.New("no sheet connected")

const (
	snapshotCacheSize = 8
	snapshotCacheTTL  = 10 * time.Minute
)

// Status is a point-in-time view of the orchestrator for display.
type Status struct {
	State       State     `json:"state"`
	Connected   bool      `json:"connected"`
	SheetURL    string    `json:"sheetUrl,omitempty"`
	WebhookURL  string    `json:"webhookUrl,omitempty"`
	Records     int       `json:"records"`
	LastUpdated time.Time `json:"lastUpdated"`
	LastError   string    `json:"lastError,omitempty"`
}

// Refresher owns the working record collection and the fetch lifecycle:
// Idle -> Fetching -> Ready/Failed, with any later trigger returning to
// Fetching. The collection is replaced wholesale on every successful fetch;
// no record is individually mutated after creation.
//
// Overlapping triggers are coalesced through a singleflight slot keyed by
// source, and a generation counter discards results that belong to a source
// connected before the latest connect/disconnect. Two fetch results can
// therefore never both apply.
type Refresher struct {
	fetcher  sheets.SnapshotFetcher
	settings *storage.SettingsStore // nil: settings are not persisted
	events   *amqp.Client           // nil: event publishing disabled

	// Last-good snapshots per source, served immediately on reconnect.
	snapshots *cache.LRUCache[[]core.Expense]

	group singleflight.Group

	mu          sync.Mutex
	state       State
	source      sheets.Source
	sheetURL    string
	webhookURL  string
	expenses    []core.Expense
	lastUpdated time.Time
	lastErr     error
	generation  uint64
}

func NewRefresher(fetcher sheets.SnapshotFetcher, settings *storage.SettingsStore, events *amqp.Client) *Refresher {
	return &Refresher{
		fetcher:   fetcher,
		settings:  settings,
		events:    events,
		snapshots: cache.NewLRUCache[[]core.Expense](snapshotCacheSize, snapshotCacheTTL),
		state:     StateIdle,
	}
}

// Resume restores the last persisted connection, if any. Fetch failures are
// logged, not returned: the caller still gets a running orchestrator whose
// error state is visible through Status.
func (r *Refresher) Resume(ctx context.Context) {
	if r.settings == nil {
		return
	}
	saved, err := r.settings.Load(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to load persisted settings", "error", err)
		return
	}
	if saved.SheetURL == "" {
		return
	}
	if err := r.Connect(ctx, saved.SheetURL, saved.WebhookURL); err != nil {
		slog.WarnContext(ctx, "Auto-resume fetch failed", "error", err)
	}
}

// Connect resolves the URL (fail fast, no network on a malformed link),
// persists the connection, and triggers a fetch. If a last-good snapshot for
// the source is cached it is installed immediately so the consumer has data
// while the fresh fetch runs.
func (r *Refresher) Connect(ctx context.Context, sheetURL, webhookURL string) error {
	src, err := sheets.ParseSheetURL(sheetURL)
	if err != nil {
		return err
	}

	if r.settings != nil {
		if err := r.settings.SaveConnection(ctx, storage.Settings{SheetURL: sheetURL, WebhookURL: webhookURL}); err != nil {
			slog.ErrorContext(ctx, "Failed to persist connection settings", "error", err)
		}
	}

	r.mu.Lock()
	r.source = src
	r.sheetURL = sheetURL
	r.webhookURL = webhookURL
	r.generation++
	r.expenses = nil
	r.lastErr = nil
	if cached, ok := r.snapshots.Get(src.Key()); ok {
		r.expenses = append([]core.Expense(nil), cached...)
		r.state = StateReady
	} else {
		r.state = StateIdle
	}
	r.mu.Unlock()

	slog.InfoContext(ctx, "Sheet connected",
		"sheet_id", src.SheetID,
		"gid", src.GID,
		"has_webhook", webhookURL != "")

	return r.Refresh(ctx)
}

// Disconnect drops the source, the working collection and the persisted
// settings. In-flight fetch results for the old source are discarded by the
// generation bump.
func (r *Refresher) Disconnect(ctx context.Context) error {
	r.mu.Lock()
	r.source = sheets.Source{}
	r.sheetURL = ""
	r.webhookURL = ""
	r.expenses = nil
	r.lastErr = nil
	r.lastUpdated = time.Time{}
	r.state = StateIdle
	r.generation++
	r.mu.Unlock()

	if r.settings != nil {
		if err := r.settings.Clear(ctx); err != nil {
			return fmt.Errorf("clear persisted settings: %w", err)
		}
	}
	slog.InfoContext(ctx, "Sheet disconnected")
	return nil
}

// Refresh performs one fetch cycle for the connected source. Concurrent
// callers for the same source share one network call. On success the whole
// working collection (provisional records included) is replaced and
// lastUpdated set; on failure the previous collection is retained for
// display alongside the error.
func (r *Refresher) Refresh(ctx context.Context) error {
	r.mu.Lock()
	if r.source.IsZero() {
		r.mu.Unlock()
		return ErrNotConnected
	}
	src := r.source
	gen := r.generation
	r.state = StateFetching
	r.mu.Unlock()

	started := time.Now()
	result, err, shared := r.group.Do(src.Key(), func() (interface{}, error) {
		return r.fetcher.FetchAll(ctx, src)
	})

	r.mu.Lock()
	if gen != r.generation || r.source != src {
		// A connect/disconnect happened while this fetch was in flight; its
		// result must not apply.
		r.mu.Unlock()
		slog.InfoContext(ctx, "Discarded stale fetch result", "sheet_id", src.SheetID, "shared", shared)
		return err
	}
	if err != nil {
		r.state = StateFailed
		r.lastErr = err
		r.mu.Unlock()
		slog.ErrorContext(ctx, "Sheet fetch failed",
			"sheet_id", src.SheetID,
			"gid", src.GID,
			"duration_ms", time.Since(started).Milliseconds(),
			"error", err)
		return err
	}

	expenses := result.([]core.Expense)
	r.expenses = expenses
	r.lastUpdated = time.Now()
	r.lastErr = nil
	r.state = StateReady
	r.mu.Unlock()

	// The cache gets its own copy: the working collection grows in place
	// when a provisional record is added and must not reach the cached
	// snapshot's backing array.
	r.snapshots.Set(src.Key(), append([]core.Expense(nil), expenses...))

	slog.InfoContext(ctx, "Snapshot replaced",
		"sheet_id", src.SheetID,
		"gid", src.GID,
		"records", len(expenses),
		"duration_ms", time.Since(started).Milliseconds(),
		"shared", shared)

	if r.events != nil {
		msg := &amqp.SnapshotReplacedMessage{
			SheetID:   src.SheetID,
			GID:       src.GID,
			Records:   len(expenses),
			FetchedAt: time.Now(),
		}
		if err := r.events.PublishSnapshotReplaced(ctx, msg); err != nil {
			slog.ErrorContext(ctx, "Failed to publish snapshot event", "error", err)
		}
	}

	return nil
}

// Run re-triggers a refresh on a fixed interval while a source is connected.
// The trigger is advisory: if a fetch for the source is already in flight
// the tick joins it instead of stacking another network call. Returns when
// the context is cancelled.
func (r *Refresher) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.Refresh(ctx); err != nil && !errors.Is(err, ErrNotConnected) {
				slog.WarnContext(ctx, "Periodic refresh failed", "error", err)
			}
		}
	}
}

// Expenses returns a copy of the working collection, sorted by expense date
// descending.
func (r *Refresher) Expenses() []core.Expense {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]core.Expense(nil), r.expenses...)
}

// Status reports the current lifecycle state for display.
func (r *Refresher) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := Status{
		State:       r.state,
		Connected:   !r.source.IsZero(),
		SheetURL:    r.sheetURL,
		WebhookURL:  r.webhookURL,
		Records:     len(r.expenses),
		LastUpdated: r.lastUpdated,
	}
	if r.lastErr != nil {
		s.LastError = r.lastErr.Error()
	}
	return s
}

// WebhookURL returns the configured write-back endpoint, empty when absent.
func (r *Refresher) WebhookURL() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.webhookURL
}

// AddProvisional inserts a locally-added record into the working collection
// in sorted position. It stays until the next successful fetch replaces the
// collection with authoritative rows; fields are never merged.
func (r *Refresher) AddProvisional(e core.Expense) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.expenses = append(append([]core.Expense(nil), r.expenses...), e)
	core.SortByDateDesc(r.expenses)
}
