package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"spendsheet/internal/amqp"
	"spendsheet/internal/core"
	"spendsheet/internal/sheets"
	"spendsheet/internal/webhook"
)

// ErrNoWebhook is returned from Submit when the connection has no write-back
// endpoint configured.
var ErrNoWebhook = errors.New("no webhook configured")

// SubmitInput is one expense as entered by the user. Category and payment
// method arrive as free text and are normalized the same way sheet cells are.
type SubmitInput struct {
	Date            time.Time
	Category        string
	Amount          decimal.Decimal
	Description     string
	PaymentMethod   string
	ReceiptRequired bool
	Importance      int
}

// ExpenseService handles the write path: a record is posted to the webhook,
// and on acceptance a provisional copy joins the working collection until the
// next successful fetch replaces it with the authoritative row.
type ExpenseService struct {
	refresher   *Refresher
	events      *amqp.Client // nil: event publishing disabled
	appenderFor func(url string) sheets.ExpenseAppender
}

func NewExpenseService(refresher *Refresher, events *amqp.Client, webhookTimeout time.Duration) *ExpenseService {
	return &ExpenseService{
		refresher: refresher,
		events:    events,
		appenderFor: func(url string) sheets.ExpenseAppender {
			return webhook.NewClient(url, webhookTimeout)
		},
	}
}

// Submit validates and normalizes the input, posts it to the configured
// webhook, and on acceptance returns the provisional record now visible in
// the collection. The record is not durable until a later fetch confirms it.
func (s *ExpenseService) Submit(ctx context.Context, in SubmitInput) (core.Expense, error) {
	webhookURL := s.refresher.WebhookURL()
	if webhookURL == "" {
		return core.Expense{}, ErrNoWebhook
	}

	now := time.Now()
	e := core.Expense{
		ID:              "prov-" + uuid.NewString(),
		RecordedAt:      now,
		Date:            in.Date,
		Category:        core.ParseCategory(in.Category),
		Amount:          in.Amount,
		Description:     in.Description,
		PaymentMethod:   core.ParsePaymentMethod(in.PaymentMethod),
		ReceiptRequired: in.ReceiptRequired,
		Importance:      in.Importance,
		Provisional:     true,
	}
	if e.Date.IsZero() {
		e.Date = now
	}
	if e.Importance == 0 {
		e.Importance = core.ImportanceDefault
	}
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}

	ref, err := s.appenderFor(webhookURL).Append(ctx, e)
	if err != nil {
		return core.Expense{}, fmt.Errorf("submit expense: %w", err)
	}

	s.refresher.AddProvisional(e)

	slog.InfoContext(ctx, "Expense submitted",
		"provisional_id", e.ID,
		"ref", ref,
		"amount", e.Amount.String(),
		"category", string(e.Category))

	if s.events != nil {
		msg := &amqp.ExpenseSubmittedMessage{
			ProvisionalID: e.ID,
			Description:   e.Description,
			Amount:        e.Amount.String(),
			Category:      string(e.Category),
			SubmittedAt:   now,
		}
		if err := s.events.PublishExpenseSubmitted(ctx, msg); err != nil {
			slog.ErrorContext(ctx, "Failed to publish expense event", "error", err)
		}
	}

	return e, nil
}
