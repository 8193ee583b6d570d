package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/goliatone/go-offerform/pkg/model"
)

// Outcome reports which write an upsert performed.
type Outcome string

const (
	OutcomeInserted Outcome = "inserted"
	OutcomeUpdated  Outcome = "updated"
)

// Gateway reads and writes FormSubmission records through a DocumentStore.
type Gateway struct {
	store    DocumentStore
	table    string
	logger   *slog.Logger
	attempts int
	backoff  time.Duration
}

// Option customises a Gateway.
type Option func(*Gateway)

// WithTable overrides the submissions table name.
func WithTable(name string) Option {
	return func(g *Gateway) {
		if strings.TrimSpace(name) != "" {
			g.table = name
		}
	}
}

// WithLogger sets the logger used for fallback and retry diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Gateway) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithRetry allows up to attempts tries per store call, waiting backoff
// between tries. The default is a single attempt.
func WithRetry(attempts int, backoff time.Duration) Option {
	return func(g *Gateway) {
		if attempts > 0 {
			g.attempts = attempts
		}
		if backoff >= 0 {
			g.backoff = backoff
		}
	}
}

// NewGateway wraps a DocumentStore.
func NewGateway(store DocumentStore, opts ...Option) *Gateway {
	g := &Gateway{
		store:    store,
		table:    TableSubmissions,
		logger:   slog.Default(),
		attempts: 1,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g
}

// Conditional reports whether upserts use a single conditional write.
func (g *Gateway) Conditional() bool {
	_, ok := g.store.(ConditionalWriter)
	return ok
}

// FindByIdentifier returns the record stored for email. A missing record is
// reported as found == false with a nil error.
func (g *Gateway) FindByIdentifier(ctx context.Context, email string) (model.FormSubmission, bool, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return model.FormSubmission{}, false, ErrEmptyIdentifier
	}
	var rows []Document
	err := g.retry(ctx, "select", func() error {
		var err error
		rows, err = g.store.SelectEq(ctx, g.table, ColumnEmail, email)
		return err
	})
	if err != nil {
		return model.FormSubmission{}, false, fmt.Errorf("store: find %q: %w", email, err)
	}
	if len(rows) == 0 {
		return model.FormSubmission{}, false, nil
	}
	if len(rows) > 1 {
		g.logger.Warn("multiple records share one identifier", "table", g.table, "email", email, "rows", len(rows))
	}
	sub, err := FromDocument(rows[0])
	if err != nil {
		return model.FormSubmission{}, false, err
	}
	return sub, true, nil
}

// Upsert writes record as the only record for email, replacing every field
// of any existing record.
func (g *Gateway) Upsert(ctx context.Context, email string, record model.FormSubmission) (Outcome, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", ErrEmptyIdentifier
	}
	if record.Email != email {
		return "", fmt.Errorf("%w: %q vs %q", ErrIdentifierMismatch, record.Email, email)
	}
	doc, err := ToDocument(record)
	if err != nil {
		return "", err
	}

	if writer, ok := g.store.(ConditionalWriter); ok {
		var inserted bool
		err := g.retry(ctx, "upsert", func() error {
			var err error
			inserted, err = writer.UpsertOn(ctx, g.table, doc, ColumnEmail)
			return err
		})
		if err != nil {
			return "", fmt.Errorf("store: upsert %q: %w", email, err)
		}
		return outcome(inserted), nil
	}

	g.logger.Debug("store has no conditional write, concurrent submissions for one identifier may interleave", "table", g.table)
	_, found, err := g.FindByIdentifier(ctx, email)
	if err != nil {
		return "", err
	}
	if found {
		err = g.retry(ctx, "update", func() error {
			return g.store.Update(ctx, g.table, doc, ColumnEmail, email)
		})
		if err != nil {
			return "", fmt.Errorf("store: update %q: %w", email, err)
		}
		return OutcomeUpdated, nil
	}
	err = g.retry(ctx, "insert", func() error {
		return g.store.Insert(ctx, g.table, doc)
	})
	if err != nil {
		return "", fmt.Errorf("store: insert %q: %w", email, err)
	}
	return OutcomeInserted, nil
}

// Append inserts an auxiliary row, such as a generated summary.
func (g *Gateway) Append(ctx context.Context, table string, doc Document) error {
	err := g.retry(ctx, "insert", func() error {
		return g.store.Insert(ctx, table, doc)
	})
	if err != nil {
		return fmt.Errorf("store: insert into %s: %w", table, err)
	}
	return nil
}

func (g *Gateway) retry(ctx context.Context, op string, fn func() error) error {
	var err error
	for attempt := 1; attempt <= g.attempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if attempt == g.attempts {
			break
		}
		g.logger.Warn("store call failed, retrying", "op", op, "attempt", attempt, "error", err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(g.backoff):
		}
	}
	return err
}

func outcome(inserted bool) Outcome {
	if inserted {
		return OutcomeInserted
	}
	return OutcomeUpdated
}

// ToDocument flattens a submission into its persisted JSON shape.
func ToDocument(record model.FormSubmission) (Document, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("store: encode record: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("store: encode record: %w", err)
	}
	return doc, nil
}

// FromDocument decodes a stored row. Columns outside the record shape are
// ignored.
func FromDocument(doc Document) (model.FormSubmission, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return model.FormSubmission{}, fmt.Errorf("store: decode record: %w", err)
	}
	var record model.FormSubmission
	if err := json.Unmarshal(data, &record); err != nil {
		return model.FormSubmission{}, fmt.Errorf("store: decode record: %w", err)
	}
	return record, nil
}
