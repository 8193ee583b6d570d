// Package store persists form submissions keyed by email. DocumentStore is
// the minimal contract a backing document store must satisfy; Gateway layers
// lookup and upsert semantics on top of it.
package store

import (
	"context"
	"errors"
)

// Table names used by the pipeline and its downstream consumers.
const (
	TableSubmissions = "form_submissions"
	TableSummaries   = "business_summaries"
	TableOutputs     = "llm_outputs"
)

// ColumnEmail is the record identifier column.
const ColumnEmail = "email"

var (
	// ErrEmptyIdentifier is returned for lookups or writes without an email.
	ErrEmptyIdentifier = errors.New("store: empty identifier")
	// ErrIdentifierMismatch is returned when a record's email differs from
	// the key it is written under.
	ErrIdentifierMismatch = errors.New("store: record email does not match identifier")
)

// Document is a flat JSON-compatible row.
type Document map[string]any

// DocumentStore is the external document store contract: equality select,
// insert and update by column.
type DocumentStore interface {
	SelectEq(ctx context.Context, table, column string, value any) ([]Document, error)
	Insert(ctx context.Context, table string, doc Document) error
	Update(ctx context.Context, table string, patch Document, column string, value any) error
}

// ConditionalWriter is implemented by stores that can insert-or-replace a
// row keyed by a unique column in a single write. inserted reports whether
// no row existed before.
type ConditionalWriter interface {
	UpsertOn(ctx context.Context, table string, doc Document, column string) (inserted bool, err error)
}
