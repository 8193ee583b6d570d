// Package gormstore implements store.DocumentStore on GORM. Rows are read
// and written as generic column maps; JSON columns are encoded on write and
// decoded on read.
package gormstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/goliatone/go-offerform/pkg/store"
)

// ErrUnknownTable is returned for tables the store has no model for.
var ErrUnknownTable = errors.New("gormstore: unknown table")

// Store is a GORM-backed document store.
type Store struct {
	db  *gorm.DB
	now func() time.Time
}

var (
	_ store.DocumentStore     = (*Store)(nil)
	_ store.ConditionalWriter = (*Store)(nil)
)

// Option customises a Store.
type Option func(*Store)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// New wraps an open, migrated connection.
func New(db *gorm.DB, opts ...Option) *Store {
	s := &Store{db: db, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// SelectEq returns the rows whose column equals value.
func (s *Store) SelectEq(ctx context.Context, table, column string, value any) ([]store.Document, error) {
	spec, err := lookup(table)
	if err != nil {
		return nil, err
	}
	var rows []map[string]any
	err = s.db.WithContext(ctx).
		Table(table).
		Where(clause.Eq{Column: clause.Column{Name: column}, Value: value}).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("gormstore: select from %s: %w", table, err)
	}
	out := make([]store.Document, 0, len(rows))
	for _, row := range rows {
		doc, err := decode(spec, row)
		if err != nil {
			return nil, fmt.Errorf("gormstore: %s: %w", table, err)
		}
		out = append(out, doc)
	}
	return out, nil
}

// Insert adds a row, assigning an id and timestamps when absent.
func (s *Store) Insert(ctx context.Context, table string, doc store.Document) error {
	spec, err := lookup(table)
	if err != nil {
		return err
	}
	row, err := s.encodeNew(spec, doc)
	if err != nil {
		return fmt.Errorf("gormstore: %s: %w", table, err)
	}
	if err := s.db.WithContext(ctx).Table(table).Create(row).Error; err != nil {
		return fmt.Errorf("gormstore: insert into %s: %w", table, err)
	}
	return nil
}

// Update applies patch to every row whose column equals value.
func (s *Store) Update(ctx context.Context, table string, patch store.Document, column string, value any) error {
	spec, err := lookup(table)
	if err != nil {
		return err
	}
	row, err := encode(spec, patch)
	if err != nil {
		return fmt.Errorf("gormstore: %s: %w", table, err)
	}
	delete(row, "id")
	delete(row, "created_at")
	if spec.updatedAt {
		row["updated_at"] = s.now().UTC()
	}
	err = s.db.WithContext(ctx).
		Table(table).
		Where(clause.Eq{Column: clause.Column{Name: column}, Value: value}).
		Updates(row).Error
	if err != nil {
		return fmt.Errorf("gormstore: update %s: %w", table, err)
	}
	return nil
}

// UpsertOn inserts doc or, when a row with the same column value exists,
// replaces every column except id and created_at. The insert is an
// INSERT ... ON CONFLICT DO NOTHING guarded by the unique index, so exactly
// one concurrent writer sees its row inserted; the others update it.
func (s *Store) UpsertOn(ctx context.Context, table string, doc store.Document, column string) (bool, error) {
	spec, err := lookup(table)
	if err != nil {
		return false, err
	}
	key, ok := doc[column]
	if !ok {
		return false, fmt.Errorf("gormstore: document has no %q column", column)
	}
	row, err := s.encodeNew(spec, doc)
	if err != nil {
		return false, fmt.Errorf("gormstore: %s: %w", table, err)
	}

	var inserted bool
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		created := tx.Table(table).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: column}},
			DoNothing: true,
		}).Create(row)
		if created.Error != nil {
			return created.Error
		}
		if created.RowsAffected > 0 {
			inserted = true
			return nil
		}
		patch := make(map[string]any, len(row))
		for _, col := range assignable(row, column) {
			patch[col] = row[col]
		}
		return tx.Table(table).
			Where(clause.Eq{Column: clause.Column{Name: column}, Value: key}).
			Updates(patch).Error
	})
	if err != nil {
		return false, fmt.Errorf("gormstore: upsert into %s: %w", table, err)
	}
	return inserted, nil
}

func (s *Store) encodeNew(spec tableSpec, doc store.Document) (map[string]any, error) {
	row, err := encode(spec, doc)
	if err != nil {
		return nil, err
	}
	if id, _ := row["id"].(string); id == "" {
		row["id"] = uuid.NewString()
	}
	now := s.now().UTC()
	if _, ok := row["created_at"]; !ok {
		row["created_at"] = now
	}
	if spec.updatedAt {
		row["updated_at"] = now
	}
	return row, nil
}

func assignable(row map[string]any, conflict string) []string {
	cols := make([]string, 0, len(row))
	for col := range row {
		switch col {
		case conflict, "id", "created_at":
			continue
		}
		cols = append(cols, col)
	}
	sort.Strings(cols)
	return cols
}

func lookup(table string) (tableSpec, error) {
	spec, ok := tables[table]
	if !ok {
		return tableSpec{}, fmt.Errorf("%w: %s", ErrUnknownTable, table)
	}
	return spec, nil
}

func encode(spec tableSpec, doc store.Document) (map[string]any, error) {
	row := make(map[string]any, len(doc)+3)
	for col, v := range doc {
		if !spec.json[col] {
			row[col] = v
			continue
		}
		data, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode column %s: %w", col, err)
		}
		row[col] = datatypes.JSON(data)
	}
	return row, nil
}

func decode(spec tableSpec, row map[string]any) (store.Document, error) {
	doc := make(store.Document, len(row))
	for col, v := range row {
		// Drivers without a declared column type scan into *any.
		if p, ok := v.(*any); ok {
			v = nil
			if p != nil {
				v = *p
			}
		}
		if !spec.json[col] || v == nil {
			doc[col] = v
			continue
		}
		var raw []byte
		switch typed := v.(type) {
		case []byte:
			raw = typed
		case string:
			raw = []byte(typed)
		case datatypes.JSON:
			raw = typed
		case json.RawMessage:
			raw = typed
		default:
			doc[col] = v
			continue
		}
		var decoded any
		if err := json.Unmarshal(raw, &decoded); err != nil {
			return nil, fmt.Errorf("decode column %s: %w", col, err)
		}
		doc[col] = decoded
	}
	return doc, nil
}
