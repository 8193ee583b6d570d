// Package memstore is an in-memory store.DocumentStore. Rows are kept in
// their JSON-normalised form, so values read back look the way a remote
// document store would return them.
package memstore

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"sync"

	"github.com/goliatone/go-offerform/pkg/store"
)

// Store holds rows per table behind a single mutex.
type Store struct {
	mu     sync.RWMutex
	tables map[string][]store.Document
}

var (
	_ store.DocumentStore     = (*Store)(nil)
	_ store.ConditionalWriter = (*Store)(nil)
)

// New returns an empty store.
func New() *Store {
	return &Store{tables: make(map[string][]store.Document)}
}

// SelectEq returns copies of the rows whose column equals value.
func (s *Store) SelectEq(_ context.Context, table, column string, value any) ([]store.Document, error) {
	want, err := normalise(value)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []store.Document
	for _, row := range s.tables[table] {
		if reflect.DeepEqual(row[column], want) {
			cp, err := clone(row)
			if err != nil {
				return nil, err
			}
			out = append(out, cp)
		}
	}
	return out, nil
}

// Insert appends a row.
func (s *Store) Insert(_ context.Context, table string, doc store.Document) error {
	cp, err := clone(doc)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables[table] = append(s.tables[table], cp)
	return nil
}

// Update merges patch into every row whose column equals value.
func (s *Store) Update(_ context.Context, table string, patch store.Document, column string, value any) error {
	want, err := normalise(value)
	if err != nil {
		return err
	}
	cp, err := clone(patch)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range s.tables[table] {
		if !reflect.DeepEqual(row[column], want) {
			continue
		}
		for k, v := range cp {
			row[k] = v
		}
	}
	return nil
}

// UpsertOn replaces the row keyed by column or appends doc when none exists.
func (s *Store) UpsertOn(_ context.Context, table string, doc store.Document, column string) (bool, error) {
	cp, err := clone(doc)
	if err != nil {
		return false, err
	}
	key, ok := cp[column]
	if !ok {
		return false, fmt.Errorf("memstore: document has no %q column", column)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := s.tables[table]
	for idx, row := range rows {
		if reflect.DeepEqual(row[column], key) {
			rows[idx] = cp
			return false, nil
		}
	}
	s.tables[table] = append(rows, cp)
	return true, nil
}

// Len returns the number of rows in table.
func (s *Store) Len(table string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tables[table])
}

func clone(doc store.Document) (store.Document, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("memstore: encode document: %w", err)
	}
	var out store.Document
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("memstore: decode document: %w", err)
	}
	return out, nil
}

func normalise(value any) (any, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("memstore: encode value: %w", err)
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("memstore: decode value: %w", err)
	}
	return out, nil
}
