// Package drafts keeps in-progress form state per email so an interrupted
// session can resume with every entered section intact.
package drafts

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
)

// ErrEmptyKey is returned when a draft is addressed without an email.
var ErrEmptyKey = errors.New("drafts: empty key")

// Store persists serialised form state snapshots.
type Store interface {
	Save(ctx context.Context, email string, snapshot []byte) error
	// Load returns found == false with a nil error when no draft exists.
	Load(ctx context.Context, email string) (snapshot []byte, found bool, err error)
	Delete(ctx context.Context, email string) error
}

// MemoryStore is a process-local Store with optional expiry.
type MemoryStore struct {
	mu     sync.Mutex
	ttl    time.Duration
	now    func() time.Time
	drafts map[string]memoryDraft
}

type memoryDraft struct {
	data    []byte
	expires time.Time
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty store. A zero ttl keeps drafts forever.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{ttl: ttl, now: time.Now, drafts: make(map[string]memoryDraft)}
}

func (m *MemoryStore) Save(_ context.Context, email string, snapshot []byte) error {
	key, err := normaliseKey(email)
	if err != nil {
		return err
	}
	draft := memoryDraft{data: append([]byte(nil), snapshot...)}
	if m.ttl > 0 {
		draft.expires = m.now().Add(m.ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drafts[key] = draft
	return nil
}

func (m *MemoryStore) Load(_ context.Context, email string) ([]byte, bool, error) {
	key, err := normaliseKey(email)
	if err != nil {
		return nil, false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	draft, ok := m.drafts[key]
	if !ok {
		return nil, false, nil
	}
	if !draft.expires.IsZero() && !m.now().Before(draft.expires) {
		delete(m.drafts, key)
		return nil, false, nil
	}
	return append([]byte(nil), draft.data...), true, nil
}

func (m *MemoryStore) Delete(_ context.Context, email string) error {
	key, err := normaliseKey(email)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.drafts, key)
	return nil
}

// normaliseKey trims email. Case is kept so drafts pair with stored records,
// which are matched exactly.
func normaliseKey(email string) (string, error) {
	key := strings.TrimSpace(email)
	if key == "" {
		return "", ErrEmptyKey
	}
	return key, nil
}
