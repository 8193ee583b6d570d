package drafts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces draft keys.
const DefaultPrefix = "offerform:draft:"

// RedisStore keeps drafts in Redis with a sliding TTL.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

var _ Store = (*RedisStore)(nil)

// RedisOption customises a RedisStore.
type RedisOption func(*RedisStore)

// WithPrefix overrides the key prefix.
func WithPrefix(prefix string) RedisOption {
	return func(s *RedisStore) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// WithTTL sets the expiry applied on every save. Zero disables expiry.
func WithTTL(ttl time.Duration) RedisOption {
	return func(s *RedisStore) {
		if ttl >= 0 {
			s.ttl = ttl
		}
	}
}

// NewRedisStore wraps a connected client.
func NewRedisStore(client redis.UniversalClient, opts ...RedisOption) *RedisStore {
	s := &RedisStore{client: client, prefix: DefaultPrefix, ttl: 72 * time.Hour}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Dial connects to addr and verifies the connection.
func Dial(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        addr,
		Password:    password,
		DB:          db,
		DialTimeout: 5 * time.Second,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("drafts: ping redis at %s: %w", addr, err)
	}
	return client, nil
}

func (s *RedisStore) Save(ctx context.Context, email string, snapshot []byte) error {
	key, err := s.key(email)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, key, snapshot, s.ttl).Err(); err != nil {
		return fmt.Errorf("drafts: save %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context, email string) ([]byte, bool, error) {
	key, err := s.key(email)
	if err != nil {
		return nil, false, err
	}
	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("drafts: load %s: %w", key, err)
	}
	return data, true, nil
}

func (s *RedisStore) Delete(ctx context.Context, email string) error {
	key, err := s.key(email)
	if err != nil {
		return err
	}
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("drafts: delete %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) key(email string) (string, error) {
	normalised, err := normaliseKey(email)
	if err != nil {
		return "", err
	}
	return s.prefix + normalised, nil
}
