// Package tokenstore keeps the ids of revoked session tokens until they expire.
package tokenstore

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"

	"github.com/planitkids/fritids/core"
)

const keyPrefix = "revoked-token:"

// Store records revoked token ids.
type Store interface {
	// Revoke marks id as revoked until expiresAt.
	Revoke(ctx context.Context, id string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, id string) (bool, error)
}

// New returns a redis store when an address is configured, an in-memory one otherwise.
func New(conf *core.Config) Store {
	if conf.Redis.Addr == "" {
		return NewMemoryStore()
	}
	return NewRedisStore(redis.NewClient(&redis.Options{
		Addr:     conf.Redis.Addr,
		Password: conf.Redis.Password,
		DB:       conf.Redis.DB,
	}))
}

type redisStore struct {
	client *redis.Client
}

var _ Store = (*redisStore)(nil)

func NewRedisStore(client *redis.Client) *redisStore {
	return &redisStore{client: client}
}

func (s *redisStore) Revoke(ctx context.Context, id string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return errors.Wrap(s.client.Set(ctx, keyPrefix+id, 1, ttl).Err(), "revoking token")
}

func (s *redisStore) IsRevoked(ctx context.Context, id string) (bool, error) {
	n, err := s.client.Exists(ctx, keyPrefix+id).Result()
	if err != nil {
		return false, errors.Wrap(err, "checking revoked token")
	}
	return n > 0, nil
}

// Close closes the redis client.
func (s *redisStore) Close() error {
	return s.client.Close()
}

type memoryStore struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time
}

var _ Store = (*memoryStore)(nil)

func NewMemoryStore() *memoryStore {
	return &memoryStore{revoked: make(map[string]time.Time), now: time.Now}
}

func (s *memoryStore) Revoke(_ context.Context, id string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for k, exp := range s.revoked {
		if !exp.After(now) {
			delete(s.revoked, k)
		}
	}
	if expiresAt.After(now) {
		s.revoked[id] = expiresAt
	}
	return nil
}

func (s *memoryStore) IsRevoked(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	exp, ok := s.revoked[id]
	return ok && exp.After(s.now()), nil
}
