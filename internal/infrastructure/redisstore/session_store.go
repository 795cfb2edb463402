package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Session tokens go stale on the portal side well before this; the TTL
// just keeps dead jars from accumulating.
const sessionTTL = 7 * 24 * time.Hour

// NewClient parses redisURL and verifies connectivity.
func NewClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL(%q): %w", redisURL, err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return client, nil
}

// SessionStore keeps serialized portal cookie jars in redis, keyed by
// (owner, portal).
type SessionStore struct {
	rdb *redis.Client
}

func NewSessionStore(rdb *redis.Client) *SessionStore {
	return &SessionStore{rdb: rdb}
}

// Ping satisfies the health checker's Pinger interface.
func (s *SessionStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func sessionKey(ownerID, portal string) string {
	return fmt.Sprintf("session:%s:%s", ownerID, portal)
}

// Get returns the cached token, or nil when none is stored.
func (s *SessionStore) Get(ctx context.Context, ownerID, portal string) ([]byte, error) {
	token, err := s.rdb.Get(ctx, sessionKey(ownerID, portal)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session token: %w", err)
	}
	return token, nil
}

func (s *SessionStore) Put(ctx context.Context, ownerID, portal string, token []byte) error {
	if err := s.rdb.Set(ctx, sessionKey(ownerID, portal), token, sessionTTL).Err(); err != nil {
		return fmt.Errorf("put session token: %w", err)
	}
	return nil
}

func (s *SessionStore) Delete(ctx context.Context, ownerID, portal string) error {
	if err := s.rdb.Del(ctx, sessionKey(ownerID, portal)).Err(); err != nil {
		return fmt.Errorf("delete session token: %w", err)
	}
	return nil
}
