package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore caches resolved short links and finished QC results so
// repeated lookups for the same product skip the slow network paths.
type RedisStore struct {
	client *redis.Client
	qcTTL  time.Duration
}

const resolvedLinkTTL = 24 * time.Hour

func NewRedisStore(addr string, qcTTL time.Duration) *RedisStore {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	return &RedisStore{client: rdb, qcTTL: qcTTL}
}

// NewRedisStoreWithClient wires an existing client, used in tests.
func NewRedisStoreWithClient(client *redis.Client, qcTTL time.Duration) *RedisStore {
	return &RedisStore{client: client, qcTTL: qcTTL}
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// hashKey keeps arbitrary URLs safe as Redis key material.
func hashKey(prefix, rawURL string) string {
	h := sha256.Sum256([]byte(rawURL))
	return prefix + hex.EncodeToString(h[:])
}

// GetResolvedLink returns the cached destination for a short link.
func (s *RedisStore) GetResolvedLink(ctx context.Context, shortURL string) (string, bool) {
	val, err := s.client.Get(ctx, hashKey("resolved:", shortURL)).Result()
	if err != nil {
		return "", false
	}
	return val, true
}

// SetResolvedLink caches a short link's destination.
func (s *RedisStore) SetResolvedLink(ctx context.Context, shortURL, destination string) {
	s.client.Set(ctx, hashKey("resolved:", shortURL), destination, resolvedLinkTTL)
}

// GetQCResult returns the cached QC payload for a normalized URL.
func (s *RedisStore) GetQCResult(ctx context.Context, normalizedURL string) ([]byte, bool) {
	val, err := s.client.Get(ctx, hashKey("qc:", normalizedURL)).Bytes()
	if err != nil {
		return nil, false
	}
	return val, true
}

// SetQCResult caches a finished QC payload.
func (s *RedisStore) SetQCResult(ctx context.Context, normalizedURL string, payload []byte) {
	s.client.Set(ctx, hashKey("qc:", normalizedURL), payload, s.qcTTL)
}
