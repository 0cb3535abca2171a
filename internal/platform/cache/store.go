package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// KeyPrefix is prepended to every entry written to the backing store, so
// view-cache entries are distinguishable from anything else sharing the
// keyspace.
const KeyPrefix = "ohl_cache_"

// EntryTTL is how long an entry stays readable. Expiry is enforced on read
// from the entry's own timestamp, so entries written by an older process
// still age out correctly regardless of backend expiry settings.
const EntryTTL = 10 * time.Minute

// Key identifies a cache entry by namespace and id. Constructing keys
// through CurriculumKey/UserCurriculaKey keeps call sites from colliding
// on ad hoc string concatenation.
type Key struct {
	Namespace string
	ID        string
}

func (k Key) String() string {
	return KeyPrefix + k.Namespace + "_" + k.ID
}

// CurriculumKey returns the cache key for a single curriculum.
func CurriculumKey(id string) Key {
	return Key{Namespace: "curriculum", ID: id}
}

// UserCurriculaKey returns the cache key for a user's curriculum list.
func UserCurriculaKey(userID string) Key {
	return Key{Namespace: "user_curricula", ID: userID}
}

// entry is the serialized form of a cache entry.
type entry struct {
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"` // epoch millis
}

// Backend is the key/value storage a Store writes through to.
type Backend interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, bool, error)
	Del(ctx context.Context, key string) error
}

// Store is a read-through TTL cache over a Backend. No method returns an
// error: storage failures degrade to a cache miss and are logged, so
// callers only ever branch on hit/miss. Entries are full overwrites with
// last write wins; entries are idempotent re-fetches of backend truth, so
// a lost update is repaired by the next read.
type Store struct {
	backend Backend
	now     func() time.Time
}

// NewStore creates a Store over the given backend.
func NewStore(backend Backend) *Store {
	return &Store{backend: backend, now: time.Now}
}

// Save serializes data with the current timestamp and overwrites any prior
// entry under key.
func (s *Store) Save(ctx context.Context, key Key, data any) {
	raw, err := json.Marshal(data)
	if err != nil {
		slog.Warn("cache save: marshal failed", "key", key.String(), "error", err)
		return
	}
	buf, err := json.Marshal(entry{Data: raw, Timestamp: s.now().UnixMilli()})
	if err != nil {
		slog.Warn("cache save: marshal failed", "key", key.String(), "error", err)
		return
	}
	if err := s.backend.Set(ctx, key.String(), string(buf), EntryTTL); err != nil {
		slog.Warn("cache save failed", "key", key.String(), "error", err)
	}
}

// Get reads the entry under key into dest and reports whether it was a
// hit. An absent, unparseable, or expired entry is a miss; unparseable and
// expired entries are deleted so the next read is a clean miss.
func (s *Store) Get(ctx context.Context, key Key, dest any) bool {
	val, ok, err := s.backend.Get(ctx, key.String())
	if err != nil {
		slog.Warn("cache get failed", "key", key.String(), "error", err)
		return false
	}
	if !ok {
		return false
	}

	var e entry
	if err := json.Unmarshal([]byte(val), &e); err != nil {
		s.Invalidate(ctx, key)
		return false
	}
	if s.now().UnixMilli()-e.Timestamp > EntryTTL.Milliseconds() {
		s.Invalidate(ctx, key)
		return false
	}
	if err := json.Unmarshal(e.Data, dest); err != nil {
		s.Invalidate(ctx, key)
		return false
	}
	return true
}

// Invalidate removes the entry under key. Removing an absent key is a
// no-op.
func (s *Store) Invalidate(ctx context.Context, key Key) {
	if err := s.backend.Del(ctx, key.String()); err != nil {
		slog.Warn("cache invalidate failed", "key", key.String(), "error", err)
	}
}

// RedisBackend stores entries in Redis/Dragonfly. The storage-level expiry
// mirrors EntryTTL as a safety net; the Store's read-side check remains
// authoritative.
type RedisBackend struct {
	client *redis.Client
}

// NewRedisBackend creates a Backend over a Redis client.
func NewRedisBackend(client *redis.Client) *RedisBackend {
	return &RedisBackend{client: client}
}

func (b *RedisBackend) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return b.client.Set(ctx, key, value, ttl).Err()
}

func (b *RedisBackend) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := b.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (b *RedisBackend) Del(ctx context.Context, key string) error {
	return b.client.Del(ctx, key).Err()
}

// MemoryBackend stores entries in process memory. Used when no cache URL
// is configured and as a test double. The ttl argument is ignored; the
// Store's read-side expiry covers aging.
type MemoryBackend struct {
	mu      sync.RWMutex
	entries map[string]string
}

// NewMemoryBackend creates an empty in-memory Backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{entries: make(map[string]string)}
}

func (b *MemoryBackend) Set(_ context.Context, key, value string, _ time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries[key] = value
	return nil
}

func (b *MemoryBackend) Get(_ context.Context, key string) (string, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	val, ok := b.entries[key]
	return val, ok, nil
}

func (b *MemoryBackend) Del(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.entries, key)
	return nil
}

// Len reports the number of stored entries. Test helper.
func (b *MemoryBackend) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.entries)
}
