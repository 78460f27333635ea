package respcache

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(store Store) *Cache {
	return New(store, log.New(io.Discard, "", 0))
}

func TestKey_DeterministicAndNormalized(t *testing.T) {
	a := Key("What is   Gradient Descent?", "user-1", "tutor", "en")
	b := Key("what is gradient descent?", "user-1", "tutor", "en")
	assert.Equal(t, a, b)
	for i := 0; i < 5; i++ {
		assert.Equal(t, a, Key("What is   Gradient Descent?", "user-1", "tutor", "en"))
	}
}

func TestKey_ScopingFieldsChangeTheKey(t *testing.T) {
	base := Key("gradient descent", "user-1", "tutor", "en")
	assert.NotEqual(t, base, Key("gradient descent", "user-2", "tutor", "en"))
	assert.NotEqual(t, base, Key("gradient descent", "user-1", "interviewer", "en"))
	assert.NotEqual(t, base, Key("gradient descent", "user-1", "tutor", "id"))
}

func TestCache_PutThenGetRoundTrip(t *testing.T) {
	cache := newTestCache(NewMemoryStore())
	key := Key("gradient descent", "user-1", "tutor", "en")
	sources := []uuid.UUID{uuid.New()}

	cache.Put(context.Background(), "user-1", "gradient descent", &CachedResponse{
		CacheKey:     key,
		ResponseText: "It is an iterative optimization method.",
		ModelTier:    "fast",
		Sources:      sources,
		Confidence:   0.82,
		TTLSeconds:   3600,
	})

	got, found := cache.Get(context.Background(), key)
	require.True(t, found)
	assert.Equal(t, "It is an iterative optimization method.", got.ResponseText)
	assert.Equal(t, "fast", got.ModelTier)
	assert.Equal(t, sources, got.Sources)
	assert.InDelta(t, 0.82, got.Confidence, 1e-9)
}

func TestCache_ExpiredEntryIsAMiss(t *testing.T) {
	cache := newTestCache(NewMemoryStore())
	now := time.Now()
	cache.WithClock(func() time.Time { return now })

	key := Key("gradient descent", "user-1", "tutor", "en")
	cache.Put(context.Background(), "user-1", "gradient descent", &CachedResponse{
		CacheKey:     key,
		ResponseText: "cached",
		TTLSeconds:   60,
	})

	_, found := cache.Get(context.Background(), key)
	require.True(t, found)

	cache.WithClock(func() time.Time { return now.Add(61 * time.Second) })
	_, found = cache.Get(context.Background(), key)
	assert.False(t, found)
}

type failingStore struct{ err error }

func (s *failingStore) Get(ctx context.Context, key string) (string, bool, error) {
	return "", false, s.err
}
func (s *failingStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.err
}
func (s *failingStore) Delete(ctx context.Context, key string) error { return s.err }

func TestCache_StoreFailureIsAMissNotAnError(t *testing.T) {
	cache := newTestCache(&failingStore{err: errors.New("redis down")})

	_, found := cache.Get(context.Background(), "anykey")
	assert.False(t, found)

	// Writes are best-effort; a failing store must not panic or block.
	cache.Put(context.Background(), "user-1", "query", &CachedResponse{
		CacheKey: "anykey", ResponseText: "x", TTLSeconds: 60,
	})
}

func TestCache_CorruptEntryIsAMiss(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Set(context.Background(), "bad", "{not json", time.Minute))

	cache := newTestCache(store)
	_, found := cache.Get(context.Background(), "bad")
	assert.False(t, found)
}

func TestFindSimilar_ReturnsNearbyCachedEntry(t *testing.T) {
	cache := newTestCache(NewMemoryStore())
	key := Key("explain gradient descent convergence", "user-1", "tutor", "en")

	cache.Put(context.Background(), "user-1", "explain gradient descent convergence", &CachedResponse{
		CacheKey:     key,
		ResponseText: "cached nearby answer",
		TTLSeconds:   3600,
	})

	got, found := cache.FindSimilar(context.Background(), "user-1", "explain gradient descent convergence rate")
	require.True(t, found)
	assert.Equal(t, "cached nearby answer", got.ResponseText)
}

func TestFindSimilar_LowOverlapFindsNothing(t *testing.T) {
	cache := newTestCache(NewMemoryStore())
	key := Key("explain gradient descent", "user-1", "tutor", "en")
	cache.Put(context.Background(), "user-1", "explain gradient descent", &CachedResponse{
		CacheKey: key, ResponseText: "x", TTLSeconds: 3600,
	})

	_, found := cache.FindSimilar(context.Background(), "user-1", "summarize the french revolution")
	assert.False(t, found)
}

func TestFindSimilar_ScopedPerUser(t *testing.T) {
	cache := newTestCache(NewMemoryStore())
	key := Key("explain gradient descent", "user-1", "tutor", "en")
	cache.Put(context.Background(), "user-1", "explain gradient descent", &CachedResponse{
		CacheKey: key, ResponseText: "x", TTLSeconds: 3600,
	})

	_, found := cache.FindSimilar(context.Background(), "user-2", "explain gradient descent")
	assert.False(t, found)
}
