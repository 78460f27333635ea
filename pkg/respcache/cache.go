package respcache

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
)

// CachedResponse is the stored value for a request fingerprint.
type CachedResponse struct {
	CacheKey     string      `json:"cache_key"`
	ResponseText string      `json:"response_text"`
	ModelTier    string      `json:"model_tier"`
	Sources      []uuid.UUID `json:"sources"`
	Confidence   float64     `json:"confidence"`
	Degraded     bool        `json:"degraded"`
	CreatedAt    time.Time   `json:"created_at"`
	TTLSeconds   int         `json:"ttl_seconds"`
}

// Expired reports whether the entry is past its TTL at the given time.
func (r *CachedResponse) Expired(now time.Time) bool {
	return now.Sub(r.CreatedAt) > time.Duration(r.TTLSeconds)*time.Second
}

const (
	recentWindow   = 32
	recentTTL      = 1 * time.Hour
	similarMinimum = 0.5
)

type recentEntry struct {
	key    string
	tokens map[string]struct{}
}

// Cache is the content-addressable response cache. Store outages are absorbed
// as misses (reads) or no-ops (writes); failures are never cached. Alongside
// the main store it keeps a small in-process per-user index of recently
// cached queries so the generation-failure fallback can find a near entry
// without calling the embedding service.
type Cache struct {
	store  Store
	recent *gocache.Cache
	logger *log.Logger
	now    func() time.Time
}

func New(store Store, logger *log.Logger) *Cache {
	return &Cache{
		store:  store,
		recent: gocache.New(recentTTL, 10*time.Minute),
		logger: logger,
		now:    time.Now,
	}
}

// WithClock replaces the cache's clock. Test hook.
func (c *Cache) WithClock(now func() time.Time) *Cache {
	c.now = now
	return c
}

// Get returns the cached response for key, treating store errors and expired
// entries as misses. TTL is enforced lazily here; expired entries are evicted
// best-effort.
func (c *Cache) Get(ctx context.Context, key string) (*CachedResponse, bool) {
	raw, found, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.Printf("[WARN] Cache read failed, treating as miss: %v", err)
		return nil, false
	}
	if !found {
		return nil, false
	}

	var resp CachedResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		c.logger.Printf("[WARN] Corrupt cache entry %s, treating as miss: %v", key, err)
		return nil, false
	}

	if resp.Expired(c.now()) {
		_ = c.store.Delete(ctx, key)
		return nil, false
	}

	return &resp, true
}

// Put stores a successful response. Overwrite-safe: concurrent writes to the
// same key are last-write-wins since any fresh response is equally valid.
func (c *Cache) Put(ctx context.Context, userScope, query string, resp *CachedResponse) {
	if resp.CreatedAt.IsZero() {
		resp.CreatedAt = c.now()
	}

	raw, err := json.Marshal(resp)
	if err != nil {
		c.logger.Printf("[WARN] Cache marshal failed: %v", err)
		return
	}

	ttl := time.Duration(resp.TTLSeconds) * time.Second
	if err := c.store.Set(ctx, resp.CacheKey, string(raw), ttl); err != nil {
		c.logger.Printf("[WARN] Cache write failed, proceeding without caching: %v", err)
		return
	}

	c.recordRecent(userScope, query, resp.CacheKey)
}

func (c *Cache) recordRecent(userScope, query, key string) {
	tokens := tokenSet(query)
	if len(tokens) == 0 {
		return
	}

	var entries []recentEntry
	if x, found := c.recent.Get(userScope); found {
		entries = x.([]recentEntry)
	}
	entries = append(entries, recentEntry{key: key, tokens: tokens})
	if len(entries) > recentWindow {
		entries = entries[len(entries)-recentWindow:]
	}
	c.recent.Set(userScope, entries, gocache.DefaultExpiration)
}

// FindSimilar looks for the nearest recently cached entry for this user by
// token overlap. Used as the generation-failure fallback; returns nothing
// unless a candidate clears the overlap bar.
func (c *Cache) FindSimilar(ctx context.Context, userScope, query string) (*CachedResponse, bool) {
	x, found := c.recent.Get(userScope)
	if !found {
		return nil, false
	}
	entries := x.([]recentEntry)

	queryTokens := tokenSet(query)
	if len(queryTokens) == 0 {
		return nil, false
	}

	bestKey := ""
	bestOverlap := 0.0
	for _, e := range entries {
		if overlap := jaccard(queryTokens, e.tokens); overlap > bestOverlap {
			bestOverlap = overlap
			bestKey = e.key
		}
	}

	if bestKey == "" || bestOverlap < similarMinimum {
		return nil, false
	}
	return c.Get(ctx, bestKey)
}

func tokenSet(query string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range strings.Fields(Normalize(query)) {
		set[tok] = struct{}{}
	}
	return set
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	intersection := 0
	for t := range a {
		if _, ok := b[t]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	return float64(intersection) / float64(union)
}
