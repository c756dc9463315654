// Package resultcache short-circuits repeated queries. Keys combine the
// user ID with the verbatim original query string — no case-folding or
// trimming, so "Cats" and "cats" are distinct entries on purpose.
package resultcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/querymorph/querymorph/internal/db"
	"github.com/querymorph/querymorph/internal/domain"
)

const keyPrefix = domain.KeyPrefix + "cache:"

// Payload is the cached outcome of a completed search.
type Payload struct {
	Results []Result `json:"results"`
	Answer  string   `json:"answer"`
}

// Result is one ranked document summary inside a cached payload.
type Result struct {
	ID        string  `json:"id"`
	Title     string  `json:"title,omitempty"`
	Content   string  `json:"content"`
	SourceURL string  `json:"source_url,omitempty"`
	Score     float64 `json:"score"`
}

// store is the consumer interface for the result cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Cache stores search payloads with a TTL.
type Cache struct {
	store store
	ttl   time.Duration
}

// New creates a result cache. ttl applies to every Put.
func New(s store, ttl time.Duration) *Cache {
	return &Cache{store: s, ttl: ttl}
}

// Get returns the cached payload for (user, query), reporting false both
// when nothing was ever written and when the entry's TTL has elapsed.
func (c *Cache) Get(ctx context.Context, userID, query string) (Payload, bool, error) {
	data, err := c.store.Get(ctx, cacheKey(userID, query))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return Payload{}, false, nil
		}
		return Payload{}, false, fmt.Errorf("cache get: %w: %w", domain.ErrStorage, err)
	}

	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return Payload{}, false, fmt.Errorf("cache entry corrupt: %w: %w", domain.ErrStorage, err)
	}
	return p, true, nil
}

// Put overwrites the entry for (user, query) and resets its TTL.
// Misses are never cached.
func (c *Cache) Put(ctx context.Context, userID, query string, p Payload) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal cache payload: %w", err)
	}
	if err := c.store.SetWithTTL(ctx, cacheKey(userID, query), data, c.ttl); err != nil {
		return fmt.Errorf("cache put: %w: %w", domain.ErrStorage, err)
	}
	return nil
}

func cacheKey(userID, query string) string {
	return keyPrefix + userID + ":" + query
}
