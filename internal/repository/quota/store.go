// Package quota enforces the per-user request ceiling. The counter is
// created lazily on first request and never resets: the original system
// defines no quota window, and inventing one here would silently change
// user-visible behavior.
package quota

import (
	"context"
	"fmt"

	"github.com/querymorph/querymorph/internal/domain"
)

const keyPrefix = domain.KeyPrefix + "quota:"

// counter is the consumer interface for quota operations (ISP).
type counter interface {
	IncrBelow(ctx context.Context, key string, ceiling int64) (int64, bool, error)
}

// Store tracks per-user request counts against a fixed ceiling.
type Store struct {
	counter counter
	limit   int64
}

// New creates a quota store with the given request ceiling.
func New(c counter, limit int64) *Store {
	return &Store{counter: c, limit: limit}
}

// Admit records one request for the user and reports whether it is within
// quota. The increment is atomic per user; a rejected call mutates nothing.
// A storage fault is returned as an error, distinct from quota rejection.
func (s *Store) Admit(ctx context.Context, userID string) (bool, error) {
	_, admitted, err := s.counter.IncrBelow(ctx, keyPrefix+userID, s.limit)
	if err != nil {
		return false, fmt.Errorf("quota admit %s: %w: %w", userID, domain.ErrStorage, err)
	}
	return admitted, nil
}
