// Package document persists articles as one hash per document plus a
// list of IDs that preserves insertion order. Ranking depends on that
// order for stable tie-breaks, so the list — not a key scan — is the
// source of truth for enumeration.
package document

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/querymorph/querymorph/internal/domain"
)

const (
	docKeyPrefix = domain.KeyPrefix + "doc:"
	docListKey   = domain.KeyPrefix + "docs"
)

// store is the consumer interface for documents (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	RPush(ctx context.Context, key string, values ...string) error
	LRange(ctx context.Context, key string, start, stop int64) ([]string, error)
}

// Repo implements the document store contract.
type Repo struct {
	store     store
	vectorDim int
}

// New creates a document repository. vectorDim > 0 enforces the embedding
// dimension invariant on insert.
func New(s store, vectorDim int) *Repo {
	return &Repo{store: s, vectorDim: vectorDim}
}

// Insert assigns an ID, persists the document, and appends it to the
// insertion-order list. A vector of the wrong dimension is never persisted.
func (r *Repo) Insert(ctx context.Context, doc domain.Document) (domain.Document, error) {
	if r.vectorDim > 0 && len(doc.Vector()) != r.vectorDim {
		return domain.Document{}, fmt.Errorf(
			"document vector has %d dimensions, store expects %d: %w",
			len(doc.Vector()), r.vectorDim, domain.ErrVectorDimMismatch,
		)
	}

	stored := doc.WithID(uuid.NewString())

	if err := r.store.HSet(ctx, docKeyPrefix+stored.ID(), buildHashFields(&stored)); err != nil {
		return domain.Document{}, fmt.Errorf("hset document %s: %w: %w", stored.ID(), domain.ErrStorage, err)
	}
	if err := r.store.RPush(ctx, docListKey, stored.ID()); err != nil {
		return domain.Document{}, fmt.Errorf("rpush document %s: %w: %w", stored.ID(), domain.ErrStorage, err)
	}

	return stored, nil
}

// All returns every stored document in insertion order. This is the full
// scan the ranker runs over on every query.
func (r *Repo) All(ctx context.Context) ([]domain.Document, error) {
	ids, err := r.store.LRange(ctx, docListKey, 0, -1)
	if err != nil {
		return nil, fmt.Errorf("lrange documents: %w: %w", domain.ErrStorage, err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = docKeyPrefix + id
	}

	hashes, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("hgetall documents: %w: %w", domain.ErrStorage, err)
	}

	docs := make([]domain.Document, 0, len(ids))
	for i, m := range hashes {
		if len(m) == 0 {
			// hash deleted out-of-band; skip rather than fail the scan
			continue
		}
		docs = append(docs, parseHashFields(ids[i], m))
	}
	return docs, nil
}

// Count returns the number of stored documents.
func (r *Repo) Count(ctx context.Context) (int, error) {
	ids, err := r.store.LRange(ctx, docListKey, 0, -1)
	if err != nil {
		return 0, fmt.Errorf("lrange documents: %w: %w", domain.ErrStorage, err)
	}
	return len(ids), nil
}
