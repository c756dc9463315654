package query

import (
	"context"

	"github.com/querymorph/querymorph/internal/domain"
	"github.com/querymorph/querymorph/internal/repository/resultcache"
)

// Quota admits or rejects a user request against their lifetime allowance.
type Quota interface {
	Admit(ctx context.Context, userID string) (bool, error)
}

// Cache stores completed search payloads keyed by user and query.
type Cache interface {
	Get(ctx context.Context, userID, query string) (resultcache.Payload, bool, error)
	Put(ctx context.Context, userID, query string, p resultcache.Payload) error
}

// DocumentReader loads the full corpus for ranking.
type DocumentReader interface {
	All(ctx context.Context) ([]domain.Document, error)
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Completer rewrites queries and synthesizes answers from context.
type Completer interface {
	ExpandQuery(ctx context.Context, query string) (string, error)
	SynthesizeAnswer(ctx context.Context, query string, contexts []string) (string, error)
}
