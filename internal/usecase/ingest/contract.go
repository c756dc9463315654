package ingest

import (
	"context"

	"github.com/querymorph/querymorph/internal/domain"
)

// Fetcher retrieves the article list published at a source URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]domain.Article, error)
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// DocumentWriter persists embedded documents.
type DocumentWriter interface {
	Insert(ctx context.Context, doc domain.Document) (domain.Document, error)
}
