package domain

import "context"

// Embedder is the shared text vectorization contract between layers.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// EmbeddingResult carries the embedding vector and token usage through the decorator chain.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// Completer is the black-box text-to-text contract for the language model.
// Both query expansion and answer synthesis go through it.
type Completer interface {
	ExpandQuery(ctx context.Context, query string) (string, error)
	SynthesizeAnswer(ctx context.Context, query string, contexts []string) (string, error)
}
