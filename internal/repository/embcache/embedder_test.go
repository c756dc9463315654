package embcache

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/querymorph/querymorph/internal/db/memory"
	"github.com/querymorph/querymorph/internal/domain"
)

type countingEmbedder struct {
	vec   []float32
	err   error
	calls int
}

func (e *countingEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	e.calls++
	if e.err != nil {
		return domain.EmbeddingResult{}, e.err
	}
	return domain.EmbeddingResult{Embedding: e.vec, TotalTokens: 7}, nil
}

func TestCachedEmbedder_HitSkipsInner(t *testing.T) {
	inner := &countingEmbedder{vec: []float32{0.1, 0.2, 0.3}}
	cached := New(inner, memory.NewStore(), nil, zap.NewNop())
	ctx := context.Background()

	first, err := cached.Embed(ctx, "hello")
	if err != nil {
		t.Fatalf("first Embed: %v", err)
	}
	if inner.calls != 1 {
		t.Fatalf("expected 1 inner call, got %d", inner.calls)
	}

	second, err := cached.Embed(ctx, "hello")
	if err != nil {
		t.Fatalf("second Embed: %v", err)
	}
	if inner.calls != 1 {
		t.Errorf("expected cached result, inner called %d times", inner.calls)
	}
	if len(second.Embedding) != len(first.Embedding) {
		t.Fatalf("vector length mismatch: %d vs %d", len(second.Embedding), len(first.Embedding))
	}
	for i := range first.Embedding {
		if second.Embedding[i] != first.Embedding[i] {
			t.Errorf("component %d mismatch: %g vs %g", i, second.Embedding[i], first.Embedding[i])
		}
	}
	if second.TotalTokens != 0 {
		t.Errorf("cache hit must report zero tokens, got %d", second.TotalTokens)
	}
}

func TestCachedEmbedder_DistinctTexts(t *testing.T) {
	inner := &countingEmbedder{vec: []float32{1}}
	cached := New(inner, memory.NewStore(), nil, zap.NewNop())
	ctx := context.Background()

	if _, err := cached.Embed(ctx, "one"); err != nil {
		t.Fatal(err)
	}
	if _, err := cached.Embed(ctx, "two"); err != nil {
		t.Fatal(err)
	}
	if inner.calls != 2 {
		t.Errorf("distinct texts must each call inner, got %d calls", inner.calls)
	}
}

func TestCachedEmbedder_InnerErrorPropagates(t *testing.T) {
	wantErr := errors.New("provider down")
	inner := &countingEmbedder{err: wantErr}
	cached := New(inner, memory.NewStore(), nil, zap.NewNop())

	_, err := cached.Embed(context.Background(), "hello")
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected wrapped provider error, got %v", err)
	}
}
