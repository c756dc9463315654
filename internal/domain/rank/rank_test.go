package rank

import (
	"math"
	"testing"

	"github.com/querymorph/querymorph/internal/domain"
)

func doc(id string, vec []float32) domain.Document {
	return domain.ReconstructDocument(id, "", id+" content", "", vec)
}

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical unit vectors", []float32{1, 0}, []float32{1, 0}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"unnormalized", []float32{2, 0}, []float32{5, 0}, 1},
		{"zero query", []float32{0, 0}, []float32{1, 0}, 0},
		{"zero document", []float32{1, 0}, []float32{0, 0}, 0},
		{"length mismatch", []float32{1, 0, 0}, []float32{1, 0}, 0},
		{"both empty", nil, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Cosine(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Cosine() = %g, want %g", got, tt.want)
			}
		})
	}
}

func TestRank_ThresholdAndOrder(t *testing.T) {
	docs := []domain.Document{
		doc("cats", []float32{1, 0}),
		doc("dogs", []float32{0, 1}),
	}

	matches := Rank([]float32{1, 0}, docs, 5, 0.9)
	if len(matches) != 1 {
		t.Fatalf("expected exactly 1 match, got %d", len(matches))
	}
	if matches[0].Document.ID() != "cats" {
		t.Errorf("expected cats, got %s", matches[0].Document.ID())
	}
	if math.Abs(matches[0].Score-1.0) > 1e-9 {
		t.Errorf("expected score 1.0, got %g", matches[0].Score)
	}
}

func TestRank_DescendingOrder(t *testing.T) {
	docs := []domain.Document{
		doc("far", []float32{0, 1}),
		doc("near", []float32{1, 0.1}),
		doc("exact", []float32{1, 0}),
	}

	matches := Rank([]float32{1, 0}, docs, 10, -1)
	if len(matches) != 3 {
		t.Fatalf("expected 3 matches, got %d", len(matches))
	}
	for i := 1; i < len(matches); i++ {
		if matches[i].Score > matches[i-1].Score {
			t.Errorf("results not sorted descending at %d: %g > %g", i, matches[i].Score, matches[i-1].Score)
		}
	}
	if matches[0].Document.ID() != "exact" {
		t.Errorf("expected exact first, got %s", matches[0].Document.ID())
	}
}

func TestRank_StableTieBreak(t *testing.T) {
	// Both documents score 1.0; insertion order must be preserved.
	docs := []domain.Document{
		doc("first", []float32{2, 0}),
		doc("second", []float32{5, 0}),
	}

	matches := Rank([]float32{1, 0}, docs, 1, 0.0)
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	if matches[0].Document.ID() != "first" {
		t.Errorf("tie must keep insertion order, got %s", matches[0].Document.ID())
	}
}

func TestRank_TopKTruncation(t *testing.T) {
	docs := []domain.Document{
		doc("a", []float32{1, 0}),
		doc("b", []float32{1, 0.1}),
		doc("c", []float32{1, 0.2}),
	}

	matches := Rank([]float32{1, 0}, docs, 2, 0)
	if len(matches) != 2 {
		t.Errorf("expected 2 matches, got %d", len(matches))
	}
}

func TestRank_EdgeCases(t *testing.T) {
	docs := []domain.Document{doc("a", []float32{1, 0})}

	if got := Rank([]float32{1, 0}, docs, 0, 0); got != nil {
		t.Errorf("topK=0 should yield empty, got %v", got)
	}
	if got := Rank([]float32{1, 0}, docs, -1, 0); got != nil {
		t.Errorf("negative topK should yield empty, got %v", got)
	}
	if got := Rank([]float32{1, 0}, nil, 5, 0); got != nil {
		t.Errorf("empty docs should yield empty, got %v", got)
	}
	// threshold > 1 excludes everything (cosine never exceeds 1)
	if got := Rank([]float32{1, 0}, docs, 5, 1.5); len(got) != 0 {
		t.Errorf("threshold above 1 should yield empty, got %d matches", len(got))
	}
	// threshold < -1 includes everything
	if got := Rank([]float32{1, 0}, docs, 5, -2); len(got) != 1 {
		t.Errorf("threshold below -1 should include all, got %d matches", len(got))
	}
}

func TestRank_Idempotent(t *testing.T) {
	docs := []domain.Document{
		doc("a", []float32{1, 0.3}),
		doc("b", []float32{0.5, 0.5}),
		doc("c", []float32{0, 1}),
	}
	q := []float32{0.7, 0.7}

	first := Rank(q, docs, 3, 0.1)
	second := Rank(q, docs, 3, 0.1)

	if len(first) != len(second) {
		t.Fatalf("lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Document.ID() != second[i].Document.ID() || first[i].Score != second[i].Score {
			t.Errorf("result %d differs: %v vs %v", i, first[i], second[i])
		}
	}
}
