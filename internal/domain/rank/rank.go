// Package rank scores documents against a query vector by cosine similarity.
//
// Ranking is an exact full scan over the candidate set — O(N·D) per query.
// That is a deliberate contract, not an oversight: results are always
// explainable as "closest by cosine similarity within threshold". An
// approximate index would be an additive optimization behind the same
// signature, never a silent semantic change.
package rank

import (
	"math"
	"sort"

	"github.com/querymorph/querymorph/internal/domain"
)

// Match pairs a document with its similarity score. Transient: recomputed
// per query, never persisted.
type Match struct {
	Document domain.Document
	Score    float64
}

// Rank computes cosine similarity between query and every document, keeps
// documents with score >= threshold, orders descending by score (stable:
// ties keep the documents' relative order in docs), and truncates to topK.
//
// topK <= 0 and an empty document set both yield an empty result. A
// threshold outside [-1, 1] is accepted as-is. The input slice is never
// mutated.
func Rank(query []float32, docs []domain.Document, topK int, threshold float64) []Match {
	if topK <= 0 || len(docs) == 0 {
		return nil
	}

	matches := make([]Match, 0, len(docs))
	for _, doc := range docs {
		score := Cosine(query, doc.Vector())
		if score >= threshold {
			matches = append(matches, Match{Document: doc, Score: score})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches
}

// Cosine returns the cosine similarity of a and b in [-1, 1].
// Defined as 0 when either vector has zero magnitude or the lengths differ,
// so degenerate input never divides by zero.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		av := float64(a[i])
		bv := float64(b[i])
		dot += av * bv
		normA += av * av
		normB += bv * bv
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
