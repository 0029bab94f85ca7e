package clue

import (
	"context"
	"math"

	"github.com/myrjola/sherlockchat/internal/errors"
	"github.com/myrjola/sherlockchat/internal/models"
	"github.com/myrjola/sherlockchat/internal/rules"
)

// DefaultThreshold is the minimum cosine similarity for a semantic hit.
const DefaultThreshold = 0.83

type embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// SemanticMatcher matches text against precomputed rule embeddings.
type SemanticMatcher struct {
	embedder  embedder
	rules     []rules.Embedded
	threshold float64
}

func NewSemanticMatcher(e embedder, embedded []rules.Embedded, threshold float64) *SemanticMatcher {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &SemanticMatcher{embedder: e, rules: embedded, threshold: threshold}
}

// Match embeds text once and returns the yes rules whose similarity reaches the threshold, in rule order.
func (m *SemanticMatcher) Match(ctx context.Context, text string) ([]models.ClueHit, error) {
	if len(m.rules) == 0 {
		return nil, nil
	}
	vectors, err := m.embedder.Embed(ctx, []string{text})
	if err != nil {
		return nil, errors.Wrap(err, "embed text")
	}
	if len(vectors) != 1 {
		return nil, errors.New("embedder returned wrong number of vectors")
	}
	query := vectors[0]

	var hits []models.ClueHit
	seen := make(map[string]bool)
	for _, r := range m.rules {
		if r.Verdict != models.VerdictYes || seen[r.ClueID()] {
			continue
		}
		if cosine(query, r.Vector) < m.threshold {
			continue
		}
		seen[r.ClueID()] = true
		hits = append(hits, models.ClueHit{
			ID:      r.ClueID(),
			Hint:    r.Hint,
			Verdict: r.Verdict,
			Source:  models.HitSourceSemantic,
		})
	}
	return hits, nil
}

// cosine returns 0 for vectors of different length or zero magnitude.
func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
