package rules

import (
	"context"

	"github.com/myrjola/sherlockchat/internal/errors"
	"github.com/myrjola/sherlockchat/internal/models"
)

// Embedded is a rule paired with the embedding of its pattern and hint.
type Embedded struct {
	models.Rule
	Vector []float32
}

type embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// EmbeddingText is what gets embedded for a rule.
func EmbeddingText(r models.Rule) string {
	if r.Hint == "" {
		return r.Pattern
	}
	return r.Pattern + " " + r.Hint
}

// Embed precomputes embeddings for the yes rules. The result is what the rules embed command stores next to the
// rule file.
func Embed(ctx context.Context, e embedder, rules []models.Rule) ([]Embedded, error) {
	var selected []models.Rule
	var texts []string
	for _, r := range rules {
		if r.Verdict != models.VerdictYes {
			continue
		}
		selected = append(selected, r)
		texts = append(texts, EmbeddingText(r))
	}
	if len(selected) == 0 {
		return nil, nil
	}
	vectors, err := e.Embed(ctx, texts)
	if err != nil {
		return nil, errors.Wrap(err, "embed rules")
	}
	if len(vectors) != len(selected) {
		return nil, errors.New("embedder returned wrong number of vectors")
	}
	embedded := make([]Embedded, len(selected))
	for i, r := range selected {
		embedded[i] = Embedded{Rule: r, Vector: vectors[i]}
	}
	return embedded, nil
}

// Record is the serialised form of an embedded rule as read back by [Store].
type Record struct {
	ID        string    `json:"id,omitempty"`
	Pattern   string    `json:"pattern"`
	Verdict   string    `json:"verdict"`
	Hint      string    `json:"hint,omitempty"`
	Embedding []float32 `json:"embedding"`
}

func (e Embedded) Record() Record {
	return Record{
		ID:        e.ClueID(),
		Pattern:   e.Pattern,
		Verdict:   string(e.Verdict),
		Hint:      e.Hint,
		Embedding: e.Vector,
	}
}
