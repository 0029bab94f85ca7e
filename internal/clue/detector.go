package clue

import (
	"context"
	"log/slog"

	"github.com/myrjola/sherlockchat/internal/errors"
	"github.com/myrjola/sherlockchat/internal/models"
	"github.com/myrjola/sherlockchat/internal/rules"
)

// Matcher finds clues that the rule patterns miss, for example by meaning rather than by wording.
type Matcher interface {
	Match(ctx context.Context, text string) ([]models.ClueHit, error)
}

// Detector scans text against the rules of one case. It holds no mutable state and is safe for concurrent use.
type Detector struct {
	rules    *rules.Set
	semantic Matcher
	logger   *slog.Logger
}

// NewDetector constructs a Detector. semantic may be nil.
func NewDetector(set *rules.Set, semantic Matcher, logger *slog.Logger) *Detector {
	return &Detector{rules: set, semantic: semantic, logger: logger}
}

// Detect returns every yes rule that matches text, in rule order, one hit per clue id.
func (d *Detector) Detect(text string) []models.ClueHit {
	return d.scan(text, models.VerdictYes)
}

// Contradictions returns every no rule that matches text, in rule order, one hit per clue id.
func (d *Detector) Contradictions(text string) []models.ClueHit {
	return d.scan(text, models.VerdictNo)
}

// DetectContext is [Detector.Detect] followed by the semantic matcher, if any. Semantic hits for clue ids the rules
// already found are dropped. A failing matcher is logged and ignored.
func (d *Detector) DetectContext(ctx context.Context, text string) []models.ClueHit {
	hits := d.Detect(text)
	if d.semantic == nil || text == "" {
		return hits
	}
	extra, err := d.semantic.Match(ctx, text)
	if err != nil {
		d.logger.LogAttrs(ctx, slog.LevelWarn, "semantic matching failed", errors.SlogError(err))
		return hits
	}
	return merge(hits, extra)
}

// RequiredClueIDs are the clue ids that complete the case.
func (d *Detector) RequiredClueIDs() []string {
	return d.rules.ClueIDs()
}

func (d *Detector) scan(text string, verdict models.Verdict) []models.ClueHit {
	var hits []models.ClueHit
	seen := make(map[string]bool)
	for _, rule := range d.rules.Compiled() {
		if rule.Verdict != verdict {
			continue
		}
		id := rule.ClueID()
		if seen[id] || !rule.Match(text) {
			continue
		}
		seen[id] = true
		hits = append(hits, models.ClueHit{
			ID:      id,
			Hint:    rule.Hint,
			Verdict: rule.Verdict,
			Source:  models.HitSourceRule,
		})
	}
	return hits
}

// merge appends the hits of extra whose ids are not in hits yet.
func merge(hits []models.ClueHit, extra []models.ClueHit) []models.ClueHit {
	seen := make(map[string]bool, len(hits))
	for _, h := range hits {
		seen[h.ID] = true
	}
	for _, h := range extra {
		if seen[h.ID] {
			continue
		}
		seen[h.ID] = true
		hits = append(hits, h)
	}
	return hits
}
