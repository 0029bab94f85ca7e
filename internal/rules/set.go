package rules

import (
	"strings"

	"github.com/myrjola/sherlockchat/internal/models"
)

// Set is the ordered, immutable rule set of one case. It is shared between sessions.
type Set struct {
	rules    []Compiled
	embedded []Embedded
}

// NewSet compiles rules in order. Patterns that are not valid regular expressions match literally
// and blank patterns are dropped.
func NewSet(rules ...models.Rule) *Set {
	set := &Set{rules: make([]Compiled, 0, len(rules)), embedded: nil}
	for _, r := range rules {
		if strings.TrimSpace(r.Pattern) == "" {
			continue
		}
		compiled, _ := compile(r)
		set.rules = append(set.rules, compiled)
	}
	return set
}

func (s *Set) Len() int {
	return len(s.rules)
}

// Compiled returns the rules in declaration order.
func (s *Set) Compiled() []Compiled {
	return s.rules
}

func (s *Set) Rules() []models.Rule {
	rules := make([]models.Rule, len(s.rules))
	for i, c := range s.rules {
		rules[i] = c.Rule
	}
	return rules
}

// Embedded returns the rules that carry precomputed embeddings.
func (s *Set) Embedded() []Embedded {
	return s.embedded
}

// WithEmbedded returns a copy of the set that also carries embedded rules.
func (s *Set) WithEmbedded(embedded []Embedded) *Set {
	return &Set{rules: s.rules, embedded: embedded}
}

// ClueIDs lists the clue ids of all yes rules in first-seen order. Discovering all of them completes the case.
func (s *Set) ClueIDs() []string {
	seen := make(map[string]bool)
	var ids []string
	for _, c := range s.rules {
		if c.Verdict != models.VerdictYes {
			continue
		}
		id := c.ClueID()
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}
