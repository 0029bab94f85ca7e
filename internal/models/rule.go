package models

import (
	"regexp"
	"strings"
)

// Verdict classifies what a rule match means for the investigation.
type Verdict string

const (
	// VerdictYes confirms a clue.
	VerdictYes Verdict = "yes"
	// VerdictNo flags a narrative contradiction.
	VerdictNo Verdict = "no"
	// VerdictUnknown is inconclusive.
	VerdictUnknown Verdict = "unknown"
)

// ParseVerdict maps free-form verdict strings to a [Verdict]. Anything unrecognised is [VerdictUnknown].
func ParseVerdict(s string) Verdict {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes":
		return VerdictYes
	case "no":
		return VerdictNo
	default:
		return VerdictUnknown
	}
}

// Rule is a single detection rule of a case.
type Rule struct {
	ID            string  `json:"id,omitempty" yaml:"id,omitempty"`
	Pattern       string  `json:"pattern" yaml:"pattern"`
	Verdict       Verdict `json:"verdict" yaml:"verdict"`
	Hint          string  `json:"hint,omitempty" yaml:"hint,omitempty"`
	EvidenceLabel string  `json:"evidence_label,omitempty" yaml:"evidence_label,omitempty"`
}

var quotedTerm = regexp.MustCompile(`['"‘“](.+?)['"’”]`)

// ClueID is the stable identifier of the clue the rule reveals.
//
// Precedence: explicit ID, evidence label, the first quoted term of the hint, and finally the pattern itself.
func (r Rule) ClueID() string {
	if r.ID != "" {
		return r.ID
	}
	if r.EvidenceLabel != "" {
		return r.EvidenceLabel
	}
	if m := quotedTerm.FindStringSubmatch(r.Hint); m != nil {
		return m[1]
	}
	return r.Pattern
}
