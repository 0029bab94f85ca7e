package rules

import (
	"regexp"
	"strings"

	"github.com/myrjola/sherlockchat/internal/models"
	"golang.org/x/text/cases"
)

// Compiled is a rule prepared for matching.
type Compiled struct {
	models.Rule
	re *regexp.Regexp
	// literal is the case-folded pattern used when the pattern is not a valid regular expression.
	literal string
}

func compile(rule models.Rule) (Compiled, error) {
	re, err := regexp.Compile("(?i)" + rule.Pattern)
	if err != nil {
		return Compiled{Rule: rule, re: nil, literal: cases.Fold().String(rule.Pattern)}, err //nolint:wrapcheck // wrapped by caller
	}
	return Compiled{Rule: rule, re: re, literal: ""}, nil
}

// Match reports whether the rule pattern occurs in text.
func (c Compiled) Match(text string) bool {
	if c.re != nil {
		return c.re.MatchString(text)
	}
	return strings.Contains(cases.Fold().String(text), c.literal)
}

// Literal reports whether the rule degraded to literal containment.
func (c Compiled) Literal() bool {
	return c.re == nil
}
