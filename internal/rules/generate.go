package rules

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/myrjola/sherlockchat/internal/models"
)

const (
	maxKeywords = 20
	minTokenLen = 2
)

var (
	tokenPattern   = regexp.MustCompile(`[가-힣A-Za-z0-9]{2,}`)
	particleSuffix = regexp.MustCompile(`(은|는|이|가|을|를|의|에|에서|로|으로|과|와|과의|였다)$`)
	numeric        = regexp.MustCompile(`^[0-9]+$`)

	stopwords = map[string]bool{ //nolint:gochecknoglobals // lookup table
		"그리고": true, "하지만": true, "그러나": true, "있다": true, "하였다": true, "했다": true, "것이다": true,
		"사건": true, "인물": true, "단서": true, "이": true, "가": true, "은": true, "는": true, "을": true,
		"를": true, "의": true, "와": true, "과": true, "에서": true, "에게": true, "한": true, "되었다": true,
		"한다": true, "없음": true, "있음": true, "입니다": true, "이었": true, "이었다": true, "하며": true,
	}
)

// Generate derives a starter rule set from the narrative of c.
//
// The most frequent keywords of the overview, solution and entity descriptions become yes rules. Two fixed rules
// about the genre of the case are appended.
func Generate(c *models.Case) []models.Rule {
	var parts []string
	parts = append(parts, c.Overview, string(c.Solution))
	for _, ch := range c.Characters {
		parts = append(parts, ch.Description)
	}
	for _, ev := range c.Evidence {
		parts = append(parts, ev.Description)
	}

	generated := make([]models.Rule, 0, maxKeywords+2) //nolint:mnd // the fixed rules
	for _, kw := range topKeywords(extractKeywords(strings.Join(parts, " "))) {
		generated = append(generated, models.Rule{
			ID:            "",
			Pattern:       kw,
			Verdict:       models.VerdictYes,
			Hint:          fmt.Sprintf("'%s'는 사건의 핵심 단서입니다.", kw),
			EvidenceLabel: "",
		})
	}
	return append(generated,
		models.Rule{ID: "", Pattern: "살해|범인|흉기", Verdict: models.VerdictNo,
			Hint: "이 사건은 단순 살인사건이 아닙니다.", EvidenceLabel: ""},
		models.Rule{ID: "", Pattern: "기억|실험|루프", Verdict: models.VerdictYes,
			Hint: "이 사건은 실험과 기억 조작과 관련이 있습니다.", EvidenceLabel: ""},
	)
}

func extractKeywords(text string) []string {
	var keywords []string
	for _, token := range tokenPattern.FindAllString(text, -1) {
		if stopwords[token] {
			continue
		}
		cleaned := particleSuffix.ReplaceAllString(token, "")
		if len([]rune(cleaned)) < minTokenLen || numeric.MatchString(cleaned) {
			continue
		}
		keywords = append(keywords, cleaned)
	}
	return keywords
}

// topKeywords returns up to maxKeywords keywords that occur more than once, most frequent first. Ties keep
// first-seen order.
func topKeywords(keywords []string) []string {
	counts := make(map[string]int)
	var order []string
	for _, kw := range keywords {
		if counts[kw] == 0 {
			order = append(order, kw)
		}
		counts[kw]++
	}
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > maxKeywords {
		order = order[:maxKeywords]
	}
	top := make([]string, 0, len(order))
	for _, kw := range order {
		if counts[kw] > 1 {
			top = append(top, kw)
		}
	}
	return top
}
