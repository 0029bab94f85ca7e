package dialogue

import (
	"strings"

	"github.com/myrjola/sherlockchat/internal/clue"
	"github.com/myrjola/sherlockchat/internal/entity"
	"github.com/myrjola/sherlockchat/internal/models"
	"golang.org/x/text/cases"
)

const (
	defaultRole       = "너는 사건을 분석하는 리포터 AI야."
	defaultStyle      = "냉정하고 논리적인 말투로 답해."
	defaultGuidelines = "대화의 맥락과 일관성을 유지하며, 논리적인 추론을 이어가세요."
	missingOverview   = "사건 개요가 제공되지 않았습니다."
)

// DefaultInvestigateKeywords make the detective name newly found clues instead of hinting at them.
var DefaultInvestigateKeywords = []string{ //nolint:gochecknoglobals // default configuration
	"조사", "자세히", "살펴", "단서", "investigate", "look closer", "examine", "inspect",
}

// Game bundles the immutable per-case data a turn needs. It is shared by all sessions playing the case.
type Game struct {
	Case     *models.Case
	Index    *entity.Index
	Detector *clue.Detector
	// Required lists the clue ids that complete the case.
	Required []string

	system    string
	intentKey []string
}

func NewGame(c *models.Case, index *entity.Index, detector *clue.Detector) *Game {
	required := detector.RequiredClueIDs()
	if len(required) == 0 {
		// Cases without rules are finished by searching every location that hides a clue.
		required = c.Locations.ClueNames()
	}

	keywords := c.InvestigateKeywords
	if len(keywords) == 0 {
		keywords = DefaultInvestigateKeywords
	}
	fold := cases.Fold()
	intentKey := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if kw = strings.TrimSpace(kw); kw != "" {
			intentKey = append(intentKey, fold.String(kw))
		}
	}

	return &Game{
		Case:      c,
		Index:     index,
		Detector:  detector,
		Required:  required,
		system:    systemPrompt(c),
		intentKey: intentKey,
	}
}

// SystemPrompt is the persona and case context given to the generator.
func (g *Game) SystemPrompt() string {
	return g.system
}

// WantsInvestigation reports whether message asks the detective to look closer.
func (g *Game) WantsInvestigation(message string) bool {
	folded := cases.Fold().String(message)
	for _, kw := range g.intentKey {
		if strings.Contains(folded, kw) {
			return true
		}
	}
	return false
}

func systemPrompt(c *models.Case) string {
	role := strings.TrimSpace(c.Persona.Role)
	if role == "" {
		role = defaultRole
	}
	style := strings.TrimSpace(c.Persona.Style)
	if style == "" {
		style = defaultStyle
	}
	guidelines := defaultGuidelines
	if len(c.Persona.Guidelines) > 0 {
		lines := make([]string, len(c.Persona.Guidelines))
		for i, g := range c.Persona.Guidelines {
			lines[i] = "- " + g
		}
		guidelines = strings.Join(lines, "\n")
	}
	overview := c.Overview
	if overview == "" {
		overview = c.Summary
	}
	if overview == "" {
		overview = missingOverview
	}

	var b strings.Builder
	b.WriteString(role + "\n" + style + "\n\n다음은 네 대화 지침이야:\n" + guidelines)
	if c.Title != "" {
		b.WriteString("\n\n사건 제목: " + c.Title)
	}
	b.WriteString("\n\n사건 개요:\n" + overview)
	return b.String()
}
