package clue_test

import (
	"context"
	"testing"

	"github.com/myrjola/sherlockchat/internal/ai"
	"github.com/myrjola/sherlockchat/internal/clue"
	"github.com/myrjola/sherlockchat/internal/errors"
	"github.com/myrjola/sherlockchat/internal/models"
	"github.com/myrjola/sherlockchat/internal/rules"
	"github.com/myrjola/sherlockchat/internal/testhelpers"
	"github.com/stretchr/testify/require"
)

func rule(id, pattern string, verdict models.Verdict, hint string) models.Rule {
	return models.Rule{ID: id, Pattern: pattern, Verdict: verdict, Hint: hint, EvidenceLabel: ""}
}

func ids(hits []models.ClueHit) []string {
	out := make([]string, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.ID)
	}
	return out
}

func newDetector(t *testing.T, semantic clue.Matcher, rs ...models.Rule) *clue.Detector {
	t.Helper()
	return clue.NewDetector(rules.NewSet(rs...), semantic, testhelpers.NewLogger(testhelpers.NewWriter(t)))
}

func TestDetector_Detect(t *testing.T) {
	d := newDetector(t, nil,
		rule("A", "창고|warehouse", models.VerdictYes, "창고가 잠겨 있었다."),
		rule("B", `일지\s*찢`, models.VerdictYes, "일지가 찢겨 있었다."),
		rule("A", "열쇠", models.VerdictYes, "duplicate id"),
		rule("X", "살해", models.VerdictNo, "살인이 아니다."),
		rule("U", "날씨", models.VerdictUnknown, ""),
		rule("L", "[invalid(", models.VerdictYes, "literal"),
		rule("E", "", models.VerdictYes, "empty pattern"),
		rule("W", "  ", models.VerdictYes, "blank pattern"),
	)

	tests := []struct {
		name string
		text string
		want []string
	}{
		{name: "single", text: "창고에 가보자", want: []string{"A"}},
		{name: "two distinct clues", text: "Warehouse 안에서 일지 찢어진 것 발견", want: []string{"A", "B"}},
		{name: "same id once", text: "창고 열쇠를 찾았다", want: []string{"A"}},
		{name: "no verdicts are not clues", text: "살해 현장", want: []string{}},
		{name: "unknown verdicts are not clues", text: "날씨가 좋다", want: []string{}},
		{name: "malformed regex falls back to literal", text: "what is [invalid( here", want: []string{"L"}},
		{name: "nothing", text: "", want: []string{}},
		{name: "blank patterns never match", text: "아무 말이나 해본다", want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, ids(d.Detect(tt.text)))
		})
	}
}

func TestDetector_Detect_isIdempotent(t *testing.T) {
	d := newDetector(t, nil,
		rule("A", "창고", models.VerdictYes, "a"),
		rule("B", "일지", models.VerdictYes, "b"),
	)
	first := d.Detect("창고와 일지")
	second := d.Detect("창고와 일지")
	require.Equal(t, first, second)
	require.Len(t, first, 2)
	require.Equal(t, models.HitSourceRule, first[0].Source)
	require.Equal(t, "a", first[0].Hint)
}

func TestDetector_Contradictions(t *testing.T) {
	d := newDetector(t, nil,
		rule("A", "창고", models.VerdictYes, "a"),
		rule("X", "살해|흉기", models.VerdictNo, "이 사건은 단순 살인사건이 아닙니다."),
	)
	hits := d.Contradictions("흉기로 살해된 것 같아요, 창고에서.")
	require.Equal(t, []string{"X"}, ids(hits))
	require.Equal(t, "이 사건은 단순 살인사건이 아닙니다.", hits[0].Hint)
	require.Equal(t, models.VerdictNo, hits[0].Verdict)
}

func TestDetector_RequiredClueIDs(t *testing.T) {
	d := newDetector(t, nil,
		rule("A", "a", models.VerdictYes, ""),
		rule("X", "x", models.VerdictNo, ""),
		rule("B", "b", models.VerdictYes, ""),
	)
	require.Equal(t, []string{"A", "B"}, d.RequiredClueIDs())
}

func TestDetector_DetectContext(t *testing.T) {
	embedded := []rules.Embedded{
		{Rule: rule("A", "창고", models.VerdictYes, "a"), Vector: []float32{1, 0}},
		{Rule: rule("C", "실험", models.VerdictYes, "c"), Vector: []float32{1, 0.1}},
		{Rule: rule("D", "기억", models.VerdictYes, "d"), Vector: []float32{0, 1}},
	}
	mock := ai.NewMockClient()
	matcher := clue.NewSemanticMatcher(mock, embedded, 0)

	d := newDetector(t, matcher, rule("A", "창고", models.VerdictYes, "a"))
	hits := d.DetectContext(context.Background(), "창고 안의 수상한 장치")
	require.Equal(t, []string{"A", "C"}, ids(hits))
	require.Equal(t, models.HitSourceRule, hits[0].Source)
	require.Equal(t, models.HitSourceSemantic, hits[1].Source)

	mock.EmbedFunc = func(context.Context, []string) ([][]float32, error) {
		return nil, errors.New("quota exceeded")
	}
	logger, logs := testhelpers.NewCapturingLogger()
	d = clue.NewDetector(rules.NewSet(rule("A", "창고", models.VerdictYes, "a")), matcher, logger)
	hits = d.DetectContext(context.Background(), "창고")
	require.Equal(t, []string{"A"}, ids(hits))
	require.Contains(t, logs.String(), "semantic matching failed")
}
