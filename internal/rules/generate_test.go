package rules_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/myrjola/sherlockchat/internal/ai"
	"github.com/myrjola/sherlockchat/internal/models"
	"github.com/myrjola/sherlockchat/internal/rules"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	c := &models.Case{ //nolint:exhaustruct // only narrative fields matter
		Overview: "연구소에서 연구원이 실종되었다. 연구소의 창고가 잠겨 있었다.",
		Solution: json.RawMessage(`{"culprit": "연구소장"}`),
		Characters: []models.Character{
			{Name: "한서진", Description: "연구원은 창고를 자주 드나들었다. 2024 2024", Aliases: nil,
				Alibi: "", Background: "", Occupation: ""},
		},
	}

	generated := rules.Generate(c)
	require.GreaterOrEqual(t, len(generated), 3)

	var patterns []string
	for _, r := range generated {
		patterns = append(patterns, r.Pattern)
	}
	// "연구소", "연구원" and "창고" appear twice each, ties keep first-seen order. Numbers are never keywords.
	require.Equal(t, "연구소", patterns[0])
	require.Contains(t, patterns, "창고")
	require.Contains(t, patterns, "연구원")
	require.NotContains(t, patterns, "2024")
	require.NotContains(t, patterns, "culprit")

	first := generated[0]
	require.Equal(t, models.VerdictYes, first.Verdict)
	require.Equal(t, "'연구소'는 사건의 핵심 단서입니다.", first.Hint)
	require.Equal(t, "연구소", first.ClueID())

	tail := generated[len(generated)-2:]
	require.Equal(t, models.VerdictNo, tail[0].Verdict)
	require.Equal(t, "살해|범인|흉기", tail[0].Pattern)
	require.Equal(t, models.VerdictYes, tail[1].Verdict)
}

func TestEmbed(t *testing.T) {
	mock := ai.NewMockClient()
	input := []models.Rule{
		{ID: "a", Pattern: "창고", Verdict: models.VerdictYes, Hint: "창고가 잠겨 있다.", EvidenceLabel: ""},
		{ID: "b", Pattern: "살해", Verdict: models.VerdictNo, Hint: "", EvidenceLabel: ""},
	}

	embedded, err := rules.Embed(context.Background(), mock, input)
	require.NoError(t, err)
	require.Len(t, embedded, 1)
	require.Equal(t, "a", embedded[0].Record().ID)
	require.Equal(t, [][]string{{"창고 창고가 잠겨 있다."}}, mock.EmbedCalls)
}
