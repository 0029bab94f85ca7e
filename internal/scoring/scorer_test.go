package scoring_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/myrjola/sherlockchat/internal/ai"
	"github.com/myrjola/sherlockchat/internal/errors"
	"github.com/myrjola/sherlockchat/internal/models"
	"github.com/myrjola/sherlockchat/internal/scoring"
	"github.com/myrjola/sherlockchat/internal/testhelpers"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		output  string
		want    models.Score
		wantErr error
	}{
		{
			name:   "plain",
			output: `{"score": 85, "feedback": "범인은 맞췄지만 동기가 빠졌어요."}`,
			want:   models.Score{Score: 85, Feedback: "범인은 맞췄지만 동기가 빠졌어요."},
		},
		{
			name:   "code fence",
			output: "```json\n{\"score\": 40.6, \"feedback\": \"애매하네요...\"}\n```",
			want:   models.Score{Score: 41, Feedback: "애매하네요..."},
		},
		{
			name:   "clamped",
			output: `결과: {"score": 120, "feedback": " 완벽해요 "}`,
			want:   models.Score{Score: 100, Feedback: "완벽해요"},
		},
		{
			name:   "negative",
			output: `{"score": -5, "feedback": ""}`,
			want:   models.Score{Score: 0, Feedback: ""},
		},
		{
			name:   "huge score",
			output: `{"score": 1e20, "feedback": "만점"}`,
			want:   models.Score{Score: 100, Feedback: "만점"},
		},
		{name: "no json", output: "잘 모르겠어요", wantErr: scoring.ErrMalformedScore},
		{name: "broken json", output: `{"score": }`, wantErr: scoring.ErrMalformedScore},
		{name: "score missing", output: `{"feedback": "?"}`, wantErr: scoring.ErrMalformedScore},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := scoring.Parse(tt.output)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestScorer_Score(t *testing.T) {
	c := &models.Case{ //nolint:exhaustruct // only title and solution are graded against
		Title:    "사막의 밤",
		Solution: json.RawMessage(`{"culprit": "한서진"}`),
	}
	ctx := context.Background()

	mock := ai.NewMockClient()
	mock.SetReply(`{"score": 90, "feedback": "거의 다 왔어요."}`)
	scorer := scoring.NewScorer(mock, testhelpers.NewLogger(testhelpers.NewWriter(t)))

	got := scorer.Score(ctx, c, "범인은 한서진이다.")
	require.Equal(t, models.Score{Score: 90, Feedback: "거의 다 왔어요."}, got)
	calls := mock.Calls()
	require.Len(t, calls, 1)
	require.Contains(t, calls[0].Message, `정답 데이터: {"culprit": "한서진"}`)
	require.Contains(t, calls[0].Message, "사용자 답변: 범인은 한서진이다.")
	require.Contains(t, calls[0].System, "채점관")

	mock.SetReply("I cannot grade this")
	require.Equal(t, models.Score{Score: 0, Feedback: scoring.FailedFeedback}, scorer.Score(ctx, c, "범인은 한서진"))

	mock.SetGenerateReplyError(errors.Wrap(ai.ErrGeneration, "quota"))
	require.Equal(t, models.Score{Score: 0, Feedback: scoring.FailedFeedback}, scorer.Score(ctx, c, "범인은 한서진"))

	blank := scorer.Score(ctx, c, "   ")
	require.Equal(t, 0, blank.Score)
	require.Len(t, mock.Calls(), 3)
}
