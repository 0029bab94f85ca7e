package scoring

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/myrjola/sherlockchat/internal/ai"
	"github.com/myrjola/sherlockchat/internal/errors"
	"github.com/myrjola/sherlockchat/internal/models"
)

const (
	// FailedFeedback accompanies the zero score given when grading fails.
	FailedFeedback = "채점 중 오류가 발생했습니다."
	emptyAnswer    = "추리 내용이 없습니다. 범인과 동기, 방법을 적어 주세요."

	graderPersona = "너는 공포 추리 게임의 채점관 AI야. 객관적으로 평가하되, 약간 불안한 말투를 써."
	maxScore      = 100
)

// ErrMalformedScore is returned when the grader output is not the expected JSON object.
var ErrMalformedScore = errors.NewSentinel("malformed score")

// Scorer grades final answers against the solution of a case.
type Scorer struct {
	generator ai.Generator
	logger    *slog.Logger
}

func NewScorer(generator ai.Generator, logger *slog.Logger) *Scorer {
	return &Scorer{generator: generator, logger: logger}
}

// Score grades answer. It never fails: grader errors yield a zero score with [FailedFeedback].
func (s *Scorer) Score(ctx context.Context, c *models.Case, answer string) models.Score {
	if strings.TrimSpace(answer) == "" {
		return models.Score{Score: 0, Feedback: emptyAnswer}
	}

	output, err := s.generator.GenerateReply(ctx, graderPersona, nil, prompt(c, answer))
	if err != nil {
		s.logger.LogAttrs(ctx, slog.LevelError, "grading failed", errors.SlogError(err))
		return models.Score{Score: 0, Feedback: FailedFeedback}
	}
	score, err := Parse(output)
	if err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "grader returned malformed output",
			errors.SlogError(err), slog.String("output", output))
		return models.Score{Score: 0, Feedback: FailedFeedback}
	}
	return score
}

// Parse extracts the score object from grader output. Markdown code fences and surrounding prose are tolerated.
// Scores are rounded and clamped to 0..100.
func Parse(output string) (models.Score, error) {
	start := strings.Index(output, "{")
	end := strings.LastIndex(output, "}")
	if start < 0 || end < start {
		return models.Score{}, errors.Wrap(ErrMalformedScore, "no json object") //nolint:exhaustruct // zero value
	}
	var raw struct {
		Score    *float64 `json:"score"`
		Feedback string   `json:"feedback"`
	}
	if err := json.Unmarshal([]byte(output[start:end+1]), &raw); err != nil {
		return models.Score{}, errors.Wrap(errors.Join(ErrMalformedScore, err), "unmarshal score") //nolint:exhaustruct,lll // zero value
	}
	if raw.Score == nil {
		return models.Score{}, errors.Wrap(ErrMalformedScore, "score missing") //nolint:exhaustruct // zero value
	}
	score := int(math.Round(max(0, min(maxScore, *raw.Score))))
	return models.Score{Score: score, Feedback: strings.TrimSpace(raw.Feedback)}, nil
}

func prompt(c *models.Case, answer string) string {
	solution := strings.TrimSpace(string(c.Solution))
	if solution == "" {
		solution = "{}"
	}
	return fmt.Sprintf(`아래는 사용자의 추리 답변입니다.
사건 제목: %s
정답 데이터: %s
사용자 답변: %s

⚠️ 다음과 같은 경우에는 0점을 주고 간단히 피드백하세요:
- 사용자가 단순히 "추리 작성", "사건 개요", "엔딩 보기" 등 형식적 문구만 입력한 경우
- 추리의 내용이 전혀 없는 경우 (범인, 동기, 사건 내용 없음)
- 단순한 명령문, 테스트 문장, 한 줄짜리 입력

기준:
1. 범인, 동기, 방법, 결론 일치도 (총점 100점)
2. 논리 일관성 및 단서 활용도 (+/- 20점 가중)
3. 핵심 진실 누락 시 감점
4. 피드백은 간결하고 인물·증거 중심으로 작성

JSON 형식으로 답변:
{
  "score": <0~100>,
  "feedback": "<짧은 평가 코멘트>"
}`, c.Title, solution, answer)
}
