package dialogue

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/myrjola/sherlockchat/internal/ai"
	"github.com/myrjola/sherlockchat/internal/errors"
	"github.com/myrjola/sherlockchat/internal/models"
	"golang.org/x/sync/errgroup"
)

const (
	// DegradedReply replaces the narrative when the generator fails.
	DegradedReply = "AI 처리 중 오류가 발생했습니다."

	interestingClueNotice = "💬 흥미로운 단서예요."
	namedCluePrefix       = "🧩 논리 일치: "
	inconsistencyPrefix   = "🤔 논리 불일치: "
	endingPrefix          = "🎉 모든 단서를 찾았습니다! 결말이 밝혀집니다...\n\n"
	emptyDescription      = "에 대한 기록은 남아 있지 않아요."
)

// Orchestrator plays one conversational turn at a time.
type Orchestrator struct {
	generator ai.Generator
	timeout   time.Duration
	logger    *slog.Logger
}

// NewOrchestrator constructs an Orchestrator. A positive timeout bounds each generator call.
func NewOrchestrator(generator ai.Generator, timeout time.Duration, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{generator: generator, timeout: timeout, logger: logger}
}

// Turn answers message and records its outcome in session.
//
// The caller must own session for the duration of the call. Turn never fails: generator errors degrade the
// narrative part of the reply only.
func (o *Orchestrator) Turn(ctx context.Context, game *Game, session *models.Session, message string) models.TurnResult {
	var result models.TurnResult
	if e, ok := game.Index.FindDirectMention(message); ok {
		result = o.directMatch(session, e)
	} else {
		result = o.converse(ctx, game, session, message)
	}

	if !session.Terminal && session.HasAll(game.Required) {
		session.Terminal = true
		result.Reply += "\n\n" + endingPrefix + game.Case.Ending
		o.logger.LogAttrs(ctx, slog.LevelInfo, "case solved",
			slog.String("case_id", game.Case.ID), slog.Int("clues", len(session.DiscoveredClueIDs)))
	}
	result.Terminal = session.Terminal

	session.Append(models.RoleUser, message)
	session.Append(models.RoleAssistant, result.Reply)
	return result
}

// directMatch answers from case data without consulting the generator.
func (o *Orchestrator) directMatch(session *models.Session, e models.Entity) models.TurnResult {
	result := models.TurnResult{
		Reply:         "",
		Clues:         []string{},
		Hints:         []string{},
		Inconsistency: "",
		Terminal:      false,
		Degraded:      false,
	}

	if e.Kind == models.EntityKindLocation {
		switch {
		case !e.Clue:
			result.Reply = fmt.Sprintf("❌ **%s** 근처에서는 아무 단서도 발견되지 않았어요.", e.DisplayName)
			return result
		case session.HasClue(e.ID):
			result.Reply = fmt.Sprintf("📍 이미 **%s** 근처 단서를 찾았어요. 다른 곳도 살펴보죠.", e.DisplayName)
		default:
			result.Reply = fmt.Sprintf("🔎 좋아요! 당신의 추리가 맞았어요. **%s 근처에서 중요한 단서가 발견됐어요.**",
				e.DisplayName)
			if e.Description != "" {
				result.Reply += "\n\n" + e.Description
			}
		}
	} else {
		result.Reply = e.Description
		if result.Reply == "" {
			result.Reply = e.DisplayName + emptyDescription
		}
	}

	session.Discover(e.ID)
	result.Clues = append(result.Clues, e.ID)
	return result
}

func (o *Orchestrator) converse(
	ctx context.Context, game *Game, session *models.Session, message string) models.TurnResult {
	history := append([]models.Turn(nil), session.History...)

	var (
		g        errgroup.Group
		reply    string
		genErr   error
		userHits []models.ClueHit
	)
	g.Go(func() error {
		userHits = game.Detector.DetectContext(ctx, message)
		return nil
	})
	g.Go(func() error {
		genCtx := ctx
		if o.timeout > 0 {
			var cancel context.CancelFunc
			genCtx, cancel = context.WithTimeout(ctx, o.timeout)
			defer cancel()
		}
		reply, genErr = o.generator.GenerateReply(genCtx, game.SystemPrompt(), history, message)
		return nil
	})
	_ = g.Wait()

	result := models.TurnResult{
		Reply:         reply,
		Clues:         []string{},
		Hints:         []string{},
		Inconsistency: "",
		Terminal:      false,
		Degraded:      false,
	}

	hits := userHits
	if genErr != nil {
		o.logger.LogAttrs(ctx, slog.LevelError, "generation failed, replying with fallback",
			slog.String("case_id", game.Case.ID), errors.SlogError(genErr))
		result.Reply = DegradedReply
		result.Degraded = true
	} else {
		hits = mergeHits(game.Detector.Detect(message+"\n"+reply), userHits)
		if contradictions := game.Detector.Contradictions(reply); len(contradictions) > 0 {
			result.Inconsistency = contradictions[0].Hint
			if result.Inconsistency == "" {
				result.Inconsistency = contradictions[0].ID
			}
		}
	}

	ids := make([]string, 0, len(hits))
	for _, h := range hits {
		ids = append(ids, h.ID)
	}
	newlyFound := session.Discover(ids...)
	result.Clues = ids

	var named []string
	for _, h := range hits {
		if !slices.Contains(newlyFound, h.ID) {
			continue
		}
		if h.Hint != "" {
			result.Hints = append(result.Hints, h.Hint)
			named = append(named, namedCluePrefix+h.Hint)
		} else {
			named = append(named, namedCluePrefix+h.ID)
		}
	}

	if len(newlyFound) > 0 {
		if game.WantsInvestigation(message) {
			result.Reply += "\n\n" + strings.Join(named, "\n")
		} else {
			result.Reply += "\n\n" + interestingClueNotice
		}
	}
	if result.Inconsistency != "" {
		result.Reply += "\n\n" + inconsistencyPrefix + result.Inconsistency
	}

	if len(newlyFound) > 0 {
		o.logger.LogAttrs(ctx, slog.LevelInfo, "clues discovered",
			slog.String("case_id", game.Case.ID), slog.Any("clues", newlyFound))
	}
	return result
}

// mergeHits keeps the order of primary and appends the hits of secondary it lacks.
func mergeHits(primary, secondary []models.ClueHit) []models.ClueHit {
	merged := append([]models.ClueHit(nil), primary...)
	for _, h := range secondary {
		if !slices.ContainsFunc(merged, func(p models.ClueHit) bool { return p.ID == h.ID }) {
			merged = append(merged, h)
		}
	}
	return merged
}

