package dialogue

import (
	"context"
	"log/slog"
	"sync"

	"github.com/myrjola/sherlockchat/internal/ai"
	"github.com/myrjola/sherlockchat/internal/casefile"
	"github.com/myrjola/sherlockchat/internal/clue"
	"github.com/myrjola/sherlockchat/internal/entity"
	"github.com/myrjola/sherlockchat/internal/errors"
	"github.com/myrjola/sherlockchat/internal/rules"
)

// Library assembles games on first use and keeps them for the lifetime of the process.
type Library struct {
	cases    *casefile.Repository
	rules    *rules.Store
	embedder ai.Embedder
	logger   *slog.Logger

	mu    sync.Mutex
	games map[string]*Game
}

// NewLibrary constructs a Library. A non-nil embedder enables semantic matching for cases with rule embeddings.
func NewLibrary(cases *casefile.Repository, ruleStore *rules.Store, e ai.Embedder, logger *slog.Logger) *Library {
	return &Library{
		cases:    cases,
		rules:    ruleStore,
		embedder: e,
		logger:   logger,
		mu:       sync.Mutex{},
		games:    make(map[string]*Game),
	}
}

// Game returns the game of caseID.
//
// Fails with [casefile.ErrNotFound] for unknown cases and with [rules.ErrRuleLoad] for malformed rule files.
func (l *Library) Game(ctx context.Context, caseID string) (*Game, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if g, ok := l.games[caseID]; ok {
		return g, nil
	}

	c, err := l.cases.Load(ctx, caseID)
	if err != nil {
		return nil, errors.Wrap(err, "load case", slog.String("case_id", caseID))
	}
	set, err := l.rules.Load(ctx, caseID)
	if err != nil {
		return nil, errors.Wrap(err, "load rules", slog.String("case_id", caseID))
	}

	var semantic clue.Matcher
	if l.embedder != nil && len(set.Embedded()) > 0 {
		semantic = clue.NewSemanticMatcher(l.embedder, set.Embedded(), clue.DefaultThreshold)
	}
	g := NewGame(c, entity.New(c), clue.NewDetector(set, semantic, l.logger))
	l.games[caseID] = g
	return g, nil
}
