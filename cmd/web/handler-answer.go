package main

import (
	"log/slog"
	"net/http"

	"github.com/myrjola/sherlockchat/internal/casefile"
	"github.com/myrjola/sherlockchat/internal/contexthelpers"
	"github.com/myrjola/sherlockchat/internal/errors"
	"github.com/myrjola/sherlockchat/internal/models"
	"github.com/myrjola/sherlockchat/internal/repositories"
)

func (app *application) submitAnswer(w http.ResponseWriter, r *http.Request) {
	var req models.AnswerRequest
	if !app.readJSON(w, r, &req) {
		return
	}
	ctx := r.Context()
	caseID := casefile.ResolveCaseID(req.Mode)
	c, err := app.cases.Load(ctx, caseID)
	if errors.Is(err, casefile.ErrNotFound) {
		app.clientError(w, r, http.StatusNotFound, caseMissingMsg)
		return
	}
	if err != nil {
		app.serverError(w, r, errors.Wrap(err, "load case"))
		return
	}

	score := app.scorer.Score(ctx, c, req.Answer)

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = contexthelpers.SessionID(ctx)
	}
	// The grade is returned even when it cannot be stored.
	if _, err = app.submissions.Create(ctx, repositories.Submission{ //nolint:exhaustruct // assigned on insert
		SessionID: sessionID,
		CaseID:    caseID,
		Answer:    req.Answer,
		Score:     score.Score,
		Feedback:  score.Feedback,
	}); err != nil {
		app.logger.LogAttrs(ctx, slog.LevelError, "error storing submission", errors.SlogError(err))
	}

	app.writeJSON(w, r, http.StatusOK, score)
}
