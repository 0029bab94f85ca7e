package main

import (
	"log/slog"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/myrjola/sherlockchat/internal/casefile"
	"github.com/myrjola/sherlockchat/internal/contexthelpers"
	"github.com/myrjola/sherlockchat/internal/errors"
	"github.com/myrjola/sherlockchat/internal/models"
	"github.com/myrjola/sherlockchat/internal/repositories"
)

const (
	maxMessageRunes = 2000
	caseMissingMsg  = "사건 정보를 찾을 수 없습니다."
)

func (app *application) chat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if !app.readJSON(w, r, &req) {
		return
	}
	message := strings.TrimSpace(req.Message)
	switch {
	case message == "":
		app.clientError(w, r, http.StatusBadRequest, "메시지를 입력해 주세요.")
		return
	case utf8.RuneCountInString(message) > maxMessageRunes:
		app.clientError(w, r, http.StatusRequestEntityTooLarge, "메시지가 너무 깁니다.")
		return
	case len(req.SessionID) > maxSessionIDLength:
		app.clientError(w, r, http.StatusBadRequest, "세션 ID가 올바르지 않습니다.")
		return
	}

	caseID := req.CaseID
	if caseID == "" {
		caseID = casefile.ResolveCaseID(req.Mode)
	}
	ctx := r.Context()
	game, err := app.library.Game(ctx, caseID)
	if errors.Is(err, casefile.ErrNotFound) {
		app.clientError(w, r, http.StatusNotFound, caseMissingMsg)
		return
	}
	if err != nil {
		app.serverError(w, r, errors.Wrap(err, "load game"))
		return
	}

	id := app.resolveSessionID(r, req.SessionID)
	r = contexthelpers.SetSessionID(r, id)
	ctx = r.Context()

	unlock := app.locks.Lock(id)
	defer unlock()

	session, err := app.sessions.Load(ctx, id)
	switch {
	case errors.Is(err, repositories.ErrSessionNotFound):
		session = models.NewSession(id, caseID)
		for _, turn := range req.History {
			// Client greetings arrive as system turns and are not part of the conversation.
			if turn.Role != models.RoleUser && turn.Role != models.RoleAssistant {
				continue
			}
			session.Append(turn.Role, turn.Text)
		}
	case err != nil:
		app.serverError(w, r, errors.Wrap(err, "load session"))
		return
	case session.CaseID != caseID:
		app.logger.LogAttrs(ctx, slog.LevelInfo, "case changed, starting over",
			slog.String("from_case_id", session.CaseID), slog.String("case_id", caseID))
		session = models.NewSession(id, caseID)
	}

	result := app.orchestrator.Turn(ctx, game, session, message)

	if err = app.sessions.Save(ctx, session); err != nil {
		app.serverError(w, r, errors.Wrap(err, "save session"))
		return
	}

	app.writeJSON(w, r, http.StatusOK, models.ChatResponse{TurnResult: result, SessionID: id})
}
