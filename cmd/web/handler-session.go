package main

import (
	"net/http"

	"github.com/myrjola/sherlockchat/internal/contexthelpers"
	"github.com/myrjola/sherlockchat/internal/errors"
	"github.com/myrjola/sherlockchat/internal/models"
	"github.com/myrjola/sherlockchat/internal/repositories"
)

const sessionMissingMsg = "세션을 찾을 수 없습니다."

func (app *application) getSession(w http.ResponseWriter, r *http.Request) {
	id := requestedSessionID(r)
	if id == "" {
		app.clientError(w, r, http.StatusNotFound, sessionMissingMsg)
		return
	}
	session, err := app.sessions.Load(r.Context(), id)
	if errors.Is(err, repositories.ErrSessionNotFound) {
		app.clientError(w, r, http.StatusNotFound, sessionMissingMsg)
		return
	}
	if err != nil {
		app.serverError(w, r, errors.Wrap(err, "load session"))
		return
	}

	app.writeJSON(w, r, http.StatusOK, models.SessionState{
		SessionID:         session.ID,
		CaseID:            session.CaseID,
		DiscoveredClueIDs: session.DiscoveredClueIDs,
		History:           session.History,
		Terminal:          session.Terminal,
	})
}

// resetSession forgets the game session. The next chat turn starts a new one.
func (app *application) resetSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := requestedSessionID(r)
	if id != "" {
		unlock := app.locks.Lock(id)
		err := app.sessions.Delete(ctx, id)
		unlock()
		if err != nil {
			app.serverError(w, r, errors.Wrap(err, "delete session"))
			return
		}
	}
	if id == contexthelpers.SessionID(ctx) {
		app.sessionManager.Remove(ctx, sessionIDKey)
	}
	w.WriteHeader(http.StatusNoContent)
}
