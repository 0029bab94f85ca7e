package main

import (
	"net/http"
	"time"

	"github.com/justinas/alice"
)

func (app *application) routes(defaultTimeout time.Duration) http.Handler {
	mux := http.NewServeMux()

	session := alice.New(app.sessionManager.LoadAndSave, app.commonContext)

	mux.Handle("POST /api/chat", session.ThenFunc(app.chat))
	mux.Handle("GET /api/report", session.ThenFunc(app.report))
	mux.Handle("POST /api/submit_answer", session.ThenFunc(app.submitAnswer))
	mux.Handle("GET /api/session", session.ThenFunc(app.getSession))
	mux.Handle("DELETE /api/session", session.ThenFunc(app.resetSession))
	mux.Handle("GET /api/story/{caseID}/{nodeID}", session.ThenFunc(app.storyNode))
	mux.Handle("POST /api/story/{caseID}/{nodeID}", session.ThenFunc(app.chooseStory))

	mux.HandleFunc("GET /api/healthy", app.healthy)
	mux.HandleFunc("/", app.notFound)

	standard := alice.New(app.recoverPanic, app.logRequest, secureHeaders, app.cors)
	return standard.Then(timeoutHandler(mux, defaultTimeout))
}
