package main

import (
	"net/http"

	"github.com/myrjola/sherlockchat/internal/casefile"
	"github.com/myrjola/sherlockchat/internal/errors"
	"github.com/myrjola/sherlockchat/internal/models"
)

const storyMissingMsg = "스토리 파일을 찾을 수 없습니다."

func (app *application) report(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caseID := casefile.ResolveCaseID(r.URL.Query().Get("mode"))
	c, err := app.cases.Load(ctx, caseID)
	if errors.Is(err, casefile.ErrNotFound) {
		app.clientError(w, r, http.StatusNotFound, caseMissingMsg)
		return
	}
	if err != nil {
		app.serverError(w, r, errors.Wrap(err, "load case"))
		return
	}

	story, err := app.cases.Story(ctx, caseID)
	if errors.Is(err, casefile.ErrNotFound) {
		story = storyMissingMsg
	} else if err != nil {
		app.serverError(w, r, errors.Wrap(err, "load story"))
		return
	}

	app.writeJSON(w, r, http.StatusOK, models.ReportResponse{Case: c, Story: story})
}
