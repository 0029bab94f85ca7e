package main

import (
	"net/http"

	"github.com/myrjola/sherlockchat/internal/casefile"
	"github.com/myrjola/sherlockchat/internal/errors"
	"github.com/myrjola/sherlockchat/internal/models"
	"github.com/myrjola/sherlockchat/internal/story"
)

func (app *application) storyNode(w http.ResponseWriter, r *http.Request) {
	navigator, ok := app.navigator(w, r)
	if !ok {
		return
	}
	node, err := navigator.Node(r.PathValue("nodeID"))
	app.writeStoryNode(w, r, node, err)
}

func (app *application) chooseStory(w http.ResponseWriter, r *http.Request) {
	var req models.ChoiceRequest
	if !app.readJSON(w, r, &req) {
		return
	}
	navigator, ok := app.navigator(w, r)
	if !ok {
		return
	}
	node, err := navigator.Choose(r.PathValue("nodeID"), req.Choice)
	app.writeStoryNode(w, r, node, err)
}

func (app *application) navigator(w http.ResponseWriter, r *http.Request) (*story.Navigator, bool) {
	c, err := app.cases.Load(r.Context(), casefile.ResolveCaseID(r.PathValue("caseID")))
	if errors.Is(err, casefile.ErrNotFound) {
		app.clientError(w, r, http.StatusNotFound, caseMissingMsg)
		return nil, false
	}
	if err != nil {
		app.serverError(w, r, errors.Wrap(err, "load case"))
		return nil, false
	}
	return story.NewNavigator(c), true
}

func (app *application) writeStoryNode(w http.ResponseWriter, r *http.Request, node models.StoryNode, err error) {
	switch {
	case errors.Is(err, story.ErrNodeNotFound):
		app.clientError(w, r, http.StatusNotFound, "스토리 장면을 찾을 수 없습니다.")
	case errors.Is(err, story.ErrInvalidChoice):
		app.clientError(w, r, http.StatusBadRequest, "선택할 수 없는 항목입니다.")
	case err != nil:
		app.serverError(w, r, err)
	default:
		app.writeJSON(w, r, http.StatusOK, node)
	}
}
