package models

import "encoding/json"

// Case is the read-only narrative content of a single mystery.
type Case struct {
	ID         string      `json:"id"`
	Title      string      `json:"title"`
	Summary    string      `json:"summary"`
	Overview   string      `json:"case_overview"`
	Characters []Character `json:"characters"`
	Evidence   []Evidence  `json:"evidence"`
	// Locations are searchable places. Older case files declare them as {"name": hasClue}.
	Locations Locations `json:"locations"`
	// Solution is opaque to the game and only handed to the scorer.
	Solution json.RawMessage `json:"solution,omitempty"`
	Persona  Persona         `json:"chatbot_instructions"`
	// Ending is appended to the reply once every clue has been discovered.
	Ending string               `json:"ending"`
	Story  map[string]StoryNode `json:"story,omitempty"`
	// InvestigateKeywords override the default phrases that make the detective name new clues outright.
	InvestigateKeywords []string `json:"investigate_keywords,omitempty"`
}

type Character struct {
	Name        string   `json:"name"`
	Aliases     []string `json:"aliases,omitempty"`
	Description string   `json:"description"`
	Alibi       string   `json:"alibi,omitempty"`
	Background  string   `json:"background,omitempty"`
	Occupation  string   `json:"occupation,omitempty"`
}

type Evidence struct {
	Type                 string   `json:"type"`
	Name                 string   `json:"name,omitempty"`
	Aliases              []string `json:"aliases,omitempty"`
	Description          string   `json:"description"`
	SpoilerInvestigation string   `json:"spoiler_investigation,omitempty"`
	Details              string   `json:"details,omitempty"`
}

// Label is the identifier players use to refer to the evidence.
func (e Evidence) Label() string {
	if e.Name != "" {
		return e.Name
	}
	return e.Type
}

type Location struct {
	Name        string `json:"name"`
	HasClue     bool   `json:"has_clue"`
	Description string `json:"description,omitempty"`
}

// Persona configures the voice of the detective.
type Persona struct {
	Role       string   `json:"role"`
	Style      string   `json:"style"`
	Guidelines []string `json:"guidelines"`
}

// StoryNode is a pre-authored node of the branching story graph.
type StoryNode struct {
	ID      string            `json:"id,omitempty"`
	Text    string            `json:"text"`
	Choices []string          `json:"choices,omitempty"`
	Next    map[string]string `json:"next,omitempty"`
}

// Score is the verdict on a submitted final answer.
type Score struct {
	Score    int    `json:"score"`
	Feedback string `json:"feedback"`
}
