package models

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is a single message of the conversation.
type Turn struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// Session is the per-player game state.
//
// A session is owned by exactly one request at a time. Discovered clues only grow and History is append-only.
type Session struct {
	ID                string    `json:"id"`
	CaseID            string    `json:"case_id"`
	DiscoveredClueIDs []string  `json:"discovered_clue_ids"`
	History           []Turn    `json:"history"`
	Terminal          bool      `json:"terminal"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// NewSession starts an empty session for caseID. An empty id gets a random UUID.
func NewSession(id, caseID string) *Session {
	if id == "" {
		id = uuid.NewString()
	}
	now := time.Now().UTC()
	return &Session{
		ID:                id,
		CaseID:            caseID,
		DiscoveredClueIDs: []string{},
		History:           []Turn{},
		Terminal:          false,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

func (s *Session) HasClue(id string) bool {
	return slices.Contains(s.DiscoveredClueIDs, id)
}

// Discover records ids and returns those that were not discovered before, in argument order.
func (s *Session) Discover(ids ...string) []string {
	var newlyFound []string
	for _, id := range ids {
		if id == "" || s.HasClue(id) {
			continue
		}
		s.DiscoveredClueIDs = append(s.DiscoveredClueIDs, id)
		newlyFound = append(newlyFound, id)
	}
	return newlyFound
}

// HasAll reports whether every id in required has been discovered. An empty requirement is never satisfied so that
// cases without clues cannot end by accident.
func (s *Session) HasAll(required []string) bool {
	if len(required) == 0 {
		return false
	}
	for _, id := range required {
		if !s.HasClue(id) {
			return false
		}
	}
	return true
}

func (s *Session) Append(role Role, text string) {
	s.History = append(s.History, Turn{Role: role, Text: text})
	s.UpdatedAt = time.Now().UTC()
}
