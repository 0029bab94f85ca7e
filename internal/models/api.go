package models

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Message string `json:"message"`
	// Mode is a difficulty (상, 중, 하) or a raw case id.
	Mode      string `json:"mode,omitempty"`
	CaseID    string `json:"case_id,omitempty"`
	SessionID string `json:"session_id,omitempty"`
	// History seeds a fresh session for clients that keep the transcript themselves.
	History []Turn `json:"history,omitempty"`
}

type ChatResponse struct {
	TurnResult
	SessionID string `json:"session_id"`
}

type ReportResponse struct {
	Case  *Case  `json:"case"`
	Story string `json:"story"`
}

type AnswerRequest struct {
	Mode      string `json:"mode,omitempty"`
	Answer    string `json:"answer"`
	SessionID string `json:"session_id,omitempty"`
}

// SessionState is the client view of a game session.
type SessionState struct {
	SessionID         string   `json:"session_id"`
	CaseID            string   `json:"case_id"`
	DiscoveredClueIDs []string `json:"discovered_clue_ids"`
	History           []Turn   `json:"history"`
	Terminal          bool     `json:"terminal"`
}

type ChoiceRequest struct {
	Choice string `json:"choice"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
