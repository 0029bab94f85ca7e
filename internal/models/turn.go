package models

type HitSource string

const (
	HitSourceRule     HitSource = "rule"
	HitSourceEntity   HitSource = "entity"
	HitSourceSemantic HitSource = "semantic"
)

// ClueHit is a single detection produced by scanning text.
type ClueHit struct {
	ID      string    `json:"id"`
	Hint    string    `json:"hint,omitempty"`
	Verdict Verdict   `json:"verdict"`
	Source  HitSource `json:"source"`
}

// TurnResult is what one conversational turn produces.
type TurnResult struct {
	Reply string `json:"reply"`
	// Clues lists every clue detected this turn, newly or previously discovered, in detection order.
	Clues []string `json:"clues"`
	// Hints belong to the clues discovered for the first time this turn.
	Hints []string `json:"hints"`
	// Inconsistency is the hint of a contradiction found in the generated reply.
	Inconsistency string `json:"inconsistency,omitempty"`
	Terminal      bool   `json:"terminal"`
	// Degraded is true when the generator failed and the reply is a fallback.
	Degraded bool `json:"degraded,omitempty"`
}
