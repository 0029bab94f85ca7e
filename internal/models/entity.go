package models

type EntityKind string

const (
	EntityKindCharacter EntityKind = "character"
	EntityKindEvidence  EntityKind = "evidence"
	EntityKindLocation  EntityKind = "location"
)

// Entity is a character, piece of evidence or location the player can ask about directly.
type Entity struct {
	// ID is the character name, evidence label or location name. Unique within its kind.
	ID          string
	Kind        EntityKind
	DisplayName string
	Description string
	ExtraDetail string
	Aliases     []string
	// Clue is false for locations that hide nothing. Mentioning those never discovers anything.
	Clue bool
}
