package entity

import (
	"strings"

	"github.com/myrjola/sherlockchat/internal/models"
	"golang.org/x/text/cases"
)

type indexed struct {
	entity models.Entity
	// keys are the case-folded id and aliases.
	keys []string
}

// Index finds direct mentions of the characters, evidence and locations of a case. It is immutable and safe for
// concurrent use.
type Index struct {
	entries []indexed
}

// New indexes characters, then evidence, then locations, each in declaration order.
func New(c *models.Case) *Index {
	idx := &Index{entries: nil}
	for _, ch := range c.Characters {
		idx.add(models.Entity{
			ID:          ch.Name,
			Kind:        models.EntityKindCharacter,
			DisplayName: ch.Name,
			Description: ch.Description,
			ExtraDetail: characterDetail(ch),
			Aliases:     ch.Aliases,
			Clue:        true,
		})
	}
	for _, ev := range c.Evidence {
		extra := ev.Details
		if extra == "" {
			extra = ev.SpoilerInvestigation
		}
		idx.add(models.Entity{
			ID:          ev.Label(),
			Kind:        models.EntityKindEvidence,
			DisplayName: ev.Label(),
			Description: ev.Description,
			ExtraDetail: extra,
			Aliases:     ev.Aliases,
			Clue:        true,
		})
	}
	for _, loc := range c.Locations {
		idx.add(models.Entity{
			ID:          loc.Name,
			Kind:        models.EntityKindLocation,
			DisplayName: loc.Name,
			Description: loc.Description,
			ExtraDetail: "",
			Aliases:     nil,
			Clue:        loc.HasClue,
		})
	}
	return idx
}

func (idx *Index) add(e models.Entity) {
	fold := cases.Fold()
	var keys []string
	for _, k := range append([]string{e.ID}, e.Aliases...) {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		keys = append(keys, fold.String(k))
	}
	if len(keys) == 0 {
		return
	}
	idx.entries = append(idx.entries, indexed{entity: e, keys: keys})
}

// FindDirectMention returns the first entity whose id or alias occurs in text, ignoring case.
//
// Ties are resolved by scan order, never by match length.
func (idx *Index) FindDirectMention(text string) (models.Entity, bool) {
	folded := cases.Fold().String(text)
	for _, entry := range idx.entries {
		for _, key := range entry.keys {
			if strings.Contains(folded, key) {
				return entry.entity, true
			}
		}
	}
	return models.Entity{}, false //nolint:exhaustruct // zero value
}

// Entities returns all indexed entities in scan order.
func (idx *Index) Entities() []models.Entity {
	entities := make([]models.Entity, len(idx.entries))
	for i, entry := range idx.entries {
		entities[i] = entry.entity
	}
	return entities
}

func characterDetail(ch models.Character) string {
	var parts []string
	if ch.Occupation != "" {
		parts = append(parts, "직업: "+ch.Occupation)
	}
	if ch.Alibi != "" {
		parts = append(parts, "알리바이: "+ch.Alibi)
	}
	if ch.Background != "" {
		parts = append(parts, "배경: "+ch.Background)
	}
	return strings.Join(parts, "\n")
}
