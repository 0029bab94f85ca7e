package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Locations keeps declaration order regardless of whether the case file uses the list or the legacy map format.
type Locations []Location

// UnmarshalJSON accepts either a list of [Location] or an object mapping location names to a has-clue flag.
func (l *Locations) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*l = nil
		return nil
	}

	if trimmed[0] == '[' {
		var list []Location
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return fmt.Errorf("unmarshal location list: %w", err)
		}
		*l = list
		return nil
	}

	// Go maps lose the key order, so walk the object with a token decoder instead.
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("read location object: %w", err)
	}
	var list []Location
	for dec.More() {
		key, err := dec.Token()
		if err != nil {
			return fmt.Errorf("read location name: %w", err)
		}
		name, ok := key.(string)
		if !ok {
			return fmt.Errorf("location name is %T, want string", key)
		}
		var hasClue bool
		if err = dec.Decode(&hasClue); err != nil {
			return fmt.Errorf("read location %q: %w", name, err)
		}
		list = append(list, Location{Name: name, HasClue: hasClue})
	}
	*l = list
	return nil
}

// ClueNames returns the names of locations that hide a clue, sorted for stable output.
func (l Locations) ClueNames() []string {
	var names []string
	for _, loc := range l {
		if loc.HasClue {
			names = append(names, loc.Name)
		}
	}
	sort.Strings(names)
	return names
}
