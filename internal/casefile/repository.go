package casefile

import (
	"context"
	"encoding/json"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/myrjola/sherlockchat/internal/errors"
	"github.com/myrjola/sherlockchat/internal/models"
)

var (
	// ErrNotFound is returned when a case file or story text does not exist.
	ErrNotFound = errors.NewSentinel("case data not found")
	// ErrInvalidCase is returned when a case file cannot be parsed or fails validation.
	ErrInvalidCase = errors.NewSentinel("invalid case file")
)

// DefaultCaseID is played when no difficulty mode is given.
const DefaultCaseID = "case_low"

var (
	validCaseID = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	modeCaseIDs = map[string]string{ //nolint:gochecknoglobals // lookup table
		"상": "case_high",
		"중": "case_mid",
		"하": "case_low",
	}
)

// ResolveCaseID maps a difficulty mode to its case id. Anything else is taken as a raw case id.
func ResolveCaseID(mode string) string {
	mode = strings.TrimSpace(mode)
	if mode == "" {
		return DefaultCaseID
	}
	if id, ok := modeCaseIDs[mode]; ok {
		return id
	}
	return mode
}

// Repository reads case files from a directory and keeps parsed cases for the lifetime of the process.
type Repository struct {
	dir    string
	logger *slog.Logger

	mu    sync.Mutex
	cache map[string]*models.Case
}

func NewRepository(dir string, logger *slog.Logger) *Repository {
	return &Repository{
		dir:    dir,
		logger: logger,
		mu:     sync.Mutex{},
		cache:  make(map[string]*models.Case),
	}
}

// Load returns the case with the given id. The returned case is shared and must not be modified.
func (r *Repository) Load(ctx context.Context, caseID string) (*models.Case, error) {
	if !validCaseID.MatchString(caseID) {
		return nil, errors.Wrap(ErrNotFound, "invalid case id", slog.String("case_id", caseID))
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.cache[caseID]; ok {
		return c, nil
	}

	path := filepath.Join(r.dir, caseID+".json")
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, errors.Wrap(ErrNotFound, "case file missing", slog.String("path", path))
	}
	if err != nil {
		return nil, errors.Wrap(err, "read case file", slog.String("path", path))
	}

	c, err := Parse(data)
	if err != nil {
		return nil, errors.Wrap(err, "parse case file", slog.String("path", path))
	}
	if c.ID == "" {
		c.ID = caseID
	}
	r.cache[caseID] = c
	r.logger.LogAttrs(ctx, slog.LevelInfo, "case loaded",
		slog.String("case_id", caseID),
		slog.Int("characters", len(c.Characters)),
		slog.Int("evidence", len(c.Evidence)),
		slog.Int("locations", len(c.Locations)))
	return c, nil
}

// Story returns the narrative text that accompanies the report of caseID.
func (r *Repository) Story(ctx context.Context, caseID string) (string, error) {
	if !validCaseID.MatchString(caseID) {
		return "", errors.Wrap(ErrNotFound, "invalid case id", slog.String("case_id", caseID))
	}
	path := filepath.Join(r.dir, "story", "story_"+strings.TrimPrefix(caseID, "case_")+".txt")
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		r.logger.LogAttrs(ctx, slog.LevelWarn, "story file missing", slog.String("path", path))
		return "", errors.Wrap(ErrNotFound, "story file missing", slog.String("path", path))
	}
	if err != nil {
		return "", errors.Wrap(err, "read story file", slog.String("path", path))
	}
	return string(data), nil
}

// IDs lists the case ids available in the directory.
func (r *Repository) IDs() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(r.dir, "*.json"))
	if err != nil {
		return nil, errors.Wrap(err, "glob case files")
	}
	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, strings.TrimSuffix(filepath.Base(m), ".json"))
	}
	sort.Strings(ids)
	return ids, nil
}

// Parse decodes and validates a case file.
func Parse(data []byte) (*models.Case, error) {
	var c models.Case
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, errors.Wrap(errors.Join(ErrInvalidCase, err), "unmarshal case")
	}
	if err := Validate(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks that every entity can be referred to by the player.
func Validate(c *models.Case) error {
	var errs []error
	seen := make(map[string]bool)
	check := func(kind models.EntityKind, id string, index int) {
		if strings.TrimSpace(id) == "" {
			errs = append(errs, errors.Wrap(ErrInvalidCase, "entity without name",
				slog.String("kind", string(kind)), slog.Int("index", index)))
			return
		}
		key := string(kind) + "/" + id
		if seen[key] {
			errs = append(errs, errors.Wrap(ErrInvalidCase, "duplicate entity",
				slog.String("kind", string(kind)), slog.String("id", id)))
		}
		seen[key] = true
	}
	for i, ch := range c.Characters {
		check(models.EntityKindCharacter, ch.Name, i)
	}
	for i, ev := range c.Evidence {
		check(models.EntityKindEvidence, ev.Label(), i)
	}
	for i, loc := range c.Locations {
		check(models.EntityKindLocation, loc.Name, i)
	}
	for id, node := range c.Story {
		for choice, next := range node.Next {
			if _, ok := c.Story[next]; !ok {
				errs = append(errs, errors.Wrap(ErrInvalidCase, "story choice leads nowhere",
					slog.String("node", id), slog.String("choice", choice), slog.String("next", next)))
			}
		}
	}
	return errors.Join(errs...)
}
