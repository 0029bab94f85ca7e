package rules

import (
	"context"
	"encoding/json"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/myrjola/sherlockchat/internal/errors"
	"github.com/myrjola/sherlockchat/internal/models"
	"gopkg.in/yaml.v3"
)

var (
	// ErrRuleLoad is returned when a rule source exists but cannot be parsed.
	ErrRuleLoad = errors.NewSentinel("malformed rule source")
	// ErrRegex marks a rule whose pattern is not a valid regular expression.
	ErrRegex = errors.NewSentinel("invalid rule pattern")
)

// record is the on-disk shape of a rule. Older rule files carry the hint in "evidence".
type record struct {
	ID            string    `json:"id"             yaml:"id"`
	Pattern       string    `json:"pattern"        yaml:"pattern"`
	Verdict       string    `json:"verdict"        yaml:"verdict"`
	Hint          string    `json:"hint"           yaml:"hint"`
	Evidence      string    `json:"evidence"       yaml:"evidence"`
	EvidenceLabel string    `json:"evidence_label" yaml:"evidence_label"`
	Embedding     []float32 `json:"embedding"      yaml:"embedding"`
}

func (r record) rule() models.Rule {
	hint := r.Hint
	if hint == "" {
		hint = r.Evidence
	}
	return models.Rule{
		ID:            strings.TrimSpace(r.ID),
		Pattern:       r.Pattern,
		Verdict:       models.ParseVerdict(r.Verdict),
		Hint:          hint,
		EvidenceLabel: strings.TrimSpace(r.EvidenceLabel),
	}
}

// Store loads rule sets from a directory and caches them by case id for the lifetime of the process.
type Store struct {
	dir    string
	logger *slog.Logger

	mu    sync.Mutex
	cache map[string]*Set
}

func NewStore(dir string, logger *slog.Logger) *Store {
	return &Store{
		dir:    dir,
		logger: logger,
		mu:     sync.Mutex{},
		cache:  make(map[string]*Set),
	}
}

// Load returns the rule set of caseID.
//
// A missing rule file yields an empty set. A malformed one fails with [ErrRuleLoad] and is retried on the next call.
func (s *Store) Load(ctx context.Context, caseID string) (*Set, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if set, ok := s.cache[caseID]; ok {
		return set, nil
	}

	path, format := s.find(caseID)
	if path == "" {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "no rules for case, detection disabled",
			slog.String("case_id", caseID), slog.String("dir", s.dir))
		set := &Set{rules: nil, embedded: nil}
		s.cache[caseID] = set
		return set, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read rule file", slog.String("path", path))
	}
	records, err := decode(data, format)
	if err != nil {
		return nil, errors.Wrap(errors.Join(ErrRuleLoad, err), "decode rule file", slog.String("path", path))
	}
	set := s.build(ctx, caseID, records)

	embedded, err := s.loadEmbeddings(ctx, caseID)
	if err != nil {
		return nil, err
	}
	set.embedded = embedded

	s.cache[caseID] = set
	s.logger.LogAttrs(ctx, slog.LevelInfo, "rules loaded",
		slog.String("case_id", caseID),
		slog.String("path", path),
		slog.Int("rules", set.Len()),
		slog.Int("embedded", len(embedded)))
	return set, nil
}

func (s *Store) find(caseID string) (string, string) {
	for _, ext := range []string{".json", ".yaml", ".yml"} {
		path := filepath.Join(s.dir, caseID+"_rules"+ext)
		if _, err := os.Stat(path); err == nil {
			return path, ext
		}
	}
	return "", ""
}

func decode(data []byte, format string) ([]record, error) {
	var records []record
	if format == ".json" {
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, errors.Wrap(err, "unmarshal json")
		}
		return records, nil
	}
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, errors.Wrap(err, "unmarshal yaml")
	}
	return records, nil
}

// build compiles records in declaration order. Blank patterns are dropped.
func (s *Store) build(ctx context.Context, caseID string, records []record) *Set {
	set := &Set{rules: make([]Compiled, 0, len(records)), embedded: nil}
	for i, r := range records {
		rule := r.rule()
		if strings.TrimSpace(rule.Pattern) == "" {
			s.logger.LogAttrs(ctx, slog.LevelWarn, "skipping rule with blank pattern",
				slog.String("case_id", caseID), slog.Int("index", i))
			continue
		}
		compiled, err := compile(rule)
		if err != nil {
			err = errors.Wrap(errors.Join(ErrRegex, err), "compile rule pattern",
				slog.String("case_id", caseID), slog.Int("index", i), slog.String("pattern", rule.Pattern))
			s.logger.LogAttrs(ctx, slog.LevelWarn, "rule falls back to literal matching", errors.SlogError(err))
		}
		set.rules = append(set.rules, compiled)
	}
	return set
}

func (s *Store) loadEmbeddings(ctx context.Context, caseID string) ([]Embedded, error) {
	path := filepath.Join(s.dir, caseID+"_rules_emb.json")
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "read embedding file", slog.String("path", path))
	}
	var records []record
	if err = json.Unmarshal(data, &records); err != nil {
		return nil, errors.Wrap(errors.Join(ErrRuleLoad, err), "decode embedding file", slog.String("path", path))
	}
	embedded := make([]Embedded, 0, len(records))
	for i, r := range records {
		if len(r.Embedding) == 0 {
			s.logger.LogAttrs(ctx, slog.LevelWarn, "skipping rule without embedding",
				slog.String("case_id", caseID), slog.Int("index", i))
			continue
		}
		embedded = append(embedded, Embedded{Rule: r.rule(), Vector: r.Embedding})
	}
	return embedded, nil
}
