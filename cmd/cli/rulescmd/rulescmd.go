package rulescmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/myrjola/sherlockchat/internal/ai"
	"github.com/myrjola/sherlockchat/internal/casefile"
	"github.com/myrjola/sherlockchat/internal/errors"
	"github.com/myrjola/sherlockchat/internal/logging"
	"github.com/myrjola/sherlockchat/internal/models"
	"github.com/myrjola/sherlockchat/internal/rules"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var Group = &cobra.Group{
	ID:    "rules",
	Title: "Clue rules",
}

// Command is the parent of the rule authoring commands.
var Command = &cobra.Command{
	Use:     "rules",
	GroupID: "rules",
	Short:   "Generate and embed clue rules",
}

var (
	ErrUnknownFormat   = errors.NewSentinel("unknown rule file format")
	ErrUnknownProvider = errors.NewSentinel("unknown embedding provider")
)

func init() {
	generateCmd.Flags().String("format", "json", "rule file format, json or yaml")
	generateCmd.Flags().Bool("force", false, "overwrite existing rule files")
	embedCmd.Flags().String("provider", "openai", "embedding provider, openai or gemini")
	Command.AddCommand(generateCmd, embedCmd)
}

var generateCmd = &cobra.Command{
	Use:   "generate [caseID...]",
	Short: "Generate keyword rules from case files",
	Long:  `Derives yes rules from the most frequent keywords of each case. Without arguments every case is processed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		casesDir, rulesDir := dirs(cmd)
		format, _ := cmd.Flags().GetString("format")
		force, _ := cmd.Flags().GetBool("force")
		return Generate(cmd.Context(), GenerateOptions{
			CasesDir: casesDir,
			RulesDir: rulesDir,
			Format:   format,
			Force:    force,
			CaseIDs:  args,
		}, cmd.OutOrStdout(), newLogger(cmd))
	},
}

var embedCmd = &cobra.Command{
	Use:   "embed [caseID...]",
	Short: "Precompute rule embeddings for semantic matching",
	RunE: func(cmd *cobra.Command, args []string) error {
		casesDir, rulesDir := dirs(cmd)
		provider, _ := cmd.Flags().GetString("provider")
		var e ai.Embedder
		switch provider {
		case "openai":
			e = ai.NewOpenAIClient(ai.OpenAIConfig{APIKey: os.Getenv("OPENAI_API_KEY"), Model: "", BaseURL: ""})
		case "gemini":
			client, err := ai.NewGeminiClient(cmd.Context(), ai.GeminiConfig{APIKey: os.Getenv("GEMINI_API_KEY"), Model: ""})
			if err != nil {
				return errors.Wrap(err, "new gemini client")
			}
			e = client
		default:
			return errors.Wrap(ErrUnknownProvider, "select provider", slog.String("provider", provider))
		}
		ids := args
		if len(ids) == 0 {
			var err error
			if ids, err = casefile.NewRepository(casesDir, newLogger(cmd)).IDs(); err != nil {
				return errors.Wrap(err, "list cases")
			}
		}
		return Embed(cmd.Context(), e, rulesDir, ids, cmd.OutOrStdout(), newLogger(cmd))
	},
}

func dirs(cmd *cobra.Command) (string, string) {
	casesDir, _ := cmd.Flags().GetString("cases-dir")
	rulesDir, _ := cmd.Flags().GetString("rules-dir")
	return casesDir, rulesDir
}

func newLogger(cmd *cobra.Command) *slog.Logger {
	logger, _ := logging.New(cmd.ErrOrStderr(), logging.Options{Environment: "development", Level: "warn", File: ""})
	return logger
}

type GenerateOptions struct {
	CasesDir string
	RulesDir string
	Format   string
	// Force overwrites rule files that already exist. Hand-written rules are kept otherwise.
	Force   bool
	CaseIDs []string
}

// Generate writes <caseID>_rules.<format> for every case and reports what it did to out.
func Generate(ctx context.Context, opts GenerateOptions, out io.Writer, logger *slog.Logger) error {
	marshal, err := marshaller(opts.Format)
	if err != nil {
		return err
	}
	repo := casefile.NewRepository(opts.CasesDir, logger)
	ids := opts.CaseIDs
	if len(ids) == 0 {
		if ids, err = repo.IDs(); err != nil {
			return errors.Wrap(err, "list cases")
		}
	}
	if err = os.MkdirAll(opts.RulesDir, 0o750); err != nil { //nolint:mnd // rwxr-x---
		return errors.Wrap(err, "create rules dir")
	}

	for _, id := range ids {
		path := filepath.Join(opts.RulesDir, id+"_rules."+opts.Format)
		if _, statErr := os.Stat(path); statErr == nil && !opts.Force {
			_, _ = fmt.Fprintf(out, "%s: %s exists, skipped\n", id, path)
			continue
		}
		c, loadErr := repo.Load(ctx, id)
		if loadErr != nil {
			return errors.Wrap(loadErr, "load case", slog.String("case_id", id))
		}
		generated := rules.Generate(c)
		data, marshalErr := marshal(generated)
		if marshalErr != nil {
			return errors.Wrap(marshalErr, "marshal rules", slog.String("case_id", id))
		}
		if err = os.WriteFile(path, data, 0o600); err != nil { //nolint:mnd // rw-------
			return errors.Wrap(err, "write rules", slog.String("path", path))
		}
		_, _ = fmt.Fprintf(out, "%s: wrote %d rules to %s\n", id, len(generated), path)
	}
	return nil
}

func marshaller(format string) (func([]models.Rule) ([]byte, error), error) {
	switch format {
	case "json":
		return func(rs []models.Rule) ([]byte, error) {
			return json.MarshalIndent(rs, "", "  ") //nolint:wrapcheck // wrapped by caller
		}, nil
	case "yaml", "yml":
		return func(rs []models.Rule) ([]byte, error) {
			return yaml.Marshal(rs) //nolint:wrapcheck // wrapped by caller
		}, nil
	default:
		return nil, errors.Wrap(ErrUnknownFormat, "select format", slog.String("format", format))
	}
}

// Embed writes <caseID>_rules_emb.json next to the rule file of every case that has yes rules.
func Embed(ctx context.Context, e ai.Embedder, rulesDir string, caseIDs []string, out io.Writer, logger *slog.Logger) error {
	store := rules.NewStore(rulesDir, logger)
	for _, id := range caseIDs {
		set, err := store.Load(ctx, id)
		if err != nil {
			return errors.Wrap(err, "load rules", slog.String("case_id", id))
		}
		embedded, err := rules.Embed(ctx, e, set.Rules())
		if err != nil {
			return errors.Wrap(err, "embed rules", slog.String("case_id", id))
		}
		if len(embedded) == 0 {
			_, _ = fmt.Fprintf(out, "%s: no yes rules, skipped\n", id)
			continue
		}
		records := make([]rules.Record, len(embedded))
		for i, emb := range embedded {
			records[i] = emb.Record()
		}
		data, err := json.Marshal(records)
		if err != nil {
			return errors.Wrap(err, "marshal embeddings", slog.String("case_id", id))
		}
		path := filepath.Join(rulesDir, id+"_rules_emb.json")
		if err = os.WriteFile(path, data, 0o600); err != nil { //nolint:mnd // rw-------
			return errors.Wrap(err, "write embeddings", slog.String("path", path))
		}
		_, _ = fmt.Fprintf(out, "%s: embedded %d rules into %s\n", id, len(records), path)
	}
	return nil
}
