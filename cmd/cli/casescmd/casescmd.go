package casescmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/myrjola/sherlockchat/internal/casefile"
	"github.com/myrjola/sherlockchat/internal/errors"
	"github.com/myrjola/sherlockchat/internal/logging"
	"github.com/myrjola/sherlockchat/internal/rules"
	"github.com/spf13/cobra"
)

var Group = &cobra.Group{
	ID:    "cases",
	Title: "Case files",
}

var Command = &cobra.Command{
	Use:     "cases",
	GroupID: "cases",
	Short:   "Inspect case files",
}

// ErrInvalid is returned when at least one case failed validation.
var ErrInvalid = errors.NewSentinel("validation failed")

func init() {
	Command.AddCommand(validateCmd)
}

var validateCmd = &cobra.Command{
	Use:   "validate [caseID...]",
	Short: "Validate case and rule files",
	Long:  `Parses every case with its rules and reports problems. Without arguments every case is checked.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		casesDir, _ := cmd.Flags().GetString("cases-dir")
		rulesDir, _ := cmd.Flags().GetString("rules-dir")
		logger, _ := logging.New(cmd.ErrOrStderr(), logging.Options{Environment: "development", Level: "warn", File: ""})
		return Validate(cmd.Context(), casesDir, rulesDir, args, cmd.OutOrStdout(), logger)
	},
}

// Validate loads every case and its rules. One line per case is written to out.
func Validate(ctx context.Context, casesDir, rulesDir string, caseIDs []string, out io.Writer, logger *slog.Logger) error {
	repo := casefile.NewRepository(casesDir, logger)
	store := rules.NewStore(rulesDir, logger)
	ids := caseIDs
	if len(ids) == 0 {
		var err error
		if ids, err = repo.IDs(); err != nil {
			return errors.Wrap(err, "list cases")
		}
	}

	failed := 0
	for _, id := range ids {
		c, err := repo.Load(ctx, id)
		if err != nil {
			failed++
			_, _ = fmt.Fprintf(out, "FAIL %s: %v\n", id, err)
			continue
		}
		set, err := store.Load(ctx, id)
		if err != nil {
			failed++
			_, _ = fmt.Fprintf(out, "FAIL %s: %v\n", id, err)
			continue
		}
		required := set.ClueIDs()
		if len(required) == 0 {
			required = c.Locations.ClueNames()
		}
		_, _ = fmt.Fprintf(out, "ok   %s: %d characters, %d evidence, %d locations, %d rules, %d required clues\n",
			id, len(c.Characters), len(c.Evidence), len(c.Locations), set.Len(), len(required))
		if len(required) == 0 {
			_, _ = fmt.Fprintf(out, "warn %s: no required clues, the case can never be solved\n", id)
		}
	}
	if failed > 0 {
		return errors.Wrap(ErrInvalid, "validate cases", slog.Int("failed", failed), slog.Int("total", len(ids)))
	}
	return nil
}
