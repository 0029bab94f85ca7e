package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/myrjola/sherlockchat/internal/errors"
	"github.com/myrjola/sherlockchat/internal/sqlite"
	"github.com/myrjola/sherlockchat/internal/testhelpers"
)

func main() {
	logger := testhelpers.NewLogger(os.Stdout)
	var (
		err       error
		start     = time.Now()
		ctx       context.Context
		sqliteURL string
		ok        bool
		cancel    context.CancelFunc
	)
	ctx = context.Background()
	ctx, cancel = context.WithTimeout(ctx, 5*time.Second) //nolint:mnd // 5 seconds

	if sqliteURL, ok = os.LookupEnv("SHERLOCK_SQLITE_URL"); !ok {
		logger.LogAttrs(ctx, slog.LevelError, "SHERLOCK_SQLITE_URL not set")
		cancel()
		os.Exit(1)
	}

	var db *sqlite.Database
	if db, err = sqlite.NewDatabase(ctx, sqliteURL, logger); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error creating database",
			slog.String("url", sqliteURL), errors.SlogError(err))
		cancel()
		os.Exit(1)
	}

	// Count the game sessions of the snapshot as a simple smoke test. Every turn must still belong to a session.
	var sessions, orphanTurns int
	if err = db.ReadOnly.GetContext(ctx, &sessions, `SELECT COUNT(*) FROM game_sessions`); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error fetching session count", errors.SlogError(err))
		cancel()
		os.Exit(1)
	}
	if sessions == 0 {
		logger.LogAttrs(ctx, slog.LevelError, "no game sessions found, something is likely wrong")
		cancel()
		os.Exit(1)
	}
	if err = db.ReadOnly.GetContext(ctx, &orphanTurns,
		`SELECT COUNT(*) FROM turns WHERE session_id NOT IN (SELECT id FROM game_sessions)`); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error fetching orphan turns", errors.SlogError(err))
		cancel()
		os.Exit(1)
	}
	if orphanTurns > 0 {
		logger.LogAttrs(ctx, slog.LevelError, "turns without session", slog.Int("count", orphanTurns))
		cancel()
		os.Exit(1)
	}
	logger.LogAttrs(ctx, slog.LevelInfo, "game session count", slog.Int("count", sessions))

	logger.LogAttrs(ctx, slog.LevelInfo, "Migration test successful 🙌", slog.Duration("duration", time.Since(start)))
	cancel()
	os.Exit(0)
}
