package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/myrjola/sherlockchat/internal/e2etest"
	"github.com/myrjola/sherlockchat/internal/errors"
	"github.com/myrjola/sherlockchat/internal/logging"
	"github.com/myrjola/sherlockchat/internal/models"
)

// TestGame plays a turn, reads the session back and resets it. Generation may be degraded, the API must not fail.
func TestGame(client *e2etest.Client) error {
	ctx := context.Background()
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second) //nolint:mnd // one real generation
	defer cancel()
	var err error

	if err = client.WaitForReady(ctx, "/api/healthy"); err != nil {
		return errors.Wrap(err, "wait for ready")
	}
	var report models.ReportResponse
	if report, err = client.Report(ctx, "하"); err != nil {
		return errors.Wrap(err, "fetch report")
	}
	if report.Case == nil || report.Case.Title == "" {
		return errors.New("report without case title")
	}
	var resp models.ChatResponse
	if resp, err = client.Chat(ctx, models.ChatRequest{Message: "사건 개요를 알려줘", Mode: "하"}); err != nil {
		return errors.Wrap(err, "chat")
	}
	if resp.Reply == "" || resp.SessionID == "" {
		return errors.New("empty chat response", slog.String("session_id", resp.SessionID))
	}
	var state models.SessionState
	if state, err = client.Session(ctx); err != nil {
		return errors.Wrap(err, "get session")
	}
	if len(state.History) < 2 { //nolint:mnd // user and assistant turn
		return errors.New("turn was not recorded", slog.Int("history", len(state.History)))
	}
	if err = client.ResetSession(ctx); err != nil {
		return errors.Wrap(err, "reset session")
	}
	return nil
}

func main() {
	loggerHandler := logging.NewContextHandler(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource:   false,
		Level:       slog.LevelDebug,
		ReplaceAttr: nil,
	}))
	logger := slog.New(loggerHandler)
	ctx := context.Background()

	if len(os.Args) != 2 { //nolint:mnd // we expect only hostname to be passed as argument.
		logger.LogAttrs(ctx, slog.LevelError, "usage: smoketest <hostname>")
		os.Exit(1)
	}

	var (
		hostname = os.Args[1]
		url      = "https://" + hostname
		client   *e2etest.Client
		err      error
	)
	ctx = logging.WithAttrs(ctx, slog.String("hostname", url))

	if client, err = e2etest.NewClient(url); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error creating client", errors.SlogError(err))
		os.Exit(1)
	}
	if err = TestGame(client); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error testing game", errors.SlogError(err))
		os.Exit(1)
	}

	logger.LogAttrs(ctx, slog.LevelInfo, "Smoke test successful 🙌")
	os.Exit(0)
}
