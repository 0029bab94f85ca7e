package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/joho/godotenv"
	"github.com/myrjola/sherlockchat/internal/ai"
	"github.com/myrjola/sherlockchat/internal/casefile"
	"github.com/myrjola/sherlockchat/internal/dialogue"
	"github.com/myrjola/sherlockchat/internal/envstruct"
	"github.com/myrjola/sherlockchat/internal/errors"
	"github.com/myrjola/sherlockchat/internal/logging"
	"github.com/myrjola/sherlockchat/internal/pprofserver"
	"github.com/myrjola/sherlockchat/internal/repositories"
	"github.com/myrjola/sherlockchat/internal/rules"
	"github.com/myrjola/sherlockchat/internal/scoring"
	"github.com/myrjola/sherlockchat/internal/sessionstore"
	"github.com/myrjola/sherlockchat/internal/sqlite"
)

type application struct {
	logger         *slog.Logger
	cases          *casefile.Repository
	library        *dialogue.Library
	orchestrator   *dialogue.Orchestrator
	scorer         *scoring.Scorer
	sessions       sessionStore
	submissions    *repositories.SubmissionRepository
	sessionManager *scs.SessionManager
	locks          *keyedMutex
	allowedOrigin  string
}

type config struct {
	// Addr is the address to listen on. It's possible to choose the address dynamically with localhost:0.
	Addr string `env:"SHERLOCK_ADDR" envDefault:"localhost:4000"`
	// PprofAddr is the loopback address for pprof. Empty disables it.
	PprofAddr string `env:"SHERLOCK_PPROF_ADDR" envDefault:":6060"`
	// SqliteURL is the URL to the SQLite database. You can use ":memory:" for an ethereal in-memory database.
	SqliteURL string `env:"SHERLOCK_SQLITE_URL" envDefault:"./sherlockchat.sqlite"`
	CasesDir  string `env:"SHERLOCK_CASES_DIR" envDefault:"./cases"`
	RulesDir  string `env:"SHERLOCK_RULES_DIR" envDefault:"./cases/rules"`
	// SessionStore is either sqlite or redis.
	SessionStore string        `env:"SHERLOCK_SESSION_STORE" envDefault:"sqlite"`
	RedisAddr    string        `env:"SHERLOCK_REDIS_ADDR" envDefault:"localhost:6379"`
	SessionTTL   time.Duration `env:"SHERLOCK_SESSION_TTL" envDefault:"168h"`
	// LLMProvider is openai, gemini or mock. The mock answers every prompt with a canned reply.
	LLMProvider       string        `env:"SHERLOCK_LLM_PROVIDER" envDefault:"openai"`
	OpenAIAPIKey      string        `env:"OPENAI_API_KEY" envDefault:""`
	OpenAIModel       string        `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	OpenAIBaseURL     string        `env:"OPENAI_BASE_URL" envDefault:""`
	GeminiAPIKey      string        `env:"GEMINI_API_KEY" envDefault:""`
	GeminiModel       string        `env:"GEMINI_MODEL" envDefault:"gemini-2.0-flash"`
	SemanticMatching  bool          `env:"SHERLOCK_SEMANTIC_MATCHING" envDefault:"false"`
	GenerationTimeout time.Duration `env:"SHERLOCK_GENERATION_TIMEOUT" envDefault:"20s"`
	AllowedOrigin     string        `env:"SHERLOCK_ALLOWED_ORIGIN" envDefault:"*"`
}

type logConfig struct {
	Environment string `env:"SHERLOCK_ENVIRONMENT" envDefault:"development"`
	Level       string `env:"SHERLOCK_LOG_LEVEL" envDefault:"debug"`
	File        string `env:"SHERLOCK_LOG_FILE" envDefault:""`
}

var ErrInvalidConfig = errors.NewSentinel("invalid configuration")

func run(ctx context.Context, logger *slog.Logger, lookupEnv func(string) (string, bool)) error {
	var (
		err error
		cfg config
	)
	if err = envstruct.Populate(&cfg, lookupEnv); err != nil {
		return errors.Wrap(err, "populate config")
	}

	if cfg.PprofAddr != "" {
		pprofserver.Launch(ctx, cfg.PprofAddr, logger)
	}

	var db *sqlite.Database
	if db, err = sqlite.NewDatabase(ctx, cfg.SqliteURL, logger); err != nil {
		return errors.Wrap(err, "open db", slog.String("url", cfg.SqliteURL))
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			logger.LogAttrs(ctx, slog.LevelError, "error closing db", errors.SlogError(closeErr))
		}
	}()

	var sessions sessionStore
	if sessions, err = newSessionStore(ctx, cfg, db, logger); err != nil {
		return err
	}
	if closer, ok := sessions.(io.Closer); ok {
		defer func() {
			_ = closer.Close()
		}()
	}

	var (
		generator ai.Generator
		embedder  ai.Embedder
	)
	if generator, embedder, err = newAIClient(ctx, cfg); err != nil {
		return err
	}
	if !cfg.SemanticMatching {
		embedder = nil
	}

	cookieStore := sqlite3store.NewWithCleanupInterval(db.ReadWrite.DB, time.Hour)
	defer cookieStore.StopCleanup()
	sessionManager := scs.New()
	sessionManager.Store = cookieStore
	sessionManager.Lifetime = cfg.SessionTTL
	sessionManager.Cookie.Name = "sherlock_session"
	// The frontend is hosted separately.
	sessionManager.Cookie.SameSite = http.SameSiteNoneMode
	sessionManager.Cookie.Secure = true

	cases := casefile.NewRepository(cfg.CasesDir, logger)
	app := application{
		logger:         logger,
		cases:          cases,
		library:        dialogue.NewLibrary(cases, rules.NewStore(cfg.RulesDir, logger), embedder, logger),
		orchestrator:   dialogue.NewOrchestrator(generator, cfg.GenerationTimeout, logger),
		scorer:         scoring.NewScorer(generator, logger),
		sessions:       sessions,
		submissions:    repositories.NewSubmissionRepository(db, logger),
		sessionManager: sessionManager,
		locks:          newKeyedMutex(),
		allowedOrigin:  cfg.AllowedOrigin,
	}

	if err = app.configureAndStartServer(ctx, cfg.Addr, cfg.GenerationTimeout); err != nil {
		return errors.Wrap(err, "start server")
	}
	return nil
}

func newSessionStore(ctx context.Context, cfg config, db *sqlite.Database, logger *slog.Logger) (sessionStore, error) {
	switch cfg.SessionStore {
	case "sqlite":
		return repositories.NewSessionRepository(db, logger), nil
	case "redis":
		store, err := sessionstore.NewRedisStore(cfg.RedisAddr, cfg.SessionTTL, logger)
		if err != nil {
			return nil, errors.Wrap(err, "new redis store")
		}
		if err = store.Ping(ctx); err != nil {
			_ = store.Close()
			return nil, errors.Wrap(err, "connect redis", slog.String("redis_addr", cfg.RedisAddr))
		}
		return store, nil
	default:
		return nil, errors.Wrap(ErrInvalidConfig, "select session store",
			slog.String("session_store", cfg.SessionStore))
	}
}

func newAIClient(ctx context.Context, cfg config) (ai.Generator, ai.Embedder, error) {
	switch cfg.LLMProvider {
	case "openai":
		client := ai.NewOpenAIClient(ai.OpenAIConfig{
			APIKey:  cfg.OpenAIAPIKey,
			Model:   cfg.OpenAIModel,
			BaseURL: cfg.OpenAIBaseURL,
		})
		return client, client, nil
	case "gemini":
		client, err := ai.NewGeminiClient(ctx, ai.GeminiConfig{APIKey: cfg.GeminiAPIKey, Model: cfg.GeminiModel})
		if err != nil {
			return nil, nil, errors.Wrap(err, "new gemini client")
		}
		return client, client, nil
	case "mock":
		client := ai.NewMockClient()
		return client, client, nil
	default:
		return nil, nil, errors.Wrap(ErrInvalidConfig, "select llm provider",
			slog.String("llm_provider", cfg.LLMProvider))
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	// A missing .env is fine, the environment may already be populated.
	dotenvErr := godotenv.Load()

	var lc logConfig
	if err := envstruct.Populate(&lc, os.LookupEnv); err != nil {
		lc = logConfig{Environment: "development", Level: "debug", File: ""}
	}
	logger, logCloser := logging.New(os.Stdout, logging.Options{
		Environment: lc.Environment,
		Level:       lc.Level,
		File:        lc.File,
	})
	if dotenvErr != nil && !errors.Is(dotenvErr, os.ErrNotExist) {
		logger.LogAttrs(ctx, slog.LevelWarn, "could not load .env", errors.SlogError(dotenvErr))
	}

	err := run(ctx, logger, os.LookupEnv)
	stop()
	if err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "failure starting application", errors.SlogError(err))
		_ = logCloser.Close()
		os.Exit(1)
	}
	_ = logCloser.Close()
}
