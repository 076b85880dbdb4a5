package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/poopstats/poopstats/internal/bot"
	"github.com/poopstats/poopstats/internal/engine"
	"github.com/poopstats/poopstats/internal/scheduler"
	"github.com/poopstats/poopstats/internal/state"
	"github.com/poopstats/poopstats/internal/store"
)

// Default configuration constants
const (
	// DefaultStateDir is the default directory for poopstats state data
	DefaultStateDir = "/var/lib/poopstats"
	// DefaultDBFileName is the default SQLite database filename
	DefaultDBFileName = "poopstats.db"
	// DefaultTimezone is used when TZ_NAME is not set
	DefaultTimezone = "Europe/Moscow"
	// DefaultTickSeconds is the scheduler polling interval
	DefaultTickSeconds = 20
	// DefaultMaxTextLength caps free-text answers
	DefaultMaxTextLength = 1000
)

func main() {
	initializeLogger()

	config := loadEnvironmentConfig()
	flags := parseCommandLineFlags(config)

	if *flags.token == "" {
		slog.Error("TELEGRAM_TOKEN is required")
		os.Exit(1)
	}

	loc, err := time.LoadLocation(*flags.timezone)
	if err != nil {
		slog.Error("Failed to load timezone", "tz", *flags.timezone, "error", err)
		os.Exit(1)
	}

	st, err := openStore(flags)
	if err != nil {
		slog.Error("Failed to open store", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := st.Close(); err != nil {
			slog.Error("Failed to close store", "error", err)
		}
	}()

	states := state.NewStore()
	eng := engine.New(states, st, *flags.maxTextLength)

	tgBot, err := bot.New(*flags.token, st, states, eng, loc)
	if err != nil {
		slog.Error("Failed to start bot", "error", err)
		os.Exit(1)
	}

	sched := scheduler.New(st, tgBot.Notify, loc, time.Duration(*flags.tickSeconds)*time.Second)
	if err := sched.Start(); err != nil {
		slog.Error("Failed to start scheduler", "error", err)
		os.Exit(1)
	}
	defer sched.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slog.Info("poopstats is running", "tz", *flags.timezone, "tick_seconds", *flags.tickSeconds)
	if err := tgBot.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("Bot stopped with error", "error", err)
		os.Exit(1)
	}
	slog.Info("poopstats exited successfully")
}

// Config holds environment configuration
type Config struct {
	Token         string
	DatabaseURL   string
	StateDir      string
	Timezone      string
	TickSeconds   int
	MaxTextLength int
}

// Flags holds command line flag values
type Flags struct {
	token         *string
	dbDSN         *string
	stateDir      *string
	timezone      *string
	tickSeconds   *int
	maxTextLength *int
}

// initializeLogger sets up structured logging with debug level
func initializeLogger() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	slog.SetDefault(logger)
}

// loadEnvironmentConfig loads configuration from environment variables and .env file
func loadEnvironmentConfig() Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	} else {
		slog.Debug("successfully loaded .env file")
	}

	config := Config{
		Token:         os.Getenv("TELEGRAM_TOKEN"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		StateDir:      os.Getenv("POOPSTATS_STATE_DIR"),
		Timezone:      os.Getenv("TZ_NAME"),
		TickSeconds:   DefaultTickSeconds,
		MaxTextLength: DefaultMaxTextLength,
	}

	if config.StateDir == "" {
		config.StateDir = DefaultStateDir
		slog.Debug("No POOPSTATS_STATE_DIR set, using default", "default_state_dir", config.StateDir)
	}
	if config.Timezone == "" {
		config.Timezone = DefaultTimezone
	}
	if v := os.Getenv("SCHEDULER_TICK_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			config.TickSeconds = n
		} else {
			slog.Debug("Ignoring invalid SCHEDULER_TICK_SECONDS", "value", v)
		}
	}
	if v := os.Getenv("MAX_TEXT_LENGTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			config.MaxTextLength = n
		} else {
			slog.Debug("Ignoring invalid MAX_TEXT_LENGTH", "value", v)
		}
	}
	return config
}

// parseCommandLineFlags parses flags with environment values as defaults
func parseCommandLineFlags(config Config) Flags {
	flags := Flags{
		token:         flag.String("token", config.Token, "Telegram bot token"),
		dbDSN:         flag.String("db-dsn", config.DatabaseURL, "database DSN (Postgres URL or SQLite path)"),
		stateDir:      flag.String("state-dir", config.StateDir, "state directory for SQLite data"),
		timezone:      flag.String("tz", config.Timezone, "IANA timezone for schedules"),
		tickSeconds:   flag.Int("tick-seconds", config.TickSeconds, "scheduler polling interval in seconds"),
		maxTextLength: flag.Int("max-text-length", config.MaxTextLength, "maximum accepted answer length"),
	}
	flag.Parse()
	return flags
}

// openStore picks the backend from the DSN: Postgres when the DSN looks like
// a Postgres URL, SQLite otherwise (defaulting to a file under the state dir).
func openStore(flags Flags) (store.Store, error) {
	dsn := *flags.dbDSN
	if dsn != "" && store.DetectDSNType(dsn) == "postgres" {
		slog.Info("Using Postgres store")
		return store.NewPostgresStore(store.WithPostgresDSN(dsn))
	}
	if dsn == "" {
		dsn = filepath.Join(*flags.stateDir, DefaultDBFileName)
		slog.Debug("No DSN provided, using SQLite under state dir", "path", dsn)
	}
	slog.Info("Using SQLite store", "path", dsn)
	return store.NewSQLiteStore(store.WithSQLiteDSN(dsn))
}
