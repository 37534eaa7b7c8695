// Command inventar-tool is the operator CLI for Inventar Core: schema
// migrations, reference data seeding, assignment exports and workbook
// conversion. It talks to the store directly and does not need the
// service to be running.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/paularlott/cli"
	"github.com/paularlott/cli/env"

	_ "github.com/inventar-app/inventar-core/migrations"

	"github.com/inventar-app/inventar-core/internal/infrastructure/config"
	"github.com/inventar-app/inventar-core/internal/infrastructure/database"
	"github.com/inventar-app/inventar-core/internal/infrastructure/logging"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const defaultConfigPath = "configs/config.yaml"

func main() {
	// Load .env file if it exists
	env.Load()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	rootCmd := &cli.Command{
		Name:        "inventar-tool",
		Version:     fmt.Sprintf("%s (%s, %s)", version, commit, date),
		Usage:       "Inventar Core operator tool",
		Description: "Manage the Inventar schema, reference data and exports",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:         "config",
				Usage:        "Path to the configuration file",
				DefaultValue: defaultConfigPath,
				EnvVars:      []string{"INVENTAR_CONFIG"},
				Global:       true,
			},
			&cli.StringFlag{
				Name:         "log-level",
				Usage:        "Log level (debug, info, warn, error)",
				DefaultValue: "warn",
				EnvVars:      []string{"INVENTAR_TOOL_LOG_LEVEL"},
				Global:       true,
			},
		},
		Commands: []*cli.Command{
			migrateCommand(),
			seedCommand(),
			exportCommand(),
			convertCommand(),
		},
	}

	if err := rootCmd.Execute(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// toolEnv is what every subcommand works with.
type toolEnv struct {
	cfg *config.Config
	log *logging.Logger
	out io.Writer
}

// newEnv loads the configuration named by the global --config flag.
// A missing file at the default path falls back to built-in defaults so
// the tool is usable before a config has been written.
func newEnv(cmd *cli.Command) (*toolEnv, error) {
	path := cmd.GetString("config")
	cfg, err := loadConfig(path)
	if err != nil {
		return nil, err
	}
	if level := cmd.GetString("log-level"); level != "" {
		cfg.Logging.Level = level
	}
	return &toolEnv{
		cfg: cfg,
		log: logging.NewWithWriter(cfg.Logging, version, os.Stderr),
		out: os.Stdout,
	}, nil
}

func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err == nil {
		return cfg, nil
	}
	if path == defaultConfigPath && errors.Is(err, fs.ErrNotExist) {
		cfg = config.Default()
		if vErr := cfg.Validate(); vErr != nil {
			return nil, fmt.Errorf("validating default config: %w", vErr)
		}
		return cfg, nil
	}
	return nil, fmt.Errorf("loading config: %w", err)
}

// openDatabase opens the configured store, logging where it points.
func (e *toolEnv) openDatabase(ctx context.Context) (*database.DB, error) {
	db, err := database.Open(ctx, database.Config{
		Driver:       database.Driver(e.cfg.Database.Driver),
		Path:         e.cfg.Database.Path,
		WALMode:      e.cfg.Database.WALMode,
		BusyTimeout:  e.cfg.Database.BusyTimeout,
		DSN:          e.cfg.Database.DSN,
		MaxOpenConns: e.cfg.Database.MaxOpenConns,
	})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	e.log.Debug("database opened", "driver", db.Driver(), "path", db.Path())
	return db, nil
}

// withDatabase opens the store, runs fn and closes it again.
func (e *toolEnv) withDatabase(ctx context.Context, fn func(db *database.DB) error) error {
	db, err := e.openDatabase(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			e.log.Error("error closing database", "error", closeErr)
		}
	}()
	return fn(db)
}
