/*
main.go - Application entry point

PURPOSE:
  Command-line front end of the ERP engine. Every command loads the same
  configuration (defaults, --config file, ERP_* environment) and opens the
  configured database.

COMMANDS:
  serve              run the HTTP API until SIGINT/SIGTERM
  migrate            create or update the schema, then exit
  seed <scenario>    reset the database and load a demo scenario

EXAMPLES:
  # Local SQLite file, console logs
  ERP_AUTH_JWT_SECRET=dev ./server serve

  # PostgreSQL, JSON logs
  ERP_DATABASE_DRIVER=postgres \
  ERP_DATABASE_DSN="host=localhost user=erp dbname=erp sslmode=disable" \
  ERP_LOG_FORMAT=json ./server serve --config /etc/erp/config.yaml

  # Demo data
  ./server seed procurement-cycle

SEE ALSO:
  - config/config.go: every setting and its default
  - api/server.go: router configuration
*/
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/warp/erp-engine/config"
	"github.com/warp/erp-engine/store/rdb"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "server",
		Short:        "ERP workflow engine",
		Long:         "HR, finance, inventory and procurement workflows over a relational database.",
		SilenceUsage: true,
	}
	root.PersistentFlags().String("config", "", "config file path (YAML); environment variables prefixed ERP_ override it")

	root.AddCommand(newServeCmd(), newMigrateCmd(), newSeedCmd())
	return root
}

// app is what every command starts from.
type app struct {
	cfg   *config.Config
	log   zerolog.Logger
	store *rdb.Store
}

// bootstrap loads configuration, builds the logger and opens the database.
// The caller closes the store.
func bootstrap(cmd *cobra.Command) (*app, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log := newLogger(cfg.Log, os.Stderr)

	store, err := rdb.Open(cfg.Database.Store(), log)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	log.Info().Str("driver", cfg.Database.Driver).Msg("database connected")
	return &app{cfg: cfg, log: log, store: store}, nil
}

func (a *app) migrate(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()
	return a.store.Migrate(ctx)
}

func newLogger(cfg config.LogConfig, out io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	if strings.EqualFold(cfg.Format, "console") {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	return zerolog.New(out).Level(level).With().Timestamp().Str("service", "erp-engine").Logger()
}
