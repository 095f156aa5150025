package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/warp/erp-engine/api"
	"github.com/warp/erp-engine/auth"
	"github.com/warp/erp-engine/generic"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Create or update every table and index, then exit.
The command uses the database configuration from the config file or environment variables.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(cmd)
			if err != nil {
				return err
			}
			defer a.store.Close()

			if err := a.migrate(cmd.Context()); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			a.log.Info().Msg("database migrations completed")
			return nil
		},
	}
}

func newSeedCmd() *cobra.Command {
	ids := make([]string, 0, len(api.Scenarios()))
	for _, s := range api.Scenarios() {
		ids = append(ids, s.ID)
	}

	return &cobra.Command{
		Use:       "seed <scenario>",
		Short:     "Reset the database and load a demo scenario",
		Long:      "Wipes every table, then loads one of: " + strings.Join(ids, ", ") + ".\nSeeded accounts use the password \"" + api.DemoPassword + "\".",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: ids,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(cmd)
			if err != nil {
				return err
			}
			defer a.store.Close()

			if err := a.migrate(cmd.Context()); err != nil {
				return err
			}
			clock := generic.SystemClock{}
			h := api.NewHandler(a.store, api.Deps{
				Tokens:        auth.NewTokens(a.cfg.Auth.JWTSecret, a.cfg.Auth.TokenTTL, clock),
				Clock:         clock,
				Log:           a.log,
				AllowNegative: a.cfg.Inventory.AllowNegative,
			})
			return h.LoadScenario(cmd.Context(), args[0])
		},
	}
}
