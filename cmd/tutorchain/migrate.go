package main

import (
	"errors"
	"fmt"

	"github.com/Freeeeeet/tutorchain/internal/app"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newMigrateCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down|version]",
		Short:     "Manage the database schema",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down", "version"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if e.cfg.DBDSN == "" {
				return errors.New("DB_DSN is required but not set")
			}

			ctx := cmd.Context()
			pool, err := openPool(ctx, e.cfg.DBDSN)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator, err := app.NewMigrator(pool, e.cfg.MigrationsDir, e.logger)
			if err != nil {
				return err
			}
			defer migrator.Close()

			action := "up"
			if len(args) == 1 {
				action = args[0]
			}

			switch action {
			case "down":
				return migrator.Down(ctx)
			case "version":
				version, err := migrator.Version(ctx)
				if err != nil {
					return err
				}
				e.logger.Info("Database schema version", zap.Int64("version", version))
				_, err = fmt.Fprintln(cmd.OutOrStdout(), version)
				return err
			default:
				return migrator.Run(ctx)
			}
		},
	}
}
