package main

import (
	"fmt"
	"os"

	"github.com/Freeeeeet/tutorchain/internal/app"
	"github.com/Freeeeeet/tutorchain/internal/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// env общий для всех команд конфиг и логгер
type env struct {
	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	e := &env{}

	rootCmd := &cobra.Command{
		Use:           "tutorchain",
		Short:         "Tutor matching, quizzes and ledger-backed sessions",
		Long:          "tutorchain matches learners with tutors, runs quizzes and records sessions, scores and rewards on an EVM ledger.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			// До чтения .env окружение известно только из переменных процесса
			bootstrapEnv := os.Getenv("ENV")
			bootstrap := app.NewLogger(bootstrapEnv)
			cfg, err := config.Load(bootstrap)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			e.cfg = cfg
			if cfg.Environment == bootstrapEnv {
				e.logger = bootstrap
			} else {
				_ = bootstrap.Sync()
				e.logger = app.NewLogger(cfg.Environment)
			}
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if e.logger != nil {
				_ = e.logger.Sync()
			}
		},
	}

	rootCmd.AddCommand(
		newServeCmd(e),
		newMigrateCmd(e),
		newSessionsCmd(e),
	)

	return rootCmd
}
