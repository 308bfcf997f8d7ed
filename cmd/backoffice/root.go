package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/SscSPs/travel_backoffice/internal/middleware"
	"github.com/SscSPs/travel_backoffice/internal/platform/config"
)

// cliContext is shared by every command; it is filled in PersistentPreRunE.
type cliContext struct {
	cfg    *config.Config
	logger *slog.Logger
}

func newRootCommand() *cobra.Command {
	cc := &cliContext{}
	var logLevel string

	cmd := &cobra.Command{
		Use:           "backoffice",
		Short:         "Travel agency back office",
		Long:          "HTTP API, migrations and housekeeping jobs for the travel agency back office.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if logLevel != "" {
				cfg.LogLevel = logLevel
			}
			cc.cfg = cfg
			cc.logger = middleware.NewLogger(cfg.LogLevel)
			slog.SetDefault(cc.logger)
			return nil
		},
		// Running without a subcommand starts the server.
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), cc)
		},
	}
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override LOG_LEVEL (debug|info|warn|error)")

	cmd.AddCommand(newServeCommand(cc))
	cmd.AddCommand(newMigrateCommand(cc))
	cmd.AddCommand(newJobsCommand(cc))
	cmd.AddCommand(newExportCommand(cc))

	cmd.SetContext(context.Background())
	return cmd
}

// logFailure logs err through the configured logger and returns it, so cobra's exit code is kept.
func (cc *cliContext) logFailure(msg string, err error) error {
	logger := cc.logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Error(msg, slog.String("error", err.Error()))
	return err
}
