package main

import (
	"github.com/spf13/cobra"

	"github.com/SscSPs/travel_backoffice/pkg/database"
)

func newMigrateCommand(cc *cliContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back database migrations",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply every pending migration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return migrate(cc, database.Up)
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the most recent migration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return migrate(cc, database.Down)
			},
		},
	)
	return cmd
}

func migrate(cc *cliContext, dir database.Direction) error {
	if err := database.RunMigrations(cc.logger, cc.cfg.DatabaseURL, cc.cfg.MigrationsPath, dir); err != nil {
		return cc.logFailure("Migration failed", err)
	}
	return nil
}
