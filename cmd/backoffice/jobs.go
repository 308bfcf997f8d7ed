package main

import (
	"github.com/spf13/cobra"

	"github.com/SscSPs/travel_backoffice/internal/jobs"
)

func newJobsCommand(cc *cliContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Housekeeping jobs",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "run-once",
		Short: "Mark overdue installments and send travel reminders once, then exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app, err := newApplication(ctx, cc.cfg, cc.logger)
			if err != nil {
				return cc.logFailure("Failed to initialize application", err)
			}
			defer app.Close()

			runner := jobs.NewRunner(app.services.Subscription, app.services.Booking, app.services.Notification, cc.logger)
			if err := runner.RunAll(ctx); err != nil {
				return cc.logFailure("Jobs failed", err)
			}
			return nil
		},
	})
	return cmd
}
