package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/SscSPs/travel_backoffice/internal/core/domain"
	"github.com/SscSPs/travel_backoffice/internal/dto"
)

const dateLayout = "2006-01-02"

type exportStatementOptions struct {
	kind string
	id   string
	from string
	to   string
	out  string
}

func newExportCommand(cc *cliContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export reports to files",
	}

	opts := &exportStatementOptions{}
	statement := &cobra.Command{
		Use:   "statement",
		Short: "Write an account statement as an xlsx workbook",
		Example: "  backoffice export statement --kind RELATION --id <relation-id> " +
			"--from 2025-01-01 --to 2025-03-31 --out q1.xlsx",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := opts.params()
			if err != nil {
				return err
			}
			if opts.out == "" {
				opts.out = fmt.Sprintf("statement-%s-%s.xlsx", params.ID, params.To.Format("20060102"))
			}

			ctx := cmd.Context()
			app, err := newApplication(ctx, cc.cfg, cc.logger)
			if err != nil {
				return cc.logFailure("Failed to initialize application", err)
			}
			defer app.Close()

			data, err := app.services.Reporting.ExportStatement(ctx, params)
			if err != nil {
				return cc.logFailure("Failed to export statement", err)
			}
			if err := os.WriteFile(opts.out, data, 0o644); err != nil {
				return cc.logFailure("Failed to write statement", err)
			}
			cc.logger.Info("Statement exported", slog.String("file", opts.out), slog.Int("bytes", len(data)))
			return nil
		},
	}
	f := statement.Flags()
	f.StringVar(&opts.kind, "kind", string(domain.AccountRelation), "account kind: RELATION, BOX or CHANNEL")
	f.StringVar(&opts.id, "id", "", "account id")
	f.StringVar(&opts.from, "from", "", "first day, YYYY-MM-DD")
	f.StringVar(&opts.to, "to", "", "last day, YYYY-MM-DD (default today)")
	f.StringVarP(&opts.out, "out", "o", "", "output file")
	_ = statement.MarkFlagRequired("id")
	_ = statement.MarkFlagRequired("from")

	cmd.AddCommand(statement)
	return cmd
}

func (o *exportStatementOptions) params() (dto.StatementParams, error) {
	kind := domain.AccountKind(strings.ToUpper(o.kind))
	switch kind {
	case domain.AccountRelation, domain.AccountBox, domain.AccountChannel:
	default:
		return dto.StatementParams{}, fmt.Errorf("invalid kind %q: must be RELATION, BOX or CHANNEL", o.kind)
	}
	from, err := time.Parse(dateLayout, o.from)
	if err != nil {
		return dto.StatementParams{}, fmt.Errorf("invalid --from: %w", err)
	}
	to := domain.DateOnly(time.Now())
	if o.to != "" {
		if to, err = time.Parse(dateLayout, o.to); err != nil {
			return dto.StatementParams{}, fmt.Errorf("invalid --to: %w", err)
		}
	}
	if to.Before(from) {
		return dto.StatementParams{}, fmt.Errorf("--to %s is before --from %s", o.to, o.from)
	}
	return dto.StatementParams{Kind: kind, ID: o.id, From: from, To: to}, nil
}
