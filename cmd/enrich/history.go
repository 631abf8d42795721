package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Fredrickighile/devsecops-pipeline/internal/application/enrich"
	"github.com/Fredrickighile/devsecops-pipeline/internal/config"
	"github.com/Fredrickighile/devsecops-pipeline/internal/domain/scans"
	"github.com/Fredrickighile/devsecops-pipeline/internal/validate"
)

var errNoAuditDB = errors.New("history needs audit.driver and audit.dsn to be configured")

// newHistoryCommand prints what earlier runs recorded in the audit database.
func newHistoryCommand(opts *options, stdout io.Writer) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:          "history [scan-id]",
		Short:        "Show recorded analyses and failed runs of a scan",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, explicit := configPath(opts.configPath)
			cfg, err := config.Load(path, explicit)
			if err != nil {
				return err
			}
			if cfg.Audit.Driver == "" || cfg.Audit.DSN == "" {
				return errNoAuditDB
			}

			id := scans.ScanID(cfg.API.DefaultScanID)
			if len(args) > 0 {
				if err := validate.ScanID(args[0]); err != nil {
					return fmt.Errorf("invalid scan id: %w", err)
				}
				id = scans.ScanID(args[0])
			}

			ctx := cmd.Context()
			db, audit, errs, err := connectAudit(ctx, cfg)
			if err != nil {
				return fmt.Errorf("connect audit database: %w", err)
			}
			defer db.Close()

			h, err := enrich.LoadHistory(ctx, audit, errs, id, limit)
			if err != nil {
				return err
			}
			enrich.NewReporter(stdout).History(h)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum rows of each kind")
	return cmd
}
