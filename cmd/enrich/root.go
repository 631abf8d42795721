package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Fredrickighile/devsecops-pipeline/internal/application/enrich"
	"github.com/Fredrickighile/devsecops-pipeline/internal/config"
	"github.com/Fredrickighile/devsecops-pipeline/internal/domain/scans"
	"github.com/Fredrickighile/devsecops-pipeline/internal/observability"
	"github.com/Fredrickighile/devsecops-pipeline/internal/validate"
)

// Version is set at build time:
// go build -ldflags "-X main.Version=1.2.0" ./cmd/enrich
var Version = "dev"

type options struct {
	configPath string
	apiURL     string
}

func newRootCommand(stdout io.Writer) *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "enrich [scan-id]",
		Short: "Attach AI analysis to every vulnerability of a stored scan",
		Long: `enrich fetches one scan from the scan API, analyzes each vulnerability in
order, attaches the result as "aiAnalysis" and writes the whole scan back.

The scan id defaults to api.defaultScanID (test-001). Only the first
argument is used; any further arguments are ignored.`,
		Version:      Version,
		Args:         cobra.ArbitraryArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, opts, stdout)
		},
	}
	cmd.SetOut(stdout)
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "config file (default is ./config.yaml or $CONFIG_PATH)")
	cmd.Flags().StringVar(&opts.apiURL, "api-url", "", "scan API base URL, overrides api.baseURL")
	cmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
	cmd.AddCommand(newHistoryCommand(&opts, stdout))
	return cmd
}

func run(cmd *cobra.Command, args []string, opts options, stdout io.Writer) error {
	path, explicit := configPath(opts.configPath)
	cfg, err := config.Load(path, explicit)
	if err != nil {
		return err
	}
	if opts.apiURL != "" {
		cfg.API.BaseURL = opts.apiURL
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	id := scans.ScanID(cfg.API.DefaultScanID)
	if len(args) > 0 {
		if err := validate.ScanID(args[0]); err != nil {
			return fmt.Errorf("invalid scan id: %w", err)
		}
		id = scans.ScanID(args[0])
	}

	logger := observability.NewCLI(cfg.Logger)
	defer observability.Sync(logger)
	logger.Debug("starting enrichment", zap.String("version", Version), zap.String("api", cfg.API.BaseURL))

	ctx := cmd.Context()
	svc, cleanup := buildService(ctx, cfg, logger, stdout)
	defer cleanup()

	out := svc.Run(ctx, id)
	logSummary(logger, out)
	return nil
}

// configPath: flag, lalu CONFIG_PATH, lalu default. Only the default may be
// missing.
func configPath(flag string) (string, bool) {
	if flag != "" {
		return flag, true
	}
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		return v, true
	}
	return config.DefaultPath, false
}

func logSummary(logger *zap.Logger, out enrich.Outcome) {
	fields := []zap.Field{
		zap.String("scan_id", string(out.ScanID)),
		zap.Int("found", out.Found),
		zap.Int("analyzed", out.Analyzed),
		zap.Int("severity_critical", out.Severity.Critical),
		zap.Int("severity_high", out.Severity.High),
		zap.Int("severity_medium", out.Severity.Medium),
		zap.Int("severity_low", out.Severity.Low),
		zap.Bool("persisted", out.Persisted),
		zap.Duration("took", out.Duration),
	}
	if out.StatusCode != 0 {
		fields = append(fields, zap.Int("status", out.StatusCode))
	}
	logger.Debug("run finished", fields...)
}
