package main

import (
	"context"
	"database/sql"
	"io"

	"go.uber.org/zap"

	"github.com/Fredrickighile/devsecops-pipeline/internal/application"
	appai "github.com/Fredrickighile/devsecops-pipeline/internal/application/ai"
	"github.com/Fredrickighile/devsecops-pipeline/internal/application/enrich"
	"github.com/Fredrickighile/devsecops-pipeline/internal/config"
	"github.com/Fredrickighile/devsecops-pipeline/internal/domain/ai"
	"github.com/Fredrickighile/devsecops-pipeline/internal/domain/analyst"
	"github.com/Fredrickighile/devsecops-pipeline/internal/domain/scanerrors"
	"github.com/Fredrickighile/devsecops-pipeline/internal/infra/ai/heuristic"
	"github.com/Fredrickighile/devsecops-pipeline/internal/infra/ai/openai"
	mysqlp "github.com/Fredrickighile/devsecops-pipeline/internal/infra/db/mysql"
	"github.com/Fredrickighile/devsecops-pipeline/internal/infra/db/postgres"
	"github.com/Fredrickighile/devsecops-pipeline/internal/infra/scanapi"
	minioStore "github.com/Fredrickighile/devsecops-pipeline/internal/infra/storage"
)

// buildService wires the runner. Audit and archive are best-effort: when they
// cannot be reached the run goes ahead without them.
func buildService(ctx context.Context, cfg *config.Config, logger *zap.Logger, stdout io.Writer) (*enrich.Service, func()) {
	cleanup := func() {}

	svc := &enrich.Service{
		Store:    scanapi.New(cfg.API.BaseURL, cfg.API.Timeout, logger),
		Analyzer: appai.NewService(newProvider(cfg), cfg.Analyzer.RequestsPerMinute, logger.Named("analyzer")),
		Reporter: enrich.NewReporter(stdout),
		Logger:   logger.Named("enrich"),
		Clock:    application.SystemClock{},
	}

	if cfg.Audit.Driver != "" {
		db, audit, errs, err := connectAudit(ctx, cfg)
		if err != nil {
			logger.Warn("audit database unavailable, continuing without audit",
				zap.String("driver", cfg.Audit.Driver), zap.Error(err))
		} else {
			svc.Audit, svc.Errors = audit, errs
			cleanup = func() { _ = db.Close() }
		}
	}

	if cfg.Archive.Enabled {
		store, err := minioStore.New(ctx,
			cfg.Archive.Endpoint,
			cfg.Archive.Region,
			cfg.Archive.BucketName,
			cfg.Archive.AccessKey,
			cfg.Archive.SecretKey,
			cfg.Archive.UseSSL,
		)
		if err != nil {
			logger.Warn("snapshot archive unavailable, continuing without archive", zap.Error(err))
		} else {
			svc.Archive = store
		}
	}

	return svc, cleanup
}

func newProvider(cfg *config.Config) ai.Analyzer {
	switch cfg.Analyzer.Provider {
	case config.ProviderOpenAI:
		o := cfg.Analyzer.OpenAI
		return openai.NewClient(o.APIKey, o.Model, o.BaseURL)
	default:
		return heuristic.New()
	}
}

func connectAudit(ctx context.Context, cfg *config.Config) (*sql.DB, analyst.Repository, scanerrors.Repository, error) {
	switch cfg.Audit.Driver {
	case config.DriverPostgres:
		db, err := postgres.Connect(ctx, cfg.Audit.DSN)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			db.Close()
			return nil, nil, nil, err
		}
		return db, postgres.NewAnalystRepository(db), postgres.NewScanErrorRepository(db), nil
	default:
		db, err := mysqlp.Connect(ctx, cfg.Audit.DSN)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := mysqlp.EnsureSchema(ctx, db); err != nil {
			db.Close()
			return nil, nil, nil, err
		}
		return db, mysqlp.NewAnalystRepository(db), mysqlp.NewScanErrorRepository(db), nil
	}
}
