package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS security_analyze (
  id          UUID         PRIMARY KEY,
  scan_id     VARCHAR(191) NOT NULL,
  vuln_index  INTEGER      NOT NULL,
  title       TEXT         NOT NULL,
  result_json JSONB        NOT NULL,
  created_at  TIMESTAMPTZ  NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_security_analyze_scan ON security_analyze (scan_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS security_scan_errors (
  id           BIGSERIAL    PRIMARY KEY,
  scan_id      VARCHAR(191) NOT NULL,
  phase        VARCHAR(32)  NOT NULL,
  message      TEXT         NOT NULL,
  details_json JSONB        NOT NULL,
  created_at   TIMESTAMPTZ  NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_security_scan_errors_scan ON security_scan_errors (scan_id, created_at)`,
}

// EnsureSchema creates the audit tables when missing.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("postgres schema: %w", err)
		}
	}
	return nil
}
