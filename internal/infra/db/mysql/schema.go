package mysql

import (
	"context"
	"database/sql"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS security_analyze (
  id          CHAR(36)     NOT NULL PRIMARY KEY,
  scan_id     VARCHAR(191) NOT NULL,
  vuln_index  INT          NOT NULL,
  title       VARCHAR(512) NOT NULL,
  result_json JSON         NOT NULL,
  created_at  DATETIME(6)  NOT NULL,
  KEY idx_security_analyze_scan (scan_id, created_at)
)`,
	`CREATE TABLE IF NOT EXISTS security_scan_errors (
  id           BIGINT       NOT NULL AUTO_INCREMENT PRIMARY KEY,
  scan_id      VARCHAR(191) NOT NULL,
  phase        VARCHAR(32)  NOT NULL,
  message      TEXT         NOT NULL,
  details_json JSON         NOT NULL,
  created_at   DATETIME(6)  NOT NULL,
  KEY idx_security_scan_errors_scan (scan_id, created_at)
)`,
}

// EnsureSchema creates the audit tables when missing.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("mysql schema: %w", err)
		}
	}
	return nil
}
