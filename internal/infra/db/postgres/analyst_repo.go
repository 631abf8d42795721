package postgres

import (
    "context"
    "database/sql"
    "time"

    domain "github.com/Fredrickighile/devsecops-pipeline/internal/domain/analyst"
)

type AnalystRepository struct {
    db *sql.DB
}

var _ domain.Repository = (*AnalystRepository)(nil)

func NewAnalystRepository(db *sql.DB) *AnalystRepository {
    return &AnalystRepository{db: db}
}

// Save inserts or updates an analysis record
func (r *AnalystRepository) Save(ctx context.Context, a *domain.Analysis) error {
    const q = `
INSERT INTO security_analyze
  (id, scan_id, vuln_index, title, result_json, created_at)
VALUES ($1,$2,$3,$4,$5,$6)
ON CONFLICT (id) DO UPDATE SET
  scan_id=EXCLUDED.scan_id,
  vuln_index=EXCLUDED.vuln_index,
  title=EXCLUDED.title,
  result_json=EXCLUDED.result_json;
`
    createdAt := a.CreatedAt
    if createdAt.IsZero() {
        createdAt = time.Now()
    }
    _, err := r.db.ExecContext(ctx, q,
        string(a.ID), stringOrDash(a.ScanID), a.VulnIndex, stringOrDash(a.Title), jsonOrEmpty(a.Result), createdAt)
    return wrapErr("security_analyze", err)
}

// ListByScan returns the newest analyses of a scan
func (r *AnalystRepository) ListByScan(ctx context.Context, scanID string, limit int) ([]*domain.Analysis, error) {
    const q = `
SELECT id, scan_id, vuln_index, title, result_json, created_at
FROM security_analyze
WHERE scan_id=$1
ORDER BY created_at DESC, vuln_index ASC
LIMIT $2;
`
    rows, err := r.db.QueryContext(ctx, q, scanID, limitOrDefault(limit))
    if err != nil { return nil, wrapErr("security_analyze", err) }
    defer rows.Close()

    var out []*domain.Analysis
    for rows.Next() {
        var a domain.Analysis
        var created time.Time
        if err := rows.Scan(&a.ID, &a.ScanID, &a.VulnIndex, &a.Title, &a.Result, &created); err != nil {
            return nil, err
        }
        a.CreatedAt = created
        out = append(out, &a)
    }
    return out, rows.Err()
}
