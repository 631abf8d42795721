package mysql

import (
    "context"
    "database/sql"
    "time"

    domain "github.com/Fredrickighile/devsecops-pipeline/internal/domain/scanerrors"
)

type ScanErrorRepository struct {
    db *sql.DB
}

var _ domain.Repository = (*ScanErrorRepository)(nil)

func NewScanErrorRepository(db *sql.DB) *ScanErrorRepository { return &ScanErrorRepository{db: db} }

func (r *ScanErrorRepository) Save(ctx context.Context, e *domain.ScanError) error {
    const q = `
INSERT INTO security_scan_errors
  (scan_id, phase, message, details_json, created_at)
VALUES (?,?,?,?,?)
`
    created := e.CreatedAt
    if created.IsZero() {
        created = time.Now()
    }
    res, err := r.db.ExecContext(ctx, q,
        stringOrDash(e.ScanID), stringOrDash(e.Phase), stringOrDash(e.Message), jsonOrEmpty(e.DetailsJSON), created)
    if err != nil {
        return err
    }
    if id, err := res.LastInsertId(); err == nil {
        e.ID = id
    }
    return nil
}

func (r *ScanErrorRepository) ListByScan(ctx context.Context, scanID string, limit int) ([]*domain.ScanError, error) {
    const q = `
SELECT id, scan_id, phase, message, details_json, created_at
FROM security_scan_errors
WHERE scan_id = ?
ORDER BY created_at DESC, id DESC
LIMIT ?;`
    rows, err := r.db.QueryContext(ctx, q, scanID, limitOrDefault(limit))
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var out []*domain.ScanError
    for rows.Next() {
        var e domain.ScanError
        var created time.Time
        if err := rows.Scan(&e.ID, &e.ScanID, &e.Phase, &e.Message, &e.DetailsJSON, &created); err != nil {
            return nil, err
        }
        e.CreatedAt = created
        out = append(out, &e)
    }
    return out, rows.Err()
}
