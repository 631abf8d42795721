package postgres

import (
    "encoding/json"
    "errors"
    "fmt"
    "strings"

    "github.com/lib/pq"
)

// stringOrDash returns "-" when the input is empty/whitespace
func stringOrDash(s string) string {
    if strings.TrimSpace(s) == "" {
        return "-"
    }
    return s
}

// jsonOrEmpty: empty → {}, invalid → {"raw": "..."}
func jsonOrEmpty(s string) string {
    if strings.TrimSpace(s) == "" {
        return "{}"
    }
    if !json.Valid([]byte(s)) {
        b, _ := json.Marshal(map[string]string{"raw": s})
        return string(b)
    }
    return s
}

func limitOrDefault(limit int) int {
    if limit <= 0 {
        return 20
    }
    return limit
}

// undefinedTable is SQLSTATE 42P01
const undefinedTable pq.ErrorCode = "42P01"

// wrapErr points at the missing schema instead of surfacing a bare pq error.
func wrapErr(table string, err error) error {
    var pqErr *pq.Error
    if errors.As(err, &pqErr) && pqErr.Code == undefinedTable {
        return fmt.Errorf("table %s does not exist: %w", table, err)
    }
    return err
}
