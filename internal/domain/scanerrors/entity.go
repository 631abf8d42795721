package scanerrors

import "time"

// ScanError represents a persisted failure of one enrichment run
type ScanError struct {
    ID          int64     `json:"id"`
    ScanID      string    `json:"scan_id"`
    Phase       string    `json:"phase,omitempty"` // retrieve | analyze | persist | other
    Message     string    `json:"message"`
    DetailsJSON string    `json:"details_json,omitempty"` // raw JSON string
    CreatedAt   time.Time `json:"created_at"`
}
