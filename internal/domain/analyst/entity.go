package analyst

import "time"

// AnalysisID identifier type
type AnalysisID string

// Analysis is one analyzer result recorded for auditing after the scan it
// belongs to was written back successfully.
type Analysis struct {
    ID        AnalysisID `json:"id"`
    ScanID    string     `json:"scan_id"`
    VulnIndex int        `json:"vuln_index"`
    Title     string     `json:"title"`
    Result    string     `json:"result"` // JSON of scans.AnalysisResult
    CreatedAt time.Time  `json:"created_at"`
}
