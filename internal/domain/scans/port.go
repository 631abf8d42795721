package scans

import "context"

// Store port (remote scan API)
type Store interface {
	// Fetch returns the raw scan document.
	Fetch(ctx context.Context, id ScanID) ([]byte, error)
	// Update sends the full document back and returns the HTTP status.
	Update(ctx context.Context, id ScanID, body []byte) (int, error)
}

// ArchiveStore port (penyimpanan snapshot hasil enrichment)
type ArchiveStore interface {
	PutSnapshot(ctx context.Context, key string, body []byte) (string, error)
}
