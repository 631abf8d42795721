package scans

import (
	"errors"
	"fmt"
)

// Phase of the pipeline an error came from
type Phase string

const (
	PhaseRetrieve Phase = "retrieve"
	PhaseAnalyze  Phase = "analyze"
	PhasePersist  Phase = "persist"
	PhaseOther    Phase = "other"
)

// RetrievalError: the scan could not be read or parsed.
type RetrievalError struct {
	ScanID ScanID
	Err    error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("retrieve scan %s: %v", e.ScanID, e.Err)
}

func (e *RetrievalError) Unwrap() error { return e.Err }

// AnalyzerError: the analyzer failed on one vulnerability.
type AnalyzerError struct {
	ScanID ScanID
	Index  int
	Title  string
	Err    error
}

func (e *AnalyzerError) Error() string {
	if e.Title != "" {
		return fmt.Sprintf("analyze vulnerability %d (%s) of scan %s: %v", e.Index, e.Title, e.ScanID, e.Err)
	}
	return fmt.Sprintf("analyze vulnerability %d of scan %s: %v", e.Index, e.ScanID, e.Err)
}

func (e *AnalyzerError) Unwrap() error { return e.Err }

// PersistenceError: the write back failed. StatusCode 0 means the request
// itself failed; otherwise the API answered with a non-success status.
type PersistenceError struct {
	ScanID     ScanID
	StatusCode int
	Err        error
}

func (e *PersistenceError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("update scan %s: unexpected status %d", e.ScanID, e.StatusCode)
	}
	return fmt.Sprintf("update scan %s: %v", e.ScanID, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// PhaseOf classifies err by the typed error it wraps.
func PhaseOf(err error) Phase {
	var re *RetrievalError
	var ae *AnalyzerError
	var pe *PersistenceError
	switch {
	case errors.As(err, &re):
		return PhaseRetrieve
	case errors.As(err, &ae):
		return PhaseAnalyze
	case errors.As(err, &pe):
		return PhasePersist
	default:
		return PhaseOther
	}
}
