package ai

import (
	"context"

	"github.com/Fredrickighile/devsecops-pipeline/internal/domain/scans"
)

// Analyzer scores one vulnerability. Implementations must be safe to call
// sequentially with the same instance.
type Analyzer interface {
	Analyze(ctx context.Context, v scans.Vulnerability) (scans.AnalysisResult, error)
}
