package ai

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/Fredrickighile/devsecops-pipeline/internal/domain/ai"
	"github.com/Fredrickighile/devsecops-pipeline/internal/domain/scans"
)

// Service membungkus provider: throttle, normalisasi hasil, dan error bertipe.
// Service is safe for concurrent use.
type Service struct {
	client  ai.Analyzer
	limiter *rate.Limiter
	logger  *zap.Logger
}

var _ ai.Analyzer = (*Service)(nil)

// NewService builds the facade. requestsPerMinute <= 0 disables throttling.
func NewService(client ai.Analyzer, requestsPerMinute int, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{client: client, logger: logger}
	if requestsPerMinute > 0 {
		s.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), 1)
	}
	return s
}

// Analyze returns a normalized result or a *scans.AnalyzerError.
func (s *Service) Analyze(ctx context.Context, v scans.Vulnerability) (scans.AnalysisResult, error) {
	wrap := func(err error) error {
		return &scans.AnalyzerError{ScanID: v.ScanID, Index: v.Index, Title: v.Title(), Err: err}
	}

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return scans.AnalysisResult{}, wrap(err)
		}
	}

	start := time.Now()
	res, err := s.client.Analyze(ctx, v)
	if err != nil {
		s.logger.Debug("analyzer failed",
			zap.String("scan_id", string(v.ScanID)),
			zap.Int("index", v.Index),
			zap.Error(err))
		return scans.AnalysisResult{}, wrap(err)
	}
	s.logger.Debug("vulnerability analyzed",
		zap.String("scan_id", string(v.ScanID)),
		zap.Int("index", v.Index),
		zap.Duration("took", time.Since(start)))

	return Normalize(res), nil
}

// Normalize clamps the score and maps the risk level onto the four known
// bands, deriving it from the score when unrecognised.
func Normalize(res scans.AnalysisResult) scans.AnalysisResult {
	res.PriorityScore = scans.ClampScore(res.PriorityScore)
	if risk, ok := scans.NormalizeRiskLevel(res.RiskLevel); ok {
		res.RiskLevel = string(risk)
	} else {
		res.RiskLevel = string(scans.RiskFromScore(res.PriorityScore))
	}
	res.SuggestedFix = strings.TrimSpace(res.SuggestedFix)
	res.EstimatedEffort = strings.ToLower(strings.TrimSpace(res.EstimatedEffort))
	return res
}
