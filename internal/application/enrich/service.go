package enrich

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/Fredrickighile/devsecops-pipeline/internal/application"
	"github.com/Fredrickighile/devsecops-pipeline/internal/domain/ai"
	"github.com/Fredrickighile/devsecops-pipeline/internal/domain/analyst"
	"github.com/Fredrickighile/devsecops-pipeline/internal/domain/scanerrors"
	"github.com/Fredrickighile/devsecops-pipeline/internal/domain/scans"
	"github.com/Fredrickighile/devsecops-pipeline/internal/validate"
)

// sideEffectTimeout bounds audit, archive and error recording, which run even
// when the caller's context is already done.
const sideEffectTimeout = 5 * time.Second

// Service runs fetch → enrich → persist over one scan.
// Archive, Audit and Errors are optional.
type Service struct {
	Store    scans.Store
	Analyzer ai.Analyzer
	Archive  scans.ArchiveStore
	Audit    analyst.Repository
	Errors   scanerrors.Repository
	Reporter *Reporter
	Logger   *zap.Logger
	Clock    application.Clock
}

// Outcome summarises one run
type Outcome struct {
	ScanID     scans.ScanID
	Found      int
	Analyzed   int
	StatusCode int
	Persisted  bool
	Err        error
	Severity   scans.SeverityCounts // by reported severity
	Risk       scans.SeverityCounts // by analyzed risk level
	Duration   time.Duration
}

// Run is the outer boundary: every failure ends up in Outcome.Err and on the
// report as "Error: ..." (or "Failed to update scan" for a rejected write).
func (s *Service) Run(ctx context.Context, id scans.ScanID) Outcome {
	out, err := s.Process(ctx, id)
	if err == nil {
		return out
	}
	out.Err = err

	var pe *scans.PersistenceError
	if !(errors.As(err, &pe) && pe.StatusCode != 0) {
		s.reporter().Error(err)
	}
	s.logger().Warn("enrichment failed",
		zap.String("scan_id", string(out.ScanID)),
		zap.String("phase", string(scans.PhaseOf(err))),
		zap.Error(err))
	s.recordError(ctx, out.ScanID, err)
	return out
}

// Process runs the pipeline once. Nothing is written back unless every
// vulnerability was analyzed.
func (s *Service) Process(ctx context.Context, id scans.ScanID) (Outcome, error) {
	if id == "" {
		id = scans.DefaultScanID
	}
	start := s.clock().Now()
	out := Outcome{ScanID: id}
	log := s.logger().With(zap.String("scan_id", string(id)))

	body, err := s.Store.Fetch(ctx, id)
	if err != nil {
		out.Duration = application.Since(s.clock(), start)
		return out, &scans.RetrievalError{ScanID: id, Err: err}
	}
	// any JSON answer counts as fetched, even one missing the list
	if gjson.ValidBytes(body) {
		s.reporter().Processing(id)
	}
	scan, err := scans.ParseScan(id, body)
	if err != nil {
		out.Duration = application.Since(s.clock(), start)
		return out, &scans.RetrievalError{ScanID: id, Err: err}
	}

	vulns := scan.Vulnerabilities()
	out.Found = len(vulns)
	out.Severity = scans.CountSeverities(vulns)
	s.reporter().Found(len(vulns))
	log.Debug("scan fetched", zap.Int("vulnerabilities", len(vulns)), zap.Int("bytes", len(body)))

	results := make([]scans.AnalysisResult, 0, len(vulns))
	for _, v := range vulns {
		res, err := s.Analyzer.Analyze(ctx, v)
		if err != nil {
			out.Duration = application.Since(s.clock(), start)
			out.Risk = scans.CountRiskLevels(results)
			var ae *scans.AnalyzerError
			if !errors.As(err, &ae) {
				err = &scans.AnalyzerError{ScanID: id, Index: v.Index, Title: v.Title(), Err: err}
			}
			return out, err
		}
		if err := scan.Attach(v, res); err != nil {
			out.Duration = application.Since(s.clock(), start)
			return out, err
		}
		// tanpa title tidak bisa dilaporkan, jadi scan tidak ditulis balik
		if !v.HasTitle() {
			out.Duration = application.Since(s.clock(), start)
			out.Risk = scans.CountRiskLevels(results)
			return out, &scans.AnalyzerError{ScanID: id, Index: v.Index, Err: scans.ErrMissingTitle}
		}
		results = append(results, res)
		out.Analyzed++
		s.reporter().Analyzed(v.Title(), res)
	}
	out.Risk = scans.CountRiskLevels(results)

	status, err := s.Store.Update(ctx, id, scan.Bytes())
	out.StatusCode = status
	out.Duration = application.Since(s.clock(), start)
	if err != nil {
		return out, &scans.PersistenceError{ScanID: id, Err: err}
	}
	if status != http.StatusOK {
		s.reporter().UpdateFailed()
		return out, &scans.PersistenceError{ScanID: id, StatusCode: status}
	}

	out.Persisted = true
	s.reporter().Updated()
	log.Info("scan enriched",
		zap.Int("vulnerabilities", out.Found),
		zap.Int("severity_critical", out.Severity.Critical),
		zap.Int("severity_high", out.Severity.High),
		zap.Int("critical", out.Risk.Critical),
		zap.Int("high", out.Risk.High),
		zap.Duration("took", out.Duration))

	s.audit(ctx, id, vulns, results)
	s.archive(ctx, id, scan.Bytes())
	return out, nil
}

func (s *Service) audit(ctx context.Context, id scans.ScanID, vulns []scans.Vulnerability, results []scans.AnalysisResult) {
	if s.Audit == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sideEffectTimeout)
	defer cancel()

	now := s.clock().Now().UTC()
	for i, res := range results {
		raw, err := json.Marshal(res)
		if err != nil {
			continue
		}
		rec := &analyst.Analysis{
			ID:        analyst.AnalysisID(uuid.NewString()),
			ScanID:    string(id),
			VulnIndex: vulns[i].Index,
			Title:     vulns[i].Title(),
			Result:    string(raw),
			CreatedAt: now,
		}
		if err := s.Audit.Save(ctx, rec); err != nil {
			s.logger().Warn("audit save failed",
				zap.String("scan_id", string(id)),
				zap.Int("index", rec.VulnIndex),
				zap.Error(err))
			return
		}
	}
}

func (s *Service) archive(ctx context.Context, id scans.ScanID, body []byte) {
	if s.Archive == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sideEffectTimeout)
	defer cancel()

	key := SnapshotKey(id, s.clock().Now())
	url, err := s.Archive.PutSnapshot(ctx, key, body)
	if err != nil {
		s.logger().Warn("archive snapshot failed", zap.String("key", key), zap.Error(err))
		return
	}
	s.logger().Debug("snapshot archived", zap.String("url", url))
}

func (s *Service) recordError(ctx context.Context, id scans.ScanID, cause error) {
	if s.Errors == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sideEffectTimeout)
	defer cancel()

	rec := &scanerrors.ScanError{
		ScanID:      string(id),
		Phase:       string(scans.PhaseOf(cause)),
		Message:     validate.SanitizeString(cause.Error()),
		DetailsJSON: errorDetails(cause),
		CreatedAt:   s.clock().Now().UTC(),
	}
	if err := s.Errors.Save(ctx, rec); err != nil {
		s.logger().Warn("record scan error failed", zap.String("scan_id", string(id)), zap.Error(err))
	}
}

// errorDetails renders the structured parts of a typed error as JSON.
func errorDetails(err error) string {
	details := map[string]any{}
	var ae *scans.AnalyzerError
	var pe *scans.PersistenceError
	switch {
	case errors.As(err, &ae):
		details["index"] = ae.Index
		details["title"] = ae.Title
		details["quota_exceeded"] = errors.Is(err, ai.ErrQuotaExceeded)
	case errors.As(err, &pe):
		details["status_code"] = pe.StatusCode
	}
	if errors.Is(err, context.DeadlineExceeded) {
		details["timeout"] = true
	}
	if len(details) == 0 {
		return ""
	}
	raw, _ := json.Marshal(details)
	return string(raw)
}

// SnapshotKey is the object key for an archived snapshot of id taken at t.
func SnapshotKey(id scans.ScanID, t time.Time) string {
	return fmt.Sprintf("%s/%s.json", id, t.UTC().Format(time.RFC3339))
}

func (s *Service) reporter() *Reporter {
	if s.Reporter == nil {
		return NewReporter(nil)
	}
	return s.Reporter
}

func (s *Service) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

func (s *Service) clock() application.Clock {
	if s.Clock == nil {
		return application.SystemClock{}
	}
	return s.Clock
}
