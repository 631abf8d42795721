package enrich

import (
	"context"
	"fmt"
	"time"

	"github.com/tidwall/gjson"

	"github.com/Fredrickighile/devsecops-pipeline/internal/domain/analyst"
	"github.com/Fredrickighile/devsecops-pipeline/internal/domain/scanerrors"
	"github.com/Fredrickighile/devsecops-pipeline/internal/domain/scans"
)

// History is what the audit database remembers about one scan: the newest
// recorded analyses and failed runs.
type History struct {
	ScanID   scans.ScanID
	Analyses []*analyst.Analysis
	Errors   []*scanerrors.ScanError
}

// LoadHistory reads up to limit rows of each kind. A nil repository is skipped.
func LoadHistory(ctx context.Context, audit analyst.Repository, errs scanerrors.Repository, id scans.ScanID, limit int) (History, error) {
	h := History{ScanID: id}
	var err error
	if audit != nil {
		if h.Analyses, err = audit.ListByScan(ctx, string(id), limit); err != nil {
			return h, fmt.Errorf("list analyses of scan %s: %w", id, err)
		}
	}
	if errs != nil {
		if h.Errors, err = errs.ListByScan(ctx, string(id), limit); err != nil {
			return h, fmt.Errorf("list failed runs of scan %s: %w", id, err)
		}
	}
	return h, nil
}

func (r *Reporter) History(h History) {
	fmt.Fprintf(r.w, "History of scan: %s\n", h.ScanID)
	fmt.Fprintf(r.w, "Analyses: %d\n", len(h.Analyses))
	for _, a := range h.Analyses {
		res := gjson.Parse(a.Result)
		fmt.Fprintf(r.w, "  %s #%d %s: %d/%d %s\n",
			a.CreatedAt.UTC().Format(time.RFC3339), a.VulnIndex, a.Title,
			res.Get("priorityScore").Int(), scans.MaxPriorityScore, res.Get("riskLevel").String())
	}
	fmt.Fprintf(r.w, "Failed runs: %d\n", len(h.Errors))
	for _, e := range h.Errors {
		fmt.Fprintf(r.w, "  %s %s: %s\n", e.CreatedAt.UTC().Format(time.RFC3339), e.Phase, e.Message)
	}
}
