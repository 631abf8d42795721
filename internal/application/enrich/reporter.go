package enrich

import (
	"fmt"
	"io"

	"github.com/Fredrickighile/devsecops-pipeline/internal/domain/scans"
)

// Reporter writes the human readable progress of a run. Logs go elsewhere.
type Reporter struct {
	w io.Writer
}

func NewReporter(w io.Writer) *Reporter {
	if w == nil {
		w = io.Discard
	}
	return &Reporter{w: w}
}

func (r *Reporter) Processing(id scans.ScanID) {
	fmt.Fprintf(r.w, "Processing scan: %s\n", id)
}

func (r *Reporter) Found(n int) {
	fmt.Fprintf(r.w, "Found %d vulnerabilities\n", n)
}

func (r *Reporter) Analyzed(title string, res scans.AnalysisResult) {
	fmt.Fprintf(r.w, "\nVulnerability: %s\n", title)
	fmt.Fprintf(r.w, "AI Priority Score: %d/%d\n", res.PriorityScore, scans.MaxPriorityScore)
	fmt.Fprintf(r.w, "Risk Level: %s\n", res.RiskLevel)
	fmt.Fprintf(r.w, "Suggested Fix: %s\n", res.SuggestedFix)
}

func (r *Reporter) Updated() {
	fmt.Fprint(r.w, "\nSuccessfully updated scan with AI analysis\n")
}

func (r *Reporter) UpdateFailed() {
	fmt.Fprint(r.w, "\nFailed to update scan\n")
}

func (r *Reporter) Error(err error) {
	fmt.Fprintf(r.w, "Error: %v\n", err)
}
