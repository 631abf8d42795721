package heuristic

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/Fredrickighile/devsecops-pipeline/internal/domain/ai"
	"github.com/Fredrickighile/devsecops-pipeline/internal/domain/scans"
)

const (
	EffortMinutes = "minutes"
	EffortHours   = "hours"
	EffortDays    = "days"
)

// detector recognises a class of finding from its text
type detector struct {
	re     *regexp.Regexp
	bump   int
	fix    string
	effort string
}

var detectors = []detector{
	{regexp.MustCompile(`command injection|os command|remote code execution|\brce\b|code injection`), 10,
		"Never pass user input to a shell or eval; call processes with argument lists and allow-list every input.", EffortDays},
	{regexp.MustCompile(`sql\s*injection|\bsqli\b|nosql injection`), 8,
		"Use parameterized queries or prepared statements for every database call and validate input types.", EffortHours},
	{regexp.MustCompile(`deseriali[sz]`), 8,
		"Stop deserializing untrusted data; switch to a schema-validated format such as JSON with strict types.", EffortDays},
	{regexp.MustCompile(`hard-?coded|secret|api[_ -]?key|private key|credential|password|token`), 8,
		"Remove the secret from the code, rotate it immediately, and load it from a secret manager or environment variable.", EffortHours},
	{regexp.MustCompile(`ssrf|server[- ]side request forgery`), 6,
		"Validate outbound URLs against an allow-list and block internal and metadata address ranges.", EffortHours},
	{regexp.MustCompile(`cross[- ]site scripting|\bxss\b`), 5,
		"Encode output for its HTML context, avoid innerHTML and dangerouslySetInnerHTML, and add a Content-Security-Policy.", EffortHours},
	{regexp.MustCompile(`path traversal|directory traversal|\.\./`), 5,
		"Resolve file paths against an allow-listed base directory and reject input containing '..'.", EffortHours},
	{regexp.MustCompile(`prototype pollution`), 3,
		"Upgrade the affected package and reject object keys such as __proto__ and constructor in merged input.", EffortHours},
	{regexp.MustCompile(`\bmd5\b|\bsha-?1\b|weak (cipher|crypto|hash)`), 0,
		"Replace the weak algorithm with SHA-256 or better, and use bcrypt or argon2 for passwords.", EffortHours},
	{regexp.MustCompile(`security header|missing .*header|content-security-policy|\bhsts\b|x-frame-options`), 0,
		"Set the missing security headers (CSP, HSTS, X-Frame-Options) in the application or reverse proxy.", EffortMinutes},
}

var severityBase = map[string]int{
	"critical": 90,
	"high":     70,
	"medium":   45,
	"moderate": 45,
	"low":      20,
	"info":     10,
}

// findings from these scanners were confirmed against a running target
var dynamicSources = map[string]bool{
	"zap":    true,
	"nuclei": true,
	"dast":   true,
}

// Analyzer is a deterministic, offline scorer. Same input, same output.
type Analyzer struct{}

var _ ai.Analyzer = (*Analyzer)(nil)

func New() *Analyzer { return &Analyzer{} }

func (a *Analyzer) Analyze(ctx context.Context, v scans.Vulnerability) (scans.AnalysisResult, error) {
	if err := ctx.Err(); err != nil {
		return scans.AnalysisResult{}, err
	}

	score, ok := severityBase[v.Severity()]
	if !ok {
		score = 10
	}
	if cvss := int(v.CVSS()*10 + 0.5); cvss > score {
		score = cvss
	}
	if dynamicSources[strings.ToLower(v.Source())] {
		score += 5
	}

	text := strings.ToLower(strings.Join([]string{v.Title(), v.Type(), v.Description()}, " "))
	var match *detector
	for i := range detectors {
		if detectors[i].re.MatchString(text) {
			match = &detectors[i]
			break
		}
	}
	if match != nil {
		score += match.bump
	}

	pkg := v.Package()
	upgradable := v.FixAvailable() && pkg != ""
	if v.FixAvailable() {
		score += 5
	}
	score = scans.ClampScore(score)

	res := scans.AnalysisResult{
		PriorityScore: score,
		RiskLevel:     string(scans.RiskFromScore(score)),
	}

	switch {
	case upgradable && (match == nil || strings.EqualFold(v.Type(), "dependency")):
		res.SuggestedFix = fmt.Sprintf("Upgrade %s to the patched version reported by the scanner and redeploy.", pkg)
		res.EstimatedEffort = EffortMinutes
	case match != nil:
		res.SuggestedFix = match.fix
		res.EstimatedEffort = match.effort
		if upgradable {
			res.SuggestedFix += fmt.Sprintf(" A fixed release of %s is available.", pkg)
		}
	case pkg != "":
		res.SuggestedFix = fmt.Sprintf("No fixed release of %s is available yet; replace the package or mitigate the vulnerable code path.", pkg)
		res.EstimatedEffort = EffortDays
	default:
		res.SuggestedFix = "Review the finding, confirm exploitability, and apply the vendor or framework guidance for this issue."
		res.EstimatedEffort = EffortHours
	}
	return res, nil
}
