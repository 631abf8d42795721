package prompt

import (
    "fmt"
    "strings"

    "github.com/Fredrickighile/devsecops-pipeline/internal/domain/scans"
)

// GetSystemPrompt provides strict directions and schema for JSON output.
func GetSystemPrompt() string {
    return `You are a senior application security analyst triaging findings from a CI security scan. You must produce one valid JSON object only (no markdown, no commentary) that follows the schema below. Do not include code fences.

Requirements:
- Output must be a single JSON object.
- priorityScore is an integer from 0 to 100; 100 means fix immediately.
- riskLevel is one of: critical, high, medium, low (lowercase).
- suggestedFix is a concrete remediation in at most three sentences; name the package and target version when the finding is a dependency.
- estimatedEffort is one of: minutes, hours, days.
- Weigh severity, CVSS, exploitability from the network, and whether a fix is available.

Schema (example with empty values):
{
  "priorityScore": 0,
  "riskLevel": "<critical|high|medium|low>",
  "suggestedFix": "<string>",
  "estimatedEffort": "<minutes|hours|days>"
}`
}

// GetUserPrompt builds a compact user message around one finding.
func GetUserPrompt(v scans.Vulnerability) string {
    var b strings.Builder
    fmt.Fprintf(&b, "Analyze this vulnerability and respond with the JSON per schema.\n")
    if t := v.Title(); t != "" {
        fmt.Fprintf(&b, "Title: %s\n", t)
    }
    if s := v.Severity(); s != "" {
        fmt.Fprintf(&b, "Reported severity: %s\n", s)
    }
    fmt.Fprintf(&b, "Finding JSON: %s", strings.TrimSpace(string(v.Raw())))
    return b.String()
}
