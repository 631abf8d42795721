package scans

import "strings"

// RiskLevel enum
type RiskLevel string

const (
	RiskCritical RiskLevel = "critical"
	RiskHigh     RiskLevel = "high"
	RiskMedium   RiskLevel = "medium"
	RiskLow      RiskLevel = "low"
)

// MaxPriorityScore is the top of the priority scale ("X/100").
const MaxPriorityScore = 100

// AnalysisResult value object, attached to a vulnerability as aiAnalysis
type AnalysisResult struct {
	PriorityScore   int    `json:"priorityScore"`
	RiskLevel       string `json:"riskLevel"`
	SuggestedFix    string `json:"suggestedFix"`
	EstimatedEffort string `json:"estimatedEffort,omitempty"`
}

// NormalizeRiskLevel maps provider spellings onto the four known levels.
// ok is false when s is not recognised.
func NormalizeRiskLevel(s string) (RiskLevel, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "critical", "crit", "p0":
		return RiskCritical, true
	case "high", "p1":
		return RiskHigh, true
	case "medium", "moderate", "med", "p2":
		return RiskMedium, true
	case "low", "info", "informational", "p3":
		return RiskLow, true
	}
	return "", false
}

// RiskFromScore derives a level from a priority score.
func RiskFromScore(score int) RiskLevel {
	switch {
	case score >= 85:
		return RiskCritical
	case score >= 65:
		return RiskHigh
	case score >= 40:
		return RiskMedium
	default:
		return RiskLow
	}
}

// ClampScore keeps score inside 0..MaxPriorityScore.
func ClampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > MaxPriorityScore {
		return MaxPriorityScore
	}
	return score
}
