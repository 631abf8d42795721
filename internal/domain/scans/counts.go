package scans

import "strings"

// SeverityCounts value object
type SeverityCounts struct {
	Critical int `json:"critical"`
	High     int `json:"high"`
	Medium   int `json:"medium"`
	Low      int `json:"low"`
	Total    int `json:"total"`
}

func (c *SeverityCounts) add(level string) {
	switch strings.ToLower(level) {
	case "critical":
		c.Critical++
	case "high":
		c.High++
	case "medium":
		c.Medium++
	case "low":
		c.Low++
	}
}

// CountSeverities tallies vulnerabilities by their reported severity.
// Unknown severities are only counted in Total.
func CountSeverities(vulns []Vulnerability) SeverityCounts {
	var c SeverityCounts
	for _, v := range vulns {
		c.add(v.Severity())
	}
	c.Total = len(vulns)
	return c
}

// CountRiskLevels tallies analysis results by risk level.
func CountRiskLevels(results []AnalysisResult) SeverityCounts {
	var c SeverityCounts
	for _, r := range results {
		c.add(r.RiskLevel)
	}
	c.Total = len(results)
	return c
}
