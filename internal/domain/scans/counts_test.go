package scans

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountSeverities(t *testing.T) {
	s, err := ParseScan("s1", []byte(`{"vulnerabilities":[
		{"title":"a","severity":"Critical"},
		{"title":"b","severity":"HIGH"},
		{"title":"c","severity":"high"},
		{"title":"d","severity":"low"},
		{"title":"e","severity":"unknown"},
		{"title":"f"}
	]}`))
	require.NoError(t, err)

	got := CountSeverities(s.Vulnerabilities())
	assert.Equal(t, SeverityCounts{Critical: 1, High: 2, Low: 1, Total: 6}, got)
}

func TestCountRiskLevels(t *testing.T) {
	got := CountRiskLevels([]AnalysisResult{
		{RiskLevel: "medium"}, {RiskLevel: "medium"}, {RiskLevel: "critical"},
	})
	assert.Equal(t, SeverityCounts{Critical: 1, Medium: 2, Total: 3}, got)
}

func TestNormalizeRiskLevel(t *testing.T) {
	cases := map[string]RiskLevel{
		"Critical": RiskCritical,
		" HIGH ":   RiskHigh,
		"moderate": RiskMedium,
		"info":     RiskLow,
	}
	for in, want := range cases {
		got, ok := NormalizeRiskLevel(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}

	_, ok := NormalizeRiskLevel("severe-ish")
	assert.False(t, ok)
}

func TestRiskFromScoreAndClamp(t *testing.T) {
	assert.Equal(t, RiskCritical, RiskFromScore(85))
	assert.Equal(t, RiskHigh, RiskFromScore(84))
	assert.Equal(t, RiskMedium, RiskFromScore(40))
	assert.Equal(t, RiskLow, RiskFromScore(39))

	assert.Equal(t, 0, ClampScore(-5))
	assert.Equal(t, 100, ClampScore(140))
	assert.Equal(t, 55, ClampScore(55))
}

func TestPhaseOf(t *testing.T) {
	base := errors.New("boom")
	assert.Equal(t, PhaseRetrieve, PhaseOf(&RetrievalError{ScanID: "s1", Err: base}))
	assert.Equal(t, PhaseAnalyze, PhaseOf(fmt.Errorf("wrapped: %w", &AnalyzerError{ScanID: "s1", Err: base})))
	assert.Equal(t, PhasePersist, PhaseOf(&PersistenceError{ScanID: "s1", StatusCode: 500}))
	assert.Equal(t, PhaseOther, PhaseOf(base))
}

func TestErrorMessages(t *testing.T) {
	base := errors.New("connection refused")

	re := &RetrievalError{ScanID: "s1", Err: base}
	assert.Equal(t, "retrieve scan s1: connection refused", re.Error())
	assert.ErrorIs(t, re, base)

	ae := &AnalyzerError{ScanID: "s1", Index: 2, Title: "XSS", Err: base}
	assert.Equal(t, "analyze vulnerability 2 (XSS) of scan s1: connection refused", ae.Error())

	pe := &PersistenceError{ScanID: "s1", StatusCode: 404}
	assert.Equal(t, "update scan s1: unexpected status 404", pe.Error())
}
