package scans

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func keysOf(t *testing.T, raw string) []string {
	t.Helper()
	var keys []string
	gjson.Parse(raw).ForEach(func(k, _ gjson.Result) bool {
		keys = append(keys, k.String())
		return true
	})
	return keys
}

func TestParseScan(t *testing.T) {
	t.Run("accepts object with vulnerabilities", func(t *testing.T) {
		s, err := ParseScan("s1", []byte(`{"id":"s1","vulnerabilities":[{"title":"SQLi"},{"title":"XSS"}]}`))
		require.NoError(t, err)
		assert.Equal(t, ScanID("s1"), s.ID)
		assert.Len(t, s.Vulnerabilities(), 2)
	})

	t.Run("accepts empty list", func(t *testing.T) {
		s, err := ParseScan("s1", []byte(`{"vulnerabilities":[]}`))
		require.NoError(t, err)
		assert.Empty(t, s.Vulnerabilities())
	})

	cases := []struct {
		name string
		body string
		want error
	}{
		{"invalid json", `{"vulnerabilities":[`, ErrInvalidJSON},
		{"html error page", `<html>502</html>`, ErrInvalidJSON},
		{"array body", `[{"title":"x"}]`, ErrNotObject},
		{"missing field", `{"id":"s1"}`, ErrNoVulnerabilities},
		{"null field", `{"vulnerabilities":null}`, ErrVulnerabilitiesArr},
		{"object field", `{"vulnerabilities":{"title":"x"}}`, ErrVulnerabilitiesArr},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseScan("s1", []byte(tc.body))
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	t.Run("rejects non-object entries", func(t *testing.T) {
		_, err := ParseScan("s1", []byte(`{"vulnerabilities":[{"title":"a"},"b"]}`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "vulnerability 1")
	})
}

func TestScan_Vulnerabilities(t *testing.T) {
	body := `{"scanId":"s1","vulnerabilities":[
		{"source":"npm-audit","type":"dependency","severity":"HIGH","title":"Prototype pollution","package":"lodash","fixAvailable":true,"cvss":7.4},
		{"title":"XSS","severity":"medium","description":"reflected"}
	]}`
	s, err := ParseScan("s1", []byte(body))
	require.NoError(t, err)

	vulns := s.Vulnerabilities()
	require.Len(t, vulns, 2)

	first := vulns[0]
	assert.Equal(t, ScanID("s1"), first.ScanID)
	assert.Equal(t, 0, first.Index)
	assert.Equal(t, "Prototype pollution", first.Title())
	assert.Equal(t, "high", first.Severity())
	assert.Equal(t, "dependency", first.Type())
	assert.Equal(t, "npm-audit", first.Source())
	assert.Equal(t, "lodash", first.Package())
	assert.True(t, first.FixAvailable())
	assert.InDelta(t, 7.4, first.CVSS(), 0.0001)

	second := vulns[1]
	assert.Equal(t, 1, second.Index)
	assert.Equal(t, "XSS", second.Title())
	assert.Equal(t, "reflected", second.Description())
	assert.False(t, second.FixAvailable())
	assert.Zero(t, second.CVSS())
}

func TestScan_DuplicateListKeyUsesFirst(t *testing.T) {
	s, err := ParseScan("s1", []byte(`{"vulnerabilities":[{"title":"a"}],"vulnerabilities":[{"title":"b"},{"title":"c"}]}`))
	require.NoError(t, err)

	vulns := s.Vulnerabilities()
	require.Len(t, vulns, 1)
	assert.Equal(t, "a", vulns[0].Title())
}

func TestVulnerability_HasTitle(t *testing.T) {
	assert.True(t, NewVulnerability("s1", 0, []byte(`{"title":""}`)).HasTitle())
	assert.False(t, NewVulnerability("s1", 0, []byte(`{"severity":"high"}`)).HasTitle())
}

func TestScan_Attach(t *testing.T) {
	t.Run("adds aiAnalysis and nothing else", func(t *testing.T) {
		original := `{"id":"s1","branch":"main","vulnerabilities":[{"title":"SQLi","extra":{"a":[1,2]}},{"title":"XSS"}],"metrics":{"total":2}}`
		s, err := ParseScan("s1", []byte(original))
		require.NoError(t, err)

		vulns := s.Vulnerabilities()
		require.NoError(t, s.Attach(vulns[0], AnalysisResult{PriorityScore: 88, RiskLevel: "critical", SuggestedFix: "Use parameterized queries"}))
		require.NoError(t, s.Attach(vulns[1], AnalysisResult{PriorityScore: 41, RiskLevel: "medium", SuggestedFix: "Encode output"}))

		out := string(s.Bytes())
		assert.Equal(t, []string{"id", "branch", "vulnerabilities", "metrics"}, keysOf(t, out))
		assert.Equal(t, []string{"title", "extra", "aiAnalysis"}, keysOf(t, gjson.Get(out, "vulnerabilities.0").Raw))
		assert.Equal(t, []string{"title", "aiAnalysis"}, keysOf(t, gjson.Get(out, "vulnerabilities.1").Raw))

		assert.JSONEq(t, `{
			"id":"s1","branch":"main","metrics":{"total":2},
			"vulnerabilities":[
				{"title":"SQLi","extra":{"a":[1,2]},"aiAnalysis":{"priorityScore":88,"riskLevel":"critical","suggestedFix":"Use parameterized queries"}},
				{"title":"XSS","aiAnalysis":{"priorityScore":41,"riskLevel":"medium","suggestedFix":"Encode output"}}
			]}`, out)
	})

	t.Run("replaces an existing aiAnalysis in place", func(t *testing.T) {
		original := `{"vulnerabilities":[{"title":"SQLi","aiAnalysis":{"priorityScore":0,"suggestedFix":"","estimatedEffort":"","riskLevel":""},"cvss":9.8}]}`
		s, err := ParseScan("s1", []byte(original))
		require.NoError(t, err)

		require.NoError(t, s.Attach(s.Vulnerabilities()[0], AnalysisResult{PriorityScore: 95, RiskLevel: "critical", SuggestedFix: "Patch", EstimatedEffort: "hours"}))

		v := s.Get("vulnerabilities.0").Raw
		assert.Equal(t, []string{"title", "aiAnalysis", "cvss"}, keysOf(t, v))

		var got AnalysisResult
		require.NoError(t, json.Unmarshal([]byte(gjson.Get(v, "aiAnalysis").Raw), &got))
		assert.Equal(t, AnalysisResult{PriorityScore: 95, RiskLevel: "critical", SuggestedFix: "Patch", EstimatedEffort: "hours"}, got)
	})

	t.Run("index out of range", func(t *testing.T) {
		s, err := ParseScan("s1", []byte(`{"vulnerabilities":[]}`))
		require.NoError(t, err)
		err = s.Attach(NewVulnerability("s1", 0, []byte(`{}`)), AnalysisResult{})
		assert.Error(t, err)
	})

	t.Run("parse copies the input", func(t *testing.T) {
		body := []byte(`{"vulnerabilities":[{"title":"a"}]}`)
		s, err := ParseScan("s1", body)
		require.NoError(t, err)
		body[len(body)-5] = 'z'
		assert.Equal(t, "a", s.Vulnerabilities()[0].Title())
	})
}

func TestAnalysisResult_JSON(t *testing.T) {
	b, err := json.Marshal(AnalysisResult{PriorityScore: 10, RiskLevel: "low", SuggestedFix: "none"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"priorityScore":10,"riskLevel":"low","suggestedFix":"none"}`, string(b))
}
