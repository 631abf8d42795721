package openai

import (
    "context"
    "encoding/json"
    "io"
    "net/http"
    "net/http/httptest"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/Fredrickighile/devsecops-pipeline/internal/domain/ai"
    "github.com/Fredrickighile/devsecops-pipeline/internal/domain/scans"
)

func completion(content string) string {
    body, _ := json.Marshal(map[string]any{
        "id":      "chatcmpl-1",
        "object":  "chat.completion",
        "created": 1,
        "model":   "gpt-4o-mini",
        "choices": []map[string]any{{
            "index":         0,
            "finish_reason": "stop",
            "message":       map[string]any{"role": "assistant", "content": content},
        }},
    })
    return string(body)
}

func newServer(t *testing.T, status int, body string, seen *map[string]any) *httptest.Server {
    t.Helper()
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        if r.URL.Path != "/v1/chat/completions" {
            http.NotFound(w, r)
            return
        }
        if seen != nil {
            raw, _ := io.ReadAll(r.Body)
            _ = json.Unmarshal(raw, seen)
        }
        w.Header().Set("Content-Type", "application/json")
        w.WriteHeader(status)
        _, _ = io.WriteString(w, body)
    }))
    t.Cleanup(srv.Close)
    return srv
}

var sqli = scans.NewVulnerability("test-001", 0, []byte(`{"title":"SQL Injection","severity":"high"}`))

func TestClient_Analyze(t *testing.T) {
    var req map[string]any
    srv := newServer(t, http.StatusOK,
        completion(`{"priorityScore":92.6,"riskLevel":"critical","suggestedFix":"Use prepared statements","estimatedEffort":"hours"}`),
        &req)

    c := NewClient("sk-test", "gpt-4o-mini", srv.URL+"/v1/")
    got, err := c.Analyze(context.Background(), sqli)
    require.NoError(t, err)
    assert.Equal(t, scans.AnalysisResult{
        PriorityScore:   93,
        RiskLevel:       "critical",
        SuggestedFix:    "Use prepared statements",
        EstimatedEffort: "hours",
    }, got)

    assert.Equal(t, "gpt-4o-mini", req["model"])
    assert.EqualValues(t, maxTokens, req["max_tokens"])
    assert.NotContains(t, req, "max_completion_tokens")
    msgs, ok := req["messages"].([]any)
    require.True(t, ok)
    require.Len(t, msgs, 2)
    user := msgs[1].(map[string]any)
    assert.Contains(t, user["content"], "Title: SQL Injection")
}

func TestClient_ReasoningModelUsesCompletionTokens(t *testing.T) {
    var req map[string]any
    srv := newServer(t, http.StatusOK,
        completion(`{"priorityScore":50,"riskLevel":"medium","suggestedFix":"x"}`), &req)

    _, err := NewClient("sk-test", "o3-mini", srv.URL+"/v1").Analyze(context.Background(), sqli)
    require.NoError(t, err)
    assert.EqualValues(t, maxTokens, req["max_completion_tokens"])
    assert.NotContains(t, req, "max_tokens")
}

func TestClient_CodeFencedAnswer(t *testing.T) {
    srv := newServer(t, http.StatusOK,
        completion("```json\n{\"priorityScore\":40,\"riskLevel\":\"medium\",\"suggestedFix\":\"Patch\"}\n```"), nil)

    got, err := NewClient("sk-test", "", srv.URL+"/v1").Analyze(context.Background(), sqli)
    require.NoError(t, err)
    assert.Equal(t, 40, got.PriorityScore)
    assert.Equal(t, "Patch", got.SuggestedFix)
}

func TestClient_Errors(t *testing.T) {
    t.Run("quota", func(t *testing.T) {
        srv := newServer(t, http.StatusTooManyRequests,
            `{"error":{"message":"You exceeded your current quota","type":"insufficient_quota"}}`, nil)
        _, err := NewClient("sk-test", "gpt-4o-mini", srv.URL+"/v1").Analyze(context.Background(), sqli)
        assert.ErrorIs(t, err, ai.ErrQuotaExceeded)
    })

    t.Run("server error", func(t *testing.T) {
        srv := newServer(t, http.StatusInternalServerError,
            `{"error":{"message":"boom","type":"server_error"}}`, nil)
        _, err := NewClient("sk-test", "gpt-4o-mini", srv.URL+"/v1").Analyze(context.Background(), sqli)
        require.Error(t, err)
        assert.NotErrorIs(t, err, ai.ErrQuotaExceeded)
    })

    t.Run("not json", func(t *testing.T) {
        srv := newServer(t, http.StatusOK, completion("I think this is bad"), nil)
        _, err := NewClient("sk-test", "gpt-4o-mini", srv.URL+"/v1").Analyze(context.Background(), sqli)
        assert.ErrorIs(t, err, ai.ErrMalformedResponse)
    })

    t.Run("empty object", func(t *testing.T) {
        srv := newServer(t, http.StatusOK, completion(`{}`), nil)
        _, err := NewClient("sk-test", "gpt-4o-mini", srv.URL+"/v1").Analyze(context.Background(), sqli)
        assert.ErrorIs(t, err, ai.ErrMalformedResponse)
    })

    t.Run("no choices", func(t *testing.T) {
        srv := newServer(t, http.StatusOK, `{"id":"x","object":"chat.completion","choices":[]}`, nil)
        _, err := NewClient("sk-test", "gpt-4o-mini", srv.URL+"/v1").Analyze(context.Background(), sqli)
        assert.ErrorIs(t, err, ai.ErrMalformedResponse)
    })
}

func TestIsReasoningModel(t *testing.T) {
    assert.True(t, isReasoningModel("o1-preview"))
    assert.True(t, isReasoningModel("gpt-5-mini"))
    assert.False(t, isReasoningModel("gpt-4o-mini"))
}
