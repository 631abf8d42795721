package openai

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "net/http"
    "strings"

    "github.com/sashabaranov/go-openai"

    "github.com/Fredrickighile/devsecops-pipeline/internal/domain/ai"
    "github.com/Fredrickighile/devsecops-pipeline/internal/domain/scans"
    "github.com/Fredrickighile/devsecops-pipeline/internal/infra/ai/prompt"
)

const (
    maxTokens    = 512
    defaultModel = "gpt-4o-mini"
)

type Client struct {
    *openai.Client
    Model string
}

var _ ai.Analyzer = (*Client)(nil)

// NewClient builds a client; baseURL may be empty for the public API.
func NewClient(apiKey, model, baseURL string) *Client {
    cfg := openai.DefaultConfig(apiKey)
    if baseURL != "" {
        cfg.BaseURL = strings.TrimRight(baseURL, "/")
    }
    return &Client{Client: openai.NewClientWithConfig(cfg), Model: model}
}

// answer is the JSON the model is asked for. Score is a float because models
// sometimes answer 72.5.
type answer struct {
    PriorityScore   float64 `json:"priorityScore"`
    RiskLevel       string  `json:"riskLevel"`
    SuggestedFix    string  `json:"suggestedFix"`
    EstimatedEffort string  `json:"estimatedEffort"`
}

func (c *Client) Analyze(ctx context.Context, v scans.Vulnerability) (scans.AnalysisResult, error) {
    model := c.Model
    if model == "" {
        model = defaultModel
    }
    req := openai.ChatCompletionRequest{
        Model: model,
        ResponseFormat: &openai.ChatCompletionResponseFormat{
            Type: openai.ChatCompletionResponseFormatTypeJSONObject,
        },
        Messages: []openai.ChatCompletionMessage{
            {Role: openai.ChatMessageRoleSystem, Content: prompt.GetSystemPrompt()},
            {Role: openai.ChatMessageRoleUser, Content: prompt.GetUserPrompt(v)},
        },
    }
    // For reasoning models (o1/o3/o4/gpt-5*) use MaxCompletionTokens instead of MaxTokens
    if isReasoningModel(model) {
        req.MaxCompletionTokens = maxTokens
    } else {
        req.MaxTokens = maxTokens
    }

    resp, err := c.CreateChatCompletion(ctx, req)
    if err != nil {
        if isQuotaError(err) {
            return scans.AnalysisResult{}, fmt.Errorf("%w: %v", ai.ErrQuotaExceeded, err)
        }
        return scans.AnalysisResult{}, fmt.Errorf("failed to create chat completion: %w", err)
    }
    if len(resp.Choices) == 0 {
        return scans.AnalysisResult{}, fmt.Errorf("%w: no choices returned", ai.ErrMalformedResponse)
    }

    return decodeAnswer(resp.Choices[0].Message.Content)
}

func decodeAnswer(content string) (scans.AnalysisResult, error) {
    content = strings.TrimSpace(content)
    // some models still wrap JSON in code fences
    content = strings.TrimPrefix(content, "```json")
    content = strings.TrimPrefix(content, "```")
    content = strings.TrimSuffix(content, "```")

    var a answer
    if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &a); err != nil {
        return scans.AnalysisResult{}, fmt.Errorf("%w: %v", ai.ErrMalformedResponse, err)
    }
    if a.RiskLevel == "" && a.SuggestedFix == "" {
        return scans.AnalysisResult{}, fmt.Errorf("%w: answer has no riskLevel or suggestedFix", ai.ErrMalformedResponse)
    }
    return scans.AnalysisResult{
        PriorityScore:   int(a.PriorityScore + 0.5),
        RiskLevel:       a.RiskLevel,
        SuggestedFix:    a.SuggestedFix,
        EstimatedEffort: a.EstimatedEffort,
    }, nil
}

func isReasoningModel(model string) bool {
    return strings.HasPrefix(model, "o1") || strings.HasPrefix(model, "o3") ||
        strings.HasPrefix(model, "o4") || strings.HasPrefix(model, "gpt-5")
}

func isQuotaError(err error) bool {
    var apiErr *openai.APIError
    if errors.As(err, &apiErr) {
        return apiErr.HTTPStatusCode == http.StatusTooManyRequests
    }
    var reqErr *openai.RequestError
    if errors.As(err, &reqErr) {
        return reqErr.HTTPStatusCode == http.StatusTooManyRequests
    }
    return false
}
