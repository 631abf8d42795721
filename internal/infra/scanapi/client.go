package scanapi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	domain "github.com/Fredrickighile/devsecops-pipeline/internal/domain/scans"
)

// maxErrorBody caps how much of an error response ends up in an error message.
const maxErrorBody = 512

// Client talks to the scan API: GET and PUT on {BaseURL}/{id}.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	logger  *zap.Logger
}

var _ domain.Store = (*Client)(nil)

// New creates a Client. A zero timeout means requests wait as long as the
// server takes.
func New(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("scanapi")
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP: &http.Client{
			Timeout:   timeout,
			Transport: &loggingTransport{next: http.DefaultTransport, logger: logger},
		},
		logger: logger,
	}
}

func (c *Client) scanURL(id domain.ScanID) string {
	return c.BaseURL + "/" + url.PathEscape(string(id))
}

// Fetch implementasi Store: GET scan mentah
func (c *Client) Fetch(ctx context.Context, id domain.ScanID) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.scanURL(id), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, errorMessage(body))
	}
	return body, nil
}

// Update implementasi Store: PUT seluruh dokumen, return status code
func (c *Client) Update(ctx context.Context, id domain.ScanID, body []byte) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.scanURL(id), bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	// drain supaya koneksi bisa dipakai ulang
	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode != http.StatusOK {
		c.logger.Debug("update rejected",
			zap.String("scan_id", string(id)),
			zap.Int("status", resp.StatusCode),
			zap.String("body", errorMessage(respBody)),
		)
	}
	return resp.StatusCode, nil
}

// errorMessage pulls {"error": "..."} out of an API error body, falling back
// to the (truncated) body itself.
func errorMessage(body []byte) string {
	if msg := gjson.GetBytes(body, "error"); msg.Type == gjson.String {
		return msg.String()
	}
	s := strings.TrimSpace(string(body))
	if len(s) > maxErrorBody {
		s = s[:maxErrorBody] + "..."
	}
	if s == "" {
		return "empty body"
	}
	return s
}
