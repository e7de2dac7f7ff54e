// Package ai is a thin typed client for the analysis proxy service. The
// proxy owns prompt construction, provider selection, and usage metering;
// this client only ships requests and decodes responses.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// VehicleInfo describes the caller's vehicle for analysis context.
type VehicleInfo struct {
	Make             string   `json:"make"`
	Model            string   `json:"model"`
	Year             *int     `json:"year,omitempty"`
	Features         []string `json:"features,omitempty"`
	SuspensionBrand  string   `json:"suspension_brand,omitempty"`
	SuspensionTravel string   `json:"suspension_travel,omitempty"`
}

// AnalysisContext carries optional trail details for analysis.
type AnalysisContext struct {
	TrailName       string `json:"trail_name,omitempty"`
	TrailLocation   string `json:"trail_location,omitempty"`
	AdditionalNotes string `json:"additional_notes,omitempty"`
}

// AnalyzeRequest is the proxy's trail photo analysis request body. Images
// are base64-encoded, optionally with a data: URI prefix.
type AnalyzeRequest struct {
	Images      []string         `json:"images"`
	Model       string           `json:"model,omitempty"`
	VehicleInfo *VehicleInfo     `json:"vehicle_info,omitempty"`
	Context     *AnalysisContext `json:"context,omitempty"`
	UserID      string           `json:"user_id,omitempty"`
}

// UsageMetrics reports token usage and cost for one proxy call.
type UsageMetrics struct {
	InputTokens  int      `json:"input_tokens"`
	OutputTokens int      `json:"output_tokens"`
	Cost         *float64 `json:"cost,omitempty"`
}

// AnalyzeResponse is the proxy's analysis result.
type AnalyzeResponse struct {
	Success   bool         `json:"success"`
	Text      string       `json:"text"`
	Usage     UsageMetrics `json:"usage"`
	UseCaseID string       `json:"use_case_id"`
	Error     string       `json:"error,omitempty"`
}

// TrailFinderRequest is the proxy's web-search trail discovery request.
type TrailFinderRequest struct {
	Prompt string `json:"prompt"`
	Model  string `json:"model,omitempty"`
	UserID string `json:"user_id,omitempty"`
}

// TrailFinderResponse is the proxy's trail search result.
type TrailFinderResponse struct {
	Success   bool         `json:"success"`
	Text      string       `json:"text"`
	Usage     UsageMetrics `json:"usage"`
	UseCaseID string       `json:"use_case_id"`
	Error     string       `json:"error,omitempty"`
}

// Client talks to the analysis proxy over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// New creates a Client for the proxy at baseURL.
func New(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Analyze submits trail photos for terrain analysis. A response with
// Success false carries the proxy's error message; callers decide how to
// record it.
func (c *Client) Analyze(ctx context.Context, req AnalyzeRequest) (*AnalyzeResponse, error) {
	var resp AnalyzeResponse
	if err := c.post(ctx, "/analyze", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// FindTrails runs an AI-backed web search for trails.
func (c *Client) FindTrails(ctx context.Context, req TrailFinderRequest) (*TrailFinderResponse, error) {
	var resp TrailFinderResponse
	if err := c.post(ctx, "/trail-finder", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Healthy reports whether the proxy answers its health endpoint.
func (c *Client) Healthy(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer func() { _ = resp.Body.Close() }()
	return resp.StatusCode == http.StatusOK
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("proxy request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	c.logger.Debug("proxy call",
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read proxy response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("proxy returned status %d: %s", resp.StatusCode, string(data))
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode proxy response: %w", err)
	}
	return nil
}
