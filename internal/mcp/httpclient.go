package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/claude/healthvault/internal/query"
)

// HTTPClient implements DataSource by calling the HealthVault REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// data lives on the remote server (accessed over Tailscale).
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) do(ctx context.Context, method, path string, reqBody any) ([]byte, error) {
	var body io.Reader
	if reqBody != nil {
		data, err := json.Marshal(reqBody)
		if err != nil {
			return nil, fmt.Errorf("httpclient: encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: create request: %w", err)
	}
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, respBody)
	}

	return respBody, nil
}

// Query forwards the query to the server's query endpoint.
func (c *HTTPClient) Query(ctx context.Context, p query.Params) (*query.Result, error) {
	body, err := c.do(ctx, http.MethodPost, "/api/v1/query", p)
	if err != nil {
		return nil, err
	}

	var res query.Result
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("httpclient: decode query result: %w", err)
	}
	return &res, nil
}

// AvailableMetrics fetches the server's unioned metric list.
func (c *HTTPClient) AvailableMetrics(ctx context.Context) ([]string, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/v1/metrics", nil)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Metrics []string `json:"metrics"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("httpclient: decode metrics: %w", err)
	}
	return resp.Metrics, nil
}

// DateRange fetches the server's overall data span.
func (c *HTTPClient) DateRange(ctx context.Context) (time.Time, time.Time, bool, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/v1/range", nil)
	if err != nil {
		return time.Time{}, time.Time{}, false, err
	}

	var resp struct {
		HasData bool   `json:"has_data"`
		Start   string `json:"start"`
		End     string `json:"end"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return time.Time{}, time.Time{}, false, fmt.Errorf("httpclient: decode range: %w", err)
	}
	if !resp.HasData {
		return time.Time{}, time.Time{}, false, nil
	}

	start, err := time.Parse(time.RFC3339, resp.Start)
	if err != nil {
		return time.Time{}, time.Time{}, false, fmt.Errorf("httpclient: parse range start: %w", err)
	}
	end, err := time.Parse(time.RFC3339, resp.End)
	if err != nil {
		return time.Time{}, time.Time{}, false, fmt.Errorf("httpclient: parse range end: %w", err)
	}
	return start, end, true, nil
}

// HasData probes with a single-point query; the server has no dedicated
// existence endpoint.
func (c *HTTPClient) HasData(ctx context.Context, p query.Params) (bool, error) {
	p.Limit = 1
	res, err := c.Query(ctx, p)
	if err != nil {
		return false, err
	}
	return len(res.Data) > 0, nil
}
