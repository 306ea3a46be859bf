package orchestrator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// AnalyzePath is the orchestrator endpoint that runs a case analysis
const AnalyzePath = "/api/orchestrator/analyze"

// ErrTimeout is returned when the orchestrator does not answer within the client timeout
var ErrTimeout = errors.New("orchestrator request timed out")

// StatusError is returned for any non-2xx orchestrator response
type StatusError struct {
	StatusCode int
	Body       string // first bytes of the response body, for diagnostics
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("orchestrator returned %d", e.StatusCode)
}

// AnalyzeRequest is the wire body sent to the orchestrator
type AnalyzeRequest struct {
	UserRequest string   `json:"user_request"`
	FileURLs    []string `json:"file_urls"`
	CaseID      string   `json:"case_id"`
}

// Client calls the external AI orchestrator. Each call is a single attempt.
type Client struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
}

// NewClient creates a client bound to baseURL. timeout bounds the whole
// exchange, body included.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		// No client-level timeout: the per-call context owns the deadline
		httpClient: &http.Client{},
	}
}

// Timeout returns the per-call deadline
func (c *Client) Timeout() time.Duration {
	return c.timeout
}

// Analyze posts the request and converts the reply into a Result
func (c *Client) Analyze(ctx context.Context, req AnalyzeRequest) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+AnalyzePath, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, ErrTimeout
		}
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(snippet)}
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()

	var document interface{}
	if err := dec.Decode(&document); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, ErrTimeout
		}
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return ParseResult(document)
}
