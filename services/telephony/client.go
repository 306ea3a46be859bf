package telephony

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// MakeCallPath is the provider endpoint that starts an outbound call
const MakeCallPath = "/make-call"

// StatusError is returned for any non-2xx provider response
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("failed to initiate call: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// CallRequest is the wire body sent to the provider
type CallRequest struct {
	PhoneNumber string `json:"phoneNumber"`
	Message     string `json:"message"`
}

// CallResponse is the provider reply
type CallResponse struct {
	CallSid string `json:"callSid"`
}

// Options configures a Client
type Options struct {
	Timeout time.Duration
	// InsecureSkipVerify disables certificate checks for this client only
	InsecureSkipVerify bool
}

// Client initiates calls through the telephony provider. The TLS policy is
// fixed at construction and never shared with other clients.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client with its own transport
func NewClient(baseURL string, opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = &tls.Config{
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: opts.InsecureSkipVerify, //nolint:gosec // opt-in per deployment
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
		},
	}
}

// MakeCall asks the provider to place a call reading message to phoneNumber
func (c *Client) MakeCall(ctx context.Context, phoneNumber, message string) (*CallResponse, error) {
	payload, err := json.Marshal(CallRequest{PhoneNumber: phoneNumber, Message: message})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+MakeCallPath, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: truncate(string(body), 512)}
	}

	var callResp CallResponse
	if err := json.Unmarshal(body, &callResp); err != nil {
		return nil, fmt.Errorf("invalid response from telephony API: %s", truncate(string(body), 100))
	}

	return &callResp, nil
}

// CloseIdleConnections releases pooled connections
func (c *Client) CloseIdleConnections() {
	c.httpClient.CloseIdleConnections()
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen]
}
