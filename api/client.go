// Package api implements the typed JSON-over-HTTP client for the QuickPlate
// backend. Every call carries a bounded timeout; exceeding it surfaces a
// timeout-specific error distinct from generic network failures, and
// non-success responses carry the server's error text verbatim. The client
// performs exactly one attempt per call: retry policy belongs to callers.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/quickplate/quickplate-go/core"
)

const maxResponseBytes = 4 << 20

// Client talks to the QuickPlate backend
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	logger     core.Logger
	telemetry  core.Telemetry
}

// ClientOptions configures the API client
type ClientOptions struct {
	BaseURL   string
	Timeout   time.Duration     // per-request; defaults to core.DefaultRequestTimeout
	Transport http.RoundTripper // optional, e.g. an instrumented transport
	UserAgent string
	Logger    core.Logger    // optional
	Telemetry core.Telemetry // optional
}

// NewClient creates a backend client with the given options
func NewClient(opts ClientOptions) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, fmt.Errorf("backend base URL is required: %w", core.ErrMissingConfiguration)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = core.DefaultRequestTimeout
	}

	logger := opts.Logger
	if logger == nil {
		logger = &core.NoOpLogger{}
	}
	if cal, ok := logger.(core.ComponentAwareLogger); ok {
		logger = cal.WithComponent("quickplate/api")
	}

	telemetry := opts.Telemetry
	if telemetry == nil {
		telemetry = &core.NoOpTelemetry{}
	}

	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = "quickplate-go/" + core.Version
	}

	return &Client{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: opts.Transport,
		},
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		userAgent: userAgent,
		logger:    logger,
		telemetry: telemetry,
	}, nil
}

// do executes one JSON request/response round trip. op names the logical
// operation for logs, spans, and error context.
func (c *Client) do(ctx context.Context, op, method, path string, body, out interface{}) error {
	ctx, span := c.telemetry.StartSpan(ctx, op)
	defer span.End()
	span.SetAttribute("http.method", method)
	span.SetAttribute("http.route", path)

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			span.RecordError(err)
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("Backend request initiated", map[string]interface{}{
		"operation":  "api_request",
		"op":         op,
		"method":     method,
		"path":       path,
		"request_id": requestID,
	})
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		mapped := c.transportError(op, requestID, err)
		span.RecordError(mapped)
		return mapped
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		c.logger.Error("Backend response read failed", map[string]interface{}{
			"operation":  "api_request_error",
			"op":         op,
			"request_id": requestID,
			"phase":      "response_read",
			"error":      err.Error(),
		})
		span.RecordError(err)
		return fmt.Errorf("failed to read response: %w", err)
	}

	span.SetAttribute("http.status_code", resp.StatusCode)
	duration := time.Since(start)
	c.telemetry.RecordMetric("api.request.duration_ms", float64(duration.Milliseconds()), map[string]string{
		"op":     op,
		"status": fmt.Sprintf("%d", resp.StatusCode),
	})

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		serverErr := c.serverError(op, requestID, resp.StatusCode, data)
		span.RecordError(serverErr)
		return serverErr
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			c.logger.Error("Backend response parse failed", map[string]interface{}{
				"operation":  "api_request_error",
				"op":         op,
				"request_id": requestID,
				"phase":      "response_parse",
				"error":      err.Error(),
			})
			span.RecordError(err)
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}

	c.logger.Debug("Backend request completed", map[string]interface{}{
		"operation":   "api_request",
		"op":          op,
		"request_id":  requestID,
		"status_code": resp.StatusCode,
		"duration_ms": duration.Milliseconds(),
	})
	return nil
}

// transportError classifies request-level failures. Timeouts get their own
// sentinel so the UI can suggest a connectivity check rather than a generic
// failure message.
func (c *Client) transportError(op, requestID string, err error) error {
	kind := "network"
	sentinel := core.ErrConnectionFailed
	message := "Network error occurred. Please check your connection."

	var urlErr *url.Error
	timedOut := errors.As(err, &urlErr) && urlErr.Timeout()
	if timedOut || errors.Is(err, context.DeadlineExceeded) {
		kind = "timeout"
		sentinel = core.ErrRequestTimeout
		message = "Network request timed out. Please check if your backend is running."
	}

	c.logger.Error("Backend request failed", map[string]interface{}{
		"operation":  "api_request_error",
		"op":         op,
		"request_id": requestID,
		"phase":      "request_execution",
		"error_kind": kind,
		"error":      err.Error(),
	})

	return &core.ClientError{
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     fmt.Errorf("%w: %v", sentinel, err),
	}
}

// serverError maps a non-2xx response to a structured error carrying the
// backend's error text when one was returned.
func (c *Client) serverError(op, requestID string, statusCode int, body []byte) error {
	var envelope struct {
		Error string `json:"error"`
	}
	_ = json.Unmarshal(body, &envelope)

	message := envelope.Error
	if message == "" {
		message = fmt.Sprintf("API request failed (status %d)", statusCode)
	}

	sentinel := core.ErrServerRejected
	kind := "server"
	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		sentinel = core.ErrUnauthorized
		kind = "unauthorized"
	case http.StatusNotFound:
		sentinel = core.ErrNotFound
		kind = "not_found"
	}
	if strings.Contains(envelope.Error, "Insufficient loyalty points") {
		sentinel = core.ErrInsufficientPoints
		kind = "insufficient_points"
	}

	c.logger.Error("Backend rejected request", map[string]interface{}{
		"operation":    "api_request_error",
		"op":           op,
		"request_id":   requestID,
		"phase":        "api_response",
		"status_code":  statusCode,
		"server_error": envelope.Error,
	})

	return &core.ClientError{
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     sentinel,
	}
}
