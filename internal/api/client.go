// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

// Configuration constants for the REST boundary.
const (
	// DefaultTimeout is the client-side timeout applied to every call.
	DefaultTimeout = 10 * time.Second

	// MaxResponseSize is the maximum allowed response body size.
	// SECURITY: Response size limit prevents memory exhaustion attacks.
	MaxResponseSize = 10 * 1024 * 1024 // 10MB limit
)

// Error variables for common boundary errors.
var (
	// ErrUnauthenticated indicates the session cookie is missing or invalid.
	// This is an expected steady state, not an application error.
	ErrUnauthenticated = errors.New("not authenticated")

	// ErrTimeout indicates the call exceeded the client-side timeout.
	ErrTimeout = errors.New("request timed out")
)

// APIError represents a non-401 error response from the server.
type APIError struct {
	Status  int
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error (HTTP %d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api error (HTTP %d)", e.Status)
}

// IsUnauthenticated reports whether err means the session is invalid.
func IsUnauthenticated(err error) bool {
	return errors.Is(err, ErrUnauthenticated)
}

// UserMessage extracts a user-displayable message from a boundary error.
// Server-provided messages are preferred; anything else collapses to the
// fallback string.
func UserMessage(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// envelope is the server's standard response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// =============================================================================
// CLIENT
// =============================================================================

// Client talks to the kindred REST API. Authentication is an opaque
// HTTP-only session cookie carried by the client's cookie jar; the raw
// token is never read or stored by application code.
type Client struct {
	baseURL    string
	httpClient *http.Client
	jar        *Jar
}

// NewClient creates a REST client for the given base URL.
// The cookie jar is persisted at jarPath so the session survives restarts;
// pass an empty jarPath for an in-memory jar.
func NewClient(baseURL string, timeout time.Duration, jarPath string) (*Client, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	jar, err := NewJar(jarPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
			Jar:     jar,
		},
		jar: jar,
	}, nil
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// PersistSession flushes the cookie jar to disk.
func (c *Client) PersistSession() error {
	return c.jar.Persist()
}

// ClearSession drops all cookies, locally and on disk.
func (c *Client) ClearSession() error {
	return c.jar.Clear()
}

// =============================================================================
// REQUEST PLUMBING
// =============================================================================

// get performs a GET request and decodes the response into out.
func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

// post performs a POST request with a JSON body and decodes into out.
// out may be nil when the response body is irrelevant.
func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "kindred/0.1.0")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			return fmt.Errorf("%w: %s %s", ErrTimeout, method, path)
		}
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	// Log request/response without bodies or headers; bodies may carry
	// profile data and headers carry the session cookie.
	log.Printf("API %s %s: %d (%v)", method, path, resp.StatusCode, time.Since(start))

	payload, err := readResponse(resp)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthenticated
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.errorFromResponse(resp.StatusCode, payload)
	}

	if out != nil && len(payload) > 0 {
		if err := json.Unmarshal(payload, out); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return nil
}

// readResponse reads the response body with size limits.
//
// SECURITY: Response size limit prevents memory exhaustion.
func readResponse(resp *http.Response) ([]byte, error) {
	limitedReader := io.LimitReader(resp.Body, MaxResponseSize)
	body, err := io.ReadAll(limitedReader)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) == MaxResponseSize {
		return nil, fmt.Errorf("response exceeded maximum size of %d bytes", MaxResponseSize)
	}
	return body, nil
}

// errorFromResponse converts an HTTP error response into an APIError,
// preserving the server's message when one is present.
func (c *Client) errorFromResponse(status int, body []byte) error {
	var env envelope
	if err := json.Unmarshal(body, &env); err == nil && env.Message != "" {
		return &APIError{Status: status, Message: env.Message}
	}
	return &APIError{Status: status}
}

// isTimeout reports whether the transport error was a timeout.
func isTimeout(err error) bool {
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}
