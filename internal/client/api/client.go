// Package api is the portal client's HTTP binding to the portal server.
// Requests carry JSON and share one cookie jar so the session cookies set
// by signup and login ride along on later calls.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/dmitrijs2005/classroom/internal/dto"
	"github.com/dmitrijs2005/classroom/internal/logging"
	"golang.org/x/net/publicsuffix"
)

// Client talks to one portal server.
type Client struct {
	baseURL string
	http    *http.Client
	logger  logging.Logger
}

// New builds a Client for baseURL, e.g. "http://localhost:8090".
func New(baseURL string, timeout time.Duration, logger logging.Logger) (*Client, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Jar: jar, Timeout: timeout},
		logger:  logger.With("module", "api_client"),
	}, nil
}

// BaseURL returns the server base URL without a trailing slash.
func (c *Client) BaseURL() string { return c.baseURL }

// call describes one request.
type call struct {
	method      string
	path        string
	body        any
	contentType string
	raw         io.Reader
	out         any
	fallback    string
}

// do sends the request. out may be nil, an *[]byte for raw bodies, or a
// pointer to decode JSON into.
func (c *Client) do(ctx context.Context, cl call) error {
	var body io.Reader
	contentType := cl.contentType
	switch {
	case cl.raw != nil:
		body = cl.raw
	case cl.body != nil:
		b, err := json.Marshal(cl.body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
		contentType = "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, c.baseURL+cl.path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return unavailable(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return unavailable(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode, Message: cl.fallback}
		var e dto.ErrorResponse
		if json.Unmarshal(data, &e) == nil && e.Error != "" {
			apiErr.Message = e.Error
		}
		c.logger.Debug(ctx, "request failed", "method", cl.method, "path", cl.path, "status", resp.StatusCode)
		return apiErr
	}

	switch out := cl.out.(type) {
	case nil:
		return nil
	case *[]byte:
		*out = data
		return nil
	default:
		if len(bytes.TrimSpace(data)) == 0 {
			return nil
		}
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}
}

// doAuthed sends cl and, if the server answers 401, refreshes the session
// once and retries.
func (c *Client) doAuthed(ctx context.Context, cl call) error {
	err := c.do(ctx, cl)
	if !IsUnauthorized(err) {
		return err
	}
	if cl.raw != nil {
		// the body reader is consumed; retrying would send an empty body
		return err
	}
	if _, refreshErr := c.Refresh(ctx); refreshErr != nil {
		c.logger.Debug(ctx, "refresh after 401 failed", "error", refreshErr)
		return err
	}
	return c.do(ctx, cl)
}

// Ping checks the server liveness endpoint.
func (c *Client) Ping(ctx context.Context) error {
	err := c.do(ctx, call{method: http.MethodGet, path: "/health", fallback: msgPingFailed})
	if err != nil && !errors.Is(err, ErrUnavailable) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return err
}
