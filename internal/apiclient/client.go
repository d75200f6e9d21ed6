package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/frahmantamala/timesheet-management/internal"
)

const DefaultBaseURL = "http://localhost:8080/api"

// TokenSource yields the bearer token for the next request. An empty string
// means the request goes out unauthenticated.
type TokenSource interface {
	Token() string
}

type TokenSourceFunc func() string

func (f TokenSourceFunc) Token() string { return f() }

// Requester is the surface the typed API clients depend on.
type Requester interface {
	Do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error
	Download(ctx context.Context, path string, query url.Values) (*Blob, error)
}

type Config struct {
	BaseURL   string
	UserAgent string
}

type Option func(*Client)

// WithHTTPClient replaces the underlying transport client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

type Client struct {
	baseURL   string
	userAgent string
	tokens    TokenSource
	http      *http.Client
	logger    *slog.Logger
}

// Blob is a non-JSON response body such as a CSV export.
type Blob struct {
	Data        []byte
	ContentType string
	Filename    string
}

// New builds the single request pipeline. The http client has no timeout; the
// caller's context bounds every request.
func New(cfg Config, tokens TokenSource, logger *slog.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: cfg.UserAgent,
		tokens:    tokens,
		http:      &http.Client{},
		logger:    logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do sends body as JSON and decodes a 2xx response into out. out may be nil.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return internal.NewInternalError("failed to encode request body", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := c.newRequest(ctx, method, path, query, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.send(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
		return internal.NewInternalError("failed to decode response", err)
	}
	return nil
}

// Download fetches a raw body, used for the CSV export endpoints.
func (c *Client) Download(ctx context.Context, path string, query url.Values) (*Blob, error) {
	req, err := c.newRequest(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.send(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, internal.NewNetworkError(err)
	}

	blob := &Blob{
		Data:        data,
		ContentType: resp.Header.Get("Content-Type"),
	}
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil {
		blob.Filename = params["filename"]
	}
	return blob, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader) (*http.Request, error) {
	target := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, internal.NewInternalError("failed to create request", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	// read on every request so a login or logout takes effect immediately
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	return req, nil
}

func (c *Client) send(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("api request failed",
			"method", req.Method,
			"path", req.URL.Path,
			"error", err)
		return nil, internal.NewNetworkError(err)
	}

	c.logger.Debug("api request",
		"method", req.Method,
		"path", req.URL.Path,
		"status", resp.StatusCode,
		"duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, internal.NewServerRejection(resp.StatusCode, readErrorMessage(resp.Body))
	}
	return resp, nil
}

// readErrorMessage pulls the server message out of an error payload.
func readErrorMessage(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 64<<10))
	if err != nil || len(data) == 0 {
		return ""
	}

	var payload struct {
		Message string          `json:"message"`
		Error   json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return ""
	}
	if payload.Message != "" {
		return payload.Message
	}
	if len(payload.Error) > 0 {
		var asString string
		if json.Unmarshal(payload.Error, &asString) == nil {
			return asString
		}
		var asObject struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(payload.Error, &asObject) == nil {
			return asObject.Message
		}
	}
	return ""
}

// IsUnauthorized reports a 401 from the server.
func IsUnauthorized(err error) bool {
	return StatusCode(err) == http.StatusUnauthorized
}

// StatusCode returns the HTTP status of a server rejection, or 0.
func StatusCode(err error) int {
	appErr, ok := internal.IsAppError(err)
	if !ok {
		return 0
	}
	for appErr != nil {
		if appErr.Type == internal.ErrorTypeExternal {
			return appErr.StatusCode
		}
		next, ok := internal.IsAppError(appErr.Cause)
		if !ok {
			break
		}
		appErr = next
	}
	return 0
}

func (b *Blob) String() string {
	return fmt.Sprintf("%s (%d bytes)", b.ContentType, len(b.Data))
}
