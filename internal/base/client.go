// Package base provides shared client infrastructure for the Wikimedia web services.
package base

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	apierrors "github.com/olgasafonova/commons-mcp-server/internal/errors"
	"github.com/olgasafonova/commons-mcp-server/metrics"
	"github.com/olgasafonova/commons-mcp-server/tracing"
)

const (
	// DefaultTimeout for API requests
	DefaultTimeout = 30 * time.Second

	// DefaultUserAgent identifies the client to Wikimedia services
	DefaultUserAgent = "commons-mcp-server/1.0 (https://github.com/olgasafonova/commons-mcp-server)"
)

// Client provides common HTTP client infrastructure. Every call is a single
// best-effort GET: there are no retries, no rate limiting and no response cache.
type Client struct {
	HTTPClient *http.Client
	Logger     *slog.Logger
	UserAgent  string
}

// ClientOption configures the Client
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(c *http.Client) ClientOption {
	return func(client *Client) {
		client.HTTPClient = c
	}
}

// WithLogger sets a custom logger
func WithLogger(l *slog.Logger) ClientOption {
	return func(client *Client) {
		client.Logger = l
	}
}

// WithUserAgent sets the User-Agent header sent with every request
func WithUserAgent(ua string) ClientOption {
	return func(client *Client) {
		if ua != "" {
			client.UserAgent = ua
		}
	}
}

// NewClient creates a new base client with default settings
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		HTTPClient: NewHTTPClient(DefaultTimeout),
		Logger:     slog.Default(),
		UserAgent:  DefaultUserAgent,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// RequestConfig configures a single HTTP request
type RequestConfig struct {
	URL     string
	Service string // label for metrics and errors, e.g. "commons"
	Action  string // label for metrics and errors, e.g. "media_list"
	Accept  string // defaults to application/json
}

// DoRequest performs one GET request. It returns the body and status code on a
// 2xx response. Transport failures and non-2xx statuses are reported as
// *errors.RequestError; the body is still returned for non-2xx responses.
func (c *Client) DoRequest(ctx context.Context, cfg RequestConfig) ([]byte, int, error) {
	ctx, span := tracing.StartSpan(ctx, "upstream."+cfg.Service+"."+cfg.Action)
	defer span.End()
	tracing.AddUpstreamAttributes(span, cfg.Service, cfg.Action)

	start := time.Now()
	body, status, err := c.do(ctx, cfg)
	duration := time.Since(start).Seconds()

	span.SetAttributes(attribute.Int("http.status_code", status))

	if err != nil {
		code := "transport"
		if status != 0 {
			code = strconv.Itoa(status)
		}
		metrics.RecordAPICall(cfg.Service, cfg.Action, duration, false, code)
		tracing.RecordError(span, err)
		span.SetStatus(codes.Error, err.Error())
		c.Logger.Warn("Upstream request failed",
			"service", cfg.Service,
			"action", cfg.Action,
			"status", status,
			"error", err)
		return body, status, err
	}

	metrics.RecordAPICall(cfg.Service, cfg.Action, duration, true, "")
	span.SetStatus(codes.Ok, "")
	return body, status, nil
}

func (c *Client) do(ctx context.Context, cfg RequestConfig) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cfg.URL, nil)
	if err != nil {
		return nil, 0, &apierrors.RequestError{
			Service: cfg.Service,
			Action:  cfg.Action,
			URL:     cfg.URL,
			Err:     fmt.Errorf("failed to create request: %w", err),
		}
	}

	accept := cfg.Accept
	if accept == "" {
		accept = "application/json"
	}
	req.Header.Set("Accept", accept)
	req.Header.Set("User-Agent", c.UserAgent)

	c.Logger.Debug("Upstream request", "service", cfg.Service, "action", cfg.Action, "url", cfg.URL)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, 0, &apierrors.RequestError{
			Service: cfg.Service,
			Action:  cfg.Action,
			URL:     cfg.URL,
			Err:     err,
		}
	}

	body, err := readAndClose(resp)
	if err != nil {
		return nil, resp.StatusCode, &apierrors.RequestError{
			Service: cfg.Service,
			Action:  cfg.Action,
			URL:     cfg.URL,
			Err:     fmt.Errorf("failed to read response: %w", err),
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.Logger.Debug("Upstream error body", "action", cfg.Action, "body", truncate(string(body), 200))
		return body, resp.StatusCode, apierrors.NewStatusError(cfg.Service, cfg.Action, cfg.URL, resp.StatusCode)
	}

	return body, resp.StatusCode, nil
}

// JoinURL appends path to base and encodes params as the query string.
func JoinURL(base, path string, params url.Values) string {
	u := base
	if path != "" {
		u = strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
	}
	if len(params) > 0 {
		sep := "?"
		if strings.Contains(u, "?") {
			sep = "&"
		}
		u += sep + params.Encode()
	}
	return u
}

// readAndClose reads the response body and closes it
func readAndClose(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return body, err
}

// truncate shortens a string to maxLen, adding "..." if truncated
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// NewHTTPClient creates an HTTP client with tuned transport settings
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   20,
		MaxConnsPerHost:       50,
		IdleConnTimeout:       120 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		DisableCompression:    false,
		ForceAttemptHTTP2:     true,
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}
