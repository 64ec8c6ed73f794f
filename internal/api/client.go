// Package api is the HTTP client for the tarifarios API.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/tarifa/internal/model"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// Remote endpoints.
const (
	PathTarifarios = "/api/v1/tarifarios"
	PathFilters    = "/api/v1/filters"
	PathStats      = "/api/v1/stats"
	PathExportCSV  = "/api/v1/export/csv"
)

// RequestIDHeader carries a fresh identifier on every request.
const RequestIDHeader = "X-Request-ID"

// DefaultTimeout bounds a whole request, body included.
const DefaultTimeout = 30 * time.Second

// StatusError is returned when the server answers with a non-2xx status.
type StatusError struct {
	Body       string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("tarifa API error (status %d): %s", e.StatusCode, e.Body)
}

// Client talks to the tarifarios API.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
	timeout    time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. hc itself is never
// modified; WithTimeout applies to a copy.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithRequestsPerSecond paces outgoing requests. Zero or less means unlimited.
func WithRequestsPerSecond(rps float64) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// NewClient creates a client for the API rooted at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid base URL %q: scheme must be http or https", baseURL)
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		hc := *c.httpClient
		hc.Timeout = c.timeout
		c.httpClient = &hc
	}
	return c, nil
}

// Timeout returns the per-request timeout of the underlying HTTP client.
func (c *Client) Timeout() time.Duration {
	return c.httpClient.Timeout
}

// BaseURL returns the API root without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ListTarifarios fetches one page of records.
func (c *Client) ListTarifarios(ctx context.Context, params url.Values) (*model.Page, error) {
	var page model.Page
	if err := c.getJSON(ctx, "tarifarios", PathTarifarios, params, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// FilterOptions fetches the distinct values offered by the filter controls.
func (c *Client) FilterOptions(ctx context.Context) (*model.FilterOptions, error) {
	var opts model.FilterOptions
	if err := c.getJSON(ctx, "filters", PathFilters, nil, &opts); err != nil {
		return nil, err
	}
	return &opts, nil
}

// Stats fetches the dataset summary.
func (c *Client) Stats(ctx context.Context) (*model.Stats, error) {
	var stats model.Stats
	if err := c.getJSON(ctx, "stats", PathStats, nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// Download is an open CSV export. Size is -1 when the server did not send a
// Content-Length. The caller must close Body.
type Download struct {
	Body     io.ReadCloser
	Filename string
	Size     int64
}

// OpenExport starts a CSV export of the records matching params.
func (c *Client) OpenExport(ctx context.Context, params url.Values) (*Download, error) {
	resp, err := c.do(ctx, "export", PathExportCSV, params)
	if err != nil {
		return nil, err
	}
	return &Download{
		Body:     resp.Body,
		Size:     resp.ContentLength,
		Filename: attachmentName(resp.Header.Get("Content-Disposition")),
	}, nil
}

// ExportCSV streams a CSV export into w and returns the bytes written.
func (c *Client) ExportCSV(ctx context.Context, params url.Values, w io.Writer) (int64, error) {
	dl, err := c.OpenExport(ctx, params)
	if err != nil {
		return 0, err
	}
	defer func() { _ = dl.Body.Close() }()

	n, err := io.Copy(w, dl.Body)
	if err != nil {
		return n, fmt.Errorf("failed to read export: %w", err)
	}
	return n, nil
}

// ExportURL is the address a browser would download the export from.
func (c *Client) ExportURL(params url.Values) string {
	return c.endpoint(PathExportCSV, params)
}

func (c *Client) getJSON(ctx context.Context, name, path string, params url.Values, out any) error {
	resp, err := c.do(ctx, name, path, params)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", name, err)
	}
	return nil
}

// do sends a GET and returns the response when its status is 2xx.
func (c *Client) do(ctx context.Context, name, path string, params url.Values) (*http.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter canceled: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(path, params), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set(RequestIDHeader, requestID)
	req.Header.Set("Accept", acceptFor(path))

	slog.Debug("Requesting tarifa API",
		"endpoint", name,
		"url_params", params.Encode(),
		"request_id", requestID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	requestDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	if err != nil {
		requestsTotal.WithLabelValues(name, "error").Inc()
		return nil, fmt.Errorf("request to %s failed: %w", path, err)
	}
	requestsTotal.WithLabelValues(name, strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer func() { _ = resp.Body.Close() }()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	return resp, nil
}

func (c *Client) endpoint(path string, params url.Values) string {
	if len(params) == 0 {
		return c.baseURL + path
	}
	return c.baseURL + path + "?" + params.Encode()
}

func acceptFor(path string) string {
	if path == PathExportCSV {
		return "text/csv"
	}
	return "application/json"
}

// attachmentName extracts the filename of a Content-Disposition header.
func attachmentName(header string) string {
	for _, part := range strings.Split(header, ";") {
		part = strings.TrimSpace(part)
		if name, ok := strings.CutPrefix(part, "filename="); ok {
			return strings.Trim(name, `"`)
		}
	}
	return ""
}
