package catalog

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

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/mgomes/cdgcview/internal/metrics"
)

const (
	DefaultBaseURL = "http://localhost:8000"
	DefaultDepth   = 2
	FormatUI       = "ui"

	requestIDHeader = "X-Request-ID"
)

// Client talks to the data-catalog service. Every method returns either a
// decoded, validated payload or a *TransportError.
type Client struct {
	baseURL  *url.URL
	http     *http.Client
	logger   *slog.Logger
	validate *validator.Validate
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

type SearchOptions struct {
	Limit  int
	Offset int
}

type LineageRequest struct {
	AssetID string
	Depth   int
	Format  string
}

func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q: scheme and host are required", baseURL)
	}

	c := &Client{
		baseURL:  u,
		http:     http.DefaultClient,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Health returns the liveness status reported by GET /healthz.
func (c *Client) Health(ctx context.Context) (string, error) {
	var out HealthStatus
	if err := c.get(ctx, "healthz", "/healthz", "", &out); err != nil {
		return "", err
	}
	return *out.Status, nil
}

// Ready returns the readiness report. A 503 carries a valid report and is
// not treated as a failure.
func (c *Client) Ready(ctx context.Context) (Readiness, error) {
	var out Readiness
	if err := c.get(ctx, "readyz", "/readyz", "", &out, http.StatusServiceUnavailable); err != nil {
		return Readiness{}, err
	}
	return out, nil
}

func (c *Client) Search(ctx context.Context, query string, opts SearchOptions) (SearchResultSet, error) {
	if query == "" {
		return SearchResultSet{}, ErrEmptyQuery
	}

	var out SearchResultSet
	if err := c.get(ctx, "search", "/search/", SearchQuery(query, opts), &out); err != nil {
		return SearchResultSet{}, err
	}
	out.normalize()
	return out, nil
}

func (c *Client) Lineage(ctx context.Context, req LineageRequest) (LineageGraph, error) {
	var out LineageGraph
	if err := c.get(ctx, "lineage", "/lineage/graph", req.Query(), &out); err != nil {
		return LineageGraph{}, err
	}
	out.normalize()
	return out, nil
}

// SearchQuery encodes the search parameters. Limit and offset are omitted
// when zero so the default request carries only q.
func SearchQuery(query string, opts SearchOptions) string {
	params := url.Values{}
	params.Set("q", query)
	if opts.Limit > 0 {
		params.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Offset > 0 {
		params.Set("offset", strconv.Itoa(opts.Offset))
	}
	return params.Encode()
}

// Query encodes the request as format, asset_id, depth in that order.
// asset_id is left out entirely when empty.
func (r LineageRequest) Query() string {
	format := r.Format
	if format == "" {
		format = FormatUI
	}
	depth := r.Depth
	if depth <= 0 {
		depth = DefaultDepth
	}

	var b strings.Builder
	b.WriteString("format=" + url.QueryEscape(format))
	if r.AssetID != "" {
		b.WriteString("&asset_id=" + url.QueryEscape(r.AssetID))
	}
	b.WriteString("&depth=" + strconv.Itoa(depth))
	return b.String()
}

func (c *Client) get(ctx context.Context, endpoint, path, rawQuery string, out any, acceptStatus ...int) (err error) {
	u := *c.baseURL
	u.Path = strings.TrimSuffix(u.Path, "/") + path
	u.RawQuery = rawQuery

	requestID := uuid.NewString()
	logger := c.logger.With("request_id", requestID, "endpoint", endpoint)
	start := time.Now()

	defer func() {
		elapsed := time.Since(start)
		metrics.RequestDuration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
		metrics.Requests.WithLabelValues(endpoint, outcome(err)).Inc()
		if err != nil {
			logger.Warn("catalog request failed", "url", u.String(), "duration", elapsed, "error", err)
		}
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return &TransportError{Op: endpoint, Kind: KindUnreachable, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(requestIDHeader, requestID)

	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Op: endpoint, Kind: KindUnreachable, Err: err}
	}
	defer resp.Body.Close() //nolint:errcheck

	if !statusAccepted(resp.StatusCode, acceptStatus) {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return &TransportError{Op: endpoint, Kind: KindStatus, StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &TransportError{Op: endpoint, Kind: KindDecode, StatusCode: resp.StatusCode, Err: err}
	}

	if err := c.validate.Struct(out); err != nil {
		return &TransportError{Op: endpoint, Kind: KindSchema, StatusCode: resp.StatusCode, Err: err}
	}

	logger.Debug("catalog request", "status", resp.StatusCode, "duration", time.Since(start))
	return nil
}

func statusAccepted(code int, extra []int) bool {
	if code >= 200 && code < 300 {
		return true
	}
	for _, c := range extra {
		if c == code {
			return true
		}
	}
	return false
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	if te, ok := err.(*TransportError); ok {
		return te.Kind.String()
	}
	return "error"
}
