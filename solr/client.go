// Package solr is a small json client for the parts of the Solr HTTP API
// that index reconciliation needs: stats, paged select, update and delete.
package solr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/esgf/solrsync/common/types"
	"github.com/esgf/solrsync/log"
)

// Config for a Solr server.
type Config struct {
	URL string `mapstructure:"url"`
	// TimestampField is the date field used for signatures and windows.
	TimestampField string `mapstructure:"timestamp-field"`

	RequestTimeout    time.Duration `mapstructure:"request-timeout"`
	MaxRequestRetries int           `mapstructure:"max-request-retries"`
	RequestRetryDelay time.Duration `mapstructure:"request-retry-delay"`

	// RequestsPerSecond limits the request rate. Zero disables the limit.
	RequestsPerSecond float64 `mapstructure:"requests-per-second"`
	Burst             int     `mapstructure:"burst"`
}

func DefaultConfig() Config {
	return Config{
		TimestampField:    DefaultTimestampField,
		RequestTimeout:    time.Minute,
		MaxRequestRetries: 3,
		RequestRetryDelay: time.Second,
		Burst:             1,
	}
}

// Client talks to one Solr server. Cores are addressed as path elements
// below the base URL.
type Client struct {
	baseURL *url.URL
	cfg     Config
	// client retries transient failures. It is used for reads and writes
	// of records.
	client *retryablehttp.Client
	// probeClient never retries, stats failures are reported to the caller.
	probeClient *retryablehttp.Client
	limiter     *rate.Limiter
	logger      *zap.Logger
}

type ClientOpt func(*Client)

func withCustomHttpClient(client *http.Client) ClientOpt {
	return func(c *Client) {
		c.client.HTTPClient = client
		c.probeClient.HTTPClient = client
	}
}

func WithLogger(logger *zap.Logger) ClientOpt {
	return func(c *Client) {
		c.logger = logger
		c.client.Logger = &retryableHttpLogger{inner: logger}
		c.probeClient.Logger = &retryableHttpLogger{inner: logger}
		c.client.ResponseLogHook = func(_ retryablehttp.Logger, resp *http.Response) {
			logger.Debug(
				"response received",
				zap.Stringer("url", resp.Request.URL),
				zap.Int("status", resp.StatusCode),
			)
		}
	}
}

func checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if resp != nil && resp.StatusCode == http.StatusConflict {
		return false, nil
	}
	return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
}

// A wrapper around zap.Logger to make it compatible with
// retryablehttp.LeveledLogger interface.
type retryableHttpLogger struct {
	inner *zap.Logger
}

func (r retryableHttpLogger) Error(format string, args ...any) {
	r.inner.Sugar().Errorw(format, args...)
}

func (r retryableHttpLogger) Info(format string, args ...any) {
	r.inner.Sugar().Infow(format, args...)
}

func (r retryableHttpLogger) Warn(format string, args ...any) {
	r.inner.Sugar().Warnw(format, args...)
}

func (r retryableHttpLogger) Debug(format string, args ...any) {
	r.inner.Sugar().Debugw(format, args...)
}

// NewClient creates a client for the server at cfg.URL.
func NewClient(cfg Config, opts ...ClientOpt) (*Client, error) {
	baseURL, err := url.Parse(strings.TrimSuffix(cfg.URL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing address: %w", err)
	}
	if baseURL.Scheme == "" {
		baseURL, err = url.Parse("http://" + strings.TrimSuffix(cfg.URL, "/"))
		if err != nil {
			return nil, fmt.Errorf("parsing address: %w", err)
		}
	}
	if cfg.TimestampField == "" {
		cfg.TimestampField = DefaultTimestampField
	}
	newClient := func(retries int) *retryablehttp.Client {
		c := retryablehttp.NewClient()
		c.RetryMax = retries
		c.RetryWaitMin = cfg.RequestRetryDelay
		c.RetryWaitMax = 2 * cfg.RequestRetryDelay
		c.Backoff = retryablehttp.LinearJitterBackoff
		c.CheckRetry = checkRetry
		c.ErrorHandler = retryablehttp.PassthroughErrorHandler
		c.HTTPClient.Timeout = cfg.RequestTimeout
		c.Logger = nil
		return c
	}
	c := &Client{
		baseURL:     baseURL,
		cfg:         cfg,
		client:      newClient(cfg.MaxRequestRetries),
		probeClient: newClient(0),
		limiter:     rate.NewLimiter(rate.Inf, 1),
		logger:      zap.NewNop(),
	}
	if cfg.RequestsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), max(cfg.Burst, 1))
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// URL returns the base address of the server.
func (c *Client) URL() string {
	return c.baseURL.String()
}

// TimestampField returns the field used for signatures and windows.
func (c *Client) TimestampField() string {
	return c.cfg.TimestampField
}

func (c *Client) selectParams(q types.Query) url.Values {
	params := url.Values{}
	params.Set("q", filterOrDefault(q.Filter))
	params.Set("fq", WindowClause(c.cfg.TimestampField, q.Window))
	params.Set("wt", "json")
	return params
}

// Stats returns the signature of the records matching q. The request is not
// retried.
func (c *Client) Stats(ctx context.Context, q types.Query) (types.Signature, error) {
	params := c.selectParams(q)
	params.Set("rows", "0")
	params.Set("stats", "true")
	params.Set("stats.field", c.cfg.TimestampField)

	var res selectResponse
	if err := c.req(ctx, c.probeClient, http.MethodGet, q.Core, "select", params, nil, &res); err != nil {
		return types.Signature{}, err
	}
	sig, err := res.signature(c.cfg.TimestampField)
	if err != nil {
		return types.Signature{}, fmt.Errorf("decoding stats of %s: %w", q.Core, err)
	}
	c.logger.Debug("stats", log.Query(q), log.Signature("signature", sig))
	return sig, nil
}

// Fetch returns rows records matching q, starting at offset start.
// Records are sorted by id so that offsets are stable between pages.
func (c *Client) Fetch(ctx context.Context, q types.Query, start, rows int) (types.Page, error) {
	params := c.selectParams(q)
	params.Set("start", strconv.Itoa(start))
	params.Set("rows", strconv.Itoa(rows))
	params.Set("sort", types.IDField+" asc")

	var res selectResponse
	if err := c.req(ctx, c.client, http.MethodGet, q.Core, "select", params, nil, &res); err != nil {
		return types.Page{}, err
	}
	return types.Page{NumFound: res.Response.NumFound, Records: res.Response.Docs}, nil
}

func updateParams(commit bool) url.Values {
	params := url.Values{}
	params.Set("wt", "json")
	if commit {
		params.Set("commit", "true")
	}
	return params
}

// BulkWrite adds or replaces records in one request.
func (c *Client) BulkWrite(ctx context.Context, core string, records []types.Record, commit bool) error {
	if len(records) == 0 && !commit {
		return nil
	}
	if records == nil {
		records = []types.Record{}
	}
	body, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encoding records: %w", err)
	}
	return c.req(ctx, c.client, http.MethodPost, core, "update", updateParams(commit), body, nil)
}

// DeleteByQuery removes every record of q.Core matching the filter and the window.
func (c *Client) DeleteByQuery(ctx context.Context, q types.Query, commit bool) error {
	body, err := json.Marshal(map[string]any{
		"delete": map[string]string{"query": DeleteQuery(c.cfg.TimestampField, q)},
	})
	if err != nil {
		return fmt.Errorf("encoding delete: %w", err)
	}
	return c.req(ctx, c.client, http.MethodPost, q.Core, "update", updateParams(commit), body, nil)
}

// Commit makes pending changes of core visible.
func (c *Client) Commit(ctx context.Context, core string) error {
	return c.req(ctx, c.client, http.MethodPost, core, "update", updateParams(false),
		[]byte(`{"commit":{}}`), nil)
}

// Optimize merges the segments of core.
func (c *Client) Optimize(ctx context.Context, core string) error {
	return c.req(ctx, c.client, http.MethodPost, core, "update", updateParams(false),
		[]byte(`{"optimize":{}}`), nil)
}

func (c *Client) req(
	ctx context.Context,
	client *retryablehttp.Client,
	method, core, handler string,
	params url.Values,
	reqBody []byte,
	resBody any,
) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("waiting for rate limiter: %w", err)
	}
	u := c.baseURL.JoinPath(core, handler)
	u.RawQuery = params.Encode()

	var body any
	if reqBody != nil {
		body = reqBody
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return fmt.Errorf("creating HTTP request: %w", err)
	}
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("doing request: %w", err)
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("reading response body (%w)", err)
	}

	if res.StatusCode != http.StatusOK {
		c.logger.Debug("solr request failed",
			zap.String("core", core),
			zap.String("handler", handler),
			zap.String("status", res.Status),
			zap.String("body", string(data)),
		)
	}

	switch res.StatusCode {
	case http.StatusOK:
	case http.StatusConflict:
		return fmt.Errorf("%w: %s/%s: %s", ErrConflict, core, handler, errorMessage(data))
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %s/%s: %s", ErrBadRequest, core, handler, errorMessage(data))
	default:
		return &StatusError{Code: res.StatusCode, Body: errorMessage(data)}
	}

	if resBody != nil {
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(resBody); err != nil {
			return fmt.Errorf("decoding response body: %w", err)
		}
	}
	return nil
}

// errorMessage extracts error.msg from a Solr error response.
func errorMessage(data []byte) string {
	var res struct {
		Error struct {
			Msg string `json:"msg"`
		} `json:"error"`
	}
	if err := json.Unmarshal(data, &res); err == nil && res.Error.Msg != "" {
		return res.Error.Msg
	}
	return string(data)
}
