// Package apiclient is the portal's only point of contact with the backend.
// It builds requests, attaches the bearer token, owns the session lifecycle,
// translates failures into typed errors, and saves binary downloads.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/me/uniportal/internal/logging"
	"github.com/me/uniportal/internal/session"
	"github.com/me/uniportal/pkg/model"
)

// Config holds the settings the client needs to reach the backend.
type Config struct {
	// BaseURL is the API root every endpoint path is appended to.
	BaseURL string

	// Timeout bounds each request. Zero leaves it to the transport.
	Timeout time.Duration

	// DownloadDir is where the default saver writes downloaded documents.
	DownloadDir string
}

// Client talks to the portal backend on behalf of a single user.
type Client struct {
	config     Config
	httpClient *http.Client
	store      session.Store
	logger     *slog.Logger
	saver      Saver
	now        func() time.Time
	onExpired  func()
	metrics    *Metrics
}

// Option configures optional Client dependencies.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client used for requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithSessionExpiredHandler registers fn to run whenever a request is
// rejected with 401, after the session has been cleared and before the
// error is returned. Hosts use it to send the user back to login.
func WithSessionExpiredHandler(fn func()) Option {
	return func(c *Client) {
		c.onExpired = fn
	}
}

// WithSaver replaces the destination of binary downloads.
func WithSaver(s Saver) Option {
	return func(c *Client) {
		c.saver = s
	}
}

// WithClock overrides the time source used for download filenames.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

// WithMetrics instruments every request with the given collectors.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// New creates a client. A nil store falls back to an in-memory one.
func New(cfg Config, store session.Store, logger *slog.Logger, opts ...Option) *Client {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if store == nil {
		store = session.NewMemoryStore()
	}

	c := &Client{
		config:     cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		store:      store,
		logger:     logging.OrDiscard(logger).With("component", "apiclient"),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.saver == nil {
		c.saver = DirSaver{Dir: cfg.DownloadDir}
	}
	if c.metrics != nil {
		hc := *c.httpClient
		hc.Transport = c.metrics.InstrumentRoundTripper(hc.Transport)
		c.httpClient = &hc
	}
	return c
}

// BaseURL returns the API root the client is configured with.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// Do executes a JSON request and returns the parsed envelope verbatim.
//
// A 401 response clears the session, invokes the session-expired handler and
// returns ErrSessionExpired. Any other non-2xx response returns a
// *RequestError carrying the server's message. Failures before a response
// is received return a *TransportError.
func (c *Client) Do(ctx context.Context, req model.Request) (*model.Response, error) {
	return c.do(ctx, req, true)
}

// rawBody is a pre-encoded request body sent with its own content type.
type rawBody struct {
	contentType string
	data        []byte
}

func (c *Client) do(ctx context.Context, req model.Request, handleExpiry bool) (*model.Response, error) {
	op := req.Method + " " + req.Path
	reqID := uuid.NewString()
	logger := c.logger.With("op", op, "request_id", reqID)

	contentType := "application/json"
	var bodyReader io.Reader
	switch b := req.Body.(type) {
	case nil:
	case rawBody:
		contentType = b.contentType
		bodyReader = bytes.NewReader(b.data)
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, fmt.Errorf("%s: marshal request: %w", op, err)
		}
		bodyReader = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, c.url(req), bodyReader)
	if err != nil {
		return nil, fmt.Errorf("%s: create request: %w", op, err)
	}
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", reqID)
	if token := c.token(ctx); token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}
	for k, vs := range req.Header {
		httpReq.Header.Del(k)
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}

	start := time.Now()
	logger.Debug("HTTP request")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		logger.Debug("HTTP request failed", "error", err)
		return nil, &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("read response: %w", err)}
	}

	logger.Debug("HTTP response", "status", resp.StatusCode, "bytes", len(respBody), "duration", time.Since(start))

	if resp.StatusCode == http.StatusUnauthorized && handleExpiry {
		return nil, c.expire(ctx, op)
	}

	var env model.Response
	parseErr := json.Unmarshal(respBody, &env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := fallbackMessage
		if parseErr == nil && env.ErrorText() != "" {
			msg = env.ErrorText()
		}
		return nil, &RequestError{Op: op, StatusCode: resp.StatusCode, Message: msg, Code: env.Code}
	}

	if parseErr != nil {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("parse response (status %d): %w", resp.StatusCode, parseErr)}
	}
	return &env, nil
}

// url joins the base URL, the request path and its query string.
func (c *Client) url(req model.Request) string {
	u := c.config.BaseURL + req.Path
	if len(req.Query) > 0 {
		u += "?" + req.Query.Encode()
	}
	return u
}

// token returns the stored bearer token, or "" without a valid session.
func (c *Client) token(ctx context.Context) string {
	sess, err := c.store.Get(ctx)
	if err != nil {
		c.logger.Debug("session unreadable", "error", err)
		return ""
	}
	if !sess.Valid() {
		return ""
	}
	return sess.Token
}

// expire performs the 401 transition: clear the session, notify the host,
// and hand back the fixed error. The steps always run in this order.
func (c *Client) expire(ctx context.Context, op string) error {
	c.logger.Warn("session expired", "op", op)
	if err := c.store.Clear(context.WithoutCancel(ctx)); err != nil {
		c.logger.Error("clear expired session", "error", err)
	}
	if c.onExpired != nil {
		c.onExpired()
	}
	return ErrSessionExpired
}

// call issues req and decodes the data payload of a successful envelope into T.
func call[T any](ctx context.Context, c *Client, req model.Request) (T, error) {
	var out T
	resp, err := c.Do(ctx, req)
	if err != nil {
		return out, err
	}
	return unwrap[T](req, resp)
}

// callList is call for list endpoints; it never returns a nil slice on success.
func callList[T any](ctx context.Context, c *Client, req model.Request) ([]T, error) {
	items, err := call[[]T](ctx, c, req)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// exec issues a write request and checks the envelope reports success.
func exec(ctx context.Context, c *Client, req model.Request) (*model.Response, error) {
	resp, err := c.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return resp, envelopeError(req, resp)
	}
	return resp, nil
}

func unwrap[T any](req model.Request, resp *model.Response) (T, error) {
	var out T
	if !resp.Success {
		return out, envelopeError(req, resp)
	}
	if !resp.HasData() {
		return out, nil
	}
	if err := json.Unmarshal(resp.Data, &out); err != nil {
		return out, &TransportError{Op: req.Method + " " + req.Path, Err: fmt.Errorf("decode data: %w", err)}
	}
	return out, nil
}

// envelopeError turns a 2xx response with success=false into a RequestError.
func envelopeError(req model.Request, resp *model.Response) error {
	msg := resp.ErrorText()
	if msg == "" {
		msg = fallbackMessage
	}
	return &RequestError{
		Op:         req.Method + " " + req.Path,
		StatusCode: http.StatusOK,
		Message:    msg,
		Code:       resp.Code,
	}
}
