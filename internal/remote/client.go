// Package remote is the typed REST client for the planning backend.
//
// Every read goes to the network: GET requests carry a "_t" cache-busting
// parameter and no-cache headers. Requests are rate limited per resource and
// tagged with an X-Request-ID. Failures come back as *Error wrapping a coded
// domain error; a 401 additionally invokes the unauthorized handler.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	domainerrors "github.com/eventdeck/eventdeck-client/internal/errors"
	"github.com/eventdeck/eventdeck-client/internal/logger"
	"github.com/eventdeck/eventdeck-client/internal/ratelimit"
)

const (
	defaultTimeout = 15 * time.Second
	defaultRPS     = 10.0
	defaultBurst   = 20

	userAgent = "EventDeck/1.0"
)

// TokenSource supplies the bearer token for outgoing requests. An empty
// token sends no Authorization header.
type TokenSource interface {
	Token() string
}

// UnauthorizedHandler is invoked with the server's message on every 401.
type UnauthorizedHandler func(message string)

// Options configure a Client.
type Options struct {
	BaseURL           string
	ActuatorURL       string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int

	// HTTPClient replaces the default client; its Timeout is left alone.
	HTTPClient *http.Client
}

// Client is a rate-limited backend client.
type Client struct {
	http        *http.Client
	baseURL     string
	actuatorURL string
	limiter     *ratelimit.KeyedRateLimiter
	logger      *slog.Logger
	now         func() time.Time

	authMu         sync.RWMutex
	tokens         TokenSource
	onUnauthorized UnauthorizedHandler
}

// New creates a new Client.
func New(opts Options, log *slog.Logger) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = defaultRPS
	}
	if opts.Burst < 1 {
		opts.Burst = defaultBurst
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}

	return &Client{
		http:        httpClient,
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		actuatorURL: strings.TrimRight(opts.ActuatorURL, "/"),
		limiter:     ratelimit.New(opts.RequestsPerSecond, opts.Burst),
		logger:      logger.OrDiscard(log),
		now:         time.Now,
	}
}

// Close releases resources held by the client.
func (c *Client) Close() {
	c.limiter.Stop()
}

// SetAuth installs the token source and the 401 handler. Either may be nil.
func (c *Client) SetAuth(tokens TokenSource, onUnauthorized UnauthorizedHandler) {
	c.authMu.Lock()
	defer c.authMu.Unlock()
	c.tokens = tokens
	c.onUnauthorized = onUnauthorized
}

func (c *Client) auth() (string, UnauthorizedHandler) {
	c.authMu.RLock()
	defer c.authMu.RUnlock()
	token := ""
	if c.tokens != nil {
		token = c.tokens.Token()
	}
	return token, c.onUnauthorized
}

// call describes one backend request.
type call struct {
	op       string
	method   string
	path     string // relative to the base, starting with "/"
	actuator bool
	query    url.Values
	body     any
	out      any
}

// resource returns the rate-limit bucket of a path: its first segment.
func (r call) resource() string {
	if r.actuator {
		return "actuator"
	}
	seg := strings.TrimPrefix(r.path, "/")
	if i := strings.IndexByte(seg, '/'); i >= 0 {
		seg = seg[:i]
	}
	return seg
}

// do executes r and decodes the response into r.out when both are present.
func (c *Client) do(ctx context.Context, r call) error {
	if err := c.limiter.Wait(ctx, r.resource()); err != nil {
		return wrapError(r.op, r.method, r.path, 0,
			domainerrors.Wrap(err, domainerrors.CodeUnavailable, "rate limit wait"))
	}

	req, err := c.newRequest(ctx, r)
	if err != nil {
		return wrapError(r.op, r.method, r.path, 0,
			domainerrors.Wrap(err, domainerrors.CodeInternal, "create request"))
	}

	start := c.now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("backend unreachable",
			slog.String("op", r.op),
			slog.String("path", r.path),
			slog.String("error", err.Error()))
		return wrapError(r.op, r.method, r.path, 0,
			domainerrors.Wrap(err, domainerrors.CodeUnavailable, "backend unreachable"))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return wrapError(r.op, r.method, r.path, resp.StatusCode,
			domainerrors.Wrap(err, domainerrors.CodeUnavailable, "read response"))
	}

	c.logger.Debug("backend request",
		slog.String("op", r.op),
		slog.String("method", r.method),
		slog.String("path", r.path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", c.now().Sub(start)),
		slog.String("request_id", req.Header.Get("X-Request-ID")))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.statusError(r, resp.StatusCode, body)
	}

	if r.out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, r.out); err != nil {
		return wrapError(r.op, r.method, r.path, resp.StatusCode,
			domainerrors.Wrap(err, domainerrors.CodeInternal, "decode response"))
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, r call) (*http.Request, error) {
	base := c.baseURL
	if r.actuator {
		base = c.actuatorURL
	}

	query := url.Values{}
	for k, vs := range r.query {
		query[k] = append([]string(nil), vs...)
	}
	if r.method == http.MethodGet {
		query.Set("_t", strconv.FormatInt(c.now().UnixMilli(), 10))
	}
	target := base + r.path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var body io.Reader
	if r.body != nil {
		data, err := json.Marshal(r.body)
		if err != nil {
			return nil, fmt.Errorf("encode body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, target, body)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Request-ID", uuid.NewString())
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if r.method == http.MethodGet {
		req.Header.Set("Cache-Control", "no-cache")
		req.Header.Set("Pragma", "no-cache")
	}
	if token, _ := c.auth(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

func (c *Client) statusError(r call, status int, body []byte) error {
	var eb errorBody
	_ = json.Unmarshal(body, &eb)
	msg := eb.text()

	c.logger.Warn("backend error",
		slog.String("op", r.op),
		slog.String("method", r.method),
		slog.String("path", r.path),
		slog.Int("status", status),
		slog.String("message", msg))

	if status == http.StatusUnauthorized {
		if msg == "" {
			msg = DefaultUnauthorizedMessage
		}
		if _, handler := c.auth(); handler != nil {
			handler(msg)
		}
	}

	return wrapError(r.op, r.method, r.path, status, domainerrors.FromHTTPStatus(status, msg))
}

func (c *Client) get(ctx context.Context, op, path string, query url.Values, out any) error {
	return c.do(ctx, call{op: op, method: http.MethodGet, path: path, query: query, out: out})
}

func (c *Client) send(ctx context.Context, op, method, path string, body, out any) error {
	return c.do(ctx, call{op: op, method: method, path: path, body: body, out: out})
}

// seg escapes one path segment.
func seg(v fmt.Stringer) string {
	return url.PathEscape(v.String())
}
