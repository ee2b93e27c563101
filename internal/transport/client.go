// SPDX-License-Identifier: MIT

// Package transport is the single HTTP call wrapper every façade goes
// through. It attaches auth and workspace scoping headers, applies the
// per-call timeout, and classifies responses from a backend that is not
// fully trusted to be consistent (PHP fatals arrive as HTML error pages).
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"

	"github.com/ronittamrakar/xordon-go/internal/cache"
	"github.com/ronittamrakar/xordon-go/internal/config"
	"github.com/ronittamrakar/xordon-go/internal/log"
	"github.com/ronittamrakar/xordon-go/internal/session"
)

// snippetLimit bounds how much of a non-JSON body is carried into an error.
const snippetLimit = 400

// defaultCacheTTL is how long cacheable GET responses are retained. It is the
// process-native analogue of browser-determined caching for bulk list reads.
const defaultCacheTTL = 30 * time.Second

// TokenSource resolves the bearer token before each call. Implementations
// never fail: an empty token means the call goes out unauthenticated.
type TokenSource interface {
	Token(ctx context.Context) string
}

// sessionTokens is the non-dev token source: whatever the session holds.
type sessionTokens struct{ sess *session.Session }

func (s sessionTokens) Token(context.Context) string { return s.sess.Token() }

// Client performs one HTTP call per Do invocation against the API root.
type Client struct {
	base     string
	http     *http.Client
	sess     *session.Session
	timeout  time.Duration
	devMode  bool
	debug    bool
	tokens   TokenSource
	limiter  *rate.Limiter
	cache    cache.Cache
	cacheTTL time.Duration
	logger   zerolog.Logger

	// onAuthExpired runs after a server-confirmed session expiry (401 on a
	// non-auth path) clears the token. The CLI uses it to tell the operator
	// to log in again; it is the analogue of the SPA redirect to /login.
	onAuthExpired func()
}

// Option customises a Client.
type Option func(*Client)

// WithTokenSource installs the token resolver (the dev bootstrap).
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithAuthExpiredHook installs the session-expiry side effect.
func WithAuthExpiredHook(fn func()) Option {
	return func(c *Client) { c.onAuthExpired = fn }
}

// WithCache installs a response cache for cacheable GETs.
func WithCache(store cache.Cache, ttl time.Duration) Option {
	return func(c *Client) {
		c.cache = store
		if ttl > 0 {
			c.cacheTTL = ttl
		}
	}
}

// WithRateLimit throttles outgoing calls to rps requests per second.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// WithTracing wraps the underlying round tripper with OpenTelemetry
// instrumentation.
func WithTracing() Option {
	return func(c *Client) {
		c.http.Transport = otelhttp.NewTransport(c.http.Transport)
	}
}

// WithHTTPClient replaces the underlying HTTP client (tests).
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// New builds a Client from the resolved configuration. Cookies are carried
// alongside bearer auth because the backend accepts either mechanism.
func New(cfg config.Config, sess *session.Session, opts ...Option) *Client {
	jar, _ := cookiejar.New(nil)
	c := &Client{
		base:     strings.TrimRight(cfg.APIBase, "/"),
		http:     &http.Client{Jar: jar},
		sess:     sess,
		timeout:  cfg.Timeout,
		devMode:  cfg.DevMode,
		debug:    cfg.Debug,
		tokens:   sessionTokens{sess: sess},
		cacheTTL: defaultCacheTTL,
		logger:   log.WithComponent("transport"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Base returns the API root the client was built with.
func (c *Client) Base() string { return c.base }

// Session exposes the session context the client writes auth state to.
func (c *Client) Session() *session.Session { return c.sess }

// Do performs one call and decodes the success payload into out (which may be
// nil for calls whose body is irrelevant). body is JSON-marshaled unless it
// is a *Multipart. A 204 leaves out untouched.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return &APIError{Sentinel: ErrUnavailable, Method: method, Path: path, Err: err}
		}
	}

	token := c.tokens.Token(ctx)
	if c.debug {
		c.logger.Debug().Str("method", method).Str("path", path).Msg("api request")
	}

	cacheable := c.cache != nil && !disableCache(method, path)
	cacheKey := c.cacheScope(token) + " " + method + " " + path
	if cacheable {
		if data, ok := c.cache.Get(cacheKey); ok {
			cacheHitsTotal.Inc()
			return decodeInto(data, out)
		}
	}

	start := time.Now()
	requestsInFlight.Inc()
	data, err := c.roundTrip(ctx, method, path, body, token, out)
	requestsInFlight.Dec()
	requestDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
	observeOutcome(method, err)
	if err != nil {
		return err
	}
	if cacheable && data != nil {
		c.cache.Set(cacheKey, data, c.cacheTTL)
	}
	return nil
}

// cacheScope partitions cached responses by caller identity. Redis-backed
// caches are shared across processes; without the scope a login/logout or
// tenant switch could serve one session's payloads to another for up to the
// TTL. The token goes in hashed, never verbatim.
func (c *Client) cacheScope(token string) string {
	h := fnv.New64a()
	_, _ = io.WriteString(h, token)
	tenant := c.sess.Tenant()
	return tenant.ID + "/" + c.sess.ActiveClient() + "/" + strconv.FormatUint(h.Sum64(), 16)
}

// roundTrip executes the call and classifies the response. On success it
// returns the raw payload (nil for 204) with out already decoded.
func (c *Client) roundTrip(ctx context.Context, method, path string, body any, token string, out any) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	contentType := ""
	switch b := body.(type) {
	case nil:
		// no body at all
	case *Multipart:
		encoded, mpType, err := b.encode()
		if err != nil {
			return nil, &APIError{Sentinel: ErrUnavailable, Method: method, Path: path, Err: err}
		}
		reader = encoded
		contentType = mpType
	default:
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, &APIError{Sentinel: ErrUnavailable, Method: method, Path: path, Err: err}
		}
		reader = bytes.NewReader(payload)
		contentType = "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return nil, &APIError{Sentinel: ErrUnavailable, Method: method, Path: path, Err: err}
	}
	c.setHeaders(req, method, path, token, contentType)

	res, err := c.http.Do(req)
	if err != nil {
		// Our armed timeout and a caller cancellation are indistinguishable at
		// the network layer; both surface as a context error on the request.
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			c.logger.Warn().Str("method", method).Str("path", path).Dur("timeout", c.timeout).Msg("request timed out")
			return nil, &APIError{
				Sentinel: ErrTimeout, Method: method, Path: path,
				Message: fmt.Sprintf("request timed out after %dms", c.timeout.Milliseconds()),
				Err:     err,
			}
		}
		c.logger.Error().Err(err).Str("method", method).Str("path", path).Msg("network error")
		return nil, &APIError{Sentinel: ErrUnavailable, Method: method, Path: path, Err: err}
	}
	defer res.Body.Close() //nolint:errcheck

	return c.classify(res, method, path, out)
}

func (c *Client) setHeaders(req *http.Request, method, path, token, contentType string) {
	if contentType != "" {
		// Multipart carries its own boundary; JSON is explicit.
		req.Header.Set("Content-Type", contentType)
	}

	if tenant := c.sess.Tenant(); tenant.ID != "" {
		req.Header.Set("X-Workspace-Id", tenant.ID)
	}
	if clientID := c.sess.ActiveClient(); clientID != "" {
		// Two aliased header names for backend compatibility.
		req.Header.Set("X-Client-Id", clientID)
		req.Header.Set("X-Company-Id", clientID)
	}

	if disableCache(method, path) {
		req.Header.Set("Cache-Control", "no-cache, no-store, must-revalidate")
		req.Header.Set("Pragma", "no-cache")
	}

	if token != "" {
		// The backend accepts either header.
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("X-Auth-Token", token)
	}

	req.Header.Set("X-Request-Id", uuid.NewString())
}

// classify applies the response taxonomy in order: session expiry, structured
// or opaque API errors, empty success, contract-violating success, JSON.
func (c *Client) classify(res *http.Response, method, path string, out any) ([]byte, error) {
	// A 401 on an /auth/ path is a normal login failure, not a session
	// expiry, and falls through to the generic error branch.
	if res.StatusCode == http.StatusUnauthorized && !strings.Contains(path, "/auth/") {
		c.sess.ClearToken()
		if !c.devMode && c.onAuthExpired != nil {
			c.onAuthExpired()
		}
		return nil, &APIError{Sentinel: ErrAuthRequired, Method: method, Path: path, Status: res.StatusCode}
	}

	contentType := res.Header.Get("Content-Type")
	isJSON := strings.Contains(contentType, "application/json")

	if res.StatusCode < 200 || res.StatusCode > 299 {
		if isJSON {
			var payload struct {
				Error string `json:"error"`
			}
			message := res.Status
			if err := json.NewDecoder(res.Body).Decode(&payload); err == nil && payload.Error != "" {
				message = payload.Error
			}
			return nil, &APIError{Sentinel: ErrAPI, Method: method, Path: path, Status: res.StatusCode, Message: message}
		}
		// Many PHP fatals return an HTML error page; never JSON-parse those.
		return nil, &APIError{
			Sentinel: ErrAPI, Method: method, Path: path,
			Status: res.StatusCode, ContentType: contentType,
			Snippet: snippet(res.Body),
		}
	}

	if res.StatusCode == http.StatusNoContent {
		return nil, nil
	}

	if !isJSON {
		// A misconfigured endpoint returning HTML on success is a backend
		// contract violation, surfaced with the same snippet strategy.
		return nil, &APIError{
			Sentinel: ErrBadResponse, Method: method, Path: path,
			Status: res.StatusCode, ContentType: contentType,
			Snippet: snippet(res.Body),
		}
	}

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, &APIError{Sentinel: ErrUnavailable, Method: method, Path: path, Err: err}
	}
	if err := decodeInto(data, out); err != nil {
		return nil, &APIError{Sentinel: ErrBadResponse, Method: method, Path: path, Status: res.StatusCode, Err: err}
	}
	return data, nil
}

func decodeInto(data []byte, out any) error {
	if out == nil || len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, out)
}

// snippet reads, truncates and whitespace-collapses an error body.
func snippet(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, snippetLimit))
	if err != nil {
		return ""
	}
	return strings.Join(strings.Fields(string(data)), " ")
}

func isSentinel(err, sentinel error) bool {
	return errors.Is(err, sentinel)
}
