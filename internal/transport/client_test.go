// SPDX-License-Identifier: MIT

package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ronittamrakar/xordon-go/internal/cache"
	"github.com/ronittamrakar/xordon-go/internal/config"
	"github.com/ronittamrakar/xordon-go/internal/session"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		// The shared http transport keeps idle connections alive past test end.
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
	)
}

func newTestClient(t *testing.T, base string, opts ...Option) (*Client, *session.Session) {
	t.Helper()
	sess := session.New(session.NewMemoryStore())
	cfg := config.Config{APIBase: base, Timeout: 500 * time.Millisecond}
	return New(cfg, sess, opts...), sess
}

func TestDoSetsAuthAndScopeHeaders(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c, sess := newTestClient(t, srv.URL)
	sess.SetToken("tok-1")
	sess.SetTenant(session.Tenant{ID: "42", Subdomain: "acme", Name: "Acme"})
	sess.SetActiveClient("7")

	require.NoError(t, c.Do(context.Background(), "GET", "/campaigns", nil, nil))

	assert.Equal(t, "Bearer tok-1", got.Get("Authorization"))
	assert.Equal(t, "tok-1", got.Get("X-Auth-Token"))
	assert.Equal(t, "42", got.Get("X-Workspace-Id"))
	assert.Equal(t, "7", got.Get("X-Client-Id"))
	assert.Equal(t, "7", got.Get("X-Company-Id"))
	assert.NotEmpty(t, got.Get("X-Request-Id"))
}

func TestCacheControlHeaderMatrix(t *testing.T) {
	cases := []struct {
		method  string
		path    string
		noCache bool
	}{
		{"GET", "/campaigns", false},
		{"GET", "/auth/me", true},
		{"GET", "/auth/dev-token", true},
		{"GET", "/permissions/mine", true},
		{"GET", "/settings", true},
		{"GET", "/form-settings", true},
		{"POST", "/campaigns", true},
		{"PUT", "/campaigns/1", true},
		{"DELETE", "/campaigns/1", true},
		{"GET", "/templates", false},
	}
	for _, tc := range cases {
		assert.Equalf(t, tc.noCache, disableCache(tc.method, tc.path), "%s %s", tc.method, tc.path)
	}
}

func TestDoSendsNoCacheHeadersOnAuthPaths(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c, _ := newTestClient(t, srv.URL)
	require.NoError(t, c.Do(context.Background(), "GET", "/auth/verify", nil, nil))
	assert.Equal(t, "no-cache, no-store, must-revalidate", got.Get("Cache-Control"))
	assert.Equal(t, "no-cache", got.Get("Pragma"))

	require.NoError(t, c.Do(context.Background(), "GET", "/campaigns", nil, nil))
	assert.Empty(t, got.Get("Cache-Control"))
}

func TestClassify401ClearsTokenAndFiresHook(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	var hookFired atomic.Bool
	c, sess := newTestClient(t, srv.URL, WithAuthExpiredHook(func() { hookFired.Store(true) }))
	sess.SetToken("stale")

	err := c.Do(context.Background(), "GET", "/campaigns", nil, nil)
	require.ErrorIs(t, err, ErrAuthRequired)
	assert.Empty(t, sess.Token(), "token must be cleared on session expiry")
	assert.True(t, hookFired.Load())
}

func TestClassify401OnAuthPathIsLoginFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"invalid credentials"}`))
	}))
	defer srv.Close()

	var hookFired atomic.Bool
	c, sess := newTestClient(t, srv.URL, WithAuthExpiredHook(func() { hookFired.Store(true) }))
	sess.SetToken("still-valid")

	err := c.Do(context.Background(), "POST", "/auth/login", map[string]any{"email": "x"}, nil)
	require.ErrorIs(t, err, ErrAPI)
	assert.NotErrorIs(t, err, ErrAuthRequired)
	assert.Equal(t, "still-valid", sess.Token(), "login failure must not clear the session")
	assert.False(t, hookFired.Load())

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "invalid credentials", apiErr.Message)
}

func TestClassifyJSONErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"error":"name is required"}`))
	}))
	defer srv.Close()

	c, _ := newTestClient(t, srv.URL)
	err := c.Do(context.Background(), "POST", "/campaigns", map[string]any{}, nil)
	require.ErrorIs(t, err, ErrAPI)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.Status)
	assert.Equal(t, "name is required", apiErr.Message)
}

func TestClassifyHTMLErrorPageIsNeverJSONParsed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("<html>\n  <body>Fatal   error: something broke</body>\n</html>"))
	}))
	defer srv.Close()

	c, _ := newTestClient(t, srv.URL)
	err := c.Do(context.Background(), "GET", "/campaigns", nil, nil)
	require.ErrorIs(t, err, ErrAPI)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "text/html", apiErr.ContentType)
	assert.Equal(t, "<html> <body>Fatal error: something broke</body> </html>", apiErr.Snippet)
}

func TestClassify2xxNonJSONIsBadResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html>login page</html>"))
	}))
	defer srv.Close()

	c, _ := newTestClient(t, srv.URL)
	var out map[string]any
	err := c.Do(context.Background(), "GET", "/campaigns", nil, &out)
	require.ErrorIs(t, err, ErrBadResponse)
}

func TestClassify204LeavesOutUntouched(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c, _ := newTestClient(t, srv.URL)
	out := map[string]any{"sentinel": true}
	require.NoError(t, c.Do(context.Background(), "DELETE", "/campaigns/1", nil, &out))
	assert.Equal(t, map[string]any{"sentinel": true}, out)
}

func TestDoTimeoutMapsToErrTimeout(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	c, _ := newTestClient(t, srv.URL)
	err := c.Do(context.Background(), "GET", "/campaigns", nil, nil)
	require.ErrorIs(t, err, ErrTimeout)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Contains(t, apiErr.Message, "request timed out after 500ms")
}

func TestDoNetworkErrorMapsToErrUnavailable(t *testing.T) {
	c, _ := newTestClient(t, "http://127.0.0.1:1")
	err := c.Do(context.Background(), "GET", "/campaigns", nil, nil)
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestCacheableGETServedFromCache(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"items": []any{}})
	}))
	defer srv.Close()

	c, _ := newTestClient(t, srv.URL, WithCache(cache.NewMemory(0), time.Minute))

	var out map[string]any
	require.NoError(t, c.Do(context.Background(), "GET", "/campaigns", nil, &out))
	require.NoError(t, c.Do(context.Background(), "GET", "/campaigns", nil, &out))
	assert.Equal(t, int32(1), hits.Load(), "second read must come from the cache")

	// Auth paths bypass the cache entirely.
	require.NoError(t, c.Do(context.Background(), "GET", "/auth/me", nil, nil))
	require.NoError(t, c.Do(context.Background(), "GET", "/auth/me", nil, nil))
	assert.Equal(t, int32(3), hits.Load())
}

func TestCacheIsPartitionedBySessionIdentity(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"caller": r.Header.Get("Authorization")})
	}))
	defer srv.Close()

	// One shared store, the way several processes share one Redis backend.
	store := cache.NewMemory(0)

	a, sessA := newTestClient(t, srv.URL, WithCache(store, time.Minute))
	sessA.SetToken("tok-a")
	sessA.SetTenant(session.Tenant{ID: "1", Subdomain: "acme", Name: "Acme"})

	b, sessB := newTestClient(t, srv.URL, WithCache(store, time.Minute))
	sessB.SetToken("tok-b")
	sessB.SetTenant(session.Tenant{ID: "2", Subdomain: "beta", Name: "Beta"})

	var outA, outB map[string]any
	require.NoError(t, a.Do(context.Background(), "GET", "/campaigns", nil, &outA))
	require.NoError(t, b.Do(context.Background(), "GET", "/campaigns", nil, &outB))
	assert.Equal(t, int32(2), hits.Load(), "a different session must never be served another's cached payload")
	assert.Equal(t, "Bearer tok-a", outA["caller"])
	assert.Equal(t, "Bearer tok-b", outB["caller"])

	// Same session, same scope: the repeat read is a hit.
	require.NoError(t, a.Do(context.Background(), "GET", "/campaigns", nil, &outA))
	assert.Equal(t, int32(2), hits.Load())

	// A logout/login cycle changes the token and with it the cache scope.
	sessA.Logout()
	sessA.SetToken("tok-a2")
	require.NoError(t, a.Do(context.Background(), "GET", "/campaigns", nil, &outA))
	assert.Equal(t, int32(3), hits.Load())
	assert.Equal(t, "Bearer tok-a2", outA["caller"])
}

func TestMultipartBodySetsBoundaryContentType(t *testing.T) {
	var contentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "sms", r.FormValue("type"))
		_, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		assert.Equal(t, "contacts.csv", hdr.Filename)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c, _ := newTestClient(t, srv.URL)
	form := NewMultipart().
		File("file", "contacts.csv", bytes.NewReader([]byte("email\na@b.c\n"))).
		Field("type", "sms")
	require.NoError(t, c.Do(context.Background(), "POST", "/contacts/upload", form, nil))
	assert.Contains(t, contentType, "multipart/form-data; boundary=")
}
