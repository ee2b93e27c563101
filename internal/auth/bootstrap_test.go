// SPDX-License-Identifier: MIT

package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ronittamrakar/xordon-go/internal/config"
	"github.com/ronittamrakar/xordon-go/internal/session"
)

func newBootstrap(base string, devMode bool) (*Bootstrap, *session.Session) {
	sess := session.New(session.NewMemoryStore())
	cfg := config.Config{APIBase: base, DevMode: devMode}
	return NewBootstrap(cfg, sess), sess
}

func TestTokenReturnsExistingWithoutNetwork(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request to %s", r.URL.Path)
	}))
	defer srv.Close()

	b, sess := newBootstrap(srv.URL, true)
	sess.SetToken("already-here")
	if got := b.Token(context.Background()); got != "already-here" {
		t.Fatalf("Token() = %q, want already-here", got)
	}
}

func TestTokenProductionNeverBootstraps(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request to %s", r.URL.Path)
	}))
	defer srv.Close()

	b, _ := newBootstrap(srv.URL, false)
	if got := b.Token(context.Background()); got != "" {
		t.Fatalf("Token() = %q, want empty", got)
	}
}

func TestBootstrapPersistsTokenAndTenant(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/dev-token":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"token":"dev-abc"}`))
		case "/auth/me":
			if r.Header.Get("Authorization") != "Bearer dev-abc" {
				t.Errorf("whoami sent without the fresh token")
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"user":{"id":7,"email":"dev@local"},"tenant":{"id":3,"subdomain":"dev","name":"Dev"}}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	b, sess := newBootstrap(srv.URL, true)
	if got := b.Token(context.Background()); got != "dev-abc" {
		t.Fatalf("Token() = %q, want dev-abc", got)
	}
	if sess.Token() != "dev-abc" {
		t.Fatalf("session token = %q, want dev-abc", sess.Token())
	}
	tn := sess.Tenant()
	if tn.ID != "3" || tn.Subdomain != "dev" {
		t.Fatalf("tenant = %+v, want id=3 subdomain=dev", tn)
	}
	if sess.CurrentUserJSON() == "" {
		t.Fatal("current user not cached")
	}
}

func TestConcurrentBootstrapIsDeduplicated(t *testing.T) {
	var devTokenHits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/dev-token":
			devTokenHits.Add(1)
			time.Sleep(50 * time.Millisecond)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"token":"dev-abc"}`))
		case "/auth/me":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"user":{"id":"1"},"tenant":{"id":"1"}}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	b, _ := newBootstrap(srv.URL, true)

	const callers = 16
	var wg sync.WaitGroup
	tokens := make([]string, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tokens[i] = b.Token(context.Background())
		}(i)
	}
	wg.Wait()

	for i, tok := range tokens {
		if tok != "dev-abc" {
			t.Fatalf("caller %d got token %q, want dev-abc", i, tok)
		}
	}
	if hits := devTokenHits.Load(); hits != 1 {
		t.Fatalf("dev-token endpoint hit %d times, want exactly 1", hits)
	}
}

func TestBootstrapRateLimitCooldown(t *testing.T) {
	var devTokenHits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/dev-token" {
			http.NotFound(w, r)
			return
		}
		devTokenHits.Add(1)
		w.Header().Set("Retry-After", "60")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	b, sess := newBootstrap(srv.URL, true)

	if got := b.Token(context.Background()); got != "" {
		t.Fatalf("Token() = %q, want empty after 429", got)
	}
	if sess.DevTokenRetryAt().IsZero() {
		t.Fatal("429 did not record a cooldown marker")
	}

	// Inside the cooldown no further network attempt is made.
	if got := b.Token(context.Background()); got != "" {
		t.Fatalf("Token() = %q, want empty during cooldown", got)
	}
	if hits := devTokenHits.Load(); hits != 1 {
		t.Fatalf("dev-token endpoint hit %d times during cooldown, want 1", hits)
	}

	// Once the cooldown elapses the bootstrap tries again.
	sess.SetDevTokenRetryAt(time.Now().Add(-time.Minute))
	_ = b.Token(context.Background())
	if hits := devTokenHits.Load(); hits != 2 {
		t.Fatalf("dev-token endpoint hit %d times after cooldown, want 2", hits)
	}
}

func TestBootstrapClearsCooldownOnSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/dev-token":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"token":"dev-abc"}`))
		default:
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{}`))
		}
	}))
	defer srv.Close()

	b, sess := newBootstrap(srv.URL, true)
	sess.SetDevTokenRetryAt(time.Now().Add(-time.Minute))

	if got := b.Token(context.Background()); got != "dev-abc" {
		t.Fatalf("Token() = %q, want dev-abc", got)
	}
	if !sess.DevTokenRetryAt().IsZero() {
		t.Fatal("successful bootstrap did not clear the cooldown marker")
	}
}
