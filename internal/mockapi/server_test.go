// SPDX-License-Identifier: MIT

package mockapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ronittamrakar/xordon-go/internal/auth"
	"github.com/ronittamrakar/xordon-go/internal/campaigns"
	"github.com/ronittamrakar/xordon-go/internal/config"
	"github.com/ronittamrakar/xordon-go/internal/session"
	"github.com/ronittamrakar/xordon-go/internal/settings"
	"github.com/ronittamrakar/xordon-go/internal/transport"
)

// newStack spins up the mock backend and a fully wired client against it,
// including the development token bootstrap.
func newStack(t *testing.T, cfg Config) (*transport.Client, *session.Session) {
	t.Helper()
	srv := httptest.NewServer(New(cfg, zerolog.Nop()).Handler())
	t.Cleanup(srv.Close)

	sess := session.New(session.NewMemoryStore())
	ccfg := config.Config{APIBase: srv.URL + "/api", Timeout: 2 * time.Second, DevMode: true}
	client := transport.New(ccfg, sess, transport.WithTokenSource(auth.NewBootstrap(ccfg, sess)))
	return client, sess
}

func TestUnauthenticatedRequestsAreRejected(t *testing.T) {
	srv := httptest.NewServer(New(Config{}, zerolog.Nop()).Handler())
	t.Cleanup(srv.Close)

	res, err := http.Get(srv.URL + "/api/campaigns")
	require.NoError(t, err)
	defer res.Body.Close() //nolint:errcheck

	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	var body map[string]any
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	assert.Equal(t, "unauthorized", body["error"])
}

func TestDevTokenRateLimit(t *testing.T) {
	srv := httptest.NewServer(New(Config{DevTokenLimit: 2}, zerolog.Nop()).Handler())
	t.Cleanup(srv.Close)

	for i := 0; i < 2; i++ {
		res, err := http.Get(srv.URL + "/api/auth/dev-token")
		require.NoError(t, err)
		res.Body.Close() //nolint:errcheck
		require.Equal(t, http.StatusOK, res.StatusCode)
	}

	res, err := http.Get(srv.URL + "/api/auth/dev-token")
	require.NoError(t, err)
	defer res.Body.Close() //nolint:errcheck
	assert.Equal(t, http.StatusTooManyRequests, res.StatusCode)
	assert.Equal(t, "60", res.Header.Get("Retry-After"))
}

func TestBootstrapHydratesSession(t *testing.T) {
	client, sess := newStack(t, Config{Token: "issued-token"})

	// Any authenticated call forces the bootstrap to run first.
	got, err := campaigns.NewService(client).List(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, "issued-token", sess.Token())
	tenant := sess.Tenant()
	assert.Equal(t, "1", tenant.ID)
	assert.Equal(t, "dev", tenant.Subdomain)
	assert.Equal(t, "Dev Workspace", tenant.Name)
	assert.Contains(t, sess.CurrentUserJSON(), "dev@example.com")
}

func TestCampaignLifecycle(t *testing.T) {
	client, _ := newStack(t, Config{})
	svc := campaigns.NewService(client)
	ctx := context.Background()

	// The seeded campaign comes back with its string counters normalized.
	list, err := svc.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Welcome series", list[0].Name)
	assert.Equal(t, campaigns.StatusDraft, list[0].Status)
	assert.Zero(t, list[0].Sent)

	created, err := svc.Create(ctx, campaigns.CreateParams{
		Name:        "Spring launch",
		Subject:     "It's here",
		HTMLContent: "<p>New</p>",
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, campaigns.StatusDraft, created.Status)
	assert.True(t, created.StopOnReply)

	require.NoError(t, svc.Send(ctx, created.ID))
	after, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, campaigns.StatusSending, after.Status)

	require.NoError(t, svc.Pause(ctx, created.ID))
	after, err = svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, campaigns.StatusPaused, after.Status)

	require.NoError(t, svc.Delete(ctx, created.ID))
	_, err = svc.Get(ctx, created.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, transport.ErrAPI))
	var apiErr *transport.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
}

func TestSettingsRoundTrip(t *testing.T) {
	client, _ := newStack(t, Config{})
	svc := settings.NewService(client)
	ctx := context.Background()

	warmup := false
	updated, err := svc.Update(ctx, settings.UpdateParams{
		WarmupEnabled: &warmup,
		APIKeys:       map[string]string{"openai": "sk-live"},
	})
	require.NoError(t, err)
	assert.False(t, updated.WarmupEnabled)
	assert.Equal(t, "sk-live", updated.APIKeys.OpenAI)

	// The write sticks across a fresh read, and untouched fields stay at
	// their defaults.
	got := svc.Get(ctx)
	assert.False(t, got.WarmupEnabled)
	assert.Equal(t, "sk-live", got.APIKeys.OpenAI)
	assert.Equal(t, settings.Default().BatchSize, got.BatchSize)
}

func TestHealthEndpoint(t *testing.T) {
	srv := httptest.NewServer(New(Config{}, zerolog.Nop()).Handler())
	t.Cleanup(srv.Close)

	res, err := http.Get(srv.URL + "/api/health")
	require.NoError(t, err)
	defer res.Body.Close() //nolint:errcheck
	require.Equal(t, http.StatusOK, res.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}
