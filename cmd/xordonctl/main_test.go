// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ronittamrakar/xordon-go/internal/auth"
	"github.com/ronittamrakar/xordon-go/internal/config"
	"github.com/ronittamrakar/xordon-go/internal/mockapi"
	"github.com/ronittamrakar/xordon-go/internal/session"
	"github.com/ronittamrakar/xordon-go/internal/transport"
)

func newCLIClient(t *testing.T) (*transport.Client, *session.Session) {
	t.Helper()
	srv := httptest.NewServer(mockapi.New(mockapi.Config{}, zerolog.Nop()).Handler())
	t.Cleanup(srv.Close)
	sess := session.New(session.NewMemoryStore())
	cfg := config.Config{APIBase: srv.URL + "/api", Timeout: 2 * time.Second, DevMode: true}
	return transport.New(cfg, sess, transport.WithTokenSource(auth.NewBootstrap(cfg, sess))), sess
}

func TestRunLoginStoresSession(t *testing.T) {
	t.Setenv("XORDON_PASSWORD", "hunter2")
	client, sess := newCLIClient(t)

	require.NoError(t, run(context.Background(), []string{"login", "dev@example.com"}, client))
	assert.NotEmpty(t, sess.Token())
	assert.Equal(t, "dev", sess.Tenant().Subdomain)
}

func TestRunCommands(t *testing.T) {
	client, _ := newCLIClient(t)
	ctx := context.Background()

	require.NoError(t, run(ctx, []string{"campaigns", "list"}, client))
	require.NoError(t, run(ctx, []string{"campaigns", "get", "1"}, client))
	require.NoError(t, run(ctx, []string{"campaigns", "create", "Launch", "Hello"}, client))
	require.NoError(t, run(ctx, []string{"campaigns", "send", "1"}, client))
	require.NoError(t, run(ctx, []string{"settings", "get"}, client))
	require.NoError(t, run(ctx, []string{"health"}, client))
}

func TestRunRejectsUnknownCommand(t *testing.T) {
	client, _ := newCLIClient(t)

	require.Error(t, run(context.Background(), []string{"frobnicate"}, client))
	require.Error(t, run(context.Background(), []string{"campaigns", "get"}, client))
	require.Error(t, run(context.Background(), []string{"campaigns", "create", "only-name"}, client))
}
