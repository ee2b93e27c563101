// SPDX-License-Identifier: MIT

// Package auth provides the token bootstrap and the authentication façade.
package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/ronittamrakar/xordon-go/internal/config"
	"github.com/ronittamrakar/xordon-go/internal/log"
	"github.com/ronittamrakar/xordon-go/internal/normalize"
	"github.com/ronittamrakar/xordon-go/internal/session"
)

const (
	// bootstrapTimeout bounds the dev-token and whoami calls.
	bootstrapTimeout = 5 * time.Second
	// retryCooldown suppresses bootstrap attempts after a 429.
	retryCooldown = 5 * time.Second
	// DevPlaceholderToken is the well-known development session token.
	DevPlaceholderToken = "dev-token"
)

// Bootstrap resolves the bearer token for outgoing requests. In development
// it self-provisions a placeholder session from the dev-token endpoint; in
// production it only ever returns what the session already holds.
//
// Concurrency contract: callers racing into an un-provisioned session share a
// single in-flight bootstrap; duplicate network calls are never issued.
type Bootstrap struct {
	base    string
	http    *http.Client
	sess    *session.Session
	devMode bool
	debug   bool
	group   singleflight.Group
	logger  zerolog.Logger
}

// NewBootstrap builds the token source from the resolved configuration.
func NewBootstrap(cfg config.Config, sess *session.Session) *Bootstrap {
	return &Bootstrap{
		base:    strings.TrimRight(cfg.APIBase, "/"),
		http:    &http.Client{},
		sess:    sess,
		devMode: cfg.DevMode,
		debug:   cfg.Debug,
		logger:  log.WithComponent("auth.bootstrap"),
	}
}

// Token returns the current bearer token, or "" when none can be obtained.
// It never fails: bootstrap errors degrade to an unauthenticated call.
func (b *Bootstrap) Token(ctx context.Context) string {
	if existing := b.sess.Token(); existing != "" {
		return existing
	}
	if !b.devMode {
		return ""
	}
	v, _, _ := b.group.Do("dev-token", func() (any, error) {
		return b.bootstrap(ctx), nil
	})
	token, _ := v.(string)
	return token
}

func (b *Bootstrap) bootstrap(ctx context.Context) string {
	// A flight that raced in behind a completed one finds the token here.
	if existing := b.sess.Token(); existing != "" {
		return existing
	}

	// Don't hammer the dev-token endpoint if it just rate limited us.
	if retryAt := b.sess.DevTokenRetryAt(); !retryAt.IsZero() && time.Since(retryAt) < retryCooldown {
		if b.debug {
			b.logger.Warn().Msg("dev token bootstrap cooling down")
		}
		return b.sess.Token()
	}

	if b.debug {
		b.logger.Debug().Msg("bootstrapping development token")
	}

	ctx, cancel := context.WithTimeout(ctx, bootstrapTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.base+"/auth/dev-token", nil)
	if err != nil {
		return ""
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := b.http.Do(req)
	if err != nil {
		if b.debug {
			b.logger.Debug().Err(err).Msg("failed to bootstrap dev token")
		}
		return ""
	}
	defer res.Body.Close() //nolint:errcheck

	if res.StatusCode == http.StatusTooManyRequests {
		b.logger.Warn().Msg("rate limited while bootstrapping token, cooling down")
		b.sess.SetDevTokenRetryAt(time.Now())
		return b.sess.Token()
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return ""
	}

	var payload struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil || payload.Token == "" {
		return ""
	}

	b.sess.SetToken(payload.Token)
	b.sess.ClearDevTokenRetryAt()

	// Hydrating workspace context is best-effort; a failed whoami never
	// invalidates the token we just obtained.
	b.hydrate(ctx, payload.Token)

	return payload.Token
}

func (b *Bootstrap) hydrate(ctx context.Context, token string) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.base+"/auth/me", nil)
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	res, err := b.http.Do(req)
	if err != nil {
		return
	}
	defer res.Body.Close() //nolint:errcheck
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return
	}

	var me normalize.Raw
	if err := json.NewDecoder(res.Body).Decode(&me); err != nil {
		return
	}
	tenant := normalize.Map(me, "tenant")
	b.sess.SetTenant(session.Tenant{
		ID:        normalize.ID(tenant, "id"),
		Subdomain: normalize.Str(tenant, "subdomain"),
		Name:      normalize.Str(tenant, "name"),
	})
	if user, ok := me["user"]; ok && user != nil {
		if doc, err := json.Marshal(user); err == nil {
			b.sess.SetCurrentUserJSON(string(doc))
		}
	}
}
