// SPDX-License-Identifier: MIT

package proposals

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ronittamrakar/xordon-go/internal/config"
	"github.com/ronittamrakar/xordon-go/internal/normalize"
	"github.com/ronittamrakar/xordon-go/internal/session"
	"github.com/ronittamrakar/xordon-go/internal/transport"
)

func newService(t *testing.T, handler http.Handler) *Service {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	sess := session.New(session.NewMemoryStore())
	cfg := config.Config{APIBase: srv.URL, Timeout: time.Second}
	return NewService(transport.New(cfg, sess), zerolog.Nop())
}

func TestNormalizeDefaults(t *testing.T) {
	got := Normalize(normalize.Raw{"id": "1"})
	assert.Equal(t, StatusDraft, got.Status)
	assert.Equal(t, "USD", got.Currency)
	assert.Empty(t, got.Sections)
}

func TestNormalizeItemQuantityDefault(t *testing.T) {
	got := Normalize(normalize.Raw{
		"id": "1",
		"sections": []any{map[string]any{
			"id":    "s1",
			"items": []any{map[string]any{"id": "i1", "unit_price": "99.5"}},
		}},
	})
	require.Len(t, got.Sections, 1)
	require.Len(t, got.Sections[0].Items, 1)
	assert.Equal(t, float64(1), got.Sections[0].Items[0].Quantity)
	assert.Equal(t, 99.5, got.Sections[0].Items[0].UnitPrice)
}

func TestListReturnsEmptyPageWhenBackendDown(t *testing.T) {
	svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))

	got := svc.List(context.Background(), Filter{Limit: 50})
	assert.Empty(t, got.Items)
	assert.Equal(t, 1, got.Page)
	assert.Equal(t, 50, got.Limit, "degraded page keeps the requested window size")
	assert.Zero(t, got.Total)
}

func TestListPassesFilters(t *testing.T) {
	var query string
	svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[{"id":"1"}],"pagination":{"page":1,"limit":20,"total":1,"pages":1}}`))
	}))

	got := svc.List(context.Background(), Filter{Status: "sent", Search: "acme"})
	assert.Equal(t, "search=acme&status=sent", query)
	require.Len(t, got.Items, 1)
	assert.Equal(t, 1, got.Total)
}

func TestGetStatsFallsBackToZero(t *testing.T) {
	svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	assert.Equal(t, Stats{}, svc.GetStats(context.Background()))
}

func TestGetStatsCoercesStringNumbers(t *testing.T) {
	svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"total":"12","accepted":4,"acceptance_rate":"33.3","total_accepted_value":"1999.99"}`))
	}))

	got := svc.GetStats(context.Background())
	assert.Equal(t, 12, got.Total)
	assert.Equal(t, 4, got.Accepted)
	assert.Equal(t, 33.3, got.AcceptanceRate)
	assert.Equal(t, 1999.99, got.TotalAcceptedValue)
}

func TestAcceptSendsSignature(t *testing.T) {
	var body map[string]any
	svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/proposals/public/tok-1/accept", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.WriteHeader(http.StatusNoContent)
	}))

	require.NoError(t, svc.Accept(context.Background(), "tok-1", "data:image/png;base64,...", "Jane Doe"))
	assert.Equal(t, "Jane Doe", body["signed_by"])
	assert.NotEmpty(t, body["signature"])
}

func TestGetPropagatesErrors(t *testing.T) {
	svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"proposal not found"}`))
	}))

	_, err := svc.Get(context.Background(), "99")
	require.ErrorIs(t, err, transport.ErrAPI, "only the listed getters degrade silently")
}
