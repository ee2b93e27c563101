// SPDX-License-Identifier: MIT

package forms

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

func TestNormalizeFormDefaults(t *testing.T) {
	got := Normalize(normalize.Raw{"id": float64(3), "name": "Contact"})
	assert.Equal(t, "3", got.ID)
	assert.Equal(t, "draft", got.Status)
	assert.Zero(t, got.ResponseCount)
	assert.Empty(t, got.Fields)
}

func TestNormalizeFieldTypeDefault(t *testing.T) {
	got := normalizeField(normalize.Raw{"id": "f1", "label": "Name"})
	assert.Equal(t, "text", got.Type)
}

func TestNormalizeResponseDataNeverNil(t *testing.T) {
	got := normalizeResponse(normalize.Raw{"id": "r1"})
	require.NotNil(t, got.ResponseData)
	assert.Empty(t, got.ResponseData)
}

func TestSubmitWrapsResponseData(t *testing.T) {
	var body map[string]any
	svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "POST", r.Method)
		require.Equal(t, "/forms/f1/submit", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"r1"}`))
	}))

	_, err := svc.Submit(context.Background(), "f1", map[string]any{"email": "a@b.c"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"response_data": map[string]any{"email": "a@b.c"}}, body)
}

func TestAllResponsesFilterAndPaging(t *testing.T) {
	var query string
	svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[{"id":"r1","is_read":"1"}],"total":41,"limit":20,"offset":20}`))
	}))

	unread := false
	page, err := svc.AllResponses(context.Background(), ResponseFilter{
		FormID: "f1", IsRead: &unread, Limit: 20, Offset: 20,
	})
	require.NoError(t, err)
	assert.Equal(t, "form_id=f1&is_read=false&limit=20&offset=20", query)
	assert.Equal(t, 41, page.Total)
	require.Len(t, page.Items, 1)
	assert.True(t, page.Items[0].IsRead, "0/1 flags coerce to bool")
}

func TestBulkUpdateResponses(t *testing.T) {
	var body map[string]any
	svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/form-responses/bulk", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message":"ok","count":3}`))
	}))

	count, err := svc.BulkUpdateResponses(context.Background(), []string{"1", "2", "3"}, "mark_read")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.Equal(t, "mark_read", body["action"])
}

func TestGetSettingsFallsBackToDefaults(t *testing.T) {
	svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))

	got := svc.GetSettings(context.Background())
	assert.Equal(t, DefaultNotificationSettings(), got)
}

func TestGetSettingsMergesPartialDocument(t *testing.T) {
	svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/form-settings", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"notificationEmail":"ops@acme.io","enableFileUploads":true,"maxFileSize":"25"}`))
	}))

	got := svc.GetSettings(context.Background())
	assert.Equal(t, "ops@acme.io", got.NotificationEmail)
	assert.True(t, got.EnableFileUploads)
	assert.Equal(t, 25, got.MaxFileSize)
	assert.Equal(t, DefaultNotificationSettings().AutoReplySubject, got.AutoReplySubject)
}

func TestUpdateSettingsOmitsNilFields(t *testing.T) {
	var body map[string]any
	svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "PUT", r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}))

	email := "ops@acme.io"
	require.NoError(t, svc.UpdateSettings(context.Background(), SettingsUpdate{NotificationEmail: &email}))
	assert.Equal(t, map[string]any{"notificationEmail": "ops@acme.io"}, body)
}
