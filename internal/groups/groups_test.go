// SPDX-License-Identifier: MIT

package groups

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

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
	return NewService(transport.New(cfg, sess))
}

func TestNormalizeGroupCountsDefaultToZero(t *testing.T) {
	got := NormalizeGroup(normalize.Raw{"id": "g1", "name": "Q3 outreach", "campaign_count": "7"})
	assert.Equal(t, 7, got.CampaignCount)
	assert.Zero(t, got.SequenceCount)
	assert.Zero(t, got.TemplateCount)
}

func TestListDecodesBareArray(t *testing.T) {
	svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/groups", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":1,"name":"A"},{"id":2,"name":"B"}]`))
	}))

	got, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "1", got[0].ID)
}

func TestMoveItemEmptyGroupMeansUngrouped(t *testing.T) {
	var body map[string]any
	svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/groups/move-item", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.WriteHeader(http.StatusNoContent)
	}))

	require.NoError(t, svc.MoveItem(context.Background(), ItemCampaign, "17", ""))
	assert.Equal(t, "campaign", body["item_type"])
	assert.Equal(t, "17", body["item_id"])
	_, hasGroup := body["group_id"]
	assert.False(t, hasGroup, "empty group id moves back to the root and stays off the wire")
}

func TestBulkMoveItems(t *testing.T) {
	var body map[string]any
	svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/groups/bulk-move-items", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.WriteHeader(http.StatusNoContent)
	}))

	require.NoError(t, svc.BulkMoveItems(context.Background(), ItemTemplate, []string{"1", "2"}, "g9"))
	assert.Equal(t, "g9", body["group_id"])
	assert.Len(t, body["item_ids"], 2)
}

func TestMoveFormUsesFoldersController(t *testing.T) {
	var path string
	svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))

	require.NoError(t, svc.MoveForm(context.Background(), "f1", "g2"))
	assert.Equal(t, "/folders/move-form", path)
}

func TestTagLifecycle(t *testing.T) {
	var paths []string
	svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.Method+" "+r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"t1","name":"hot","color":"#f00"}`))
	}))

	ctx := context.Background()
	tag, err := svc.CreateTag(ctx, "hot", "#f00")
	require.NoError(t, err)
	assert.Equal(t, "t1", tag.ID)
	_, err = svc.UpdateTag(ctx, "t1", "warm", "#fa0")
	require.NoError(t, err)
	require.NoError(t, svc.TagRecipient(ctx, "r5", "t1"))
	require.NoError(t, svc.DeleteTag(ctx, "t1"))

	assert.Equal(t, []string{
		"POST /tags",
		"PUT /tags/t1",
		"POST /tags/add-to-recipient",
		"DELETE /tags/t1",
	}, paths)
}
