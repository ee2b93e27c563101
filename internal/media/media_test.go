// SPDX-License-Identifier: MIT

package media

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
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

func TestNormalizeFileSizeSpellings(t *testing.T) {
	a := normalizeFile(normalize.Raw{"id": "1", "size_bytes": float64(2048)})
	b := normalizeFile(normalize.Raw{"id": "1", "size": "2048"})
	assert.Equal(t, a.SizeBytes, b.SizeBytes)
	assert.Equal(t, 2048, a.SizeBytes)
}

func TestListUnwrapsDataEnvelope(t *testing.T) {
	var query string
	svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/files", r.URL.Path)
		query = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"id":1,"original_filename":"logo.png"}]}`))
	}))

	got, err := svc.List(context.Background(), Filter{FolderID: "f1", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, "folder_id=f1&limit=10", query)
	require.Len(t, got, 1)
	assert.Equal(t, "logo.png", got[0].OriginalFilename)
}

func TestUploadOptionalFolderField(t *testing.T) {
	var sawFolder string
	svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		sawFolder = r.FormValue("folder_id")
		_, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		assert.Equal(t, "logo.png", hdr.Filename)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"9","original_filename":"logo.png"}`))
	}))

	got, err := svc.Upload(context.Background(), "logo.png", strings.NewReader("png-bytes"), "f3")
	require.NoError(t, err)
	assert.Equal(t, "9", got.ID)
	assert.Equal(t, "f3", sawFolder)
}

func TestMoveToRootSendsNullFolder(t *testing.T) {
	var body map[string]any
	svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.WriteHeader(http.StatusNoContent)
	}))

	require.NoError(t, svc.Move(context.Background(), []string{"1"}, ""))
	folder, present := body["folder_id"]
	require.True(t, present, "root move must send an explicit null folder")
	assert.Nil(t, folder)
}

func TestToggleStarReturnsNewState(t *testing.T) {
	svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/files/4/star", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"starred":true}`))
	}))

	starred, err := svc.ToggleStar(context.Background(), "4")
	require.NoError(t, err)
	assert.True(t, starred)
}

func TestStorageQuota(t *testing.T) {
	svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/storage/quota", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"used_bytes":"1048576","file_count":12,"limit_bytes":10737418240}}`))
	}))

	got, err := svc.StorageQuota(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1048576), got.UsedBytes)
	assert.Equal(t, 12, got.FileCount)
	assert.Equal(t, int64(10737418240), got.LimitBytes)
}
