// SPDX-License-Identifier: MIT

// Package media wraps the file library endpoints: uploads, folders, sharing
// and the storage quota.
package media

import (
	"context"
	"io"

	"github.com/ronittamrakar/xordon-go/internal/normalize"
	"github.com/ronittamrakar/xordon-go/internal/transport"
)

// File is a normalized media library entry.
type File struct {
	ID               string `json:"id"`
	OriginalFilename string `json:"originalFilename"`
	MimeType         string `json:"mimeType,omitempty"`
	SizeBytes        int    `json:"sizeBytes"`
	URL              string `json:"url,omitempty"`
	ThumbnailURL     string `json:"thumbnailUrl,omitempty"`
	FolderID         string `json:"folderId,omitempty"`
	Category         string `json:"category,omitempty"`
	Starred          bool   `json:"starred"`
	CreatedAt        string `json:"createdAt"`
	UpdatedAt        string `json:"updatedAt"`
}

// Folder is a media library folder.
type Folder struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ParentID  string `json:"parentId,omitempty"`
	FileCount int    `json:"fileCount"`
	CreatedAt string `json:"createdAt"`
}

// Quota reports storage consumption against the tenant limit.
type Quota struct {
	UsedBytes  int64 `json:"usedBytes"`
	FileCount  int   `json:"fileCount"`
	LimitBytes int64 `json:"limitBytes"`
}

func normalizeFile(raw normalize.Raw) File {
	return File{
		ID:               normalize.ID(raw, "id"),
		OriginalFilename: normalize.Str(raw, "original_filename", "name"),
		MimeType:         normalize.Str(raw, "mime_type", "mimeType"),
		SizeBytes:        normalize.Int(raw, 0, "size_bytes", "size"),
		URL:              normalize.Str(raw, "url"),
		ThumbnailURL:     normalize.Str(raw, "thumbnail_url", "thumbnailUrl"),
		FolderID:         normalize.ID(raw, "folder_id", "folderId"),
		Category:         normalize.Str(raw, "category"),
		Starred:          normalize.Bool(raw, false, "starred"),
		CreatedAt:        normalize.Str(raw, "created_at", "createdAt"),
		UpdatedAt:        normalize.Str(raw, "updated_at", "updatedAt"),
	}
}

// Service exposes the media library API.
type Service struct {
	client *transport.Client
}

func NewService(client *transport.Client) *Service {
	return &Service{client: client}
}

// Filter narrows the file listing.
type Filter struct {
	FolderID string
	Query    string
	Category string
	Limit    int
	Offset   int
}

// List fetches files, optionally scoped to one folder.
func (s *Service) List(ctx context.Context, filter Filter) ([]File, error) {
	params := map[string]any{}
	if filter.FolderID != "" {
		params["folder_id"] = filter.FolderID
	}
	if filter.Query != "" {
		params["q"] = filter.Query
	}
	if filter.Category != "" {
		params["category"] = filter.Category
	}
	if filter.Limit > 0 {
		params["limit"] = filter.Limit
	}
	if filter.Offset > 0 {
		params["offset"] = filter.Offset
	}
	var env struct {
		Data []normalize.Raw `json:"data"`
	}
	if err := s.client.Do(ctx, "GET", "/files"+transport.Query(params), nil, &env); err != nil {
		return nil, err
	}
	out := make([]File, 0, len(env.Data))
	for _, raw := range env.Data {
		out = append(out, normalizeFile(raw))
	}
	return out, nil
}

// Upload sends one file as multipart form data, optionally into a folder.
func (s *Service) Upload(ctx context.Context, filename string, content io.Reader, folderID string) (File, error) {
	form := transport.NewMultipart().File("file", filename, content)
	if folderID != "" {
		form.Field("folder_id", folderID)
	}
	var raw normalize.Raw
	if err := s.client.Do(ctx, "POST", "/files", form, &raw); err != nil {
		return File{}, err
	}
	return normalizeFile(raw), nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.client.Do(ctx, "DELETE", "/files/"+id, nil, nil)
}

// BulkDelete removes a batch of files in one call.
func (s *Service) BulkDelete(ctx context.Context, ids []string) error {
	body := map[string]any{"file_ids": ids}
	return s.client.Do(ctx, "POST", "/files/bulk-delete", body, nil)
}

// Rename changes the display filename.
func (s *Service) Rename(ctx context.Context, id, name string) error {
	body := map[string]any{"original_filename": name}
	return s.client.Do(ctx, "PUT", "/files/"+id, body, nil)
}

// Share grants another user view or edit access to a file.
func (s *Service) Share(ctx context.Context, id, email, permission string) error {
	body := map[string]any{"email": email, "permission": permission}
	return s.client.Do(ctx, "POST", "/files/"+id+"/share", body, nil)
}

// Move relocates files into a folder. An empty folderID moves them to the
// root.
func (s *Service) Move(ctx context.Context, fileIDs []string, folderID string) error {
	body := map[string]any{"file_ids": fileIDs}
	if folderID != "" {
		body["folder_id"] = folderID
	} else {
		body["folder_id"] = nil
	}
	return s.client.Do(ctx, "POST", "/files/move", body, nil)
}

// ToggleStar flips the starred flag and returns the new state.
func (s *Service) ToggleStar(ctx context.Context, id string) (bool, error) {
	var out struct {
		Success bool `json:"success"`
		Starred bool `json:"starred"`
	}
	if err := s.client.Do(ctx, "POST", "/files/"+id+"/star", nil, &out); err != nil {
		return false, err
	}
	return out.Starred, nil
}

// Folders lists the media folders.
func (s *Service) Folders(ctx context.Context) ([]Folder, error) {
	var env struct {
		Data []normalize.Raw `json:"data"`
	}
	if err := s.client.Do(ctx, "GET", "/files/folders", nil, &env); err != nil {
		return nil, err
	}
	out := make([]Folder, 0, len(env.Data))
	for _, raw := range env.Data {
		out = append(out, Folder{
			ID:        normalize.ID(raw, "id"),
			Name:      normalize.Str(raw, "name"),
			ParentID:  normalize.ID(raw, "parent_id", "parentId"),
			FileCount: normalize.Int(raw, 0, "file_count", "fileCount"),
			CreatedAt: normalize.Str(raw, "created_at", "createdAt"),
		})
	}
	return out, nil
}

func (s *Service) CreateFolder(ctx context.Context, name, parentID string) (Folder, error) {
	body := map[string]any{"name": name}
	if parentID != "" {
		body["parent_id"] = parentID
	}
	var raw normalize.Raw
	if err := s.client.Do(ctx, "POST", "/files/folders", body, &raw); err != nil {
		return Folder{}, err
	}
	return Folder{
		ID:       normalize.ID(raw, "id"),
		Name:     normalize.Str(raw, "name"),
		ParentID: normalize.ID(raw, "parent_id", "parentId"),
	}, nil
}

func (s *Service) RenameFolder(ctx context.Context, id, name string) error {
	body := map[string]any{"name": name}
	return s.client.Do(ctx, "POST", "/files/folders/"+id+"/rename", body, nil)
}

func (s *Service) DeleteFolder(ctx context.Context, id string) error {
	return s.client.Do(ctx, "DELETE", "/files/folders/"+id, nil, nil)
}

// StorageQuota reports the tenant's storage consumption.
func (s *Service) StorageQuota(ctx context.Context) (Quota, error) {
	var env struct {
		Data normalize.Raw `json:"data"`
	}
	if err := s.client.Do(ctx, "GET", "/storage/quota", nil, &env); err != nil {
		return Quota{}, err
	}
	return Quota{
		UsedBytes:  int64(normalize.Int(env.Data, 0, "used_bytes")),
		FileCount:  normalize.Int(env.Data, 0, "file_count"),
		LimitBytes: int64(normalize.Int(env.Data, 0, "limit_bytes")),
	}, nil
}
