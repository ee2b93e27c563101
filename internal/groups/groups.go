// SPDX-License-Identifier: MIT

// Package groups covers the organizational endpoints shared by the other
// resources: groups, tags and folders, plus the move-item operations that
// re-home campaigns, sequences, templates and forms.
package groups

import (
	"context"

	"github.com/ronittamrakar/xordon-go/internal/normalize"
	"github.com/ronittamrakar/xordon-go/internal/transport"
)

// Item types accepted by the move-item endpoint.
const (
	ItemCampaign     = "campaign"
	ItemSequence     = "sequence"
	ItemTemplate     = "template"
	ItemSMSRecipient = "sms_recipient"
)

// Group is a nestable container for campaigns, sequences and templates.
type Group struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description,omitempty"`
	ParentID      string `json:"parentId,omitempty"`
	CampaignCount int    `json:"campaignCount"`
	SequenceCount int    `json:"sequenceCount"`
	TemplateCount int    `json:"templateCount"`
	CreatedAt     string `json:"createdAt"`
	UpdatedAt     string `json:"updatedAt"`
}

// Tag is a colored label attached to recipients.
type Tag struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Folder is a flat container used by forms and media.
type Folder struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ParentID  string `json:"parentId,omitempty"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// NormalizeGroup maps a raw group payload. All counters default to zero.
func NormalizeGroup(raw normalize.Raw) Group {
	return Group{
		ID:            normalize.ID(raw, "id"),
		Name:          normalize.Str(raw, "name"),
		Description:   normalize.Str(raw, "description"),
		ParentID:      normalize.ID(raw, "parent_id", "parentId"),
		CampaignCount: normalize.Int(raw, 0, "campaign_count", "campaignCount"),
		SequenceCount: normalize.Int(raw, 0, "sequence_count", "sequenceCount"),
		TemplateCount: normalize.Int(raw, 0, "template_count", "templateCount"),
		CreatedAt:     normalize.Str(raw, "created_at", "createdAt"),
		UpdatedAt:     normalize.Str(raw, "updated_at", "updatedAt"),
	}
}

func normalizeTag(raw normalize.Raw) Tag {
	return Tag{
		ID:    normalize.ID(raw, "id"),
		Name:  normalize.Str(raw, "name"),
		Color: normalize.Str(raw, "color"),
	}
}

func normalizeFolder(raw normalize.Raw) Folder {
	return Folder{
		ID:        normalize.ID(raw, "id"),
		Name:      normalize.Str(raw, "name"),
		ParentID:  normalize.ID(raw, "parent_id", "parentId"),
		CreatedAt: normalize.Str(raw, "created_at", "createdAt"),
		UpdatedAt: normalize.Str(raw, "updated_at", "updatedAt"),
	}
}

// Service exposes groups, tags and folders.
type Service struct {
	client *transport.Client
}

func NewService(client *transport.Client) *Service {
	return &Service{client: client}
}

func (s *Service) List(ctx context.Context) ([]Group, error) {
	var raws []normalize.Raw
	if err := s.client.Do(ctx, "GET", "/groups", nil, &raws); err != nil {
		return nil, err
	}
	out := make([]Group, 0, len(raws))
	for _, raw := range raws {
		out = append(out, NormalizeGroup(raw))
	}
	return out, nil
}

// GroupParams describes a group create or update.
type GroupParams struct {
	Name        string
	ParentID    string
	Description string
}

func (p GroupParams) body() map[string]any {
	body := map[string]any{"name": p.Name}
	if p.ParentID != "" {
		body["parent_id"] = p.ParentID
	}
	if p.Description != "" {
		body["description"] = p.Description
	}
	return body
}

func (s *Service) Create(ctx context.Context, params GroupParams) (Group, error) {
	var raw normalize.Raw
	if err := s.client.Do(ctx, "POST", "/groups", params.body(), &raw); err != nil {
		return Group{}, err
	}
	return NormalizeGroup(raw), nil
}

func (s *Service) Update(ctx context.Context, id string, params GroupParams) (Group, error) {
	var raw normalize.Raw
	if err := s.client.Do(ctx, "PUT", "/groups/"+id, params.body(), &raw); err != nil {
		return Group{}, err
	}
	return NormalizeGroup(raw), nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.client.Do(ctx, "DELETE", "/groups/"+id, nil, nil)
}

// MoveItem re-homes one item into a group. An empty groupID moves the item
// back to the ungrouped root.
func (s *Service) MoveItem(ctx context.Context, itemType, itemID, groupID string) error {
	body := map[string]any{"item_type": itemType, "item_id": itemID}
	if groupID != "" {
		body["group_id"] = groupID
	}
	return s.client.Do(ctx, "POST", "/groups/move-item", body, nil)
}

// BulkMoveItems re-homes a batch of items of one type.
func (s *Service) BulkMoveItems(ctx context.Context, itemType string, itemIDs []string, groupID string) error {
	body := map[string]any{"item_type": itemType, "item_ids": itemIDs}
	if groupID != "" {
		body["group_id"] = groupID
	}
	return s.client.Do(ctx, "POST", "/groups/bulk-move-items", body, nil)
}

// MoveForm re-homes a form. Forms use the folders controller rather than the
// shared move-item endpoint.
func (s *Service) MoveForm(ctx context.Context, formID, groupID string) error {
	body := map[string]any{"form_id": formID}
	if groupID != "" {
		body["group_id"] = groupID
	}
	return s.client.Do(ctx, "POST", "/folders/move-form", body, nil)
}

func (s *Service) Tags(ctx context.Context) ([]Tag, error) {
	var raws []normalize.Raw
	if err := s.client.Do(ctx, "GET", "/tags", nil, &raws); err != nil {
		return nil, err
	}
	out := make([]Tag, 0, len(raws))
	for _, raw := range raws {
		out = append(out, normalizeTag(raw))
	}
	return out, nil
}

func (s *Service) CreateTag(ctx context.Context, name, color string) (Tag, error) {
	var raw normalize.Raw
	body := map[string]any{"name": name, "color": color}
	if err := s.client.Do(ctx, "POST", "/tags", body, &raw); err != nil {
		return Tag{}, err
	}
	return normalizeTag(raw), nil
}

func (s *Service) UpdateTag(ctx context.Context, id, name, color string) (Tag, error) {
	var raw normalize.Raw
	body := map[string]any{"name": name, "color": color}
	if err := s.client.Do(ctx, "PUT", "/tags/"+id, body, &raw); err != nil {
		return Tag{}, err
	}
	return normalizeTag(raw), nil
}

func (s *Service) DeleteTag(ctx context.Context, id string) error {
	return s.client.Do(ctx, "DELETE", "/tags/"+id, nil, nil)
}

func (s *Service) TagRecipient(ctx context.Context, recipientID, tagID string) error {
	body := map[string]any{"recipient_id": recipientID, "tag_id": tagID}
	return s.client.Do(ctx, "POST", "/tags/add-to-recipient", body, nil)
}

func (s *Service) UntagRecipient(ctx context.Context, recipientID, tagID string) error {
	body := map[string]any{"recipient_id": recipientID, "tag_id": tagID}
	return s.client.Do(ctx, "POST", "/tags/remove-from-recipient", body, nil)
}

func (s *Service) Folders(ctx context.Context) ([]Folder, error) {
	var raws []normalize.Raw
	if err := s.client.Do(ctx, "GET", "/folders", nil, &raws); err != nil {
		return nil, err
	}
	out := make([]Folder, 0, len(raws))
	for _, raw := range raws {
		out = append(out, normalizeFolder(raw))
	}
	return out, nil
}

func (s *Service) CreateFolder(ctx context.Context, name, parentID string) (Folder, error) {
	body := map[string]any{"name": name}
	if parentID != "" {
		body["parent_id"] = parentID
	}
	var raw normalize.Raw
	if err := s.client.Do(ctx, "POST", "/folders", body, &raw); err != nil {
		return Folder{}, err
	}
	return normalizeFolder(raw), nil
}

func (s *Service) UpdateFolder(ctx context.Context, id, name, parentID string) (Folder, error) {
	body := map[string]any{"name": name}
	if parentID != "" {
		body["parent_id"] = parentID
	}
	var raw normalize.Raw
	if err := s.client.Do(ctx, "PUT", "/folders/"+id, body, &raw); err != nil {
		return Folder{}, err
	}
	return normalizeFolder(raw), nil
}

func (s *Service) DeleteFolder(ctx context.Context, id string) error {
	return s.client.Do(ctx, "DELETE", "/folders/"+id, nil, nil)
}
