// SPDX-License-Identifier: MIT

// Package sequences is the follow-up sequence façade.
package sequences

import (
	"context"

	"github.com/ronittamrakar/xordon-go/internal/normalize"
	"github.com/ronittamrakar/xordon-go/internal/transport"
)

// Step is one email in a sequence, ordered and delayed relative to the
// previous step.
type Step struct {
	ID          string `json:"id,omitempty"`
	Subject     string `json:"subject"`
	Content     string `json:"content"`
	HTMLContent string `json:"htmlContent,omitempty"`
	DelayDays   int    `json:"delayDays"`
	Order       int    `json:"order"`
}

// Sequence is a named chain of follow-up steps.
type Sequence struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	Status       string `json:"status"`
	CampaignID   string `json:"campaignId,omitempty"`
	CampaignName string `json:"campaignName,omitempty"`
	Steps        []Step `json:"steps,omitempty"`
	CreatedAt    string `json:"createdAt,omitempty"`
	UpdatedAt    string `json:"updatedAt,omitempty"`
}

// Normalize is total; status defaults to draft, step ordering accepts both
// the order and legacy step_order spellings.
func Normalize(raw normalize.Raw) Sequence {
	var steps []Step
	for _, s := range normalize.Slice(raw, "steps") {
		steps = append(steps, Step{
			ID:          normalize.ID(s, "id"),
			Subject:     normalize.Str(s, "subject"),
			Content:     normalize.Str(s, "content"),
			HTMLContent: normalize.Str(s, "html_content", "htmlContent"),
			DelayDays:   normalize.Int(s, 0, "delay_days", "delayDays"),
			Order:       normalize.Int(s, 0, "order", "step_order"),
		})
	}
	return Sequence{
		ID:           normalize.ID(raw, "id"),
		Name:         normalize.Str(raw, "name"),
		Description:  normalize.Str(raw, "description"),
		Status:       normalize.StrOr(raw, "draft", "status"),
		CampaignID:   normalize.ID(raw, "campaign_id", "campaignId"),
		CampaignName: normalize.Str(raw, "campaign_name", "campaignName"),
		Steps:        steps,
		CreatedAt:    normalize.Str(raw, "created_at", "createdAt"),
		UpdatedAt:    normalize.Str(raw, "updated_at", "updatedAt"),
	}
}

func stepBody(s Step) map[string]any {
	body := map[string]any{
		"subject":    s.Subject,
		"content":    s.Content,
		"delay_days": s.DelayDays,
		"order":      s.Order,
	}
	if s.ID != "" {
		body["id"] = s.ID
	}
	if s.HTMLContent != "" {
		body["html_content"] = s.HTMLContent
	}
	return body
}

// CreateParams creates a sequence with its steps.
type CreateParams struct {
	Name        string
	Description string
	Status      string
	CampaignID  string
	Steps       []Step
}

func (p CreateParams) body() map[string]any {
	steps := make([]map[string]any, 0, len(p.Steps))
	for _, s := range p.Steps {
		steps = append(steps, stepBody(s))
	}
	body := map[string]any{"name": p.Name, "steps": steps}
	if p.Description != "" {
		body["description"] = p.Description
	}
	if p.Status != "" {
		body["status"] = p.Status
	}
	if p.CampaignID != "" {
		body["campaign_id"] = p.CampaignID
	}
	return body
}

// UpdateParams is a partial sequence write.
type UpdateParams struct {
	Name        *string
	Description *string
	Status      *string
	Steps       *[]Step
}

func (p UpdateParams) body() map[string]any {
	body := map[string]any{}
	if p.Name != nil {
		body["name"] = *p.Name
	}
	if p.Description != nil {
		body["description"] = *p.Description
	}
	if p.Status != nil {
		body["status"] = *p.Status
	}
	if p.Steps != nil {
		steps := make([]map[string]any, 0, len(*p.Steps))
		for _, s := range *p.Steps {
			steps = append(steps, stepBody(s))
		}
		body["steps"] = steps
	}
	return body
}

// Service is the sequences façade.
type Service struct {
	client *transport.Client
}

// NewService wraps the shared transport.
func NewService(client *transport.Client) *Service {
	return &Service{client: client}
}

type itemsEnvelope struct {
	Items []normalize.Raw `json:"items"`
}

// List returns all sequences.
func (s *Service) List(ctx context.Context) ([]Sequence, error) {
	var envelope itemsEnvelope
	if err := s.client.Do(ctx, "GET", "/sequences", nil, &envelope); err != nil {
		return nil, err
	}
	out := make([]Sequence, 0, len(envelope.Items))
	for _, raw := range envelope.Items {
		out = append(out, Normalize(raw))
	}
	return out, nil
}

// Get fetches one sequence with steps.
func (s *Service) Get(ctx context.Context, id string) (Sequence, error) {
	var raw normalize.Raw
	if err := s.client.Do(ctx, "GET", "/sequences/"+id, nil, &raw); err != nil {
		return Sequence{}, err
	}
	return Normalize(raw), nil
}

// Create creates a sequence.
func (s *Service) Create(ctx context.Context, params CreateParams) (Sequence, error) {
	var raw normalize.Raw
	if err := s.client.Do(ctx, "POST", "/sequences", params.body(), &raw); err != nil {
		return Sequence{}, err
	}
	return Normalize(raw), nil
}

// Update applies a partial sequence write.
func (s *Service) Update(ctx context.Context, id string, params UpdateParams) (Sequence, error) {
	var raw normalize.Raw
	if err := s.client.Do(ctx, "PUT", "/sequences/"+id, params.body(), &raw); err != nil {
		return Sequence{}, err
	}
	return Normalize(raw), nil
}

// Delete removes a sequence.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.client.Do(ctx, "DELETE", "/sequences/"+id, nil, nil)
}
