// SPDX-License-Identifier: MIT

// Package templates is the email template façade.
package templates

import (
	"context"

	"github.com/ronittamrakar/xordon-go/internal/normalize"
	"github.com/ronittamrakar/xordon-go/internal/transport"
)

// Template is a reusable email body. Blocks and GlobalStyles are passed
// through untyped: the editor owns their schema, this layer only transports
// them.
type Template struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Subject      string `json:"subject"`
	HTMLContent  string `json:"htmlContent"`
	Blocks       any    `json:"blocks,omitempty"`
	GlobalStyles any    `json:"globalStyles,omitempty"`
	Status       string `json:"status"`
	IsSequence   bool   `json:"isSequence"`
	SequenceID   string `json:"sequenceId,omitempty"`
	CreatedAt    string `json:"createdAt,omitempty"`
	UpdatedAt    string `json:"updatedAt,omitempty"`
}

// Normalize is total; status defaults to draft.
func Normalize(raw normalize.Raw) Template {
	return Template{
		ID:           normalize.ID(raw, "id"),
		Name:         normalize.Str(raw, "name"),
		Subject:      normalize.Str(raw, "subject"),
		HTMLContent:  normalize.Str(raw, "html_content", "htmlContent"),
		Blocks:       raw["blocks"],
		GlobalStyles: raw["global_styles"],
		Status:       normalize.StrOr(raw, "draft", "status"),
		IsSequence:   normalize.Bool(raw, false, "is_sequence", "isSequence"),
		SequenceID:   normalize.ID(raw, "sequence_id", "sequenceId"),
		CreatedAt:    normalize.Str(raw, "created_at", "createdAt"),
		UpdatedAt:    normalize.Str(raw, "updated_at", "updatedAt"),
	}
}

// UpdateParams is a partial template write.
type UpdateParams struct {
	Name         *string
	Subject      *string
	HTMLContent  *string
	Blocks       any
	GlobalStyles any
	Status       *string
}

func (p UpdateParams) body() map[string]any {
	body := map[string]any{}
	if p.Name != nil {
		body["name"] = *p.Name
	}
	if p.Subject != nil {
		body["subject"] = *p.Subject
	}
	if p.HTMLContent != nil {
		body["html_content"] = *p.HTMLContent
	}
	if p.Blocks != nil {
		body["blocks"] = p.Blocks
	}
	if p.GlobalStyles != nil {
		body["global_styles"] = p.GlobalStyles
	}
	if p.Status != nil {
		body["status"] = *p.Status
	}
	return body
}

// Service is the templates façade.
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

// List returns all templates.
func (s *Service) List(ctx context.Context) ([]Template, error) {
	var envelope itemsEnvelope
	if err := s.client.Do(ctx, "GET", "/templates", nil, &envelope); err != nil {
		return nil, err
	}
	out := make([]Template, 0, len(envelope.Items))
	for _, raw := range envelope.Items {
		out = append(out, Normalize(raw))
	}
	return out, nil
}

// Get fetches one template.
func (s *Service) Get(ctx context.Context, id string) (Template, error) {
	var raw normalize.Raw
	if err := s.client.Do(ctx, "GET", "/templates/"+id, nil, &raw); err != nil {
		return Template{}, err
	}
	return Normalize(raw), nil
}

// Create creates a template.
func (s *Service) Create(ctx context.Context, name, subject, htmlContent string) (Template, error) {
	body := map[string]any{"name": name, "subject": subject, "html_content": htmlContent}
	var raw normalize.Raw
	if err := s.client.Do(ctx, "POST", "/templates", body, &raw); err != nil {
		return Template{}, err
	}
	return Normalize(raw), nil
}

// Update applies a partial template write.
func (s *Service) Update(ctx context.Context, id string, params UpdateParams) (Template, error) {
	var raw normalize.Raw
	if err := s.client.Do(ctx, "PUT", "/templates/"+id, params.body(), &raw); err != nil {
		return Template{}, err
	}
	return Normalize(raw), nil
}

// Delete removes a template.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.client.Do(ctx, "DELETE", "/templates/"+id, nil, nil)
}
