// SPDX-License-Identifier: MIT

// Package proposals wraps the proposal builder endpoints, including the
// public token-addressed accept and decline flow.
package proposals

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/ronittamrakar/xordon-go/internal/normalize"
	"github.com/ronittamrakar/xordon-go/internal/settings"
	"github.com/ronittamrakar/xordon-go/internal/transport"
)

// Proposal status values.
const (
	StatusDraft    = "draft"
	StatusSent     = "sent"
	StatusViewed   = "viewed"
	StatusAccepted = "accepted"
	StatusDeclined = "declined"
)

// Item is one priced line in a proposal.
type Item struct {
	ID         string  `json:"id,omitempty"`
	Name       string  `json:"name"`
	Quantity   float64 `json:"quantity"`
	UnitPrice  float64 `json:"unitPrice"`
	Total      float64 `json:"total"`
	Category   string  `json:"category,omitempty"`
	IsOptional bool    `json:"isOptional"`
}

// Section is one block of proposal content.
type Section struct {
	ID      string `json:"id,omitempty"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Order   int    `json:"order"`
}

// Proposal is a normalized proposal document.
type Proposal struct {
	ID            string    `json:"id"`
	Token         string    `json:"token,omitempty"`
	Name          string    `json:"name"`
	DocumentType  string    `json:"documentType,omitempty"`
	Status        string    `json:"status"`
	ClientName    string    `json:"clientName,omitempty"`
	ClientEmail   string    `json:"clientEmail,omitempty"`
	ClientCompany string    `json:"clientCompany,omitempty"`
	ClientPhone   string    `json:"clientPhone,omitempty"`
	Content       string    `json:"content"`
	Sections      []Section `json:"sections,omitempty"`
	Items         []Item    `json:"items,omitempty"`
	TotalAmount   float64   `json:"totalAmount"`
	Currency      string    `json:"currency"`
	ValidUntil    string    `json:"validUntil,omitempty"`
	TemplateID    string    `json:"templateId,omitempty"`
	TemplateName  string    `json:"templateName,omitempty"`
	CreatedAt     string    `json:"createdAt"`
	UpdatedAt     string    `json:"updatedAt"`
}

// Stats summarizes proposal counts and pipeline value.
type Stats struct {
	Total              int     `json:"total"`
	Draft              int     `json:"draft"`
	Sent               int     `json:"sent"`
	Viewed             int     `json:"viewed"`
	Accepted           int     `json:"accepted"`
	Declined           int     `json:"declined"`
	TotalAcceptedValue float64 `json:"totalAcceptedValue"`
	TotalPendingValue  float64 `json:"totalPendingValue"`
	AcceptanceRate     float64 `json:"acceptanceRate"`
}

// Page is one window of the proposal listing.
type Page struct {
	Items []Proposal `json:"items"`
	Page  int        `json:"page"`
	Limit int        `json:"limit"`
	Total int        `json:"total"`
	Pages int        `json:"pages"`
}

// Normalize maps a raw proposal payload. Status defaults to draft, currency
// to USD and the total to zero.
func Normalize(raw normalize.Raw) Proposal {
	p := Proposal{
		ID:            normalize.ID(raw, "id"),
		Token:         normalize.Str(raw, "token"),
		Name:          normalize.Str(raw, "name"),
		DocumentType:  normalize.Str(raw, "document_type", "documentType"),
		Status:        normalize.StrOr(raw, StatusDraft, "status"),
		ClientName:    normalize.Str(raw, "client_name", "clientName"),
		ClientEmail:   normalize.Str(raw, "client_email", "clientEmail"),
		ClientCompany: normalize.Str(raw, "client_company", "clientCompany"),
		ClientPhone:   normalize.Str(raw, "client_phone", "clientPhone"),
		Content:       normalize.Str(raw, "content"),
		TotalAmount:   normalize.Float(raw, 0, "total_amount", "totalAmount"),
		Currency:      normalize.StrOr(raw, "USD", "currency"),
		ValidUntil:    normalize.Str(raw, "valid_until", "validUntil"),
		TemplateID:    normalize.ID(raw, "template_id", "templateId"),
		TemplateName:  normalize.Str(raw, "template_name", "templateName"),
		CreatedAt:     normalize.Str(raw, "created_at", "createdAt"),
		UpdatedAt:     normalize.Str(raw, "updated_at", "updatedAt"),
	}
	for _, item := range normalize.Slice(raw, "sections") {
		p.Sections = append(p.Sections, Section{
			ID:      normalize.ID(item, "id"),
			Title:   normalize.Str(item, "title"),
			Content: normalize.Str(item, "content"),
			Order:   normalize.Int(item, 0, "order", "sort_order"),
		})
	}
	for _, item := range normalize.Slice(raw, "items") {
		p.Items = append(p.Items, Item{
			ID:         normalize.ID(item, "id"),
			Name:       normalize.Str(item, "name"),
			Quantity:   normalize.Float(item, 1, "quantity"),
			UnitPrice:  normalize.Float(item, 0, "unit_price", "unitPrice"),
			Total:      normalize.Float(item, 0, "total"),
			Category:   normalize.Str(item, "category"),
			IsOptional: normalize.Bool(item, false, "is_optional", "isOptional"),
		})
	}
	return p
}

// Service exposes the proposals API.
type Service struct {
	client *transport.Client
	logger zerolog.Logger
}

func NewService(client *transport.Client, logger zerolog.Logger) *Service {
	return &Service{client: client, logger: logger}
}

// Filter narrows the proposal listing.
type Filter struct {
	Status     string
	Search     string
	Page       int
	Limit      int
	StartDate  string
	EndDate    string
	ClientID   string
	TemplateID string
}

// List fetches a page of proposals. Backend failures yield an empty page
// rather than an error so dashboards render regardless.
func (s *Service) List(ctx context.Context, filter Filter) Page {
	return settings.Fallback(ctx, s.logger, "proposals", func(ctx context.Context) (Page, error) {
		params := map[string]any{}
		if filter.Status != "" {
			params["status"] = filter.Status
		}
		if filter.Search != "" {
			params["search"] = filter.Search
		}
		if filter.Page > 0 {
			params["page"] = filter.Page
		}
		if filter.Limit > 0 {
			params["limit"] = filter.Limit
		}
		if filter.StartDate != "" {
			params["start_date"] = filter.StartDate
		}
		if filter.EndDate != "" {
			params["end_date"] = filter.EndDate
		}
		if filter.ClientID != "" {
			params["client_id"] = filter.ClientID
		}
		if filter.TemplateID != "" {
			params["template_id"] = filter.TemplateID
		}
		var env struct {
			Items      []normalize.Raw `json:"items"`
			Pagination normalize.Raw   `json:"pagination"`
		}
		if err := s.client.Do(ctx, "GET", "/proposals"+transport.Query(params), nil, &env); err != nil {
			return Page{}, err
		}
		page := Page{
			Page:  normalize.Int(env.Pagination, 1, "page"),
			Limit: normalize.Int(env.Pagination, 20, "limit"),
			Total: normalize.Int(env.Pagination, 0, "total"),
			Pages: normalize.Int(env.Pagination, 0, "pages"),
		}
		for _, raw := range env.Items {
			page.Items = append(page.Items, Normalize(raw))
		}
		return page, nil
	}, func() Page {
		limit := filter.Limit
		if limit == 0 {
			limit = 20
		}
		return Page{Page: 1, Limit: limit}
	})
}

func (s *Service) Get(ctx context.Context, id string) (Proposal, error) {
	var raw normalize.Raw
	if err := s.client.Do(ctx, "GET", "/proposals/"+id, nil, &raw); err != nil {
		return Proposal{}, err
	}
	return Normalize(raw), nil
}

// CreateParams describes a new proposal.
type CreateParams struct {
	Name          string
	DocumentType  string
	ClientName    string
	ClientEmail   string
	ClientCompany string
	Content       string
	Sections      []Section
	Items         []Item
	TotalAmount   float64
	Currency      string
	ValidUntil    string
	TemplateID    string
}

func (p CreateParams) body() map[string]any {
	body := map[string]any{
		"name":    p.Name,
		"content": p.Content,
	}
	if p.DocumentType != "" {
		body["document_type"] = p.DocumentType
	}
	if p.ClientName != "" {
		body["client_name"] = p.ClientName
	}
	if p.ClientEmail != "" {
		body["client_email"] = p.ClientEmail
	}
	if p.ClientCompany != "" {
		body["client_company"] = p.ClientCompany
	}
	if len(p.Sections) > 0 {
		body["sections"] = p.Sections
	}
	if len(p.Items) > 0 {
		body["items"] = p.Items
	}
	if p.TotalAmount > 0 {
		body["total_amount"] = p.TotalAmount
	}
	if p.Currency != "" {
		body["currency"] = p.Currency
	}
	if p.ValidUntil != "" {
		body["valid_until"] = p.ValidUntil
	}
	if p.TemplateID != "" {
		body["template_id"] = p.TemplateID
	}
	return body
}

// Create returns the new proposal's ID.
func (s *Service) Create(ctx context.Context, params CreateParams) (string, error) {
	var out struct {
		ID      normalize.FlexString `json:"id"`
		Message string               `json:"message"`
	}
	if err := s.client.Do(ctx, "POST", "/proposals", params.body(), &out); err != nil {
		return "", err
	}
	return string(out.ID), nil
}

// UpdateParams carries a partial proposal update.
type UpdateParams struct {
	Name        *string
	Status      *string
	ClientName  *string
	ClientEmail *string
	Content     *string
	Sections    *[]Section
	Items       *[]Item
	TotalAmount *float64
	Currency    *string
	ValidUntil  *string
}

func (p UpdateParams) body() map[string]any {
	body := map[string]any{}
	if p.Name != nil {
		body["name"] = *p.Name
	}
	if p.Status != nil {
		body["status"] = *p.Status
	}
	if p.ClientName != nil {
		body["client_name"] = *p.ClientName
	}
	if p.ClientEmail != nil {
		body["client_email"] = *p.ClientEmail
	}
	if p.Content != nil {
		body["content"] = *p.Content
	}
	if p.Sections != nil {
		body["sections"] = *p.Sections
	}
	if p.Items != nil {
		body["items"] = *p.Items
	}
	if p.TotalAmount != nil {
		body["total_amount"] = *p.TotalAmount
	}
	if p.Currency != nil {
		body["currency"] = *p.Currency
	}
	if p.ValidUntil != nil {
		body["valid_until"] = *p.ValidUntil
	}
	return body
}

func (s *Service) Update(ctx context.Context, id string, params UpdateParams) error {
	return s.client.Do(ctx, "PUT", "/proposals/"+id, params.body(), nil)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.client.Do(ctx, "DELETE", "/proposals/"+id, nil, nil)
}

// Duplicate copies a proposal and returns the copy's ID.
func (s *Service) Duplicate(ctx context.Context, id string) (string, error) {
	var out struct {
		ID      normalize.FlexString `json:"id"`
		Message string               `json:"message"`
	}
	if err := s.client.Do(ctx, "POST", "/proposals/"+id+"/duplicate", nil, &out); err != nil {
		return "", err
	}
	return string(out.ID), nil
}

// Send emails the proposal to its client and flips it to sent.
func (s *Service) Send(ctx context.Context, id string) error {
	return s.client.Do(ctx, "POST", "/proposals/"+id+"/send", nil, nil)
}

// AddComment appends a comment; internal comments are hidden from the client
// view.
func (s *Service) AddComment(ctx context.Context, id, content string, internal bool) error {
	body := map[string]any{"content": content, "is_internal": internal}
	return s.client.Do(ctx, "POST", "/proposals/"+id+"/comments", body, nil)
}

// GetStats fetches proposal counts, serving zeroes when the backend is
// unavailable.
func (s *Service) GetStats(ctx context.Context) Stats {
	return settings.Fallback(ctx, s.logger, "proposal stats", func(ctx context.Context) (Stats, error) {
		var raw normalize.Raw
		if err := s.client.Do(ctx, "GET", "/proposals/stats", nil, &raw); err != nil {
			return Stats{}, err
		}
		return Stats{
			Total:              normalize.Int(raw, 0, "total"),
			Draft:              normalize.Int(raw, 0, "draft"),
			Sent:               normalize.Int(raw, 0, "sent"),
			Viewed:             normalize.Int(raw, 0, "viewed"),
			Accepted:           normalize.Int(raw, 0, "accepted"),
			Declined:           normalize.Int(raw, 0, "declined"),
			TotalAcceptedValue: normalize.Float(raw, 0, "total_accepted_value"),
			TotalPendingValue:  normalize.Float(raw, 0, "total_pending_value"),
			AcceptanceRate:     normalize.Float(raw, 0, "acceptance_rate"),
		}, nil
	}, func() Stats { return Stats{} })
}

// GetPublic fetches a proposal by its share token without authentication.
func (s *Service) GetPublic(ctx context.Context, token string) (Proposal, error) {
	var raw normalize.Raw
	if err := s.client.Do(ctx, "GET", "/proposals/public/"+token, nil, &raw); err != nil {
		return Proposal{}, err
	}
	return Normalize(raw), nil
}

// Accept records the client's acceptance, optionally with a signature.
func (s *Service) Accept(ctx context.Context, token, signature, signedBy string) error {
	body := map[string]any{}
	if signature != "" {
		body["signature"] = signature
	}
	if signedBy != "" {
		body["signed_by"] = signedBy
	}
	return s.client.Do(ctx, "POST", "/proposals/public/"+token+"/accept", body, nil)
}

// Decline records the client's rejection with an optional reason.
func (s *Service) Decline(ctx context.Context, token, reason string) error {
	body := map[string]any{}
	if reason != "" {
		body["reason"] = reason
	}
	return s.client.Do(ctx, "POST", "/proposals/public/"+token+"/decline", body, nil)
}
