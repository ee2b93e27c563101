// SPDX-License-Identifier: MIT

// Package crm wraps the unified contacts and companies endpoints. Contacts
// are shared across the email, SMS and call channels; the type filter picks
// one channel's view.
package crm

import (
	"context"
	"io"

	"github.com/ronittamrakar/xordon-go/internal/normalize"
	"github.com/ronittamrakar/xordon-go/internal/paging"
	"github.com/ronittamrakar/xordon-go/internal/transport"
)

// Contact channel types.
const (
	TypeEmail = "email"
	TypeSMS   = "sms"
	TypeCall  = "call"
)

// Contact is a normalized unified contact.
type Contact struct {
	ID        string   `json:"id"`
	Email     string   `json:"email,omitempty"`
	Phone     string   `json:"phone,omitempty"`
	FirstName string   `json:"firstName,omitempty"`
	LastName  string   `json:"lastName,omitempty"`
	Company   string   `json:"company,omitempty"`
	Type      string   `json:"type"`
	Status    string   `json:"status"`
	Tags      []string `json:"tags,omitempty"`
	CreatedAt string   `json:"createdAt"`
	UpdatedAt string   `json:"updatedAt"`
}

// Company is a normalized CRM company record.
type Company struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Domain       string `json:"domain,omitempty"`
	Industry     string `json:"industry,omitempty"`
	Status       string `json:"status"`
	Website      string `json:"website,omitempty"`
	Phone        string `json:"phone,omitempty"`
	ContactCount int    `json:"contactCount"`
	CreatedAt    string `json:"createdAt"`
	UpdatedAt    string `json:"updatedAt"`
}

// Note is a freeform note attached to a company.
type Note struct {
	ID        string `json:"id"`
	Content   string `json:"content"`
	Author    string `json:"author,omitempty"`
	CreatedAt string `json:"createdAt"`
}

func normalizeContact(raw normalize.Raw) Contact {
	return Contact{
		ID:        normalize.ID(raw, "id"),
		Email:     normalize.Str(raw, "email"),
		Phone:     normalize.Str(raw, "phone", "phone_number"),
		FirstName: normalize.Str(raw, "first_name", "firstName"),
		LastName:  normalize.Str(raw, "last_name", "lastName"),
		Company:   normalize.Str(raw, "company", "company_name"),
		Type:      normalize.StrOr(raw, TypeEmail, "type"),
		Status:    normalize.StrOr(raw, "active", "status"),
		Tags:      normalize.Strings(raw, "tags"),
		CreatedAt: normalize.Str(raw, "created_at", "createdAt"),
		UpdatedAt: normalize.Str(raw, "updated_at", "updatedAt"),
	}
}

func normalizeCompany(raw normalize.Raw) Company {
	return Company{
		ID:           normalize.ID(raw, "id"),
		Name:         normalize.Str(raw, "name"),
		Domain:       normalize.Str(raw, "domain"),
		Industry:     normalize.Str(raw, "industry"),
		Status:       normalize.StrOr(raw, "active", "status"),
		Website:      normalize.Str(raw, "website"),
		Phone:        normalize.Str(raw, "phone"),
		ContactCount: normalize.Int(raw, 0, "contact_count", "contactCount"),
		CreatedAt:    normalize.Str(raw, "created_at", "createdAt"),
		UpdatedAt:    normalize.Str(raw, "updated_at", "updatedAt"),
	}
}

// Service exposes the CRM API.
type Service struct {
	client *transport.Client
}

func NewService(client *transport.Client) *Service {
	return &Service{client: client}
}

// Contacts lists contacts, optionally filtered by channel type and campaign.
func (s *Service) Contacts(ctx context.Context, contactType, campaignID string) ([]Contact, error) {
	params := map[string]any{}
	if contactType != "" {
		params["type"] = contactType
	}
	if campaignID != "" {
		params["campaign_id"] = campaignID
	}
	var env struct {
		Contacts []normalize.Raw `json:"contacts"`
	}
	if err := s.client.Do(ctx, "GET", "/contacts"+transport.Query(params), nil, &env); err != nil {
		return nil, err
	}
	out := make([]Contact, 0, len(env.Contacts))
	for _, raw := range env.Contacts {
		out = append(out, normalizeContact(raw))
	}
	return out, nil
}

func (s *Service) Contact(ctx context.Context, id string) (Contact, error) {
	var raw normalize.Raw
	if err := s.client.Do(ctx, "GET", "/contacts/"+id, nil, &raw); err != nil {
		return Contact{}, err
	}
	return normalizeContact(raw), nil
}

// ContactParams describes a contact create or update. Empty fields are
// omitted on create; on update the caller sends only what changed.
type ContactParams struct {
	Email     string
	Phone     string
	FirstName string
	LastName  string
	Company   string
	Type      string
	Tags      []string
}

func (p ContactParams) body() map[string]any {
	body := map[string]any{}
	if p.Email != "" {
		body["email"] = p.Email
	}
	if p.Phone != "" {
		body["phone"] = p.Phone
	}
	if p.FirstName != "" {
		body["first_name"] = p.FirstName
	}
	if p.LastName != "" {
		body["last_name"] = p.LastName
	}
	if p.Company != "" {
		body["company"] = p.Company
	}
	if p.Type != "" {
		body["type"] = p.Type
	}
	if len(p.Tags) > 0 {
		body["tags"] = p.Tags
	}
	return body
}

func (s *Service) CreateContact(ctx context.Context, params ContactParams) (Contact, error) {
	var raw normalize.Raw
	if err := s.client.Do(ctx, "POST", "/contacts", params.body(), &raw); err != nil {
		return Contact{}, err
	}
	return normalizeContact(raw), nil
}

func (s *Service) UpdateContact(ctx context.Context, id string, params ContactParams) (Contact, error) {
	var raw normalize.Raw
	if err := s.client.Do(ctx, "PUT", "/contacts/"+id, params.body(), &raw); err != nil {
		return Contact{}, err
	}
	return normalizeContact(raw), nil
}

func (s *Service) DeleteContact(ctx context.Context, id string) error {
	return s.client.Do(ctx, "DELETE", "/contacts/"+id, nil, nil)
}

// BulkAction applies one action to a batch of contacts. Action is one of
// delete, add_to_campaign, remove_from_campaign, add_tag or remove_tag.
func (s *Service) BulkAction(ctx context.Context, action string, contactIDs []string, campaignID, tag string) (int, error) {
	body := map[string]any{"action": action, "contact_ids": contactIDs}
	if campaignID != "" {
		body["campaign_id"] = campaignID
	}
	if tag != "" {
		body["tag"] = tag
	}
	var out struct {
		Message       string `json:"message"`
		AffectedCount int    `json:"affected_count"`
	}
	if err := s.client.Do(ctx, "POST", "/contacts/bulk-action", body, &out); err != nil {
		return 0, err
	}
	return out.AffectedCount, nil
}

// ContactTags lists the distinct tags in use across contacts.
func (s *Service) ContactTags(ctx context.Context) ([]string, error) {
	var tags []string
	if err := s.client.Do(ctx, "GET", "/contacts/tags", nil, &tags); err != nil {
		return nil, err
	}
	return tags, nil
}

// Upload imports a CSV of contacts for one channel.
func (s *Service) Upload(ctx context.Context, filename string, file io.Reader, contactType string) (int, error) {
	form := transport.NewMultipart().
		File("file", filename, file).
		Field("type", contactType)
	var out struct {
		Message       string `json:"message"`
		UploadedCount int    `json:"uploaded_count"`
	}
	if err := s.client.Do(ctx, "POST", "/contacts/upload", form, &out); err != nil {
		return 0, err
	}
	return out.UploadedCount, nil
}

// DuplicateGroup is one cluster of contacts sharing an email or phone.
type DuplicateGroup struct {
	Type     string    `json:"type"`
	Value    string    `json:"value"`
	Count    int       `json:"count"`
	Contacts []Contact `json:"contacts"`
}

// FindDuplicates clusters contacts by the given criteria: email, phone or
// both.
func (s *Service) FindDuplicates(ctx context.Context, criteria string) ([]DuplicateGroup, error) {
	if criteria == "" {
		criteria = "email"
	}
	var env struct {
		Duplicates []struct {
			Type     string          `json:"type"`
			Value    string          `json:"value"`
			Count    int             `json:"count"`
			Contacts []normalize.Raw `json:"contacts"`
		} `json:"duplicates"`
	}
	if err := s.client.Do(ctx, "GET", "/contacts/duplicates?criteria="+criteria, nil, &env); err != nil {
		return nil, err
	}
	out := make([]DuplicateGroup, 0, len(env.Duplicates))
	for _, g := range env.Duplicates {
		group := DuplicateGroup{Type: g.Type, Value: g.Value, Count: g.Count}
		for _, raw := range g.Contacts {
			group.Contacts = append(group.Contacts, normalizeContact(raw))
		}
		out = append(out, group)
	}
	return out, nil
}

// MergeDuplicates folds a set of duplicate contacts into the primary one.
func (s *Service) MergeDuplicates(ctx context.Context, contactIDs []string, primaryID string) (int, error) {
	body := map[string]any{"contactIds": contactIDs, "primaryId": primaryID}
	var out struct {
		Message     string `json:"message"`
		PrimaryID   string `json:"primaryId"`
		MergedCount int    `json:"mergedCount"`
	}
	if err := s.client.Do(ctx, "POST", "/contacts/duplicates/merge", body, &out); err != nil {
		return 0, err
	}
	return out.MergedCount, nil
}

// CompanyFilter narrows the company listing.
type CompanyFilter struct {
	Search   string
	Status   string
	Industry string
	Page     int
	Limit    int
}

// Companies lists companies with pagination.
func (s *Service) Companies(ctx context.Context, filter CompanyFilter) (paging.List[Company], error) {
	params := map[string]any{}
	if filter.Search != "" {
		params["search"] = filter.Search
	}
	if filter.Status != "" {
		params["status"] = filter.Status
	}
	if filter.Industry != "" {
		params["industry"] = filter.Industry
	}
	if filter.Page > 0 {
		params["page"] = filter.Page
	}
	if filter.Limit > 0 {
		params["limit"] = filter.Limit
	}
	var env struct {
		Companies  []normalize.Raw `json:"companies"`
		Pagination normalize.Raw   `json:"pagination"`
	}
	if err := s.client.Do(ctx, "GET", "/companies"+transport.Query(params), nil, &env); err != nil {
		return paging.List[Company]{}, err
	}
	list := paging.List[Company]{Pagination: paging.FromRaw(env.Pagination)}
	for _, raw := range env.Companies {
		list.Items = append(list.Items, normalizeCompany(raw))
	}
	return list, nil
}

func (s *Service) Company(ctx context.Context, id string) (Company, error) {
	var raw normalize.Raw
	if err := s.client.Do(ctx, "GET", "/companies/"+id, nil, &raw); err != nil {
		return Company{}, err
	}
	return normalizeCompany(raw), nil
}

// CompanyParams describes a company create or update.
type CompanyParams struct {
	Name     string
	Domain   string
	Industry string
	Website  string
	Phone    string
	Status   string
}

func (p CompanyParams) body() map[string]any {
	body := map[string]any{"name": p.Name}
	if p.Domain != "" {
		body["domain"] = p.Domain
	}
	if p.Industry != "" {
		body["industry"] = p.Industry
	}
	if p.Website != "" {
		body["website"] = p.Website
	}
	if p.Phone != "" {
		body["phone"] = p.Phone
	}
	if p.Status != "" {
		body["status"] = p.Status
	}
	return body
}

// CreateCompany returns the new company's ID.
func (s *Service) CreateCompany(ctx context.Context, params CompanyParams) (string, error) {
	var out struct {
		ID      normalize.FlexString `json:"id"`
		Message string               `json:"message"`
	}
	if err := s.client.Do(ctx, "POST", "/companies", params.body(), &out); err != nil {
		return "", err
	}
	return string(out.ID), nil
}

func (s *Service) UpdateCompany(ctx context.Context, id string, params CompanyParams) error {
	return s.client.Do(ctx, "PUT", "/companies/"+id, params.body(), nil)
}

func (s *Service) DeleteCompany(ctx context.Context, id string) error {
	return s.client.Do(ctx, "DELETE", "/companies/"+id, nil, nil)
}

// CompanyContacts lists the contacts linked to a company.
func (s *Service) CompanyContacts(ctx context.Context, companyID string) ([]Contact, error) {
	var env struct {
		Contacts []normalize.Raw `json:"contacts"`
	}
	if err := s.client.Do(ctx, "GET", "/companies/"+companyID+"/contacts", nil, &env); err != nil {
		return nil, err
	}
	out := make([]Contact, 0, len(env.Contacts))
	for _, raw := range env.Contacts {
		out = append(out, normalizeContact(raw))
	}
	return out, nil
}

// LinkContact attaches an existing contact to a company.
func (s *Service) LinkContact(ctx context.Context, companyID, contactID string) error {
	body := map[string]any{"contactId": contactID}
	return s.client.Do(ctx, "POST", "/companies/"+companyID+"/contacts", body, nil)
}

// CompanyNotes lists the notes on a company, newest first.
func (s *Service) CompanyNotes(ctx context.Context, companyID string) ([]Note, error) {
	var env struct {
		Notes []normalize.Raw `json:"notes"`
	}
	if err := s.client.Do(ctx, "GET", "/companies/"+companyID+"/notes", nil, &env); err != nil {
		return nil, err
	}
	out := make([]Note, 0, len(env.Notes))
	for _, raw := range env.Notes {
		out = append(out, Note{
			ID:        normalize.ID(raw, "id"),
			Content:   normalize.Str(raw, "content"),
			Author:    normalize.Str(raw, "author", "author_name"),
			CreatedAt: normalize.Str(raw, "created_at", "createdAt"),
		})
	}
	return out, nil
}

// AddCompanyNote appends a note to a company and returns the note ID.
func (s *Service) AddCompanyNote(ctx context.Context, companyID, content string) (string, error) {
	var out struct {
		ID      normalize.FlexString `json:"id"`
		Message string               `json:"message"`
	}
	body := map[string]any{"content": content}
	if err := s.client.Do(ctx, "POST", "/companies/"+companyID+"/notes", body, &out); err != nil {
		return "", err
	}
	return string(out.ID), nil
}

// Pipeline stages, in funnel order.
const (
	StageLead        = "lead"
	StageQualified   = "qualified"
	StageProposal    = "proposal"
	StageNegotiation = "negotiation"
	StageWon         = "won"
	StageLost        = "lost"
)

// Deal is an opportunity on the sales pipeline.
type Deal struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Value       float64 `json:"value"`
	Currency    string  `json:"currency"`
	Stage       string  `json:"stage"`
	ContactID   string  `json:"contactId,omitempty"`
	CompanyID   string  `json:"companyId,omitempty"`
	CompanyName string  `json:"companyName,omitempty"`
	CloseDate   string  `json:"closeDate,omitempty"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   string  `json:"updatedAt"`
}

func normalizeDeal(raw normalize.Raw) Deal {
	return Deal{
		ID:          normalize.ID(raw, "id"),
		Title:       normalize.Str(raw, "title", "name"),
		Value:       normalize.Float(raw, 0, "value", "amount"),
		Currency:    normalize.StrOr(raw, "USD", "currency"),
		Stage:       normalize.StrOr(raw, StageLead, "stage"),
		ContactID:   normalize.ID(raw, "contact_id", "contactId"),
		CompanyID:   normalize.ID(raw, "company_id", "companyId"),
		CompanyName: normalize.Str(raw, "company_name", "companyName"),
		CloseDate:   normalize.Str(raw, "close_date", "closeDate"),
		CreatedAt:   normalize.Str(raw, "created_at", "createdAt"),
		UpdatedAt:   normalize.Str(raw, "updated_at", "updatedAt"),
	}
}

// DealParams creates or updates a deal; zero-valued optional fields are
// omitted from the body.
type DealParams struct {
	Title     string
	Value     float64
	Currency  string
	Stage     string
	ContactID string
	CompanyID string
	CloseDate string
}

func (p DealParams) body() map[string]any {
	body := map[string]any{"title": p.Title, "value": p.Value}
	if p.Currency != "" {
		body["currency"] = p.Currency
	}
	if p.Stage != "" {
		body["stage"] = p.Stage
	}
	if p.ContactID != "" {
		body["contact_id"] = p.ContactID
	}
	if p.CompanyID != "" {
		body["company_id"] = p.CompanyID
	}
	if p.CloseDate != "" {
		body["close_date"] = p.CloseDate
	}
	return body
}

// Deals lists pipeline deals, optionally filtered to one stage.
func (s *Service) Deals(ctx context.Context, stage string) ([]Deal, error) {
	path := "/deals"
	if stage != "" {
		path += transport.Query(map[string]any{"stage": stage})
	}
	var env struct {
		Deals []normalize.Raw `json:"deals"`
	}
	if err := s.client.Do(ctx, "GET", path, nil, &env); err != nil {
		return nil, err
	}
	out := make([]Deal, 0, len(env.Deals))
	for _, raw := range env.Deals {
		out = append(out, normalizeDeal(raw))
	}
	return out, nil
}

// CreateDeal opens a deal on the pipeline.
func (s *Service) CreateDeal(ctx context.Context, params DealParams) (Deal, error) {
	var raw normalize.Raw
	if err := s.client.Do(ctx, "POST", "/deals", params.body(), &raw); err != nil {
		return Deal{}, err
	}
	return normalizeDeal(raw), nil
}

// UpdateDeal applies a full deal write.
func (s *Service) UpdateDeal(ctx context.Context, id string, params DealParams) (Deal, error) {
	var raw normalize.Raw
	if err := s.client.Do(ctx, "PUT", "/deals/"+id, params.body(), &raw); err != nil {
		return Deal{}, err
	}
	return normalizeDeal(raw), nil
}

// MoveDeal advances a deal to another stage without touching the rest of it.
func (s *Service) MoveDeal(ctx context.Context, id, stage string) error {
	return s.client.Do(ctx, "PUT", "/deals/"+id+"/stage", map[string]any{"stage": stage}, nil)
}

// DeleteDeal removes a deal.
func (s *Service) DeleteDeal(ctx context.Context, id string) error {
	return s.client.Do(ctx, "DELETE", "/deals/"+id, nil, nil)
}
