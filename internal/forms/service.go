// SPDX-License-Identifier: MIT

// Package forms wraps the form builder endpoints: form CRUD, public
// submission, response management and the tenant-wide form settings.
package forms

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/ronittamrakar/xordon-go/internal/normalize"
	"github.com/ronittamrakar/xordon-go/internal/settings"
	"github.com/ronittamrakar/xordon-go/internal/transport"
)

// Service exposes the forms API.
type Service struct {
	client *transport.Client
	logger zerolog.Logger
}

func NewService(client *transport.Client, logger zerolog.Logger) *Service {
	return &Service{client: client, logger: logger}
}

type itemsEnvelope struct {
	Items []normalize.Raw `json:"items"`
}

// CreateParams describes a new form.
type CreateParams struct {
	Name        string
	Title       string
	Description string
	Fields      []Field
	Status      string
	GroupID     string
	IsMultiStep bool
	Steps       []Step
}

func (p CreateParams) body() map[string]any {
	body := map[string]any{
		"name":   p.Name,
		"title":  p.Title,
		"fields": p.Fields,
	}
	if p.Description != "" {
		body["description"] = p.Description
	}
	if p.Status != "" {
		body["status"] = p.Status
	}
	if p.GroupID != "" {
		body["group_id"] = p.GroupID
	}
	if p.IsMultiStep {
		body["is_multi_step"] = true
		body["steps"] = p.Steps
	}
	return body
}

// UpdateParams carries a partial form update. Nil fields are omitted from
// the request body.
type UpdateParams struct {
	Name        *string
	Title       *string
	Description *string
	Fields      *[]Field
	Status      *string
	GroupID     *string
	IsMultiStep *bool
	Steps       *[]Step
	Settings    *Settings
}

func (p UpdateParams) body() map[string]any {
	body := map[string]any{}
	if p.Name != nil {
		body["name"] = *p.Name
	}
	if p.Title != nil {
		body["title"] = *p.Title
	}
	if p.Description != nil {
		body["description"] = *p.Description
	}
	if p.Fields != nil {
		body["fields"] = *p.Fields
	}
	if p.Status != nil {
		body["status"] = *p.Status
	}
	if p.GroupID != nil {
		body["group_id"] = *p.GroupID
	}
	if p.IsMultiStep != nil {
		body["is_multi_step"] = *p.IsMultiStep
	}
	if p.Steps != nil {
		body["steps"] = *p.Steps
	}
	if p.Settings != nil {
		body["settings"] = *p.Settings
	}
	return body
}

func (s *Service) List(ctx context.Context) ([]Form, error) {
	var env itemsEnvelope
	if err := s.client.Do(ctx, "GET", "/forms", nil, &env); err != nil {
		return nil, err
	}
	out := make([]Form, 0, len(env.Items))
	for _, item := range env.Items {
		out = append(out, Normalize(item))
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id string) (Form, error) {
	var raw normalize.Raw
	if err := s.client.Do(ctx, "GET", "/forms/"+id, nil, &raw); err != nil {
		return Form{}, err
	}
	return Normalize(raw), nil
}

// GetPublic fetches the unauthenticated render payload for a form.
func (s *Service) GetPublic(ctx context.Context, id string) (Form, error) {
	var raw normalize.Raw
	if err := s.client.Do(ctx, "GET", "/forms/"+id+"/public", nil, &raw); err != nil {
		return Form{}, err
	}
	return Normalize(raw), nil
}

func (s *Service) Create(ctx context.Context, params CreateParams) (Form, error) {
	var raw normalize.Raw
	if err := s.client.Do(ctx, "POST", "/forms", params.body(), &raw); err != nil {
		return Form{}, err
	}
	return Normalize(raw), nil
}

func (s *Service) Update(ctx context.Context, id string, params UpdateParams) (Form, error) {
	var raw normalize.Raw
	if err := s.client.Do(ctx, "PUT", "/forms/"+id, params.body(), &raw); err != nil {
		return Form{}, err
	}
	return Normalize(raw), nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.client.Do(ctx, "DELETE", "/forms/"+id, nil, nil)
}

// Submit posts a public form submission.
func (s *Service) Submit(ctx context.Context, formID string, data map[string]any) (Response, error) {
	var raw normalize.Raw
	body := map[string]any{"response_data": data}
	if err := s.client.Do(ctx, "POST", "/forms/"+formID+"/submit", body, &raw); err != nil {
		return Response{}, err
	}
	return normalizeResponse(raw), nil
}

// Responses lists submissions for one form.
func (s *Service) Responses(ctx context.Context, formID string) ([]Response, error) {
	var raws []normalize.Raw
	if err := s.client.Do(ctx, "GET", "/forms/"+formID+"/responses", nil, &raws); err != nil {
		return nil, err
	}
	out := make([]Response, 0, len(raws))
	for _, raw := range raws {
		out = append(out, normalizeResponse(raw))
	}
	return out, nil
}

// ResponseFilter narrows the cross-form response listing.
type ResponseFilter struct {
	FormID    string
	GroupID   string
	Query     string
	DateFrom  string
	DateTo    string
	IsRead    *bool
	IsStarred *bool
	Limit     int
	Offset    int
}

// ResponsePage is a windowed slice of responses across all forms.
type ResponsePage struct {
	Items  []Response `json:"items"`
	Total  int        `json:"total"`
	Limit  int        `json:"limit"`
	Offset int        `json:"offset"`
}

// AllResponses lists submissions across every form, newest first.
func (s *Service) AllResponses(ctx context.Context, filter ResponseFilter) (ResponsePage, error) {
	params := map[string]any{}
	if filter.FormID != "" {
		params["form_id"] = filter.FormID
	}
	if filter.GroupID != "" {
		params["group_id"] = filter.GroupID
	}
	if filter.Query != "" {
		params["q"] = filter.Query
	}
	if filter.DateFrom != "" {
		params["date_from"] = filter.DateFrom
	}
	if filter.DateTo != "" {
		params["date_to"] = filter.DateTo
	}
	if filter.IsRead != nil {
		params["is_read"] = *filter.IsRead
	}
	if filter.IsStarred != nil {
		params["is_starred"] = *filter.IsStarred
	}
	if filter.Limit > 0 {
		params["limit"] = filter.Limit
	}
	if filter.Offset > 0 {
		params["offset"] = filter.Offset
	}

	var env struct {
		Items  []normalize.Raw `json:"items"`
		Total  int             `json:"total"`
		Limit  int             `json:"limit"`
		Offset int             `json:"offset"`
	}
	if err := s.client.Do(ctx, "GET", "/form-responses"+transport.Query(params), nil, &env); err != nil {
		return ResponsePage{}, err
	}
	page := ResponsePage{Total: env.Total, Limit: env.Limit, Offset: env.Offset}
	for _, item := range env.Items {
		page.Items = append(page.Items, normalizeResponse(item))
	}
	return page, nil
}

// UpdateResponse toggles the read or starred flag on a submission.
func (s *Service) UpdateResponse(ctx context.Context, responseID string, isRead, isStarred *bool) error {
	body := map[string]any{}
	if isRead != nil {
		body["is_read"] = *isRead
	}
	if isStarred != nil {
		body["is_starred"] = *isStarred
	}
	return s.client.Do(ctx, "PUT", "/form-responses/"+responseID, body, nil)
}

func (s *Service) DeleteResponse(ctx context.Context, responseID string) error {
	return s.client.Do(ctx, "DELETE", "/form-responses/"+responseID, nil, nil)
}

// BulkUpdateResponses applies one action to a batch of submissions. Action is
// one of mark_read, mark_unread, star, unstar or delete.
func (s *Service) BulkUpdateResponses(ctx context.Context, responseIDs []string, action string) (int, error) {
	var out struct {
		Message string `json:"message"`
		Count   int    `json:"count"`
	}
	body := map[string]any{"response_ids": responseIDs, "action": action}
	if err := s.client.Do(ctx, "POST", "/form-responses/bulk", body, &out); err != nil {
		return 0, err
	}
	return out.Count, nil
}

// NotificationSettings is the tenant-wide form notification configuration.
type NotificationSettings struct {
	EnableNotifications  bool   `json:"enableNotifications"`
	NotificationEmail    string `json:"notificationEmail"`
	AutoReplyEnabled     bool   `json:"autoReplyEnabled"`
	AutoReplySubject     string `json:"autoReplySubject"`
	AutoReplyMessage     string `json:"autoReplyMessage"`
	EnableSpamProtection bool   `json:"enableSpamProtection"`
	SpamKeywords         string `json:"spamKeywords"`
	EnableFileUploads    bool   `json:"enableFileUploads"`
	MaxFileSize          int    `json:"maxFileSize"`
	AllowedFileTypes     string `json:"allowedFileTypes"`
}

// DefaultNotificationSettings returns the values served when the backend has
// no saved configuration or cannot be reached.
func DefaultNotificationSettings() NotificationSettings {
	return NotificationSettings{
		EnableNotifications:  true,
		NotificationEmail:    "",
		AutoReplyEnabled:     true,
		AutoReplySubject:     "Thank you for your submission",
		AutoReplyMessage:     "Thank you for your submission. We will get back to you soon.",
		EnableSpamProtection: true,
		SpamKeywords:         "spam, viagra, casino",
		EnableFileUploads:    false,
		MaxFileSize:          10,
		AllowedFileTypes:     "pdf,doc,docx,jpg,png",
	}
}

// GetSettings fetches the tenant form settings, falling back to defaults when
// the backend is unavailable.
func (s *Service) GetSettings(ctx context.Context) NotificationSettings {
	return settings.Fallback(ctx, s.logger, "form settings", func(ctx context.Context) (NotificationSettings, error) {
		var raw normalize.Raw
		if err := s.client.Do(ctx, "GET", "/form-settings", nil, &raw); err != nil {
			return NotificationSettings{}, err
		}
		def := DefaultNotificationSettings()
		return NotificationSettings{
			EnableNotifications:  normalize.Bool(raw, def.EnableNotifications, "enableNotifications"),
			NotificationEmail:    normalize.Str(raw, "notificationEmail"),
			AutoReplyEnabled:     normalize.Bool(raw, def.AutoReplyEnabled, "autoReplyEnabled"),
			AutoReplySubject:     normalize.StrOr(raw, def.AutoReplySubject, "autoReplySubject"),
			AutoReplyMessage:     normalize.StrOr(raw, def.AutoReplyMessage, "autoReplyMessage"),
			EnableSpamProtection: normalize.Bool(raw, def.EnableSpamProtection, "enableSpamProtection"),
			SpamKeywords:         normalize.StrOr(raw, def.SpamKeywords, "spamKeywords"),
			EnableFileUploads:    normalize.Bool(raw, def.EnableFileUploads, "enableFileUploads"),
			MaxFileSize:          normalize.Int(raw, def.MaxFileSize, "maxFileSize"),
			AllowedFileTypes:     normalize.StrOr(raw, def.AllowedFileTypes, "allowedFileTypes"),
		}, nil
	}, DefaultNotificationSettings)
}

// UpdateSettings writes the tenant form settings. Nil fields are omitted.
type SettingsUpdate struct {
	EnableNotifications  *bool
	NotificationEmail    *string
	AutoReplyEnabled     *bool
	AutoReplySubject     *string
	AutoReplyMessage     *string
	EnableSpamProtection *bool
	SpamKeywords         *string
	EnableFileUploads    *bool
	MaxFileSize          *int
	AllowedFileTypes     *string
}

func (s *Service) UpdateSettings(ctx context.Context, params SettingsUpdate) error {
	body := map[string]any{}
	if params.EnableNotifications != nil {
		body["enableNotifications"] = *params.EnableNotifications
	}
	if params.NotificationEmail != nil {
		body["notificationEmail"] = *params.NotificationEmail
	}
	if params.AutoReplyEnabled != nil {
		body["autoReplyEnabled"] = *params.AutoReplyEnabled
	}
	if params.AutoReplySubject != nil {
		body["autoReplySubject"] = *params.AutoReplySubject
	}
	if params.AutoReplyMessage != nil {
		body["autoReplyMessage"] = *params.AutoReplyMessage
	}
	if params.EnableSpamProtection != nil {
		body["enableSpamProtection"] = *params.EnableSpamProtection
	}
	if params.SpamKeywords != nil {
		body["spamKeywords"] = *params.SpamKeywords
	}
	if params.EnableFileUploads != nil {
		body["enableFileUploads"] = *params.EnableFileUploads
	}
	if params.MaxFileSize != nil {
		body["maxFileSize"] = *params.MaxFileSize
	}
	if params.AllowedFileTypes != nil {
		body["allowedFileTypes"] = *params.AllowedFileTypes
	}
	return s.client.Do(ctx, "PUT", "/form-settings", body, nil)
}
