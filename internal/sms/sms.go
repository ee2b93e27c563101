// SPDX-License-Identifier: MIT

// Package sms wraps the SMS campaign endpoints and the provider-level SMS
// settings.
package sms

import (
	"context"

	"github.com/ronittamrakar/xordon-go/internal/normalize"
	"github.com/ronittamrakar/xordon-go/internal/transport"
)

// Campaign status values. SMS campaigns share the email lifecycle plus the
// transient "sent" state the SMS worker reports.
const (
	StatusDraft     = "draft"
	StatusActive    = "active"
	StatusPaused    = "paused"
	StatusCompleted = "completed"
	StatusScheduled = "scheduled"
	StatusSending   = "sending"
	StatusSent      = "sent"
	StatusArchived  = "archived"
	StatusTrashed   = "trashed"
)

// Campaign is a normalized SMS campaign.
type Campaign struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Description       string   `json:"description,omitempty"`
	Message           string   `json:"message"`
	Status            string   `json:"status"`
	SenderID          string   `json:"senderId,omitempty"`
	RecipientMethod   string   `json:"recipientMethod"`
	RecipientTags     []string `json:"recipientTags,omitempty"`
	ScheduledAt       string   `json:"scheduledAt,omitempty"`
	ThrottleRate      int      `json:"throttleRate"`
	ThrottleUnit      string   `json:"throttleUnit"`
	EnableRetry       bool     `json:"enableRetry"`
	RetryAttempts     int      `json:"retryAttempts"`
	RespectQuietHours bool     `json:"respectQuietHours"`
	QuietHoursStart   string   `json:"quietHoursStart"`
	QuietHoursEnd     string   `json:"quietHoursEnd"`
	GroupID           string   `json:"groupId,omitempty"`
	GroupName         string   `json:"groupName,omitempty"`
	Timezone          string   `json:"timezone,omitempty"`
	RecipientCount    int      `json:"recipientCount"`
	SentCount         int      `json:"sentCount"`
	DeliveredCount    int      `json:"deliveredCount"`
	FailedCount       int      `json:"failedCount"`
	ReplyCount        int      `json:"replyCount"`
	CreatedAt         string   `json:"createdAt"`
	UpdatedAt         string   `json:"updatedAt"`
}

// Normalize maps a raw SMS campaign payload. Status defaults to draft,
// counters to zero and the throttle to one message per minute.
func Normalize(raw normalize.Raw) Campaign {
	return Campaign{
		ID:                normalize.ID(raw, "id"),
		Name:              normalize.Str(raw, "name"),
		Description:       normalize.Str(raw, "description"),
		Message:           normalize.Str(raw, "message"),
		Status:            normalize.StrOr(raw, StatusDraft, "status"),
		SenderID:          normalize.ID(raw, "sender_id", "senderId"),
		RecipientMethod:   normalize.StrOr(raw, "manual", "recipient_method", "recipientMethod"),
		RecipientTags:     normalize.Strings(raw, "recipient_tags", "recipientTags"),
		ScheduledAt:       normalize.Str(raw, "scheduled_at", "scheduledAt"),
		ThrottleRate:      normalize.Int(raw, 1, "throttle_rate", "throttleRate"),
		ThrottleUnit:      normalize.StrOr(raw, "minute", "throttle_unit", "throttleUnit"),
		EnableRetry:       normalize.Bool(raw, false, "enable_retry", "enableRetry"),
		RetryAttempts:     normalize.Int(raw, 0, "retry_attempts", "retryAttempts"),
		RespectQuietHours: normalize.Bool(raw, false, "respect_quiet_hours", "respectQuietHours"),
		QuietHoursStart:   normalize.Str(raw, "quiet_hours_start", "quietHoursStart"),
		QuietHoursEnd:     normalize.Str(raw, "quiet_hours_end", "quietHoursEnd"),
		GroupID:           normalize.ID(raw, "group_id", "groupId"),
		GroupName:         normalize.Str(raw, "group_name", "groupName"),
		Timezone:          normalize.Str(raw, "timezone"),
		RecipientCount:    normalize.Int(raw, 0, "recipient_count", "recipientCount"),
		SentCount:         normalize.Int(raw, 0, "sent_count", "sentCount"),
		DeliveredCount:    normalize.Int(raw, 0, "delivered_count", "deliveredCount"),
		FailedCount:       normalize.Int(raw, 0, "failed_count", "failedCount"),
		ReplyCount:        normalize.Int(raw, 0, "reply_count", "replyCount"),
		CreatedAt:         normalize.Str(raw, "created_at", "createdAt"),
		UpdatedAt:         normalize.Str(raw, "updated_at", "updatedAt"),
	}
}

// Settings is the provider configuration for outbound SMS.
type Settings struct {
	SignalwireProjectID string `json:"signalwireProjectId"`
	SignalwireSpaceURL  string `json:"signalwireSpaceUrl"`
	SignalwireAPIToken  string `json:"signalwireApiToken"`
	DefaultSenderNumber string `json:"defaultSenderNumber"`
	QuietHoursStart     string `json:"quietHoursStart"`
	QuietHoursEnd       string `json:"quietHoursEnd"`
	RetryAttempts       int    `json:"retryAttempts"`
	RetryDelay          int    `json:"retryDelay"`
	UnsubscribeKeywords string `json:"unsubscribeKeywords"`
	AverageDelay        int    `json:"averageDelay"`
	SendingPriority     string `json:"sendingPriority"`
	Timezone            string `json:"timezone"`
	EnableQuietHours    bool   `json:"enableQuietHours"`
	EnableRetries       bool   `json:"enableRetries"`
}

// Account is a connected SMS provider account.
type Account struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Type           string         `json:"type"`
	PhoneNumber    string         `json:"phoneNumber"`
	Status         string         `json:"status"`
	ProviderConfig map[string]any `json:"providerConfig,omitempty"`
}

// Service exposes the SMS API.
type Service struct {
	client *transport.Client
}

func NewService(client *transport.Client) *Service {
	return &Service{client: client}
}

// List returns all SMS campaigns. The endpoint wraps them in a campaigns
// envelope rather than the usual items one.
func (s *Service) List(ctx context.Context) ([]Campaign, error) {
	var env struct {
		Campaigns []normalize.Raw `json:"campaigns"`
	}
	if err := s.client.Do(ctx, "GET", "/sms-campaigns", nil, &env); err != nil {
		return nil, err
	}
	out := make([]Campaign, 0, len(env.Campaigns))
	for _, raw := range env.Campaigns {
		out = append(out, Normalize(raw))
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id string) (Campaign, error) {
	var raw normalize.Raw
	if err := s.client.Do(ctx, "GET", "/sms-campaigns/"+id, nil, &raw); err != nil {
		return Campaign{}, err
	}
	return Normalize(raw), nil
}

// CreateParams describes a new SMS campaign. Zero values are omitted so the
// backend applies its own defaults.
type CreateParams struct {
	Name              string
	Description       string
	Message           string
	SenderID          string
	RecipientMethod   string
	RecipientTags     []string
	ScheduledAt       string
	ThrottleRate      int
	ThrottleUnit      string
	EnableRetry       bool
	RetryAttempts     int
	RespectQuietHours bool
	QuietHoursStart   string
	QuietHoursEnd     string
	GroupID           string
	Timezone          string
}

func (p CreateParams) body() map[string]any {
	body := map[string]any{
		"name":    p.Name,
		"message": p.Message,
	}
	if p.Description != "" {
		body["description"] = p.Description
	}
	if p.SenderID != "" {
		body["sender_id"] = p.SenderID
	}
	if p.RecipientMethod != "" {
		body["recipient_method"] = p.RecipientMethod
	}
	if len(p.RecipientTags) > 0 {
		body["recipient_tags"] = p.RecipientTags
	}
	if p.ScheduledAt != "" {
		body["scheduled_at"] = p.ScheduledAt
	}
	if p.ThrottleRate > 0 {
		body["throttle_rate"] = p.ThrottleRate
	}
	if p.ThrottleUnit != "" {
		body["throttle_unit"] = p.ThrottleUnit
	}
	if p.EnableRetry {
		body["enable_retry"] = true
		body["retry_attempts"] = p.RetryAttempts
	}
	if p.RespectQuietHours {
		body["respect_quiet_hours"] = true
		body["quiet_hours_start"] = p.QuietHoursStart
		body["quiet_hours_end"] = p.QuietHoursEnd
	}
	if p.GroupID != "" {
		body["group_id"] = p.GroupID
	}
	if p.Timezone != "" {
		body["timezone"] = p.Timezone
	}
	return body
}

func (s *Service) Create(ctx context.Context, params CreateParams) (Campaign, error) {
	var raw normalize.Raw
	if err := s.client.Do(ctx, "POST", "/sms-campaigns", params.body(), &raw); err != nil {
		return Campaign{}, err
	}
	return Normalize(raw), nil
}

// UpdateParams carries a partial SMS campaign update.
type UpdateParams struct {
	Name              *string
	Description       *string
	Message           *string
	Status            *string
	SenderID          *string
	ScheduledAt       *string
	ThrottleRate      *int
	ThrottleUnit      *string
	EnableRetry       *bool
	RetryAttempts     *int
	RespectQuietHours *bool
	QuietHoursStart   *string
	QuietHoursEnd     *string
	GroupID           *string
	Timezone          *string
}

func (p UpdateParams) body() map[string]any {
	body := map[string]any{}
	if p.Name != nil {
		body["name"] = *p.Name
	}
	if p.Description != nil {
		body["description"] = *p.Description
	}
	if p.Message != nil {
		body["message"] = *p.Message
	}
	if p.Status != nil {
		body["status"] = *p.Status
	}
	if p.SenderID != nil {
		body["sender_id"] = *p.SenderID
	}
	if p.ScheduledAt != nil {
		body["scheduled_at"] = *p.ScheduledAt
	}
	if p.ThrottleRate != nil {
		body["throttle_rate"] = *p.ThrottleRate
	}
	if p.ThrottleUnit != nil {
		body["throttle_unit"] = *p.ThrottleUnit
	}
	if p.EnableRetry != nil {
		body["enable_retry"] = *p.EnableRetry
	}
	if p.RetryAttempts != nil {
		body["retry_attempts"] = *p.RetryAttempts
	}
	if p.RespectQuietHours != nil {
		body["respect_quiet_hours"] = *p.RespectQuietHours
	}
	if p.QuietHoursStart != nil {
		body["quiet_hours_start"] = *p.QuietHoursStart
	}
	if p.QuietHoursEnd != nil {
		body["quiet_hours_end"] = *p.QuietHoursEnd
	}
	if p.GroupID != nil {
		body["group_id"] = *p.GroupID
	}
	if p.Timezone != nil {
		body["timezone"] = *p.Timezone
	}
	return body
}

func (s *Service) Update(ctx context.Context, id string, params UpdateParams) (Campaign, error) {
	var raw normalize.Raw
	if err := s.client.Do(ctx, "PUT", "/sms-campaigns/"+id, params.body(), &raw); err != nil {
		return Campaign{}, err
	}
	return Normalize(raw), nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.client.Do(ctx, "DELETE", "/sms-campaigns/"+id, nil, nil)
}

// Send queues the campaign immediately and reports how many messages went out.
func (s *Service) Send(ctx context.Context, id string) (int, error) {
	var out struct {
		Message   string `json:"message"`
		SentCount int    `json:"sent_count"`
	}
	if err := s.client.Do(ctx, "POST", "/sms-campaigns/"+id+"/send", nil, &out); err != nil {
		return 0, err
	}
	return out.SentCount, nil
}

func (s *Service) Start(ctx context.Context, id string) error {
	return s.client.Do(ctx, "POST", "/sms-campaigns/"+id+"/start", nil, nil)
}

func (s *Service) Pause(ctx context.Context, id string) error {
	return s.client.Do(ctx, "POST", "/sms-campaigns/"+id+"/pause", nil, nil)
}

func (s *Service) Archive(ctx context.Context, id string) error {
	return s.client.Do(ctx, "POST", "/sms-campaigns/"+id+"/archive", nil, nil)
}

// SendTest delivers a single test message outside any campaign.
func (s *Service) SendTest(ctx context.Context, phoneNumber, message, senderNumber string) (string, error) {
	var out struct {
		Message    string `json:"message"`
		Status     string `json:"status"`
		ExternalID string `json:"external_id"`
	}
	body := map[string]any{
		"phone_number":  phoneNumber,
		"message":       message,
		"sender_number": senderNumber,
	}
	if err := s.client.Do(ctx, "POST", "/sms-campaigns/test", body, &out); err != nil {
		return "", err
	}
	return out.Status, nil
}

func (s *Service) GetSettings(ctx context.Context) (Settings, error) {
	var raw normalize.Raw
	if err := s.client.Do(ctx, "GET", "/sms-settings", nil, &raw); err != nil {
		return Settings{}, err
	}
	return Settings{
		SignalwireProjectID: normalize.Str(raw, "signalwireProjectId"),
		SignalwireSpaceURL:  normalize.Str(raw, "signalwireSpaceUrl"),
		SignalwireAPIToken:  normalize.Str(raw, "signalwireApiToken"),
		DefaultSenderNumber: normalize.Str(raw, "defaultSenderNumber"),
		QuietHoursStart:     normalize.StrOr(raw, "21:00", "quietHoursStart"),
		QuietHoursEnd:       normalize.StrOr(raw, "09:00", "quietHoursEnd"),
		RetryAttempts:       normalize.Int(raw, 3, "retryAttempts"),
		RetryDelay:          normalize.Int(raw, 300, "retryDelay"),
		UnsubscribeKeywords: normalize.StrOr(raw, "STOP, UNSUBSCRIBE", "unsubscribeKeywords"),
		AverageDelay:        normalize.Int(raw, 5, "averageDelay"),
		SendingPriority:     normalize.StrOr(raw, "normal", "sendingPriority"),
		Timezone:            normalize.StrOr(raw, "UTC", "timezone"),
		EnableQuietHours:    normalize.Bool(raw, false, "enableQuietHours"),
		EnableRetries:       normalize.Bool(raw, true, "enableRetries"),
	}, nil
}

// SettingsUpdate carries a partial SMS settings write.
type SettingsUpdate struct {
	SignalwireProjectID *string
	SignalwireSpaceURL  *string
	SignalwireAPIToken  *string
	DefaultSenderNumber *string
	QuietHoursStart     *string
	QuietHoursEnd       *string
	RetryAttempts       *int
	RetryDelay          *int
	UnsubscribeKeywords *string
	AverageDelay        *int
	SendingPriority     *string
	Timezone            *string
	EnableQuietHours    *bool
	EnableRetries       *bool
}

func (p SettingsUpdate) body() map[string]any {
	body := map[string]any{}
	if p.SignalwireProjectID != nil {
		body["signalwireProjectId"] = *p.SignalwireProjectID
	}
	if p.SignalwireSpaceURL != nil {
		body["signalwireSpaceUrl"] = *p.SignalwireSpaceURL
	}
	if p.SignalwireAPIToken != nil {
		body["signalwireApiToken"] = *p.SignalwireAPIToken
	}
	if p.DefaultSenderNumber != nil {
		body["defaultSenderNumber"] = *p.DefaultSenderNumber
	}
	if p.QuietHoursStart != nil {
		body["quietHoursStart"] = *p.QuietHoursStart
	}
	if p.QuietHoursEnd != nil {
		body["quietHoursEnd"] = *p.QuietHoursEnd
	}
	if p.RetryAttempts != nil {
		body["retryAttempts"] = *p.RetryAttempts
	}
	if p.RetryDelay != nil {
		body["retryDelay"] = *p.RetryDelay
	}
	if p.UnsubscribeKeywords != nil {
		body["unsubscribeKeywords"] = *p.UnsubscribeKeywords
	}
	if p.AverageDelay != nil {
		body["averageDelay"] = *p.AverageDelay
	}
	if p.SendingPriority != nil {
		body["sendingPriority"] = *p.SendingPriority
	}
	if p.Timezone != nil {
		body["timezone"] = *p.Timezone
	}
	if p.EnableQuietHours != nil {
		body["enableQuietHours"] = *p.EnableQuietHours
	}
	if p.EnableRetries != nil {
		body["enableRetries"] = *p.EnableRetries
	}
	return body
}

func (s *Service) UpdateSettings(ctx context.Context, params SettingsUpdate) error {
	return s.client.Do(ctx, "PUT", "/sms-settings", params.body(), nil)
}

// Accounts lists the connected provider accounts.
func (s *Service) Accounts(ctx context.Context) ([]Account, error) {
	var env struct {
		Accounts []normalize.Raw `json:"accounts"`
	}
	if err := s.client.Do(ctx, "GET", "/sms-accounts", nil, &env); err != nil {
		return nil, err
	}
	out := make([]Account, 0, len(env.Accounts))
	for _, raw := range env.Accounts {
		acct := Account{
			ID:          normalize.ID(raw, "id"),
			Name:        normalize.Str(raw, "name"),
			Type:        normalize.Str(raw, "type"),
			PhoneNumber: normalize.Str(raw, "phone_number", "phoneNumber"),
			Status:      normalize.Str(raw, "status"),
		}
		if cfg, ok := raw["provider_config"].(map[string]any); ok {
			acct.ProviderConfig = cfg
		}
		out = append(out, acct)
	}
	return out, nil
}
