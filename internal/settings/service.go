// SPDX-License-Identifier: MIT

package settings

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/ronittamrakar/xordon-go/internal/log"
	"github.com/ronittamrakar/xordon-go/internal/normalize"
	"github.com/ronittamrakar/xordon-go/internal/transport"
)

// APIKeys holds third-party provider credentials.
type APIKeys struct {
	OpenAI   string `json:"openai"`
	SendGrid string `json:"sendgrid"`
	Stripe   string `json:"stripe"`
}

// Webhooks holds outbound notification endpoints.
type Webhooks struct {
	FormSubmission string `json:"formSubmission"`
	EmailBounce    string `json:"emailBounce"`
	Unsubscribe    string `json:"unsubscribe"`
}

// Settings is the workspace-level configuration document, fully populated.
type Settings struct {
	WarmupEnabled         bool       `json:"warmupEnabled"`
	AutoReplyDetection    bool       `json:"autoReplyDetection"`
	TrackOpens            bool       `json:"trackOpens"`
	TrackClicks           bool       `json:"trackClicks"`
	NotifyCampaignUpdates bool       `json:"notifyCampaignUpdates"`
	NotifyDailySummary    bool       `json:"notifyDailySummary"`
	APIKeys               APIKeys    `json:"apiKeys"`
	Webhooks              Webhooks   `json:"webhooks"`
	SendingWindowStart    string     `json:"sendingWindowStart"`
	SendingWindowEnd      string     `json:"sendingWindowEnd"`
	Timezone              string     `json:"timezone"`
	EmailDelay            int        `json:"emailDelay"`
	BatchSize             int        `json:"batchSize"`
	Priority              string     `json:"priority"`
	RetryAttempts         int        `json:"retryAttempts"`
	PauseBetweenBatches   int        `json:"pauseBetweenBatches"`
	RespectSendingWindow  bool       `json:"respectSendingWindow"`
	EmailAccount          string     `json:"emailAccount"`
	UnsubscribeText       string     `json:"unsubscribeText"`
	FooterText            string     `json:"footerText"`
	AI                    AISettings `json:"ai"`
}

// Default returns the hard-coded settings served when the backend is
// unreachable.
func Default() Settings {
	return Settings{
		WarmupEnabled:        true,
		AutoReplyDetection:   true,
		TrackOpens:           true,
		TrackClicks:          true,
		SendingWindowStart:   "09:00",
		SendingWindowEnd:     "17:00",
		Timezone:             "UTC",
		EmailDelay:           30,
		BatchSize:            50,
		Priority:             "follow_ups_first",
		RetryAttempts:        3,
		PauseBetweenBatches:  300,
		RespectSendingWindow: true,
		EmailAccount:         "default",
		UnsubscribeText:      "If you no longer wish to receive these emails, you can unsubscribe here.",
		FooterText:           "This email was sent by {company_name}. You received this email because you signed up for our newsletter.",
		AI:                   DefaultAI(),
	}
}

// Format reshapes the raw backend document into a fully-populated Settings.
func Format(raw normalize.Raw) Settings {
	def := Default()
	apiKeys := normalize.Map(raw, "api_keys")
	webhooks := normalize.Map(raw, "webhooks")
	return Settings{
		WarmupEnabled:         normalize.Bool(raw, def.WarmupEnabled, "warmup_enabled"),
		AutoReplyDetection:    normalize.Bool(raw, def.AutoReplyDetection, "auto_reply_detection"),
		TrackOpens:            normalize.Bool(raw, def.TrackOpens, "open_tracking_enabled"),
		TrackClicks:           normalize.Bool(raw, def.TrackClicks, "click_tracking_enabled"),
		NotifyCampaignUpdates: normalize.Bool(raw, def.NotifyCampaignUpdates, "notify_campaign_updates"),
		NotifyDailySummary:    normalize.Bool(raw, def.NotifyDailySummary, "notify_daily_summary"),
		APIKeys: APIKeys{
			OpenAI:   normalize.Str(apiKeys, "openai"),
			SendGrid: normalize.Str(apiKeys, "sendgrid"),
			Stripe:   normalize.Str(apiKeys, "stripe"),
		},
		Webhooks: Webhooks{
			FormSubmission: normalize.Str(webhooks, "form_submission"),
			EmailBounce:    normalize.Str(webhooks, "email_bounce"),
			Unsubscribe:    normalize.Str(webhooks, "unsubscribe"),
		},
		SendingWindowStart:   normalize.StrOr(raw, def.SendingWindowStart, "sendingWindowStart"),
		SendingWindowEnd:     normalize.StrOr(raw, def.SendingWindowEnd, "sendingWindowEnd"),
		Timezone:             normalize.StrOr(raw, def.Timezone, "timezone"),
		EmailDelay:           normalize.Int(raw, def.EmailDelay, "emailDelay"),
		BatchSize:            normalize.Int(raw, def.BatchSize, "batchSize"),
		Priority:             normalize.StrOr(raw, def.Priority, "priority"),
		RetryAttempts:        normalize.Int(raw, def.RetryAttempts, "retryAttempts"),
		PauseBetweenBatches:  normalize.Int(raw, def.PauseBetweenBatches, "pauseBetweenBatches"),
		RespectSendingWindow: normalize.Bool(raw, def.RespectSendingWindow, "respectSendingWindow"),
		EmailAccount:         normalize.StrOr(raw, def.EmailAccount, "emailAccount"),
		UnsubscribeText:      normalize.StrOr(raw, def.UnsubscribeText, "unsubscribeText"),
		FooterText:           normalize.StrOr(raw, def.FooterText, "footerText"),
		AI:                   FormatAI(normalize.Map(raw, "ai")),
	}
}

// UpdateParams carries a partial settings write; nil fields are omitted from
// the outgoing body so the backend's partial-update semantics hold.
type UpdateParams struct {
	WarmupEnabled         *bool
	AutoReplyDetection    *bool
	TrackOpens            *bool
	TrackClicks           *bool
	NotifyCampaignUpdates *bool
	NotifyDailySummary    *bool
	APIKeys               map[string]string
	Webhooks              map[string]string
	AI                    *AISettings
}

func (p UpdateParams) body() map[string]any {
	body := map[string]any{}
	setBool := func(key string, v *bool) {
		if v != nil {
			body[key] = *v
		}
	}
	setBool("warmup_enabled", p.WarmupEnabled)
	setBool("auto_reply_detection", p.AutoReplyDetection)
	setBool("open_tracking_enabled", p.TrackOpens)
	setBool("click_tracking_enabled", p.TrackClicks)
	setBool("notify_campaign_updates", p.NotifyCampaignUpdates)
	setBool("notify_daily_summary", p.NotifyDailySummary)
	if len(p.APIKeys) > 0 {
		body["api_keys"] = p.APIKeys
	}
	if len(p.Webhooks) > 0 {
		body["webhooks"] = p.Webhooks
	}
	if p.AI != nil {
		body["ai"] = p.AI
	}
	return body
}

// Service is the settings façade.
type Service struct {
	client *transport.Client
	logger zerolog.Logger
}

// NewService wraps the shared transport.
func NewService(client *transport.Client) *Service {
	return &Service{client: client, logger: log.WithComponent("settings")}
}

// Get fetches workspace settings. On any transport failure it serves the
// hard-coded defaults instead of failing the settings surface.
func (s *Service) Get(ctx context.Context) Settings {
	return Fallback(ctx, s.logger, "/settings", func(ctx context.Context) (Settings, error) {
		var raw normalize.Raw
		if err := s.client.Do(ctx, "GET", "/settings", nil, &raw); err != nil {
			return Settings{}, err
		}
		return Format(raw), nil
	}, Default)
}

// Update writes a partial settings document and returns the formatted result.
func (s *Service) Update(ctx context.Context, params UpdateParams) (Settings, error) {
	var raw normalize.Raw
	if err := s.client.Do(ctx, "PUT", "/settings", params.body(), &raw); err != nil {
		return Settings{}, err
	}
	return Format(raw), nil
}
