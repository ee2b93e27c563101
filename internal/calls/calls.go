// SPDX-License-Identifier: MIT

// Package calls wraps the outbound calling endpoints: call campaigns, the
// dialer settings and call logging.
package calls

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ronittamrakar/xordon-go/internal/normalize"
	"github.com/ronittamrakar/xordon-go/internal/settings"
	"github.com/ronittamrakar/xordon-go/internal/transport"
)

// Campaign status values.
const (
	StatusDraft     = "draft"
	StatusActive    = "active"
	StatusPaused    = "paused"
	StatusCompleted = "completed"
	StatusArchived  = "archived"
	StatusTrashed   = "trashed"
)

// settingsCooldown throttles repeated settings fetches; within the window
// the cached copy is returned without touching the backend.
const settingsCooldown = 30 * time.Second

// CampaignSettings is the per-campaign dialer configuration.
type CampaignSettings struct {
	CallerID            string `json:"callerId"`
	CallTimeout         int    `json:"callTimeout"`
	VoicemailDetection  bool   `json:"voicemailDetection"`
	RecordingEnabled    bool   `json:"recordingEnabled"`
	MaxAttempts         int    `json:"maxAttempts"`
	DelayBetweenCalls   int    `json:"delayBetweenCalls"`
	RespectCallingHours bool   `json:"respectCallingHours"`
	CallingHoursStart   string `json:"callingHoursStart"`
	CallingHoursEnd     string `json:"callingHoursEnd"`
	Timezone            string `json:"timezone"`
	WeekdaysOnly        bool   `json:"weekdaysOnly"`
}

// Campaign is a normalized call campaign.
type Campaign struct {
	ID              string            `json:"id"`
	Name            string            `json:"name"`
	Description     string            `json:"description,omitempty"`
	Status          string            `json:"status"`
	CallerID        string            `json:"callerId,omitempty"`
	CallProvider    string            `json:"callProvider,omitempty"`
	CallScript      string            `json:"callScript,omitempty"`
	AgentID         string            `json:"agentId,omitempty"`
	AgentName       string            `json:"agentName,omitempty"`
	SequenceID      string            `json:"sequenceId,omitempty"`
	SequenceMode    string            `json:"sequenceMode,omitempty"`
	GroupID         string            `json:"groupId,omitempty"`
	GroupName       string            `json:"groupName,omitempty"`
	ScheduledAt     string            `json:"scheduledAt,omitempty"`
	RecipientCount  int               `json:"recipientCount"`
	CompletedCalls  int               `json:"completedCalls"`
	SuccessfulCalls int               `json:"successfulCalls"`
	FailedCalls     int               `json:"failedCalls"`
	AnsweredCalls   int               `json:"answeredCalls"`
	VoicemailCalls  int               `json:"voicemailCalls"`
	BusyCalls       int               `json:"busyCalls"`
	NoAnswerCalls   int               `json:"noAnswerCalls"`
	Settings        *CampaignSettings `json:"settings,omitempty"`
	CreatedAt       string            `json:"createdAt"`
	UpdatedAt       string            `json:"updatedAt"`
}

// Normalize maps a raw call campaign payload. Status defaults to draft and
// every call counter to zero.
func Normalize(raw normalize.Raw) Campaign {
	c := Campaign{
		ID:              normalize.ID(raw, "id"),
		Name:            normalize.Str(raw, "name"),
		Description:     normalize.Str(raw, "description"),
		Status:          normalize.StrOr(raw, StatusDraft, "status"),
		CallerID:        normalize.Str(raw, "caller_id", "callerId"),
		CallProvider:    normalize.Str(raw, "call_provider", "callProvider"),
		CallScript:      normalize.Str(raw, "call_script", "callScript"),
		AgentID:         normalize.ID(raw, "agent_id", "agentId"),
		AgentName:       normalize.Str(raw, "agent_name", "agentName"),
		SequenceID:      normalize.ID(raw, "sequence_id", "sequenceId"),
		SequenceMode:    normalize.Str(raw, "sequence_mode", "sequenceMode"),
		GroupID:         normalize.ID(raw, "group_id", "groupId"),
		GroupName:       normalize.Str(raw, "group_name", "groupName"),
		ScheduledAt:     normalize.Str(raw, "scheduled_at", "scheduledAt"),
		RecipientCount:  normalize.Int(raw, 0, "recipient_count", "total_recipients"),
		CompletedCalls:  normalize.Int(raw, 0, "completed_calls"),
		SuccessfulCalls: normalize.Int(raw, 0, "successful_calls"),
		FailedCalls:     normalize.Int(raw, 0, "failed_calls"),
		AnsweredCalls:   normalize.Int(raw, 0, "answered_calls"),
		VoicemailCalls:  normalize.Int(raw, 0, "voicemail_calls"),
		BusyCalls:       normalize.Int(raw, 0, "busy_calls"),
		NoAnswerCalls:   normalize.Int(raw, 0, "no_answer_calls"),
		CreatedAt:       normalize.Str(raw, "created_at", "createdAt"),
		UpdatedAt:       normalize.Str(raw, "updated_at", "updatedAt"),
	}
	if s, ok := raw["settings"].(map[string]any); ok {
		c.Settings = &CampaignSettings{
			CallerID:            normalize.Str(s, "caller_id"),
			CallTimeout:         normalize.Int(s, 30, "call_timeout"),
			VoicemailDetection:  normalize.Bool(s, false, "voicemail_detection"),
			RecordingEnabled:    normalize.Bool(s, false, "recording_enabled"),
			MaxAttempts:         normalize.Int(s, 1, "max_attempts"),
			DelayBetweenCalls:   normalize.Int(s, 0, "delay_between_calls"),
			RespectCallingHours: normalize.Bool(s, false, "respect_calling_hours"),
			CallingHoursStart:   normalize.Str(s, "calling_hours_start"),
			CallingHoursEnd:     normalize.Str(s, "calling_hours_end"),
			Timezone:            normalize.StrOr(s, "UTC", "timezone"),
			WeekdaysOnly:        normalize.Bool(s, false, "weekdays_only"),
		}
	}
	return c
}

// Settings is the tenant-wide dialer configuration, including the SIP and
// WebRTC transport fields used by the in-browser softphone.
type Settings struct {
	Provider            string   `json:"provider"`
	DefaultCallerID     string   `json:"defaultCallerId"`
	CallingHoursStart   string   `json:"callingHoursStart"`
	CallingHoursEnd     string   `json:"callingHoursEnd"`
	Timezone            string   `json:"timezone"`
	MaxRetries          int      `json:"maxRetries"`
	RetryDelay          int      `json:"retryDelay"`
	CallTimeout         int      `json:"callTimeout"`
	RecordingEnabled    bool     `json:"recordingEnabled"`
	VoicemailEnabled    bool     `json:"voicemailEnabled"`
	AutoDialingEnabled  bool     `json:"autoDialingEnabled"`
	CallQueueSize       int      `json:"callQueueSize"`
	WorkingHoursEnabled bool     `json:"workingHoursEnabled"`
	WorkingDays         []string `json:"workingDays"`
	CallDelay           int      `json:"callDelay"`
	MaxCallsPerHour     int      `json:"maxCallsPerHour"`
	CallSpacing         int      `json:"callSpacing"`
	DNCCheckEnabled     bool     `json:"dncCheckEnabled"`
	ConsentRequired     bool     `json:"consentRequired"`
	AutoOptOut          bool     `json:"autoOptOut"`
	ConsentMessage      string   `json:"consentMessage"`
	SIPEnabled          bool     `json:"sipEnabled"`
	SIPServer           string   `json:"sipServer"`
	SIPPort             int      `json:"sipPort"`
	SIPUsername         string   `json:"sipUsername"`
	SIPPassword         string   `json:"sipPassword"`
	SIPDomain           string   `json:"sipDomain"`
	SIPTransport        string   `json:"sipTransport"`
	STUNServer          string   `json:"stunServer"`
	TURNServer          string   `json:"turnServer"`
	TURNUsername        string   `json:"turnUsername"`
	TURNPassword        string   `json:"turnPassword"`
	WebRTCEnabled       bool     `json:"webrtcEnabled"`
	AutoAnswer          bool     `json:"autoAnswer"`
	DTMFType            string   `json:"dtmfType"`
	DefaultCountry      string   `json:"defaultCountry"`
}

// DefaultSettings returns the values served when the backend has no saved
// dialer configuration or cannot be reached.
func DefaultSettings() Settings {
	return Settings{
		Provider:          "twilio",
		CallingHoursStart: "09:00",
		CallingHoursEnd:   "17:00",
		Timezone:          "UTC",
		MaxRetries:        3,
		RetryDelay:        300,
		CallTimeout:       30,
		CallQueueSize:     10,
		WorkingDays:       []string{"monday", "tuesday", "wednesday", "thursday", "friday"},
		MaxCallsPerHour:   60,
		CallSpacing:       30,
		SIPPort:           5060,
		SIPTransport:      "udp",
		DTMFType:          "rfc2833",
		DefaultCountry:    "US",
	}
}

// LogEntry records a finished call.
type LogEntry struct {
	SessionID    string
	Duration     int
	Outcome      string
	RecordingURL string
	CampaignID   string
	RecipientID  string
	PhoneNumber  string
	Agent        string
}

// Service exposes the calls API.
type Service struct {
	client *transport.Client
	logger zerolog.Logger

	mu            sync.Mutex
	lastFetch     time.Time
	cachedSetting Settings
	haveCached    bool
}

func NewService(client *transport.Client, logger zerolog.Logger) *Service {
	return &Service{client: client, logger: logger}
}

func (s *Service) List(ctx context.Context) ([]Campaign, error) {
	var raws []normalize.Raw
	if err := s.client.Do(ctx, "GET", "/calls/campaigns", nil, &raws); err != nil {
		return nil, err
	}
	out := make([]Campaign, 0, len(raws))
	for _, raw := range raws {
		out = append(out, Normalize(raw))
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id string) (Campaign, error) {
	var raw normalize.Raw
	if err := s.client.Do(ctx, "GET", "/calls/campaigns/"+id, nil, &raw); err != nil {
		return Campaign{}, err
	}
	return Normalize(raw), nil
}

// CreateParams describes a new call campaign.
type CreateParams struct {
	Name         string
	Description  string
	CallerID     string
	CallProvider string
	CallScript   string
	AgentID      string
	SequenceID   string
	SequenceMode string
	GroupID      string
	ScheduledAt  string
	Settings     *CampaignSettings
}

func (p CreateParams) body() map[string]any {
	body := map[string]any{"name": p.Name}
	if p.Description != "" {
		body["description"] = p.Description
	}
	if p.CallerID != "" {
		body["caller_id"] = p.CallerID
	}
	if p.CallProvider != "" {
		body["call_provider"] = p.CallProvider
	}
	if p.CallScript != "" {
		body["call_script"] = p.CallScript
	}
	if p.AgentID != "" {
		body["agent_id"] = p.AgentID
	}
	if p.SequenceID != "" {
		body["sequence_id"] = p.SequenceID
	}
	if p.SequenceMode != "" {
		body["sequence_mode"] = p.SequenceMode
	}
	if p.GroupID != "" {
		body["group_id"] = p.GroupID
	}
	if p.ScheduledAt != "" {
		body["scheduled_at"] = p.ScheduledAt
	}
	if p.Settings != nil {
		body["settings"] = map[string]any{
			"caller_id":             p.Settings.CallerID,
			"call_timeout":          p.Settings.CallTimeout,
			"voicemail_detection":   p.Settings.VoicemailDetection,
			"recording_enabled":     p.Settings.RecordingEnabled,
			"max_attempts":          p.Settings.MaxAttempts,
			"delay_between_calls":   p.Settings.DelayBetweenCalls,
			"respect_calling_hours": p.Settings.RespectCallingHours,
			"calling_hours_start":   p.Settings.CallingHoursStart,
			"calling_hours_end":     p.Settings.CallingHoursEnd,
			"timezone":              p.Settings.Timezone,
			"weekdays_only":         p.Settings.WeekdaysOnly,
		}
	}
	return body
}

func (s *Service) Create(ctx context.Context, params CreateParams) (Campaign, error) {
	var raw normalize.Raw
	if err := s.client.Do(ctx, "POST", "/calls/campaigns", params.body(), &raw); err != nil {
		return Campaign{}, err
	}
	return Normalize(raw), nil
}

// UpdateParams carries a partial call campaign update.
type UpdateParams struct {
	Name        *string
	Description *string
	Status      *string
	CallerID    *string
	CallScript  *string
	AgentID     *string
	GroupID     *string
	ScheduledAt *string
	Settings    *CampaignSettings
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
	if p.CallerID != nil {
		body["caller_id"] = *p.CallerID
	}
	if p.CallScript != nil {
		body["call_script"] = *p.CallScript
	}
	if p.AgentID != nil {
		body["agent_id"] = *p.AgentID
	}
	if p.GroupID != nil {
		body["group_id"] = *p.GroupID
	}
	if p.ScheduledAt != nil {
		body["scheduled_at"] = *p.ScheduledAt
	}
	if p.Settings != nil {
		body["settings"] = *p.Settings
	}
	return body
}

func (s *Service) Update(ctx context.Context, id string, params UpdateParams) (Campaign, error) {
	var raw normalize.Raw
	if err := s.client.Do(ctx, "PUT", "/calls/campaigns/"+id, params.body(), &raw); err != nil {
		return Campaign{}, err
	}
	return Normalize(raw), nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.client.Do(ctx, "DELETE", "/calls/campaigns/"+id, nil, nil)
}

func (s *Service) Start(ctx context.Context, id string) error {
	return s.client.Do(ctx, "POST", "/calls/campaigns/"+id+"/start", nil, nil)
}

func (s *Service) Pause(ctx context.Context, id string) error {
	return s.client.Do(ctx, "POST", "/calls/campaigns/"+id+"/pause", nil, nil)
}

func (s *Service) Archive(ctx context.Context, id string) error {
	return s.client.Do(ctx, "POST", "/calls/campaigns/"+id+"/archive", nil, nil)
}

// GetSettings fetches the dialer settings. Repeated calls inside the
// cooldown window return the cached copy, and backend failures fall back to
// defaults instead of surfacing an error.
func (s *Service) GetSettings(ctx context.Context) Settings {
	s.mu.Lock()
	if s.haveCached && time.Since(s.lastFetch) < settingsCooldown {
		cached := s.cachedSetting
		s.mu.Unlock()
		return cached
	}
	s.mu.Unlock()

	fetched := settings.Fallback(ctx, s.logger, "call settings", func(ctx context.Context) (Settings, error) {
		var raw normalize.Raw
		if err := s.client.Do(ctx, "GET", "/calls/settings", nil, &raw); err != nil {
			return Settings{}, err
		}
		return normalizeSettings(raw), nil
	}, DefaultSettings)

	s.mu.Lock()
	s.cachedSetting = fetched
	s.lastFetch = time.Now()
	s.haveCached = true
	s.mu.Unlock()
	return fetched
}

func normalizeSettings(raw normalize.Raw) Settings {
	def := DefaultSettings()
	out := Settings{
		Provider:            normalize.StrOr(raw, def.Provider, "provider"),
		DefaultCallerID:     normalize.Str(raw, "defaultCallerId"),
		CallingHoursStart:   normalize.StrOr(raw, def.CallingHoursStart, "callingHoursStart"),
		CallingHoursEnd:     normalize.StrOr(raw, def.CallingHoursEnd, "callingHoursEnd"),
		Timezone:            normalize.StrOr(raw, def.Timezone, "timezone"),
		MaxRetries:          normalize.Int(raw, def.MaxRetries, "maxRetries"),
		RetryDelay:          normalize.Int(raw, def.RetryDelay, "retryDelay"),
		CallTimeout:         normalize.Int(raw, def.CallTimeout, "callTimeout"),
		RecordingEnabled:    normalize.Bool(raw, false, "recordingEnabled"),
		VoicemailEnabled:    normalize.Bool(raw, false, "voicemailEnabled"),
		AutoDialingEnabled:  normalize.Bool(raw, false, "autoDialingEnabled"),
		CallQueueSize:       normalize.Int(raw, def.CallQueueSize, "callQueueSize"),
		WorkingHoursEnabled: normalize.Bool(raw, false, "workingHoursEnabled"),
		WorkingDays:         normalize.Strings(raw, "workingDays"),
		CallDelay:           normalize.Int(raw, 0, "callDelay"),
		MaxCallsPerHour:     normalize.Int(raw, def.MaxCallsPerHour, "maxCallsPerHour"),
		CallSpacing:         normalize.Int(raw, def.CallSpacing, "callSpacing"),
		DNCCheckEnabled:     normalize.Bool(raw, false, "dncCheckEnabled"),
		ConsentRequired:     normalize.Bool(raw, false, "consentRequired"),
		AutoOptOut:          normalize.Bool(raw, false, "autoOptOut"),
		ConsentMessage:      normalize.Str(raw, "consentMessage"),
		SIPEnabled:          normalize.Bool(raw, false, "sipEnabled"),
		SIPServer:           normalize.Str(raw, "sipServer"),
		SIPPort:             normalize.Int(raw, def.SIPPort, "sipPort"),
		SIPUsername:         normalize.Str(raw, "sipUsername"),
		SIPPassword:         normalize.Str(raw, "sipPassword"),
		SIPDomain:           normalize.Str(raw, "sipDomain"),
		SIPTransport:        normalize.StrOr(raw, def.SIPTransport, "sipTransport"),
		STUNServer:          normalize.Str(raw, "stunServer"),
		TURNServer:          normalize.Str(raw, "turnServer"),
		TURNUsername:        normalize.Str(raw, "turnUsername"),
		TURNPassword:        normalize.Str(raw, "turnPassword"),
		WebRTCEnabled:       normalize.Bool(raw, false, "webrtcEnabled"),
		AutoAnswer:          normalize.Bool(raw, false, "autoAnswer"),
		DTMFType:            normalize.StrOr(raw, def.DTMFType, "dtmfType"),
		DefaultCountry:      normalize.StrOr(raw, def.DefaultCountry, "defaultCountry"),
	}
	if len(out.WorkingDays) == 0 {
		out.WorkingDays = def.WorkingDays
	}
	return out
}

// UpdateSettings writes the dialer settings and invalidates the cooldown
// cache so the next read sees the new values.
func (s *Service) UpdateSettings(ctx context.Context, cfg Settings) error {
	if err := s.client.Do(ctx, "PUT", "/calls/settings", cfg, nil); err != nil {
		return err
	}
	s.mu.Lock()
	s.haveCached = false
	s.mu.Unlock()
	return nil
}

// LogCall records a finished call against its campaign and recipient.
func (s *Service) LogCall(ctx context.Context, entry LogEntry) error {
	body := map[string]any{
		"sessionId": entry.SessionID,
		"duration":  entry.Duration,
		"outcome":   entry.Outcome,
	}
	if entry.RecordingURL != "" {
		body["recordingUrl"] = entry.RecordingURL
	}
	if entry.CampaignID != "" {
		body["campaignId"] = entry.CampaignID
	}
	if entry.RecipientID != "" {
		body["recipientId"] = entry.RecipientID
	}
	if entry.PhoneNumber != "" {
		body["phoneNumber"] = entry.PhoneNumber
	}
	if entry.Agent != "" {
		body["agent"] = entry.Agent
	}
	return s.client.Do(ctx, "POST", "/calls/log", body, nil)
}

// Recording returns the recording URL for a call session, if one exists.
func (s *Service) Recording(ctx context.Context, sessionID string) (string, error) {
	var out struct {
		RecordingURL string `json:"recordingUrl"`
	}
	if err := s.client.Do(ctx, "GET", "/calls/recording/"+sessionID, nil, &out); err != nil {
		return "", err
	}
	return out.RecordingURL, nil
}

// Analytics summarizes call volume across campaigns.
type Analytics struct {
	TotalCampaigns       int     `json:"totalCampaigns"`
	TotalCalls           int     `json:"totalCalls"`
	TotalSuccessfulCalls int     `json:"totalSuccessfulCalls"`
	TotalFailedCalls     int     `json:"totalFailedCalls"`
	AvgSuccessRate       float64 `json:"avgSuccessRate"`
	AvgAnswerRate        float64 `json:"avgAnswerRate"`
}

func (s *Service) GetAnalytics(ctx context.Context) (Analytics, error) {
	var raw normalize.Raw
	if err := s.client.Do(ctx, "GET", "/calls/analytics", nil, &raw); err != nil {
		return Analytics{}, err
	}
	return Analytics{
		TotalCampaigns:       normalize.Int(raw, 0, "total_campaigns"),
		TotalCalls:           normalize.Int(raw, 0, "total_calls"),
		TotalSuccessfulCalls: normalize.Int(raw, 0, "total_successful_calls"),
		TotalFailedCalls:     normalize.Int(raw, 0, "total_failed_calls"),
		AvgSuccessRate:       normalize.Float(raw, 0, "avg_success_rate"),
		AvgAnswerRate:        normalize.Float(raw, 0, "avg_answer_rate"),
	}, nil
}
