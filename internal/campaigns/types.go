// SPDX-License-Identifier: MIT

// Package campaigns is the email campaign façade.
package campaigns

import "github.com/ronittamrakar/xordon-go/internal/normalize"

// Status is the campaign lifecycle state.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusScheduled Status = "scheduled"
	StatusSending   Status = "sending"
	StatusCompleted Status = "completed"
	StatusPaused    Status = "paused"
	StatusArchived  Status = "archived"
	StatusTrashed   Status = "trashed"
)

// Type distinguishes cold outreach from warm sends.
type Type string

const (
	TypeCold Type = "cold"
	TypeWarm Type = "warm"
)

// Campaign is the typed email campaign. Counters are always populated;
// optional relations stay empty strings when absent.
type Campaign struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Subject          string `json:"subject"`
	HTMLContent      string `json:"htmlContent"`
	Status           Status `json:"status"`
	SendingAccountID string `json:"sendingAccountId,omitempty"`
	SequenceID       string `json:"sequenceId,omitempty"`
	SequenceMode     string `json:"sequenceMode,omitempty"`
	CreatedAt        string `json:"createdAt,omitempty"`
	UpdatedAt        string `json:"updatedAt,omitempty"`
	ScheduledAt      string `json:"scheduledAt,omitempty"`
	TotalRecipients  int    `json:"totalRecipients"`
	Sent             int    `json:"sent"`
	Opens            int    `json:"opens"`
	Clicks           int    `json:"clicks"`
	Bounces          int    `json:"bounces"`
	Unsubscribes     int    `json:"unsubscribes"`
	Replies          int    `json:"replies"`
	GroupID          string `json:"groupId,omitempty"`
	GroupName        string `json:"groupName,omitempty"`
	FolderID         string `json:"folderId,omitempty"`
	FolderName       string `json:"folderName,omitempty"`
	ABTestID         string `json:"abTestId,omitempty"`
	CampaignType     Type   `json:"campaignType"`
	StopOnReply      bool   `json:"stopOnReply"`
}

// Normalize is total: any object carrying at least an id yields a fully-typed
// Campaign with documented defaults in place of missing fields.
func Normalize(raw normalize.Raw) Campaign {
	return Campaign{
		ID:               normalize.ID(raw, "id"),
		Name:             normalize.Str(raw, "name"),
		Subject:          normalize.Str(raw, "subject"),
		HTMLContent:      normalize.Str(raw, "html_content", "htmlContent"),
		Status:           Status(normalize.StrOr(raw, string(StatusDraft), "status")),
		SendingAccountID: normalize.ID(raw, "sending_account_id", "sendingAccountId"),
		SequenceID:       normalize.ID(raw, "sequence_id", "sequenceId"),
		SequenceMode:     normalize.Str(raw, "sequence_mode", "sequenceMode"),
		CreatedAt:        normalize.Str(raw, "created_at", "createdAt"),
		UpdatedAt:        normalize.Str(raw, "updated_at", "updatedAt"),
		ScheduledAt:      normalize.Str(raw, "scheduled_at", "scheduledAt"),
		TotalRecipients:  normalize.Int(raw, 0, "total_recipients", "totalRecipients"),
		Sent:             normalize.Int(raw, 0, "sent"),
		Opens:            normalize.Int(raw, 0, "opens"),
		Clicks:           normalize.Int(raw, 0, "clicks"),
		Bounces:          normalize.Int(raw, 0, "bounces"),
		Unsubscribes:     normalize.Int(raw, 0, "unsubscribes"),
		Replies:          normalize.Int(raw, 0, "replies"),
		GroupID:          normalize.ID(raw, "group_id", "groupId"),
		GroupName:        normalize.Str(raw, "group_name", "groupName"),
		FolderID:         normalize.ID(raw, "folder_id", "folderId"),
		FolderName:       normalize.Str(raw, "folder_name", "folderName"),
		ABTestID:         normalize.ID(raw, "ab_test_id", "abTestId"),
		CampaignType:     Type(normalize.StrOr(raw, string(TypeWarm), "campaign_type", "campaignType")),
		StopOnReply:      normalize.Bool(raw, false, "stop_on_reply", "stopOnReply"),
	}
}

// CreateParams creates a campaign. Status defaults to draft, type to warm,
// stop-on-reply to true.
type CreateParams struct {
	Name             string
	Subject          string
	HTMLContent      string
	Status           Status
	SendingAccountID string
	ScheduledAt      string
	CampaignType     Type
	StopOnReply      *bool
}

func (p CreateParams) body() map[string]any {
	status := p.Status
	if status == "" {
		status = StatusDraft
	}
	campaignType := p.CampaignType
	if campaignType == "" {
		campaignType = TypeWarm
	}
	stopOnReply := true
	if p.StopOnReply != nil {
		stopOnReply = *p.StopOnReply
	}
	body := map[string]any{
		"name":          p.Name,
		"subject":       p.Subject,
		"html_content":  p.HTMLContent,
		"status":        status,
		"campaign_type": campaignType,
		"stop_on_reply": stopOnReply,
	}
	if p.SendingAccountID != "" {
		body["sending_account_id"] = p.SendingAccountID
	}
	if p.ScheduledAt != "" {
		body["scheduled_at"] = p.ScheduledAt
	}
	return body
}

// UpdateParams is a partial campaign write; nil fields never reach the wire.
type UpdateParams struct {
	Name             *string
	Subject          *string
	HTMLContent      *string
	Status           *Status
	SendingAccountID *string
	ScheduledAt      *string
	ABTestID         *string
	CampaignType     *Type
	StopOnReply      *bool
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
	if p.Status != nil {
		body["status"] = *p.Status
	}
	if p.SendingAccountID != nil {
		body["sending_account_id"] = *p.SendingAccountID
	}
	if p.ScheduledAt != nil {
		body["scheduled_at"] = *p.ScheduledAt
	}
	if p.ABTestID != nil {
		body["ab_test_id"] = *p.ABTestID
	}
	if p.CampaignType != nil {
		body["campaign_type"] = *p.CampaignType
	}
	if p.StopOnReply != nil {
		body["stop_on_reply"] = *p.StopOnReply
	}
	return body
}

// ABTest is a split test attached to a campaign or other entity.
type ABTest struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Description    string `json:"description,omitempty"`
	TestType       string `json:"testType"`
	EntityType     string `json:"entityType"`
	EntityID       int    `json:"entityId"`
	Status         string `json:"status"`
	WinnerCriteria string `json:"winnerCriteria"`
	VariantCount   int    `json:"variantCount"`
	TotalResults   int    `json:"totalResults"`
	CreatedAt      string `json:"createdAt,omitempty"`
	UpdatedAt      string `json:"updatedAt,omitempty"`
}

func normalizeABTest(raw normalize.Raw) ABTest {
	return ABTest{
		ID:             normalize.ID(raw, "id"),
		Name:           normalize.Str(raw, "name"),
		Description:    normalize.Str(raw, "description"),
		TestType:       normalize.Str(raw, "test_type", "testType"),
		EntityType:     normalize.Str(raw, "entity_type", "entityType"),
		EntityID:       normalize.Int(raw, 0, "entity_id", "entityId"),
		Status:         normalize.StrOr(raw, "draft", "status"),
		WinnerCriteria: normalize.Str(raw, "winner_criteria", "winnerCriteria"),
		VariantCount:   normalize.Int(raw, 0, "variant_count", "variantCount"),
		TotalResults:   normalize.Int(raw, 0, "total_results", "totalResults"),
		CreatedAt:      normalize.Str(raw, "created_at", "createdAt"),
		UpdatedAt:      normalize.Str(raw, "updated_at", "updatedAt"),
	}
}
