// SPDX-License-Identifier: MIT

// Package recipients is the campaign audience façade.
package recipients

import (
	"context"

	"github.com/ronittamrakar/xordon-go/internal/normalize"
	"github.com/ronittamrakar/xordon-go/internal/transport"
)

// Status is the delivery state of one recipient.
type Status string

const (
	StatusPending      Status = "pending"
	StatusSent         Status = "sent"
	StatusOpened       Status = "opened"
	StatusClicked      Status = "clicked"
	StatusBounced      Status = "bounced"
	StatusUnsubscribed Status = "unsubscribed"
)

// Tag is a label attached to a recipient.
type Tag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Recipient is one audience member of a campaign.
type Recipient struct {
	ID             string `json:"id"`
	CampaignID     string `json:"campaignId"`
	CampaignName   string `json:"campaignName,omitempty"`
	Email          string `json:"email"`
	Phone          string `json:"phone,omitempty"`
	Name           string `json:"name,omitempty"`
	FirstName      string `json:"firstName,omitempty"`
	LastName       string `json:"lastName,omitempty"`
	Company        string `json:"company,omitempty"`
	Status         Status `json:"status"`
	SentAt         string `json:"sentAt,omitempty"`
	OpenedAt       string `json:"openedAt,omitempty"`
	ClickedAt      string `json:"clickedAt,omitempty"`
	UnsubscribedAt string `json:"unsubscribedAt,omitempty"`
	Tags           []Tag  `json:"tags,omitempty"`
	CreatedAt      string `json:"createdAt,omitempty"`
}

// Normalize is total; status defaults to pending.
func Normalize(raw normalize.Raw) Recipient {
	var tags []Tag
	for _, t := range normalize.Slice(raw, "tags") {
		tags = append(tags, Tag{ID: normalize.ID(t, "id"), Name: normalize.Str(t, "name")})
	}
	return Recipient{
		ID:             normalize.ID(raw, "id"),
		CampaignID:     normalize.ID(raw, "campaign_id", "campaignId"),
		CampaignName:   normalize.Str(raw, "campaign_name", "campaignName"),
		Email:          normalize.Str(raw, "email"),
		Phone:          normalize.Str(raw, "phone"),
		Name:           normalize.Str(raw, "name"),
		FirstName:      normalize.Str(raw, "first_name", "firstName"),
		LastName:       normalize.Str(raw, "last_name", "lastName"),
		Company:        normalize.Str(raw, "company"),
		Status:         Status(normalize.StrOr(raw, string(StatusPending), "status")),
		SentAt:         normalize.Str(raw, "sent_at", "sentAt"),
		OpenedAt:       normalize.Str(raw, "opened_at", "openedAt"),
		ClickedAt:      normalize.Str(raw, "clicked_at", "clickedAt"),
		UnsubscribedAt: normalize.Str(raw, "unsubscribed_at", "unsubscribedAt"),
		Tags:           tags,
		CreatedAt:      normalize.Str(raw, "created_at", "createdAt"),
	}
}

// AddParams adds one recipient to a campaign.
type AddParams struct {
	Email     string
	Phone     string
	Name      string
	FirstName string
	LastName  string
	Company   string
}

func (p AddParams) body(campaignID string) map[string]any {
	body := map[string]any{"campaign_id": campaignID, "email": p.Email}
	if p.Phone != "" {
		body["phone"] = p.Phone
	}
	if p.Name != "" {
		body["name"] = p.Name
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
	return body
}

// Service is the recipients façade.
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

// List returns recipients, optionally filtered to one campaign.
func (s *Service) List(ctx context.Context, campaignID string) ([]Recipient, error) {
	path := "/recipients"
	if campaignID != "" {
		path += transport.Query(map[string]any{"campaignId": campaignID})
	}
	var envelope itemsEnvelope
	if err := s.client.Do(ctx, "GET", path, nil, &envelope); err != nil {
		return nil, err
	}
	out := make([]Recipient, 0, len(envelope.Items))
	for _, raw := range envelope.Items {
		out = append(out, Normalize(raw))
	}
	return out, nil
}

// Add attaches a recipient to a campaign.
func (s *Service) Add(ctx context.Context, campaignID string, params AddParams) (Recipient, error) {
	var raw normalize.Raw
	if err := s.client.Do(ctx, "POST", "/recipients", params.body(campaignID), &raw); err != nil {
		return Recipient{}, err
	}
	return Normalize(raw), nil
}

// Remove deletes a recipient.
func (s *Service) Remove(ctx context.Context, id string) error {
	return s.client.Do(ctx, "DELETE", "/recipients/"+id, nil, nil)
}

// Unsubscribe marks a recipient as opted out.
func (s *Service) Unsubscribe(ctx context.Context, id string) error {
	return s.client.Do(ctx, "POST", "/recipients/"+id+"/unsubscribe", nil, nil)
}
