// SPDX-License-Identifier: MIT

package campaigns

import (
	"context"

	"github.com/ronittamrakar/xordon-go/internal/normalize"
	"github.com/ronittamrakar/xordon-go/internal/transport"
)

// Service is the campaigns façade. Every method performs one transport call;
// errors propagate unchanged to the caller.
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

// List returns all campaigns, optionally filtered by group.
func (s *Service) List(ctx context.Context, groupID string) ([]Campaign, error) {
	path := "/campaigns"
	if groupID != "" {
		path += transport.Query(map[string]any{"group_id": groupID})
	}
	var envelope itemsEnvelope
	if err := s.client.Do(ctx, "GET", path, nil, &envelope); err != nil {
		return nil, err
	}
	out := make([]Campaign, 0, len(envelope.Items))
	for _, raw := range envelope.Items {
		out = append(out, Normalize(raw))
	}
	return out, nil
}

// Get fetches one campaign by id.
func (s *Service) Get(ctx context.Context, id string) (Campaign, error) {
	var raw normalize.Raw
	if err := s.client.Do(ctx, "GET", "/campaigns/"+id, nil, &raw); err != nil {
		return Campaign{}, err
	}
	return Normalize(raw), nil
}

// Create creates a campaign and returns the backend's view of it.
func (s *Service) Create(ctx context.Context, params CreateParams) (Campaign, error) {
	var raw normalize.Raw
	if err := s.client.Do(ctx, "POST", "/campaigns", params.body(), &raw); err != nil {
		return Campaign{}, err
	}
	return Normalize(raw), nil
}

// Update applies a partial campaign write.
func (s *Service) Update(ctx context.Context, id string, params UpdateParams) (Campaign, error) {
	var raw normalize.Raw
	if err := s.client.Do(ctx, "PUT", "/campaigns/"+id, params.body(), &raw); err != nil {
		return Campaign{}, err
	}
	return Normalize(raw), nil
}

// Delete removes a campaign.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.client.Do(ctx, "DELETE", "/campaigns/"+id, nil, nil)
}

// Send starts delivery. The caller must have awaited campaign creation first;
// no ordering is provided across independently-issued calls.
func (s *Service) Send(ctx context.Context, id string) error {
	return s.client.Do(ctx, "POST", "/campaigns/"+id+"/send", nil, nil)
}

// SimulateSend runs a dry-run delivery pass.
func (s *Service) SimulateSend(ctx context.Context, id string) (Campaign, error) {
	var raw normalize.Raw
	if err := s.client.Do(ctx, "POST", "/campaigns/"+id+"/simulate-send", nil, &raw); err != nil {
		return Campaign{}, err
	}
	return Normalize(raw), nil
}

// Pause suspends an active campaign.
func (s *Service) Pause(ctx context.Context, id string) error {
	return s.client.Do(ctx, "POST", "/campaigns/"+id+"/pause", nil, nil)
}

// Start resumes a paused campaign.
func (s *Service) Start(ctx context.Context, id string) error {
	return s.client.Do(ctx, "POST", "/campaigns/"+id+"/start", nil, nil)
}

// Archive moves a campaign out of the active list.
func (s *Service) Archive(ctx context.Context, id string) error {
	return s.client.Do(ctx, "POST", "/campaigns/"+id+"/archive", nil, nil)
}

// ABTests lists split tests.
func (s *Service) ABTests(ctx context.Context) ([]ABTest, error) {
	var envelope itemsEnvelope
	if err := s.client.Do(ctx, "GET", "/ab-tests", nil, &envelope); err != nil {
		return nil, err
	}
	out := make([]ABTest, 0, len(envelope.Items))
	for _, raw := range envelope.Items {
		out = append(out, normalizeABTest(raw))
	}
	return out, nil
}
