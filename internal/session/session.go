// SPDX-License-Identifier: MIT

package session

import (
	"strconv"
	"time"
)

// Tenant is the cached workspace scoping context.
type Tenant struct {
	ID        string
	Subdomain string
	Name      string
}

// Session provides typed access to the persisted session context with an
// explicit lifecycle: set on login/bootstrap, cleared on logout or a
// server-confirmed session expiry.
type Session struct {
	store Store
}

// New wraps a Store in the typed session accessor.
func New(store Store) *Session {
	return &Session{store: store}
}

// Token returns the persisted bearer token, or "" when logged out.
func (s *Session) Token() string {
	return s.store.Get(KeyAuthToken)
}

// SetToken persists the authoritative bearer token.
func (s *Session) SetToken(token string) {
	s.store.Set(KeyAuthToken, token)
}

// ClearToken removes the bearer token only, keeping workspace context intact.
func (s *Session) ClearToken() {
	s.store.Delete(KeyAuthToken)
}

// Tenant returns the cached workspace context. The legacy workspace_id key is
// honoured on read so older session files keep scoping requests.
func (s *Session) Tenant() Tenant {
	id := s.store.Get(KeyTenantID)
	if id == "" {
		id = s.store.Get(KeyWorkspaceID)
	}
	return Tenant{
		ID:        id,
		Subdomain: s.store.Get(KeyTenantSubdomain),
		Name:      s.store.Get(KeyTenantName),
	}
}

// SetTenant caches the workspace context.
func (s *Session) SetTenant(t Tenant) {
	if t.ID != "" {
		s.store.Set(KeyTenantID, t.ID)
	}
	if t.Subdomain != "" {
		s.store.Set(KeyTenantSubdomain, t.Subdomain)
	}
	if t.Name != "" {
		s.store.Set(KeyTenantName, t.Name)
	}
}

// ActiveClient returns the agency sub-account scope, or "" when unset.
// Its lifecycle is independent of the tenant context.
func (s *Session) ActiveClient() string {
	return s.store.Get(KeyActiveClientID)
}

// SetActiveClient sets or clears the sub-account scope.
func (s *Session) SetActiveClient(id string) {
	if id == "" {
		s.store.Delete(KeyActiveClientID)
		return
	}
	s.store.Set(KeyActiveClientID, id)
}

// CurrentUserJSON returns the cached current-user document, or "".
func (s *Session) CurrentUserJSON() string {
	return s.store.Get(KeyCurrentUser)
}

// SetCurrentUserJSON caches the current-user document.
func (s *Session) SetCurrentUserJSON(doc string) {
	s.store.Set(KeyCurrentUser, doc)
}

// DevTokenRetryAt returns the time of the last rate-limited bootstrap attempt.
func (s *Session) DevTokenRetryAt() time.Time {
	ms, err := strconv.ParseInt(s.store.Get(KeyDevTokenRetryAt), 10, 64)
	if err != nil || ms <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}

// SetDevTokenRetryAt records a bootstrap rate-limit observation.
func (s *Session) SetDevTokenRetryAt(t time.Time) {
	s.store.Set(KeyDevTokenRetryAt, strconv.FormatInt(t.UnixMilli(), 10))
}

// ClearDevTokenRetryAt removes the bootstrap cooldown marker.
func (s *Session) ClearDevTokenRetryAt() {
	s.store.Delete(KeyDevTokenRetryAt)
}

// Reset clears the complete session: token, workspace context and cached user.
func (s *Session) Reset() {
	s.store.Clear()
}

// Logout clears the auth-related keys the way an explicit logout does,
// leaving unrelated keys (cooldowns) untouched.
func (s *Session) Logout() {
	s.store.Delete(KeyAuthToken)
	s.store.Delete(KeyTenantID)
	s.store.Delete(KeyTenantSubdomain)
	s.store.Delete(KeyCurrentUser)
}
