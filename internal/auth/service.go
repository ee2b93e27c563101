// SPDX-License-Identifier: MIT

package auth

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/ronittamrakar/xordon-go/internal/normalize"
	"github.com/ronittamrakar/xordon-go/internal/session"
	"github.com/ronittamrakar/xordon-go/internal/transport"
)

// Role is the RBAC role attached to a user.
type Role struct {
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	Permissions []string `json:"permissions"`
}

// User is the authenticated account. The backend is split on naming: some
// payloads carry a single name, others first_name/last_name.
type User struct {
	ID        normalize.FlexString `json:"id"`
	Email     string               `json:"email"`
	Name      string               `json:"name"`
	FirstName string               `json:"first_name,omitempty"`
	LastName  string               `json:"last_name,omitempty"`
	RoleID    *int                 `json:"role_id,omitempty"`
	Role      *Role                `json:"role,omitempty"`
	CreatedAt string               `json:"created_at,omitempty"`
	LastLogin string               `json:"last_login,omitempty"`
}

// DisplayName returns the best human-readable name the payload carried,
// falling back to the email address.
func (u User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	if full := strings.TrimSpace(u.FirstName + " " + u.LastName); full != "" {
		return full
	}
	return u.Email
}

// LoginResult is the session established by login, register or verify.
type LoginResult struct {
	User   User
	Tenant session.Tenant
	Token  string
}

// RegisterParams creates a new account and workspace.
type RegisterParams struct {
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	TenantName string `json:"tenantName"`
}

// Service is the authentication façade. Login-shaped calls persist the
// resulting token, tenant context and user into the session as a side effect.
type Service struct {
	client *transport.Client
}

// NewService wraps the shared transport.
func NewService(client *transport.Client) *Service {
	return &Service{client: client}
}

type sessionPayload struct {
	User   User   `json:"user"`
	Tenant tenant `json:"tenant"`
	Token  string `json:"token"`
}

type tenant struct {
	ID        normalize.FlexString `json:"id"`
	Name      string               `json:"name"`
	Subdomain string               `json:"subdomain"`
}

func (t tenant) context() session.Tenant {
	return session.Tenant{ID: t.ID.String(), Name: t.Name, Subdomain: t.Subdomain}
}

func (s *Service) persist(p sessionPayload) LoginResult {
	sess := s.client.Session()
	if p.Token != "" {
		sess.SetToken(p.Token)
		if p.User.ID != "" {
			if doc, err := json.Marshal(p.User); err == nil {
				sess.SetCurrentUserJSON(string(doc))
			}
		}
		sess.SetTenant(p.Tenant.context())
	}
	return LoginResult{User: p.User, Tenant: p.Tenant.context(), Token: p.Token}
}

// Login authenticates with credentials. tenantSubdomain may be empty for
// single-workspace accounts.
func (s *Service) Login(ctx context.Context, email, password, tenantSubdomain string, rememberMe bool) (LoginResult, error) {
	body := map[string]any{
		"email":           email,
		"password":        password,
		"tenantSubdomain": tenantSubdomain,
		"remember_me":     rememberMe,
	}
	var payload sessionPayload
	if err := s.client.Do(ctx, "POST", "/auth/login", body, &payload); err != nil {
		return LoginResult{}, err
	}
	return s.persist(payload), nil
}

// Register creates an account and stores the resulting session.
func (s *Service) Register(ctx context.Context, params RegisterParams) (LoginResult, error) {
	var payload sessionPayload
	if err := s.client.Do(ctx, "POST", "/auth/register", params, &payload); err != nil {
		return LoginResult{}, err
	}
	return s.persist(payload), nil
}

// Signup is the single-field registration entry point: the display name is
// split into first and last name before registering.
func (s *Service) Signup(ctx context.Context, email, password, name string) (User, error) {
	parts := strings.Fields(strings.TrimSpace(name))
	first := strings.TrimSpace(name)
	last := ""
	if len(parts) > 0 {
		first = parts[0]
		last = strings.Join(parts[1:], " ")
	}
	result, err := s.Register(ctx, RegisterParams{
		FirstName: first,
		LastName:  last,
		Email:     email,
		Password:  password,
	})
	if err != nil {
		return User{}, err
	}
	return result.User, nil
}

// ForgotPassword triggers the password-reset email.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	return s.client.Do(ctx, "POST", "/auth/forgot-password", map[string]any{"email": email}, nil)
}

// Logout ends the server session and clears the local one. The local clear
// happens regardless of the API outcome.
func (s *Service) Logout(ctx context.Context) {
	_ = s.client.Do(ctx, "POST", "/auth/logout", nil, nil)
	s.client.Session().Logout()
}

// Me fetches the server-side view of the current session.
func (s *Service) Me(ctx context.Context) (LoginResult, error) {
	var payload sessionPayload
	if err := s.client.Do(ctx, "GET", "/auth/me", nil, &payload); err != nil {
		return LoginResult{}, err
	}
	return LoginResult{User: payload.User, Tenant: payload.Tenant.context()}, nil
}

// Verify validates the persisted token against the backend. The development
// placeholder token short-circuits to the cached user to avoid verification
// loops against a backend that never issued it.
func (s *Service) Verify(ctx context.Context) (*LoginResult, error) {
	sess := s.client.Session()
	token := sess.Token()
	if token == "" {
		return nil, nil
	}

	if token == DevPlaceholderToken {
		if user := s.CurrentUser(); user != nil {
			t := sess.Tenant()
			if t.ID == "" {
				t.ID = "1"
			}
			if t.Name == "" {
				t.Name = "Dev Workspace"
			}
			if t.Subdomain == "" {
				t.Subdomain = "dev"
			}
			return &LoginResult{User: *user, Tenant: t, Token: token}, nil
		}
	}

	var payload sessionPayload
	if err := s.client.Do(ctx, "GET", "/auth/verify", nil, &payload); err != nil {
		return nil, err
	}
	result := LoginResult{User: payload.User, Tenant: payload.Tenant.context(), Token: token}
	return &result, nil
}

// IsAuthenticated reports whether a bearer token is available.
func (s *Service) IsAuthenticated() bool {
	return s.client.Session().Token() != ""
}

// CurrentUser returns the locally cached user, or nil. No network call.
func (s *Service) CurrentUser() *User {
	doc := s.client.Session().CurrentUserJSON()
	if doc == "" {
		return nil
	}
	var user User
	if err := json.Unmarshal([]byte(doc), &user); err != nil {
		return nil
	}
	return &user
}
