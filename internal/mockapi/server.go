// SPDX-License-Identifier: MIT

// Package mockapi is an in-memory stand-in for the Xordon backend. It serves
// the auth bootstrap flow, the campaign endpoints and the settings document
// with deterministic payloads, mirroring the backend's habit of emitting
// snake_case keys and numbers as strings.
package mockapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Config controls the mock server's behavior.
type Config struct {
	// DevTokenLimit caps /auth/dev-token requests per minute per IP before
	// the server answers 429.
	DevTokenLimit int
	// Token is the bearer token issued by the bootstrap endpoint.
	Token string
}

// Server holds the mutable in-memory state behind the stub endpoints.
type Server struct {
	cfg    Config
	logger zerolog.Logger

	mu        sync.Mutex
	campaigns map[string]map[string]any
	settings  map[string]any
	nextID    int
}

// New returns a mock backend with one seeded campaign.
func New(cfg Config, logger zerolog.Logger) *Server {
	if cfg.DevTokenLimit <= 0 {
		cfg.DevTokenLimit = 30
	}
	if cfg.Token == "" {
		cfg.Token = "dev-token"
	}
	s := &Server{
		cfg:       cfg,
		logger:    logger,
		campaigns: map[string]map[string]any{},
		settings:  map[string]any{},
		nextID:    1,
	}
	seed := s.newCampaign(map[string]any{
		"name":         "Welcome series",
		"subject":      "Welcome aboard",
		"html_content": "<p>Hello</p>",
	})
	s.campaigns[seed["id"].(string)] = seed
	return s
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Route("/api", func(r chi.Router) {
		r.With(httprate.Limit(
			s.cfg.DevTokenLimit,
			time.Minute,
			httprate.WithKeyFuncs(httprate.KeyByIP),
			httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Retry-After", "60")
				writeJSON(w, http.StatusTooManyRequests, map[string]any{"error": "rate limit exceeded"})
			}),
		)).Get("/auth/dev-token", s.handleDevToken)

		r.Post("/auth/login", s.handleLogin)
		r.Post("/auth/register", s.handleLogin)
		r.Get("/auth/me", s.requireAuth(s.handleMe))
		r.Get("/auth/verify", s.requireAuth(s.handleVerify))
		r.Post("/auth/logout", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"message": "logged out"})
		})

		r.Get("/campaigns", s.requireAuth(s.handleListCampaigns))
		r.Post("/campaigns", s.requireAuth(s.handleCreateCampaign))
		r.Get("/campaigns/{id}", s.requireAuth(s.handleGetCampaign))
		r.Put("/campaigns/{id}", s.requireAuth(s.handleUpdateCampaign))
		r.Delete("/campaigns/{id}", s.requireAuth(s.handleDeleteCampaign))
		r.Post("/campaigns/{id}/send", s.requireAuth(s.campaignAction("sending")))
		r.Post("/campaigns/{id}/pause", s.requireAuth(s.campaignAction("paused")))
		r.Post("/campaigns/{id}/start", s.requireAuth(s.campaignAction("sending")))
		r.Post("/campaigns/{id}/archive", s.requireAuth(s.campaignAction("archived")))

		r.Get("/settings", s.requireAuth(s.handleGetSettings))
		r.Put("/settings", s.requireAuth(s.handlePutSettings))

		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// requireAuth rejects requests without the issued bearer token. The bootstrap
// and login endpoints stay open.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+s.cfg.Token {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "unauthorized"})
			return
		}
		next(w, r)
	}
}

func (s *Server) handleDevToken(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"token": s.cfg.Token})
}

func (s *Server) userPayload() map[string]any {
	// IDs go out as strings; the real backend is inconsistent about this
	// and clients must cope either way.
	return map[string]any{
		"id":         "1",
		"email":      "dev@example.com",
		"first_name": "Dev",
		"last_name":  "User",
		"role":       "admin",
	}
}

func (s *Server) tenantPayload() map[string]any {
	return map[string]any{
		"id":        "1",
		"name":      "Dev Workspace",
		"subdomain": "dev",
	}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid body"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"user":   s.userPayload(),
		"tenant": s.tenantPayload(),
		"token":  s.cfg.Token,
	})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"user":   s.userPayload(),
		"tenant": s.tenantPayload(),
	})
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"valid":  true,
		"user":   s.userPayload(),
		"tenant": s.tenantPayload(),
	})
}

func (s *Server) newCampaign(body map[string]any) map[string]any {
	id := strconv.Itoa(s.nextID)
	s.nextID++
	now := time.Now().UTC().Format(time.RFC3339)
	c := map[string]any{
		"id":               id,
		"name":             body["name"],
		"subject":          body["subject"],
		"html_content":     body["html_content"],
		"status":           "draft",
		"campaign_type":    "warm",
		"stop_on_reply":    true,
		"total_recipients": "0",
		"sent":             "0",
		"opens":            "0",
		"clicks":           "0",
		"bounces":          "0",
		"unsubscribes":     "0",
		"replies":          "0",
		"created_at":       now,
		"updated_at":       now,
	}
	if v, ok := body["status"].(string); ok && v != "" {
		c["status"] = v
	}
	if v, ok := body["campaign_type"].(string); ok && v != "" {
		c["campaign_type"] = v
	}
	if v, ok := body["stop_on_reply"]; ok {
		c["stop_on_reply"] = v
	}
	return c
}

func (s *Server) handleListCampaigns(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]map[string]any, 0, len(s.campaigns))
	for _, c := range s.campaigns {
		items = append(items, c)
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (s *Server) handleCreateCampaign(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid body"})
		return
	}
	s.mu.Lock()
	c := s.newCampaign(body)
	s.campaigns[c["id"].(string)] = c
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (map[string]any, bool) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	c, ok := s.campaigns[id]
	s.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": fmt.Sprintf("campaign %s not found", id)})
		return nil, false
	}
	return c, true
}

func (s *Server) handleGetCampaign(w http.ResponseWriter, r *http.Request) {
	c, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleUpdateCampaign(w http.ResponseWriter, r *http.Request) {
	c, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid body"})
		return
	}
	s.mu.Lock()
	for k, v := range body {
		c[k] = v
	}
	c["updated_at"] = time.Now().UTC().Format(time.RFC3339)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleDeleteCampaign(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	_, ok := s.campaigns[id]
	delete(s.campaigns, id)
	s.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "campaign not found"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) campaignAction(status string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, ok := s.lookup(w, r)
		if !ok {
			return
		}
		s.mu.Lock()
		c["status"] = status
		s.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]any{"message": "ok", "status": status})
	}
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.settings)
}

func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid body"})
		return
	}
	s.mu.Lock()
	for k, v := range body {
		s.settings[k] = v
	}
	out := s.settings
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}
