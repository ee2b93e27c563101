// SPDX-License-Identifier: MIT

// Package system wraps the admin-side health and operations endpoints. Most
// responses are wrapped in a success envelope with the payload under data.
package system

import (
	"context"
	"fmt"

	"github.com/ronittamrakar/xordon-go/internal/normalize"
	"github.com/ronittamrakar/xordon-go/internal/transport"
)

// Alert severities.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// HealthReport is the top-level system health snapshot.
type HealthReport struct {
	Status string        `json:"status"`
	Score  int           `json:"score"`
	Checks normalize.Raw `json:"checks,omitempty"`
}

// SecurityEvent is one entry in the security audit feed.
type SecurityEvent struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Severity  string `json:"severity"`
	Message   string `json:"message"`
	IPAddress string `json:"ipAddress,omitempty"`
	CreatedAt string `json:"createdAt"`
}

// SecurityStats aggregates the security event feed.
type SecurityStats struct {
	TotalEvents24h int `json:"totalEvents24h"`
	CriticalEvents int `json:"criticalEvents"`
	BlockedIPs     int `json:"blockedIps"`
	FailedLogins   int `json:"failedLogins"`
}

// PerformanceMetrics is the live resource snapshot.
type PerformanceMetrics struct {
	CPUPercent    float64 `json:"cpuPercent"`
	MemoryPercent float64 `json:"memoryPercent"`
	DiskPercent   float64 `json:"diskPercent"`
	LoadAverage   float64 `json:"loadAverage"`
	UptimeSeconds int     `json:"uptimeSeconds"`
}

// LogLine is one application log entry from the server.
type LogLine struct {
	Timestamp string `json:"timestamp"`
	Level     string `json:"level"`
	Message   string `json:"message"`
}

// CacheKey describes one entry in the server-side cache.
type CacheKey struct {
	Key       string `json:"key"`
	SizeBytes int    `json:"sizeBytes"`
	TTL       int    `json:"ttl"`
}

// Finding is one result from the diagnostics run.
type Finding struct {
	Check    string `json:"check"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
	FixHint  string `json:"fixHint,omitempty"`
}

// Alert is one raised system alert.
type Alert struct {
	ID           int    `json:"id"`
	AlertType    string `json:"alertType"`
	Severity     string `json:"severity"`
	Message      string `json:"message"`
	MetricName   string `json:"metricName,omitempty"`
	MetricValue  string `json:"metricValue,omitempty"`
	Threshold    string `json:"threshold,omitempty"`
	Acknowledged bool   `json:"acknowledged"`
	Resolved     bool   `json:"resolved"`
	CreatedAt    string `json:"createdAt"`
}

// TrafficSummary aggregates the last hour of API traffic.
type TrafficSummary struct {
	TotalRequests1h int     `json:"totalRequests1h"`
	AvgLatencyMs    float64 `json:"avgLatencyMs"`
	MaxLatencyMs    float64 `json:"maxLatencyMs"`
	ServerErrors1h  int     `json:"serverErrors1h"`
	ClientErrors1h  int     `json:"clientErrors1h"`
	ErrorRate       float64 `json:"errorRate"`
}

// RouteStats is the per-route error breakdown.
type RouteStats struct {
	Path      string  `json:"path"`
	Total     int     `json:"total"`
	Errors    int     `json:"errors"`
	ErrorRate float64 `json:"errorRate"`
}

// Traffic is the full traffic analytics payload.
type Traffic struct {
	Summary       TrafficSummary `json:"summary"`
	ErrorsByRoute []RouteStats   `json:"errorsByRoute"`
}

// Service exposes the system administration API.
type Service struct {
	client *transport.Client
}

func NewService(client *transport.Client) *Service {
	return &Service{client: client}
}

// dataEnvelope is the success wrapper most system endpoints use.
type dataEnvelope struct {
	Success bool          `json:"success"`
	Data    normalize.Raw `json:"data"`
}

func (s *Service) Health(ctx context.Context) (HealthReport, error) {
	var env dataEnvelope
	if err := s.client.Do(ctx, "GET", "/system/health", nil, &env); err != nil {
		return HealthReport{}, err
	}
	report := HealthReport{
		Status: normalize.StrOr(env.Data, "unknown", "status", "overall_status"),
		Score:  normalize.Int(env.Data, 0, "score", "overall_score"),
	}
	if checks, ok := env.Data["checks"].(map[string]any); ok {
		report.Checks = checks
	}
	return report, nil
}

func (s *Service) SecurityEvents(ctx context.Context) ([]SecurityEvent, error) {
	var env struct {
		Success bool            `json:"success"`
		Data    []normalize.Raw `json:"data"`
	}
	if err := s.client.Do(ctx, "GET", "/system/security/events", nil, &env); err != nil {
		return nil, err
	}
	out := make([]SecurityEvent, 0, len(env.Data))
	for _, raw := range env.Data {
		out = append(out, SecurityEvent{
			ID:        normalize.ID(raw, "id"),
			Type:      normalize.Str(raw, "type", "event_type"),
			Severity:  normalize.StrOr(raw, SeverityInfo, "severity"),
			Message:   normalize.Str(raw, "message"),
			IPAddress: normalize.Str(raw, "ip_address", "ipAddress"),
			CreatedAt: normalize.Str(raw, "created_at", "createdAt"),
		})
	}
	return out, nil
}

func (s *Service) SecurityStats(ctx context.Context) (SecurityStats, error) {
	var env dataEnvelope
	if err := s.client.Do(ctx, "GET", "/system/security/stats", nil, &env); err != nil {
		return SecurityStats{}, err
	}
	return SecurityStats{
		TotalEvents24h: normalize.Int(env.Data, 0, "total_events_24h", "totalEvents24h"),
		CriticalEvents: normalize.Int(env.Data, 0, "critical_events", "criticalEvents"),
		BlockedIPs:     normalize.Int(env.Data, 0, "blocked_ips", "blockedIps"),
		FailedLogins:   normalize.Int(env.Data, 0, "failed_logins", "failedLogins"),
	}, nil
}

func (s *Service) Performance(ctx context.Context) (PerformanceMetrics, error) {
	var env dataEnvelope
	if err := s.client.Do(ctx, "GET", "/system/performance/live", nil, &env); err != nil {
		return PerformanceMetrics{}, err
	}
	return PerformanceMetrics{
		CPUPercent:    normalize.Float(env.Data, 0, "cpu_percent", "cpuPercent"),
		MemoryPercent: normalize.Float(env.Data, 0, "memory_percent", "memoryPercent"),
		DiskPercent:   normalize.Float(env.Data, 0, "disk_percent", "diskPercent"),
		LoadAverage:   normalize.Float(env.Data, 0, "load_average", "loadAverage"),
		UptimeSeconds: normalize.Int(env.Data, 0, "uptime_seconds", "uptimeSeconds"),
	}, nil
}

// Logs tails the server application log. A level filter is optional.
func (s *Service) Logs(ctx context.Context, lines int, level string) ([]LogLine, error) {
	if lines <= 0 {
		lines = 100
	}
	params := map[string]any{"lines": lines}
	if level != "" {
		params["level"] = level
	}
	var env struct {
		Success    bool            `json:"success"`
		Logs       []normalize.Raw `json:"logs"`
		TotalLines int             `json:"total_lines"`
	}
	if err := s.client.Do(ctx, "GET", "/system/tools/logs"+transport.Query(params), nil, &env); err != nil {
		return nil, err
	}
	out := make([]LogLine, 0, len(env.Logs))
	for _, raw := range env.Logs {
		out = append(out, LogLine{
			Timestamp: normalize.Str(raw, "timestamp", "time"),
			Level:     normalize.Str(raw, "level"),
			Message:   normalize.Str(raw, "message"),
		})
	}
	return out, nil
}

// CacheKeys lists the entries in the server-side cache.
func (s *Service) CacheKeys(ctx context.Context) ([]CacheKey, error) {
	var env struct {
		Success bool            `json:"success"`
		Keys    []normalize.Raw `json:"keys"`
		Count   int             `json:"count"`
	}
	if err := s.client.Do(ctx, "GET", "/system/tools/cache", nil, &env); err != nil {
		return nil, err
	}
	out := make([]CacheKey, 0, len(env.Keys))
	for _, raw := range env.Keys {
		out = append(out, CacheKey{
			Key:       normalize.Str(raw, "key"),
			SizeBytes: normalize.Int(raw, 0, "size_bytes", "size"),
			TTL:       normalize.Int(raw, 0, "ttl"),
		})
	}
	return out, nil
}

// FlushCache clears the server-side cache and reports how many keys went.
func (s *Service) FlushCache(ctx context.Context) (int, error) {
	var out struct {
		Success bool `json:"success"`
		Cleared int  `json:"cleared"`
	}
	if err := s.client.Do(ctx, "DELETE", "/system/tools/cache", nil, &out); err != nil {
		return 0, err
	}
	return out.Cleared, nil
}

// MaintenanceStatus reports whether maintenance mode is on.
func (s *Service) MaintenanceStatus(ctx context.Context) (bool, error) {
	var out struct {
		Success bool `json:"success"`
		Enabled bool `json:"enabled"`
	}
	if err := s.client.Do(ctx, "GET", "/system/tools/maintenance", nil, &out); err != nil {
		return false, err
	}
	return out.Enabled, nil
}

// SetMaintenance flips maintenance mode.
func (s *Service) SetMaintenance(ctx context.Context, enabled bool) error {
	body := map[string]any{"enabled": enabled}
	return s.client.Do(ctx, "POST", "/system/tools/maintenance", body, nil)
}

// TestEmail sends a delivery test message to the given address.
func (s *Service) TestEmail(ctx context.Context, email string) error {
	body := map[string]any{"email": email}
	return s.client.Do(ctx, "POST", "/system/tools/test-email", body, nil)
}

// RunDiagnostics executes the server diagnostics suite.
func (s *Service) RunDiagnostics(ctx context.Context) ([]Finding, error) {
	var env struct {
		Success  bool            `json:"success"`
		Findings []normalize.Raw `json:"findings"`
		Message  string          `json:"message"`
	}
	if err := s.client.Do(ctx, "POST", "/system/diagnostics", nil, &env); err != nil {
		return nil, err
	}
	out := make([]Finding, 0, len(env.Findings))
	for _, raw := range env.Findings {
		out = append(out, Finding{
			Check:    normalize.Str(raw, "check"),
			Severity: normalize.StrOr(raw, SeverityInfo, "severity"),
			Message:  normalize.Str(raw, "message"),
			FixHint:  normalize.Str(raw, "fix_hint", "fixHint"),
		})
	}
	return out, nil
}

// Fix applies one named remediation from the diagnostics report.
func (s *Service) Fix(ctx context.Context, action string, params map[string]any) error {
	body := map[string]any{"action": action, "params": params}
	return s.client.Do(ctx, "POST", "/system/fix", body, nil)
}

// Traffic fetches the last hour of API traffic analytics.
func (s *Service) Traffic(ctx context.Context) (Traffic, error) {
	var env dataEnvelope
	if err := s.client.Do(ctx, "GET", "/system/traffic", nil, &env); err != nil {
		return Traffic{}, err
	}
	summary := normalize.Map(env.Data, "summary")
	t := Traffic{
		Summary: TrafficSummary{
			TotalRequests1h: normalize.Int(summary, 0, "total_requests_1h"),
			AvgLatencyMs:    normalize.Float(summary, 0, "avg_latency_ms"),
			MaxLatencyMs:    normalize.Float(summary, 0, "max_latency_ms"),
			ServerErrors1h:  normalize.Int(summary, 0, "server_errors_1h"),
			ClientErrors1h:  normalize.Int(summary, 0, "client_errors_1h"),
			ErrorRate:       normalize.Float(summary, 0, "error_rate"),
		},
	}
	for _, raw := range normalize.Slice(env.Data, "errors_by_route") {
		t.ErrorsByRoute = append(t.ErrorsByRoute, RouteStats{
			Path:      normalize.Str(raw, "path"),
			Total:     normalize.Int(raw, 0, "total"),
			Errors:    normalize.Int(raw, 0, "errors"),
			ErrorRate: normalize.Float(raw, 0, "error_rate"),
		})
	}
	return t, nil
}

// Alerts lists the raised system alerts, newest first.
func (s *Service) Alerts(ctx context.Context) ([]Alert, error) {
	var env struct {
		Success bool            `json:"success"`
		Data    []normalize.Raw `json:"data"`
	}
	if err := s.client.Do(ctx, "GET", "/system/alerts", nil, &env); err != nil {
		return nil, err
	}
	out := make([]Alert, 0, len(env.Data))
	for _, raw := range env.Data {
		out = append(out, Alert{
			ID:           normalize.Int(raw, 0, "id"),
			AlertType:    normalize.Str(raw, "alert_type"),
			Severity:     normalize.StrOr(raw, SeverityInfo, "severity"),
			Message:      normalize.Str(raw, "message"),
			MetricName:   normalize.Str(raw, "metric_name"),
			MetricValue:  normalize.Str(raw, "metric_value"),
			Threshold:    normalize.Str(raw, "threshold"),
			Acknowledged: normalize.Bool(raw, false, "acknowledged"),
			Resolved:     normalize.Bool(raw, false, "resolved"),
			CreatedAt:    normalize.Str(raw, "created_at"),
		})
	}
	return out, nil
}

// UpdateAlert acknowledges or resolves one alert. Action is acknowledge or
// resolve.
func (s *Service) UpdateAlert(ctx context.Context, id int, action string) error {
	path := fmt.Sprintf("/system/alerts/%d?action=%s", id, action)
	return s.client.Do(ctx, "POST", path, nil, nil)
}
