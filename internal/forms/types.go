package forms

import (
	"github.com/ronittamrakar/xordon-go/internal/normalize"
)

// Status values a form can be in.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
	StatusDraft    = "draft"
	StatusArchived = "archived"
	StatusTrashed  = "trashed"
)

// Field is one input in a form definition. The builder stores validation,
// conditional logic and layout hints inline, so the struct is wide but
// mostly optional.
type Field struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Type        string         `json:"type"`
	Label       string         `json:"label"`
	Required    bool           `json:"required"`
	Options     []string       `json:"options,omitempty"`
	Placeholder string         `json:"placeholder,omitempty"`
	Step        int            `json:"step,omitempty"`
	Accept      string         `json:"accept,omitempty"`
	Multiple    bool           `json:"multiple,omitempty"`
	Validation  map[string]any `json:"validation,omitempty"`
	Conditional map[string]any `json:"conditional,omitempty"`
	Min         float64        `json:"min,omitempty"`
	Max         float64        `json:"max,omitempty"`
	StepSize    float64        `json:"stepSize,omitempty"`
	RatingMax   int            `json:"ratingMax,omitempty"`
	RatingStyle string         `json:"ratingStyle,omitempty"`
	Width       string         `json:"width,omitempty"`
	HelpText    string         `json:"helpText,omitempty"`
	Default     any            `json:"defaultValue,omitempty"`
}

// Step groups field IDs for multi-step forms.
type Step struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Fields      []string `json:"fields"`
	Order       int      `json:"order"`
}

// Theme holds the public rendering colors for a form.
type Theme struct {
	PrimaryColor    string `json:"primaryColor"`
	BackgroundColor string `json:"backgroundColor"`
	TextColor       string `json:"textColor"`
	ButtonStyle     string `json:"buttonStyle"`
}

// SecuritySettings controls abuse protection on the public submit endpoint.
type SecuritySettings struct {
	EnableCaptcha    bool     `json:"enableCaptcha"`
	EnableRateLimit  bool     `json:"enableRateLimit"`
	RateLimitPerHour int      `json:"rateLimitPerHour"`
	BlockIPAddresses bool     `json:"blockIpAddresses"`
	AllowedIPs       []string `json:"allowedIps"`
}

// Settings is the per-form configuration blob.
type Settings struct {
	AllowSubmissions      bool             `json:"allowSubmissions"`
	RequireAuthentication bool             `json:"requireAuthentication"`
	SaveDrafts            bool             `json:"saveDrafts"`
	LimitSubmissions      bool             `json:"limitSubmissions"`
	MaxSubmissions        int              `json:"maxSubmissions"`
	SendNotifications     bool             `json:"sendNotifications"`
	NotificationEmails    []string         `json:"notificationEmails"`
	ConfirmationMessage   string           `json:"confirmationMessage"`
	RedirectURL           string           `json:"redirectUrl"`
	Theme                 Theme            `json:"theme"`
	Security              SecuritySettings `json:"security"`
}

// Form is a normalized form definition.
type Form struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Title          string    `json:"title"`
	Description    string    `json:"description,omitempty"`
	Fields         []Field   `json:"fields"`
	Status         string    `json:"status"`
	GroupID        string    `json:"groupId,omitempty"`
	ResponseCount  int       `json:"responseCount"`
	LastResponseAt string    `json:"lastResponseAt,omitempty"`
	IsMultiStep    bool      `json:"isMultiStep"`
	Steps          []Step    `json:"steps,omitempty"`
	Settings       *Settings `json:"settings,omitempty"`
	CreatedAt      string    `json:"createdAt"`
	UpdatedAt      string    `json:"updatedAt"`
}

// Response is a single submission to a form.
type Response struct {
	ID           string         `json:"id"`
	FormID       string         `json:"formId"`
	ResponseData map[string]any `json:"responseData"`
	FormName     string         `json:"formName,omitempty"`
	FormTitle    string         `json:"formTitle,omitempty"`
	FormGroupID  string         `json:"formGroupId,omitempty"`
	IsRead       bool           `json:"isRead"`
	IsStarred    bool           `json:"isStarred"`
	IPAddress    string         `json:"ipAddress,omitempty"`
	UserAgent    string         `json:"userAgent,omitempty"`
	CreatedAt    string         `json:"createdAt"`
}

// Normalize maps a raw form payload into a Form. Missing status becomes
// draft and counters default to zero.
func Normalize(raw normalize.Raw) Form {
	f := Form{
		ID:             normalize.ID(raw, "id"),
		Name:           normalize.Str(raw, "name"),
		Title:          normalize.Str(raw, "title"),
		Description:    normalize.Str(raw, "description"),
		Status:         normalize.StrOr(raw, StatusDraft, "status"),
		GroupID:        normalize.ID(raw, "group_id"),
		ResponseCount:  normalize.Int(raw, 0, "response_count"),
		LastResponseAt: normalize.Str(raw, "last_response_at"),
		IsMultiStep:    normalize.Bool(raw, false, "is_multi_step"),
		CreatedAt:      normalize.Str(raw, "created_at"),
		UpdatedAt:      normalize.Str(raw, "updated_at"),
	}
	for _, item := range normalize.Slice(raw, "fields") {
		f.Fields = append(f.Fields, normalizeField(item))
	}
	for _, item := range normalize.Slice(raw, "steps") {
		f.Steps = append(f.Steps, Step{
			ID:          normalize.ID(item, "id"),
			Title:       normalize.Str(item, "title"),
			Description: normalize.Str(item, "description"),
			Fields:      normalize.Strings(item, "fields"),
			Order:       normalize.Int(item, 0, "order"),
		})
	}
	if s, ok := raw["settings"].(map[string]any); ok {
		settings := normalizeSettings(s)
		f.Settings = &settings
	}
	return f
}

func normalizeField(raw normalize.Raw) Field {
	fld := Field{
		ID:          normalize.ID(raw, "id"),
		Name:        normalize.Str(raw, "name"),
		Type:        normalize.StrOr(raw, "text", "type"),
		Label:       normalize.Str(raw, "label"),
		Required:    normalize.Bool(raw, false, "required"),
		Options:     normalize.Strings(raw, "options"),
		Placeholder: normalize.Str(raw, "placeholder"),
		Step:        normalize.Int(raw, 0, "step"),
		Accept:      normalize.Str(raw, "accept"),
		Multiple:    normalize.Bool(raw, false, "multiple"),
		Min:         normalize.Float(raw, 0, "min"),
		Max:         normalize.Float(raw, 0, "max"),
		StepSize:    normalize.Float(raw, 0, "step_size"),
		RatingMax:   normalize.Int(raw, 0, "rating_max"),
		RatingStyle: normalize.Str(raw, "rating_style"),
		Width:       normalize.Str(raw, "width"),
		HelpText:    normalize.Str(raw, "help_text"),
	}
	if v, ok := raw["validation"].(map[string]any); ok {
		fld.Validation = v
	}
	if c, ok := raw["conditional"].(map[string]any); ok {
		fld.Conditional = c
	}
	if d, ok := raw["default_value"]; ok {
		fld.Default = d
	} else if d, ok := raw["defaultValue"]; ok {
		fld.Default = d
	}
	return fld
}

func normalizeSettings(raw normalize.Raw) Settings {
	s := Settings{
		AllowSubmissions:      normalize.Bool(raw, false, "allow_submissions"),
		RequireAuthentication: normalize.Bool(raw, false, "require_authentication"),
		SaveDrafts:            normalize.Bool(raw, false, "save_drafts"),
		LimitSubmissions:      normalize.Bool(raw, false, "limit_submissions"),
		MaxSubmissions:        normalize.Int(raw, 0, "max_submissions"),
		SendNotifications:     normalize.Bool(raw, false, "send_notifications"),
		NotificationEmails:    normalize.Strings(raw, "notification_emails"),
		ConfirmationMessage:   normalize.Str(raw, "confirmation_message"),
		RedirectURL:           normalize.Str(raw, "redirect_url"),
	}
	if t, ok := raw["theme"].(map[string]any); ok {
		s.Theme = Theme{
			PrimaryColor:    normalize.Str(t, "primary_color"),
			BackgroundColor: normalize.Str(t, "background_color"),
			TextColor:       normalize.Str(t, "text_color"),
			ButtonStyle:     normalize.StrOr(t, "rounded", "button_style"),
		}
	}
	if sec, ok := raw["security"].(map[string]any); ok {
		s.Security = SecuritySettings{
			EnableCaptcha:    normalize.Bool(sec, false, "enable_captcha"),
			EnableRateLimit:  normalize.Bool(sec, false, "enable_rate_limit"),
			RateLimitPerHour: normalize.Int(sec, 0, "rate_limit_per_hour"),
			BlockIPAddresses: normalize.Bool(sec, false, "block_ip_addresses"),
			AllowedIPs:       normalize.Strings(sec, "allowed_ips"),
		}
	}
	return s
}

func normalizeResponse(raw normalize.Raw) Response {
	r := Response{
		ID:          normalize.ID(raw, "id"),
		FormID:      normalize.ID(raw, "form_id"),
		FormName:    normalize.Str(raw, "form_name"),
		FormTitle:   normalize.Str(raw, "form_title"),
		FormGroupID: normalize.ID(raw, "form_group_id"),
		IsRead:      normalize.Bool(raw, false, "is_read"),
		IsStarred:   normalize.Bool(raw, false, "is_starred"),
		IPAddress:   normalize.Str(raw, "ip_address"),
		UserAgent:   normalize.Str(raw, "user_agent"),
		CreatedAt:   normalize.Str(raw, "created_at"),
	}
	if d, ok := raw["response_data"].(map[string]any); ok {
		r.ResponseData = d
	} else {
		r.ResponseData = map[string]any{}
	}
	return r
}
