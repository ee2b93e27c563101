// SPDX-License-Identifier: MIT

// Package settings formats backend configuration documents into
// fully-populated, schema-stable objects and provides the explicit
// fallback-to-defaults policy used by the settings façades.
package settings

import (
	"github.com/ronittamrakar/xordon-go/internal/normalize"
)

// AIProviderConfig describes one text-generation provider.
type AIProviderConfig struct {
	Label    string `json:"label"`
	APIKey   string `json:"apiKey"`
	BaseURL  string `json:"baseUrl"`
	Endpoint string `json:"endpoint"`
	Model    string `json:"model"`
}

// AIChannelDefault selects the provider and prompt for one outreach channel.
type AIChannelDefault struct {
	Provider     string `json:"provider"`
	Model        string `json:"model"`
	SystemPrompt string `json:"systemPrompt,omitempty"`
}

// AISettings is the reconciled AI configuration. Invariant: every channel
// default's provider is a key of Providers and carries a non-empty model.
type AISettings struct {
	DefaultProvider string                      `json:"defaultProvider"`
	Providers       map[string]AIProviderConfig `json:"providers"`
	ChannelDefaults map[string]AIChannelDefault `json:"channelDefaults"`
}

const fallbackProvider = "openai"

// baseAIProviders is the fixed provider catalog.
var baseAIProviders = map[string]AIProviderConfig{
	"openai": {
		Label:    "OpenAI / GPT",
		BaseURL:  "https://api.openai.com/v1",
		Endpoint: "/chat/completions",
		Model:    "gpt-4o-mini",
	},
	"openrouter": {
		Label:    "OpenRouter",
		BaseURL:  "https://openrouter.ai/api/v1",
		Endpoint: "/chat/completions",
		Model:    "gpt-4o-mini",
	},
	"deepseek": {
		Label:    "DeepSeek",
		BaseURL:  "https://api.deepseek.com/v1",
		Endpoint: "/chat/completions",
		Model:    "deepseek-chat",
	},
	"qwen": {
		Label:    "Qwen",
		BaseURL:  "https://dashscope.aliyuncs.com/compatible-mode/v1",
		Endpoint: "/chat/completions",
		Model:    "qwen-plus",
	},
}

// defaultChannelPrompts is the fixed channel-to-prompt mapping.
var defaultChannelPrompts = map[string]string{
	"email": "You are an expert email outreach assistant who writes concise, personalized cold emails.",
	"sms":   "You craft short, compliant SMS outreach messages that feel conversational and helpful.",
	"call":  "You help SDRs outline structured call scripts, objection handlers, and summary notes.",
	"form":  "You generate compelling copy for landing pages and lead capture forms.",
}

// DefaultAI returns the hard-coded AI settings object.
func DefaultAI() AISettings {
	providers := make(map[string]AIProviderConfig, len(baseAIProviders))
	for key, cfg := range baseAIProviders {
		providers[key] = cfg
	}
	channels := make(map[string]AIChannelDefault, len(defaultChannelPrompts))
	for channel, prompt := range defaultChannelPrompts {
		channels[channel] = AIChannelDefault{
			Provider:     fallbackProvider,
			Model:        baseAIProviders[fallbackProvider].Model,
			SystemPrompt: prompt,
		}
	}
	return AISettings{
		DefaultProvider: fallbackProvider,
		Providers:       providers,
		ChannelDefaults: channels,
	}
}

// FormatAI reconciles a partial, possibly malformed server document into a
// fully-populated AISettings. It is total: any input (nil, empty, unknown
// provider references, empty models) produces an internally consistent
// result and never panics.
func FormatAI(raw normalize.Raw) AISettings {
	defaults := DefaultAI()
	if raw == nil {
		raw = normalize.Raw{}
	}

	rawProviders := normalize.Map(raw, "providers")

	// Union of known and server-added provider keys: custom providers not in
	// the build-time catalog survive the merge.
	providers := make(map[string]AIProviderConfig)
	for key := range defaults.Providers {
		providers[key] = mergeProvider(defaults.Providers[key], normalize.Map(rawProviders, key))
	}
	for key := range rawProviders {
		if _, known := providers[key]; known {
			continue
		}
		// Unknown providers merge against a generic built-in fallback.
		base := AIProviderConfig{
			Label:    key,
			BaseURL:  baseAIProviders[fallbackProvider].BaseURL,
			Endpoint: baseAIProviders[fallbackProvider].Endpoint,
			Model:    baseAIProviders[fallbackProvider].Model,
		}
		providers[key] = mergeProvider(base, normalize.Map(rawProviders, key))
	}

	rawChannels := normalize.Map(raw, "channelDefaults", "channel_defaults")

	channels := make(map[string]AIChannelDefault)
	channelKeys := make(map[string]struct{}, len(defaults.ChannelDefaults)+len(rawChannels))
	for key := range defaults.ChannelDefaults {
		channelKeys[key] = struct{}{}
	}
	for key := range rawChannels {
		channelKeys[key] = struct{}{}
	}
	for key := range channelKeys {
		base, known := defaults.ChannelDefaults[key]
		if !known {
			base = AIChannelDefault{
				Provider: defaults.DefaultProvider,
				Model:    providerModel(providers, defaults.DefaultProvider),
			}
		}
		override := normalize.Map(rawChannels, key)
		merged := AIChannelDefault{
			Provider:     normalize.StrOr(override, base.Provider, "provider"),
			Model:        normalize.StrOr(override, base.Model, "model"),
			SystemPrompt: normalize.StrOr(override, base.SystemPrompt, "systemPrompt", "system_prompt"),
		}
		// Repair pass: a dangling provider reference resets to the default
		// provider; an empty model inherits the provider's model.
		if _, ok := providers[merged.Provider]; !ok {
			merged.Provider = defaults.DefaultProvider
		}
		if merged.Model == "" {
			merged.Model = providerModel(providers, merged.Provider)
		}
		channels[key] = merged
	}

	defaultProvider := normalize.StrOr(raw, defaults.DefaultProvider, "defaultProvider", "default_provider")
	if _, ok := providers[defaultProvider]; !ok {
		defaultProvider = fallbackProvider
	}

	return AISettings{
		DefaultProvider: defaultProvider,
		Providers:       providers,
		ChannelDefaults: channels,
	}
}

func mergeProvider(base AIProviderConfig, override normalize.Raw) AIProviderConfig {
	return AIProviderConfig{
		Label:    normalize.StrOr(override, base.Label, "label"),
		APIKey:   normalize.StrOr(override, base.APIKey, "apiKey", "api_key"),
		BaseURL:  normalize.StrOr(override, base.BaseURL, "baseUrl", "base_url"),
		Endpoint: normalize.StrOr(override, base.Endpoint, "endpoint"),
		Model:    normalize.StrOr(override, base.Model, "model"),
	}
}

func providerModel(providers map[string]AIProviderConfig, key string) string {
	if cfg, ok := providers[key]; ok && cfg.Model != "" {
		return cfg.Model
	}
	return baseAIProviders[fallbackProvider].Model
}
