package config

import "fmt"

// Config represents the complete configuration structure for nodellm
type Config struct {
	Parameters Parameters `mapstructure:"parameters"`
	Providers  Providers  `mapstructure:"providers"`
}

// Parameters contains default request values and provider selection
type Parameters struct {
	Provider     string `mapstructure:"provider"`
	SystemPrompt string `mapstructure:"system_prompt"`

	// chat
	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`

	// image generation
	AspectRatio      string  `mapstructure:"aspect_ratio"`
	ImageSize        string  `mapstructure:"image_size"`
	ImageTemperature float64 `mapstructure:"image_temperature"`
	N                int     `mapstructure:"n"`

	// overrides every provider's max_attempts when non-zero
	MaxAttempts int `mapstructure:"max_attempts"`
}

// Providers contains configuration for each gateway
type Providers struct {
	OpenRouter OpenRouter `mapstructure:"openrouter"`
	LiteLLM    LiteLLM    `mapstructure:"litellm"`
	OpenAI     OpenAI     `mapstructure:"openai"`
}

// BaseProvider contains common fields shared across all providers
type BaseProvider struct {
	APIBase     string `mapstructure:"api_base"`
	APIKey      string `mapstructure:"api_key"`
	Model       string `mapstructure:"model"`
	ChatModel   string `mapstructure:"chat_model"`
	MaxAttempts int    `mapstructure:"max_attempts"`
}

type OpenRouter struct {
	BaseProvider `mapstructure:",squash"`
	SiteURL      string `mapstructure:"site_url"`
	SiteName     string `mapstructure:"site_name"`
}

type LiteLLM struct {
	BaseProvider `mapstructure:",squash"`
}

type OpenAI struct {
	BaseProvider `mapstructure:",squash"`
}

// ProviderSettings is the flattened view of one provider section
type ProviderSettings struct {
	BaseProvider
	SiteURL  string
	SiteName string
}

// Provider returns the settings for the named provider; "mock" needs none
func (c *Config) Provider(name string) (ProviderSettings, error) {
	switch name {
	case "openrouter":
		p := c.Providers.OpenRouter
		return ProviderSettings{BaseProvider: p.BaseProvider, SiteURL: p.SiteURL, SiteName: p.SiteName}, nil
	case "litellm":
		return ProviderSettings{BaseProvider: c.Providers.LiteLLM.BaseProvider}, nil
	case "openai":
		return ProviderSettings{BaseProvider: c.Providers.OpenAI.BaseProvider}, nil
	case "mock":
		return ProviderSettings{}, nil
	}
	return ProviderSettings{}, fmt.Errorf("no configuration section for provider %q", name)
}

// Attempts returns the attempt count for a provider: the global override
// when set, then the provider's own value, else zero for the binding default
func (c *Config) Attempts(p ProviderSettings) int {
	if c.Parameters.MaxAttempts > 0 {
		return c.Parameters.MaxAttempts
	}
	return p.MaxAttempts
}
