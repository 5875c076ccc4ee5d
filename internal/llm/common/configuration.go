package common

import (
	"fmt"
	"slices"
	"strings"
)

// generation defaults applied when a stage leaves a parameter unset
const (
	DefaultTemperature      = 0.7
	DefaultMaxTokens        = 2000
	DefaultImageTemperature = 1.0
	MaxTemperature          = 2.0
)

// AspectRatios lists every aspect ratio accepted for image generation
var AspectRatios = []string{"1:1", "16:9", "4:3", "9:16", "3:4", "2:3", "3:2", "4:5", "5:4", "21:9"}

// ImageSizes lists the accepted image_size values
var ImageSizes = []string{"1K", "2K", "4K"}

// Configuration is the immutable record built by chained composition.
// Every stage returns a new value; nothing here is ever mutated in place.
// Optional numeric fields are nil when unset, optional strings are empty.
type Configuration struct {
	APIBase string
	APIKey  string
	Model   string

	Temperature *float64
	MaxTokens   *int

	AspectRatio      string
	ImageSize        string
	ImageTemperature *float64

	SiteURL  string
	SiteName string
}

// Compose returns base with every non-empty field of extra applied on top.
// Empty fields of extra never clear a value already present in base.
func Compose(base, extra Configuration) Configuration {
	out := base
	overrideString(&out.APIBase, extra.APIBase)
	overrideString(&out.APIKey, extra.APIKey)
	overrideString(&out.Model, extra.Model)
	overrideString(&out.AspectRatio, extra.AspectRatio)
	overrideString(&out.ImageSize, extra.ImageSize)
	overrideString(&out.SiteURL, extra.SiteURL)
	overrideString(&out.SiteName, extra.SiteName)

	// copy pointers so the result never aliases either input
	out.Temperature = overrideFloat(base.Temperature, extra.Temperature)
	out.MaxTokens = overrideInt(base.MaxTokens, extra.MaxTokens)
	out.ImageTemperature = overrideFloat(base.ImageTemperature, extra.ImageTemperature)
	return out
}

// NewConfiguration creates the base stage holding endpoint, credential and model
func NewConfiguration(apiBase, apiKey, model string) Configuration {
	return Configuration{
		APIBase: NormalizeBaseURL(apiBase),
		APIKey:  strings.TrimSpace(apiKey),
		Model:   strings.TrimSpace(model),
	}
}

// WithSite adds the attribution headers OpenRouter shows on its leaderboard
func (c Configuration) WithSite(siteURL, siteName string) Configuration {
	return Compose(c, Configuration{
		SiteURL:  strings.TrimSpace(siteURL),
		SiteName: strings.TrimSpace(siteName),
	})
}

// WithChatParams adds the chat stage
func (c Configuration) WithChatParams(temperature float64, maxTokens int) Configuration {
	return Compose(c, Configuration{
		Temperature: Float64Ptr(temperature),
		MaxTokens:   IntPtr(maxTokens),
	})
}

// WithImageParams adds the image generation stage
func (c Configuration) WithImageParams(aspectRatio, imageSize string, temperature float64) Configuration {
	return Compose(c, Configuration{
		AspectRatio:      strings.TrimSpace(aspectRatio),
		ImageSize:        strings.ToUpper(strings.TrimSpace(imageSize)),
		ImageTemperature: Float64Ptr(temperature),
	})
}

// Endpoint is the validated target shared by chat and image requests
type Endpoint struct {
	BaseURL  string
	APIKey   string
	Model    string
	SiteURL  string
	SiteName string
}

// ChatConfig is the terminal configuration for a chat request
type ChatConfig struct {
	Endpoint
	Temperature float64
	MaxTokens   int
}

// ImageConfig is the terminal configuration for an image generation request
type ImageConfig struct {
	Endpoint
	AspectRatio string
	ImageSize   string
	Temperature float64
}

// Endpoint validates the fields every request needs
func (c Configuration) Endpoint() (Endpoint, error) {
	if _, err := ValidateBaseURL(c.APIBase); err != nil {
		return Endpoint{}, err
	}
	if c.APIKey == "" {
		return Endpoint{}, fmt.Errorf("%w: api_key is required", ErrInvalidConfig)
	}
	if c.Model == "" {
		return Endpoint{}, fmt.Errorf("%w: model is required", ErrInvalidConfig)
	}
	return Endpoint{
		BaseURL:  NormalizeBaseURL(c.APIBase),
		APIKey:   c.APIKey,
		Model:    c.Model,
		SiteURL:  c.SiteURL,
		SiteName: c.SiteName,
	}, nil
}

// Chat builds the terminal chat configuration, applying chat defaults
func (c Configuration) Chat() (ChatConfig, error) {
	ep, err := c.Endpoint()
	if err != nil {
		return ChatConfig{}, err
	}

	cfg := ChatConfig{Endpoint: ep, Temperature: DefaultTemperature, MaxTokens: DefaultMaxTokens}
	if c.Temperature != nil {
		cfg.Temperature = *c.Temperature
	}
	if c.MaxTokens != nil && *c.MaxTokens > 0 {
		cfg.MaxTokens = *c.MaxTokens
	}
	if err := validateTemperature(cfg.Temperature); err != nil {
		return ChatConfig{}, err
	}
	return cfg, nil
}

// Image builds the terminal image configuration.
// Both aspect_ratio and image_size must be present; they are never defaulted.
func (c Configuration) Image() (ImageConfig, error) {
	ep, err := c.Endpoint()
	if err != nil {
		return ImageConfig{}, err
	}
	if c.AspectRatio == "" || c.ImageSize == "" {
		return ImageConfig{}, ErrMissingImageConfig
	}
	if !slices.Contains(AspectRatios, c.AspectRatio) {
		return ImageConfig{}, fmt.Errorf("%w: unsupported aspect_ratio %q", ErrInvalidConfig, c.AspectRatio)
	}
	if !slices.Contains(ImageSizes, c.ImageSize) {
		return ImageConfig{}, fmt.Errorf("%w: unsupported image_size %q", ErrInvalidConfig, c.ImageSize)
	}

	cfg := ImageConfig{
		Endpoint:    ep,
		AspectRatio: c.AspectRatio,
		ImageSize:   c.ImageSize,
		Temperature: DefaultImageTemperature,
	}
	if c.ImageTemperature != nil {
		cfg.Temperature = *c.ImageTemperature
	}
	if err := validateTemperature(cfg.Temperature); err != nil {
		return ImageConfig{}, err
	}
	return cfg, nil
}

// String renders the configuration with the API key redacted
func (c Configuration) String() string {
	return fmt.Sprintf("Configuration{api_base=%q api_key=%q model=%q aspect_ratio=%q image_size=%q site_url=%q site_name=%q}",
		c.APIBase, RedactKey(c.APIKey), c.Model, c.AspectRatio, c.ImageSize, c.SiteURL, c.SiteName)
}

func validateTemperature(t float64) error {
	if t < 0 || t > MaxTemperature {
		return fmt.Errorf("%w: temperature %.2f out of range [0, %.1f]", ErrInvalidConfig, t, MaxTemperature)
	}
	return nil
}

func overrideString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func overrideFloat(base, extra *float64) *float64 {
	switch {
	case extra != nil:
		return Float64Ptr(*extra)
	case base != nil:
		return Float64Ptr(*base)
	default:
		return nil
	}
}

func overrideInt(base, extra *int) *int {
	switch {
	case extra != nil:
		return IntPtr(*extra)
	case base != nil:
		return IntPtr(*base)
	default:
		return nil
	}
}
