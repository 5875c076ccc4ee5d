package openrouter

import "time"

const (
	// DefaultBaseURL is the public OpenRouter API
	DefaultBaseURL = "https://openrouter.ai/api/v1"
	// DefaultImageModel is the Gemini image model as listed on OpenRouter
	DefaultImageModel = "google/gemini-3-pro-image-preview"

	DefaultChatTimeout = 120 * time.Second
	DefaultMaxAttempts = 2
)

// default per-attempt image timeouts; larger renders take longer
var defaultImageTimeouts = map[string]time.Duration{
	"1K": 180 * time.Second,
	"2K": 300 * time.Second,
	"4K": 600 * time.Second,
}

// Options contains OpenRouter binding settings
type Options struct {
	ChatTimeout   time.Duration
	ImageTimeouts map[string]time.Duration
	MaxAttempts   int
	Modalities    []string
}

// Option configures the OpenRouter binding using the functional options pattern
type Option func(*Options)

// NewOptions creates Options with defaults and functional options applied
func NewOptions(opts ...Option) *Options {
	o := &Options{
		ChatTimeout:   DefaultChatTimeout,
		ImageTimeouts: make(map[string]time.Duration, len(defaultImageTimeouts)),
		MaxAttempts:   DefaultMaxAttempts,
		Modalities:    []string{"image", "text"},
	}
	for size, d := range defaultImageTimeouts {
		o.ImageTimeouts[size] = d
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithChatTimeout sets the per-attempt timeout for chat requests
func WithChatTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.ChatTimeout = d
	}
}

// WithImageTimeout sets the per-attempt timeout for one image size
func WithImageTimeout(imageSize string, d time.Duration) Option {
	return func(o *Options) {
		o.ImageTimeouts[imageSize] = d
	}
}

// WithMaxAttempts sets the default attempt count
func WithMaxAttempts(n int) Option {
	return func(o *Options) {
		o.MaxAttempts = n
	}
}

// ImageTimeout returns the timeout for an image size, falling back to the 1K value
func (o *Options) ImageTimeout(imageSize string) time.Duration {
	if d, ok := o.ImageTimeouts[imageSize]; ok {
		return d
	}
	return o.ImageTimeouts["1K"]
}
