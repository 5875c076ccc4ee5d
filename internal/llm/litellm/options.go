package litellm

import "time"

// default request timeouts; image generation on a proxied Gemini model is slow
const (
	DefaultChatTimeout  = 120 * time.Second
	DefaultImageTimeout = 180 * time.Second
	DefaultMaxAttempts  = 1
)

// DefaultImageModel is the Gemini image model as routed by LiteLLM
const DefaultImageModel = "gemini/gemini-3-pro-image-preview"

// Options contains LiteLLM binding settings
type Options struct {
	ChatTimeout  time.Duration
	ImageTimeout time.Duration
	MaxAttempts  int
}

// Option configures the LiteLLM binding using the functional options pattern
type Option func(*Options)

// NewOptions creates Options with defaults and functional options applied
func NewOptions(opts ...Option) *Options {
	o := &Options{
		ChatTimeout:  DefaultChatTimeout,
		ImageTimeout: DefaultImageTimeout,
		MaxAttempts:  DefaultMaxAttempts,
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

// WithImageTimeout sets the per-attempt timeout for image requests
func WithImageTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.ImageTimeout = d
	}
}

// WithMaxAttempts sets the default attempt count; the proxy path normally makes one
func WithMaxAttempts(n int) Option {
	return func(o *Options) {
		o.MaxAttempts = n
	}
}
