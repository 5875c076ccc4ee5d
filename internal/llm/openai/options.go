package openai

import (
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is the public OpenAI API
	DefaultBaseURL = "https://api.openai.com/v1"

	DefaultChatTimeout  = 120 * time.Second
	DefaultImageTimeout = 180 * time.Second
	DefaultMaxAttempts  = 2

	// MaxImages is the most images requested per call
	MaxImages = 4
)

// Options contains OpenAI binding settings
type Options struct {
	ChatTimeout  time.Duration
	ImageTimeout time.Duration
	MaxAttempts  int
}

// Option configures the OpenAI binding using the functional options pattern
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

// WithMaxAttempts sets the default attempt count
func WithMaxAttempts(n int) Option {
	return func(o *Options) {
		o.MaxAttempts = n
	}
}

// SizeForAspectRatio maps an aspect ratio such as "16:9" onto the closest
// supported output size. Unparseable ratios fall back to square.
func SizeForAspectRatio(aspectRatio string) string {
	w, h, ok := strings.Cut(aspectRatio, ":")
	if !ok {
		return sizeSquare
	}
	width, errW := strconv.Atoi(w)
	height, errH := strconv.Atoi(h)
	if errW != nil || errH != nil || width <= 0 || height <= 0 {
		return sizeSquare
	}

	switch {
	case width > height:
		return sizeLandscape
	case width < height:
		return sizePortrait
	default:
		return sizeSquare
	}
}

// clampImages keeps n within [1, MaxImages]
func clampImages(n int) int {
	return min(max(n, 1), MaxImages)
}
