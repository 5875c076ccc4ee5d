package common

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/chriscorrea/nodellm/internal/media"
)

// request kinds, used in logs and metrics labels
const (
	KindChat  = "chat"
	KindImage = "image"
)

// Client is the interface every provider client implements
type Client interface {
	Chat(ctx context.Context, cfg ChatConfig, in ChatInput) (string, error)
	Image(ctx context.Context, cfg ImageConfig, in ImageInput) (media.Batch, error)
}

// Recorder receives one observation per attempt
type Recorder interface {
	ObserveAttempt(provider, kind, category string, elapsed time.Duration)
}

// Provider is the unified interface that every provider must implement.
// It combines factory and adapter roles into a single contract; the
// AdapterClient handles HTTP, retries and logging and delegates the
// provider-specific details to these methods.
type Provider interface {
	CreateClient(opts ...ClientOption) Client
	ProviderName() string
	DefaultBaseURL() string
	RetryPolicy() RetryPolicy

	// BuildChatRequest and BuildImageRequest are called again on every attempt
	BuildChatRequest(cfg ChatConfig, in ChatInput, logger *slog.Logger) (*Payload, error)
	BuildImageRequest(cfg ImageConfig, in ImageInput, logger *slog.Logger) (*Payload, error)

	ParseChatResponse(body []byte, logger *slog.Logger) (string, error)
	// ParseImageResponse returns the data URLs of the generated images
	ParseImageResponse(body []byte, logger *slog.Logger) ([]string, error)
	// FinalizeImages adjusts the decoded batch, e.g. to honor the requested count
	FinalizeImages(batch media.Batch, in ImageInput) media.Batch

	// HandleError turns an HTTP rejection into an actionable error that still wraps it
	HandleError(err *HTTPError) error
	// HandleConnectionError may add guidance to a transport failure; it must keep the original wrapped
	HandleConnectionError(err error) error
	// CustomizeRequest adds provider-specific headers
	CustomizeRequest(req *http.Request, ep Endpoint) error
}
