// Package litellm binds Gemini models served through a LiteLLM proxy.
//
// API Reference: https://docs.litellm.ai/docs/completion/input
// Authentication: providers.litellm.api_key or LITELLM_API_KEY environment variable
//
// The proxy speaks the OpenAI chat-completions protocol. Image generation goes
// through the same endpoint with a Gemini image_config object and no modalities.
// Requests are made exactly once by default; the proxy does its own retrying.
package litellm

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/chriscorrea/nodellm/internal/llm/common"
	"github.com/chriscorrea/nodellm/internal/media"
)

// Provider implements the unified common.Provider interface for a LiteLLM proxy
type Provider struct {
	opts *Options
}

// ensure Provider implements the common.Provider interface
var _ common.Provider = (*Provider)(nil)

// New creates a new LiteLLM provider instance
func New(opts ...Option) *Provider {
	return &Provider{opts: NewOptions(opts...)}
}

// CreateClient creates a new client using the unified adapter pattern
func (p *Provider) CreateClient(opts ...common.ClientOption) common.Client {
	return common.NewAdapterClient(p, opts...)
}

// ProviderName returns the name of this provider
func (p *Provider) ProviderName() string {
	return "litellm"
}

// DefaultBaseURL is empty: every LiteLLM deployment has its own address
func (p *Provider) DefaultBaseURL() string {
	return ""
}

// RetryPolicy returns a single attempt unless configured otherwise
func (p *Provider) RetryPolicy() common.RetryPolicy {
	return common.RetryPolicy{MaxAttempts: p.opts.MaxAttempts}
}

// BuildChatRequest creates a chat-completions payload
func (p *Provider) BuildChatRequest(cfg common.ChatConfig, in common.ChatInput, logger *slog.Logger) (*common.Payload, error) {
	req, err := common.BuildChatRequest(cfg, in)
	if err != nil {
		return nil, err
	}
	common.LogAPIRequest(logger, "LiteLLM", common.KindChat, cfg.Endpoint, len(req.Messages), media.Count(in.Images...))

	return &common.Payload{Path: common.ChatCompletionsPath, Body: req, Timeout: p.opts.ChatTimeout}, nil
}

// BuildImageRequest creates a chat-completions payload carrying image_config
func (p *Provider) BuildImageRequest(cfg common.ImageConfig, in common.ImageInput, logger *slog.Logger) (*common.Payload, error) {
	req, err := common.BuildImageRequest(cfg, in, nil)
	if err != nil {
		return nil, err
	}
	common.LogAPIRequest(logger, "LiteLLM", common.KindImage, cfg.Endpoint, len(req.Messages), media.Count(in.Images...))

	return &common.Payload{Path: common.ChatCompletionsPath, Body: req, Timeout: p.opts.ImageTimeout}, nil
}

// ParseChatResponse extracts the assistant text
func (p *Provider) ParseChatResponse(body []byte, logger *slog.Logger) (string, error) {
	return common.ParseChatContent(body, logger)
}

// ParseImageResponse extracts image data URLs from message.images
func (p *Provider) ParseImageResponse(body []byte, logger *slog.Logger) ([]string, error) {
	urls, err := common.ParseImageURLs(body, logger)
	if errors.Is(err, common.ErrUnexpectedModality) {
		return nil, fmt.Errorf("Gemini returned a text response instead of an image: %w", err)
	}
	return urls, err
}

// FinalizeImages returns the batch unchanged; the proxy path does not pad to n
func (p *Provider) FinalizeImages(batch media.Batch, in common.ImageInput) media.Batch {
	return batch
}

// HandleError creates LiteLLM-specific error messages from HTTP error responses
func (p *Provider) HandleError(err *common.HTTPError) error {
	switch err.Code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf(`LiteLLM proxy rejected the API key.

Check the virtual key configured for your proxy.
You can set the key using the environment variable LITELLM_API_KEY or via nodellm config set litellm-key=<your_key>: %w`, err)

	case http.StatusNotFound:
		return fmt.Errorf(`LiteLLM proxy could not find the requested model or route.

Make sure the model name matches an entry in the proxy's model_list and that api_base ends with /v1: %w`, err)

	case http.StatusTooManyRequests:
		return fmt.Errorf("LiteLLM proxy rate limit exceeded, please try again later: %w", err)
	}

	return fmt.Errorf("LiteLLM API error: %w", err)
}

// HandleConnectionError adds guidance when the proxy is unreachable
func (p *Provider) HandleConnectionError(err error) error {
	var transportErr *common.TransportError
	if errors.As(err, &transportErr) && !transportErr.Timeout && !transportErr.Fatal {
		return fmt.Errorf(`Cannot connect to the LiteLLM proxy.

Check that the proxy is running and that api_base points at it (for example https://litellm.example.com/v1): %w`, err)
	}
	return err
}

// CustomizeRequest needs no provider-specific headers
func (p *Provider) CustomizeRequest(req *http.Request, ep common.Endpoint) error {
	return nil
}
