// Package openrouter binds Gemini models served through OpenRouter.
//
// API Reference: https://openrouter.ai/docs/api-reference/chat-completion
// Authentication: providers.openrouter.api_key or OPENROUTER_API_KEY environment variable
//
// Image generation uses chat completions with modalities ["image","text"] and a
// Gemini image_config. Optional attribution is sent as HTTP-Referer and X-Title.
package openrouter

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/chriscorrea/nodellm/internal/llm/common"
	"github.com/chriscorrea/nodellm/internal/media"
)

// Provider implements the unified common.Provider interface for OpenRouter
type Provider struct {
	opts *Options
}

// ensure Provider implements the common.Provider interface
var _ common.Provider = (*Provider)(nil)

// New creates a new OpenRouter provider instance
func New(opts ...Option) *Provider {
	return &Provider{opts: NewOptions(opts...)}
}

// CreateClient creates a new client using the unified adapter pattern
func (p *Provider) CreateClient(opts ...common.ClientOption) common.Client {
	return common.NewAdapterClient(p, opts...)
}

// ProviderName returns the name of this provider
func (p *Provider) ProviderName() string {
	return "openrouter"
}

// DefaultBaseURL returns the public OpenRouter endpoint
func (p *Provider) DefaultBaseURL() string {
	return DefaultBaseURL
}

// RetryPolicy returns the default of two attempts
func (p *Provider) RetryPolicy() common.RetryPolicy {
	return common.RetryPolicy{MaxAttempts: p.opts.MaxAttempts}
}

// BuildChatRequest creates a chat-completions payload
func (p *Provider) BuildChatRequest(cfg common.ChatConfig, in common.ChatInput, logger *slog.Logger) (*common.Payload, error) {
	req, err := common.BuildChatRequest(cfg, in)
	if err != nil {
		return nil, err
	}
	common.LogAPIRequest(logger, "OpenRouter", common.KindChat, cfg.Endpoint, len(req.Messages), media.Count(in.Images...))

	return &common.Payload{Path: common.ChatCompletionsPath, Body: req, Timeout: p.opts.ChatTimeout}, nil
}

// BuildImageRequest creates an image generation payload with output modalities;
// the timeout grows with the requested image size
func (p *Provider) BuildImageRequest(cfg common.ImageConfig, in common.ImageInput, logger *slog.Logger) (*common.Payload, error) {
	req, err := common.BuildImageRequest(cfg, in, p.opts.Modalities)
	if err != nil {
		return nil, err
	}
	common.LogAPIRequest(logger, "OpenRouter", common.KindImage, cfg.Endpoint, len(req.Messages), media.Count(in.Images...))

	return &common.Payload{
		Path:    common.ChatCompletionsPath,
		Body:    req,
		Timeout: p.opts.ImageTimeout(cfg.ImageSize),
	}, nil
}

// ParseChatResponse extracts the assistant text
func (p *Provider) ParseChatResponse(body []byte, logger *slog.Logger) (string, error) {
	return common.ParseChatContent(body, logger)
}

// ParseImageResponse extracts image data URLs from message.images
func (p *Provider) ParseImageResponse(body []byte, logger *slog.Logger) ([]string, error) {
	urls, err := common.ParseImageURLs(body, logger)
	if errors.Is(err, common.ErrUnexpectedModality) {
		return nil, fmt.Errorf("model returned text instead of an image, check that it supports image output: %w", err)
	}
	return urls, err
}

// FinalizeImages pads the batch to the requested count by repeating the first image
func (p *Provider) FinalizeImages(batch media.Batch, in common.ImageInput) media.Batch {
	return batch.PadTo(in.N)
}

// HandleError creates OpenRouter-specific error messages from HTTP error responses
func (p *Provider) HandleError(err *common.HTTPError) error {
	switch err.Code {
	case http.StatusUnauthorized:
		return fmt.Errorf(`OpenRouter API key is invalid or missing.

Create a key at https://openrouter.ai/keys.
You can set the key using the environment variable OPENROUTER_API_KEY or via nodellm config set openrouter-key=<your_key>: %w`, err)

	case http.StatusPaymentRequired:
		return fmt.Errorf("OpenRouter account has insufficient credits: %w", err)

	case http.StatusNotFound:
		return fmt.Errorf("OpenRouter does not list this model, check the model id (for example %s): %w", DefaultImageModel, err)

	case http.StatusTooManyRequests:
		return fmt.Errorf("OpenRouter rate limit exceeded, please try again later: %w", err)
	}

	return fmt.Errorf("OpenRouter API error: %w", err)
}

// HandleConnectionError adds guidance when OpenRouter cannot be reached
func (p *Provider) HandleConnectionError(err error) error {
	var transportErr *common.TransportError
	if errors.As(err, &transportErr) && transportErr.Timeout {
		return fmt.Errorf("OpenRouter did not answer in time; large image sizes can take several minutes: %w", err)
	}
	return err
}

// CustomizeRequest adds the optional attribution headers
func (p *Provider) CustomizeRequest(req *http.Request, ep common.Endpoint) error {
	setAttribution(req.Header, ep.SiteURL, ep.SiteName)
	return nil
}
