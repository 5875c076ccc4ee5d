// Package openai provides a binding for OpenAI and OpenAI-compatible gateways.
//
// API Reference: https://platform.openai.com/docs/api-reference/chat/create
// Image Reference: https://platform.openai.com/docs/api-reference/images/create
// Authentication: providers.openai.api_key or OPENAI_API_KEY environment variable
//
// Chat goes through chat/completions like the other bindings. Image generation
// uses the dedicated images/generations endpoint with base64 output, so reference
// images cannot be attached there.
//
// OpenAI model documentation: https://platform.openai.com/docs/models
package openai

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/chriscorrea/nodellm/internal/llm/common"
	"github.com/chriscorrea/nodellm/internal/media"
)

// Provider implements the unified common.Provider interface for OpenAI
type Provider struct {
	opts *Options
}

// ensure Provider implements the common.Provider interface
var _ common.Provider = (*Provider)(nil)

// New creates a new OpenAI provider instance
func New(opts ...Option) *Provider {
	return &Provider{opts: NewOptions(opts...)}
}

// CreateClient creates a new client using the unified adapter pattern
func (p *Provider) CreateClient(opts ...common.ClientOption) common.Client {
	return common.NewAdapterClient(p, opts...)
}

// ProviderName returns the name of this provider
func (p *Provider) ProviderName() string {
	return "openai"
}

// DefaultBaseURL returns the public OpenAI endpoint
func (p *Provider) DefaultBaseURL() string {
	return DefaultBaseURL
}

// RetryPolicy returns the default attempt count
func (p *Provider) RetryPolicy() common.RetryPolicy {
	return common.RetryPolicy{MaxAttempts: p.opts.MaxAttempts}
}

// BuildChatRequest creates a chat-completions payload
func (p *Provider) BuildChatRequest(cfg common.ChatConfig, in common.ChatInput, logger *slog.Logger) (*common.Payload, error) {
	req, err := common.BuildChatRequest(cfg, in)
	if err != nil {
		return nil, err
	}
	common.LogAPIRequest(logger, "OpenAI", common.KindChat, cfg.Endpoint, len(req.Messages), media.Count(in.Images...))

	return &common.Payload{Path: common.ChatCompletionsPath, Body: req, Timeout: p.opts.ChatTimeout}, nil
}

// BuildImageRequest creates an images/generations payload.
// The prompt and additional text are joined; reference images are dropped.
func (p *Provider) BuildImageRequest(cfg common.ImageConfig, in common.ImageInput, logger *slog.Logger) (*common.Payload, error) {
	if cfg.AspectRatio == "" || cfg.ImageSize == "" {
		return nil, common.ErrMissingImageConfig
	}
	if n := media.Count(in.Images...); n > 0 && logger != nil {
		logger.Warn("images/generations does not accept reference images, ignoring them", "image_count", n)
	}

	parts := make([]string, 0, 2)
	for _, s := range []string{in.Prompt, in.AdditionalText} {
		if s = common.NormalizePrompt(s); s != "" {
			parts = append(parts, s)
		}
	}
	prompt := strings.Join(parts, "\n\n")
	if prompt == "" {
		prompt = common.DefaultImageText
	}

	req := &ImageGenerationRequest{
		Model:          cfg.Model,
		Prompt:         prompt,
		N:              clampImages(in.N),
		Size:           SizeForAspectRatio(cfg.AspectRatio),
		ResponseFormat: responseFormatB64,
	}
	common.LogAPIRequest(logger, "OpenAI", common.KindImage, cfg.Endpoint, 1, 0)

	return &common.Payload{Path: common.ImageGenerationsPath, Body: req, Timeout: p.opts.ImageTimeout}, nil
}

// ParseChatResponse extracts the assistant text
func (p *Provider) ParseChatResponse(body []byte, logger *slog.Logger) (string, error) {
	return common.ParseChatContent(body, logger)
}

// ParseImageResponse turns data[].b64_json entries into PNG data URLs
func (p *Provider) ParseImageResponse(body []byte, logger *slog.Logger) ([]string, error) {
	if !gjson.ValidBytes(body) {
		common.LogJSONUnmarshalError(logger, common.ErrMalformedResponse, string(body))
		return nil, common.ErrMalformedResponse
	}

	root := gjson.ParseBytes(body)
	if e := root.Get("error"); e.Exists() && e.Type != gjson.Null {
		msg := e.Get("message").String()
		if msg == "" {
			msg = e.String()
		}
		return nil, &common.ProviderError{Message: msg}
	}

	data := root.Get("data")
	if !data.IsArray() {
		return nil, fmt.Errorf("%w: no data array in response", common.ErrEmptyResponse)
	}

	var urls []string
	for i, entry := range data.Array() {
		switch {
		case entry.Get("b64_json").String() != "":
			urls = append(urls, "data:image/png;base64,"+entry.Get("b64_json").String())
		case strings.HasPrefix(entry.Get("url").String(), "data:"):
			urls = append(urls, entry.Get("url").String())
		default:
			common.LogImageSkipped(logger, i, fmt.Errorf("entry carries no inline image data"))
		}
	}
	if len(urls) == 0 {
		return nil, common.ErrNoImages
	}
	return urls, nil
}

// FinalizeImages returns the batch unchanged; the API already honors n
func (p *Provider) FinalizeImages(batch media.Batch, in common.ImageInput) media.Batch {
	return batch
}

// HandleError creates OpenAI-specific error messages from HTTP error responses
func (p *Provider) HandleError(err *common.HTTPError) error {
	switch err.Code {
	case http.StatusUnauthorized:
		return fmt.Errorf(`OpenAI API authentication failed.

Check your API key and ensure it is set correctly.
You can set the API key using the environment variable OPENAI_API_KEY or via nodellm config set openai-key=<your_api_key>
Get an API key from https://platform.openai.com/api-keys: %w`, err)

	case http.StatusTooManyRequests:
		return fmt.Errorf(`OpenAI API rate limit exceeded.

Please try again later or check your usage at https://platform.openai.com/usage: %w`, err)
	}

	return fmt.Errorf("OpenAI API error: %w", err)
}

// HandleConnectionError handles connection failures - for cloud services, return original error
func (p *Provider) HandleConnectionError(err error) error {
	return err
}

// CustomizeRequest needs no customization at this time
func (p *Provider) CustomizeRequest(req *http.Request, ep common.Endpoint) error {
	return nil
}
