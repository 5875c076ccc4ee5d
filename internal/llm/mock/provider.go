// Package mock provides an offline binding used by --test runs.
package mock

import (
	"log/slog"
	"net/http"

	"github.com/chriscorrea/nodellm/internal/llm/common"
	"github.com/chriscorrea/nodellm/internal/media"
)

// Provider implements the unified common.Provider interface for Mock
type Provider struct{}

var _ common.Provider = (*Provider)(nil)

func New() *Provider {
	return &Provider{}
}

// CreateClient creates an adapter client whose HTTP calls never leave the process
func (p *Provider) CreateClient(opts ...common.ClientOption) common.Client {
	opts = append(opts[:len(opts):len(opts)], common.WithHTTPClient(&http.Client{Transport: roundTripper{}}))
	return common.NewAdapterClient(p, opts...)
}

// ProviderName returns the name of this provider
func (p *Provider) ProviderName() string {
	return "mock"
}

// DefaultBaseURL returns a placeholder so configuration validates offline
func (p *Provider) DefaultBaseURL() string {
	return "https://mock.invalid/v1"
}

// RetryPolicy returns a single attempt
func (p *Provider) RetryPolicy() common.RetryPolicy {
	return common.RetryPolicy{MaxAttempts: 1}
}

// BuildChatRequest builds the usual chat payload
func (p *Provider) BuildChatRequest(cfg common.ChatConfig, in common.ChatInput, logger *slog.Logger) (*common.Payload, error) {
	req, err := common.BuildChatRequest(cfg, in)
	if err != nil {
		return nil, err
	}
	return &common.Payload{Path: common.ChatCompletionsPath, Body: req}, nil
}

// BuildImageRequest builds the usual image payload
func (p *Provider) BuildImageRequest(cfg common.ImageConfig, in common.ImageInput, logger *slog.Logger) (*common.Payload, error) {
	req, err := common.BuildImageRequest(cfg, in, nil)
	if err != nil {
		return nil, err
	}
	return &common.Payload{Path: common.ChatCompletionsPath, Body: req}, nil
}

// ParseChatResponse parses like the chat-completions bindings
func (p *Provider) ParseChatResponse(body []byte, logger *slog.Logger) (string, error) {
	return common.ParseChatContent(body, logger)
}

// ParseImageResponse parses like the chat-completions bindings
func (p *Provider) ParseImageResponse(body []byte, logger *slog.Logger) ([]string, error) {
	return common.ParseImageURLs(body, logger)
}

// FinalizeImages pads the batch to n
func (p *Provider) FinalizeImages(batch media.Batch, in common.ImageInput) media.Batch {
	return batch.PadTo(in.N)
}

// HandleError returns the HTTP error unchanged
func (p *Provider) HandleError(err *common.HTTPError) error {
	return err
}

// HandleConnectionError handles mock connection errors
func (p *Provider) HandleConnectionError(err error) error {
	return err
}

// CustomizeRequest customizes mock requests
func (p *Provider) CustomizeRequest(req *http.Request, ep common.Endpoint) error {
	return nil
}
