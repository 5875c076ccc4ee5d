package common

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/chriscorrea/nodellm/internal/media"
)

// AdapterClient is a unified client that works with any Provider
// handles all common operations (HTTP requests, retries, logging, decoding)
// while delegating provider-specific logic to the adapter
type AdapterClient struct {
	*BaseClient
	adapter Provider
}

// ensure AdapterClient implements the Client interface
var _ Client = (*AdapterClient)(nil)

// NewAdapterClient creates a new unified client with the given adapter;
// the adapter's retry policy is the default attempt count
func NewAdapterClient(adapter Provider, opts ...ClientOption) *AdapterClient {
	base := NewBaseClient(adapter.RetryPolicy().MaxAttempts, opts...)
	return &AdapterClient{
		BaseClient: base,
		adapter:    adapter,
	}
}

// Chat sends a chat request and returns the assistant text.
// Every attempt rebuilds the payload, sends it and parses the response.
func (c *AdapterClient) Chat(ctx context.Context, cfg ChatConfig, in ChatInput) (string, error) {
	var content string
	err := Retry(ctx, c.RetryPolicy(), c.Logger, func(ctx context.Context, attempt int) error {
		start := time.Now()
		text, err := c.chatAttempt(ctx, cfg, in, attempt)
		c.observe(KindChat, err, time.Since(start))
		if err != nil {
			return err
		}
		content = text
		return nil
	})
	if err != nil {
		return "", err
	}

	LogRequestCompletion(c.Logger, KindChat, len(content))
	return content, nil
}

// Image sends an image generation request and returns the decoded images
func (c *AdapterClient) Image(ctx context.Context, cfg ImageConfig, in ImageInput) (media.Batch, error) {
	var batch media.Batch
	err := Retry(ctx, c.RetryPolicy(), c.Logger, func(ctx context.Context, attempt int) error {
		start := time.Now()
		b, err := c.imageAttempt(ctx, cfg, in, attempt)
		c.observe(KindImage, err, time.Since(start))
		if err != nil {
			return err
		}
		batch = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	batch = c.adapter.FinalizeImages(batch, in)
	LogRequestCompletion(c.Logger, KindImage, len(batch))
	return batch, nil
}

func (c *AdapterClient) chatAttempt(ctx context.Context, cfg ChatConfig, in ChatInput, attempt int) (string, error) {
	payload, err := c.adapter.BuildChatRequest(cfg, in, c.Logger)
	if err != nil {
		return "", err
	}
	body, err := c.send(ctx, cfg.Endpoint, payload, attempt)
	if err != nil {
		return "", err
	}
	return c.adapter.ParseChatResponse(body, c.Logger)
}

func (c *AdapterClient) imageAttempt(ctx context.Context, cfg ImageConfig, in ImageInput, attempt int) (media.Batch, error) {
	payload, err := c.adapter.BuildImageRequest(cfg, in, c.Logger)
	if err != nil {
		return nil, err
	}
	body, err := c.send(ctx, cfg.Endpoint, payload, attempt)
	if err != nil {
		return nil, err
	}
	urls, err := c.adapter.ParseImageResponse(body, c.Logger)
	if err != nil {
		return nil, err
	}
	return DecodeImages(urls, c.Logger)
}

// send marshals the payload and executes it through the Transport,
// letting the adapter refine HTTP and connection errors
func (c *AdapterClient) send(ctx context.Context, ep Endpoint, payload *Payload, attempt int) ([]byte, error) {
	jsonData, err := c.marshalRequest(payload.Body)
	if err != nil {
		return nil, err
	}

	url := BuildEndpointURL(ep.BaseURL, payload.Path)
	LogRequestExecution(c.Logger, url, attempt, c.RetryPolicy().Attempts())

	body, err := c.Transport().Send(ctx, Request{
		Method:  http.MethodPost,
		URL:     url,
		Header:  JSONHeaders(ep.APIKey, c.UserAgent),
		Body:    jsonData,
		Timeout: payload.Timeout,
		Customize: func(req *http.Request) error {
			return c.adapter.CustomizeRequest(req, ep)
		},
	})
	if err == nil {
		return body, nil
	}

	var httpErr *HTTPError
	var transportErr *TransportError
	switch {
	case errors.As(err, &httpErr):
		return nil, c.adapter.HandleError(httpErr)
	case errors.As(err, &transportErr):
		return nil, c.adapter.HandleConnectionError(err)
	default:
		return nil, err
	}
}

// marshalRequest converts the request to JSON
func (c *AdapterClient) marshalRequest(request interface{}) ([]byte, error) {
	jsonData, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to marshal %s request: %v", ErrInvalidInput, c.adapter.ProviderName(), err)
	}
	return jsonData, nil
}

func (c *AdapterClient) observe(kind string, err error, elapsed time.Duration) {
	if c.Recorder == nil {
		return
	}
	c.Recorder.ObserveAttempt(c.adapter.ProviderName(), kind, Categorize(err), elapsed)
}
