package common

import (
	"context"
	"errors"
	"fmt"

	"github.com/chriscorrea/nodellm/internal/media"
)

var (
	// ErrInvalidConfig reports missing or malformed required configuration; never retried
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrMissingImageConfig reports an image request without aspect_ratio or image_size
	ErrMissingImageConfig = errors.New("image generation requires both aspect_ratio and image_size")

	// ErrInvalidInput reports prompt or image input that cannot be turned into a request
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnexpectedModality reports a text answer where images were requested
	ErrUnexpectedModality = errors.New("model returned text instead of image; try a simpler image description")

	// ErrNoImages reports an image response from which no image could be decoded
	ErrNoImages = errors.New("no images could be decoded from the response")

	// ErrEmptyResponse reports a response without choices
	ErrEmptyResponse = errors.New("empty response from provider")

	// ErrMalformedResponse reports a response body that is not valid JSON
	ErrMalformedResponse = errors.New("malformed response from provider")

	// ErrRequestTooLarge reports a request body above the transport ceiling
	ErrRequestTooLarge = errors.New("request body exceeds size limit")

	// ErrBlockedAddress reports a connection attempt to a loopback or private address
	ErrBlockedAddress = errors.New("refusing to connect to a loopback or private network address")
)

// TransportError is a DNS, TLS or connection level failure
type TransportError struct {
	Op      string
	Err     error
	Timeout bool
	// Fatal errors (certificate failures, blocked addresses, oversized responses) are never retried
	Fatal bool
}

func (e *TransportError) Error() string {
	switch {
	case e.Timeout:
		return fmt.Sprintf("transport error: %s timed out: %v", e.Op, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("transport error: %s: %v", e.Op, e.Err)
	default:
		return "transport error: " + e.Op
	}
}

func (e *TransportError) Unwrap() error { return e.Err }

// HTTPError is a remote rejection with status >= 400.
// Message is already truncated and scrubbed of credentials.
type HTTPError struct {
	Code    int
	Message string
}

func (e *HTTPError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("HTTP error %d", e.Code)
	}
	return fmt.Sprintf("HTTP error %d: %s", e.Code, e.Message)
}

// ProviderError is an error object returned inside an otherwise successful response
type ProviderError struct {
	Message string
}

func (e *ProviderError) Error() string {
	return "provider error: " + e.Message
}

// RetryError is the aggregate failure returned once every attempt has failed
type RetryError struct {
	Attempts int
	Err      error
}

func (e *RetryError) Error() string {
	if e.Attempts == 1 {
		return fmt.Sprintf("failed after 1 attempt: %v", e.Err)
	}
	return fmt.Sprintf("failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *RetryError) Unwrap() error { return e.Err }

// IsRetryable reports whether another attempt could succeed where err failed
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	switch {
	case errors.Is(err, ErrInvalidConfig),
		errors.Is(err, ErrMissingImageConfig),
		errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrUnexpectedModality),
		errors.Is(err, ErrRequestTooLarge),
		errors.Is(err, context.Canceled):
		return false
	}

	var transportErr *TransportError
	if errors.As(err, &transportErr) && transportErr.Fatal {
		return false
	}
	return true
}

// Category names used for metrics labels and exit codes
const (
	CategoryOK                 = "ok"
	CategoryInvalidConfig      = "invalid_config"
	CategoryTransport          = "transport"
	CategoryTimeout            = "timeout"
	CategoryHTTP               = "http"
	CategoryProvider           = "provider"
	CategoryDecode             = "media_decode"
	CategoryUnexpectedModality = "unexpected_modality"
	CategoryOther              = "error"
)

// Categorize maps an error onto its taxonomy category
func Categorize(err error) string {
	if err == nil {
		return CategoryOK
	}

	var (
		transportErr *TransportError
		httpErr      *HTTPError
		providerErr  *ProviderError
	)
	switch {
	case errors.Is(err, ErrInvalidConfig), errors.Is(err, ErrMissingImageConfig), errors.Is(err, ErrInvalidInput):
		return CategoryInvalidConfig
	case errors.Is(err, ErrUnexpectedModality):
		return CategoryUnexpectedModality
	case errors.As(err, &httpErr):
		return CategoryHTTP
	case errors.As(err, &transportErr):
		if transportErr.Timeout {
			return CategoryTimeout
		}
		return CategoryTransport
	case errors.Is(err, context.DeadlineExceeded):
		return CategoryTimeout
	case errors.As(err, &providerErr), errors.Is(err, ErrEmptyResponse), errors.Is(err, ErrMalformedResponse):
		return CategoryProvider
	case errors.Is(err, ErrNoImages), errors.Is(err, media.ErrDecode):
		return CategoryDecode
	default:
		return CategoryOther
	}
}
