package common

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"syscall"
	"time"

	"github.com/tidwall/gjson"
)

// HTTP utility functions provide standardized HTTP operations and error handling

// transport ceilings
const (
	DefaultMaxRequestBytes  = 32 << 20
	DefaultMaxResponseBytes = 64 << 20
	maxErrorMessageLength   = 200
)

// Request is a single HTTP call handed to the Transport
type Request struct {
	Method  string
	URL     string
	Header  http.Header
	Body    []byte
	Timeout time.Duration
	// Customize runs on the prepared *http.Request before it is sent
	Customize func(*http.Request) error
}

// Transport performs HTTP calls with size ceilings and maps failures onto the error taxonomy
type Transport struct {
	Client           *http.Client
	MaxRequestBytes  int64
	MaxResponseBytes int64
	Logger           *slog.Logger
}

// Send executes req and returns the response body of a successful (< 400) call
func (t *Transport) Send(ctx context.Context, req Request) ([]byte, error) {
	maxReq, maxResp := t.limits()
	if int64(len(req.Body)) > maxReq {
		return nil, fmt.Errorf("%w: %d bytes (limit %d)", ErrRequestTooLarge, len(req.Body), maxReq)
	}

	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	method := req.Method
	if method == "" {
		method = http.MethodPost
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, req.URL, bytes.NewReader(req.Body))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrInvalidConfig, err)
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	if req.Customize != nil {
		if err := req.Customize(httpReq); err != nil {
			return nil, err
		}
	}

	resp, err := t.client().Do(httpReq)
	if err != nil {
		return nil, classifyTransportError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.ContentLength > maxResp {
		return nil, &TransportError{
			Op:    "read response",
			Err:   fmt.Errorf("declared body of %d bytes exceeds limit %d", resp.ContentLength, maxResp),
			Fatal: true,
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResp+1))
	if err != nil {
		return nil, classifyTransportError(ctx, err)
	}
	if int64(len(body)) > maxResp {
		return nil, &TransportError{
			Op:    "read response",
			Err:   fmt.Errorf("body exceeds limit of %d bytes", maxResp),
			Fatal: true,
		}
	}

	LogHTTPResponse(t.Logger, resp.StatusCode, len(body))
	LogRawResponse(t.Logger, string(body), resp.StatusCode)

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, &HTTPError{
			Code:    resp.StatusCode,
			Message: errorMessage(body, bearerToken(req.Header)),
		}
	}
	return body, nil
}

func (t *Transport) client() *http.Client {
	if t.Client != nil {
		return t.Client
	}
	return NewHTTPClient()
}

func (t *Transport) limits() (int64, int64) {
	maxReq, maxResp := t.MaxRequestBytes, t.MaxResponseBytes
	if maxReq <= 0 {
		maxReq = DefaultMaxRequestBytes
	}
	if maxResp <= 0 {
		maxResp = DefaultMaxResponseBytes
	}
	return maxReq, maxResp
}

// JSONHeaders returns the standard headers for an authenticated JSON API call
func JSONHeaders(apiKey, userAgent string) http.Header {
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	h.Set("Authorization", fmt.Sprintf("Bearer %s", apiKey))
	if userAgent != "" {
		h.Set("User-Agent", userAgent)
	}
	return h
}

// BuildEndpointURL joins a base URL and an API path
func BuildEndpointURL(baseURL, path string) string {
	return strings.TrimSuffix(baseURL, "/") + "/" + strings.TrimPrefix(path, "/")
}

// BuildChatCompletionsURL leverages how most providers use the same endpoint pattern
func BuildChatCompletionsURL(baseURL string) string {
	return BuildEndpointURL(baseURL, ChatCompletionsPath)
}

// SecureTLSConfig returns a TLS 1.2+ configuration restricted to AEAD cipher suites.
// Certificate verification is always on.
func SecureTLSConfig() *tls.Config {
	return &tls.Config{
		MinVersion: tls.VersionTLS12,
		CipherSuites: []uint16{
			tls.TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384,
			tls.TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384,
			tls.TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256,
			tls.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256,
			tls.TLS_ECDHE_ECDSA_WITH_CHACHA20_POLY1305,
			tls.TLS_ECDHE_RSA_WITH_CHACHA20_POLY1305,
		},
	}
}

// NewHTTPClient returns the default client: hardened TLS and a dialer that
// refuses loopback and private addresses after DNS resolution.
// Per-request timeouts come from the request context, so the client has none.
func NewHTTPClient() *http.Client {
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
		Control:   guardDial,
	}
	return &http.Client{
		Transport: &http.Transport{
			TLSClientConfig:       SecureTLSConfig(),
			DialContext:           dialer.DialContext,
			ForceAttemptHTTP2:     true,
			MaxIdleConns:          10,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}
}

// guardDial runs after name resolution with the concrete address being dialed
func guardDial(network, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return err
	}
	ip := net.ParseIP(host)
	if ip == nil || IsBlockedIP(ip) {
		return fmt.Errorf("%w: %s", ErrBlockedAddress, host)
	}
	return nil
}

func classifyTransportError(ctx context.Context, err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}

	var (
		unknownAuthority x509.UnknownAuthorityError
		hostnameErr      x509.HostnameError
		invalidCert      x509.CertificateInvalidError
		verifyErr        *tls.CertificateVerificationError
		netErr           net.Error
	)
	switch {
	case errors.As(err, &verifyErr),
		errors.As(err, &unknownAuthority),
		errors.As(err, &hostnameErr),
		errors.As(err, &invalidCert):
		return &TransportError{Op: "tls verification", Err: err, Fatal: true}
	case errors.Is(err, ErrBlockedAddress):
		return &TransportError{Op: "dial", Err: err, Fatal: true}
	case errors.Is(err, context.DeadlineExceeded), ctx.Err() != nil:
		return &TransportError{Op: "request", Err: err, Timeout: true}
	case errors.As(err, &netErr) && netErr.Timeout():
		return &TransportError{Op: "request", Err: err, Timeout: true}
	default:
		return &TransportError{Op: "request", Err: err}
	}
}

// errorMessage extracts the provider's message from an error body,
// scrubs the bearer key out of it and truncates it
func errorMessage(body []byte, secret string) string {
	msg := ""
	if gjson.ValidBytes(body) {
		for _, path := range []string{"error.message", "error", "message", "detail"} {
			if r := gjson.GetBytes(body, path); r.Type == gjson.String && r.Str != "" {
				msg = r.Str
				break
			}
		}
	}
	if msg == "" {
		msg = strings.TrimSpace(string(body))
	}
	msg = ScrubSecret(msg, secret)
	if runes := []rune(msg); len(runes) > maxErrorMessageLength {
		msg = string(runes[:maxErrorMessageLength]) + "..."
	}
	return msg
}

func bearerToken(h http.Header) string {
	return strings.TrimSpace(strings.TrimPrefix(h.Get("Authorization"), "Bearer "))
}
