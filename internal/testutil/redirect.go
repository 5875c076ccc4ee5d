// Package testutil holds helpers shared by package tests.
package testutil

import (
	"context"
	"crypto/tls"
	"net"
	"net/http"
	"net/http/httptest"
)

// RedirectClient returns an HTTP client that dials server for every request,
// whatever host the request URL names. Tests use it to reach an httptest
// server on loopback through a public-looking api_base.
func RedirectClient(server *httptest.Server) *http.Client {
	addr := server.Listener.Addr().String()
	dialer := &net.Dialer{}
	return &http.Client{
		Transport: &http.Transport{
			DialContext: func(ctx context.Context, network, _ string) (net.Conn, error) {
				return dialer.DialContext(ctx, network, addr)
			},
		},
	}
}

// RedirectTLSClient is RedirectClient for TLS servers, using tlsConfig for the handshake
func RedirectTLSClient(server *httptest.Server, tlsConfig *tls.Config) *http.Client {
	c := RedirectClient(server)
	c.Transport.(*http.Transport).TLSClientConfig = tlsConfig
	return c
}
