package common

import (
	"fmt"
	"net"
	"net/netip"
	"net/url"
	"strings"
)

// input validation shared by every provider binding;
// endpoint checks run before any request is built

// carrier-grade NAT space is not covered by netip's IsPrivate
var cgnatPrefix = netip.MustParsePrefix("100.64.0.0/10")

// NormalizeBaseURL trims surrounding whitespace and trailing slashes
func NormalizeBaseURL(raw string) string {
	return strings.TrimRight(strings.TrimSpace(raw), "/")
}

// ValidateBaseURL normalizes raw and rejects non-HTTP(S) schemes and hosts
// that point at loopback, private or otherwise internal networks
func ValidateBaseURL(raw string) (*url.URL, error) {
	normalized := NormalizeBaseURL(raw)
	if normalized == "" {
		return nil, fmt.Errorf("%w: api_base is required", ErrInvalidConfig)
	}

	u, err := url.Parse(normalized)
	if err != nil {
		return nil, fmt.Errorf("%w: api_base is not a valid URL", ErrInvalidConfig)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: api_base must use http or https, got %q", ErrInvalidConfig, u.Scheme)
	}
	if u.User != nil {
		return nil, fmt.Errorf("%w: api_base must not embed credentials", ErrInvalidConfig)
	}

	host := u.Hostname()
	if host == "" {
		return nil, fmt.Errorf("%w: api_base has no host", ErrInvalidConfig)
	}
	if IsBlockedHost(host) {
		return nil, fmt.Errorf("%w: api_base host %q is a loopback or private address", ErrInvalidConfig, host)
	}
	return u, nil
}

// IsBlockedHost reports whether host names a local or internal target.
// Names are not resolved here; the default HTTP client re-checks addresses at dial time.
func IsBlockedHost(host string) bool {
	host = strings.TrimSuffix(strings.ToLower(host), ".")
	if host == "localhost" || strings.HasSuffix(host, ".localhost") || strings.HasSuffix(host, ".internal") {
		return true
	}
	if ip := net.ParseIP(host); ip != nil {
		return IsBlockedIP(ip)
	}
	return false
}

// IsBlockedIP reports whether ip is loopback, private, link-local, unspecified or CGNAT
func IsBlockedIP(ip net.IP) bool {
	addr, ok := netip.AddrFromSlice(ip)
	if !ok {
		return true
	}
	addr = addr.Unmap()
	return addr.IsLoopback() ||
		addr.IsPrivate() ||
		addr.IsLinkLocalUnicast() ||
		addr.IsLinkLocalMulticast() ||
		addr.IsInterfaceLocalMulticast() ||
		addr.IsUnspecified() ||
		cgnatPrefix.Contains(addr)
}

// RedactKey renders an API key safe for logs and error messages
func RedactKey(key string) string {
	if len(key) <= 6 {
		return "***"
	}
	return key[:3] + "***" + key[len(key)-3:]
}

// ScrubSecret replaces every occurrence of secret in s with its redacted form
func ScrubSecret(s, secret string) string {
	if secret == "" {
		return s
	}
	return strings.ReplaceAll(s, secret, RedactKey(secret))
}

// NormalizePrompt trims surrounding whitespace from user-supplied text
func NormalizePrompt(s string) string {
	return strings.TrimSpace(s)
}
