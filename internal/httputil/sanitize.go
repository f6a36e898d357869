package httputil

import (
	"fmt"
	"net/url"
)

// proxySchemes lists the proxy URL schemes net/http can dial through.
var proxySchemes = map[string]bool{
	"http":    true,
	"https":   true,
	"socks5":  true,
	"socks5h": true,
}

// ValidateURL checks that a URL is well-formed and uses HTTPS.
func ValidateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("malformed URL: %w", err)
	}
	if u.Scheme != "https" {
		return fmt.Errorf("only HTTPS URLs are allowed, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL has no host")
	}
	return nil
}

// ParseProxyURL parses a proxy URL and checks that its scheme is supported.
func ParseProxyURL(rawURL string) (*url.URL, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("malformed proxy URL: %w", err)
	}
	if !proxySchemes[u.Scheme] {
		return nil, fmt.Errorf("unsupported proxy scheme %q (valid: http, https, socks5, socks5h)", u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("proxy URL has no host")
	}
	return u, nil
}
