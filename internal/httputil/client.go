// Package httputil provides the HTTP transports and request helpers used to talk to the vavoo API.
package httputil

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/dnscache"
)

// maxBodySize caps how much of a response body is read.
const maxBodySize = 10 * 1024 * 1024

// Timeouts bounds a single request. Read covers the wait for response headers.
type Timeouts struct {
	Total   time.Duration
	Connect time.Duration
	Read    time.Duration
}

// DefaultTimeouts returns the bounds used when none are configured.
func DefaultTimeouts() Timeouts {
	return Timeouts{
		Total:   60 * time.Second,
		Connect: 30 * time.Second,
		Read:    30 * time.Second,
	}
}

// Doer sends an HTTP request.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// NewDirectTransport creates a transport that dials over IPv4 only, reuses connections
// without a pool limit and resolves hosts through the shared DNS cache.
func NewDirectTransport(t Timeouts, resolver *dnscache.Resolver) *http.Transport {
	dialer := &net.Dialer{
		Timeout:   t.Connect,
		KeepAlive: 60 * time.Second,
	}

	return &http.Transport{
		DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			host, port, err := net.SplitHostPort(addr)
			if err != nil {
				return nil, err
			}
			ips, err := resolver.LookupHost(ctx, host)
			if err != nil {
				return nil, err
			}

			var lastErr error
			for _, ip := range ips {
				if parsed := net.ParseIP(ip); parsed == nil || parsed.To4() == nil {
					continue
				}
				conn, err := dialer.DialContext(ctx, "tcp4", net.JoinHostPort(ip, port))
				if err == nil {
					return conn, nil
				}
				lastErr = err
			}
			if lastErr == nil {
				lastErr = fmt.Errorf("no IPv4 address for %s", host)
			}
			return nil, lastErr
		},
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          0,
		MaxIdleConnsPerHost:   100,
		IdleConnTimeout:       60 * time.Second,
		ResponseHeaderTimeout: t.Read,
	}
}

// NewProxyTransport creates a transport that sends every request through proxyURL.
// http, https and socks5 proxies are supported.
func NewProxyTransport(t Timeouts, proxyURL *url.URL) *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyURL(proxyURL),
		DialContext: (&net.Dialer{
			Timeout:   t.Connect,
			KeepAlive: 60 * time.Second,
		}).DialContext,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
		ForceAttemptHTTP2:     true,
		IdleConnTimeout:       60 * time.Second,
		ResponseHeaderTimeout: t.Read,
	}
}

// PostJSON marshals body, posts it to rawURL and returns the response body.
// Any non-2xx status is an error.
func PostJSON(ctx context.Context, client Doer, rawURL string, body any, headers map[string]string) ([]byte, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}
	return post(ctx, client, rawURL, bytes.NewReader(data), "application/json; charset=utf-8", headers)
}

// PostForm posts form-encoded values to rawURL and returns the response body.
func PostForm(ctx context.Context, client Doer, rawURL string, values url.Values, headers map[string]string) ([]byte, error) {
	return post(ctx, client, rawURL, strings.NewReader(values.Encode()), "application/x-www-form-urlencoded", headers)
}

func post(ctx context.Context, client Doer, rawURL string, body io.Reader, contentType string, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", contentType)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, URL: rawURL}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	return data, nil
}

// StatusError reports a response outside the 2xx range.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d for %s", e.StatusCode, e.URL)
}
