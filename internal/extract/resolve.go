package extract

import (
	"bytes"
	"context"
	"encoding/json"

	"vavoo/internal/httputil"
	"vavoo/internal/metrics"
)

const (
	resolveLanguage      = "de"
	resolveRegion        = "AT"
	resolveClientVersion = "3.0.2"
)

type resolveRequest struct {
	Language      string `json:"language"`
	Region        string `json:"region"`
	URL           string `json:"url"`
	ClientVersion string `json:"clientVersion"`
}

type resolveItem struct {
	URL string `json:"url"`
}

// Resolve asks the mediahubmx endpoint for the playable URL behind sourceURL.
// Transport failures and responses without a url yield ok == false.
func (v *Vavoo) Resolve(ctx context.Context, sourceURL, signature string) (string, bool) {
	headers := map[string]string{
		"User-Agent":           "MediaHubMX/2",
		"Accept":               "application/json",
		"Mediahubmx-Signature": signature,
	}
	req := resolveRequest{
		Language:      resolveLanguage,
		Region:        resolveRegion,
		URL:           sourceURL,
		ClientVersion: resolveClientVersion,
	}

	v.log.Info("resolving vavoo URL", "url", sourceURL)

	body, err := httputil.PostJSON(ctx, v.sessions.Acquire(), v.endpoints.Resolve, req, headers)
	if err != nil {
		metrics.ResolveRequests.WithLabelValues(metrics.ResultFailure).Inc()
		v.log.Error("vavoo resolution failed", "url", sourceURL, "error", err)
		return "", false
	}

	resolved, ok := parseResolveResponse(body)
	if !ok {
		metrics.ResolveRequests.WithLabelValues(metrics.ResultMissing).Inc()
		v.log.Warn("no URL found in vavoo resolve response", "url", sourceURL, "body", string(body))
		return "", false
	}

	metrics.ResolveRequests.WithLabelValues(metrics.ResultSuccess).Inc()
	v.log.Info("vavoo URL resolved", "url", sourceURL, "resolved", resolved)
	return resolved, true
}

// parseResolveResponse accepts either a list of result objects or a single object
// and returns the first non-empty url, list element 0 first.
func parseResolveResponse(body []byte) (string, bool) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return "", false
	}

	switch body[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(body, &items); err != nil {
			return "", false
		}
		for _, raw := range items {
			var item resolveItem
			if err := json.Unmarshal(raw, &item); err != nil {
				continue
			}
			if item.URL != "" {
				return item.URL, true
			}
		}
	case '{':
		var item resolveItem
		if err := json.Unmarshal(body, &item); err != nil {
			return "", false
		}
		if item.URL != "" {
			return item.URL, true
		}
	}

	return "", false
}
