package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"vavoo/internal/assets"
	"vavoo/internal/httputil"
	"vavoo/internal/session"
)

// Headers of the Android app. Accept-Encoding is left to net/http so gzip bodies
// are decompressed transparently.
var pingHeaders = map[string]string{
	"User-Agent": "okhttp/4.11.0",
	"Accept":     "application/json",
}

type pingResponse struct {
	AddonSig string `json:"addonSig"`
}

type ping2Response struct {
	Response struct {
		Signed string `json:"signed"`
	} `json:"response"`
}

// PrimarySignature performs the app "ping" handshake and returns its addonSig.
func (v *Vavoo) PrimarySignature(ctx context.Context, retries int, delay time.Duration) (string, bool) {
	return v.withRetry(ctx, "primary", retries, delay, func(ctx context.Context, s *session.Session) (string, error) {
		payload, err := assets.IdentityPayload(v.now())
		if err != nil {
			return "", err
		}

		body, err := httputil.PostJSON(ctx, s, v.endpoints.Ping, payload, pingHeaders)
		if err != nil {
			return "", err
		}
		v.log.Debug("vavoo ping response", "body", string(body))

		var resp pingResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return "", fmt.Errorf("parsing ping response: %w", err)
		}
		if resp.AddonSig == "" {
			return "", fmt.Errorf("%w: addonSig", errMissingField)
		}
		return resp.AddonSig, nil
	})
}

// GuestSignature performs the box "ping2" handshake and returns response.signed.
func (v *Vavoo) GuestSignature(ctx context.Context, retries int, delay time.Duration) (string, bool) {
	return v.withRetry(ctx, "guest", retries, delay, func(ctx context.Context, s *session.Session) (string, error) {
		vec, err := assets.GuestVector()
		if err != nil {
			return "", err
		}

		body, err := httputil.PostForm(ctx, s, v.endpoints.Ping2, url.Values{"vec": {vec}}, nil)
		if err != nil {
			return "", err
		}

		var resp ping2Response
		if err := json.Unmarshal(body, &resp); err != nil {
			return "", fmt.Errorf("parsing ping2 response: %w", err)
		}
		if resp.Response.Signed == "" {
			return "", fmt.Errorf("%w: response.signed", errMissingField)
		}
		return resp.Response.Signed, nil
	})
}
