// Package assets holds the fixed client identity documents sent to the vavoo API.
// They are versioned files embedded at build time; rotating them means adding a new
// file and bumping IdentityVersion, without touching the request code.
package assets

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// IdentityVersion is the app version the embedded identity document impersonates.
const IdentityVersion = "3.1.20"

//go:embed identity/*.json guest/*.txt
var files embed.FS

// RawIdentity returns the identity document for IdentityVersion exactly as stored.
func RawIdentity() ([]byte, error) {
	data, err := files.ReadFile("identity/ping-" + IdentityVersion + ".json")
	if err != nil {
		return nil, fmt.Errorf("reading identity %s: %w", IdentityVersion, err)
	}
	return data, nil
}

// IdentityPayload returns the ping request body stamped with now as lastAppStart.
// The embedded document is decoded into a fresh map on every call and never modified.
func IdentityPayload(now time.Time) (map[string]any, error) {
	raw, err := RawIdentity()
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var payload map[string]any
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("parsing identity %s: %w", IdentityVersion, err)
	}

	payload["lastAppStart"] = now.UnixMilli()
	return payload, nil
}

// GuestVector returns the opaque blob posted as the "vec" form field of the guest flow.
func GuestVector() (string, error) {
	data, err := files.ReadFile("guest/ping2-vec.txt")
	if err != nil {
		return "", fmt.Errorf("reading guest vector: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}
