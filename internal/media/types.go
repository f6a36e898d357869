// Package media defines shared types for the vavoo resolver.
package media

import "time"

// Result is what an extraction hands to the playback layer.
// RequestHeaders must be sent verbatim with every fetch of DestinationURL.
type Result struct {
	DestinationURL    string            `json:"destination_url"`
	RequestHeaders    map[string]string `json:"request_headers"`
	MediaflowEndpoint string            `json:"mediaflow_endpoint"`
}

// HistoryEntry records one completed resolution.
type HistoryEntry struct {
	SourceURL      string    `json:"source_url"`
	DestinationURL string    `json:"destination_url"`
	Strategy       string    `json:"strategy"`
	Endpoint       string    `json:"mediaflow_endpoint"`
	ResolvedAt     time.Time `json:"resolved_at"`
}
