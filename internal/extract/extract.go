// Package extract resolves vavoo.to URLs into playable streams
// by talking to the vavoo signature and resolution endpoints.
package extract

import (
	"context"

	"vavoo/internal/media"
)

// Extractor resolves source URLs into playable streams.
type Extractor interface {
	CanExtract(url string) bool
	Extract(ctx context.Context, url string) (*media.Result, error)
	Close()
}

// Endpoints are the remote API URLs the extractor talks to.
type Endpoints struct {
	Ping    string
	Ping2   string
	Resolve string
}

// DefaultEndpoints returns the production vavoo endpoints.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		Ping:    "https://www.vavoo.tv/api/app/ping",
		Ping2:   "https://www.vavoo.tv/api/box/ping2",
		Resolve: "https://vavoo.to/mediahubmx-resolve.json",
	}
}
