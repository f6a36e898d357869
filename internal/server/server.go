// Package server exposes extraction over HTTP in the mediaflow extractor format.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"vavoo/internal/extract"
	"vavoo/internal/media"
	"vavoo/internal/metrics"
)

// Factory builds an extractor for a single request. Extractors are not shared
// between requests because each owns a single HTTP session.
type Factory func() (extract.Extractor, error)

// Recorder persists completed resolutions.
type Recorder interface {
	Save(ctx context.Context, entry media.HistoryEntry) error
}

// Handlers serves the extractor API.
type Handlers struct {
	newExtractor Factory
	strategy     extract.Strategy
	history      Recorder
	log          *slog.Logger
}

// NewHandlers creates handlers. history may be nil.
func NewHandlers(factory Factory, strategy extract.Strategy, history Recorder, log *slog.Logger) *Handlers {
	return &Handlers{
		newExtractor: factory,
		strategy:     strategy,
		history:      history,
		log:          log.With("component", "api"),
	}
}

// RegisterRoutes registers all API routes.
func (h *Handlers) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /extractor", h.handleExtractor)
	mux.HandleFunc("GET /extractor/video", h.handleExtractor)
	mux.HandleFunc("GET /health", h.handleHealth)
	mux.Handle("GET /metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
}

// handleExtractor handles URL extraction requests.
func (h *Handlers) handleExtractor(w http.ResponseWriter, r *http.Request) {
	urlStr := r.URL.Query().Get("url")
	if urlStr == "" {
		urlStr = r.URL.Query().Get("d")
	}
	if urlStr == "" {
		h.writeError(w, http.StatusBadRequest, "url parameter required")
		return
	}

	h.log.Debug("extract request", "url", urlStr)

	ext, err := h.newExtractor()
	if err != nil {
		h.log.Error("creating extractor", "error", err)
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer ext.Close()

	result, err := ext.Extract(r.Context(), urlStr)
	if err != nil {
		h.log.Error("extraction failed", "url", urlStr, "error", err)
		h.writeError(w, statusFor(err), err.Error())
		return
	}

	if h.history != nil {
		entry := media.HistoryEntry{
			SourceURL:      urlStr,
			DestinationURL: result.DestinationURL,
			Strategy:       h.strategy.String(),
			Endpoint:       result.MediaflowEndpoint,
			ResolvedAt:     time.Now(),
		}
		if err := h.history.Save(r.Context(), entry); err != nil {
			h.log.Warn("saving history failed", "error", err)
		}
	}

	// The stream needs request_headers, so the result is always returned as JSON.
	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, extract.ErrNotVavooURL):
		return http.StatusBadRequest
	case errors.Is(err, extract.ErrAuthUnavailable), errors.Is(err, extract.ErrResolveFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Warn("writing response", "error", err)
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, map[string]string{"error": msg})
}
