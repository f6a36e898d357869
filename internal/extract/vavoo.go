package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"vavoo/internal/media"
	"vavoo/internal/metrics"
	"vavoo/internal/session"
)

const (
	vavooDomain       = "vavoo.to"
	mediaflowEndpoint = "proxy_stream_endpoint"

	// Sent by the vavoo player for direct streams; the origin checks both.
	streamUserAgent = "VAVOO/2.6"
	streamReferer   = "https://vavoo.to/"
)

var (
	// ErrNotVavooURL is returned for URLs outside the vavoo.to domain.
	ErrNotVavooURL = errors.New("not a valid vavoo URL")
	// ErrAuthUnavailable is returned when no guest signature could be obtained.
	ErrAuthUnavailable = errors.New("vavoo authentication unavailable")
	// ErrResolveFailed is returned when the resolver produced no URL.
	ErrResolveFailed = errors.New("vavoo resolution failed")
)

// Strategy selects how Extract turns a source URL into a destination.
type Strategy int

const (
	// Direct forwards the source URL unchanged. The origin currently serves these
	// URLs without a signature; that is observed behaviour, not a guarantee.
	Direct Strategy = iota
	// Authenticated obtains a guest signature and asks the resolver for the stream.
	Authenticated
)

func (s Strategy) String() string {
	switch s {
	case Direct:
		return "direct"
	case Authenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// ParseStrategy maps a configuration value to a Strategy.
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(name) {
	case "direct", "":
		return Direct, nil
	case "authenticated", "auth":
		return Authenticated, nil
	default:
		return Direct, fmt.Errorf("unsupported strategy %q (valid: direct, authenticated)", name)
	}
}

// Vavoo extracts streams from vavoo.to URLs. It owns one session manager and is
// meant to be used by a single caller at a time.
type Vavoo struct {
	sessions  *session.Manager
	endpoints Endpoints
	strategy  Strategy
	retries   int
	delay     time.Duration
	log       *slog.Logger
	now       func() time.Time
}

// Option configures a Vavoo extractor.
type Option func(*Vavoo)

// WithStrategy selects the extraction strategy.
func WithStrategy(s Strategy) Option {
	return func(v *Vavoo) { v.strategy = s }
}

// WithEndpoints overrides the remote API URLs.
func WithEndpoints(e Endpoints) Option {
	return func(v *Vavoo) { v.endpoints = e }
}

// WithRetry sets the attempt count and backoff unit used by the authenticated strategy.
func WithRetry(retries int, delay time.Duration) Option {
	return func(v *Vavoo) {
		v.retries = retries
		v.delay = delay
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(v *Vavoo) { v.log = l }
}

// NewVavoo creates an extractor on top of sessions.
func NewVavoo(sessions *session.Manager, opts ...Option) *Vavoo {
	v := &Vavoo{
		sessions:  sessions,
		endpoints: DefaultEndpoints(),
		strategy:  Direct,
		retries:   DefaultRetries,
		delay:     DefaultDelay,
		log:       slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Strategy reports the active strategy.
func (v *Vavoo) Strategy() Strategy { return v.strategy }

// CanExtract reports whether url belongs to vavoo.to.
func (v *Vavoo) CanExtract(url string) bool {
	return strings.Contains(url, vavooDomain)
}

// Extract resolves url according to the active strategy.
func (v *Vavoo) Extract(ctx context.Context, url string) (*media.Result, error) {
	if !v.CanExtract(url) {
		metrics.Extractions.WithLabelValues(v.strategy.String(), "rejected").Inc()
		return nil, fmt.Errorf("%w: %q", ErrNotVavooURL, url)
	}

	start := time.Now()
	defer func() {
		metrics.ExtractDuration.WithLabelValues(v.strategy.String()).Observe(time.Since(start).Seconds())
	}()

	var (
		destination string
		err         error
	)
	switch v.strategy {
	case Authenticated:
		destination, err = v.extractAuthenticated(ctx, url)
	default:
		destination = url
		v.log.Info("using direct mode with unmodified vavoo URL", "url", url)
	}

	if err != nil {
		metrics.Extractions.WithLabelValues(v.strategy.String(), metrics.ResultFailure).Inc()
		return nil, err
	}
	metrics.Extractions.WithLabelValues(v.strategy.String(), metrics.ResultSuccess).Inc()

	return &media.Result{
		DestinationURL:    destination,
		RequestHeaders:    streamHeaders(),
		MediaflowEndpoint: mediaflowEndpoint,
	}, nil
}

func (v *Vavoo) extractAuthenticated(ctx context.Context, url string) (string, error) {
	signature, ok := v.GuestSignature(ctx, v.retries, v.delay)
	if !ok {
		return "", fmt.Errorf("%w: no guest signature after %d attempts", ErrAuthUnavailable, v.retries)
	}

	resolved, ok := v.Resolve(ctx, url, signature)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrResolveFailed, url)
	}
	return resolved, nil
}

// Close releases the held session.
func (v *Vavoo) Close() {
	v.sessions.Close()
}

func streamHeaders() map[string]string {
	return map[string]string{
		"user-agent": streamUserAgent,
		"referer":    streamReferer,
	}
}

// New returns an extractor for the given strategy with default endpoints.
func New(sessions *session.Manager, opts ...Option) Extractor {
	return NewVavoo(sessions, opts...)
}
