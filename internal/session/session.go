// Package session owns the single reusable HTTP session used to talk to the vavoo API.
// A Manager holds at most one live Session; it is rebuilt lazily after being
// invalidated, re-rolling the egress proxy each time.
package session

import (
	"errors"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"net/url"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/dnscache"

	"vavoo/internal/httputil"
	"vavoo/internal/metrics"
)

// DefaultIdentity is the User-Agent sent on every request that does not set its own.
const DefaultIdentity = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// ErrClosed is returned when a request is sent on a closed session.
var ErrClosed = errors.New("session closed")

// Config describes how sessions are built. It is read once per session.
type Config struct {
	Timeouts       httputil.Timeouts
	Proxies        []string
	IdentityHeader string
	DefaultHeaders map[string]string
}

// Session is an HTTP client bound to one transport.
type Session struct {
	Seq   int
	ID    string
	Proxy string // empty for direct connections

	client  *http.Client
	headers map[string]string

	mu     sync.Mutex
	closed bool
}

// Do sends req after filling in the session's default headers.
func (s *Session) Do(req *http.Request) (*http.Response, error) {
	if s.Closed() {
		return nil, ErrClosed
	}
	for k, v := range s.headers {
		if req.Header.Get(k) == "" {
			req.Header.Set(k, v)
		}
	}
	return s.client.Do(req)
}

// Closed reports whether the session has been closed.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Close drops idle connections and marks the session unusable. Safe to call twice.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.client.CloseIdleConnections()
}

// Manager hands out the current session, creating one when needed.
// A retry sequence that invalidates the session is not coordinated across
// goroutines; give each logical caller its own Manager.
type Manager struct {
	cfg      Config
	proxies  []*url.URL
	resolver *dnscache.Resolver
	log      *slog.Logger
	rng      *rand.Rand

	mu      sync.Mutex
	current *Session
	seq     int
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger used for session lifecycle messages.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) { m.log = l }
}

// WithRand sets the random source used to pick proxies.
func WithRand(r *rand.Rand) Option {
	return func(m *Manager) { m.rng = r }
}

// NewManager validates the proxy pool and returns a Manager with no open session.
func NewManager(cfg Config, opts ...Option) (*Manager, error) {
	if cfg.Timeouts == (httputil.Timeouts{}) {
		cfg.Timeouts = httputil.DefaultTimeouts()
	}
	if cfg.IdentityHeader == "" {
		cfg.IdentityHeader = DefaultIdentity
	}

	m := &Manager{
		cfg:      cfg,
		resolver: &dnscache.Resolver{},
		log:      slog.Default(),
	}
	for _, raw := range cfg.Proxies {
		u, err := httputil.ParseProxyURL(raw)
		if err != nil {
			return nil, err
		}
		m.proxies = append(m.proxies, u)
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Acquire returns the live session, building a new one if there is none or the
// previous one was closed.
func (m *Manager) Acquire() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current != nil && !m.current.Closed() {
		return m.current
	}

	m.seq++
	s := &Session{
		Seq:     m.seq,
		ID:      uuid.NewString(),
		headers: m.defaultHeaders(),
	}

	var transport *http.Transport
	if proxy := m.pickProxy(); proxy != nil {
		s.Proxy = proxy.Redacted()
		transport = httputil.NewProxyTransport(m.cfg.Timeouts, proxy)
		m.log.Info("using proxy for vavoo session", "proxy", s.Proxy, "session", s.ID)
		metrics.SessionsCreated.WithLabelValues("proxy").Inc()
	} else {
		transport = httputil.NewDirectTransport(m.cfg.Timeouts, m.resolver)
		m.log.Debug("opening direct vavoo session", "session", s.ID)
		metrics.SessionsCreated.WithLabelValues("direct").Inc()
	}

	s.client = &http.Client{
		Timeout:   m.cfg.Timeouts.Total,
		Transport: transport,
	}
	m.current = s
	return s
}

// Invalidate closes the current session so the next Acquire builds a fresh one.
// Cached DNS entries are refreshed along with it.
func (m *Manager) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return
	}
	m.log.Debug("discarding vavoo session", "session", m.current.ID, "seq", m.current.Seq)
	m.current.Close()
	m.current = nil
	m.resolver.Refresh(true)
}

// Close releases the held session, if any.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current != nil {
		m.current.Close()
		m.current = nil
	}
}

func (m *Manager) pickProxy() *url.URL {
	if len(m.proxies) == 0 {
		return nil
	}
	if m.rng != nil {
		return m.proxies[m.rng.IntN(len(m.proxies))]
	}
	return m.proxies[rand.IntN(len(m.proxies))]
}

func (m *Manager) defaultHeaders() map[string]string {
	headers := make(map[string]string, len(m.cfg.DefaultHeaders)+1)
	for k, v := range m.cfg.DefaultHeaders {
		headers[http.CanonicalHeaderKey(k)] = v
	}
	headers["User-Agent"] = m.cfg.IdentityHeader
	return headers
}
