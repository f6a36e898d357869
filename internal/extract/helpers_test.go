package extract

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"vavoo/internal/session"
)

// fakeAPI stands in for the vavoo API. Each handler sees the 1-based call number.
type fakeAPI struct {
	ping    func(n int, w http.ResponseWriter, r *http.Request)
	ping2   func(n int, w http.ResponseWriter, r *http.Request)
	resolve func(n int, w http.ResponseWriter, r *http.Request)

	pingCalls    atomic.Int32
	ping2Calls   atomic.Int32
	resolveCalls atomic.Int32
}

func (f *fakeAPI) total() int {
	return int(f.pingCalls.Load() + f.ping2Calls.Load() + f.resolveCalls.Load())
}

func (f *fakeAPI) start(t *testing.T) Endpoints {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/app/ping", func(w http.ResponseWriter, r *http.Request) {
		n := int(f.pingCalls.Add(1))
		if f.ping == nil {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		f.ping(n, w, r)
	})
	mux.HandleFunc("POST /api/box/ping2", func(w http.ResponseWriter, r *http.Request) {
		n := int(f.ping2Calls.Add(1))
		if f.ping2 == nil {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		f.ping2(n, w, r)
	})
	mux.HandleFunc("POST /mediahubmx-resolve.json", func(w http.ResponseWriter, r *http.Request) {
		n := int(f.resolveCalls.Add(1))
		if f.resolve == nil {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		f.resolve(n, w, r)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return Endpoints{
		Ping:    srv.URL + "/api/app/ping",
		Ping2:   srv.URL + "/api/box/ping2",
		Resolve: srv.URL + "/mediahubmx-resolve.json",
	}
}

func newTestVavoo(t *testing.T, endpoints Endpoints, opts ...Option) *Vavoo {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	sessions, err := session.NewManager(session.Config{}, session.WithLogger(logger))
	if err != nil {
		t.Fatalf("NewManager() error: %v", err)
	}

	opts = append([]Option{
		WithEndpoints(endpoints),
		WithRetry(3, time.Millisecond),
		WithLogger(logger),
	}, opts...)

	v := NewVavoo(sessions, opts...)
	t.Cleanup(v.Close)
	return v
}

func writeJSON(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	io.WriteString(w, body)
}
