package extract

import (
	"context"
	"errors"
	"net/http"
	"reflect"
	"testing"
)

func TestExtractRejectsForeignDomains(t *testing.T) {
	urls := []string{
		"https://example.com/play/1",
		"https://vavoo.tv/api/app/ping",
		"",
		"ftp://files.example.org/vavoo",
	}

	for _, strategy := range []Strategy{Direct, Authenticated} {
		api := &fakeAPI{}
		v := newTestVavoo(t, api.start(t), WithStrategy(strategy))

		for _, u := range urls {
			_, err := v.Extract(context.Background(), u)
			if !errors.Is(err, ErrNotVavooURL) {
				t.Errorf("%s: Extract(%q) error = %v, want ErrNotVavooURL", strategy, u, err)
			}
		}
		if n := api.total(); n != 0 {
			t.Errorf("%s: rejected URLs made %d network calls", strategy, n)
		}
	}
}

func TestExtractDirect(t *testing.T) {
	api := &fakeAPI{}
	v := newTestVavoo(t, api.start(t))

	src := "https://vavoo.to/vavoo-iptv/play/2817961029a2b0d2f0a1b?x=1"
	res, err := v.Extract(context.Background(), src)
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}

	if res.DestinationURL != src {
		t.Errorf("destination = %q, want %q", res.DestinationURL, src)
	}
	wantHeaders := map[string]string{"user-agent": "VAVOO/2.6", "referer": "https://vavoo.to/"}
	if !reflect.DeepEqual(res.RequestHeaders, wantHeaders) {
		t.Errorf("headers = %v, want %v", res.RequestHeaders, wantHeaders)
	}
	if res.MediaflowEndpoint != "proxy_stream_endpoint" {
		t.Errorf("endpoint = %q, want proxy_stream_endpoint", res.MediaflowEndpoint)
	}
	if n := api.total(); n != 0 {
		t.Errorf("direct strategy made %d network calls", n)
	}
}

func TestExtractDirectIsIdempotent(t *testing.T) {
	v := newTestVavoo(t, (&fakeAPI{}).start(t))
	src := "https://vavoo.to/play/42/index.m3u8"

	first, err := v.Extract(context.Background(), src)
	if err != nil {
		t.Fatal(err)
	}
	first.RequestHeaders["user-agent"] = "tampered"

	second, err := v.Extract(context.Background(), src)
	if err != nil {
		t.Fatal(err)
	}
	third, err := v.Extract(context.Background(), src)
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(second, third) {
		t.Errorf("repeated extractions differ: %+v vs %+v", second, third)
	}
	if second.RequestHeaders["user-agent"] != "VAVOO/2.6" {
		t.Error("mutating a returned result leaked into later results")
	}
}

func TestExtractAuthenticated(t *testing.T) {
	var gotSig string
	api := &fakeAPI{
		ping2: func(n int, w http.ResponseWriter, r *http.Request) {
			writeJSON(w, `{"response":{"signed":"guest"}}`)
		},
		resolve: func(n int, w http.ResponseWriter, r *http.Request) {
			gotSig = r.Header.Get("Mediahubmx-Signature")
			writeJSON(w, `{"url":"https://cdn.example/live.ts"}`)
		},
	}
	v := newTestVavoo(t, api.start(t), WithStrategy(Authenticated))

	res, err := v.Extract(context.Background(), "https://vavoo.to/play/7")
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	if res.DestinationURL != "https://cdn.example/live.ts" {
		t.Errorf("destination = %q", res.DestinationURL)
	}
	if gotSig != "guest" {
		t.Errorf("resolver got signature %q, want guest", gotSig)
	}
	if res.RequestHeaders["referer"] != "https://vavoo.to/" {
		t.Errorf("referer = %q", res.RequestHeaders["referer"])
	}
}

func TestExtractAuthenticatedWithoutSignature(t *testing.T) {
	api := &fakeAPI{
		ping2: func(n int, w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		},
	}
	v := newTestVavoo(t, api.start(t), WithStrategy(Authenticated))

	_, err := v.Extract(context.Background(), "https://vavoo.to/play/7")
	if !errors.Is(err, ErrAuthUnavailable) {
		t.Fatalf("Extract() error = %v, want ErrAuthUnavailable", err)
	}
	if got := api.ping2Calls.Load(); got != 3 {
		t.Errorf("ping2 calls = %d, want 3", got)
	}
	if got := api.resolveCalls.Load(); got != 0 {
		t.Errorf("resolver should not be called without a signature, got %d calls", got)
	}
}

func TestExtractAuthenticatedResolveFails(t *testing.T) {
	api := &fakeAPI{
		ping2: func(n int, w http.ResponseWriter, r *http.Request) {
			writeJSON(w, `{"response":{"signed":"guest"}}`)
		},
		resolve: func(n int, w http.ResponseWriter, r *http.Request) {
			writeJSON(w, `[]`)
		},
	}
	v := newTestVavoo(t, api.start(t), WithStrategy(Authenticated))

	_, err := v.Extract(context.Background(), "https://vavoo.to/play/7")
	if !errors.Is(err, ErrResolveFailed) {
		t.Fatalf("Extract() error = %v, want ErrResolveFailed", err)
	}
	if got := api.resolveCalls.Load(); got != 1 {
		t.Errorf("resolve calls = %d, want 1 (orchestrator must not retry)", got)
	}
}

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		in      string
		want    Strategy
		wantErr bool
	}{
		{"direct", Direct, false},
		{"", Direct, false},
		{"Authenticated", Authenticated, false},
		{"auth", Authenticated, false},
		{"magic", Direct, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseStrategy(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseStrategy(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseStrategy(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestNewReturnsExtractor(t *testing.T) {
	v := newTestVavoo(t, DefaultEndpoints())
	var ext Extractor = New(v.sessions)
	if ext == nil {
		t.Fatal("New() returned nil")
	}
	if !ext.CanExtract("https://vavoo.to/play/1") {
		t.Error("CanExtract should accept vavoo.to URLs")
	}
}
