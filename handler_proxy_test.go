package gmapsgpx

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

// newTestProxy wires a proxy against a local upstream that plays the role
// of both the short-link service and the maps destination.
func newTestProxy(t *testing.T) (*proxy, *httptest.Server) {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/s/route", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/maps/dir/Sydney/Melbourne/@-37.8136,144.9631,10z", http.StatusFound)
	})
	mux.HandleFunc("/s/dead", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	u, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatal(err)
	}

	cfg := defaultConfig()
	cfg.Resolver.ShortLinkHosts = []string{u.Hostname()}
	cfg.Resolver.DestinationHosts = []string{u.Hostname()}
	return newProxy(cfg), srv
}

func doRequest(p *proxy, handler func(http.ResponseWriter, *http.Request), target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestHandleResolve(t *testing.T) {
	p, srv := newTestProxy(t)

	rec := doRequest(p, p.handleResolve, "/api/resolve?url="+url.QueryEscape(srv.URL+"/s/route"))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	want := srv.URL + "/maps/dir/Sydney/Melbourne/@-37.8136,144.9631,10z"
	if body["url"] != want {
		t.Errorf("expected url %q, got %q", want, body["url"])
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("expected CORS header, got %q", got)
	}
}

func TestHandleResolveRejections(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantStatus int
	}{
		{name: "missing url", query: "", wantStatus: http.StatusBadRequest},
		{name: "unparseable url", query: "?url=" + url.QueryEscape("://nope"), wantStatus: http.StatusBadRequest},
		{
			name:       "host not on allowlist",
			query:      "?url=" + url.QueryEscape("https://evil.example/s/route"),
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _ := newTestProxy(t)
			rec := doRequest(p, p.handleResolve, "/api/resolve"+tt.query)
			if rec.Code != tt.wantStatus {
				t.Errorf("expected %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestHandleResolveNonRedirectingLink(t *testing.T) {
	p, srv := newTestProxy(t)

	rec := doRequest(p, p.handleResolve, "/api/resolve?url="+url.QueryEscape(srv.URL+"/s/dead"))
	if rec.Code != http.StatusBadGateway {
		t.Errorf("expected 502 for a non-redirecting link, got %d", rec.Code)
	}
}

func TestHandleResolveRateLimit(t *testing.T) {
	p, srv := newTestProxy(t)
	p.limiter = newRateLimiter(RateLimitConfig{MaxRequests: 1, WindowMS: 60000, MaxClients: 10})

	target := "/api/resolve?url=" + url.QueryEscape(srv.URL+"/s/route")
	if rec := doRequest(p, p.handleResolve, target); rec.Code != http.StatusOK {
		t.Fatalf("first request should pass, got %d", rec.Code)
	}
	if rec := doRequest(p, p.handleResolve, target); rec.Code != http.StatusTooManyRequests {
		t.Errorf("second request should be rate limited, got %d", rec.Code)
	}
}

func TestHandleResolveUsesCache(t *testing.T) {
	p, srv := newTestProxy(t)

	target := "/api/resolve?url=" + url.QueryEscape(srv.URL+"/s/route")
	if rec := doRequest(p, p.handleResolve, target); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	// Kill the upstream; the memoized resolution must still be served.
	srv.Close()
	if rec := doRequest(p, p.handleResolve, target); rec.Code != http.StatusOK {
		t.Errorf("expected cached resolution, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHandleConvertFullURL(t *testing.T) {
	p, _ := newTestProxy(t)

	mapsURL := "https://www.google.com/maps/dir/Sydney+NSW/Melbourne+VIC/" +
		"data=!1d151.2093!2d-33.8688!1d144.9631!2d-37.8136"
	rec := doRequest(p, p.handleConvert, "/api/convert?url="+url.QueryEscape(mapsURL))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/gpx+xml" {
		t.Errorf("expected GPX content type, got %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "sydney-nsw-to-melbourne-vic") {
		t.Errorf("unexpected Content-Disposition %q", cd)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `<trkpt lat="-33.8688" lon="151.2093">`) {
		t.Errorf("GPX body missing first waypoint:\n%s", body)
	}
}

func TestHandleConvertShortLink(t *testing.T) {
	p, srv := newTestProxy(t)

	rec := doRequest(p, p.handleConvert, "/api/convert?url="+url.QueryEscape(srv.URL+"/s/route")+"&name=My+Trip")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	if !strings.Contains(body, "<name>My Trip</name>") {
		t.Errorf("name override not applied:\n%s", body)
	}
	if !strings.Contains(body, `<trkpt lat="-37.8136" lon="144.9631">`) {
		t.Errorf("viewport waypoint missing:\n%s", body)
	}
}

func TestHandleConvertNoCoordinates(t *testing.T) {
	p, _ := newTestProxy(t)

	rec := doRequest(p, p.handleConvert, "/api/convert?url="+url.QueryEscape("https://www.google.com/maps/dir/Sydney/Melbourne/"))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHandleHealth(t *testing.T) {
	p, _ := newTestProxy(t)

	rec := doRequest(p, p.handleHealth, "/api/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body healthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body.Status != "ok" {
		t.Errorf("expected status ok, got %q", body.Status)
	}
}
