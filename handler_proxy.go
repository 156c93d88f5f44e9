package gmapsgpx

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// proxy serves the HTTP API: a short-link resolver for browser callers
// (who cannot follow cross-origin redirects themselves) and a one-shot
// URL-to-GPX converter. Each instance owns its rate limiter and cache.
type proxy struct {
	cfg      AppConfig
	resolver *Resolver
	limiter  *rateLimiter
	resolved *resolveCache
}

func newProxy(cfg AppConfig) *proxy {
	return &proxy{
		cfg:      cfg,
		resolver: NewResolver(time.Duration(cfg.Resolver.TimeoutMS) * time.Millisecond),
		limiter:  newRateLimiter(cfg.RateLimit),
		resolved: newResolveCache(10*time.Minute, 1024),
	}
}

type healthResponse struct {
	Status string `json:"status"`
}

func (p *proxy) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

// handleResolve expands an allowlisted short link and returns the final
// URL as the sole field of a JSON object.
func (p *proxy) handleResolve(w http.ResponseWriter, r *http.Request) {
	writeCORS(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if !p.limiter.allow(clientAddr(r)) {
		writeJSONError(w, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}

	resolved, status, err := p.resolveChecked(r.Context(), r.URL.Query().Get("url"))
	if err != nil {
		writeJSONError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": resolved})
}

// handleConvert runs the whole pipeline server-side: resolve when the URL
// is a short link, extract, serialize, and serve the GPX document.
func (p *proxy) handleConvert(w http.ResponseWriter, r *http.Request) {
	writeCORS(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if !p.limiter.allow(clientAddr(r)) {
		writeJSONError(w, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}

	target := r.URL.Query().Get("url")
	if target == "" {
		writeJSONError(w, http.StatusBadRequest, "missing url parameter")
		return
	}
	if p.isShortLink(target) {
		resolved, status, err := p.resolveChecked(r.Context(), target)
		if err != nil {
			writeJSONError(w, status, err.Error())
			return
		}
		target = resolved
	}

	route, err := ExtractRoute(target)
	if err != nil {
		writeJSONError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	name := r.URL.Query().Get("name")
	doc := SerializeGPX(route, name)
	if name == "" {
		name = route.RouteName
	}
	w.Header().Set("Content-Type", "application/gpx+xml")
	w.Header().Set("Content-Disposition", `attachment; filename="`+SuggestedFilename(name)+`"`)
	_, _ = w.Write([]byte(doc))
}

// resolveChecked validates the short URL against the short-link allowlist,
// resolves it, and validates the destination against the destination
// allowlist. Returns the HTTP status to use on error.
func (p *proxy) resolveChecked(ctx context.Context, raw string) (string, int, error) {
	if raw == "" {
		return "", http.StatusBadRequest, errors.New("missing url parameter")
	}
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return "", http.StatusBadRequest, errors.New("invalid url")
	}
	if !hostAllowed(u.Hostname(), p.cfg.Resolver.ShortLinkHosts) {
		return "", http.StatusBadRequest, errors.New("url host not allowed")
	}

	if cached, ok := p.resolved.get(raw); ok {
		return cached, http.StatusOK, nil
	}

	resolved, err := p.resolver.Resolve(ctx, raw)
	if err != nil {
		log.Printf("resolve failed: %v", err)
		return "", http.StatusBadGateway, errors.New("could not resolve url")
	}
	ru, err := url.Parse(resolved)
	if err != nil || !hostAllowed(ru.Hostname(), p.cfg.Resolver.DestinationHosts) {
		return "", http.StatusBadRequest, errors.New("resolved url host not allowed")
	}

	p.resolved.put(raw, resolved)
	return resolved, http.StatusOK, nil
}

func (p *proxy) isShortLink(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return hostAllowed(u.Hostname(), p.cfg.Resolver.ShortLinkHosts)
}

// clientAddr identifies the caller for rate limiting: first hop of
// X-Forwarded-For when present, else the remote address without its port.
func clientAddr(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			return strings.TrimSpace(fwd[:i])
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeCORS(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode failed: %v", err)
	}
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
