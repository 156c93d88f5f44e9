package gmapsgpx

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrNoRedirect is returned when a shortened link responds without
// redirecting anywhere.
var ErrNoRedirect = errors.New("shortened link did not redirect")

// Resolver expands shortened map links by following HTTP redirects.
type Resolver struct {
	client *http.Client
}

// NewResolver creates a resolver whose fetches are bounded by timeout.
func NewResolver(timeout time.Duration) *Resolver {
	return &Resolver{client: &http.Client{Timeout: timeout}}
}

// Resolve fetches raw, follows any redirect chain and returns the final
// URL. A failed or non-redirecting fetch is an error for the caller to
// handle; the fetch is never retried here.
func (r *Resolver) Resolve(ctx context.Context, raw string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, raw, nil)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", raw, err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", raw, err)
	}
	defer func() { _ = resp.Body.Close() }()

	final := resp.Request.URL.String()
	if final == raw {
		return "", fmt.Errorf("resolve %s: %w", raw, ErrNoRedirect)
	}
	return final, nil
}

// IsShortenedURL reports whether raw belongs to one of the configured
// short-link hosts.
func IsShortenedURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return hostAllowed(u.Hostname(), Config.Resolver.ShortLinkHosts)
}

// hostAllowed does exact, case-insensitive matching against an allowlist.
// Subdomains of an allowed host are not allowed implicitly.
func hostAllowed(host string, allowed []string) bool {
	for _, h := range allowed {
		if strings.EqualFold(host, h) {
			return true
		}
	}
	return false
}
