// Package origin checks browser Origin headers for the WebSocket upgrade and
// the REST API.
package origin

import (
	"net/http"
	"net/url"
	"slices"
	"strings"
)

// Checker allows everything for "*", otherwise the listed origins.
// With no list it falls back to a same-host check.
func Checker(allowed []string) func(r *http.Request) bool {
	norm := make([]string, 0, len(allowed))
	for _, o := range allowed {
		o = strings.TrimRight(strings.ToLower(strings.TrimSpace(o)), "/")
		if o != "" {
			norm = append(norm, o)
		}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || slices.Contains(norm, "*") {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil || u.Host == "" {
			return false
		}
		if len(norm) == 0 {
			return strings.EqualFold(u.Host, r.Host)
		}
		return slices.Contains(norm, strings.ToLower(u.Scheme+"://"+u.Host))
	}
}
