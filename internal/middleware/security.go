// internal/middleware/security.go
//
// Security headers for a JSON-only API.
//
// The frontend is a separate static site, so the policy here can be blunt:
// nothing served by this process is a document anyone should frame, script,
// or render.  CSP therefore denies everything, and responses are marked
// non-cacheable since every endpoint is either a mutation or a live report.
//
// Notes
// -----
// • Headers are set *before* next.ServeHTTP; anything later would race the
//   handler's WriteHeader and be dropped.
// • HSTS is emitted even behind a TLS-terminating proxy, since browsers see
//   the site's domain as HTTPS either way.
// • Oxford commas, two spaces after periods.

package middleware

import "net/http"

// Security sets security headers on every response.
func Security(next http.Handler) http.Handler {
	const (
		hsts = "max-age=63072000; includeSubDomains; preload"
		csp  = "default-src 'none'; frame-ancestors 'none'; base-uri 'none'"
	)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Strict-Transport-Security", hsts)
		h.Set("Content-Security-Policy", csp)
		h.Set("X-Frame-Options", "DENY")
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Cache-Control", "no-store")

		next.ServeHTTP(w, r)
	})
}
