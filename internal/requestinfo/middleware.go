// internal/requestinfo/middleware.go
//
// Client-IP extraction for the enrichment middleware.
//
// The left-most parseable address from X-Forwarded-For wins, then X-Real-Ip,
// then the socket peer.  Spoofable headers are acceptable here: the result
// feeds attribution logging, never authorization.
package requestinfo

import (
	"net"
	"net/http"
	"strings"
)

// clientIP extracts the left-most address from X-Forwarded-For or X-Real-Ip,
// falling back to r.RemoteAddr ("ip:port").
func clientIP(r *http.Request) net.IP {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		for _, part := range strings.Split(xff, ",") {
			if ip := net.ParseIP(strings.TrimSpace(part)); ip != nil {
				return ip
			}
		}
	}
	if xrip := r.Header.Get("X-Real-Ip"); xrip != "" {
		if ip := net.ParseIP(strings.TrimSpace(xrip)); ip != nil {
			return ip
		}
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return net.ParseIP(host)
	}
	return nil
}
