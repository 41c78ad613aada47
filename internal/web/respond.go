// internal/web/respond.go
//
// JSON response helpers shared by every handler.
//
// User-visible failures always carry a short human-readable message under
// the "error" key.  Internal diagnostic detail goes to the log, never to the
// caller; the one sanctioned exception is the explicit POST /email/test
// diagnostic, which is documented where it happens.
package web

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// respond writes v as JSON with the given status.
func respond(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.S().Errorw("response encode failed", "err", err)
	}
}

// respondError writes {"error": msg} with the given status.
func respondError(w http.ResponseWriter, status int, msg string) {
	respond(w, status, map[string]string{"error": msg})
}

// decode parses a JSON request body into dst, with a 1 MiB cap so nobody
// posts us a novel.
func decode(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, 1<<20)
	return json.NewDecoder(r.Body).Decode(dst)
}
