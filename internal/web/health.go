// internal/web/health.go
//
// Liveness endpoints: the database check wraps one cheap store call and the
// admin stats compose read-only store operations.  Nothing here mutates.
package web

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/SummitVoyage/summit-site/internal/lead"
)

// HealthDB handles GET /health/db.
func (h *Handlers) HealthDB(w http.ResponseWriter, r *http.Request) {
	ts := time.Now().UTC().Format(time.RFC3339)

	n, err := h.Store.Count(r.Context())
	if err != nil {
		zap.S().Warnw("health check failed", "err", err)
		respond(w, http.StatusServiceUnavailable, map[string]any{
			"status":    "error",
			"message":   "database unreachable",
			"timestamp": ts,
		})
		return
	}

	respond(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"message":   "database connection ok",
		"userCount": n,
		"timestamp": ts,
	})
}

// AdminStats handles GET /admin/stats: total count, trailing-30-day count,
// and a per-company breakdown, all composed from the store contract.
func (h *Handlers) AdminStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	total, err := h.Store.Count(ctx)
	if err != nil {
		zap.S().Errorw("stats count failed", "err", err)
		respondError(w, http.StatusInternalServerError, "stats are temporarily unavailable")
		return
	}

	recent, err := h.Store.Recent(ctx, lead.RecentDefaultDays)
	if err != nil {
		zap.S().Errorw("stats recent failed", "err", err)
		respondError(w, http.StatusInternalServerError, "stats are temporarily unavailable")
		return
	}

	all, err := h.Store.List(ctx, lead.ListOpts{})
	if err != nil {
		zap.S().Errorw("stats list failed", "err", err)
		respondError(w, http.StatusInternalServerError, "stats are temporarily unavailable")
		return
	}
	companies := make(map[string]int, 16)
	for i := range all {
		companies[all[i].Company]++
	}

	respond(w, http.StatusOK, map[string]any{
		"total":       total,
		"recentCount": len(recent),
		"recentDays":  lead.RecentDefaultDays,
		"companies":   companies,
	})
}
