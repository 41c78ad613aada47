// internal/web/router.go
//
// Handler wiring.
//
// Context
// -------
// Handlers bundles the dependencies every endpoint needs: the lead store
// (whichever backend configuration picked), the mailer, and the email
// checker.  NewRouter assembles the chi router with the shared middleware
// chain: panic recovery, request enrichment, and security headers.
package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/SummitVoyage/summit-site/internal/emailcheck"
	"github.com/SummitVoyage/summit-site/internal/lead"
	"github.com/SummitVoyage/summit-site/internal/mailer"
	"github.com/SummitVoyage/summit-site/internal/middleware"
	"github.com/SummitVoyage/summit-site/internal/requestinfo"
)

// Handlers carries the endpoint dependencies.
type Handlers struct {
	Store   lead.Store
	Mail    *mailer.Service
	Checker *emailcheck.Checker
}

// validFormat is the one format gate used by every path that accepts an
// email address; registration and contact enforce the same policy.
func validFormat(email string) bool { return emailcheck.ValidateFormat(email) }

// NewRouter builds the full route table.
func NewRouter(h *Handlers, enricher *requestinfo.Enricher) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(enricher.Middleware)
	r.Use(middleware.Security)

	r.Route("/register", func(r chi.Router) {
		r.Post("/", h.Register)
		r.Get("/", h.ListLeads)
		r.Delete("/", h.DeleteLead)
	})

	r.Post("/contact", h.Contact)

	r.Get("/health/db", h.HealthDB)

	r.Route("/email/test", func(r chi.Router) {
		r.Get("/", h.EmailStatus)
		r.Post("/", h.EmailTest)
	})

	r.Get("/admin/stats", h.AdminStats)

	r.Handle("/metrics", promhttp.Handler())

	return r
}
