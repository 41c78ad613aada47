// internal/web/emailtest.go
//
// Email diagnostics.
//
// GET reports the transport mode and reachability without sending anything.
// POST sends one diagnostic message to the admin address; this is the one
// endpoint allowed to echo raw transport errors, because its only audience
// is the operator who is debugging mail configuration.
package web

import (
	"net/http"

	"github.com/SummitVoyage/summit-site/internal/metrics"
)

// EmailStatus handles GET /email/test.
func (h *Handlers) EmailStatus(w http.ResponseWriter, r *http.Request) {
	mode := "smtp"
	if h.Mail.DevMode() {
		mode = "dev"
	}

	conn := h.Mail.TestConnection()
	status := http.StatusOK
	if !conn.Success {
		status = http.StatusServiceUnavailable
	}

	respond(w, status, map[string]any{
		"mode":       mode,
		"admin":      h.Mail.AdminAddress(),
		"connection": conn,
	})
}

// EmailTest handles POST /email/test.
func (h *Handlers) EmailTest(w http.ResponseWriter, r *http.Request) {
	res := h.Mail.SendTest()
	if !res.Success {
		metrics.EmailSendTotal.WithLabelValues("test", "error").Inc()
		respond(w, http.StatusBadGateway, res)
		return
	}
	metrics.EmailSendTotal.WithLabelValues("test", "ok").Inc()
	respond(w, http.StatusOK, res)
}
