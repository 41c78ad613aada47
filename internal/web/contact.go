// internal/web/contact.go
//
// Contact-form endpoint.
//
// Context
// -------
// Before attempting delivery the handler validates the *destination* admin
// address's DNS records.  That guards against a silently undeliverable
// configuration: if the admin domain stops resolving, the caller gets an
// honest 503 instead of a fake success while mail rots in a queue.  Known
// SMTP rejection codes map to distinct user-facing messages; everything else
// collapses to a generic retry-later line.
package web

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/SummitVoyage/summit-site/internal/mailer"
	"github.com/SummitVoyage/summit-site/internal/metrics"
)

type contactPayload struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Company string `json:"company"`
	Phone   string `json:"phone"`
	Service string `json:"service"`
	Message string `json:"message"`
}

func (p *contactPayload) validate() string {
	switch {
	case p.Name == "":
		return "name is required"
	case p.Email == "":
		return "email is required"
	case p.Message == "":
		return "message is required"
	}
	if !validFormat(p.Email) {
		return "email format is invalid"
	}
	return ""
}

// Contact handles POST /contact.
func (h *Handlers) Contact(w http.ResponseWriter, r *http.Request) {
	var p contactPayload
	if err := decode(r, &p); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if msg := p.validate(); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	admin := h.Mail.AdminAddress()
	if admin == "" {
		zap.S().Errorw("contact rejected, no admin address configured")
		respondError(w, http.StatusServiceUnavailable,
			"The contact form is not available right now.  Please try again later.")
		return
	}

	// DNS pre-check on the destination, not the submitter: an unresolvable
	// admin domain means nothing we send can arrive.
	if check := h.Checker.Validate(r.Context(), admin); !check.IsValid {
		zap.S().Errorw("contact destination failed DNS check",
			"admin", admin, "detail", check.Error)
		respondError(w, http.StatusServiceUnavailable,
			"The contact form is not available right now.  Please try again later.")
		return
	}

	res, err := h.Mail.SendContact(mailer.ContactNotice{
		Name:    p.Name,
		Email:   p.Email,
		Company: p.Company,
		Phone:   p.Phone,
		Service: p.Service,
		Message: p.Message,
	})
	if err != nil {
		metrics.EmailSendTotal.WithLabelValues("contact", "error").Inc()
		diag := mailer.Diagnose(err)
		zap.S().Warnw("contact send failed", "code", diag.Code, "err", err)

		status := http.StatusInternalServerError
		if diag.Temporary {
			status = http.StatusServiceUnavailable
		}
		respondError(w, status, diag.Message)
		return
	}

	metrics.EmailSendTotal.WithLabelValues("contact", "ok").Inc()
	metrics.ContactMessagesTotal.Inc()
	respond(w, http.StatusOK, map[string]any{
		"success":   true,
		"message":   "Thanks for reaching out.  We will get back to you shortly.",
		"messageId": res.MessageID,
	})
}
