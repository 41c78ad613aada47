// internal/web/register.go
//
// Lead registration endpoints.
//
// Context
// -------
// POST walks one request through five gates: field validation, duplicate
// lookup, persistence, best-effort notification sends, response shaping.
// The two email sends are explicitly non-fatal: their outcome is recorded on
// the stored row, and the registration succeeds regardless.  A
// unique-constraint race between the duplicate lookup and the insert is
// surfaced as the same 409 the lookup would have produced, never as a 500.
//
// GET serves the admin listing/search surface; DELETE removes one lead.
//
// Notes
// -----
// • Email format policy is strict on every path that accepts an address.
// • Oxford commas, two spaces after periods.
package web

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/SummitVoyage/summit-site/internal/lead"
	"github.com/SummitVoyage/summit-site/internal/mailer"
	"github.com/SummitVoyage/summit-site/internal/metrics"
	"github.com/SummitVoyage/summit-site/internal/requestinfo"
)

const duplicateMsg = "An account with this email already exists"

// registerPayload is the POST /register body.
type registerPayload struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Company   string `json:"company"`
	Phone     string `json:"phone"`
	Message   string `json:"message"`
}

// validate reports the first missing or malformed field, empty string if ok.
func (p *registerPayload) validate() string {
	switch {
	case p.FirstName == "":
		return "firstName is required"
	case p.LastName == "":
		return "lastName is required"
	case p.Email == "":
		return "email is required"
	case p.Company == "":
		return "company is required"
	case p.Phone == "":
		return "phone is required"
	}
	if !validFormat(p.Email) {
		return "email format is invalid"
	}
	return ""
}

// Register handles POST /register.
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var p registerPayload
	if err := decode(r, &p); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if msg := p.validate(); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	ctx := r.Context()

	// Duplicate gate.  The insert below re-checks via the unique index, so
	// a race here cannot slip through.
	if _, err := h.Store.ByEmail(ctx, p.Email); err == nil {
		metrics.LeadsDuplicateTotal.Inc()
		respondError(w, http.StatusConflict, duplicateMsg)
		return
	} else if !errors.Is(err, lead.ErrNotFound) {
		zap.S().Errorw("duplicate lookup failed", "err", err)
		respondError(w, http.StatusInternalServerError, "registration is temporarily unavailable")
		return
	}

	rec, err := h.Store.Create(ctx, lead.New{
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Email:     p.Email,
		Company:   p.Company,
		Phone:     p.Phone,
		Message:   p.Message,
	})
	if err != nil {
		if errors.Is(err, lead.ErrDuplicateEmail) {
			// Concurrent registration won the race.
			metrics.LeadsDuplicateTotal.Inc()
			respondError(w, http.StatusConflict, duplicateMsg)
			return
		}
		zap.S().Errorw("lead create failed", "err", err)
		respondError(w, http.StatusInternalServerError, "registration is temporarily unavailable")
		return
	}
	metrics.LeadsCreatedTotal.Inc()

	if info := requestinfo.FromContext(ctx); info != nil {
		zap.S().Infow("lead registered",
			"id", rec.ID,
			"email", rec.Email,
			"company", rec.Company,
			"browser", info.UA.Browser,
			"device", info.UA.Device,
			"bot", info.UA.IsBot,
			"country", info.Geo.CountryISO,
		)
	} else {
		zap.S().Infow("lead registered", "id", rec.ID, "email", rec.Email, "company", rec.Company)
	}

	// Best-effort sends.  Failures are recorded, logged, and swallowed.
	rec = h.sendWelcome(r, rec)
	rec = h.notifyAdmin(r, rec)

	respond(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": "Registration complete",
		"user":    rec.Projection(),
	})
}

// sendWelcome fires the welcome email and records the outcome on the row.
func (h *Handlers) sendWelcome(r *http.Request, rec *lead.Record) *lead.Record {
	res := h.Mail.SendWelcome(mailer.WelcomeData{
		FirstName: rec.FirstName,
		LastName:  rec.LastName,
		Email:     rec.Email,
		Company:   rec.Company,
	})
	if !res.Success {
		metrics.EmailSendTotal.WithLabelValues("welcome", "error").Inc()
		zap.S().Warnw("welcome email failed", "lead", rec.ID, "err", res.Error)
		return rec
	}
	metrics.EmailSendTotal.WithLabelValues("welcome", "ok").Inc()

	now := time.Now().UTC()
	sent := true
	updated, err := h.Store.Update(r.Context(), rec.ID, lead.Patch{
		WelcomeSent:      &sent,
		WelcomeSentAt:    &now,
		WelcomeMessageID: &res.MessageID,
	})
	if err != nil {
		zap.S().Warnw("welcome status write failed", "lead", rec.ID, "err", err)
		return rec
	}
	return updated
}

// notifyAdmin fires the admin notification, independent of the welcome send.
func (h *Handlers) notifyAdmin(r *http.Request, rec *lead.Record) *lead.Record {
	res := h.Mail.SendAdminNotification(mailer.LeadNotice{
		FirstName: rec.FirstName,
		LastName:  rec.LastName,
		Email:     rec.Email,
		Company:   rec.Company,
		Phone:     rec.Phone,
		Message:   rec.Message,
	})
	if !res.Success {
		metrics.EmailSendTotal.WithLabelValues("admin", "error").Inc()
		zap.S().Warnw("admin notification failed", "lead", rec.ID, "err", res.Error)
		return rec
	}
	metrics.EmailSendTotal.WithLabelValues("admin", "ok").Inc()

	now := time.Now().UTC()
	sent := true
	updated, err := h.Store.Update(r.Context(), rec.ID, lead.Patch{
		AdminNotified:   &sent,
		AdminNotifiedAt: &now,
		AdminMessageID:  &res.MessageID,
	})
	if err != nil {
		zap.S().Warnw("admin status write failed", "lead", rec.ID, "err", err)
		return rec
	}
	return updated
}

// ListLeads handles GET /register?search=&company=&limit=&offset=.
func (h *Handlers) ListLeads(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	var (
		rows []lead.Record
		err  error
	)
	switch {
	case q.Get("search") != "":
		rows, err = h.Store.Search(ctx, q.Get("search"))
	case q.Get("company") != "":
		rows, err = h.Store.ByCompany(ctx, q.Get("company"))
	default:
		limit, _ := strconv.Atoi(q.Get("limit"))
		offset, _ := strconv.Atoi(q.Get("offset"))
		rows, err = h.Store.List(ctx, lead.ListOpts{Limit: limit, Offset: offset})
	}
	if err != nil {
		zap.S().Errorw("lead listing failed", "err", err)
		respondError(w, http.StatusInternalServerError, "listing is temporarily unavailable")
		return
	}

	total, err := h.Store.Count(ctx)
	if err != nil {
		zap.S().Errorw("lead count failed", "err", err)
		respondError(w, http.StatusInternalServerError, "listing is temporarily unavailable")
		return
	}

	respond(w, http.StatusOK, map[string]any{
		"users":    rows,
		"total":    total,
		"returned": len(rows),
	})
}

// DeleteLead handles DELETE /register?id=.
func (h *Handlers) DeleteLead(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
	if err != nil || id < 1 {
		respondError(w, http.StatusBadRequest, "id must be a positive integer")
		return
	}

	ok, err := h.Store.Delete(r.Context(), id)
	if err != nil {
		zap.S().Errorw("lead delete failed", "id", id, "err", err)
		respondError(w, http.StatusInternalServerError, "delete is temporarily unavailable")
		return
	}
	if !ok {
		respondError(w, http.StatusNotFound, "User not found")
		return
	}
	respond(w, http.StatusOK, map[string]any{"success": true, "userId": id})
}
