// internal/lead/lead.go
//
// Lead domain model.
//
// Context
// -------
// A Lead is one row in the persistent `users` table: someone who filled in the
// registration form on the marketing site.  The two notification pairs
// (welcome, admin) record whether the corresponding transactional email went
// out, when, and under which transport message id.  The store layer owns the
// flags; handlers only flip them through Patch after a send attempt.
//
// Invariants
// ----------
//   - Email is unique across all rows and always stored lowercased + trimmed.
//   - ID and CreatedAt never change after insert.
//   - UpdatedAt refreshes on every field mutation.
//   - Notification booleans only transition false → true.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.
package lead

import (
	"errors"
	"strings"
	"time"
)

// Sentinel errors shared by every store backend.
var (
	// ErrDuplicateEmail maps a unique-constraint violation on the email
	// column, whichever backend raised it.
	ErrDuplicateEmail = errors.New("lead: email already registered")

	// ErrNotFound is returned by ByID, Update, and friends when no row
	// matches the given id.
	ErrNotFound = errors.New("lead: not found")
)

// Record mirrors one row of the `users` table.
type Record struct {
	ID        int64  `db:"id"         json:"id"`
	FirstName string `db:"first_name" json:"firstName"`
	LastName  string `db:"last_name"  json:"lastName"`
	Email     string `db:"email"      json:"email"`
	Company   string `db:"company"    json:"company"`
	Phone     string `db:"phone"      json:"phone"`
	Message   string `db:"message"    json:"message"`

	WelcomeSent      bool       `db:"welcome_sent"       json:"welcomeSent"`
	WelcomeSentAt    *time.Time `db:"welcome_sent_at"    json:"welcomeSentAt,omitempty"`
	WelcomeMessageID *string    `db:"welcome_message_id" json:"welcomeMessageId,omitempty"`

	AdminNotified    bool       `db:"admin_notified"     json:"adminNotified"`
	AdminNotifiedAt  *time.Time `db:"admin_notified_at"  json:"adminNotifiedAt,omitempty"`
	AdminMessageID   *string    `db:"admin_message_id"   json:"adminMessageId,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// Public is the projection returned to registration callers.  Internal
// notification bookkeeping stays out of the response body.
type Public struct {
	ID        int64     `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	Company   string    `json:"company"`
	CreatedAt time.Time `json:"createdAt"`
}

// Projection returns the public view of r.
func (r *Record) Projection() Public {
	return Public{
		ID:        r.ID,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Email:     r.Email,
		Company:   r.Company,
		CreatedAt: r.CreatedAt,
	}
}

// New carries the caller-supplied fields for an insert.  Normalize before
// handing it to a store.
type New struct {
	FirstName string
	LastName  string
	Email     string
	Company   string
	Phone     string
	Message   string
}

// Normalize trims every field, lowercases the email, and defaults Message to
// the empty string.  Stores call it themselves, so passing an un-normalized
// New is harmless, merely redundant.
func (n *New) Normalize() {
	n.FirstName = strings.TrimSpace(n.FirstName)
	n.LastName = strings.TrimSpace(n.LastName)
	n.Email = NormalizeEmail(n.Email)
	n.Company = strings.TrimSpace(n.Company)
	n.Phone = strings.TrimSpace(n.Phone)
	n.Message = strings.TrimSpace(n.Message)
}

// NormalizeEmail lowercases and trims an address.  Every email comparison in
// the system goes through this, which is what makes lookups case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Patch lists the mutable columns for Update.  Nil pointer means "leave the
// column alone".  An all-nil Patch short-circuits to a pure read; UpdatedAt
// is only refreshed when at least one field is set.  The notification
// booleans only transition false → true: both store backends drop a false
// value instead of writing it.
type Patch struct {
	FirstName *string
	LastName  *string
	Email     *string
	Company   *string
	Phone     *string
	Message   *string

	WelcomeSent      *bool
	WelcomeSentAt    *time.Time
	WelcomeMessageID *string

	AdminNotified   *bool
	AdminNotifiedAt *time.Time
	AdminMessageID  *string
}

// Empty reports whether the patch sets no fields at all.
func (p *Patch) Empty() bool {
	return p.FirstName == nil && p.LastName == nil && p.Email == nil &&
		p.Company == nil && p.Phone == nil && p.Message == nil &&
		p.WelcomeSent == nil && p.WelcomeSentAt == nil && p.WelcomeMessageID == nil &&
		p.AdminNotified == nil && p.AdminNotifiedAt == nil && p.AdminMessageID == nil
}
