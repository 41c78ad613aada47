// internal/mailer/mailer.go
//
// Transactional email service.
//
// Context
// -------
// The service is constructed once at boot.  When real SMTP credentials are
// configured (host, user, and password all present and none of them the
// .env.example placeholders), a go-mail dialer is used.  Otherwise the
// service provisions a disposable dev transport that fabricates throwaway
// credentials, logs them, and records messages in memory instead of dialing
// anything.  That keeps local development and CI working without a mail
// server, while making the mode visible in logs and /email/test.
//
// Sends are best-effort from the caller's point of view: every Send* method
// returns a SendResult rather than failing the enclosing request.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.
package mailer

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Placeholder credentials shipped in conf/.env.example.  Matching any of
// them means the operator never configured real SMTP.
const (
	placeholderHost = "smtp.example.com"
	placeholderUser = "your-email@example.com"
	placeholderPass = "your-password"
)

// ErrNotConfigured is returned when no transport could be established.
var ErrNotConfigured = errors.New("mailer: email service not configured")

// Config carries the SMTP settings from the config tree.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	Admin    string // destination for admin notifications and contact mail
}

// Sender is the transport behind the service: real SMTP or the dev recorder.
type Sender interface {
	// Send delivers one message and returns its transport message id.
	Send(to, subject, htmlBody, textBody string) (string, error)

	// Check verifies reachability and credentials without sending.
	Check() error
}

// SendResult reports one delivery attempt.
type SendResult struct {
	Success   bool   `json:"success"`
	MessageID string `json:"messageId,omitempty"`
	Error     string `json:"error,omitempty"`
}

// WelcomeData feeds the welcome template.
type WelcomeData struct {
	FirstName string
	LastName  string
	Email     string
	Company   string
}

// LeadNotice feeds the admin notification for a new registration.
type LeadNotice struct {
	FirstName string
	LastName  string
	Email     string
	Company   string
	Phone     string
	Message   string
}

// ContactNotice feeds the contact-form notification.
type ContactNotice struct {
	Name    string
	Email   string
	Company string
	Phone   string
	Service string
	Message string
}

// Service builds and sends transactional email.
type Service struct {
	cfg    Config
	sender Sender
	dev    bool
}

// New picks the transport.  The returned service is never nil; an empty
// configuration yields the dev transport.
func New(cfg Config) *Service {
	s := &Service{cfg: cfg}

	if realCreds(cfg) {
		s.sender = newSMTPSender(cfg)
		zap.S().Infow("mailer online", "mode", "smtp", "host", cfg.Host, "port", cfg.Port)
		return s
	}

	dev := newDevSender()
	s.sender = dev
	s.dev = true
	zap.S().Infow("mailer online", "mode", "dev",
		"note", "no real SMTP credentials, messages are recorded locally",
		"throwaway_user", dev.user,
		"throwaway_pass", dev.pass,
	)
	return s
}

// NewWithSender builds a service on a caller-supplied transport.  Used by
// tests and by anyone swapping SMTP for an API-based provider.
func NewWithSender(cfg Config, sender Sender) *Service {
	return &Service{cfg: cfg, sender: sender}
}

// realCreds reports whether cfg names a real SMTP account.
func realCreds(cfg Config) bool {
	if cfg.Host == "" || cfg.User == "" || cfg.Password == "" {
		return false
	}
	return cfg.Host != placeholderHost && cfg.User != placeholderUser && cfg.Password != placeholderPass
}

// DevMode reports whether the service runs on the recording transport.
func (s *Service) DevMode() bool { return s.dev }

// AdminAddress returns the configured admin destination.
func (s *Service) AdminAddress() string { return s.cfg.Admin }

// SendWelcome renders and sends the welcome email.  The embedded confirmation
// token is display-only; nothing verifies it.
func (s *Service) SendWelcome(d WelcomeData) SendResult {
	if s.sender == nil {
		return SendResult{Error: ErrNotConfigured.Error()}
	}

	token := uuid.NewString()
	html, text, err := renderWelcome(d, token)
	if err != nil {
		zap.S().Errorw("welcome template render failed", "err", err)
		return SendResult{Error: "template render failed"}
	}

	id, err := s.sender.Send(d.Email, "Welcome to Summit Voyage", html, text)
	if err != nil {
		zap.S().Warnw("welcome send failed", "to", d.Email, "err", err)
		return SendResult{Error: Diagnose(err).Message}
	}
	return SendResult{Success: true, MessageID: id}
}

// SendAdminNotification tells the admin address about a new registration.
func (s *Service) SendAdminNotification(n LeadNotice) SendResult {
	if s.sender == nil {
		return SendResult{Error: ErrNotConfigured.Error()}
	}
	if s.cfg.Admin == "" {
		return SendResult{Error: "no admin address configured"}
	}

	subject := fmt.Sprintf("New registration: %s %s (%s)", n.FirstName, n.LastName, n.Company)
	id, err := s.sender.Send(s.cfg.Admin, subject, "", renderLeadNotice(n))
	if err != nil {
		zap.S().Warnw("admin notification failed", "err", err)
		return SendResult{Error: Diagnose(err).Message}
	}
	return SendResult{Success: true, MessageID: id}
}

// SendContact forwards a contact-form submission to the admin address.  The
// raw transport error rides back so the handler can map rejection codes.
func (s *Service) SendContact(n ContactNotice) (SendResult, error) {
	if s.sender == nil {
		return SendResult{Error: ErrNotConfigured.Error()}, ErrNotConfigured
	}
	if s.cfg.Admin == "" {
		return SendResult{Error: "no admin address configured"}, ErrNotConfigured
	}

	subject := "Contact form: " + n.Name
	id, err := s.sender.Send(s.cfg.Admin, subject, "", renderContactNotice(n))
	if err != nil {
		return SendResult{Error: Diagnose(err).Message}, err
	}
	return SendResult{Success: true, MessageID: id}, nil
}

// SendTest delivers a diagnostic email to the admin address.
func (s *Service) SendTest() SendResult {
	if s.sender == nil {
		return SendResult{Error: ErrNotConfigured.Error()}
	}
	body := fmt.Sprintf("Summit Voyage email diagnostic sent at %s.",
		time.Now().UTC().Format(time.RFC3339))
	id, err := s.sender.Send(s.cfg.Admin, "Summit Voyage email diagnostic", "", body)
	if err != nil {
		// The explicit diagnostic response is the one place transport
		// detail may reach the caller verbatim.
		return SendResult{Error: err.Error()}
	}
	return SendResult{Success: true, MessageID: id}
}

// TestConnection verifies transport reachability without sending mail.
func (s *Service) TestConnection() SendResult {
	if s.sender == nil {
		return SendResult{Error: ErrNotConfigured.Error()}
	}
	if err := s.sender.Check(); err != nil {
		return SendResult{Error: Diagnose(err).Message}
	}
	return SendResult{Success: true}
}
