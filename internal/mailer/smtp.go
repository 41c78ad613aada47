// internal/mailer/smtp.go
//
// Real SMTP transport on go-mail.
//
// go-mail negotiates STARTTLS automatically when the server offers it.  The
// library does not expose the server-assigned queue id, so we mint our own
// RFC 5322 Message-ID header and report that; it is what ends up threaded in
// the recipient's mailbox anyway.
package mailer

import (
	"fmt"
	"strings"

	mail "github.com/go-mail/mail"
	"github.com/google/uuid"
)

type smtpSender struct {
	cfg    Config
	dialer *mail.Dialer
}

func newSMTPSender(cfg Config) *smtpSender {
	d := mail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password)
	return &smtpSender{cfg: cfg, dialer: d}
}

// Send builds a multipart/alternative message when both bodies are present.
func (s *smtpSender) Send(to, subject, htmlBody, textBody string) (string, error) {
	m := mail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)

	id := messageID(s.cfg.From)
	m.SetHeader("Message-ID", id)

	switch {
	case textBody != "" && htmlBody != "":
		m.SetBody("text/plain", textBody)
		m.AddAlternative("text/html", htmlBody)
	case htmlBody != "":
		m.SetBody("text/html", htmlBody)
	default:
		m.SetBody("text/plain", textBody)
	}

	if err := s.dialer.DialAndSend(m); err != nil {
		return "", fmt.Errorf("smtp send: %w", err)
	}
	return id, nil
}

// Check dials and authenticates, then hangs up without sending.
func (s *smtpSender) Check() error {
	sc, err := s.dialer.Dial()
	if err != nil {
		return fmt.Errorf("smtp dial: %w", err)
	}
	return sc.Close()
}

// messageID mints "<uuid@domain>" using the From domain when parseable.
func messageID(from string) string {
	domain := "summit-site.local"
	if i := strings.LastIndexByte(from, '@'); i != -1 && i+1 < len(from) {
		domain = strings.TrimRight(from[i+1:], ">")
	}
	return "<" + uuid.NewString() + "@" + domain + ">"
}
