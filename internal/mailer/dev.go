// internal/mailer/dev.go
//
// Recording transport for environments without SMTP credentials.
//
// Mirrors the disposable test account a hosted mail sandbox would hand out:
// throwaway credentials are generated at construction and logged once by the
// service, and every Send is recorded in memory instead of hitting the wire.
// Tests and the /email/test endpoint read the recording back.
package mailer

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DevMessage is one recorded send.
type DevMessage struct {
	To       string
	Subject  string
	HTMLBody string
	TextBody string
	SentAt   time.Time
}

type devSender struct {
	user string
	pass string

	mu   sync.Mutex
	sent []DevMessage
}

func newDevSender() *devSender {
	short := uuid.NewString()[:8]
	return &devSender{
		user: "dev-" + short + "@summit-site.local",
		pass: uuid.NewString(),
	}
}

func (d *devSender) Send(to, subject, htmlBody, textBody string) (string, error) {
	d.mu.Lock()
	d.sent = append(d.sent, DevMessage{
		To:       to,
		Subject:  subject,
		HTMLBody: htmlBody,
		TextBody: textBody,
		SentAt:   time.Now().UTC(),
	})
	d.mu.Unlock()
	return messageID(d.user), nil
}

// Check always succeeds; there is nothing to dial.
func (d *devSender) Check() error { return nil }

// Recorded returns a copy of everything sent so far.
func (d *devSender) Recorded() []DevMessage {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]DevMessage, len(d.sent))
	copy(out, d.sent)
	return out
}

// DevRecorded exposes the recording when the service runs in dev mode, nil
// otherwise.  Used by tests and the diagnostic endpoint.
func (s *Service) DevRecorded() []DevMessage {
	if d, ok := s.sender.(*devSender); ok {
		return d.Recorded()
	}
	return nil
}
