// internal/mailer/diag.go
//
// SMTP failure diagnosis.
//
// Context
// -------
// When a send fails we want two things: a short user-facing message for the
// contact handler, and a temporary/permanent flag so callers know whether
// "try again later" is honest advice.  Reply codes are matched once, in one
// ordered table; 550-class mailbox rejections map to exactly one branch.
//
// Order matters: auth failures mention "535" before generic 5xx handling,
// and the temporary 4xx family is probed before the permanent 5xx family.
package mailer

import (
	"net"
	"strings"
)

// Diag classifies one transport failure.
type Diag struct {
	Code      string // auth|tls|dial|timeout|deferred|bad_recipient|rejected|unknown
	Temporary bool
	Message   string // short user-facing text
}

const genericMsg = "We could not send your message right now.  Please try again later."

// Diagnose maps a transport error to a Diag.  Nil errors yield the zero
// "unknown" classification.
func Diagnose(err error) Diag {
	if err == nil {
		return Diag{Code: "unknown", Message: genericMsg}
	}
	s := strings.ToLower(err.Error())

	if ne, ok := err.(net.Error); ok && ne.Timeout() {
		return Diag{Code: "timeout", Temporary: true, Message: genericMsg}
	}
	if strings.Contains(s, "timeout") || strings.Contains(s, "i/o timeout") {
		return Diag{Code: "timeout", Temporary: true, Message: genericMsg}
	}

	if strings.Contains(s, "connection refused") ||
		strings.Contains(s, "no such host") ||
		strings.Contains(s, "dial tcp") {
		return Diag{Code: "dial", Temporary: true, Message: genericMsg}
	}

	if strings.Contains(s, "x509:") ||
		(strings.Contains(s, "tls") && (strings.Contains(s, "handshake") || strings.Contains(s, "certificate"))) {
		return Diag{Code: "tls", Message: genericMsg}
	}

	if strings.Contains(s, "535") ||
		strings.Contains(s, "authentication failed") ||
		strings.Contains(s, "username and password not accepted") {
		return Diag{Code: "auth", Message: genericMsg}
	}

	// Temporary deferral: 4xx family.
	if strings.Contains(s, "421") || strings.Contains(s, "450") ||
		strings.Contains(s, "451") || strings.Contains(s, "452") ||
		strings.Contains(s, "try again later") ||
		strings.Contains(s, "temporarily") {
		return Diag{
			Code:      "deferred",
			Temporary: true,
			Message:   "The mail server is busy.  Please try again in a few minutes.",
		}
	}

	// Permanent mailbox rejection: the whole 550/5.1.1 family lands here,
	// and only here.
	if strings.Contains(s, "550") || strings.Contains(s, "5.1.1") ||
		strings.Contains(s, "user unknown") ||
		strings.Contains(s, "mailbox unavailable") ||
		strings.Contains(s, "mailbox not found") ||
		strings.Contains(s, "does not exist") {
		return Diag{
			Code:    "bad_recipient",
			Message: "The destination mailbox does not exist.  Please check the address.",
		}
	}

	if strings.Contains(s, "553") || strings.Contains(s, "554") ||
		strings.Contains(s, "rejected") || strings.Contains(s, "policy") {
		return Diag{Code: "rejected", Message: genericMsg}
	}

	return Diag{Code: "unknown", Message: genericMsg}
}
