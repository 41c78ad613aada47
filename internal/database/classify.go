// internal/database/classify.go
//
// Connection-class fault detection.
//
// A connection-class fault is one where the server was unreachable rather
// than unwilling: refused socket, DNS miss, dial or read timeout, TLS or
// certificate failure, reset connection.  Those are worth retrying during
// bootstrap.  Everything else (bad credentials, unknown database, SQL errors)
// is a configuration or application fault, and retrying would only delay the
// inevitable.
package database

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"io"
	"net"
	"strings"
	"syscall"

	"github.com/go-sql-driver/mysql"
)

// IsConnectionError reports whether err looks like a transient connectivity
// fault.  Typed checks run first; the string probes at the end catch drivers
// that flatten their errors.
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}

	// Cancellation is its own thing, never retried here.
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE) || errors.Is(err, io.EOF) {
		return true
	}

	// TLS handshake and certificate trouble.
	var recErr tls.RecordHeaderError
	if errors.As(err, &recErr) {
		return true
	}
	var certErr x509.UnknownAuthorityError
	if errors.As(err, &certErr) {
		return true
	}
	var hostErr x509.HostnameError
	if errors.As(err, &hostErr) {
		return true
	}

	// The MySQL driver reports a dead server with its own sentinel.
	if errors.Is(err, mysql.ErrInvalidConn) {
		return true
	}

	s := strings.ToLower(err.Error())
	for _, probe := range []string{
		"connection refused",
		"connection reset",
		"no such host",
		"i/o timeout",
		"network is unreachable",
		"bad connection",
		"tls handshake",
		"certificate",
	} {
		if strings.Contains(s, probe) {
			return true
		}
	}
	return false
}
