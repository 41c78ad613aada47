// internal/database/classify_test.go
//
// Run: go test ./internal/database -v

package database

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"syscall"
	"testing"

	"github.com/go-sql-driver/mysql"
)

func TestIsConnectionError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"canceled", context.Canceled, false},
		{"deadline", context.DeadlineExceeded, false},
		{"wrapped cancel", fmt.Errorf("open: %w", context.Canceled), false},
		{"dns miss", &net.DNSError{Err: "no such host", Name: "db.invalid"}, true},
		{"op error", &net.OpError{Op: "dial", Err: syscall.ECONNREFUSED}, true},
		{"refused", syscall.ECONNREFUSED, true},
		{"reset", syscall.ECONNRESET, true},
		{"broken pipe", syscall.EPIPE, true},
		{"eof", io.EOF, true},
		{"driver invalid conn", mysql.ErrInvalidConn, true},
		{"flattened refusal", errors.New("dial tcp 10.0.0.5:3306: connect: connection refused"), true},
		{"flattened timeout", errors.New("read tcp: i/o timeout"), true},
		{"flattened tls", errors.New("tls handshake failure"), true},
		{"bad credentials", &mysql.MySQLError{Number: 1045, Message: "Access denied"}, false},
		{"unknown database", &mysql.MySQLError{Number: 1049, Message: "Unknown database"}, false},
		{"sql syntax", errors.New("Error 1064: syntax error"), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsConnectionError(tc.err); got != tc.want {
				t.Fatalf("IsConnectionError(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}

func TestBackoffDelayCapped(t *testing.T) {
	opts := Defaults()
	for attempt := 1; attempt <= 10; attempt++ {
		d := backoffDelay(opts, attempt)
		// Cap plus the 25% jitter headroom.
		if max := opts.RetryCap + opts.RetryCap/4; d > max {
			t.Fatalf("attempt %d: delay %v exceeds cap %v", attempt, d, max)
		}
		if d <= 0 {
			t.Fatalf("attempt %d: non-positive delay %v", attempt, d)
		}
	}
}
