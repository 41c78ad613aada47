// internal/database/database_test.go
//
// Exercises the composed connect-retry loop in Open: a dead-but-valid target
// must burn through the bounded attempts, while a fault the classifier calls
// non-connection must propagate on the first attempt.
//
// Run: go test ./internal/database -v

package database

import (
	"context"
	"fmt"
	"net"
	"strings"
	"testing"
	"time"
)

// quickOpts shrinks the retry policy so tests finish in milliseconds.
func quickOpts() Options {
	opts := Defaults()
	opts.Retries = 2
	opts.RetryBackoff = time.Millisecond
	opts.RetryCap = 2 * time.Millisecond
	return opts
}

// closedPort reserves a local port and releases it, so a dial is refused.
func closedPort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("reserve port: %v", err)
	}
	port := l.Addr().(*net.TCPAddr).Port
	l.Close()
	return port
}

func TestOpenGivesUpAfterBoundedRetries(t *testing.T) {
	dsn := fmt.Sprintf("summit:pw@tcp(127.0.0.1:%d)/summit", closedPort(t))

	start := time.Now()
	_, err := Open(context.Background(), dsn, quickOpts())
	if err == nil {
		t.Fatal("Open against a closed port must fail")
	}
	if !strings.Contains(err.Error(), "gave up after 3 attempts") {
		t.Fatalf("err = %v, want the bounded give-up error", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Fatalf("retry loop took %v, backoff not honored", elapsed)
	}
}

func TestOpenPropagatesNonConnectionFault(t *testing.T) {
	// No slash separating the database name, so the driver rejects the DSN
	// before anything dials.
	_, err := Open(context.Background(), "not-a-dsn", quickOpts())
	if err == nil {
		t.Fatal("Open with a malformed DSN must fail")
	}
	if strings.Contains(err.Error(), "gave up after") {
		t.Fatalf("err = %v, a non-connection fault must not be retried", err)
	}
}

func TestOpenHonorsCancellationDuringBackoff(t *testing.T) {
	dsn := fmt.Sprintf("summit:pw@tcp(127.0.0.1:%d)/summit", closedPort(t))

	// The first refused dial is near-instant, so the deadline expires
	// while the loop is sitting in its minute-long backoff wait.
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	opts := quickOpts()
	opts.RetryBackoff = time.Minute
	opts.RetryCap = time.Minute

	_, err := Open(ctx, dsn, opts)
	if err == nil {
		t.Fatal("Open under an expiring context must fail")
	}
	if !strings.Contains(err.Error(), "open canceled") {
		t.Fatalf("err = %v, want the cancellation error", err)
	}
}
