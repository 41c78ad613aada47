// internal/database/database.go
//
// sqlx connection helpers for both store backends.
//
// Context
// -------
// The MariaDB backend talks to a network server, so its first Ping can fail
// for reasons that have nothing to do with the application: the container is
// still starting, DNS has not converged, a TLS certificate rolled.  Open
// classifies those as connection-class faults and retries with exponential
// backoff plus random jitter, capped per attempt and bounded in count.  A
// non-connection fault (bad credentials, unknown database) aborts at once.
//
// The SQLite backend is an embedded single file; OpenFile performs no retry
// because there is no connection to establish, only an fopen that either
// works or never will.
//
// Both helpers Ping before returning so bootstrap fails fast.  Callers own
// Close().
//
// Notes
// -----
// • Oxford commas, two spaces after periods.
package database

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/SummitVoyage/summit-site/internal/metrics"
)

// Options tunes pool sizes and the connect-time retry policy.
type Options struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration

	// Retry policy, connection-class faults only.
	Retries      int           // attempts beyond the first
	RetryBackoff time.Duration // base delay, doubles per attempt
	RetryCap     time.Duration // upper bound on a single delay
}

// Defaults returns the production settings: a pool of twenty, six total
// attempts, 250 ms base backoff capped at 5 s.
func Defaults() Options {
	return Options{
		MaxOpenConns:    20,
		MaxIdleConns:    5,
		ConnMaxLifetime: 30 * time.Minute,
		Retries:         5,
		RetryBackoff:    250 * time.Millisecond,
		RetryCap:        5 * time.Second,
	}
}

// Open connects to a MySQL/MariaDB server, retrying connection-class faults
// per opts.  The context bounds the whole retry loop, not one attempt.
func Open(ctx context.Context, dsn string, opts Options) (*sqlx.DB, error) {
	var lastErr error

	for attempt := 0; attempt <= opts.Retries; attempt++ {
		if attempt > 0 {
			metrics.StoreConnectRetriesTotal.Inc()
			delay := backoffDelay(opts, attempt)
			zap.S().Warnw("database connect retry",
				"attempt", attempt,
				"delay", delay,
				"err", lastErr,
			)
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("database: open canceled: %w", ctx.Err())
			case <-time.After(delay):
			}
		}

		db, err := open(ctx, "mysql", dsn, opts)
		if err == nil {
			return db, nil
		}
		if !IsConnectionError(err) {
			return nil, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("database: gave up after %d attempts: %w", opts.Retries+1, lastErr)
}

// OpenFile opens the embedded SQLite store at path.  The file and its parent
// schema are created lazily by the adapter; here we only establish the handle.
func OpenFile(ctx context.Context, path string, opts Options) (*sqlx.DB, error) {
	// busy_timeout keeps concurrent writers queuing instead of failing.
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)

	// SQLite serializes writes; a single writer connection avoids
	// SQLITE_BUSY churn under load.
	opts.MaxOpenConns = 1
	opts.MaxIdleConns = 1
	return open(ctx, "sqlite", dsn, opts)
}

// open is the shared driver-agnostic tail: pool tuning plus a verification
// Ping.
func open(ctx context.Context, driver, dsn string, opts Options) (*sqlx.DB, error) {
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(opts.MaxOpenConns)
	db.SetMaxIdleConns(opts.MaxIdleConns)
	db.SetConnMaxLifetime(opts.ConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// backoffDelay computes base·2^(attempt-1) with up to 25 % random jitter,
// clamped at RetryCap.
func backoffDelay(opts Options, attempt int) time.Duration {
	d := opts.RetryBackoff << (attempt - 1)
	if opts.RetryCap > 0 && d > opts.RetryCap {
		d = opts.RetryCap
	}
	jitter := time.Duration(rand.Int63n(int64(d)/4 + 1))
	return d + jitter
}
