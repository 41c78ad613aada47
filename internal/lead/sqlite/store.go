// internal/lead/sqlite/store.go
//
// Embedded single-file adapter for the lead store.
//
// Context
// -------
// Same logical schema and query surface as lead/mariadb, backed by a SQLite
// file through the pure-Go modernc.org/sqlite driver.  There is no network
// connection to establish, so this backend carries no retry policy; schema
// setup still runs single-flight on first acquisition because several
// handlers may race the first request after boot.
//
// SQLite has no ON UPDATE clause, so both timestamps are assigned from Go in
// UTC.  LIKE is case-insensitive for ASCII out of the box, which is all the
// search contract promises.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/singleflight"
	sqlite3 "modernc.org/sqlite"

	"github.com/SummitVoyage/summit-site/internal/lead"
)

const columns = `id, first_name, last_name, email, company, phone, message,
       welcome_sent, welcome_sent_at, welcome_message_id,
       admin_notified, admin_notified_at, admin_message_id,
       created_at, updated_at`

const schema = `
CREATE TABLE IF NOT EXISTS users (
    id                 INTEGER PRIMARY KEY AUTOINCREMENT,
    first_name         TEXT NOT NULL,
    last_name          TEXT NOT NULL,
    email              TEXT NOT NULL,
    company            TEXT NOT NULL,
    phone              TEXT NOT NULL,
    message            TEXT NOT NULL DEFAULT '',
    welcome_sent       BOOLEAN NOT NULL DEFAULT 0,
    welcome_sent_at    TIMESTAMP,
    welcome_message_id TEXT,
    admin_notified     BOOLEAN NOT NULL DEFAULT 0,
    admin_notified_at  TIMESTAMP,
    admin_message_id   TEXT,
    created_at         TIMESTAMP NOT NULL,
    updated_at         TIMESTAMP NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS uq_users_email      ON users (email);
CREATE INDEX        IF NOT EXISTS idx_users_created_at ON users (created_at);`

// Store implements lead.Store over an embedded SQLite file.
type Store struct {
	db          *sqlx.DB
	sfg         singleflight.Group
	initialized atomic.Bool
}

// New wraps an already-open handle from database.OpenFile.
func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Init applies the schema once, shared across concurrent first callers.
func (s *Store) Init(ctx context.Context) error {
	if s.initialized.Load() {
		return nil
	}
	_, err, _ := s.sfg.Do("init", func() (any, error) {
		if s.initialized.Load() {
			return nil, nil
		}
		if _, err := s.db.ExecContext(ctx, schema); err != nil {
			return nil, fmt.Errorf("sqlite: apply schema: %w", err)
		}
		s.initialized.Store(true)
		return nil, nil
	})
	return err
}

func (s *Store) ready(ctx context.Context) error {
	if s.initialized.Load() {
		return nil
	}
	return s.Init(ctx)
}

// Close releases the file handle.
func (s *Store) Close() error { return s.db.Close() }

/*──────────────────────────── data operations ──────────────────────────────*/

// Create inserts a normalized lead with Go-assigned timestamps and reads the
// persisted row back.
func (s *Store) Create(ctx context.Context, n lead.New) (*lead.Record, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	n.Normalize()
	now := time.Now().UTC()

	const q = `
        INSERT INTO users (first_name, last_name, email, company, phone, message,
                          created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := s.db.ExecContext(ctx, q,
		n.FirstName, n.LastName, n.Email, n.Company, n.Phone, n.Message, now, now)
	if err != nil {
		if isDuplicate(err) {
			return nil, lead.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("sqlite: create lead: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("sqlite: last insert id: %w", err)
	}
	return s.ByID(ctx, id)
}

// ByID fetches one row, or lead.ErrNotFound.
func (s *Store) ByID(ctx context.Context, id int64) (*lead.Record, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	var rec lead.Record
	q := `SELECT ` + columns + ` FROM users WHERE id = ?`
	if err := s.db.GetContext(ctx, &rec, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, lead.ErrNotFound
		}
		return nil, fmt.Errorf("sqlite: lead by id: %w", err)
	}
	return &rec, nil
}

// ByEmail matches on the normalized address.
func (s *Store) ByEmail(ctx context.Context, email string) (*lead.Record, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	var rec lead.Record
	q := `SELECT ` + columns + ` FROM users WHERE email = ?`
	if err := s.db.GetContext(ctx, &rec, q, lead.NormalizeEmail(email)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, lead.ErrNotFound
		}
		return nil, fmt.Errorf("sqlite: lead by email: %w", err)
	}
	return &rec, nil
}

// List returns rows newest-first with optional pagination.
func (s *Store) List(ctx context.Context, opts lead.ListOpts) ([]lead.Record, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}

	q := `SELECT ` + columns + ` FROM users ORDER BY created_at DESC`
	args := make([]any, 0, 2)
	switch {
	case opts.Limit > 0:
		q += ` LIMIT ?`
		args = append(args, opts.Limit)
		if opts.Offset > 0 {
			q += ` OFFSET ?`
			args = append(args, opts.Offset)
		}
	case opts.Offset > 0:
		// SQLite spells "no limit" as -1, which lets OFFSET stand alone.
		q += ` LIMIT -1 OFFSET ?`
		args = append(args, opts.Offset)
	}

	rows := []lead.Record{}
	if err := s.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, fmt.Errorf("sqlite: list leads: %w", err)
	}
	return rows, nil
}

// Update sets only the supplied fields and refreshes updated_at.  An empty
// patch degrades to a pure read.
func (s *Store) Update(ctx context.Context, id int64, p lead.Patch) (*lead.Record, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	if p.Empty() {
		return s.ByID(ctx, id)
	}

	set, args := buildSet(p)
	if len(set) == 0 {
		// Every supplied field was dropped (notification-flag reset), so
		// nothing may touch updated_at either.
		return s.ByID(ctx, id)
	}
	set = append(set, "updated_at = ?")
	args = append(args, time.Now().UTC(), id)

	q := `UPDATE users SET ` + strings.Join(set, ", ") + ` WHERE id = ?`
	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		if isDuplicate(err) {
			return nil, lead.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("sqlite: update lead: %w", err)
	}
	return s.ByID(ctx, id)
}

// Delete reports whether a row was removed.
func (s *Store) Delete(ctx context.Context, id int64) (bool, error) {
	if err := s.ready(ctx); err != nil {
		return false, err
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("sqlite: delete lead: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sqlite: delete rows affected: %w", err)
	}
	return n > 0, nil
}

// Count returns the total row count.
func (s *Store) Count(ctx context.Context) (int64, error) {
	if err := s.ready(ctx); err != nil {
		return 0, err
	}
	var n int64
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM users`); err != nil {
		return 0, fmt.Errorf("sqlite: count leads: %w", err)
	}
	return n, nil
}

// Search matches term as a case-insensitive substring of first name, last
// name, email, or company.
func (s *Store) Search(ctx context.Context, term string) ([]lead.Record, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	pattern := "%" + escapeLike(term) + "%"
	q := `SELECT ` + columns + ` FROM users
           WHERE first_name LIKE ? ESCAPE '\'
              OR last_name  LIKE ? ESCAPE '\'
              OR email      LIKE ? ESCAPE '\'
              OR company    LIKE ? ESCAPE '\'
           ORDER BY created_at DESC`

	rows := []lead.Record{}
	if err := s.db.SelectContext(ctx, &rows, q, pattern, pattern, pattern, pattern); err != nil {
		return nil, fmt.Errorf("sqlite: search leads: %w", err)
	}
	return rows, nil
}

// ByCompany matches the company column exactly, newest first.
func (s *Store) ByCompany(ctx context.Context, company string) ([]lead.Record, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	q := `SELECT ` + columns + ` FROM users WHERE company = ? ORDER BY created_at DESC`
	rows := []lead.Record{}
	if err := s.db.SelectContext(ctx, &rows, q, company); err != nil {
		return nil, fmt.Errorf("sqlite: leads by company: %w", err)
	}
	return rows, nil
}

// Recent returns rows created within the trailing window.
func (s *Store) Recent(ctx context.Context, days int) ([]lead.Record, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	cutoff := lead.RecentCutoff(time.Now().UTC(), days)
	q := `SELECT ` + columns + ` FROM users WHERE created_at >= ? ORDER BY created_at DESC`
	rows := []lead.Record{}
	if err := s.db.SelectContext(ctx, &rows, q, cutoff); err != nil {
		return nil, fmt.Errorf("sqlite: recent leads: %w", err)
	}
	return rows, nil
}

/*──────────────────────────── helpers ──────────────────────────────────────*/

func buildSet(p lead.Patch) ([]string, []any) {
	set := make([]string, 0, 12)
	args := make([]any, 0, 12)
	add := func(col string, v any) {
		set = append(set, col+" = ?")
		args = append(args, v)
	}

	if p.FirstName != nil {
		add("first_name", *p.FirstName)
	}
	if p.LastName != nil {
		add("last_name", *p.LastName)
	}
	if p.Email != nil {
		add("email", lead.NormalizeEmail(*p.Email))
	}
	if p.Company != nil {
		add("company", *p.Company)
	}
	if p.Phone != nil {
		add("phone", *p.Phone)
	}
	if p.Message != nil {
		add("message", *p.Message)
	}
	// Notification flags only transition false → true; a reset attempt is
	// dropped, never written.
	if p.WelcomeSent != nil && *p.WelcomeSent {
		add("welcome_sent", true)
	}
	if p.WelcomeSentAt != nil {
		add("welcome_sent_at", p.WelcomeSentAt.UTC())
	}
	if p.WelcomeMessageID != nil {
		add("welcome_message_id", *p.WelcomeMessageID)
	}
	if p.AdminNotified != nil && *p.AdminNotified {
		add("admin_notified", true)
	}
	if p.AdminNotifiedAt != nil {
		add("admin_notified_at", p.AdminNotifiedAt.UTC())
	}
	if p.AdminMessageID != nil {
		add("admin_message_id", *p.AdminMessageID)
	}
	return set, args
}

// isDuplicate detects SQLITE_CONSTRAINT_UNIQUE (extended code 2067).
func isDuplicate(err error) bool {
	var se *sqlite3.Error
	if errors.As(err, &se) && se.Code() == 2067 {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	return strings.ReplaceAll(s, "_", `\_`)
}
