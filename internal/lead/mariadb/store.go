// internal/lead/mariadb/store.go
//
// Server-based relational adapter for the lead store.
//
// Context
// -------
// This adapter owns a pooled sqlx handle to MySQL/MariaDB.  Connection
// establishment (with retry on connection-class faults) happens in
// database.Open before the adapter is built; schema setup happens here on
// first acquisition, guarded by singleflight so concurrent first callers
// share one in-flight initialization instead of racing CREATE TABLE.
//
// Every data operation calls ready() first.  If initialization has not
// succeeded yet the operation attempts it opportunistically and surfaces the
// underlying failure directly, never a sanitized placeholder.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.
package mariadb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/singleflight"

	"github.com/SummitVoyage/summit-site/internal/lead"
)

const columns = `id, first_name, last_name, email, company, phone, message,
       welcome_sent, welcome_sent_at, welcome_message_id,
       admin_notified, admin_notified_at, admin_message_id,
       created_at, updated_at`

// Store implements lead.Store over MariaDB.
type Store struct {
	db          *sqlx.DB
	sfg         singleflight.Group
	initialized atomic.Bool
}

// New wraps an already-open pool.  Call Init (or any data op) to set up the
// schema.
func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Init creates the users table and its two indexes if absent.  Idempotent and
// single-flight.
func (s *Store) Init(ctx context.Context) error {
	if s.initialized.Load() {
		return nil
	}
	_, err, _ := s.sfg.Do("init", func() (any, error) {
		// Double-check after the singleflight barrier.
		if s.initialized.Load() {
			return nil, nil
		}
		if err := s.setupSchema(ctx); err != nil {
			return nil, err
		}
		s.initialized.Store(true)
		return nil, nil
	})
	return err
}

// ready runs Init opportunistically.  Data ops call it so a store whose
// schema setup failed at boot keeps retrying on use, and callers see the
// real underlying error.
func (s *Store) ready(ctx context.Context) error {
	if s.initialized.Load() {
		return nil
	}
	return s.Init(ctx)
}

// Close releases the pool.
func (s *Store) Close() error { return s.db.Close() }

/*──────────────────────────── data operations ──────────────────────────────*/

// Create inserts a normalized lead and reads back the persisted row, so the
// caller sees the generated id and the server-assigned timestamps.
func (s *Store) Create(ctx context.Context, n lead.New) (*lead.Record, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	n.Normalize()

	const q = `
        INSERT INTO users (first_name, last_name, email, company, phone, message)
        VALUES (?, ?, ?, ?, ?, ?)`
	res, err := s.db.ExecContext(ctx, q,
		n.FirstName, n.LastName, n.Email, n.Company, n.Phone, n.Message)
	if err != nil {
		if isDuplicate(err) {
			return nil, lead.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("mariadb: create lead: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("mariadb: last insert id: %w", err)
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
		return nil, fmt.Errorf("mariadb: lead by id: %w", err)
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
		return nil, fmt.Errorf("mariadb: lead by email: %w", err)
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
		// MySQL has no bare OFFSET; the manual's idiom for "skip N, no
		// upper bound" is an effectively-unlimited LIMIT.
		q += ` LIMIT 18446744073709551615 OFFSET ?`
		args = append(args, opts.Offset)
	}

	rows := []lead.Record{}
	if err := s.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, fmt.Errorf("mariadb: list leads: %w", err)
	}
	return rows, nil
}

// Update sets only the supplied fields.  An empty patch is a pure read, with
// updated_at untouched.
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
	set = append(set, "updated_at = CURRENT_TIMESTAMP")
	args = append(args, id)

	q := `UPDATE users SET ` + strings.Join(set, ", ") + ` WHERE id = ?`
	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		if isDuplicate(err) {
			return nil, lead.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("mariadb: update lead: %w", err)
	}
	// RowsAffected is 0 both for a missing id and for a no-change write, so
	// the read-back disambiguates: ByID yields ErrNotFound for the former.
	return s.ByID(ctx, id)
}

// Delete reports whether a row was removed.
func (s *Store) Delete(ctx context.Context, id int64) (bool, error) {
	if err := s.ready(ctx); err != nil {
		return false, err
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("mariadb: delete lead: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mariadb: delete rows affected: %w", err)
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
		return 0, fmt.Errorf("mariadb: count leads: %w", err)
	}
	return n, nil
}

// Search matches term as a substring of first name, last name, email, or
// company.  The columns use a case-insensitive collation, so LIKE already
// ignores case.
func (s *Store) Search(ctx context.Context, term string) ([]lead.Record, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	pattern := "%" + escapeLike(term) + "%"
	q := `SELECT ` + columns + ` FROM users
           WHERE first_name LIKE ? OR last_name LIKE ?
              OR email      LIKE ? OR company   LIKE ?
           ORDER BY created_at DESC`

	rows := []lead.Record{}
	if err := s.db.SelectContext(ctx, &rows, q, pattern, pattern, pattern, pattern); err != nil {
		return nil, fmt.Errorf("mariadb: search leads: %w", err)
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
		return nil, fmt.Errorf("mariadb: leads by company: %w", err)
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
		return nil, fmt.Errorf("mariadb: recent leads: %w", err)
	}
	return rows, nil
}

/*──────────────────────────── helpers ──────────────────────────────────────*/

// buildSet translates a Patch into SET clauses + args, supplied fields only.
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
		add("welcome_sent_at", *p.WelcomeSentAt)
	}
	if p.WelcomeMessageID != nil {
		add("welcome_message_id", *p.WelcomeMessageID)
	}
	if p.AdminNotified != nil && *p.AdminNotified {
		add("admin_notified", true)
	}
	if p.AdminNotifiedAt != nil {
		add("admin_notified_at", *p.AdminNotifiedAt)
	}
	if p.AdminMessageID != nil {
		add("admin_message_id", *p.AdminMessageID)
	}
	return set, args
}

// isDuplicate detects a unique-constraint violation (MySQL error 1062).
func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}

// escapeLike neutralizes LIKE metacharacters in a user-supplied term.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	return strings.ReplaceAll(s, "_", `\_`)
}
