// internal/lead/store.go
//
// Backend-agnostic store contract.
//
// Context
// -------
// Two adapters implement this interface: `lead/mariadb` (server-based, pooled,
// with connect-time retry) and `lead/sqlite` (embedded single-file, no
// network to fail).  Which one runs is decided by configuration at boot; the
// handlers only ever see this interface.
//
// Ordering guarantee: List, Search, ByCompany, and Recent all return rows by
// created_at descending, newest first.
package lead

import (
	"context"
	"time"
)

// ListOpts carries optional pagination for List.  Limit and Offset compose
// independently: zero Limit means "no limit", and a bare Offset skips rows
// off the top of the newest-first ordering with no upper bound.
type ListOpts struct {
	Limit  int
	Offset int
}

// Store is the logical persistence surface for lead records.
//
// Every method may be called before Init has completed; adapters surface the
// underlying failure directly in that case rather than blocking.
type Store interface {
	// Init performs one-time schema setup (create-if-absent table plus the
	// email and created_at indexes).  It is idempotent and single-flight:
	// concurrent first callers share one in-flight initialization.
	Init(ctx context.Context) error

	// Create inserts a normalized record and returns the persisted row,
	// including the generated id and server-assigned timestamps.  Returns
	// ErrDuplicateEmail when the normalized email already exists.
	Create(ctx context.Context, n New) (*Record, error)

	// ByID returns the record with the given id, or ErrNotFound.
	ByID(ctx context.Context, id int64) (*Record, error)

	// ByEmail matches on the normalized address, or ErrNotFound.
	ByEmail(ctx context.Context, email string) (*Record, error)

	// List returns rows newest-first, honouring opts.
	List(ctx context.Context, opts ListOpts) ([]Record, error)

	// Update sets only the supplied fields and refreshes updated_at.  An
	// empty patch degrades to a pure ByID read.  Returns ErrNotFound when
	// the id is absent.
	Update(ctx context.Context, id int64, p Patch) (*Record, error)

	// Delete reports true iff a row was removed.  A missing id is not an
	// error.
	Delete(ctx context.Context, id int64) (bool, error)

	// Count returns the total number of rows.
	Count(ctx context.Context) (int64, error)

	// Search matches term as a case-insensitive substring of first name,
	// last name, email, or company.
	Search(ctx context.Context, term string) ([]Record, error)

	// ByCompany matches the company column exactly.
	ByCompany(ctx context.Context, company string) ([]Record, error)

	// Recent returns rows whose created_at falls within the trailing
	// days-day window.  days < 1 is clamped to the 30-day default.
	Recent(ctx context.Context, days int) ([]Record, error)

	// Close releases the underlying pool or file handle.
	Close() error
}

// RecentDefaultDays is the trailing window Recent falls back to.
const RecentDefaultDays = 30

// ClampDays normalizes a user-supplied recency window.
func ClampDays(days int) int {
	if days < 1 {
		return RecentDefaultDays
	}
	return days
}

// RecentCutoff converts a window in days to the inclusive lower bound used
// by both adapters, evaluated against now at call time.
func RecentCutoff(now time.Time, days int) time.Time {
	return now.AddDate(0, 0, -ClampDays(days))
}
