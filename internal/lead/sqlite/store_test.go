// internal/lead/sqlite/store_test.go
//
// The embedded backend is cheap to exercise for real, so these tests run the
// full contract against a throwaway database file.
//
// Run: go test ./internal/lead/sqlite -v

package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/SummitVoyage/summit-site/internal/database"
	"github.com/SummitVoyage/summit-site/internal/lead"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := database.OpenFile(context.Background(),
		filepath.Join(t.TempDir(), "leads.db"), database.Defaults())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	s := New(db)
	require.NoError(t, s.Init(context.Background()))
	return s
}

func sampleLead() lead.New {
	return lead.New{
		FirstName: "John",
		LastName:  "Doe",
		Email:     "JOHN@EX.COM",
		Company:   "Acme",
		Phone:     "+1",
	}
}

func TestCreateThenByEmail(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rec, err := s.Create(ctx, sampleLead())
	require.NoError(t, err)
	require.Equal(t, "john@ex.com", rec.Email)
	require.NotZero(t, rec.ID)
	require.False(t, rec.CreatedAt.IsZero())

	got, err := s.ByEmail(ctx, "  John@Ex.Com ")
	require.NoError(t, err)
	require.Equal(t, rec.ID, got.ID)
}

func TestDuplicateEmailCountsOnce(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Create(ctx, sampleLead())
	require.NoError(t, err)

	dup := sampleLead()
	dup.Email = "john@EX.com" // same address, different case
	_, err = s.Create(ctx, dup)
	require.ErrorIs(t, err, lead.ErrDuplicateEmail)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
}

func TestUpdateEmptyPatchKeepsUpdatedAt(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rec, err := s.Create(ctx, sampleLead())
	require.NoError(t, err)

	got, err := s.Update(ctx, rec.ID, lead.Patch{})
	require.NoError(t, err)
	require.True(t, got.UpdatedAt.Equal(rec.UpdatedAt),
		"empty patch must not refresh updated_at")
}

func TestUpdateSuppliedFieldsOnly(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rec, err := s.Create(ctx, sampleLead())
	require.NoError(t, err)

	company := "Globex"
	got, err := s.Update(ctx, rec.ID, lead.Patch{Company: &company})
	require.NoError(t, err)
	require.Equal(t, "Globex", got.Company)
	require.Equal(t, rec.FirstName, got.FirstName, "untouched field must survive")
	require.Equal(t, rec.CreatedAt.UTC(), got.CreatedAt.UTC(), "created_at is immutable")

	_, err = s.Update(ctx, 9999, lead.Patch{Company: &company})
	require.ErrorIs(t, err, lead.ErrNotFound)
}

func TestNotificationFlagsTransition(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rec, err := s.Create(ctx, sampleLead())
	require.NoError(t, err)
	require.False(t, rec.WelcomeSent)

	sent := true
	now := time.Now().UTC()
	id := "<abc@summit-site.local>"
	got, err := s.Update(ctx, rec.ID, lead.Patch{
		WelcomeSent: &sent, WelcomeSentAt: &now, WelcomeMessageID: &id,
	})
	require.NoError(t, err)
	require.True(t, got.WelcomeSent)
	require.NotNil(t, got.WelcomeSentAt)
	require.Equal(t, id, *got.WelcomeMessageID)
	require.False(t, got.AdminNotified, "admin pair is independent")

	// A reset attempt is dropped: the flag stays true and, with nothing
	// else to write, updated_at is untouched.
	reset := false
	after, err := s.Update(ctx, rec.ID, lead.Patch{WelcomeSent: &reset})
	require.NoError(t, err)
	require.True(t, after.WelcomeSent, "flags never transition back to false")
	require.Equal(t, got.UpdatedAt.UTC(), after.UpdatedAt.UTC())
}

func TestDeleteSemantics(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	ok, err := s.Delete(ctx, 42)
	require.NoError(t, err)
	require.False(t, ok, "delete of a nonexistent id is false, not an error")

	rec, err := s.Create(ctx, sampleLead())
	require.NoError(t, err)

	ok, err = s.Delete(ctx, rec.ID)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = s.Delete(ctx, rec.ID)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestListOrderAndPagination(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i, email := range []string{"a@ex.com", "b@ex.com", "c@ex.com"} {
		n := sampleLead()
		n.Email = email
		rec, err := s.Create(ctx, n)
		require.NoError(t, err)

		// Space the rows out so created_at ordering is deterministic.
		ts := time.Now().UTC().Add(time.Duration(i) * time.Second)
		_, err = s.db.ExecContext(ctx, `UPDATE users SET created_at = ? WHERE id = ?`, ts, rec.ID)
		require.NoError(t, err)
	}

	rows, err := s.List(ctx, lead.ListOpts{})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, "c@ex.com", rows[0].Email, "newest first")

	page, err := s.List(ctx, lead.ListOpts{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	require.Equal(t, "b@ex.com", page[0].Email)

	// A bare offset composes without a limit.
	rest, err := s.List(ctx, lead.ListOpts{Offset: 1})
	require.NoError(t, err)
	require.Len(t, rest, 2)
	require.Equal(t, "b@ex.com", rest[0].Email)
}

func TestSearchSubstringCaseInsensitive(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	acme := sampleLead()
	_, err := s.Create(ctx, acme)
	require.NoError(t, err)

	other := lead.New{
		FirstName: "Jane", LastName: "Smith",
		Email: "jane@other.com", Company: "Initech", Phone: "+2",
	}
	_, err = s.Create(ctx, other)
	require.NoError(t, err)

	for _, term := range []string{"acme", "ACME", "john", "doe"} {
		rows, err := s.Search(ctx, term)
		require.NoError(t, err)
		require.Len(t, rows, 1, "term %q", term)
		require.Equal(t, "john@ex.com", rows[0].Email)
	}

	none, err := s.Search(ctx, "zzz")
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestByCompanyExactMatch(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Create(ctx, sampleLead())
	require.NoError(t, err)

	rows, err := s.ByCompany(ctx, "Acme")
	require.NoError(t, err)
	require.Len(t, rows, 1)

	rows, err = s.ByCompany(ctx, "Acm")
	require.NoError(t, err)
	require.Empty(t, rows, "substring must not match")
}

func TestRecentWindow(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	fresh, err := s.Create(ctx, sampleLead())
	require.NoError(t, err)

	old := sampleLead()
	old.Email = "old@ex.com"
	oldRec, err := s.Create(ctx, old)
	require.NoError(t, err)

	stale := time.Now().UTC().AddDate(0, 0, -31)
	_, err = s.db.ExecContext(ctx, `UPDATE users SET created_at = ? WHERE id = ?`, stale, oldRec.ID)
	require.NoError(t, err)

	rows, err := s.Recent(ctx, 30)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, fresh.ID, rows[0].ID)
}
