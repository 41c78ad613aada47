// internal/lead/mariadb/store_test.go
//
// Unit-tests for the MariaDB adapter using sqlmock.
//
// Run: go test ./internal/lead/mariadb -v

package mariadb

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"github.com/SummitVoyage/summit-site/internal/lead"
)

const selectCols = `SELECT id, first_name, last_name, email, company, phone, message, ` +
	`welcome_sent, welcome_sent_at, welcome_message_id, ` +
	`admin_notified, admin_notified_at, admin_message_id, ` +
	`created_at, updated_at FROM users`

var recordCols = []string{
	"id", "first_name", "last_name", "email", "company", "phone", "message",
	"welcome_sent", "welcome_sent_at", "welcome_message_id",
	"admin_notified", "admin_notified_at", "admin_message_id",
	"created_at", "updated_at",
}

// newMockStore returns a Store whose schema setup is already marked done, so
// tests only see the data statements.
func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	s := New(sqlx.NewDb(db, "mysql"))
	s.initialized.Store(true)
	return s, mock
}

func sampleRow(now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows(recordCols).AddRow(
		int64(1), "John", "Doe", "john@ex.com", "Acme", "+1", "",
		false, nil, nil,
		false, nil, nil,
		now, now,
	)
}

func TestCreateNormalizesEmail(t *testing.T) {
	s, mock := newMockStore(t)
	now := time.Now()

	mock.ExpectExec(regexp.QuoteMeta(
		`INSERT INTO users (first_name, last_name, email, company, phone, message) VALUES (?, ?, ?, ?, ?, ?)`,
	)).
		WithArgs("John", "Doe", "john@ex.com", "Acme", "+1", "").
		WillReturnResult(sqlmock.NewResult(1, 1))

	mock.ExpectQuery(regexp.QuoteMeta(selectCols + ` WHERE id = ?`)).
		WithArgs(int64(1)).
		WillReturnRows(sampleRow(now))

	rec, err := s.Create(context.Background(), lead.New{
		FirstName: "John", LastName: "Doe",
		Email: " JOHN@EX.COM ", Company: "Acme", Phone: "+1",
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if rec.Email != "john@ex.com" {
		t.Fatalf("email = %q, want john@ex.com", rec.Email)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestCreateDuplicate(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO users`)).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	_, err := s.Create(context.Background(), lead.New{
		FirstName: "John", LastName: "Doe",
		Email: "john@ex.com", Company: "Acme", Phone: "+1",
	})
	if !errors.Is(err, lead.ErrDuplicateEmail) {
		t.Fatalf("err = %v, want ErrDuplicateEmail", err)
	}
}

func TestByEmailNormalizesLookup(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(selectCols+` WHERE email = ?`)).
		WithArgs("john@ex.com").
		WillReturnRows(sampleRow(time.Now()))

	if _, err := s.ByEmail(context.Background(), "  JOHN@EX.COM"); err != nil {
		t.Fatalf("ByEmail error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestByIDNotFound(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(selectCols + ` WHERE id = ?`)).
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows(recordCols))

	_, err := s.ByID(context.Background(), 99)
	if !errors.Is(err, lead.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestUpdateEmptyPatchIsPureRead(t *testing.T) {
	s, mock := newMockStore(t)

	// Only a SELECT may hit the database; any UPDATE would fail the mock.
	mock.ExpectQuery(regexp.QuoteMeta(selectCols + ` WHERE id = ?`)).
		WithArgs(int64(1)).
		WillReturnRows(sampleRow(time.Now()))

	if _, err := s.Update(context.Background(), 1, lead.Patch{}); err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestUpdateSetsOnlySuppliedFields(t *testing.T) {
	s, mock := newMockStore(t)
	sent := true
	now := time.Now().UTC()
	id := "msg-1"

	mock.ExpectExec(regexp.QuoteMeta(
		`UPDATE users SET welcome_sent = ?, welcome_sent_at = ?, welcome_message_id = ?, `+
			`updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
	)).
		WithArgs(true, now, "msg-1", int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectQuery(regexp.QuoteMeta(selectCols + ` WHERE id = ?`)).
		WithArgs(int64(1)).
		WillReturnRows(sampleRow(now))

	_, err := s.Update(context.Background(), 1, lead.Patch{
		WelcomeSent: &sent, WelcomeSentAt: &now, WelcomeMessageID: &id,
	})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestDeleteReportsRowRemoval(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM users WHERE id = ?`)).
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM users WHERE id = ?`)).
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := s.Delete(context.Background(), 1)
	if err != nil || !ok {
		t.Fatalf("first delete: ok=%v err=%v, want true nil", ok, err)
	}
	ok, err = s.Delete(context.Background(), 1)
	if err != nil || ok {
		t.Fatalf("second delete: ok=%v err=%v, want false nil", ok, err)
	}
}

func TestSearchEscapesPattern(t *testing.T) {
	s, mock := newMockStore(t)

	pattern := `%Acme\%%`
	mock.ExpectQuery(regexp.QuoteMeta(
		selectCols+` WHERE first_name LIKE ? OR last_name LIKE ? OR email LIKE ? OR company LIKE ? ORDER BY created_at DESC`,
	)).
		WithArgs(pattern, pattern, pattern, pattern).
		WillReturnRows(sampleRow(time.Now()))

	if _, err := s.Search(context.Background(), "Acme%"); err != nil {
		t.Fatalf("Search error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestUpdateDropsNotificationReset(t *testing.T) {
	s, mock := newMockStore(t)
	reset := false

	// A flag reset is dropped, so only the read-back SELECT may run; any
	// UPDATE would fail the mock.
	mock.ExpectQuery(regexp.QuoteMeta(selectCols + ` WHERE id = ?`)).
		WithArgs(int64(1)).
		WillReturnRows(sampleRow(time.Now()))

	_, err := s.Update(context.Background(), 1, lead.Patch{
		WelcomeSent: &reset, AdminNotified: &reset,
	})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestListBareOffset(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(
		selectCols + ` ORDER BY created_at DESC LIMIT 18446744073709551615 OFFSET ?`,
	)).
		WithArgs(2).
		WillReturnRows(sampleRow(time.Now()))

	if _, err := s.List(context.Background(), lead.ListOpts{Offset: 2}); err != nil {
		t.Fatalf("List error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}
