package authsvc

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"

	"github.com/ZigmaSoftware/erp-final-backend/pkg/clients/postgres"
	erperr "github.com/ZigmaSoftware/erp-final-backend/pkg/errors"
)

func newMockStore(t *testing.T) (*UserStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	t.Cleanup(mock.Close)
	return NewUserStore(postgres.NewFromPool(mock, "erp_test")), mock
}

func userRows(lastLogin *time.Time) *pgxmock.Rows {
	return pgxmock.NewRows([]string{"id", "username", "email", "password_hash", "is_active", "last_login"}).
		AddRow(int64(42), "alice", "alice@example.com", "hash", true, lastLogin)
}

func TestUserStore_GetByUsername(t *testing.T) {
	store, mock := newMockStore(t)

	lastLogin := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT id, username, email, password_hash, is_active, last_login FROM users WHERE username").
		WithArgs("alice").
		WillReturnRows(userRows(&lastLogin))
	mock.ExpectQuery("SELECT g.id, g.name").
		WithArgs(int64(42)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name"}).
			AddRow(int64(1), "admin").
			AddRow(int64(2), "staff"))

	user, err := store.GetByUsername(context.Background(), "alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if user.ID != 42 || user.Username != "alice" {
		t.Errorf("unexpected user %d/%q", user.ID, user.Username)
	}
	if user.LastLogin == nil || !user.LastLogin.Equal(lastLogin) {
		t.Errorf("last_login not carried through: %v", user.LastLogin)
	}
	if len(user.Groups) != 2 || user.Groups[0].Name != "admin" || user.Groups[1].ID != 2 {
		t.Errorf("unexpected groups %+v", user.Groups)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestUserStore_GetByID_NotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT id, username, email, password_hash, is_active, last_login FROM users WHERE id").
		WithArgs(int64(99)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "username", "email", "password_hash", "is_active", "last_login"}))

	_, err := store.GetByID(context.Background(), 99)
	if err == nil {
		t.Fatal("expected an error for a missing user")
	}
	var e *erperr.Error
	if !errors.As(err, &e) || e.Code != erperr.CodeNotFoundUser {
		t.Errorf("expected %s, got %v", erperr.CodeNotFoundUser, err)
	}
}

func TestUserStore_GetByUsername_NoGroups(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT id, username, email, password_hash, is_active, last_login FROM users WHERE username").
		WithArgs("alice").
		WillReturnRows(userRows(nil))
	mock.ExpectQuery("SELECT g.id, g.name").
		WithArgs(int64(42)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name"}))

	user, err := store.GetByUsername(context.Background(), "alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.Groups != nil {
		t.Errorf("expected no groups, got %+v", user.Groups)
	}
	if user.LastLogin != nil {
		t.Errorf("expected nil last_login, got %v", user.LastLogin)
	}
}

func TestUserStore_List(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT id, username, email, password_hash, is_active, last_login FROM users ORDER BY id LIMIT").
		WithArgs(50, 0).
		WillReturnRows(pgxmock.NewRows([]string{"id", "username", "email", "password_hash", "is_active", "last_login"}).
			AddRow(int64(1), "alice", "a@example.com", "h1", true, (*time.Time)(nil)).
			AddRow(int64(2), "bob", "b@example.com", "h2", false, (*time.Time)(nil)))

	users, err := store.List(context.Background(), 50, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
	if users[1].Username != "bob" || users[1].IsActive {
		t.Errorf("unexpected second user %+v", users[1])
	}
	if users[0].Groups != nil {
		t.Error("listing must not load group memberships")
	}
}

func TestUserStore_ListGroups(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT id, name FROM groups ORDER BY id").
		WillReturnRows(pgxmock.NewRows([]string{"id", "name"}).
			AddRow(int64(1), "admin").
			AddRow(int64(2), "staff"))

	groups, err := store.ListGroups(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(groups) != 2 || groups[0].Name != "admin" {
		t.Errorf("unexpected groups %+v", groups)
	}
}

func TestUserStore_TouchLastLogin(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("UPDATE users SET last_login").
		WithArgs(int64(42)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	if err := store.TouchLastLogin(context.Background(), 42); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestParseUserID(t *testing.T) {
	id, err := ParseUserID("42")
	if err != nil || id != 42 {
		t.Fatalf("ParseUserID(42) = %d, %v", id, err)
	}

	for _, sub := range []string{"", "abc", "4.2"} {
		if _, err := ParseUserID(sub); err == nil {
			t.Errorf("ParseUserID(%q) should fail", sub)
		} else {
			var e *erperr.Error
			if !errors.As(err, &e) || e.Code != erperr.CodeTokenInvalid {
				t.Errorf("ParseUserID(%q) wrong code: %v", sub, err)
			}
		}
	}
}

func TestAuditStore_Record(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	t.Cleanup(mock.Close)
	store := NewAuditStore(postgres.NewFromPool(mock, "erp_test"), nil)

	rec := AuditRecord{
		ID:        uuid.New(),
		EventType: EventLoginFailed,
		Username:  "alice",
		ClientIP:  "203.0.113.9",
		UserAgent: "curl/8.5.0",
		Reason:    "invalid password",
		TraceID:   "abc123",
	}
	mock.ExpectExec("INSERT INTO auth_audit_log").
		WithArgs(rec.ID, rec.EventType, rec.Username, rec.ClientIP, rec.UserAgent, rec.Reason, rec.TraceID).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	if err := store.Record(context.Background(), rec); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestAuditStore_RecordAssignsID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	t.Cleanup(mock.Close)
	store := NewAuditStore(postgres.NewFromPool(mock, "erp_test"), nil)

	mock.ExpectExec("INSERT INTO auth_audit_log").
		WithArgs(pgxmock.AnyArg(), EventLoginSuccess, "alice", "", "", "", "").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	rec := AuditRecord{EventType: EventLoginSuccess, Username: "alice"}
	if err := store.Record(context.Background(), rec); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
