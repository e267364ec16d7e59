package mastersvc

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"

	"github.com/ZigmaSoftware/erp-final-backend/pkg/clients/postgres"
	erperr "github.com/ZigmaSoftware/erp-final-backend/pkg/errors"
)

var (
	continents = Resources[0]
	states     = Resources[2]
)

func newMockStore(t *testing.T) (*Store, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	t.Cleanup(mock.Close)
	return NewStore(postgres.NewFromPool(mock, "erp_test")), mock
}

func recordColumns(res Resource) []string {
	cols := []string{"id", "unique_id", "name", "code", "is_active", "is_deleted",
		"created_at", "updated_at", "created_by", "updated_by"}
	if res.HasParent() {
		cols = append(cols, res.ParentCol)
	}
	return cols
}

func TestStore_List(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now()

	mock.ExpectQuery("SELECT .+ FROM master_continent WHERE is_deleted = FALSE ORDER BY id LIMIT").
		WithArgs(50, 0).
		WillReturnRows(pgxmock.NewRows(recordColumns(continents)).
			AddRow(int64(1), uuid.New(), "Asia", "AS", true, false, now, now, "alice", "alice").
			AddRow(int64(2), uuid.New(), "Europe", "EU", true, false, now, now, "alice", "alice"))

	records, err := store.List(context.Background(), continents, 50, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Name != "Asia" || records[1].Code != "EU" {
		t.Errorf("unexpected records %+v", records)
	}
	if records[0].ParentID != nil {
		t.Error("top-level resource must not carry a parent id")
	}
}

func TestStore_List_WithParent(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now()
	countryID := int64(7)

	mock.ExpectQuery("SELECT .+ FROM master_state WHERE is_deleted = FALSE ORDER BY id LIMIT").
		WithArgs(10, 20).
		WillReturnRows(pgxmock.NewRows(recordColumns(states)).
			AddRow(int64(3), uuid.New(), "Bavaria", "BY", true, false, now, now, "", "", &countryID))

	records, err := store.List(context.Background(), states, 10, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].ParentID == nil || *records[0].ParentID != 7 {
		t.Errorf("parent id not scanned: %v", records[0].ParentID)
	}
}

func TestStore_Get_NotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT .+ FROM master_continent WHERE id = .+ AND is_deleted = FALSE").
		WithArgs(int64(99)).
		WillReturnRows(pgxmock.NewRows(recordColumns(continents)))

	_, err := store.Get(context.Background(), continents, 99)
	var e *erperr.Error
	if !errors.As(err, &e) || e.Code != erperr.CodeNotFound {
		t.Fatalf("expected %s, got %v", erperr.CodeNotFound, err)
	}
}

func TestStore_Create(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now()
	countryID := int64(7)

	mock.ExpectQuery("INSERT INTO master_state").
		WithArgs(pgxmock.AnyArg(), "Bavaria", "BY", &countryID, true, "alice").
		WillReturnRows(pgxmock.NewRows(recordColumns(states)).
			AddRow(int64(3), uuid.New(), "Bavaria", "BY", true, false, now, now, "alice", "alice", &countryID))

	rec, err := store.Create(context.Background(), states, Input{
		Name: "Bavaria", Code: "BY", ParentID: &countryID, IsActive: true,
	}, "alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.ID != 3 || rec.CreatedBy != "alice" {
		t.Errorf("unexpected record %+v", rec)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestStore_Create_DuplicateName(t *testing.T) {
	store, mock := newMockStore(t)
	countryID := int64(7)

	mock.ExpectQuery("INSERT INTO master_state").
		WithArgs(pgxmock.AnyArg(), "Bavaria", "", &countryID, true, "alice").
		WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err := store.Create(context.Background(), states, Input{
		Name: "Bavaria", ParentID: &countryID, IsActive: true,
	}, "alice")
	var e *erperr.Error
	if !errors.As(err, &e) || e.Code != erperr.CodeConflictDuplicate {
		t.Fatalf("expected %s, got %v", erperr.CodeConflictDuplicate, err)
	}
}

func TestStore_Update_NotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("UPDATE master_continent SET").
		WithArgs(int64(99), "Asia", "AS", true, "alice").
		WillReturnRows(pgxmock.NewRows(recordColumns(continents)))

	_, err := store.Update(context.Background(), continents, 99, Input{
		Name: "Asia", Code: "AS", IsActive: true,
	}, "alice")
	var e *erperr.Error
	if !errors.As(err, &e) || e.Code != erperr.CodeNotFound {
		t.Fatalf("expected %s, got %v", erperr.CodeNotFound, err)
	}
}

func TestStore_SoftDelete(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("UPDATE master_continent SET is_deleted = TRUE").
		WithArgs(int64(1), "alice").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	if err := store.SoftDelete(context.Background(), continents, 1, "alice"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestStore_SoftDelete_AlreadyDeleted(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("UPDATE master_continent SET is_deleted = TRUE").
		WithArgs(int64(1), "alice").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := store.SoftDelete(context.Background(), continents, 1, "alice")
	var e *erperr.Error
	if !errors.As(err, &e) || e.Code != erperr.CodeNotFound {
		t.Fatalf("expected %s, got %v", erperr.CodeNotFound, err)
	}
}
