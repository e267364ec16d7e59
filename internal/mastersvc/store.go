package mastersvc

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ZigmaSoftware/erp-final-backend/pkg/clients/postgres"
	erperr "github.com/ZigmaSoftware/erp-final-backend/pkg/errors"
)

// Store persists master-data records. One store serves every resource in
// the catalog; the [Resource] argument selects the table.
type Store struct {
	db *postgres.Client
}

// NewStore creates a Store over the given database client.
func NewStore(db *postgres.Client) *Store {
	return &Store{db: db}
}

// baseColumns are the BaseMaster columns shared by every master table. The
// parent foreign key, when the resource has one, is selected separately.
const baseColumns = "id, unique_id, name, code, is_active, is_deleted, created_at, updated_at, created_by, updated_by"

func selectColumns(res Resource) string {
	if res.HasParent() {
		return baseColumns + ", " + res.ParentCol
	}
	return baseColumns
}

func scanRecord(row interface{ Scan(dest ...any) error }, res Resource) (*Record, error) {
	var rec Record
	dest := []any{
		&rec.ID, &rec.UniqueID, &rec.Name, &rec.Code,
		&rec.IsActive, &rec.IsDeleted,
		&rec.CreatedAt, &rec.UpdatedAt, &rec.CreatedBy, &rec.UpdatedBy,
	}
	if res.HasParent() {
		dest = append(dest, &rec.ParentID)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &rec, nil
}

// List returns non-deleted records ordered by id with limit/offset
// pagination. Soft-deleted rows never appear in listings.
func (s *Store) List(ctx context.Context, res Resource, limit, offset int) ([]*Record, error) {
	sql := fmt.Sprintf(
		"SELECT %s FROM %s WHERE is_deleted = FALSE ORDER BY id LIMIT $1 OFFSET $2",
		selectColumns(res), res.Table)

	rows, err := s.db.Query(ctx, sql, limit, offset)
	if err != nil {
		return nil, erperr.Wrapf(err, erperr.CodeInternalDatabase, "mastersvc: failed to list %s", res.Name)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		rec, err := scanRecord(rows, res)
		if err != nil {
			return nil, erperr.Wrapf(err, erperr.CodeInternalDatabase, "mastersvc: failed to scan %s", res.Singular)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, erperr.Wrapf(err, erperr.CodeInternalDatabase, "mastersvc: failed to iterate %s", res.Name)
	}
	return records, nil
}

// Get returns the non-deleted record with the given id.
func (s *Store) Get(ctx context.Context, res Resource, id int64) (*Record, error) {
	sql := fmt.Sprintf(
		"SELECT %s FROM %s WHERE id = $1 AND is_deleted = FALSE",
		selectColumns(res), res.Table)

	rec, err := scanRecord(s.db.QueryRow(ctx, sql, id), res)
	if err != nil {
		if postgres.IsNoRows(err) {
			return nil, erperr.Newf(erperr.CodeNotFound, "%s not found", res.Singular)
		}
		return nil, erperr.Wrapf(err, erperr.CodeInternalDatabase, "mastersvc: failed to load %s", res.Singular)
	}
	return rec, nil
}

// Create inserts a record, assigning a fresh unique_id. A name collision
// within the parent scope surfaces as a duplicate conflict; the database
// enforces the scope with a partial unique index over non-deleted rows.
func (s *Store) Create(ctx context.Context, res Resource, in Input, actor string) (*Record, error) {
	var (
		sql  string
		args []any
	)
	if res.HasParent() {
		sql = fmt.Sprintf(`
			INSERT INTO %s (unique_id, name, code, %s, is_active, created_by, updated_by)
			VALUES ($1, $2, $3, $4, $5, $6, $6)
			RETURNING %s`, res.Table, res.ParentCol, selectColumns(res))
		args = []any{uuid.New(), in.Name, in.Code, in.ParentID, in.IsActive, actor}
	} else {
		sql = fmt.Sprintf(`
			INSERT INTO %s (unique_id, name, code, is_active, created_by, updated_by)
			VALUES ($1, $2, $3, $4, $5, $5)
			RETURNING %s`, res.Table, selectColumns(res))
		args = []any{uuid.New(), in.Name, in.Code, in.IsActive, actor}
	}

	rec, err := scanRecord(s.db.QueryRow(ctx, sql, args...), res)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return nil, erperr.Newf(erperr.CodeConflictDuplicate, "%s %q already exists", res.Singular, in.Name)
		}
		return nil, erperr.Wrapf(err, erperr.CodeInternalDatabase, "mastersvc: failed to create %s", res.Singular)
	}
	return rec, nil
}

// Update rewrites the client-settable fields of a non-deleted record.
func (s *Store) Update(ctx context.Context, res Resource, id int64, in Input, actor string) (*Record, error) {
	var (
		sql  string
		args []any
	)
	if res.HasParent() {
		sql = fmt.Sprintf(`
			UPDATE %s SET name = $2, code = $3, %s = $4, is_active = $5, updated_at = now(), updated_by = $6
			WHERE id = $1 AND is_deleted = FALSE
			RETURNING %s`, res.Table, res.ParentCol, selectColumns(res))
		args = []any{id, in.Name, in.Code, in.ParentID, in.IsActive, actor}
	} else {
		sql = fmt.Sprintf(`
			UPDATE %s SET name = $2, code = $3, is_active = $4, updated_at = now(), updated_by = $5
			WHERE id = $1 AND is_deleted = FALSE
			RETURNING %s`, res.Table, selectColumns(res))
		args = []any{id, in.Name, in.Code, in.IsActive, actor}
	}

	rec, err := scanRecord(s.db.QueryRow(ctx, sql, args...), res)
	if err != nil {
		if postgres.IsNoRows(err) {
			return nil, erperr.Newf(erperr.CodeNotFound, "%s not found", res.Singular)
		}
		if postgres.IsUniqueViolation(err) {
			return nil, erperr.Newf(erperr.CodeConflictDuplicate, "%s %q already exists", res.Singular, in.Name)
		}
		return nil, erperr.Wrapf(err, erperr.CodeInternalDatabase, "mastersvc: failed to update %s", res.Singular)
	}
	return rec, nil
}

// SoftDelete marks the record deleted. The row stays in place so audits
// and foreign keys survive; listings and lookups skip it from now on.
func (s *Store) SoftDelete(ctx context.Context, res Resource, id int64, actor string) error {
	sql := fmt.Sprintf(`
		UPDATE %s SET is_deleted = TRUE, updated_at = now(), updated_by = $2
		WHERE id = $1 AND is_deleted = FALSE`, res.Table)

	tag, err := s.db.Exec(ctx, sql, id, actor)
	if err != nil {
		return erperr.Wrapf(err, erperr.CodeInternalDatabase, "mastersvc: failed to delete %s", res.Singular)
	}
	if tag.RowsAffected() == 0 {
		return erperr.Newf(erperr.CodeNotFound, "%s not found", res.Singular)
	}
	return nil
}
