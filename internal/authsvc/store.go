// Package authsvc implements the authentication service: credential
// verification, access/refresh token issuance, and the user and role
// listing endpoints backing the login response.
package authsvc

import (
	"context"
	"strconv"
	"time"

	"github.com/ZigmaSoftware/erp-final-backend/pkg/clients/postgres"
	erperr "github.com/ZigmaSoftware/erp-final-backend/pkg/errors"
)

// Group is a named role a user belongs to. Group names travel in token
// claims; group IDs appear as "roles" in the login response.
type Group struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// User is a persisted account with its group memberships loaded.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	IsActive     bool
	LastLogin    *time.Time
	Groups       []Group
}

// GroupNames returns the user's group names in membership order, for
// embedding in token claims.
func (u *User) GroupNames() []string {
	if len(u.Groups) == 0 {
		return nil
	}
	names := make([]string, len(u.Groups))
	for i, g := range u.Groups {
		names[i] = g.Name
	}
	return names
}

// RoleIDs returns the user's group IDs, the "roles" list of the login
// response contract.
func (u *User) RoleIDs() []int64 {
	ids := make([]int64, len(u.Groups))
	for i, g := range u.Groups {
		ids[i] = g.ID
	}
	return ids
}

// UserReader is the read side of the user store consumed by the handlers.
type UserReader interface {
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	List(ctx context.Context, limit, offset int) ([]*User, error)
	ListGroups(ctx context.Context) ([]Group, error)
}

// UserStore reads users and their group memberships from PostgreSQL.
type UserStore struct {
	db *postgres.Client
}

// NewUserStore creates a UserStore over the given database client.
func NewUserStore(db *postgres.Client) *UserStore {
	return &UserStore{db: db}
}

const userColumns = "id, username, email, password_hash, is_active, last_login"

// GetByUsername returns the user with the given username, including group
// memberships. Returns a not-found error when no row matches.
func (s *UserStore) GetByUsername(ctx context.Context, username string) (*User, error) {
	return s.getOne(ctx,
		"SELECT "+userColumns+" FROM users WHERE username = $1", username)
}

// GetByID returns the user with the given id, including group memberships.
func (s *UserStore) GetByID(ctx context.Context, id int64) (*User, error) {
	return s.getOne(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = $1", id)
}

func (s *UserStore) getOne(ctx context.Context, sql string, arg any) (*User, error) {
	var u User
	err := s.db.QueryRow(ctx, sql, arg).
		Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.IsActive, &u.LastLogin)
	if err != nil {
		if postgres.IsNoRows(err) {
			return nil, erperr.New(erperr.CodeNotFoundUser, "user not found")
		}
		return nil, erperr.Wrap(err, erperr.CodeInternalDatabase, "authsvc: failed to load user")
	}

	groups, err := s.groupsForUser(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	u.Groups = groups
	return &u, nil
}

func (s *UserStore) groupsForUser(ctx context.Context, userID int64) ([]Group, error) {
	rows, err := s.db.Query(ctx, `
		SELECT g.id, g.name
		FROM groups g
		JOIN user_groups ug ON ug.group_id = g.id
		WHERE ug.user_id = $1
		ORDER BY g.id`, userID)
	if err != nil {
		return nil, erperr.Wrap(err, erperr.CodeInternalDatabase, "authsvc: failed to load user groups")
	}
	defer rows.Close()

	var groups []Group
	for rows.Next() {
		var g Group
		if err := rows.Scan(&g.ID, &g.Name); err != nil {
			return nil, erperr.Wrap(err, erperr.CodeInternalDatabase, "authsvc: failed to scan group")
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, erperr.Wrap(err, erperr.CodeInternalDatabase, "authsvc: failed to iterate groups")
	}
	return groups, nil
}

// List returns users ordered by id with limit/offset pagination. Group
// memberships are not loaded; the listing endpoint reports account fields
// only.
func (s *UserStore) List(ctx context.Context, limit, offset int) ([]*User, error) {
	rows, err := s.db.Query(ctx,
		"SELECT "+userColumns+" FROM users ORDER BY id LIMIT $1 OFFSET $2", limit, offset)
	if err != nil {
		return nil, erperr.Wrap(err, erperr.CodeInternalDatabase, "authsvc: failed to list users")
	}
	defer rows.Close()

	var users []*User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.IsActive, &u.LastLogin); err != nil {
			return nil, erperr.Wrap(err, erperr.CodeInternalDatabase, "authsvc: failed to scan user")
		}
		users = append(users, &u)
	}
	if err := rows.Err(); err != nil {
		return nil, erperr.Wrap(err, erperr.CodeInternalDatabase, "authsvc: failed to iterate users")
	}
	return users, nil
}

// ListGroups returns all groups ordered by id.
func (s *UserStore) ListGroups(ctx context.Context) ([]Group, error) {
	rows, err := s.db.Query(ctx, "SELECT id, name FROM groups ORDER BY id")
	if err != nil {
		return nil, erperr.Wrap(err, erperr.CodeInternalDatabase, "authsvc: failed to list groups")
	}
	defer rows.Close()

	var groups []Group
	for rows.Next() {
		var g Group
		if err := rows.Scan(&g.ID, &g.Name); err != nil {
			return nil, erperr.Wrap(err, erperr.CodeInternalDatabase, "authsvc: failed to scan group")
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, erperr.Wrap(err, erperr.CodeInternalDatabase, "authsvc: failed to iterate groups")
	}
	return groups, nil
}

// TouchLastLogin records a successful login time. Failures are logged by
// the caller, never surfaced to the client.
func (s *UserStore) TouchLastLogin(ctx context.Context, userID int64) error {
	_, err := s.db.Exec(ctx, "UPDATE users SET last_login = now() WHERE id = $1", userID)
	return err
}

// ParseUserID converts a token subject back to a user id.
func ParseUserID(sub string) (int64, error) {
	id, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return 0, erperr.Wrap(err, erperr.CodeTokenInvalid, "authsvc: malformed subject claim")
	}
	return id, nil
}
