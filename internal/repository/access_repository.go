package repository

import (
	"context"
	"database/sql"
)

// AccessRepo answers the role and permission questions the authorization
// middleware asks per request. Both lookups read current storage state on
// every call; nothing is cached, so a role or permission change takes effect
// on the next request.
type AccessRepo struct{ DB *sql.DB }

func NewAccessRepo(db *sql.DB) *AccessRepo { return &AccessRepo{DB: db} }

// RoleName returns the name of the user's role, or "" when the user has no
// role (role_id null, e.g. after the role was deleted). ErrUserNotFound when
// the user row itself is gone, which matters because access tokens outlive
// user deletion until expiry.
func (r *AccessRepo) RoleName(ctx context.Context, userID uint64) (string, error) {
	var name sql.NullString
	err := r.DB.QueryRowContext(ctx,
		"SELECT r.name FROM users u LEFT JOIN roles r ON u.role_id = r.id WHERE u.id=?",
		userID).Scan(&name)
	if err == sql.ErrNoRows {
		return "", ErrUserNotFound
	}
	if err != nil {
		return "", err
	}
	return name.String, nil
}

// HasPermission reports whether the user's role is linked to the named
// permission. The join walks users -> roles -> role_permissions ->
// permissions; a user with no role, or a role with no linked permissions,
// never matches.
func (r *AccessRepo) HasPermission(ctx context.Context, userID uint64, permission string) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx,
		`SELECT 1 FROM users u
		 JOIN roles r ON u.role_id = r.id
		 JOIN role_permissions rp ON r.id = rp.role_id
		 JOIN permissions p ON rp.permission_id = p.id
		 WHERE u.id = ? AND p.name = ? LIMIT 1`,
		userID, permission).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
