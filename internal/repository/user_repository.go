package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/jwt-auth-api/internal/model"
)

const userColumns = "id,username,email,password,avatar,role_id,refresh_token,created_at,updated_at"

// UserRepo persists users and the single refresh-token column that backs
// server-side revocation.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Create inserts a user and returns its ID. The unique index on email is the
// authority on uniqueness; a duplicate-key failure maps to ErrEmailExists.
func (r *UserRepo) Create(ctx context.Context, username, email, passwordHash string) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (username, email, password) VALUES (?,?,?)",
		username, email, passwordHash)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

// GetByIDAndRefreshToken fetches the user only when the stored refresh_token
// equals the presented value. This exact-match check is the server-side
// revocation mechanism: a token overwritten by a later login or cleared by
// logout no longer matches even though its signature still verifies.
func (r *UserRepo) GetByIDAndRefreshToken(ctx context.Context, id uint64, token string) (model.User, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? AND refresh_token=? LIMIT 1", id, token))
}

// ListAll returns every user.
func (r *UserRepo) ListAll(ctx context.Context) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash,
			&u.Avatar, &u.RoleID, &u.RefreshToken, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// EmailTakenByOther reports whether the email belongs to a different user.
// Used by profile updates before writing a new email.
func (r *UserRepo) EmailTakenByOther(ctx context.Context, email string, id uint64) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var other uint64
	err := r.DB.QueryRowContext(ctx,
		"SELECT id FROM users WHERE email=? AND id<>? LIMIT 1", email, id).Scan(&other)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// UpdateProfile updates username and/or email; empty strings are skipped.
// The SET list is assembled dynamically the way the original update worked,
// so a single statement covers all three combinations.
func (r *UserRepo) UpdateProfile(ctx context.Context, id uint64, username, email string) error {
	sets := make([]string, 0, 3)
	args := make([]interface{}, 0, 3)
	if username != "" {
		sets = append(sets, "username=?")
		args = append(args, username)
	}
	if email != "" {
		sets = append(sets, "email=?")
		args = append(args, strings.ToLower(strings.TrimSpace(email)))
	}
	if len(sets) == 0 {
		return nil
	}
	sets = append(sets, "updated_at=NOW()")
	args = append(args, id)
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET "+strings.Join(sets, ", ")+" WHERE id=?", args...)
	if err != nil && strings.Contains(strings.ToLower(err.Error()), "1062") {
		return ErrEmailExists
	}
	return err
}

// UpdatePassword replaces the stored password hash.
func (r *UserRepo) UpdatePassword(ctx context.Context, id uint64, passwordHash string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET password=?, updated_at=NOW() WHERE id=?", passwordHash, id)
	return err
}

// UpdateAvatar records the uploaded avatar filename.
func (r *UserRepo) UpdateAvatar(ctx context.Context, id uint64, filename string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET avatar=?, updated_at=NOW() WHERE id=?", filename, id)
	return err
}

// SetRefreshToken overwrites the user's refresh token. Any previously issued
// refresh token stops matching and is thereby invalidated.
func (r *UserRepo) SetRefreshToken(ctx context.Context, id uint64, token string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET refresh_token=? WHERE id=?", token, id)
	return err
}

// ClearRefreshToken nulls the refresh token. Clearing an already-null column
// is a no-op success, which makes logout idempotent.
func (r *UserRepo) ClearRefreshToken(ctx context.Context, id uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET refresh_token=NULL WHERE id=?", id)
	return err
}

// Delete removes a user. ErrUserNotFound when no row was affected.
func (r *UserRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM users WHERE id=?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *UserRepo) scanOne(row *sql.Row) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash,
		&u.Avatar, &u.RoleID, &u.RefreshToken, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}
