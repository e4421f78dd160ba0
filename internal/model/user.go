package model

import (
    "database/sql"
    "time"
)

// User represents an application user record as stored in the `users` table.
// Each field corresponds to a column in the database.  Handlers define
// separate response types with JSON tags; these structs are used internally
// by the repository layer.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Username     – display name, not unique.
//  Email        – unique email address.
//  PasswordHash – bcrypt hashed password (users.password).
//  Avatar       – uploaded avatar filename (null until first upload).
//  RoleID       – foreign key into the roles table; null when the user has no
//                 role or the role was deleted (ON DELETE SET NULL).
//  RefreshToken – the currently valid refresh token, null when logged out.
//                 At most one value is live per user; login overwrites it.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
    ID           uint64         // users.id
    Username     string         // users.username
    Email        string         // users.email
    PasswordHash string         // users.password
    Avatar       sql.NullString // users.avatar
    RoleID       sql.NullInt64  // users.role_id
    RefreshToken sql.NullString // users.refresh_token
    CreatedAt    time.Time      // users.created_at
    UpdatedAt    time.Time      // users.updated_at
}

// The roles, permissions and role_permissions tables (see migrations/) are
// only ever read through joins in the access repository, which scans the
// scalar columns it needs directly; no dedicated structs are kept for them.
