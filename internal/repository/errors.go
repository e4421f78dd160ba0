// Package repository implements the credential store over *sql.DB with
// parameterized statements. Sentinel errors defined here let handlers
// distinguish failure scenarios without parsing driver errors.
package repository

import "errors"

// ErrEmailExists is returned when an insert or update would violate the
// unique email constraint. Handlers translate this into HTTP 409.
var ErrEmailExists = errors.New("email already exists")

// ErrUserNotFound is returned when an operation targets a user id that no
// longer exists. Handlers translate this into HTTP 404.
var ErrUserNotFound = errors.New("user not found")
