package middleware // middleware provides shared request processing for handlers

import (
    "context"
    "time"

    "github.com/labstack/echo/v4" // echo provides middleware chaining and context

    "github.com/iliyamo/jwt-auth-api/internal/apperror"
    "github.com/iliyamo/jwt-auth-api/internal/repository"
)

// RequireRole returns a middleware that enforces that the authenticated user
// currently holds one of the allowed roles.  The role is re-read from storage
// on every request rather than trusted from the token, so revoking or
// reassigning a role takes effect immediately.  A user whose record has been
// deleted after token issuance gets 404; a missing or disallowed role gets
// 403.  Assumes JWTAuth ran earlier and stored the user id in context.
func RequireRole(access *repository.AccessRepo, roles ...string) echo.MiddlewareFunc {
    allowed := make(map[string]bool, len(roles))
    for _, r := range roles {
        allowed[r] = true
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            uid, ok := CallerID(c)
            if !ok {
                return apperror.Unauthorized("Access token is required")
            }

            ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
            defer cancel()

            name, err := access.RoleName(ctx, uid)
            if err != nil {
                if err == repository.ErrUserNotFound {
                    return apperror.NotFound("User not found")
                }
                return apperror.Internal("role check failed", err)
            }
            // name is "" for a user with no role, which never matches.
            if !allowed[name] {
                return apperror.Forbidden("Access denied")
            }
            return next(c)
        }
    }
}
