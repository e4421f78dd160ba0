package middleware

import (
    "context"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/jwt-auth-api/internal/apperror"
    "github.com/iliyamo/jwt-auth-api/internal/repository"
)

// RequirePermission returns a middleware that admits the request only when
// the caller's role is linked to the named permission.  The lookup joins
// users, roles, role_permissions and permissions on every request; a user
// with no role, or a role with no linked permissions, always fails.
func RequirePermission(access *repository.AccessRepo, permission string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            uid, ok := CallerID(c)
            if !ok {
                return apperror.Unauthorized("Access token is required")
            }

            ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
            defer cancel()

            granted, err := access.HasPermission(ctx, uid, permission)
            if err != nil {
                return apperror.Internal("permission check failed", err)
            }
            if !granted {
                return apperror.Forbidden("Access denied")
            }
            return next(c)
        }
    }
}
