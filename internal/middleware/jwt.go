package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
    "errors"
    "strings" // string utilities for prefix checking and trimming

    "github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

    "github.com/iliyamo/jwt-auth-api/internal/apperror"
    "github.com/iliyamo/jwt-auth-api/internal/utils"
)

// Context keys under which the authenticated caller's identity is stored.
// Handlers read them back with c.Get.
const (
    CtxUserID = "user_id"
    CtxEmail  = "email"
)

// JWTAuth returns an Echo middleware that validates a Bearer access token and
// injects the token's user id and email claims into the request context.  The
// provided secret must match the access secret used when issuing tokens.
// This middleware wraps every protected route so that handlers can identify
// the caller via `c.Get(CtxUserID)` without touching the database.
func JWTAuth(accessSecret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            // A valid header starts with "Bearer " followed by the JWT.
            auth := c.Request().Header.Get("Authorization")
            if !strings.HasPrefix(auth, "Bearer ") {
                return apperror.Unauthorized("Access token is required")
            }
            raw := strings.TrimPrefix(auth, "Bearer ")

            claims, err := utils.ParseAccessToken(accessSecret, raw)
            if err != nil {
                // Expired tokens get their own message so clients know to
                // refresh rather than re-authenticate.
                if errors.Is(err, utils.ErrTokenExpired) {
                    return apperror.Unauthorized("Access token has expired")
                }
                return apperror.Unauthorized("Invalid access token")
            }

            c.Set(CtxUserID, claims.UserID)
            c.Set(CtxEmail, claims.Email)
            return next(c)
        }
    }
}

// CallerID extracts the authenticated user id placed in the context by
// JWTAuth. The bool is false when the middleware did not run.
func CallerID(c echo.Context) (uint64, bool) {
    id, ok := c.Get(CtxUserID).(uint64)
    return id, ok
}
