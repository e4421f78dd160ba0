package utils // package utils provides helper functions for token creation and verification

import (
    "errors"
    "time"

    "github.com/golang-jwt/jwt/v5" // JWT library for creating and parsing signed tokens
)

// Sentinel errors returned by the parse functions.  Callers that care about
// the distinction (the auth middleware reports a different message for an
// expired token) can compare with errors.Is; everything else treats both as
// an authentication failure.
var (
    ErrTokenExpired = errors.New("token expired")
    ErrTokenInvalid = errors.New("token invalid")
)

// AccessClaims is the payload carried by an access token.  The user id and
// email are embedded so protected handlers can identify the caller without a
// database read.  RegisteredClaims contributes exp and iat.
type AccessClaims struct {
    UserID uint64 `json:"id"`
    Email  string `json:"email"`
    jwt.RegisteredClaims
}

// RefreshClaims is the payload carried by a refresh token.  Only the user id
// is included: the token is additionally matched against the value stored on
// the user row, which is what actually revokes it.
type RefreshClaims struct {
    UserID uint64 `json:"id"`
    jwt.RegisteredClaims
}

// NewAccessToken builds and signs a short‑lived HS256 access token.  The TTL
// is expressed in minutes to mirror the ACCESS_TOKEN_TTL_MIN setting.
func NewAccessToken(secret string, userID uint64, email string, ttlMin int) (string, error) {
    now := time.Now().UTC()
    claims := AccessClaims{
        UserID: userID,
        Email:  email,
        RegisteredClaims: jwt.RegisteredClaims{
            ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(ttlMin) * time.Minute)),
            IssuedAt:  jwt.NewNumericDate(now),
        },
    }
    return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// NewRefreshToken builds and signs a long‑lived HS256 refresh token using the
// refresh secret.  The TTL is expressed in days to mirror REFRESH_TOKEN_TTL_DAYS.
func NewRefreshToken(secret string, userID uint64, ttlDays int) (string, error) {
    now := time.Now().UTC()
    claims := RefreshClaims{
        UserID: userID,
        RegisteredClaims: jwt.RegisteredClaims{
            ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(ttlDays) * 24 * time.Hour)),
            IssuedAt:  jwt.NewNumericDate(now),
        },
    }
    return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ParseAccessToken verifies an access token against the access secret and
// returns its claims.  Expired tokens yield ErrTokenExpired; anything else
// wrong with the token (signature, structure, algorithm) yields ErrTokenInvalid.
func ParseAccessToken(secret, token string) (*AccessClaims, error) {
    claims := &AccessClaims{}
    if err := parseInto(secret, token, claims); err != nil {
        return nil, err
    }
    return claims, nil
}

// ParseRefreshToken verifies a refresh token against the refresh secret and
// returns its claims.
func ParseRefreshToken(secret, token string) (*RefreshClaims, error) {
    claims := &RefreshClaims{}
    if err := parseInto(secret, token, claims); err != nil {
        return nil, err
    }
    return claims, nil
}

// parseInto runs the actual jwt parse with the HS256 restriction and maps the
// library's error taxonomy onto the two sentinels above.
func parseInto(secret, token string, claims jwt.Claims) error {
    tok, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
        // Reject tokens signed with anything but HMAC before touching claims.
        if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, ErrTokenInvalid
        }
        return []byte(secret), nil
    })
    if err != nil {
        if errors.Is(err, jwt.ErrTokenExpired) {
            return ErrTokenExpired
        }
        return ErrTokenInvalid
    }
    if !tok.Valid {
        return ErrTokenInvalid
    }
    return nil
}
