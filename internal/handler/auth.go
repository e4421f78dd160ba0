package handler

import (
	"context"
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/jwt-auth-api/internal/apperror"
	"github.com/iliyamo/jwt-auth-api/internal/config"
	"github.com/iliyamo/jwt-auth-api/internal/middleware"
	"github.com/iliyamo/jwt-auth-api/internal/queue"
	"github.com/iliyamo/jwt-auth-api/internal/repository"
	queuepub "github.com/iliyamo/jwt-auth-api/internal/service"
	"github.com/iliyamo/jwt-auth-api/internal/utils"
)

// AuthHandler bundles dependencies for auth endpoints. Publish emits account
// lifecycle events; it is a field so tests can swap in a no-op.
type AuthHandler struct {
	Cfg     config.Config
	Users   *repository.UserRepo
	Publish func(ctx context.Context, event queue.UserEvent) error
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Publish: queuepub.PublishUserEvent}
}

// ----- DTOs -----

type registerReq struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type refreshReq struct {
	RefreshToken string `json:"refreshToken"`
}

type userPart struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}
type loginResp struct {
	User         userPart `json:"user"`
	AccessToken  string   `json:"accessToken"`
	RefreshToken string   `json:"refreshToken"`
}

// Register creates the user and returns its id. No tokens are issued here;
// the client logs in afterwards.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return apperror.New(apperror.KindValidation, "invalid body")
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	fields := map[string]string{}
	if req.Username == "" {
		fields["username"] = "username is required"
	}
	if req.Email == "" {
		fields["email"] = "email is required"
	}
	if req.Password == "" {
		fields["password"] = "password is required"
	}
	if len(fields) > 0 {
		return apperror.Validation("Username, email and password are required", fields)
	}

	hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return apperror.Internal("hash password failed", err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	uid, err := h.Users.Create(ctx, req.Username, req.Email, hash)
	if err != nil {
		if err == repository.ErrEmailExists {
			return apperror.Conflict("User with this email already exists")
		}
		return apperror.Internal("create user failed", err)
	}

	// Fire-and-forget lifecycle event; a broker outage must not fail signup.
	go func(ev queue.UserEvent) {
		_ = h.Publish(context.Background(), ev)
	}(queue.UserEvent{
		Type:       queue.UserRegistered,
		UserID:     uid,
		Email:      req.Email,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	})

	return utils.Success(c, http.StatusCreated, "User registered successfully",
		echo.Map{"userId": uid})
}

// Login verifies credentials and returns a fresh token pair. The refresh
// token is persisted on the user row, overwriting any previous value so at
// most one refresh token per user is ever valid.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return apperror.New(apperror.KindValidation, "invalid body")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return apperror.New(apperror.KindValidation, "Email and password are required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if err == sql.ErrNoRows {
			// Same message as a wrong password: never reveal which was wrong.
			return apperror.Unauthorized("Invalid email or password")
		}
		return apperror.Internal("query failed", err)
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return apperror.Unauthorized("Invalid email or password")
	}

	access, err := utils.NewAccessToken(h.Cfg.AccessSecret, u.ID, u.Email, h.Cfg.AccessTTLMin)
	if err != nil {
		return apperror.Internal("issue access failed", err)
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshSecret, u.ID, h.Cfg.RefreshTTLDays)
	if err != nil {
		return apperror.Internal("issue refresh failed", err)
	}
	if err := h.Users.SetRefreshToken(ctx, u.ID, refresh); err != nil {
		return apperror.Internal("save refresh failed", err)
	}

	return utils.Success(c, http.StatusOK, "Login successful", loginResp{
		User:         userPart{ID: u.ID, Username: u.Username, Email: u.Email},
		AccessToken:  access,
		RefreshToken: refresh,
	})
}

// Refresh exchanges a refresh token for a new access token. The presented
// token must carry a valid signature AND exactly equal the stored
// refresh_token value; the second check is what makes logout and later
// logins revoke older tokens. The refresh token itself is not rotated.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return apperror.Unauthorized("Invalid or expired refresh token")
	}
	raw := strings.TrimSpace(req.RefreshToken)

	claims, err := utils.ParseRefreshToken(h.Cfg.RefreshSecret, raw)
	if err != nil {
		return apperror.Unauthorized("Invalid or expired refresh token")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByIDAndRefreshToken(ctx, claims.UserID, raw)
	if err != nil {
		if err == sql.ErrNoRows {
			// Overwritten by a later login, cleared by logout, or user gone.
			return apperror.Unauthorized("Invalid refresh token")
		}
		return apperror.Internal("query failed", err)
	}

	access, err := utils.NewAccessToken(h.Cfg.AccessSecret, u.ID, u.Email, h.Cfg.AccessTTLMin)
	if err != nil {
		return apperror.Internal("issue access failed", err)
	}

	return utils.Success(c, http.StatusOK, "Token refreshed successfully",
		echo.Map{"accessToken": access})
}

// Logout clears the stored refresh token for the authenticated user. The
// signature on an intercepted refresh token still verifies afterwards, but
// the null column makes the storage match fail, which is the actual
// revocation. Idempotent: logging out twice is a no-op success.
func (h *AuthHandler) Logout(c echo.Context) error {
	uid, ok := middleware.CallerID(c)
	if !ok {
		return apperror.Unauthorized("Access token is required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.ClearRefreshToken(ctx, uid); err != nil {
		return apperror.Internal("logout failed", err)
	}
	return utils.Success(c, http.StatusOK, "Logout successful", nil)
}
