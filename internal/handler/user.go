package handler

import (
	"context"
	"database/sql"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/jwt-auth-api/internal/apperror"
	"github.com/iliyamo/jwt-auth-api/internal/config"
	"github.com/iliyamo/jwt-auth-api/internal/middleware"
	"github.com/iliyamo/jwt-auth-api/internal/model"
	"github.com/iliyamo/jwt-auth-api/internal/queue"
	"github.com/iliyamo/jwt-auth-api/internal/repository"
	queuepub "github.com/iliyamo/jwt-auth-api/internal/service"
	"github.com/iliyamo/jwt-auth-api/internal/utils"
)

// UserHandler bundles dependencies for profile and admin endpoints. Publish
// emits account lifecycle events; it is a field so tests can swap in a no-op.
type UserHandler struct {
	Cfg     config.Config
	Users   *repository.UserRepo
	Publish func(ctx context.Context, event queue.UserEvent) error
}

func NewUserHandler(cfg config.Config, u *repository.UserRepo) *UserHandler {
	return &UserHandler{Cfg: cfg, Users: u, Publish: queuepub.PublishUserEvent}
}

type updateProfileReq struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}
type changePasswordReq struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// userSummary is the public shape of a user record. Password and refresh
// token never leave the repository layer.
type userSummary struct {
	ID        uint64    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Avatar    *string   `json:"avatar"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func summarize(u model.User) userSummary {
	s := userSummary{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
	if u.Avatar.Valid {
		s.Avatar = &u.Avatar.String
	}
	return s
}

// Profile returns the authenticated caller's user record.
func (h *UserHandler) Profile(c echo.Context) error {
	uid, ok := middleware.CallerID(c)
	if !ok {
		return apperror.Unauthorized("Access token is required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		if err == sql.ErrNoRows {
			return apperror.NotFound("User not found")
		}
		return apperror.Internal("query failed", err)
	}
	return utils.Success(c, http.StatusOK, "Profile retrieved successfully", summarize(u))
}

// UpdateProfile changes username and/or email. At least one field must be
// present; a new email must not belong to another user.
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	uid, ok := middleware.CallerID(c)
	if !ok {
		return apperror.Unauthorized("Access token is required")
	}

	var req updateProfileReq
	if err := c.Bind(&req); err != nil {
		return apperror.New(apperror.KindValidation, "invalid body")
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Username == "" && req.Email == "" {
		return apperror.New(apperror.KindValidation, "No fields to update")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if req.Email != "" {
		taken, err := h.Users.EmailTakenByOther(ctx, req.Email, uid)
		if err != nil {
			return apperror.Internal("query failed", err)
		}
		if taken {
			return apperror.Conflict("Email is already taken")
		}
	}

	if err := h.Users.UpdateProfile(ctx, uid, req.Username, req.Email); err != nil {
		if err == repository.ErrEmailExists {
			return apperror.Conflict("Email is already taken")
		}
		return apperror.Internal("update failed", err)
	}

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		if err == sql.ErrNoRows {
			return apperror.NotFound("User not found")
		}
		return apperror.Internal("query failed", err)
	}
	return utils.Success(c, http.StatusOK, "Profile updated successfully", summarize(u))
}

// ChangePassword verifies the current password before storing a new hash.
func (h *UserHandler) ChangePassword(c echo.Context) error {
	uid, ok := middleware.CallerID(c)
	if !ok {
		return apperror.Unauthorized("Access token is required")
	}

	var req changePasswordReq
	if err := c.Bind(&req); err != nil {
		return apperror.New(apperror.KindValidation, "invalid body")
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		return apperror.New(apperror.KindValidation, "Current and new password are required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		if err == sql.ErrNoRows {
			return apperror.NotFound("User not found")
		}
		return apperror.Internal("query failed", err)
	}
	if !utils.VerifyPassword(u.PasswordHash, req.CurrentPassword) {
		return apperror.Unauthorized("Current password is incorrect")
	}

	hash, err := utils.HashPassword(req.NewPassword, h.Cfg.BcryptCost)
	if err != nil {
		return apperror.Internal("hash password failed", err)
	}
	if err := h.Users.UpdatePassword(ctx, uid, hash); err != nil {
		return apperror.Internal("update failed", err)
	}
	return utils.Success(c, http.StatusOK, "Password changed successfully", nil)
}

// UploadAvatar stores the multipart "avatar" file under the upload directory
// with a generated filename and records that filename on the user row. The
// file is served back via the static /uploads route.
func (h *UserHandler) UploadAvatar(c echo.Context) error {
	uid, ok := middleware.CallerID(c)
	if !ok {
		return apperror.Unauthorized("Access token is required")
	}

	fh, err := c.FormFile("avatar")
	if err != nil {
		return apperror.New(apperror.KindValidation, "No file uploaded")
	}

	src, err := fh.Open()
	if err != nil {
		return apperror.Internal("open upload failed", err)
	}
	defer src.Close()

	if err := os.MkdirAll(h.Cfg.UploadDir, 0o755); err != nil {
		return apperror.Internal("upload dir unavailable", err)
	}
	// Server-generated name so uploads cannot collide or traverse paths.
	filename := uuid.NewString() + strings.ToLower(filepath.Ext(fh.Filename))
	dst, err := os.Create(filepath.Join(h.Cfg.UploadDir, filename))
	if err != nil {
		return apperror.Internal("store upload failed", err)
	}
	defer dst.Close()
	if _, err := io.Copy(dst, src); err != nil {
		return apperror.Internal("store upload failed", err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.UpdateAvatar(ctx, uid, filename); err != nil {
		return apperror.Internal("update failed", err)
	}
	return utils.Success(c, http.StatusOK, "Avatar uploaded successfully",
		echo.Map{"avatar": filename})
}

// AllUsers lists every user. Admin-gated in the router.
func (h *UserHandler) AllUsers(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	users, err := h.Users.ListAll(ctx)
	if err != nil {
		return apperror.Internal("query failed", err)
	}
	out := make([]userSummary, 0, len(users))
	for _, u := range users {
		out = append(out, summarize(u))
	}
	return utils.Success(c, http.StatusOK, "Users retrieved successfully", out)
}

// DeleteUser removes a user by id.
func (h *UserHandler) DeleteUser(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return apperror.NotFound("User not found")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.Delete(ctx, id); err != nil {
		if err == repository.ErrUserNotFound {
			return apperror.NotFound("User not found")
		}
		return apperror.Internal("delete failed", err)
	}

	go func(ev queue.UserEvent) {
		_ = h.Publish(context.Background(), ev)
	}(queue.UserEvent{
		Type:       queue.UserDeleted,
		UserID:     id,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	})

	return utils.Success(c, http.StatusOK, "User deleted successfully", nil)
}
