package handler

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/jwt-auth-api/internal/apperror"
	"github.com/iliyamo/jwt-auth-api/internal/middleware"
	"github.com/iliyamo/jwt-auth-api/internal/repository"
)

func newUserHandler(t *testing.T) (*UserHandler, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	h := &UserHandler{Cfg: testConfig(t), Users: repository.NewUserRepo(db), Publish: noopPublish}
	return h, mock, db
}

func TestProfile_Success(t *testing.T) {
	h, mock, db := newUserHandler(t)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id=?")).
		WithArgs(uint64(5)).
		WillReturnRows(userRow(5, "alice", "alice@x.com", "hash", nil))

	rec, env := do(t, h.Profile, http.MethodGet, "/api/v1/users/profile", "", 5)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (%v)", rec.Code, env)
	}
	data := env["data"].(map[string]interface{})
	if data["username"] != "alice" {
		t.Fatalf("username = %v", data["username"])
	}
	// The summary must never carry credentials.
	if _, leaked := data["password"]; leaked {
		t.Fatalf("password leaked in profile response")
	}
	if _, leaked := data["refreshToken"]; leaked {
		t.Fatalf("refresh token leaked in profile response")
	}
}

func TestProfile_UserGone(t *testing.T) {
	h, mock, db := newUserHandler(t)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id=?")).
		WithArgs(uint64(5)).
		WillReturnError(sql.ErrNoRows)

	rec, _ := do(t, h.Profile, http.MethodGet, "/api/v1/users/profile", "", 5)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestUpdateProfile_NoFields(t *testing.T) {
	h, _, db := newUserHandler(t)
	defer db.Close()

	rec, env := do(t, h.UpdateProfile, http.MethodPut, "/api/v1/users/profile", `{}`, 5)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if env["message"] != "No fields to update" {
		t.Fatalf("message = %v", env["message"])
	}
}

func TestUpdateProfile_EmailTaken(t *testing.T) {
	h, mock, db := newUserHandler(t)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM users WHERE email=? AND id<>?")).
		WithArgs("taken@x.com", uint64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(9))

	rec, env := do(t, h.UpdateProfile, http.MethodPut, "/api/v1/users/profile",
		`{"email":"taken@x.com"}`, 5)
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409 (%v)", rec.Code, env)
	}
}

func TestUpdateProfile_Success(t *testing.T) {
	h, mock, db := newUserHandler(t)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM users WHERE email=? AND id<>?")).
		WithArgs("new@x.com", uint64(5)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET username=?, email=?, updated_at=NOW() WHERE id=?")).
		WithArgs("bob", "new@x.com", uint64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id=?")).
		WithArgs(uint64(5)).
		WillReturnRows(userRow(5, "bob", "new@x.com", "hash", nil))

	rec, env := do(t, h.UpdateProfile, http.MethodPut, "/api/v1/users/profile",
		`{"username":"bob","email":"new@x.com"}`, 5)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (%v)", rec.Code, env)
	}
	data := env["data"].(map[string]interface{})
	if data["username"] != "bob" || data["email"] != "new@x.com" {
		t.Fatalf("unexpected data: %v", data)
	}
}

func TestChangePassword_WrongCurrent(t *testing.T) {
	h, mock, db := newUserHandler(t)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id=?")).
		WithArgs(uint64(5)).
		WillReturnRows(userRow(5, "alice", "alice@x.com", mustHash(t, "pw123"), nil))

	rec, env := do(t, h.ChangePassword, http.MethodPut, "/api/v1/users/change-password",
		`{"currentPassword":"wrong","newPassword":"pw456"}`, 5)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401 (%v)", rec.Code, env)
	}
	if env["message"] != "Current password is incorrect" {
		t.Fatalf("message = %v", env["message"])
	}
}

func TestChangePassword_Success(t *testing.T) {
	h, mock, db := newUserHandler(t)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id=?")).
		WithArgs(uint64(5)).
		WillReturnRows(userRow(5, "alice", "alice@x.com", mustHash(t, "pw123"), nil))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET password=?, updated_at=NOW() WHERE id=?")).
		WithArgs(sqlmock.AnyArg(), uint64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	rec, env := do(t, h.ChangePassword, http.MethodPut, "/api/v1/users/change-password",
		`{"currentPassword":"pw123","newPassword":"pw456"}`, 5)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (%v)", rec.Code, env)
	}
}

func TestAllUsers(t *testing.T) {
	h, mock, db := newUserHandler(t)
	defer db.Close()

	now := time.Now().UTC()
	two := sqlmock.NewRows([]string{
		"id", "username", "email", "password", "avatar", "role_id", "refresh_token", "created_at", "updated_at",
	}).
		AddRow(1, "alice", "alice@x.com", "h1", nil, nil, nil, now, now).
		AddRow(2, "bob", "bob@x.com", "h2", nil, nil, nil, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM users ORDER BY id")).WillReturnRows(two)

	rec, env := do(t, h.AllUsers, http.MethodGet, "/api/v1/users/all-users", "", 1)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (%v)", rec.Code, env)
	}
	data := env["data"].([]interface{})
	if len(data) != 2 {
		t.Fatalf("len(data) = %d, want 2", len(data))
	}
}

func TestDeleteUser_NotFound(t *testing.T) {
	h, mock, db := newUserHandler(t)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM users WHERE id=?")).
		WithArgs(uint64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	rec, _ := doDelete(t, h, "99")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestDeleteUser_Success(t *testing.T) {
	h, mock, db := newUserHandler(t)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM users WHERE id=?")).
		WithArgs(uint64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	rec, env := doDelete(t, h, "2")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (%v)", rec.Code, env)
	}
}

func doDelete(t *testing.T, h *UserHandler, id string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/users/"+id, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(middleware.CtxUserID, uint64(1))
	c.SetParamNames("id")
	c.SetParamValues(id)
	if err := h.DeleteUser(c); err != nil {
		apperror.NewHTTPErrorHandler("test")(err, c)
	}
	var env map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("response is not JSON: %v (%s)", err, rec.Body.String())
	}
	return rec, env
}

func TestUploadAvatar_NoFile(t *testing.T) {
	h, _, db := newUserHandler(t)
	defer db.Close()

	rec, env := do(t, h.UploadAvatar, http.MethodPost, "/api/v1/users/avatar", "", 5)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 (%v)", rec.Code, env)
	}
	if env["message"] != "No file uploaded" {
		t.Fatalf("message = %v", env["message"])
	}
}

func TestUploadAvatar_Success(t *testing.T) {
	h, mock, db := newUserHandler(t)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET avatar=?, updated_at=NOW() WHERE id=?")).
		WithArgs(sqlmock.AnyArg(), uint64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("avatar", "me.png")
	if err != nil {
		t.Fatalf("CreateFormFile error: %v", err)
	}
	if _, err := fw.Write([]byte("png-bytes")); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	mw.Close()

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/avatar", &body)
	req.Header.Set(echo.HeaderContentType, mw.FormDataContentType())
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(middleware.CtxUserID, uint64(5))

	if err := h.UploadAvatar(c); err != nil {
		apperror.NewHTTPErrorHandler("test")(err, c)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (%s)", rec.Code, rec.Body.String())
	}

	var env map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	filename, _ := env["data"].(map[string]interface{})["avatar"].(string)
	if filename == "" || !strings.HasSuffix(filename, ".png") {
		t.Fatalf("avatar filename = %q", filename)
	}
	// The uploaded bytes landed under the configured upload dir.
	saved, err := os.ReadFile(filepath.Join(h.Cfg.UploadDir, filename))
	if err != nil {
		t.Fatalf("stored file missing: %v", err)
	}
	if string(saved) != "png-bytes" {
		t.Fatalf("stored content = %q", saved)
	}
}
