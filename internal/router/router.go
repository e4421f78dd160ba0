package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/jwt-auth-api/internal/config"
	"github.com/iliyamo/jwt-auth-api/internal/handler"    // import the handlers that implement business logic
	"github.com/iliyamo/jwt-auth-api/internal/middleware" // import middleware for JWT authentication and authorization
	"github.com/iliyamo/jwt-auth-api/internal/repository"
)

// Gate values used when wiring authorization middleware. These mirror the
// role and permission names seeded into the database for deployments that
// enable the gated routes.
const (
	adminRole             = "admin1"
	viewProfilePermission = "view_profile1"
)

// Register wires every route of the API onto the provided Echo instance.
// Everything lives under /api/v1; the rate limiter fronts the whole group
// the way the original deployment rate-limited its API router.
func Register(e *echo.Echo, cfg config.Config, rdb *redis.Client,
	a *handler.AuthHandler, u *handler.UserHandler, access *repository.AccessRepo) {

	api := e.Group("/api/v1")
	api.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	// Liveness probe for load balancers and monitoring.
	api.GET("/health", handler.Health)

	// Unauthenticated session operations. Registration does not log the
	// user in; refresh exchanges a refresh token for a new access token.
	auth := api.Group("/auth")
	auth.POST("/register", a.Register)
	auth.POST("/login", a.Login)
	auth.POST("/refresh-token", a.Refresh)
	// Logout needs a valid access token so we know whose refresh token to clear.
	auth.POST("/logout", a.Logout, middleware.JWTAuth(cfg.AccessSecret))

	// Profile and admin endpoints, all behind JWT authentication. The role
	// and permission gates re-check storage on every request.
	users := api.Group("/users")
	users.Use(middleware.JWTAuth(cfg.AccessSecret))
	users.GET("/profile", u.Profile, middleware.RequirePermission(access, viewProfilePermission))
	users.PUT("/profile", u.UpdateProfile)
	users.PUT("/change-password", u.ChangePassword)
	users.POST("/avatar", u.UploadAvatar)
	users.GET("/all-users", u.AllUsers, middleware.RequireRole(access, adminRole))
	users.DELETE("/:id", u.DeleteUser)

	// Uploaded avatars are served straight from disk.
	e.Static("/uploads", cfg.UploadDir)
}
