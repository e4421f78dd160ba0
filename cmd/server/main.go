package main // Entry point package

import (
	"log" // Logging library

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4" // Echo web framework
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/jwt-auth-api/internal/apperror"
	"github.com/iliyamo/jwt-auth-api/internal/config" // Internal config loader
	"github.com/iliyamo/jwt-auth-api/internal/database"
	"github.com/iliyamo/jwt-auth-api/internal/handler"
	"github.com/iliyamo/jwt-auth-api/internal/repository"
	"github.com/iliyamo/jwt-auth-api/internal/router" // Internal router setup
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load() // Load environment config

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis backs the rate limiter; nil disables it.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable, rate limiting disabled")
	}

	users := repository.NewUserRepo(db)
	access := repository.NewAccessRepo(db)

	e := echo.New() // Create Echo instance
	e.HideBanner = true
	e.HTTPErrorHandler = apperror.NewHTTPErrorHandler(cfg.Env)
	e.Use(echomw.Logger())  // HTTP access logs
	e.Use(echomw.Recover()) // panics become 500s, not crashes
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: []string{cfg.CORSOrigin},
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "PATCH"},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization},
	}))

	router.Register(e, cfg, rdb,
		handler.NewAuthHandler(cfg, users),
		handler.NewUserHandler(cfg, users),
		access)

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}
