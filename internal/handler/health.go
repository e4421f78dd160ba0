package handler // declare the package name; contains HTTP handlers

import (
    "net/http" // net/http provides status codes and response helpers
    "time"

    "github.com/labstack/echo/v4" // echo is the web framework used for this project

    "github.com/iliyamo/jwt-auth-api/internal/utils"
)

// Health is a simple health‑check endpoint used by load balancers and
// monitoring systems to verify that the service is running.  It returns
// the standard envelope with a timestamp.
func Health(c echo.Context) error {
    return utils.Success(c, http.StatusOK, "API is running",
        echo.Map{"timestamp": time.Now().UTC().Format(time.RFC3339)})
}
