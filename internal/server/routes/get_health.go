package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// HealthHandler reports that the server is up.
func HealthHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
