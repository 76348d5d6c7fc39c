package server

import (
	"github.com/OFFIS-RIT/biograph/internal/server/routes"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo) {
	e.GET("/health", routes.HealthHandler)
	e.GET("/schema", routes.SchemaHandler)
	e.POST("/assemble", routes.AssembleHandler)
}
