package middleware

import (
	"github.com/OFFIS-RIT/biograph/internal/config"

	"github.com/labstack/echo/v4"
)

// App holds process-wide state shared by all handlers.
type App struct {
	Config config.Config
}

// AppContext gives handlers access to the App.
type AppContext struct {
	echo.Context
	App *App
}

// AppContextMiddleware wraps every request context in an AppContext.
func AppContextMiddleware(app *App) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			return next(&AppContext{Context: c, App: app})
		}
	}
}
