package routes

import (
	"net/http"
	"sync"

	"github.com/invopop/jsonschema"
	"github.com/labstack/echo/v4"
)

var assembleSchema = sync.OnceValue(func() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	return reflector.Reflect(&AssembleBody{})
})

// SchemaHandler returns the JSON schema of the assemble request body.
func SchemaHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, assembleSchema())
}
