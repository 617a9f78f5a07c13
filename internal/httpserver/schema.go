package httpserver

import (
	"net/http"

	"github.com/Skotchmaster/bigbrew_pos/internal/schema"
	"github.com/labstack/echo/v4"
)

// SchemaHTTP exposes the descriptor resolved at startup so terminals and
// operators can see which columns the core writes to.
type SchemaHTTP struct {
	Caps *schema.Capabilities
}

func (h *SchemaHTTP) Get(c echo.Context) error {
	if c.QueryParam("format") != "yaml" {
		return c.JSON(http.StatusOK, h.Caps)
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/yaml")
	c.Response().WriteHeader(http.StatusOK)
	return h.Caps.WriteYAML(c.Response())
}
