package loggingmw

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Skotchmaster/bigbrew_pos/pkg/logging"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, h echo.HandlerFunc, rid string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	e := echo.New()
	e.Use(RequestLogger(logging.NewWithWriter(&buf, "debug")))
	e.GET("/thing", h)

	req := httptest.NewRequest(http.MethodGet, "/thing", nil)
	if rid != "" {
		req.Header.Set(echo.HeaderXRequestID, rid)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	return rec, line
}

func TestRequestLoggerKeepsRequestID(t *testing.T) {
	var inner string
	rec, line := run(t, func(c echo.Context) error {
		if logging.FromContext(c.Request().Context()) != nil {
			inner = c.Response().Header().Get(echo.HeaderXRequestID)
		}
		return c.NoContent(http.StatusNoContent)
	}, "rid-1")

	assert.Equal(t, "rid-1", inner)

	assert.Equal(t, "rid-1", rec.Header().Get(echo.HeaderXRequestID))
	assert.Equal(t, "request_done", line["msg"])
	assert.Equal(t, "INFO", line["level"])
	assert.Equal(t, "rid-1", line["request_id"])
	assert.Equal(t, "/thing", line["path"])
	assert.EqualValues(t, 204, line["status"])
}

func TestRequestLoggerGeneratesIDAndLogsErrors(t *testing.T) {
	rec, line := run(t, func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusNotFound, "nope")
	}, "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
	assert.Equal(t, "ERROR", line["level"])
	assert.Contains(t, line["error"], "nope")
}
