package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestDeprecated(t *testing.T) {
	e := echo.New()
	e.POST("/meetings/:id/join", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, Deprecated("/ws", nil))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/meetings/1/join", nil))

	if got := rec.Header().Get("Deprecation"); got != "true" {
		t.Errorf("Deprecation = %q, want true", got)
	}
	if got := rec.Header().Get("Link"); got != `</ws>; rel="successor-version"` {
		t.Errorf("Link = %q", got)
	}
}
