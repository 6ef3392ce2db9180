package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func newTokenEcho() *echo.Echo {
	e := echo.New()
	e.Use(APIToken("s3cret", "/health", "/swagger"))
	ok := func(c echo.Context) error { return c.String(http.StatusOK, "ok") }
	e.GET("/health", ok)
	e.GET("/v1/runs", ok)
	return e
}

func TestAPIToken(t *testing.T) {
	e := newTokenEcho()

	tests := []struct {
		name   string
		path   string
		header string
		want   int
	}{
		{"public path", "/health", "", http.StatusOK},
		{"missing token", "/v1/runs", "", http.StatusUnauthorized},
		{"wrong token", "/v1/runs", "Bearer nope", http.StatusUnauthorized},
		{"wrong scheme", "/v1/runs", "Basic s3cret", http.StatusUnauthorized},
		{"valid token", "/v1/runs", "Bearer s3cret", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set(echo.HeaderAuthorization, tt.header)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
