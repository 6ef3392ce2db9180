// Package middleware holds Echo middleware shared by the API routes.
package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

// APIToken requires "Authorization: Bearer <token>" on every request whose
// path does not start with one of the public prefixes.
func APIToken(token string, public ...string) echo.MiddlewareFunc {
	want := []byte(token)
	return echomw.KeyAuthWithConfig(echomw.KeyAuthConfig{
		Skipper: func(c echo.Context) bool {
			path := c.Request().URL.Path
			for _, p := range public {
				if strings.HasPrefix(path, p) {
					return true
				}
			}
			return false
		},
		KeyLookup:  "header:" + echo.HeaderAuthorization,
		AuthScheme: "Bearer",
		Validator: func(key string, c echo.Context) (bool, error) {
			return subtle.ConstantTimeCompare([]byte(key), want) == 1, nil
		},
		ErrorHandler: func(err error, c echo.Context) error {
			return echo.NewHTTPError(http.StatusUnauthorized, "Missing or invalid API token")
		},
	})
}
