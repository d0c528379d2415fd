package httpx

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Aliases keep callers within httpx imports.
type (
	Context        = echo.Context
	HandlerFunc    = echo.HandlerFunc
	MiddlewareFunc = echo.MiddlewareFunc
)

// Echo wraps the echo instance a Server routes through. Route helpers such as
// GET and POST are promoted from echo.
type Echo struct{ *echo.Echo }

// NewEcho returns a quiet echo instance.
func NewEcho() *Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	return &Echo{e}
}

func RecoverMiddleware() MiddlewareFunc { return middleware.Recover() }

// BodyLimitMiddleware rejects request bodies larger than limit, e.g. "1M".
func BodyLimitMiddleware(limit string) MiddlewareFunc { return middleware.BodyLimit(limit) }

// CORSMiddleware builds a CORS middleware from cfg; nil uses echo's defaults.
func CORSMiddleware(cfg *middleware.CORSConfig) MiddlewareFunc {
	if cfg == nil {
		return middleware.CORSWithConfig(middleware.DefaultCORSConfig)
	}
	return middleware.CORSWithConfig(*cfg)
}

// DefaultCORSConfig mirrors echo's default CORS configuration.
var DefaultCORSConfig = middleware.DefaultCORSConfig

// HTTPError constructs an echo HTTP error. A string message renders as
// {"error": message}; any other value is written as the body.
func HTTPError(code int, message any) error { return echo.NewHTTPError(code, message) }

// APIError renders the {"code": n, "msg": "..."} body GoTrue uses for errors.
func APIError(code int, msg string) error {
	return echo.NewHTTPError(code, map[string]any{"code": code, "msg": msg})
}
