package httpx

import (
	"net/http"
	"time"

	"github.com/adeilh/gotrue-go/auth"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
)

// AuthMiddleware bridges an auth.Middleware into the echo chain. The handler's
// error is returned to echo so the server error handler still renders it.
func AuthMiddleware(mw *auth.Middleware) MiddlewareFunc {
	if mw == nil {
		return func(next HandlerFunc) HandlerFunc {
			return func(c Context) error {
				return HTTPError(StatusUnauthorized, "auth middleware missing")
			}
		}
	}
	return func(next HandlerFunc) HandlerFunc {
		return func(c Context) error {
			var nextErr error
			downstream := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				c.SetRequest(r)
				nextErr = next(c)
			})
			mw.Handler(downstream).ServeHTTP(c.Response(), c.Request())
			return nextErr
		}
	}
}

// TokenFromContext returns the claims AuthMiddleware stored on the request.
func TokenFromContext(c Context) (auth.ParsedToken, bool) {
	if c == nil || c.Request() == nil {
		return auth.ParsedToken{}, false
	}
	return auth.TokenFromContext(c.Request().Context())
}

// RequestLogger logs one zerolog line per request.
func RequestLogger(l zerolog.Logger) MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURIPath:  true,
		LogStatus:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(_ Context, v middleware.RequestLoggerValues) error {
			ev := l.Info()
			if v.Error != nil {
				ev = l.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("path", v.URIPath).
				Int("status", v.Status).
				Dur("latency", v.Latency.Round(time.Microsecond)).
				Msg("request")
			return nil
		},
	})
}
