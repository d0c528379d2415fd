package httpx

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

// renderError writes handler errors as JSON. Echo HTTP errors keep their
// code; anything else becomes a 500 without leaking the error text.
func renderError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code, body := errorResponse(err)
	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	_ = c.JSON(code, body)
}

func errorResponse(err error) (int, any) {
	var he *echo.HTTPError
	if !errors.As(err, &he) {
		return StatusInternalError, errorBody(http.StatusText(StatusInternalError))
	}
	switch msg := he.Message.(type) {
	case string:
		return he.Code, errorBody(msg)
	case error:
		return he.Code, errorBody(msg.Error())
	case nil:
		return he.Code, errorBody(http.StatusText(he.Code))
	default:
		return he.Code, msg
	}
}

func errorBody(msg string) map[string]string { return map[string]string{"error": msg} }
