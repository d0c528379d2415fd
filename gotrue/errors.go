package gotrue

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/adeilh/gotrue-go/httpx"
)

// ErrNoSession is returned when an operation needs the stored session and
// the client holds none.
var ErrNoSession = errors.New("gotrue: no current session")

// RemoteAPIError reports a failed call to the identity service. StatusCode is
// zero when the request never produced an HTTP response.
type RemoteAPIError struct {
	Op         string
	StatusCode int
	// Message starts with the HTTP status line, e.g. "404 Not Found", followed
	// by the service's own message when it sent one.
	Message string
	Err     error
}

func (e *RemoteAPIError) Error() string {
	if e.Op == "" {
		return "gotrue: " + e.Message
	}
	return fmt.Sprintf("gotrue: %s: %s", e.Op, e.Message)
}

func (e *RemoteAPIError) Unwrap() error { return e.Err }

// StatusCode extracts the HTTP status from a RemoteAPIError anywhere in err's
// chain. It returns 0 otherwise.
func StatusCode(err error) int {
	var apiErr *RemoteAPIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

func newRemoteError(op string, err error) *RemoteAPIError {
	var se *httpx.StatusError
	if !errors.As(err, &se) {
		return &RemoteAPIError{Op: op, Message: err.Error(), Err: err}
	}
	msg := httpx.StatusLine(se.StatusCode)
	if detail := errorDetail(se.Body); detail != "" {
		msg += ": " + detail
	}
	return &RemoteAPIError{Op: op, StatusCode: se.StatusCode, Message: msg, Err: err}
}

// errorDetail pulls a human readable message out of a GoTrue error body. The
// service has used several field names over time.
func errorDetail(body string) string {
	body = strings.TrimSpace(body)
	if body == "" {
		return ""
	}
	var payload struct {
		Msg              string `json:"msg"`
		Message          string `json:"message"`
		ErrorDescription string `json:"error_description"`
		Error            any    `json:"error"`
	}
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		return body
	}
	for _, s := range []string{payload.Msg, payload.Message, payload.ErrorDescription} {
		if s != "" {
			return s
		}
	}
	if s, ok := payload.Error.(string); ok {
		return s
	}
	return ""
}
