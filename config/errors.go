package config

import (
	"errors"
	"fmt"
)

var (
	ErrMissingURL       = errors.New("config: gotrue url not found")
	ErrInvalidURL       = errors.New("config: invalid gotrue url")
	ErrMalformedHeaders = errors.New("config: malformed headers")
)

// MalformedHeadersError reports the offending pair of a headers encoding.
type MalformedHeadersError struct {
	Input string
	Pair  string
}

func (e *MalformedHeadersError) Error() string {
	return fmt.Sprintf("config: malformed headers %q: invalid pair %q", e.Input, e.Pair)
}

func (e *MalformedHeadersError) Unwrap() error { return ErrMalformedHeaders }

// InvalidURLError is returned when a base URL source is present but is not an
// absolute URL.
type InvalidURLError struct {
	URL    string
	Reason string
}

func (e *InvalidURLError) Error() string {
	return fmt.Sprintf("config: invalid gotrue url %q: %s", e.URL, e.Reason)
}

func (e *InvalidURLError) Unwrap() error { return ErrInvalidURL }
