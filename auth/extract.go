package auth

import (
	"errors"
	"net/http"
	"strings"
)

var (
	ErrTokenNotFound     = errors.New("auth: token not found")
	ErrTokenInvalidInput = errors.New("auth: invalid token source")
)

// TokenExtractor pulls the raw access token out of a request. It returns
// ErrTokenNotFound when the source is absent and ErrTokenInvalidInput when it
// is present but unusable.
type TokenExtractor func(*http.Request) (string, error)

// BearerTokenExtractor reads "Authorization: Bearer <token>". The scheme is
// matched case-insensitively.
func BearerTokenExtractor() TokenExtractor {
	return HeaderTokenExtractor("Authorization", "Bearer")
}

// HeaderTokenExtractor reads the token from header. With a non-empty scheme
// the value must be "<scheme> <token>"; otherwise the whole value is the token.
func HeaderTokenExtractor(header, scheme string) TokenExtractor {
	header = http.CanonicalHeaderKey(strings.TrimSpace(header))
	scheme = strings.TrimSpace(scheme)
	return func(r *http.Request) (string, error) {
		value := r.Header.Get(header)
		if header == "" || value == "" {
			return "", ErrTokenNotFound
		}
		if scheme != "" {
			prefix, rest, ok := strings.Cut(value, " ")
			if !ok || !strings.EqualFold(prefix, scheme) {
				return "", ErrTokenInvalidInput
			}
			value = rest
		}
		return nonBlank(value)
	}
}

// CookieTokenExtractor reads the token from the named cookie.
func CookieTokenExtractor(name string) TokenExtractor {
	name = strings.TrimSpace(name)
	return func(r *http.Request) (string, error) {
		if name == "" {
			return "", ErrTokenInvalidInput
		}
		cookie, err := r.Cookie(name)
		switch {
		case errors.Is(err, http.ErrNoCookie):
			return "", ErrTokenNotFound
		case err != nil:
			return "", err
		}
		return nonBlank(cookie.Value)
	}
}

// QueryTokenExtractor reads the token from a URL query parameter, as GoTrue
// redirect links carry access_token.
func QueryTokenExtractor(param string) TokenExtractor {
	return func(r *http.Request) (string, error) {
		if r.URL == nil || !r.URL.Query().Has(param) {
			return "", ErrTokenNotFound
		}
		return nonBlank(r.URL.Query().Get(param))
	}
}

// ChainExtractors tries each extractor in order and returns the first token
// found. When all fail, the last error is returned.
func ChainExtractors(extractors ...TokenExtractor) TokenExtractor {
	chain := make([]TokenExtractor, 0, len(extractors))
	for _, e := range extractors {
		if e != nil {
			chain = append(chain, e)
		}
	}
	return func(r *http.Request) (token string, err error) {
		err = ErrTokenNotFound
		for _, e := range chain {
			if token, err = e(r); err == nil {
				return token, nil
			}
		}
		return "", err
	}
}

func nonBlank(v string) (string, error) {
	if v = strings.TrimSpace(v); v == "" {
		return "", ErrTokenInvalidInput
	}
	return v, nil
}
