package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

// Middleware verifies access tokens on incoming requests and stores the
// decoded claims in the request context.
type Middleware struct {
	parser  TokenParser
	extract TokenExtractor
	skip    MiddlewareSkipper
	onError MiddlewareErrorHandler
}

type MiddlewareSkipper func(*http.Request) bool

// MiddlewareErrorHandler writes the response for a rejected request.
type MiddlewareErrorHandler func(http.ResponseWriter, *http.Request, error)

// MiddlewareOption customises a Middleware. Nil values leave the default in
// place.
type MiddlewareOption func(*Middleware)

func WithTokenExtractor(extractor TokenExtractor) MiddlewareOption {
	return func(m *Middleware) {
		if extractor != nil {
			m.extract = extractor
		}
	}
}

func WithSkipper(skipper MiddlewareSkipper) MiddlewareOption {
	return func(m *Middleware) {
		if skipper != nil {
			m.skip = skipper
		}
	}
}

func WithErrorHandler(handler MiddlewareErrorHandler) MiddlewareOption {
	return func(m *Middleware) {
		if handler != nil {
			m.onError = handler
		}
	}
}

// PathSkipper lets requests whose path starts with any prefix through
// unauthenticated.
func PathSkipper(prefixes ...string) MiddlewareSkipper {
	return func(r *http.Request) bool {
		for _, p := range prefixes {
			if p != "" && strings.HasPrefix(r.URL.Path, p) {
				return true
			}
		}
		return false
	}
}

var errNilParser = errors.New("auth: middleware requires a token parser")

func NewMiddleware(parser TokenParser, opts ...MiddlewareOption) (*Middleware, error) {
	if parser == nil {
		return nil, errNilParser
	}
	m := &Middleware{
		parser:  parser,
		extract: BearerTokenExtractor(),
		skip:    func(*http.Request) bool { return false },
		onError: writeAuthError,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m, nil
}

func (m *Middleware) Handler(next http.Handler) http.Handler {
	if m == nil {
		panic("auth: middleware is nil")
	}
	if next == nil {
		next = http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.skip(r) {
			next.ServeHTTP(w, r)
			return
		}
		token, err := m.authenticate(r)
		if err != nil {
			m.onError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithToken(r.Context(), token)))
	})
}

func (m *Middleware) authenticate(r *http.Request) (ParsedToken, error) {
	raw, err := m.extract(r)
	if err != nil {
		return ParsedToken{}, err
	}
	return m.parser.ParseToken(r.Context(), raw)
}

// writeAuthError answers in GoTrue's error body shape.
func writeAuthError(w http.ResponseWriter, _ *http.Request, err error) {
	code := http.StatusUnauthorized
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		code = http.StatusGatewayTimeout
	case errors.Is(err, ErrSecretNotConfigured):
		code = http.StatusInternalServerError
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]any{"code": code, "msg": err.Error()})
}

type tokenContextKey struct{}

// ContextWithToken attaches decoded claims to ctx.
func ContextWithToken(ctx context.Context, token ParsedToken) context.Context {
	return context.WithValue(ctx, tokenContextKey{}, token)
}

func TokenFromContext(ctx context.Context) (ParsedToken, bool) {
	if ctx == nil {
		return ParsedToken{}, false
	}
	token, ok := ctx.Value(tokenContextKey{}).(ParsedToken)
	return token, ok
}
