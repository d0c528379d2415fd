package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeParser struct {
	raw   string
	token ParsedToken
	err   error
}

func (p *fakeParser) ParseToken(_ context.Context, raw string) (ParsedToken, error) {
	p.raw = raw
	if p.err != nil {
		return ParsedToken{}, p.err
	}
	return p.token, nil
}

func serve(t *testing.T, mw *Middleware, req *http.Request) (*httptest.ResponseRecorder, *ParsedToken) {
	t.Helper()
	res := httptest.NewRecorder()
	var captured *ParsedToken
	mw.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token, ok := TokenFromContext(r.Context()); ok {
			captured = &token
		}
		w.WriteHeader(http.StatusNoContent)
	})).ServeHTTP(res, req)
	return res, captured
}

func TestNewMiddlewareRequiresParser(t *testing.T) {
	_, err := NewMiddleware(nil)
	require.Error(t, err)
}

func TestMiddlewareInjectsToken(t *testing.T) {
	parser := &fakeParser{token: ParsedToken{Subject: "user-456", Role: "admin"}}
	mw, err := NewMiddleware(parser)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer source-token")
	res, token := serve(t, mw, req)

	require.Equal(t, http.StatusNoContent, res.Code)
	require.Equal(t, "source-token", parser.raw)
	require.NotNil(t, token)
	require.Equal(t, "user-456", token.Subject)
	require.Equal(t, "admin", token.Role)
}

func TestMiddlewareRejects(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		parserErr  error
		wantStatus int
	}{
		{name: "missing header", wantStatus: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic abc", wantStatus: http.StatusUnauthorized},
		{name: "empty bearer", header: "Bearer   ", wantStatus: http.StatusUnauthorized},
		{name: "expired", header: "Bearer t", parserErr: ErrTokenExpired, wantStatus: http.StatusUnauthorized},
		{name: "forged", header: "Bearer t", parserErr: ErrSignatureInvalid, wantStatus: http.StatusUnauthorized},
		{name: "no secret", header: "Bearer t", parserErr: ErrSecretNotConfigured, wantStatus: http.StatusInternalServerError},
		{name: "deadline", header: "Bearer t", parserErr: context.DeadlineExceeded, wantStatus: http.StatusGatewayTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mw, err := NewMiddleware(&fakeParser{err: tt.parserErr})
			require.NoError(t, err)

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			res, token := serve(t, mw, req)
			require.Equal(t, tt.wantStatus, res.Code)
			require.Nil(t, token)
			require.Contains(t, res.Body.String(), `"code":`)
		})
	}
}

func TestMiddlewareOptions(t *testing.T) {
	t.Run("skipper", func(t *testing.T) {
		mw, err := NewMiddleware(&fakeParser{err: errors.New("never")}, WithSkipper(PathSkipper("", "/public")))
		require.NoError(t, err)

		res, _ := serve(t, mw, httptest.NewRequest(http.MethodGet, "/public/health", nil))
		require.Equal(t, http.StatusNoContent, res.Code)

		res, _ = serve(t, mw, httptest.NewRequest(http.MethodGet, "/private", nil))
		require.Equal(t, http.StatusUnauthorized, res.Code)
	})

	t.Run("custom error handler", func(t *testing.T) {
		var got error
		mw, err := NewMiddleware(&fakeParser{}, WithErrorHandler(func(w http.ResponseWriter, _ *http.Request, err error) {
			got = err
			w.WriteHeader(http.StatusTeapot)
		}))
		require.NoError(t, err)

		res, _ := serve(t, mw, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusTeapot, res.Code)
		require.ErrorIs(t, got, ErrTokenNotFound)
	})

	t.Run("cookie then bearer", func(t *testing.T) {
		parser := &fakeParser{token: ParsedToken{Subject: "u"}}
		mw, err := NewMiddleware(parser, WithTokenExtractor(ChainExtractors(CookieTokenExtractor("sb-access-token"), BearerTokenExtractor())))
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "sb-access-token", Value: "cookie-token"})
		res, _ := serve(t, mw, req)
		require.Equal(t, http.StatusNoContent, res.Code)
		require.Equal(t, "cookie-token", parser.raw)

		req = httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "bearer header-token")
		serve(t, mw, req)
		require.Equal(t, "header-token", parser.raw)
	})

	t.Run("nil options keep defaults", func(t *testing.T) {
		mw, err := NewMiddleware(&fakeParser{}, nil, WithSkipper(nil), WithTokenExtractor(nil), WithErrorHandler(nil))
		require.NoError(t, err)
		res, _ := serve(t, mw, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusUnauthorized, res.Code)
	})
}

func TestSecretParserWithMiddleware(t *testing.T) {
	mw, err := NewMiddleware(NewSecretParser(nil, testSecret))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, testSecret, time.Now().Add(time.Hour), nil))
	res, token := serve(t, mw, req)
	require.Equal(t, http.StatusNoContent, res.Code)
	require.Equal(t, "email@example.com", token.Email)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+expiredFixture)
	res, _ = serve(t, mw, req)
	require.Equal(t, http.StatusUnauthorized, res.Code)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewSecretParser(nil, testSecret).ParseToken(ctx, expiredFixture)
	require.ErrorIs(t, err, context.Canceled)
}

func TestTokenFromContext(t *testing.T) {
	_, ok := TokenFromContext(nil)
	require.False(t, ok)

	_, ok = TokenFromContext(context.Background())
	require.False(t, ok)

	token, ok := TokenFromContext(ContextWithToken(context.Background(), ParsedToken{Subject: "s"}))
	require.True(t, ok)
	require.Equal(t, "s", token.Subject)
}

func TestMiddlewareNilNextAndNilReceiver(t *testing.T) {
	mw, err := NewMiddleware(&fakeParser{})
	require.NoError(t, err)
	require.NotPanics(t, func() {
		mw.Handler(nil).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})

	var nilMW *Middleware
	require.Panics(t, func() { nilMW.Handler(nil) })
}
