package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHeaderTokenExtractor(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		scheme  string
		value   string
		want    string
		wantErr error
	}{
		{name: "bearer", header: "Authorization", scheme: "Bearer", value: "Bearer abc", want: "abc"},
		{name: "lowercase scheme", header: "Authorization", scheme: "Bearer", value: "bearer  abc ", want: "abc"},
		{name: "no scheme", header: "apikey", value: " key-1 ", want: "key-1"},
		{name: "missing", header: "Authorization", scheme: "Bearer", wantErr: ErrTokenNotFound},
		{name: "scheme only", header: "Authorization", scheme: "Bearer", value: "Bearer", wantErr: ErrTokenInvalidInput},
		{name: "other scheme", header: "Authorization", scheme: "Bearer", value: "Basic abc", wantErr: ErrTokenInvalidInput},
		{name: "blank header name", value: "x", wantErr: ErrTokenNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.value != "" && tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			got, err := HeaderTokenExtractor(tt.header, tt.scheme)(req)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestQueryTokenExtractor(t *testing.T) {
	extract := QueryTokenExtractor("access_token")

	got, err := extract(httptest.NewRequest(http.MethodGet, "/callback?access_token=tok&type=recovery", nil))
	require.NoError(t, err)
	require.Equal(t, "tok", got)

	_, err = extract(httptest.NewRequest(http.MethodGet, "/callback", nil))
	require.ErrorIs(t, err, ErrTokenNotFound)

	_, err = extract(httptest.NewRequest(http.MethodGet, "/callback?access_token=", nil))
	require.ErrorIs(t, err, ErrTokenInvalidInput)
}

func TestChainExtractorsReportsLastError(t *testing.T) {
	_, err := ChainExtractors()(httptest.NewRequest(http.MethodGet, "/", nil))
	require.ErrorIs(t, err, ErrTokenNotFound)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Basic abc")
	_, err = ChainExtractors(nil, CookieTokenExtractor("sb"), BearerTokenExtractor())(req)
	require.ErrorIs(t, err, ErrTokenInvalidInput)

	_, err = CookieTokenExtractor(" ")(req)
	require.ErrorIs(t, err, ErrTokenInvalidInput)
}
