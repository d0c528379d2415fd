package gotrue

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/adeilh/gotrue-go/auth"
	"github.com/adeilh/gotrue-go/config"
	"github.com/adeilh/gotrue-go/httpx"
)

type options struct {
	explicit  config.Options
	resolver  *config.Resolver
	logger    zerolog.Logger
	timeout   time.Duration
	sessions  auth.SessionStore
	verifier  *auth.Verifier
	restyHook func(httpx.RestClient)
}

type Option func(*options)

func defaultOptions() options {
	return options{
		logger:  zerolog.Nop(),
		timeout: 10 * time.Second,
	}
}

// WithURL sets the service base URL, overriding properties and environment.
func WithURL(url string) Option {
	return func(o *options) { o.explicit.URL = url }
}

// WithHeaders sets the default request headers. A nil or empty map falls
// through to the property and environment sources.
func WithHeaders(headers map[string]string) Option {
	return func(o *options) {
		if len(headers) == 0 {
			o.explicit.Headers = nil
			return
		}
		o.explicit.Headers = make(map[string]string, len(headers))
		for k, v := range headers {
			o.explicit.Headers[k] = v
		}
	}
}

func WithSigningSecret(secret []byte) Option {
	return func(o *options) { o.explicit.SigningSecret = append([]byte(nil), secret...) }
}

// WithResolver swaps the configuration resolver, mostly to isolate tests
// from process properties and environment.
func WithResolver(r *config.Resolver) Option {
	return func(o *options) {
		if r != nil {
			o.resolver = r
		}
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = l }
}

func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

func WithSessionStore(s auth.SessionStore) Option {
	return func(o *options) {
		if s != nil {
			o.sessions = s
		}
	}
}

func WithVerifier(v *auth.Verifier) Option {
	return func(o *options) {
		if v != nil {
			o.verifier = v
		}
	}
}

// WithHTTPClient exposes the underlying REST client for transport tweaks
// such as a custom RoundTripper.
func WithHTTPClient(fn func(httpx.RestClient)) Option {
	return func(o *options) { o.restyHook = fn }
}
