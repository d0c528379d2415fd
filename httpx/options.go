package httpx

import (
	"maps"
	"time"

	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
)

const (
	defaultAddress       = ":8080"
	defaultServerTimeout = 15 * time.Second
	defaultClientTimeout = 10 * time.Second
)

type serverConfig struct {
	address     string
	middlewares []MiddlewareFunc
	validators  []Validator
	cors        *middleware.CORSConfig
	log         zerolog.Logger
}

// ServerOption configures NewServer.
type ServerOption func(*serverConfig)

// WithAddress sets the listen address. Port 0 picks a free port; see
// Server.Addr.
func WithAddress(addr string) ServerOption {
	return func(c *serverConfig) {
		if addr != "" {
			c.address = addr
		}
	}
}

// AppendMiddlewares adds mw after panic recovery, in order.
func AppendMiddlewares(mw ...MiddlewareFunc) ServerOption {
	return func(c *serverConfig) { c.middlewares = append(c.middlewares, mw...) }
}

// WithValidators installs checks that run before every route handler.
func WithValidators(v ...Validator) ServerOption {
	return func(c *serverConfig) { c.validators = append(c.validators, v...) }
}

// WithCORS enables CORS; a nil cfg uses echo's defaults.
func WithCORS(cfg *middleware.CORSConfig) ServerOption {
	return func(c *serverConfig) {
		if cfg == nil {
			cfg = &DefaultCORSConfig
		}
		c.cors = cfg
	}
}

// WithServerLogger sets the logger for lifecycle events. Per-request
// logging is opt-in through RequestLogger.
func WithServerLogger(l zerolog.Logger) ServerOption {
	return func(c *serverConfig) { c.log = l }
}

type clientConfig struct {
	baseURL string
	timeout time.Duration
	headers map[string]string
	log     *zerolog.Logger
	hook    func(RestClient)
}

// ClientOption configures NewClient.
type ClientOption func(*clientConfig)

func WithBaseURL(url string) ClientOption {
	return func(c *clientConfig) {
		if url != "" {
			c.baseURL = url
		}
	}
}

func WithClientTimeout(d time.Duration) ClientOption {
	return func(c *clientConfig) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithHeaders adds default headers on top of the JSON content type. Later
// calls override earlier keys.
func WithHeaders(headers map[string]string) ClientOption {
	return func(c *clientConfig) { maps.Copy(c.headers, headers) }
}

// WithLogger sends resty's diagnostics to l.
func WithLogger(l zerolog.Logger) ClientOption {
	return func(c *clientConfig) { c.log = &l }
}

// WithRestyConfig runs fn against the underlying client after the other
// options are applied.
func WithRestyConfig(fn func(RestClient)) ClientOption {
	return func(c *clientConfig) { c.hook = fn }
}

func newClientConfig(opts []ClientOption) clientConfig {
	cfg := clientConfig{
		timeout: defaultClientTimeout,
		headers: map[string]string{"Content-Type": "application/json"},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}
