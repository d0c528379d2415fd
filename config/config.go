// Package config resolves the settings a GoTrue client needs: the service base
// URL, default request headers, and the secret used to verify access tokens.
//
// Every field is looked up independently, and the first non-empty source wins:
//
//  1. the explicit value in Options,
//  2. a process property (see SetProperty),
//  3. an environment variable.
//
// Only the URL is mandatory. Missing headers resolve to an empty map and a
// missing secret stays nil until token verification asks for it.
package config

import (
	"net/url"
	"os"
	"strings"
)

const (
	PropertyURL     = "gotrue.url"
	PropertyHeaders = "gotrue.headers"
	PropertySecret  = "gotrue.jwt.secret"

	EnvURL     = "GOTRUE_URL"
	EnvHeaders = "GOTRUE_HEADERS"
	EnvSecret  = "GOTRUE_JWT_SECRET"
)

// Configuration is the resolved client configuration.
type Configuration struct {
	BaseURL       *url.URL
	Headers       map[string]string
	SigningSecret []byte
}

// Clone returns a deep copy.
func (c Configuration) Clone() Configuration {
	out := Configuration{
		Headers:       make(map[string]string, len(c.Headers)),
		SigningSecret: append([]byte(nil), c.SigningSecret...),
	}
	if len(c.SigningSecret) == 0 {
		out.SigningSecret = nil
	}
	if c.BaseURL != nil {
		u := *c.BaseURL
		out.BaseURL = &u
	}
	for k, v := range c.Headers {
		out.Headers[k] = v
	}
	return out
}

func (c Configuration) HasSigningSecret() bool { return len(c.SigningSecret) > 0 }

// Options carries the explicit, highest precedence values. Zero values mean
// "not provided".
type Options struct {
	URL           string
	Headers       map[string]string
	SigningSecret []byte
}

// Resolver looks up configuration values across the three source layers.
type Resolver struct {
	props     *Properties
	lookupEnv func(string) (string, bool)
}

type ResolverOption func(*Resolver)

// WithProperties swaps the property registry, mostly for tests.
func WithProperties(p *Properties) ResolverOption {
	return func(r *Resolver) {
		if p != nil {
			r.props = p
		}
	}
}

// WithLookupEnv swaps the environment lookup function.
func WithLookupEnv(fn func(string) (string, bool)) ResolverOption {
	return func(r *Resolver) {
		if fn != nil {
			r.lookupEnv = fn
		}
	}
}

func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{props: defaultProperties, lookupEnv: os.LookupEnv}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

var defaultResolver = NewResolver()

// Resolve runs the default resolver against the process properties and
// environment.
func Resolve(opts Options) (Configuration, error) {
	return defaultResolver.Resolve(opts)
}

// Resolve builds a Configuration. It fails with ErrMissingURL when no source
// yields a URL, with an InvalidURLError when the URL is not absolute, and with
// a MalformedHeadersError when the winning headers encoding is bad.
func (r *Resolver) Resolve(opts Options) (Configuration, error) {
	raw := strings.TrimSpace(r.lookup(opts.URL, PropertyURL, EnvURL))
	if raw == "" {
		return Configuration{}, ErrMissingURL
	}
	baseURL, err := parseBaseURL(raw)
	if err != nil {
		return Configuration{}, err
	}

	headers, err := r.resolveHeaders(opts.Headers)
	if err != nil {
		return Configuration{}, err
	}

	return Configuration{
		BaseURL:       baseURL,
		Headers:       headers,
		SigningSecret: r.ResolveSecret(opts.SigningSecret),
	}, nil
}

// ResolveSecret resolves only the signing secret. It returns nil when no
// layer provides one.
func (r *Resolver) ResolveSecret(explicit []byte) []byte {
	if len(explicit) > 0 {
		return append([]byte(nil), explicit...)
	}
	secret := r.lookup("", PropertySecret, EnvSecret)
	if secret == "" {
		return nil
	}
	return []byte(secret)
}

func (r *Resolver) resolveHeaders(explicit map[string]string) (map[string]string, error) {
	if len(explicit) > 0 {
		out := make(map[string]string, len(explicit))
		for k, v := range explicit {
			out[k] = v
		}
		return out, nil
	}
	return ParseHeaders(r.lookup("", PropertyHeaders, EnvHeaders))
}

func (r *Resolver) lookup(explicit, property, env string) string {
	if !isBlank(explicit) {
		return explicit
	}
	if v, ok := r.props.Lookup(property); ok && !isBlank(v) {
		return v
	}
	if v, ok := r.lookupEnv(env); ok && !isBlank(v) {
		return v
	}
	return ""
}

func parseBaseURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, &InvalidURLError{URL: raw, Reason: err.Error()}
	}
	if !u.IsAbs() || u.Host == "" {
		return nil, &InvalidURLError{URL: raw, Reason: "must be absolute"}
	}
	return u, nil
}

func isBlank(s string) bool { return strings.TrimSpace(s) == "" }
