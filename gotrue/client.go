// Package gotrue is a client for GoTrue-compatible identity services. A
// Client signs users up and in, keeps the resulting session in memory, and
// verifies access tokens locally with the shared HS256 secret.
package gotrue

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/adeilh/gotrue-go/auth"
	"github.com/adeilh/gotrue-go/config"
	"github.com/adeilh/gotrue-go/httpx"
)

// Client talks to one identity service. It is safe for concurrent use; the
// current session is shared by all callers of the same Client.
type Client struct {
	cfg            config.Configuration
	resolver       *config.Resolver
	explicitSecret []byte
	http           *httpx.Client
	sessions       auth.SessionStore
	verifier       *auth.Verifier
	log            zerolog.Logger
}

// New resolves the configuration once and builds a Client. It fails with
// config.ErrMissingURL, config.ErrInvalidURL or config.ErrMalformedHeaders.
func New(opts ...Option) (*Client, error) {
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.resolver == nil {
		o.resolver = config.NewResolver()
	}
	if o.sessions == nil {
		o.sessions = auth.NewMemorySessionStore()
	}
	if o.verifier == nil {
		o.verifier = auth.NewVerifier()
	}

	cfg, err := o.resolver.Resolve(o.explicit)
	if err != nil {
		return nil, err
	}

	hc := httpx.NewClient(
		httpx.WithBaseURL(strings.TrimRight(cfg.BaseURL.String(), "/")),
		httpx.WithHeaders(cfg.Headers),
		httpx.WithClientTimeout(o.timeout),
		httpx.WithLogger(o.logger),
		httpx.WithRestyConfig(o.restyHook),
	)

	return &Client{
		cfg:            cfg,
		resolver:       o.resolver,
		explicitSecret: o.explicit.SigningSecret,
		http:           hc,
		sessions:       o.sessions,
		verifier:       o.verifier,
		log:            o.logger.With().Str("component", "gotrue").Logger(),
	}, nil
}

// Config returns a copy of the resolved configuration.
func (c *Client) Config() config.Configuration { return c.cfg.Clone() }

func (c *Client) SignUp(ctx context.Context, creds auth.Credentials) (auth.Session, error) {
	var session auth.Session
	if err := c.call(ctx, "signup", http.MethodPost, "/signup", creds, &session); err != nil {
		return auth.Session{}, err
	}
	c.sessions.Set(session)
	return session, nil
}

func (c *Client) SignUpWithEmail(ctx context.Context, email, password string) (auth.Session, error) {
	return c.SignUp(ctx, auth.Credentials{Email: email, Password: password})
}

func (c *Client) SignIn(ctx context.Context, creds auth.Credentials) (auth.Session, error) {
	var session auth.Session
	err := c.call(ctx, "signin", http.MethodPost, "/token", creds, &session,
		httpx.WithQuery(map[string]string{"grant_type": "password"}))
	if err != nil {
		return auth.Session{}, err
	}
	c.sessions.Set(session)
	return session, nil
}

func (c *Client) SignInWithEmail(ctx context.Context, email, password string) (auth.Session, error) {
	return c.SignIn(ctx, auth.Credentials{Email: email, Password: password})
}

// Refresh exchanges a refresh token for a new session, which replaces the
// stored one. An empty refreshToken uses the stored session's token; with no
// stored session it returns ErrNoSession.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (auth.Session, error) {
	if refreshToken == "" {
		current, ok := c.sessions.Get()
		if !ok || current.RefreshToken == "" {
			return auth.Session{}, ErrNoSession
		}
		refreshToken = current.RefreshToken
	}

	var session auth.Session
	err := c.call(ctx, "refresh", http.MethodPost, "/token", refreshRequest{RefreshToken: refreshToken}, &session,
		httpx.WithQuery(map[string]string{"grant_type": "refresh_token"}))
	if err != nil {
		return auth.Session{}, err
	}
	c.sessions.Set(session)
	return session, nil
}

// Update changes the attributes of the user owning accessToken, or of the
// stored session's user when accessToken is empty.
//
// When no token can be found Update does nothing and returns nil, nil. This
// differs from Refresh, which reports ErrNoSession.
func (c *Client) Update(ctx context.Context, accessToken string, attrs UserAttributes) (*auth.User, error) {
	token, ok := c.accessToken(accessToken)
	if !ok {
		return nil, nil
	}
	var user auth.User
	if err := c.call(ctx, "update", http.MethodPut, "/user", attrs, &user, httpx.WithBearer(token)); err != nil {
		return nil, err
	}
	return &user, nil
}

// SignOut revokes the session remotely and clears the stored session. The
// local session is cleared even when the remote call fails, in which case
// the remote error is still returned. With no token anywhere it makes no
// remote call.
func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	token, ok := c.accessToken(accessToken)
	defer c.sessions.Clear()
	if !ok {
		return nil
	}
	if err := c.call(ctx, "signout", http.MethodPost, "/logout", nil, nil, httpx.WithBearer(token)); err != nil {
		c.log.Warn().Err(err).Msg("remote sign out failed; local session cleared")
		return err
	}
	return nil
}

func (c *Client) Settings(ctx context.Context) (Settings, error) {
	var settings Settings
	if err := c.call(ctx, "settings", http.MethodGet, "/settings", nil, &settings); err != nil {
		return Settings{}, err
	}
	return settings, nil
}

// GetUser fetches the user owning accessToken. An empty accessToken uses the
// stored session.
func (c *Client) GetUser(ctx context.Context, accessToken string) (auth.User, error) {
	token, ok := c.accessToken(accessToken)
	if !ok {
		return auth.User{}, ErrNoSession
	}
	var user auth.User
	if err := c.call(ctx, "user", http.MethodGet, "/user", nil, &user, httpx.WithBearer(token)); err != nil {
		return auth.User{}, err
	}
	return user, nil
}

// CurrentUser returns the user of the stored session.
func (c *Client) CurrentUser() (auth.User, bool) {
	session, ok := c.sessions.Get()
	if !ok {
		return auth.User{}, false
	}
	return session.User, true
}

func (c *Client) CurrentSession() (auth.Session, bool) { return c.sessions.Get() }

// Recover asks the service to send a password recovery email.
func (c *Client) Recover(ctx context.Context, email string) error {
	return c.call(ctx, "recover", http.MethodPost, "/recover", recoverRequest{Email: email}, nil)
}

// ParseJWT verifies raw locally and returns its claims. The secret is
// resolved on every call, so one configured after New is picked up.
func (c *Client) ParseJWT(raw string) (auth.ParsedToken, error) {
	return c.verifier.Verify(raw, c.signingSecret())
}

// ValidateJWT reports whether raw verifies. Only a missing secret is an error.
func (c *Client) ValidateJWT(raw string) (bool, error) {
	return c.verifier.IsValid(raw, c.signingSecret())
}

// ParseToken lets a Client act as an auth.TokenParser.
func (c *Client) ParseToken(ctx context.Context, raw string) (auth.ParsedToken, error) {
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return auth.ParsedToken{}, err
		}
	}
	return c.ParseJWT(raw)
}

// Middleware builds a bearer token middleware that verifies tokens with this
// client's secret.
func (c *Client) Middleware(opts ...auth.MiddlewareOption) (*auth.Middleware, error) {
	return auth.NewMiddleware(c, opts...)
}

func (c *Client) signingSecret() []byte {
	return c.resolver.ResolveSecret(c.explicitSecret)
}

func (c *Client) accessToken(explicit string) (string, bool) {
	if explicit = strings.TrimSpace(explicit); explicit != "" {
		return explicit, true
	}
	session, ok := c.sessions.Get()
	if !ok || session.AccessToken == "" {
		return "", false
	}
	return session.AccessToken, true
}

func (c *Client) call(ctx context.Context, op, method, path string, body, result any, opts ...httpx.RequestOption) error {
	start := time.Now()
	resp, err := c.http.Do(ctx, method, path, body, result, opts...)
	status := 0
	if resp != nil {
		status = resp.StatusCode()
	}
	if err != nil {
		apiErr := newRemoteError(op, err)
		c.log.Debug().Str("op", op).Int("status", status).Dur("elapsed", time.Since(start)).Err(err).Msg("request failed")
		return apiErr
	}
	c.log.Debug().Str("op", op).Int("status", status).Dur("elapsed", time.Since(start)).Msg("request done")
	return nil
}
