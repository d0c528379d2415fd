// Package gotruefake runs an in-process stand-in for a GoTrue server. It
// speaks the same JSON as the real service for the endpoints the client uses
// and signs access tokens with a shared HS256 secret.
package gotruefake

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/adeilh/gotrue-go/auth"
	"github.com/adeilh/gotrue-go/cache"
	"github.com/adeilh/gotrue-go/cache/memory"
	"github.com/adeilh/gotrue-go/httpx"
)

// DefaultSecret is the signing secret used when Options.Secret is empty.
const DefaultSecret = "superSecretJwtToken"

const (
	refreshPrefix  = "refresh:"
	recoveryPrefix = "recovery:"
	recoveryTTL    = time.Hour
	defaultAud     = "authenticated"
)

// Settings mirrors the body of GET /settings.
type Settings struct {
	External      map[string]bool `json:"external"`
	DisableSignup bool            `json:"disable_signup"`
	Autoconfirm   bool            `json:"autoconfirm"`
}

type Options struct {
	Secret   []byte
	TokenTTL time.Duration
	Settings Settings
	Logger   zerolog.Logger
	Now      func() time.Time
	// BcryptCost defaults to the bcrypt minimum so tests stay fast.
	BcryptCost int
}

type record struct {
	user          auth.User
	hash          []byte
	refreshTokens map[string]struct{}
}

// Service is the fake identity service. It is safe for concurrent use.
type Service struct {
	mu       sync.Mutex
	users    map[string]*record
	byEmail  map[string]string
	tokens   *memory.Store
	hasher   *auth.PasswordHasher
	verifier *auth.Verifier
	secret   []byte
	ttl      time.Duration
	settings Settings
	now      func() time.Time
	log      zerolog.Logger
	server   *httpx.Server
}

func New(opts Options) *Service {
	if len(opts.Secret) == 0 {
		opts.Secret = []byte(DefaultSecret)
	}
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = time.Hour
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = 4
	}
	if opts.Settings.External == nil {
		opts.Settings.External = map[string]bool{"email": true}
		opts.Settings.Autoconfirm = true
	}

	s := &Service{
		users:    make(map[string]*record),
		byEmail:  make(map[string]string),
		tokens:   memory.NewStore(),
		hasher:   auth.NewPasswordHasher(auth.WithBcryptCost(opts.BcryptCost)),
		verifier: auth.NewVerifier(auth.WithNow(opts.Now)),
		secret:   append([]byte(nil), opts.Secret...),
		ttl:      opts.TokenTTL,
		settings: opts.Settings,
		now:      opts.Now,
		log:      opts.Logger,
	}
	s.server = httpx.NewServer(
		httpx.AppendMiddlewares(httpx.BodyLimitMiddleware("64K"), httpx.RequestLogger(opts.Logger)),
	)
	s.server.RegisterRouteTable(s.routes()...)
	return s
}

// Handler exposes the service as an http.Handler.
func (s *Service) Handler() http.Handler { return s.server.Handler() }

// Secret returns a copy of the signing secret.
func (s *Service) Secret() []byte { return append([]byte(nil), s.secret...) }

// Reset drops every user and outstanding token.
func (s *Service) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = make(map[string]*record)
	s.byEmail = make(map[string]string)
	_ = s.tokens.Flush(context.Background())
}

// UserCount reports the number of registered users.
func (s *Service) UserCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

// RecoveryRequested reports whether a recovery token is outstanding for email.
func (s *Service) RecoveryRequested(email string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byEmail[normalizeEmail(email)]
	if !ok {
		return false
	}
	return s.users[id].user.RecoverySentAt != nil
}

func (s *Service) routes() []httpx.Route {
	bearer := []httpx.MiddlewareFunc{s.bearerMiddleware()}
	return []httpx.Route{
		{Method: http.MethodPost, Path: "/signup", Handler: s.signup},
		{Method: http.MethodPost, Path: "/token", Handler: s.token},
		{Method: http.MethodGet, Path: "/user", Handler: s.getUser, Middleware: bearer},
		{Method: http.MethodPut, Path: "/user", Handler: s.updateUser, Middleware: bearer},
		{Method: http.MethodPost, Path: "/logout", Handler: s.logout, Middleware: bearer},
		{Method: http.MethodGet, Path: "/settings", Handler: s.getSettings},
		{Method: http.MethodPost, Path: "/recover", Handler: s.recover},
	}
}

func (s *Service) bearerMiddleware() httpx.MiddlewareFunc {
	mw, err := auth.NewMiddleware(
		auth.NewSecretParser(s.verifier, s.secret),
		auth.WithErrorHandler(func(w http.ResponseWriter, _ *http.Request, err error) {
			writeJSONError(w, http.StatusUnauthorized, "Invalid token: "+err.Error())
		}),
	)
	if err != nil {
		panic(err)
	}
	return httpx.AuthMiddleware(mw)
}

type signupRequest struct {
	Email    string         `json:"email"`
	Password string         `json:"password"`
	Data     map[string]any `json:"data"`
}

func (s *Service) signup(c httpx.Context) error {
	if s.settings.DisableSignup {
		return httpx.APIError(http.StatusForbidden, "Signups not allowed for this instance")
	}
	var req signupRequest
	if err := c.Bind(&req); err != nil {
		return httpx.APIError(http.StatusBadRequest, "Could not read Signup params")
	}
	email := normalizeEmail(req.Email)
	if !auth.ValidateEmail(email) {
		return httpx.APIError(http.StatusUnprocessableEntity, "Unable to validate email address")
	}
	hash, err := s.hasher.Hash(c.Request().Context(), req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooShort) || errors.Is(err, auth.ErrPasswordTooLong) {
			return httpx.APIError(http.StatusUnprocessableEntity, "Password should be between 6 and 72 characters")
		}
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byEmail[email]; exists {
		return httpx.APIError(http.StatusUnprocessableEntity, "A user with this email address has already been registered")
	}

	now := s.now().UTC()
	user := auth.User{
		ID:           uuid.NewString(),
		Aud:          defaultAud,
		Role:         defaultAud,
		Email:        email,
		AppMetadata:  auth.StringMap{"provider": "email"},
		UserMetadata: map[string]any{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	for k, v := range req.Data {
		user.UserMetadata[k] = v
	}
	if s.settings.Autoconfirm {
		user.ConfirmedAt = &now
		user.LastSignInAt = &now
	}
	rec := &record{user: user, hash: hash, refreshTokens: make(map[string]struct{})}
	s.users[user.ID] = rec
	s.byEmail[email] = user.ID
	s.log.Debug().Str("user_id", user.ID).Msg("user signed up")

	session, err := s.issueSessionLocked(c.Request().Context(), rec)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, session)
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (s *Service) token(c httpx.Context) error {
	switch c.QueryParam("grant_type") {
	case "password":
		return s.passwordGrant(c)
	case "refresh_token":
		return s.refreshGrant(c)
	default:
		return httpx.APIError(http.StatusBadRequest, "unsupported_grant_type")
	}
}

func (s *Service) passwordGrant(c httpx.Context) error {
	var creds auth.Credentials
	if err := c.Bind(&creds); err != nil {
		return httpx.APIError(http.StatusBadRequest, "Could not read password grant params")
	}
	ctx := c.Request().Context()

	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byEmail[normalizeEmail(creds.Email)]
	if !ok {
		return httpx.APIError(http.StatusUnauthorized, "Invalid email or password")
	}
	rec := s.users[id]
	if err := s.hasher.Compare(ctx, creds.Password, rec.hash); err != nil {
		return httpx.APIError(http.StatusUnauthorized, "Invalid email or password")
	}
	now := s.now().UTC()
	rec.user.LastSignInAt = &now

	session, err := s.issueSessionLocked(ctx, rec)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, session)
}

func (s *Service) refreshGrant(c httpx.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return httpx.APIError(http.StatusBadRequest, "Invalid Refresh Token")
	}
	ctx := c.Request().Context()

	s.mu.Lock()
	defer s.mu.Unlock()
	key := refreshPrefix + req.RefreshToken
	id, err := s.tokens.Get(ctx, key)
	if err != nil {
		if errors.Is(err, cache.ErrNotFound) {
			return httpx.APIError(http.StatusBadRequest, "Invalid Refresh Token")
		}
		return err
	}
	_ = s.tokens.Delete(ctx, key)

	rec, ok := s.users[string(id)]
	if !ok {
		return httpx.APIError(http.StatusBadRequest, "Invalid Refresh Token")
	}
	delete(rec.refreshTokens, req.RefreshToken)

	session, err := s.issueSessionLocked(ctx, rec)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, session)
}

func (s *Service) getUser(c httpx.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, err := s.currentRecordLocked(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rec.user)
}

type updateRequest struct {
	Email    string         `json:"email"`
	Password string         `json:"password"`
	Data     map[string]any `json:"data"`
}

func (s *Service) updateUser(c httpx.Context) error {
	var req updateRequest
	if err := c.Bind(&req); err != nil {
		return httpx.APIError(http.StatusBadRequest, "Could not read User Update params")
	}
	ctx := c.Request().Context()

	var hash []byte
	if req.Password != "" {
		h, err := s.hasher.Hash(ctx, req.Password)
		if err != nil {
			return httpx.APIError(http.StatusUnprocessableEntity, "Password should be between 6 and 72 characters")
		}
		hash = h
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	rec, err := s.currentRecordLocked(c)
	if err != nil {
		return err
	}

	if email := normalizeEmail(req.Email); email != "" && email != rec.user.Email {
		if !auth.ValidateEmail(email) {
			return httpx.APIError(http.StatusUnprocessableEntity, "Unable to validate email address")
		}
		if _, taken := s.byEmail[email]; taken {
			return httpx.APIError(http.StatusUnprocessableEntity, "A user with this email address has already been registered")
		}
		// Email changes stay pending until confirmed.
		rec.user.NewEmail = email
	}
	if hash != nil {
		rec.hash = hash
	}
	if rec.user.UserMetadata == nil {
		rec.user.UserMetadata = map[string]any{}
	}
	for k, v := range req.Data {
		if v == nil {
			delete(rec.user.UserMetadata, k)
			continue
		}
		rec.user.UserMetadata[k] = v
	}
	rec.user.UpdatedAt = s.now().UTC()
	return c.JSON(http.StatusOK, rec.user)
}

func (s *Service) logout(c httpx.Context) error {
	ctx := c.Request().Context()
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, err := s.currentRecordLocked(c)
	if err != nil {
		return err
	}
	for tok := range rec.refreshTokens {
		_ = s.tokens.Delete(ctx, refreshPrefix+tok)
	}
	rec.refreshTokens = make(map[string]struct{})
	return c.NoContent(http.StatusNoContent)
}

func (s *Service) getSettings(c httpx.Context) error {
	return c.JSON(http.StatusOK, s.settings)
}

type recoverRequest struct {
	Email string `json:"email"`
}

func (s *Service) recover(c httpx.Context) error {
	var req recoverRequest
	if err := c.Bind(&req); err != nil {
		return httpx.APIError(http.StatusBadRequest, "Could not read recover params")
	}
	ctx := c.Request().Context()

	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byEmail[normalizeEmail(req.Email)]
	if !ok {
		return httpx.APIError(http.StatusNotFound, "User not found")
	}
	tok, err := auth.GenerateSecureToken(24)
	if err != nil {
		return err
	}
	if err := s.tokens.Set(ctx, recoveryPrefix+tok, []byte(id), recoveryTTL); err != nil {
		return err
	}
	now := s.now().UTC()
	s.users[id].user.RecoverySentAt = &now
	return c.JSON(http.StatusOK, map[string]any{})
}

func (s *Service) currentRecordLocked(c httpx.Context) (*record, error) {
	token, ok := httpx.TokenFromContext(c)
	if !ok {
		return nil, httpx.APIError(http.StatusUnauthorized, "This endpoint requires a Bearer token")
	}
	rec, ok := s.users[token.Subject]
	if !ok {
		return nil, httpx.APIError(http.StatusNotFound, "User not found")
	}
	return rec, nil
}

func (s *Service) issueSessionLocked(ctx context.Context, rec *record) (auth.Session, error) {
	now := s.now()
	appMeta := make(map[string]any, len(rec.user.AppMetadata))
	for k, v := range rec.user.AppMetadata {
		appMeta[k] = v
	}
	access, err := auth.NewToken(auth.Claims{
		Email:        rec.user.Email,
		Role:         rec.user.Role,
		AppMetadata:  appMeta,
		UserMetadata: rec.user.Clone().UserMetadata,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   rec.user.ID,
			Audience:  jwt.ClaimStrings{rec.user.Aud},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}, s.secret)
	if err != nil {
		return auth.Session{}, err
	}

	refresh, err := auth.GenerateSecureToken(24)
	if err != nil {
		return auth.Session{}, err
	}
	if err := s.tokens.Set(ctx, refreshPrefix+refresh, []byte(rec.user.ID), 0); err != nil {
		return auth.Session{}, err
	}
	rec.refreshTokens[refresh] = struct{}{}

	return auth.Session{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
		ExpiresIn:    int(s.ttl / time.Second),
		User:         rec.user.Clone(),
	}, nil
}

func writeJSONError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]any{"code": code, "msg": msg})
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
