package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrSecretNotConfigured = errors.New("auth: jwt secret not configured")
	ErrTokenMalformed      = errors.New("auth: malformed jwt")
	ErrSignatureInvalid    = errors.New("auth: invalid jwt signature")
	ErrTokenExpired        = errors.New("auth: jwt expired")
)

// SigningAlgorithm is the only algorithm GoTrue access tokens are accepted with.
const SigningAlgorithm = "HS256"

// Claims models the payload of a GoTrue access token.
type Claims struct {
	Email        string         `json:"email,omitempty"`
	Role         string         `json:"role"`
	AppMetadata  map[string]any `json:"app_metadata"`
	UserMetadata map[string]any `json:"user_metadata"`
	jwt.RegisteredClaims
}

// Verifier checks and decodes access tokens without contacting the service.
// It keeps no per-token state and is safe for concurrent use.
type Verifier struct {
	now    func() time.Time
	leeway time.Duration
	parser *jwt.Parser
}

type VerifierOption func(*Verifier)

// WithNow injects a clock, mainly for tests.
func WithNow(fn func() time.Time) VerifierOption {
	return func(v *Verifier) {
		if fn != nil {
			v.now = fn
		}
	}
}

// WithLeeway tolerates tokens that expired less than d ago.
func WithLeeway(d time.Duration) VerifierOption {
	return func(v *Verifier) {
		if d > 0 {
			v.leeway = d
		}
	}
}

func NewVerifier(opts ...VerifierOption) *Verifier {
	v := &Verifier{
		now: time.Now,
		// Claims are checked by Verify itself, after the signature.
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{SigningAlgorithm}),
			jwt.WithoutClaimsValidation(),
		),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(v)
		}
	}
	return v
}

// Verify validates raw against secret and returns its claims.
//
// Checks run in a fixed order: secret presence, token structure, signature,
// then expiry. A forged token therefore reports ErrSignatureInvalid even if its
// exp claim is in the past, and ErrTokenExpired always implies a genuine
// signature.
func (v *Verifier) Verify(raw string, secret []byte) (ParsedToken, error) {
	if len(secret) == 0 {
		return ParsedToken{}, ErrSecretNotConfigured
	}

	var claims Claims
	_, err := v.parser.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return secret, nil
	})
	if err != nil {
		return ParsedToken{}, classifyParseError(err)
	}

	if claims.ExpiresAt != nil && claims.ExpiresAt.Add(v.leeway).Before(v.now()) {
		return ParsedToken{}, ErrTokenExpired
	}

	return parsedFromClaims(claims), nil
}

// IsValid reports whether Verify would succeed. Only ErrSecretNotConfigured is
// returned as an error; every judgement about the token itself is a false.
func (v *Verifier) IsValid(raw string, secret []byte) (bool, error) {
	if _, err := v.Verify(raw, secret); err != nil {
		if errors.Is(err, ErrSecretNotConfigured) {
			return false, err
		}
		return false, nil
	}
	return true, nil
}

// NewToken signs claims with secret using HS256.
func NewToken(claims Claims, secret []byte) (string, error) {
	if len(secret) == 0 {
		return "", ErrSecretNotConfigured
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func classifyParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %v", ErrSignatureInvalid, err)
	default:
		return fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}
}

func parsedFromClaims(c Claims) ParsedToken {
	out := ParsedToken{
		Subject:      c.Subject,
		Email:        c.Email,
		Role:         c.Role,
		AppMetadata:  ToStringMap(c.AppMetadata),
		UserMetadata: ToStringMap(c.UserMetadata),
	}
	if c.ExpiresAt != nil {
		out.Expiry = c.ExpiresAt.UTC()
	}
	return out
}
