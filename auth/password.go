package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrPasswordTooShort  = errors.New("auth: password too short")
	ErrPasswordTooLong   = errors.New("auth: password too long")
	ErrPasswordMismatch  = errors.New("auth: password does not match")
	ErrPasswordEmptyHash = errors.New("auth: empty password hash")
)

const (
	DefaultBcryptCost = 10
	MinPasswordLength = 6
	// bcrypt ignores everything past 72 bytes.
	MaxPasswordLength = 72
)

// PasswordHasher hashes credentials for services that keep user records, such
// as the in-process GoTrue stand-in used by tests.
type PasswordHasher struct {
	cost int
}

type PasswordHasherOption func(*PasswordHasher)

// WithBcryptCost sets the bcrypt cost factor. Out of range values are ignored.
func WithBcryptCost(cost int) PasswordHasherOption {
	return func(h *PasswordHasher) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			h.cost = cost
		}
	}
}

func NewPasswordHasher(opts ...PasswordHasherOption) *PasswordHasher {
	h := &PasswordHasher{cost: DefaultBcryptCost}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h
}

// Hash validates the password length and returns its bcrypt hash.
func (h *PasswordHasher) Hash(ctx context.Context, plain string) ([]byte, error) {
	if err := contextError(ctx); err != nil {
		return nil, err
	}
	if err := ValidatePasswordLength(plain); err != nil {
		return nil, err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return nil, fmt.Errorf("auth: bcrypt hash failed: %w", err)
	}
	return hashed, nil
}

// Compare reports ErrPasswordMismatch when plain does not produce hash.
func (h *PasswordHasher) Compare(ctx context.Context, plain string, hash []byte) error {
	if err := contextError(ctx); err != nil {
		return err
	}
	if len(hash) == 0 {
		return ErrPasswordEmptyHash
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte(plain)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrPasswordMismatch
		}
		return fmt.Errorf("auth: bcrypt compare failed: %w", err)
	}
	return nil
}

func ValidatePasswordLength(plain string) error {
	switch {
	case len([]rune(plain)) < MinPasswordLength:
		return ErrPasswordTooShort
	case len(plain) > MaxPasswordLength:
		return ErrPasswordTooLong
	}
	return nil
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// ValidateEmail validates an email address format.
func ValidateEmail(email string) bool {
	email = strings.TrimSpace(email)
	if len(email) == 0 || len(email) > 254 {
		return false
	}
	return emailRegex.MatchString(email)
}

// GenerateSecureToken returns length random bytes, base64url encoded.
func GenerateSecureToken(length int) (string, error) {
	if length <= 0 {
		length = 32
	}
	b := make([]byte, length)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return "", fmt.Errorf("auth: failed to generate secure token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
