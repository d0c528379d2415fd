package auth

import (
	"context"
)

// TokenParser turns a raw bearer token into verified claims.
type TokenParser interface {
	ParseToken(ctx context.Context, raw string) (ParsedToken, error)
}

// TokenParserFunc adapts a function to TokenParser.
type TokenParserFunc func(ctx context.Context, raw string) (ParsedToken, error)

func (f TokenParserFunc) ParseToken(ctx context.Context, raw string) (ParsedToken, error) {
	return f(ctx, raw)
}

// NewSecretParser binds a Verifier to a fixed secret. A nil verifier uses
// NewVerifier defaults.
func NewSecretParser(v *Verifier, secret []byte) TokenParser {
	if v == nil {
		v = NewVerifier()
	}
	key := append([]byte(nil), secret...)
	return TokenParserFunc(func(ctx context.Context, raw string) (ParsedToken, error) {
		if err := contextError(ctx); err != nil {
			return ParsedToken{}, err
		}
		return v.Verify(raw, key)
	})
}

// contextError reports ctx.Err() without blocking. A nil ctx never fails.
func contextError(ctx context.Context) error {
	if ctx == nil {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
