// Package session issues and verifies bearer tokens. A deployment runs
// exactly one strategy: self-contained signed tokens or opaque tokens
// backed by a lookup table.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/tollgate/internal/auth/domain"
)

const (
	ModeSigned = "signed"
	ModeOpaque = "opaque"
)

// ErrInvalidToken is the only verify failure callers see. Malformed, expired
// and unknown tokens are deliberately indistinguishable.
var ErrInvalidToken = errors.New("session: invalid token")

// Token is an issued bearer credential. ExpiresIn is zero for tokens that
// never expire on their own.
type Token struct {
	Value     string
	ExpiresIn time.Duration
}

// Issuer mints, verifies and revokes bearer tokens.
type Issuer interface {
	Mode() string
	Issue(ctx context.Context, u domain.User, amr ...string) (Token, error)
	Verify(ctx context.Context, raw string) (domain.Session, error)
	Revoke(ctx context.Context, raw string) error
}

// ParseMode validates a configured token mode.
func ParseMode(s string) (string, error) {
	switch s {
	case "", ModeSigned:
		return ModeSigned, nil
	case ModeOpaque:
		return ModeOpaque, nil
	default:
		return "", fmt.Errorf("session: unknown token mode %q", s)
	}
}

func invalid(cause error) error {
	return fmt.Errorf("%w: %v", ErrInvalidToken, cause)
}
