package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/tollgate/internal/auth/domain"
	"github.com/aussiebroadwan/tollgate/pkg/idx"
	"github.com/aussiebroadwan/tollgate/pkg/jwtx"
	"github.com/aussiebroadwan/tollgate/pkg/slogx"
)

// SignedIssuer mints HS256 JWTs. Nothing is kept server side, so Revoke
// cannot end a session before its exp claim.
type SignedIssuer struct {
	signer   *jwtx.HS256Signer
	verifier *jwtx.HS256Verifier
	issuer   string
	ttl      time.Duration
	now      func() time.Time
}

func NewSignedIssuer(secret []byte, issuer string, ttl time.Duration) (*SignedIssuer, error) {
	signer, err := jwtx.NewSignerHS256(secret)
	if err != nil {
		return nil, err
	}
	if ttl <= 0 {
		ttl = jwtx.DefaultAccessTokenTTL
	}

	s := &SignedIssuer{
		signer:   signer,
		verifier: signer.Verifier(issuer),
		issuer:   issuer,
		ttl:      ttl,
	}
	return s.WithClock(func() time.Time { return time.Now().UTC() }), nil
}

// WithClock replaces the time source for both minting and verification.
func (s *SignedIssuer) WithClock(now func() time.Time) *SignedIssuer {
	s.now = now
	s.verifier.WithClock(now)
	return s
}

func (s *SignedIssuer) Mode() string { return ModeSigned }

func (s *SignedIssuer) Issue(_ context.Context, u domain.User, amr ...string) (Token, error) {
	claims := jwtx.NewAccessClaims(u.ID, u.Username, string(u.Role), amr, s.ttl, s.issuer, s.now())

	raw, err := s.signer.Sign(claims)
	if err != nil {
		return Token{}, fmt.Errorf("sign access token: %w", err)
	}
	return Token{Value: raw, ExpiresIn: s.ttl}, nil
}

func (s *SignedIssuer) Verify(ctx context.Context, raw string) (domain.Session, error) {
	claims, err := s.verifier.Verify(raw)
	if err != nil {
		slogx.FromContext(ctx).Debug("signed token rejected", "err", err)
		return domain.Session{}, invalid(err)
	}

	if !idx.Valid(claims.Subject) {
		return domain.Session{}, invalid(errors.New("malformed subject"))
	}

	role := domain.Role(claims.Role)
	if !role.Valid() {
		return domain.Session{}, invalid(errors.New("unknown role claim"))
	}

	sess := domain.Session{
		UserID:   claims.Subject,
		Username: claims.Username,
		Role:     role,
		AMR:      claims.AMR,
	}
	if claims.IssuedAt != nil {
		sess.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		sess.ExpiresAt = claims.ExpiresAt.Time
	}
	return sess, nil
}

// Revoke is a no-op, signed tokens live until they expire.
func (s *SignedIssuer) Revoke(context.Context, string) error { return nil }

var _ Issuer = (*SignedIssuer)(nil)
