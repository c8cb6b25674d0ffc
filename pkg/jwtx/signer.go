package jwtx

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// MinSecretBytes is the shortest HMAC secret accepted for HS256.
const MinSecretBytes = 32

var ErrWeakSecret = errors.New("jwtx: hmac secret must be at least 32 bytes")

// Signer is our interface for anything that can sign JWTs.
type Signer interface {
	Alg() string
	Sign(Claims) (string, error)
}

// HS256Signer signs tokens with a shared server-held secret. Rotating the
// secret invalidates every outstanding token.
type HS256Signer struct {
	secret []byte
}

// NewSignerHS256 creates an HS256 signer.
func NewSignerHS256(secret []byte) (*HS256Signer, error) {
	if len(secret) < MinSecretBytes {
		return nil, ErrWeakSecret
	}
	return &HS256Signer{secret: secret}, nil
}

func (s *HS256Signer) Alg() string { return jwt.SigningMethodHS256.Alg() }

// Sign takes your claims and turns them into a signed JWT string.
func (s *HS256Signer) Sign(claims Claims) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.secret)
}

// Verifier returns the matching verifier for this signer's secret.
func (s *HS256Signer) Verifier(issuer string) *HS256Verifier {
	return NewVerifierHS256(s.secret, issuer)
}
