package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/tollgate/internal/auth/domain"
	"github.com/aussiebroadwan/tollgate/pkg/cryptox"
	"github.com/aussiebroadwan/tollgate/pkg/slogx"
)

// ErrSessionNotFound is returned by a Table when no entry exists.
var ErrSessionNotFound = errors.New("session: not found")

// Table maps token fingerprints to sessions. Implementations must make each
// operation atomic per key.
type Table interface {
	Put(ctx context.Context, fingerprint string, s domain.Session) error
	Get(ctx context.Context, fingerprint string) (domain.Session, error)
	Delete(ctx context.Context, fingerprint string) error
}

// OpaqueIssuer hands out random tokens whose only meaning is their entry in
// the table. Entries have no expiry, they end on logout or when the table is
// lost.
type OpaqueIssuer struct {
	table Table
	size  int
	now   func() time.Time
}

func NewOpaqueIssuer(table Table) *OpaqueIssuer {
	return &OpaqueIssuer{
		table: table,
		size:  cryptox.TokenSize256,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (o *OpaqueIssuer) Mode() string { return ModeOpaque }

func (o *OpaqueIssuer) Issue(ctx context.Context, u domain.User, amr ...string) (Token, error) {
	raw, err := cryptox.GenerateToken(o.size)
	if err != nil {
		return Token{}, err
	}

	if err := o.table.Put(ctx, cryptox.FingerprintToken(raw), domain.NewSession(u, o.now(), amr...)); err != nil {
		return Token{}, fmt.Errorf("store session: %w", err)
	}
	return Token{Value: raw}, nil
}

func (o *OpaqueIssuer) Verify(ctx context.Context, raw string) (domain.Session, error) {
	if len(raw) < minOpaqueTokenLen {
		return domain.Session{}, invalid(errors.New("token too short"))
	}

	sess, err := o.table.Get(ctx, cryptox.FingerprintToken(raw))
	if err != nil {
		slogx.FromContext(ctx).Debug("opaque token rejected", "err", err)
		return domain.Session{}, invalid(err)
	}
	return sess, nil
}

func (o *OpaqueIssuer) Revoke(ctx context.Context, raw string) error {
	err := o.table.Delete(ctx, cryptox.FingerprintToken(raw))
	if err != nil && !errors.Is(err, ErrSessionNotFound) {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

// 24 random bytes encode to 32 base64url characters.
const minOpaqueTokenLen = 32

var _ Issuer = (*OpaqueIssuer)(nil)
