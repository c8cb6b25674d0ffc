package session

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aussiebroadwan/tollgate/internal/auth/domain"
	"github.com/aussiebroadwan/tollgate/pkg/cryptox"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func tables(t *testing.T) map[string]Table {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return map[string]Table{
		"memory": NewMemoryTable(),
		"redis":  NewRedisTable(rdb, ""),
	}
}

func TestOpaqueIssuer_Lifecycle(t *testing.T) {
	for name, table := range tables(t) {
		t.Run(name, func(t *testing.T) {
			iss := NewOpaqueIssuer(table)
			require.Equal(t, ModeOpaque, iss.Mode())

			ctx := context.Background()
			admin := domain.User{ID: "01HZXADMIN", Username: "root", Role: domain.RoleAdmin}

			tok, err := iss.Issue(ctx, admin)
			require.NoError(t, err)
			require.Len(t, tok.Value, 43, "32 random bytes as unpadded base64url")
			require.Zero(t, tok.ExpiresIn)

			sess, err := iss.Verify(ctx, tok.Value)
			require.NoError(t, err)
			require.Equal(t, "01HZXADMIN", sess.UserID)
			require.Equal(t, "root", sess.Username)
			require.Equal(t, domain.RoleAdmin, sess.Role)
			require.True(t, sess.ExpiresAt.IsZero())

			require.NoError(t, iss.Revoke(ctx, tok.Value))
			_, err = iss.Verify(ctx, tok.Value)
			require.ErrorIs(t, err, ErrInvalidToken)

			// A second logout is harmless.
			require.NoError(t, iss.Revoke(ctx, tok.Value))
		})
	}
}

func TestOpaqueIssuer_UnknownAndMalformed(t *testing.T) {
	iss := NewOpaqueIssuer(NewMemoryTable())
	ctx := context.Background()

	unknown, err := cryptox.GenerateToken(cryptox.TokenSize256)
	require.NoError(t, err)

	for _, raw := range []string{"", "short", unknown} {
		_, err := iss.Verify(ctx, raw)
		require.ErrorIs(t, err, ErrInvalidToken)
	}
}

func TestOpaqueIssuer_TokensAreDistinct(t *testing.T) {
	table := NewMemoryTable()
	iss := NewOpaqueIssuer(table)
	ctx := context.Background()

	a, err := iss.Issue(ctx, testUser())
	require.NoError(t, err)
	b, err := iss.Issue(ctx, testUser())
	require.NoError(t, err)

	require.NotEqual(t, a.Value, b.Value)
	require.Equal(t, 2, table.Len())
}

func TestRedisTable_KeyedByFingerprint(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	iss := NewOpaqueIssuer(NewRedisTable(rdb, "test:session"))
	tok, err := iss.Issue(context.Background(), testUser())
	require.NoError(t, err)

	require.False(t, mr.Exists("test:session:"+tok.Value), "raw token must not be a key")
	require.True(t, mr.Exists("test:session:"+cryptox.FingerprintToken(tok.Value)))
	require.Zero(t, mr.TTL("test:session:"+cryptox.FingerprintToken(tok.Value)))
}

func TestRedisTable_BackendDown(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	iss := NewOpaqueIssuer(NewRedisTable(rdb, ""))

	tok, err := iss.Issue(context.Background(), testUser())
	require.NoError(t, err)

	mr.Close()
	_, err = iss.Verify(context.Background(), tok.Value)
	require.ErrorIs(t, err, ErrInvalidToken)
}
