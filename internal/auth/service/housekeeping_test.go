package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/aussiebroadwan/tollgate/internal/auth/limiter"
	"github.com/stretchr/testify/require"
)

func TestHousekeeping_PrunesElapsedWindows(t *testing.T) {
	now := testNow
	clock := func() time.Time { return now }
	lim := limiter.NewMemoryLimiter(limiter.DefaultRules()).WithClock(clock)

	ctx := context.Background()
	_, err := lim.Check(ctx, "a", limiter.ClassLogin)
	require.NoError(t, err)
	_, err = lim.Check(ctx, "b", limiter.ClassRegister)
	require.NoError(t, err)

	hk := NewHousekeepingService(slog.New(slog.NewTextHandler(io.Discard, nil)), 0, lim)
	require.Equal(t, time.Hour, hk.Interval)
	hk.now = clock

	require.Zero(t, hk.cleanup())

	now = now.Add(16 * time.Minute)
	require.Equal(t, 1, hk.cleanup())

	now = now.Add(time.Hour)
	require.Equal(t, 1, hk.cleanup())
	require.Zero(t, lim.Len())
}

func TestHousekeeping_StartStop(t *testing.T) {
	hk := NewHousekeepingService(slog.New(slog.NewTextHandler(io.Discard, nil)), 10*time.Millisecond,
		limiter.NewMemoryLimiter(limiter.DefaultRules()))
	hk.Start()
	time.Sleep(30 * time.Millisecond)
	hk.Stop()
}
