package middleware

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAllowPerAccountWindow(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(100 * time.Millisecond).WithClock(func() time.Time { return now })

	require.True(t, rl.Allow("acc-1"))
	require.False(t, rl.Allow("acc-1"))

	// other accounts are independent
	require.True(t, rl.Allow("acc-2"))

	now = now.Add(99 * time.Millisecond)
	require.False(t, rl.Allow("acc-1"))

	now = now.Add(time.Millisecond)
	require.True(t, rl.Allow("acc-1"))
}

func TestPruneDropsExpiredWindows(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(100 * time.Millisecond).WithClock(func() time.Time { return now })

	require.True(t, rl.Allow("acc-old"))
	now = now.Add(time.Second)

	rl.mu.Lock()
	rl.prune(now)
	rl.mu.Unlock()

	rl.mu.Lock()
	_, tracked := rl.seen["acc-old"]
	rl.mu.Unlock()
	require.False(t, tracked)

	require.True(t, rl.Allow("acc-old"))
}
