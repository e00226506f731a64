package watch

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_NotifiesOnWrite(t *testing.T) {
	dir := t.TempDir()

	events := make(chan string, 10)
	w, err := New(false, func(path string) {
		events <- path
	})
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, w.Watch(dir))
	go w.Start()
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "out.o"), []byte("obj"), 0o644))

	select {
	case path := <-events:
		assert.Contains(t, path, dir)
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for file event")
	}
}

func TestWatcher_RateLimitsBursts(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "burst.o")

	events := make(chan struct{}, 100)
	w, err := New(false, func(string) {
		events <- struct{}{}
	})
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, w.Watch(dir))
	go w.Start()
	time.Sleep(100 * time.Millisecond)

	// 10 rapid writes over ~50ms. At 20 events/sec per path we should see
	// far fewer callbacks than writes.
	for i := 0; i < 10; i++ {
		require.NoError(t, os.WriteFile(file, []byte(fmt.Sprintf("line %d\n", i)), 0o644))
		time.Sleep(5 * time.Millisecond)
	}
	time.Sleep(200 * time.Millisecond)

	count := 0
drain:
	for {
		select {
		case <-events:
			count++
		default:
			break drain
		}
	}
	assert.LessOrEqual(t, count, 3, "expected events to be rate limited/coalesced")
	assert.Greater(t, count, 0)
}

func TestWatcher_WatchMissingPath(t *testing.T) {
	w, err := New(false, nil)
	require.NoError(t, err)
	defer w.Close()

	err = w.Watch(filepath.Join(t.TempDir(), "does-not-exist"))
	assert.Error(t, err)
}

func TestWatcher_WatchAfterClose(t *testing.T) {
	w, err := New(false, nil)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	assert.Error(t, w.Watch(t.TempDir()))
}

func TestRateLimiter_BuildBurstCollapses(t *testing.T) {
	// A build rewriting a target/ directory fires hundreds of events in a
	// few milliseconds; only the first of each interval may pass.
	rl := NewRateLimiter(4)

	notifications := 0
	for i := 0; i < 50; i++ {
		rl.Coalesce(func() { notifications++ })
	}
	assert.Equal(t, 1, notifications)

	time.Sleep(300 * time.Millisecond)
	rl.Coalesce(func() { notifications++ })
	assert.Equal(t, 2, notifications, "a new interval admits the next event")
}

func TestRateLimiter_PerPathBudgetsAreIndependent(t *testing.T) {
	// Each watched artifact path gets its own limiter: a burst from one
	// project's build must not starve another's notification.
	target := NewRateLimiter(5)
	dist := NewRateLimiter(5)

	require.True(t, target.Allow())
	require.False(t, target.Allow())
	assert.True(t, dist.Allow(), "a saturated sibling path does not consume this path's slot")
}

func TestRateLimiter_NonPositiveRateStillAdmits(t *testing.T) {
	rl := NewRateLimiter(0)
	assert.True(t, rl.Allow())
}
