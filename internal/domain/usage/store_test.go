package usage

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/AgentOS/catalog/internal/shared/types"
	"github.com/GriffinCanCode/AgentOS/catalog/internal/storage"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestStore(t *testing.T) (*Store, *fakeClock, storage.Store) {
	t.Helper()
	return newTestStoreWithConfig(t, DefaultConfig())
}

func newTestStoreWithConfig(t *testing.T, cfg Config) (*Store, *fakeClock, storage.Store) {
	t.Helper()
	kv := storage.NewMemory()
	clock := &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}

	store, err := NewStore(context.Background(), kv, cfg, nil)
	require.NoError(t, err)
	return store.WithClock(clock.Now), clock, kv
}

func TestUnknownIDIsNeutral(t *testing.T) {
	store, _, _ := newTestStore(t)

	counter := store.Counter("never-launched")
	assert.Equal(t, types.Counter{}, counter)
	assert.Equal(t, 0.0, counter.LongTermRank())
	assert.Equal(t, 0.0, counter.CombinedRank())
}

func TestRecordLaunchIncrementsCounts(t *testing.T) {
	store, _, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.RecordLaunch(ctx, "app"))
	require.NoError(t, store.RecordLaunch(ctx, "app"))

	counter := store.Counter("app")
	assert.Equal(t, types.CounterNormal, counter.State)
	assert.Equal(t, uint(2), counter.LongTerm)
	assert.Equal(t, uint(2), counter.ShortTerm)
	assert.InDelta(t, 2+2*2.0, counter.Combined, 1e-9)
}

func TestRecordLaunchRejectsEmptyID(t *testing.T) {
	store, _, _ := newTestStore(t)
	assert.ErrorIs(t, store.RecordLaunch(context.Background(), ""), types.ErrEmptyID)
}

func TestShortTermDecays(t *testing.T) {
	store, clock, _ := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		require.NoError(t, store.RecordLaunch(ctx, "stale"))
	}
	clock.Advance(72 * time.Hour)
	halved := store.Counter("stale")
	assert.InDelta(t, 4+2*2.0, halved.Combined, 1e-9, "one half-life halves the boost")

	// A fresh launch starts from the decayed short-term count.
	require.NoError(t, store.RecordLaunch(ctx, "stale"))
	assert.Equal(t, uint(3), store.Counter("stale").ShortTerm)
	assert.Equal(t, uint(5), store.Counter("stale").LongTerm)
}

func TestRecentBeatsStaleAtEqualLongTerm(t *testing.T) {
	store, clock, _ := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, store.RecordLaunch(ctx, "stale"))
	}
	clock.Advance(30 * 24 * time.Hour)
	for i := 0; i < 3; i++ {
		require.NoError(t, store.RecordLaunch(ctx, "recent"))
	}

	stale := store.Counter("stale")
	recent := store.Counter("recent")
	assert.Equal(t, stale.LongTerm, recent.LongTerm)
	assert.Equal(t, stale.LongTermRank(), recent.LongTermRank(), "head sort ignores the boost")
	assert.Greater(t, recent.CombinedRank(), stale.CombinedRank())
}

func TestDeprioritizedIgnoresLaunches(t *testing.T) {
	store, _, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.RecordLaunch(ctx, "app"))
	require.NoError(t, store.Deprioritize(ctx, "app"))
	require.NoError(t, store.RecordLaunch(ctx, "app"))

	counter := store.Counter("app")
	assert.True(t, counter.IsDeprioritized())
	assert.Equal(t, uint(0), counter.LongTerm, "sentinel carries no counts")
	assert.Equal(t, types.DeprioritizedRank, counter.LongTermRank())
	assert.Equal(t, types.DeprioritizedRank, counter.CombinedRank())
}

func TestDeprioritizeCyclePreservesCounts(t *testing.T) {
	store, _, _ := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, store.RecordLaunch(ctx, "app"))
	}
	require.NoError(t, store.Deprioritize(ctx, "app"))
	require.NoError(t, store.Undeprioritize(ctx, "app"))

	counter := store.Counter("app")
	assert.False(t, counter.IsDeprioritized())
	assert.Equal(t, uint(3), counter.LongTerm)
}

func TestDeprioritizeNeverLaunched(t *testing.T) {
	store, _, kv := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Deprioritize(ctx, "aSettings"))
	assert.True(t, store.Counter("aSettings").IsDeprioritized())

	require.NoError(t, store.Undeprioritize(ctx, "aSettings"))
	_, ok, err := kv.Get(ctx, TableName, "aSettings")
	require.NoError(t, err)
	assert.False(t, ok, "an empty record is removed")
}

func TestToggleDeprioritized(t *testing.T) {
	store, _, kv := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.RecordLaunch(ctx, "app"))

	deprioritized, err := store.ToggleDeprioritized(ctx, "app")
	require.NoError(t, err)
	assert.True(t, deprioritized)
	assert.True(t, store.Counter("app").IsDeprioritized())

	deprioritized, err = store.ToggleDeprioritized(ctx, "app")
	require.NoError(t, err)
	assert.False(t, deprioritized)
	assert.Equal(t, uint(1), store.Counter("app").LongTerm)

	deprioritized, err = store.ToggleDeprioritized(ctx, "fresh")
	require.NoError(t, err)
	assert.True(t, deprioritized)
	_, err = store.ToggleDeprioritized(ctx, "fresh")
	require.NoError(t, err)
	_, ok, err := kv.Get(ctx, TableName, "fresh")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = store.ToggleDeprioritized(ctx, "")
	assert.ErrorIs(t, err, types.ErrEmptyID)
}

func TestUndeprioritizeUnknownIsNoop(t *testing.T) {
	store, _, _ := newTestStore(t)
	require.NoError(t, store.Undeprioritize(context.Background(), "ghost"))
	assert.Empty(t, store.Snapshot())
}

func TestCountersPersist(t *testing.T) {
	ctx := context.Background()
	store, _, kv := newTestStore(t)
	require.NoError(t, store.RecordLaunch(ctx, "app"))

	reopened, err := NewStore(ctx, kv, DefaultConfig(), nil)
	require.NoError(t, err)
	assert.Equal(t, uint(1), reopened.Counter("app").LongTerm)
}

func TestWatchEmitsOnMutation(t *testing.T) {
	store, _, _ := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	updates := store.Watch(ctx)
	assert.Empty(t, <-updates)

	require.NoError(t, store.RecordLaunch(ctx, "app"))
	require.Eventually(t, func() bool {
		select {
		case counters := <-updates:
			return counters["app"].LongTerm == 1
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)
}

func TestWatchReemitsAsScoresDecay(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RefreshInterval = 10 * time.Millisecond
	store, clock, _ := newTestStoreWithConfig(t, cfg)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, store.RecordLaunch(ctx, "app"))
	updates := store.Watch(ctx)
	fresh := (<-updates)["app"].Combined
	assert.InDelta(t, 1+2*1.0, fresh, 1e-9)

	// No write happens; only the clock moves.
	clock.Advance(cfg.ShortTermHalfLife)
	require.Eventually(t, func() bool {
		select {
		case counters := <-updates:
			return counters["app"].Combined < fresh
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)
	assert.InDelta(t, 1+2*0.5, store.Counter("app").Combined, 1e-9)
}
