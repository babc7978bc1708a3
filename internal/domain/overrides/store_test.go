package overrides

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/AgentOS/catalog/internal/shared/types"
	"github.com/GriffinCanCode/AgentOS/catalog/internal/storage"
)

func newTestStore(t *testing.T) (*Store, storage.Store) {
	t.Helper()
	kv := storage.NewMemory()
	store, err := NewStore(context.Background(), kv, nil)
	require.NoError(t, err)
	return store, kv
}

func TestRenameAndUnrename(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Rename(ctx, "0/org.calc/Main", "Numbers"))
	assert.Equal(t, map[string]string{"0/org.calc/Main": "Numbers"}, store.Renamed())

	require.NoError(t, store.Unrename(ctx, "0/org.calc/Main"))
	assert.Empty(t, store.Renamed())
}

func TestOverridesAreIndependent(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	itemID := "0/org.mail/Inbox"

	require.NoError(t, store.Rename(ctx, itemID, "Mail"))
	require.NoError(t, store.IgnoreNotifications(ctx, itemID))
	require.NoError(t, store.Delete(ctx, itemID))

	require.NoError(t, store.Undelete(ctx, itemID))

	assert.Equal(t, "Mail", store.Renamed()[itemID])
	assert.True(t, store.IgnoredNotifications().Has(itemID))
	assert.False(t, store.Deleted().Has(itemID))
}

func TestUnknownIDsAreStored(t *testing.T) {
	store, kv := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Delete(ctx, "0/org.gone/Main"))

	reopened, err := NewStore(ctx, kv, nil)
	require.NoError(t, err)
	assert.True(t, reopened.Deleted().Has("0/org.gone/Main"))
}

func TestEmptyIDRejected(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	assert.ErrorIs(t, store.Rename(ctx, "", "x"), types.ErrEmptyID)
	assert.ErrorIs(t, store.IgnoreNotifications(ctx, ""), types.ErrEmptyID)
	assert.ErrorIs(t, store.Undelete(ctx, ""), types.ErrEmptyID)
}

func TestToggleIgnoredNotifications(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	itemID := "0/org.chat/Main"

	ignored, err := store.ToggleIgnoredNotifications(ctx, itemID)
	require.NoError(t, err)
	assert.True(t, ignored)
	assert.True(t, store.IgnoredNotifications().Has(itemID))

	ignored, err = store.ToggleIgnoredNotifications(ctx, itemID)
	require.NoError(t, err)
	assert.False(t, ignored)
	assert.False(t, store.IgnoredNotifications().Has(itemID))

	_, err = store.ToggleIgnoredNotifications(ctx, "")
	assert.ErrorIs(t, err, types.ErrEmptyID)
}

func TestUndoOfMissingIsNoop(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Unrename(ctx, "x"))
	require.NoError(t, store.UnignoreNotifications(ctx, "x"))
	require.NoError(t, store.Undelete(ctx, "x"))
}

func TestWatchStreams(t *testing.T) {
	store, _ := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	renamed := store.WatchRenamed(ctx)
	deleted := store.WatchDeleted(ctx)
	ignored := store.WatchIgnoredNotifications(ctx)
	assert.Empty(t, <-renamed)
	assert.Empty(t, <-deleted)
	assert.Empty(t, <-ignored)

	require.NoError(t, store.Rename(ctx, "a", "Alpha"))
	require.NoError(t, store.Delete(ctx, "b"))
	require.NoError(t, store.IgnoreNotifications(ctx, "c"))

	require.Eventually(t, func() bool {
		select {
		case labels := <-renamed:
			return labels["a"] == "Alpha"
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)
	assert.True(t, (<-deleted).Has("b"))
	assert.True(t, (<-ignored).Has("c"))
}
