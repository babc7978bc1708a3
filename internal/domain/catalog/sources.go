package catalog

import (
	"context"

	"github.com/GriffinCanCode/AgentOS/catalog/internal/shared/types"
)

// Source contracts. Watch blocks, calling emit with the full current list
// on every change, until ctx is done or the source fails. Returning after
// ctx is done is not a failure. Emitted values are owned by the receiver
// and must not be modified afterwards.

// ApplicationSource enumerates launchable applications.
type ApplicationSource interface {
	Watch(ctx context.Context, emit func([]types.AppRecord)) error
}

// ShortcutSource enumerates pinned shortcuts of the given packages.
type ShortcutSource interface {
	Watch(ctx context.Context, packageIDs []string, emit func([]types.ShortcutRecord)) error
}

// ContactSource enumerates starred contacts.
type ContactSource interface {
	Watch(ctx context.Context, emit func([]types.ContactRecord)) error
}

// NotificationSource ranks packages by pending notifications.
type NotificationSource interface {
	Watch(ctx context.Context, emit func(map[string]int)) error
	// HasPermission reports whether notification access is granted. It is
	// sampled at start and on every recheck.
	HasPermission() bool
}

// OverrideSource streams the overrides that change item fields. Both
// channels deliver the current value first.
type OverrideSource interface {
	WatchRenamed(ctx context.Context) <-chan map[string]string
	WatchIgnoredNotifications(ctx context.Context) <-chan types.IDSet
}

// Sources groups the aggregator inputs. All are required.
type Sources struct {
	Applications  ApplicationSource
	Shortcuts     ShortcutSource
	Contacts      ContactSource
	Notifications NotificationSource
	Overrides     OverrideSource
}
