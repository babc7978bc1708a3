// Package overrides persists the user's per-item overrides: renamed labels,
// ignored notifications and soft-deleted (hidden) items. The three records
// are independent; an item may carry any combination.
package overrides

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/catalog/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/catalog/internal/shared/stream"
	"github.com/GriffinCanCode/AgentOS/catalog/internal/shared/types"
	"github.com/GriffinCanCode/AgentOS/catalog/internal/storage"
)

// Storage tables
const (
	RenamedTable = "renamed"
	IgnoredTable = "ignored_notifications"
	DeletedTable = "deleted"
)

var present = []byte("1")

// Store holds the three override records.
type Store struct {
	renamed *storage.Table
	ignored *storage.Table
	deleted *storage.Table

	logger  *zap.Logger
	metrics *monitoring.Metrics
}

// NewStore loads the override tables from kv.
func NewStore(ctx context.Context, kv storage.Store, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Store{logger: logger.Named("overrides")}
	for name, dst := range map[string]**storage.Table{
		RenamedTable: &s.renamed,
		IgnoredTable: &s.ignored,
		DeletedTable: &s.deleted,
	} {
		table, err := storage.NewTable(ctx, kv, name)
		if err != nil {
			return nil, fmt.Errorf("open override store: %w", err)
		}
		*dst = table
	}
	return s, nil
}

// WithMetrics adds metrics tracking to the store
func (s *Store) WithMetrics(metrics *monitoring.Metrics) *Store {
	s.metrics = metrics
	return s
}

// Rename sets a label override. Ids not currently in the catalog are stored
// for when they reappear.
func (s *Store) Rename(ctx context.Context, itemID, label string) error {
	return s.put(ctx, s.renamed, itemID, []byte(label))
}

// Unrename clears a label override
func (s *Store) Unrename(ctx context.Context, itemID string) error {
	return s.remove(ctx, s.renamed, itemID)
}

// IgnoreNotifications stops notifications from reordering itemID
func (s *Store) IgnoreNotifications(ctx context.Context, itemID string) error {
	return s.put(ctx, s.ignored, itemID, present)
}

// UnignoreNotifications lets notifications reorder itemID again
func (s *Store) UnignoreNotifications(ctx context.Context, itemID string) error {
	return s.remove(ctx, s.ignored, itemID)
}

// ToggleIgnoredNotifications flips whether itemID ignores notifications in
// one read-modify-write and returns the new state.
func (s *Store) ToggleIgnoredNotifications(ctx context.Context, itemID string) (bool, error) {
	if itemID == "" {
		return false, types.ErrEmptyID
	}
	var ignored bool
	err := s.ignored.Update(ctx, itemID, func(_ []byte, ok bool) ([]byte, bool, error) {
		ignored = !ok
		return present, ignored, nil
	})
	if err != nil {
		return false, fmt.Errorf("toggle %s override for %s: %w", s.ignored.Name(), itemID, err)
	}

	change := "clear"
	if ignored {
		change = "set"
	}
	s.metrics.RecordOverrideChange(s.ignored.Name(), change)
	s.logger.Debug("Override toggled",
		zap.String("override", s.ignored.Name()),
		zap.String("item_id", itemID),
		zap.Bool("set", ignored))
	return ignored, nil
}

// Delete hides itemID from the ranked catalog
func (s *Store) Delete(ctx context.Context, itemID string) error {
	return s.put(ctx, s.deleted, itemID, present)
}

// Undelete makes a hidden item visible again
func (s *Store) Undelete(ctx context.Context, itemID string) error {
	return s.remove(ctx, s.deleted, itemID)
}

// Renamed returns the current label overrides
func (s *Store) Renamed() map[string]string {
	return labels(s.renamed.Snapshot())
}

// IgnoredNotifications returns the ids ignoring notifications
func (s *Store) IgnoredNotifications() types.IDSet {
	return ids(s.ignored.Snapshot())
}

// Deleted returns the hidden ids
func (s *Store) Deleted() types.IDSet {
	return ids(s.deleted.Snapshot())
}

// WatchRenamed streams the label overrides on every change
func (s *Store) WatchRenamed(ctx context.Context) <-chan map[string]string {
	return stream.Map(s.renamed.Watch(ctx), labels)
}

// WatchIgnoredNotifications streams the ignored-notification set on every change
func (s *Store) WatchIgnoredNotifications(ctx context.Context) <-chan types.IDSet {
	return stream.Map(s.ignored.Watch(ctx), ids)
}

// WatchDeleted streams the hidden set on every change
func (s *Store) WatchDeleted(ctx context.Context) <-chan types.IDSet {
	return stream.Map(s.deleted.Watch(ctx), ids)
}

func (s *Store) put(ctx context.Context, table *storage.Table, itemID string, value []byte) error {
	if itemID == "" {
		return types.ErrEmptyID
	}
	if err := table.Put(ctx, itemID, value); err != nil {
		return fmt.Errorf("set %s override for %s: %w", table.Name(), itemID, err)
	}
	s.metrics.RecordOverrideChange(table.Name(), "set")
	s.logger.Debug("Override set", zap.String("override", table.Name()), zap.String("item_id", itemID))
	return nil
}

func (s *Store) remove(ctx context.Context, table *storage.Table, itemID string) error {
	if itemID == "" {
		return types.ErrEmptyID
	}
	if err := table.Remove(ctx, itemID); err != nil {
		return fmt.Errorf("clear %s override for %s: %w", table.Name(), itemID, err)
	}
	s.metrics.RecordOverrideChange(table.Name(), "clear")
	s.logger.Debug("Override cleared", zap.String("override", table.Name()), zap.String("item_id", itemID))
	return nil
}

func labels(rows storage.Snapshot) map[string]string {
	out := make(map[string]string, len(rows))
	for itemID, label := range rows {
		out[itemID] = string(label)
	}
	return out
}

func ids(rows storage.Snapshot) types.IDSet {
	out := make(types.IDSet, len(rows))
	for itemID := range rows {
		out[itemID] = struct{}{}
	}
	return out
}
