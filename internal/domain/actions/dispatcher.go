// Package actions routes user actions on catalog items to the counter and
// override stores and to the host start sink. Each action mutates at most
// one store; the store's stream carries the change back into the catalog.
package actions

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/catalog/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/catalog/internal/shared/id"
	"github.com/GriffinCanCode/AgentOS/catalog/internal/shared/types"
	"github.com/GriffinCanCode/AgentOS/catalog/internal/shared/utils"
)

// Action names used in logs and metrics
const (
	ActionActivate            = "activate"
	ActionSecondary           = "secondary"
	ActionDeprioritize        = "deprioritize"
	ActionIgnoreNotifications = "ignore_notifications"
	ActionRename              = "rename"
	ActionHide                = "hide"
	ActionUnhide              = "unhide"
)

// StartSink hands start requests to the host.
type StartSink interface {
	Start(ctx context.Context, req types.StartRequest) error
}

// ItemResolver finds catalog items by id.
type ItemResolver interface {
	Lookup(itemID string) (types.LaunchItem, bool)
}

// CounterStore is the usage counter surface the dispatcher mutates.
type CounterStore interface {
	RecordLaunch(ctx context.Context, itemID string) error
	ToggleDeprioritized(ctx context.Context, itemID string) (bool, error)
}

// OverrideStore is the override surface the dispatcher mutates.
type OverrideStore interface {
	Rename(ctx context.Context, itemID, label string) error
	Unrename(ctx context.Context, itemID string) error
	ToggleIgnoredNotifications(ctx context.Context, itemID string) (bool, error)
	Delete(ctx context.Context, itemID string) error
	Undelete(ctx context.Context, itemID string) error
}

// Config tunes the dispatcher.
type Config struct {
	// UsageRecordDelay postpones the usage record of a launch so the list
	// does not reorder under the user's finger.
	UsageRecordDelay time.Duration
}

// DefaultConfig returns the default dispatcher settings.
func DefaultConfig() Config {
	return Config{UsageRecordDelay: time.Second}
}

// Dispatcher executes user actions.
type Dispatcher struct {
	items     ItemResolver
	counters  CounterStore
	overrides OverrideStore
	sink      StartSink
	cfg       Config
	logger    *zap.Logger
	metrics   *monitoring.Metrics

	// Scheduled usage records live until their delay elapses or the scope ends.
	scope  context.Context
	cancel context.CancelFunc
	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// NewDispatcher creates a dispatcher. Close cancels pending usage records.
func NewDispatcher(items ItemResolver, counters CounterStore, overrides OverrideStore, sink StartSink, cfg Config, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.UsageRecordDelay <= 0 {
		cfg.UsageRecordDelay = DefaultConfig().UsageRecordDelay
	}
	scope, cancel := context.WithCancel(context.Background())
	return &Dispatcher{
		items:     items,
		counters:  counters,
		overrides: overrides,
		sink:      sink,
		cfg:       cfg,
		logger:    logger.Named("actions"),
		scope:     scope,
		cancel:    cancel,
	}
}

// WithMetrics adds metrics tracking to the dispatcher
func (d *Dispatcher) WithMetrics(metrics *monitoring.Metrics) *Dispatcher {
	d.metrics = metrics
	return d
}

// Activate launches the item. Unless the item has an actionable
// notification, a usage record follows after the configured delay.
func (d *Dispatcher) Activate(ctx context.Context, itemID string) error {
	item, err := d.resolve(itemID)
	if err != nil {
		return err
	}

	if err := d.start(ctx, item.LaunchRequest()); err != nil {
		return err
	}
	if _, actionable := item.Info().ActionableRank(); !actionable {
		d.scheduleUsageRecord(itemID)
	}

	d.record(ActionActivate, item)
	return nil
}

// SecondaryActivate runs the variant's secondary action: application
// details, contact message or shortcut unpin. Messaging a contact also
// counts as a launch.
func (d *Dispatcher) SecondaryActivate(ctx context.Context, itemID string) error {
	item, err := d.resolve(itemID)
	if err != nil {
		return err
	}

	var (
		req         types.StartRequest
		countLaunch bool
	)
	switch v := item.(type) {
	case types.Application:
		req = v.DetailsRequest()
	case types.Contact:
		msg, ok := v.MessageRequest()
		if !ok {
			return fmt.Errorf("message %s: %w", itemID, types.ErrNoTarget)
		}
		req, countLaunch = msg, true
	case types.Shortcut:
		req = v.UnpinRequest()
	default:
		return fmt.Errorf("secondary action on %s: %w", item.Info().Kind, types.ErrUnsupported)
	}

	if err := d.start(ctx, req); err != nil {
		return err
	}
	if countLaunch {
		d.scheduleUsageRecord(itemID)
	}

	d.record(ActionSecondary, item)
	return nil
}

// ToggleDeprioritize flips the deprioritized state of an application or
// the settings entry and returns the new state.
func (d *Dispatcher) ToggleDeprioritize(ctx context.Context, itemID string) (bool, error) {
	item, err := d.resolve(itemID)
	if err != nil {
		return false, err
	}
	if _, ok := item.(types.Deprioritizable); !ok {
		return false, fmt.Errorf("deprioritize %s: %w", item.Info().Kind, types.ErrUnsupported)
	}

	deprioritized, err := d.counters.ToggleDeprioritized(ctx, itemID)
	if err != nil {
		return false, err
	}

	d.record(ActionDeprioritize, item)
	return deprioritized, nil
}

// ToggleIgnoreNotifications flips whether an application's notifications
// reorder it and returns the new state.
func (d *Dispatcher) ToggleIgnoreNotifications(ctx context.Context, itemID string) (bool, error) {
	item, err := d.resolve(itemID)
	if err != nil {
		return false, err
	}
	if _, ok := item.(types.Application); !ok {
		return false, fmt.Errorf("ignore notifications of %s: %w", item.Info().Kind, types.ErrUnsupported)
	}

	ignored, err := d.overrides.ToggleIgnoredNotifications(ctx, itemID)
	if err != nil {
		return false, err
	}

	d.record(ActionIgnoreNotifications, item)
	return ignored, nil
}

// Rename sets the label override of an application, contact or shortcut.
// A blank label clears it.
func (d *Dispatcher) Rename(ctx context.Context, itemID, label string) error {
	if err := utils.ValidateLabel(label); err != nil {
		return err
	}
	item, err := d.resolve(itemID)
	if err != nil {
		return err
	}
	if _, ok := item.(types.SettingsEntry); ok {
		return fmt.Errorf("rename %s: %w", item.Info().Kind, types.ErrUnsupported)
	}

	if strings.TrimSpace(label) == "" {
		err = d.overrides.Unrename(ctx, itemID)
	} else {
		err = d.overrides.Rename(ctx, itemID, label)
	}
	if err != nil {
		return err
	}

	d.record(ActionRename, item)
	return nil
}

// Hide soft-deletes any id, known or not.
func (d *Dispatcher) Hide(ctx context.Context, itemID string) error {
	if err := utils.ValidateItemID(itemID); err != nil {
		return err
	}
	if err := d.overrides.Delete(ctx, itemID); err != nil {
		return err
	}
	d.metrics.RecordAction(ActionHide, d.kindOf(itemID))
	return nil
}

// Unhide reverts Hide.
func (d *Dispatcher) Unhide(ctx context.Context, itemID string) error {
	if err := utils.ValidateItemID(itemID); err != nil {
		return err
	}
	if err := d.overrides.Undelete(ctx, itemID); err != nil {
		return err
	}
	d.metrics.RecordAction(ActionUnhide, d.kindOf(itemID))
	return nil
}

// Close cancels every pending usage record and waits for them to exit.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	d.cancel()
	d.wg.Wait()
}

func (d *Dispatcher) resolve(itemID string) (types.LaunchItem, error) {
	if err := utils.ValidateItemID(itemID); err != nil {
		return nil, err
	}
	item, ok := d.items.Lookup(itemID)
	if !ok {
		return nil, fmt.Errorf("item %s: %w", itemID, types.ErrNotFound)
	}
	return item, nil
}

func (d *Dispatcher) start(ctx context.Context, req types.StartRequest) error {
	if err := d.sink.Start(ctx, req); err != nil {
		d.logger.Warn("Start request failed",
			zap.String("action", string(req.Action)),
			zap.String("target", req.Target),
			zap.Error(err))
		return fmt.Errorf("start %s: %w", req.Action, err)
	}
	return nil
}

// scheduleUsageRecord records one launch of itemID after the delay. Every
// call is independent; only Close cancels it.
func (d *Dispatcher) scheduleUsageRecord(itemID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		d.logger.Debug("Dispatcher closed, dropping usage record", zap.String("item_id", itemID))
		return
	}

	taskID := id.NewTaskID()
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		timer := time.NewTimer(d.cfg.UsageRecordDelay)
		defer timer.Stop()

		select {
		case <-d.scope.Done():
			d.logger.Debug("Usage record cancelled",
				zap.String("task_id", taskID.String()),
				zap.String("item_id", itemID))
			return
		case <-timer.C:
		}

		if err := d.counters.RecordLaunch(d.scope, itemID); err != nil {
			d.logger.Warn("Failed to record launch",
				zap.String("task_id", taskID.String()),
				zap.String("item_id", itemID),
				zap.Error(err))
		}
	}()
}

func (d *Dispatcher) record(action string, item types.LaunchItem) {
	info := item.Info()
	d.metrics.RecordAction(action, string(info.Kind))
	d.logger.Debug("Dispatched action",
		zap.String("action", action),
		zap.String("item_id", info.ID),
		zap.String("kind", string(info.Kind)))
}

func (d *Dispatcher) kindOf(itemID string) string {
	if item, ok := d.items.Lookup(itemID); ok {
		return string(item.Info().Kind)
	}
	return "unknown"
}
