// Package engine wires the catalog together: persistence, the counter and
// override stores, the source aggregator, the ranking pipeline and the
// action dispatcher.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/catalog/internal/domain/actions"
	"github.com/GriffinCanCode/AgentOS/catalog/internal/domain/catalog"
	"github.com/GriffinCanCode/AgentOS/catalog/internal/domain/overrides"
	"github.com/GriffinCanCode/AgentOS/catalog/internal/domain/ranking"
	"github.com/GriffinCanCode/AgentOS/catalog/internal/domain/usage"
	"github.com/GriffinCanCode/AgentOS/catalog/internal/infrastructure/config"
	"github.com/GriffinCanCode/AgentOS/catalog/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/catalog/internal/shared/types"
	"github.com/GriffinCanCode/AgentOS/catalog/internal/storage"
)

// Config tunes every engine component.
type Config struct {
	Usage    usage.Config
	HeadSize int
	Actions  actions.Config
	Catalog  catalog.Config
}

// DefaultConfig returns the defaults of every component.
func DefaultConfig() Config {
	return Config{
		Usage:    usage.DefaultConfig(),
		HeadSize: ranking.DefaultHeadSize,
		Actions:  actions.DefaultConfig(),
		Catalog:  catalog.DefaultConfig(),
	}
}

// FromAppConfig maps daemon configuration onto the engine.
func FromAppConfig(cfg *config.Config) Config {
	return Config{
		Usage: usage.Config{
			BoostWeight:       cfg.Ranking.BoostWeight,
			ShortTermHalfLife: cfg.Ranking.ShortTermHalfLife,
			RefreshInterval:   cfg.Ranking.DecayRefresh,
		},
		HeadSize: cfg.Ranking.HeadSize,
		Actions: actions.Config{
			UsageRecordDelay: cfg.Actions.UsageRecordDelay,
		},
		Catalog: catalog.Config{
			RetryRPS:        cfg.Sources.RetryRPS,
			BreakerFailures: cfg.Sources.BreakerFailures,
			BreakerTimeout:  cfg.Sources.BreakerTimeout,
		},
	}
}

// Sources are the host collaborators the engine reads from.
type Sources struct {
	Applications  catalog.ApplicationSource
	Shortcuts     catalog.ShortcutSource
	Contacts      catalog.ContactSource
	Notifications catalog.NotificationSource
}

// Deps are the engine's external dependencies. Store and Sink are required.
type Deps struct {
	Store   storage.Store
	Sources Sources
	Sink    actions.StartSink
	Logger  *zap.Logger
	Metrics *monitoring.Metrics
}

var ErrMissingDependency = errors.New("engine dependency is missing")

// Engine is the running catalog.
type Engine struct {
	usage      *usage.Store
	overrides  *overrides.Store
	aggregator *catalog.Aggregator
	pipeline   *ranking.Pipeline
	dispatcher *actions.Dispatcher
	logger     *zap.Logger

	closeOnce sync.Once
}

// New builds an engine. Call Start to subscribe the sources.
func New(ctx context.Context, deps Deps, cfg Config) (*Engine, error) {
	if deps.Store == nil || deps.Sink == nil {
		return nil, ErrMissingDependency
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	counters, err := usage.NewStore(ctx, deps.Store, cfg.Usage, logger)
	if err != nil {
		return nil, err
	}
	counters.WithMetrics(deps.Metrics)

	overrideStore, err := overrides.NewStore(ctx, deps.Store, logger)
	if err != nil {
		return nil, err
	}
	overrideStore.WithMetrics(deps.Metrics)

	aggregator, err := catalog.New(catalog.Sources{
		Applications:  deps.Sources.Applications,
		Shortcuts:     deps.Sources.Shortcuts,
		Contacts:      deps.Sources.Contacts,
		Notifications: deps.Sources.Notifications,
		Overrides:     overrideStore,
	}, cfg.Catalog, logger)
	if err != nil {
		return nil, fmt.Errorf("create aggregator: %w", err)
	}
	aggregator.WithMetrics(deps.Metrics)

	pipeline := ranking.NewPipeline(aggregator, counters, overrideStore, cfg.HeadSize, logger).
		WithMetrics(deps.Metrics)
	dispatcher := actions.NewDispatcher(pipeline, counters, overrideStore, deps.Sink, cfg.Actions, logger).
		WithMetrics(deps.Metrics)

	return &Engine{
		usage:      counters,
		overrides:  overrideStore,
		aggregator: aggregator,
		pipeline:   pipeline,
		dispatcher: dispatcher,
		logger:     logger.Named("engine"),
	}, nil
}

// Start subscribes the sources and starts ranking.
func (e *Engine) Start(ctx context.Context) error {
	if err := e.pipeline.Start(ctx); err != nil {
		return err
	}
	if err := e.aggregator.Start(ctx); err != nil {
		e.pipeline.Close()
		return err
	}
	e.logger.Info("Catalog engine started")
	return nil
}

// Close stops the engine. Pending usage records are cancelled. The store
// is left open for its owner to close.
func (e *Engine) Close() {
	e.closeOnce.Do(func() {
		e.dispatcher.Close()
		e.aggregator.Close()
		e.pipeline.Close()
		e.logger.Info("Catalog engine stopped")
	})
}

// Current returns the latest ranked result.
func (e *Engine) Current() (ranking.Result, bool) {
	return e.pipeline.Current()
}

// Watch streams ranked results.
func (e *Engine) Watch(ctx context.Context) <-chan ranking.Result {
	return e.pipeline.Watch(ctx)
}

// SetQuery replaces the filter query.
func (e *Engine) SetQuery(query string) error {
	return e.pipeline.SetQuery(query)
}

// Lookup finds an item of the latest catalog by id.
func (e *Engine) Lookup(itemID string) (types.LaunchItem, bool) {
	return e.pipeline.Lookup(itemID)
}

// Counter returns the usage counter of itemID.
func (e *Engine) Counter(itemID string) types.Counter {
	return e.usage.Counter(itemID)
}

// Hidden reports whether itemID is soft-deleted.
func (e *Engine) Hidden(itemID string) bool {
	return e.overrides.Deleted().Has(itemID)
}

// RecheckPermission samples the notification permission again.
func (e *Engine) RecheckPermission() bool {
	return e.aggregator.RecheckPermission()
}

func (e *Engine) Activate(ctx context.Context, itemID string) error {
	return e.dispatcher.Activate(ctx, itemID)
}

func (e *Engine) SecondaryActivate(ctx context.Context, itemID string) error {
	return e.dispatcher.SecondaryActivate(ctx, itemID)
}

func (e *Engine) ToggleDeprioritize(ctx context.Context, itemID string) (bool, error) {
	return e.dispatcher.ToggleDeprioritize(ctx, itemID)
}

func (e *Engine) ToggleIgnoreNotifications(ctx context.Context, itemID string) (bool, error) {
	return e.dispatcher.ToggleIgnoreNotifications(ctx, itemID)
}

func (e *Engine) Rename(ctx context.Context, itemID, label string) error {
	return e.dispatcher.Rename(ctx, itemID, label)
}

func (e *Engine) Hide(ctx context.Context, itemID string) error {
	return e.dispatcher.Hide(ctx, itemID)
}

func (e *Engine) Unhide(ctx context.Context, itemID string) error {
	return e.dispatcher.Unhide(ctx, itemID)
}
