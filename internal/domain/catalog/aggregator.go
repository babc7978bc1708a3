package catalog

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/GriffinCanCode/AgentOS/catalog/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/catalog/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/AgentOS/catalog/internal/shared/id"
	"github.com/GriffinCanCode/AgentOS/catalog/internal/shared/stream"
	"github.com/GriffinCanCode/AgentOS/catalog/internal/shared/types"
)

// Emission kinds
const (
	EmissionPlaceholder = "placeholder"
	EmissionFull        = "full"
)

var (
	ErrMissingSource  = errors.New("catalog source is missing")
	ErrAlreadyStarted = errors.New("aggregator already started")
)

// Config tunes source supervision.
type Config struct {
	// SettingsIcon is the icon of the settings entry.
	SettingsIcon types.Icon
	// RetryRPS bounds resubscription attempts per source.
	RetryRPS float64
	// BreakerFailures is the consecutive failure count that opens a source breaker.
	BreakerFailures uint32
	// BreakerTimeout is how long an open breaker rejects resubscription.
	BreakerTimeout time.Duration
}

// DefaultConfig returns the default supervision settings.
func DefaultConfig() Config {
	return Config{
		RetryRPS:        1,
		BreakerFailures: 5,
		BreakerTimeout:  30 * time.Second,
	}
}

// Aggregator merges the catalog sources into one live item list.
type Aggregator struct {
	sources Sources
	cfg     Config
	logger  *zap.Logger
	metrics *monitoring.Metrics

	apps       *stream.Value[sourced[[]types.AppRecord]]
	contacts   *stream.Value[sourced[[]types.ContactRecord]]
	ranks      *stream.Value[sourced[map[string]int]]
	permission *stream.Value[bool]
	out        *stream.Value[[]types.LaunchItem]

	breakers map[string]*resilience.Breaker
	limiters map[string]*rate.Limiter

	// Owned by the coordinator goroutine.
	firstLoadDone bool
	last          []types.LaunchItem
	emitted       bool
	observe       func(kind string, items []types.LaunchItem)

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New creates an aggregator over sources. Nothing is subscribed until Start.
func New(sources Sources, cfg Config, logger *zap.Logger) (*Aggregator, error) {
	if sources.Applications == nil || sources.Shortcuts == nil || sources.Contacts == nil ||
		sources.Notifications == nil || sources.Overrides == nil {
		return nil, ErrMissingSource
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	defaults := DefaultConfig()
	if cfg.RetryRPS <= 0 {
		cfg.RetryRPS = defaults.RetryRPS
	}
	if cfg.BreakerFailures == 0 {
		cfg.BreakerFailures = defaults.BreakerFailures
	}
	if cfg.BreakerTimeout <= 0 {
		cfg.BreakerTimeout = defaults.BreakerTimeout
	}

	a := &Aggregator{
		sources:    sources,
		cfg:        cfg,
		logger:     logger.Named("catalog"),
		apps:       stream.NewValue[sourced[[]types.AppRecord]](),
		contacts:   stream.NewValue[sourced[[]types.ContactRecord]](),
		ranks:      stream.NewValue[sourced[map[string]int]](),
		permission: stream.NewValue[bool](),
		out:        stream.NewValue[[]types.LaunchItem](),
		breakers:   make(map[string]*resilience.Breaker),
		limiters:   make(map[string]*rate.Limiter),
	}
	for _, name := range []string{sourceApplications, sourceShortcuts, sourceContacts, sourceNotifications} {
		a.breakers[name] = a.newBreaker(name)
		a.limiters[name] = rate.NewLimiter(rate.Limit(cfg.RetryRPS), 1)
	}
	return a, nil
}

// WithMetrics adds metrics tracking to the aggregator
func (a *Aggregator) WithMetrics(metrics *monitoring.Metrics) *Aggregator {
	a.metrics = metrics
	return a
}

func (a *Aggregator) newBreaker(name string) *resilience.Breaker {
	failures := a.cfg.BreakerFailures
	return resilience.New(name, resilience.Settings{
		Timeout: a.cfg.BreakerTimeout,
		ReadyToTrip: func(counts resilience.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to resilience.State) {
			a.logger.Info("Source breaker state changed",
				zap.String("source", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
}

// Start subscribes every source and begins emitting. It returns immediately.
func (a *Aggregator) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.started {
		return ErrAlreadyStarted
	}
	a.started = true

	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	a.permission.Publish(a.sources.Notifications.HasPermission())

	a.goSupervise(sourceApplications, func() {
		newSupervisor(a, sourceApplications, a.apps).run(ctx, a.sources.Applications.Watch)
	})
	a.goSupervise(sourceContacts, func() {
		newSupervisor(a, sourceContacts, a.contacts).run(ctx, a.sources.Contacts.Watch)
	})
	a.goSupervise(sourceNotifications, func() {
		newSupervisor(a, sourceNotifications, a.ranks).run(ctx, a.sources.Notifications.Watch)
	})

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.coordinate(ctx)
	}()

	a.logger.Info("Catalog aggregator started")
	return nil
}

// Close cancels every subscription and waits for the goroutines to exit.
func (a *Aggregator) Close() {
	a.mu.Lock()
	cancel := a.cancel
	a.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	a.wg.Wait()
}

// Watch streams the catalog, starting with the latest emission if any.
// Delivery is latest-only: a subscriber that falls behind receives the
// newest catalog and skips the ones in between, so the placeholder pass of
// the first load may never be seen by a slow reader.
func (a *Aggregator) Watch(ctx context.Context) <-chan []types.LaunchItem {
	return a.out.Subscribe(ctx)
}

// Current returns the latest emission.
func (a *Aggregator) Current() ([]types.LaunchItem, bool) {
	return a.out.Load()
}

// RecheckPermission samples the notification permission and feeds it into
// the next pass.
func (a *Aggregator) RecheckPermission() bool {
	granted := a.sources.Notifications.HasPermission()
	a.permission.Publish(granted)
	a.logger.Debug("Rechecked notification permission", zap.Bool("granted", granted))
	return granted
}

func (a *Aggregator) goSupervise(name string, run func()) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.logger.Debug("Source subscribed", zap.String("source", name))
		run()
		a.logger.Debug("Source unsubscribed", zap.String("source", name))
	}()
}

func newSupervisor[T any](a *Aggregator, name string, out *stream.Value[sourced[T]]) *supervisor[T] {
	return &supervisor[T]{
		name:    name,
		breaker: a.breakers[name],
		limiter: a.limiters[name],
		out:     out,
		logger:  a.logger,
		metrics: a.metrics,
	}
}

// inputs is the latest observed value of every source.
type inputs struct {
	apps       []types.AppRecord
	shortcuts  []types.ShortcutRecord
	contacts   []types.ContactRecord
	ranks      map[string]int
	renamed    map[string]string
	ignored    types.IDSet
	permission bool
	// appsLive is set once the application source itself has reported.
	appsLive bool

	hasApps, hasShortcuts, hasContacts, hasRanks, hasRenamed, hasIgnored bool
}

func (in *inputs) ready() bool {
	return in.hasApps && in.hasShortcuts && in.hasContacts && in.hasRanks && in.hasRenamed && in.hasIgnored
}

// coordinate is the single recombination point. Every pass runs here.
func (a *Aggregator) coordinate(ctx context.Context) {
	appsCh := a.apps.Subscribe(ctx)
	contactsCh := a.contacts.Subscribe(ctx)
	ranksCh := a.ranks.Subscribe(ctx)
	permissionCh := a.permission.Subscribe(ctx)
	renamedCh := a.sources.Overrides.WatchRenamed(ctx)
	ignoredCh := a.sources.Overrides.WatchIgnoredNotifications(ctx)

	var (
		in              inputs
		generation      uint64
		shortcutsCh     <-chan sourced[[]types.ShortcutRecord]
		cancelShortcuts = context.CancelFunc(func() {})
	)
	defer func() { cancelShortcuts() }()

	for {
		select {
		case <-ctx.Done():
			return

		case apps, ok := <-appsCh:
			if !ok {
				return
			}
			if in.hasApps && apps.live == in.appsLive && slices.Equal(apps.value, in.apps) {
				continue
			}
			in.apps, in.hasApps, in.appsLive = apps.value, true, apps.live

			cancelShortcuts()
			generation++
			shortcutsCh, cancelShortcuts = a.subscribeShortcuts(ctx, generation, packageIDs(apps.value))
			in.shortcuts, in.hasShortcuts = nil, false

		case recs, ok := <-shortcutsCh:
			if !ok {
				shortcutsCh = nil
				continue
			}
			in.shortcuts, in.hasShortcuts = recs.value, true

		case recs, ok := <-contactsCh:
			if !ok {
				return
			}
			in.contacts, in.hasContacts = recs.value, true

		case ranks, ok := <-ranksCh:
			if !ok {
				return
			}
			in.ranks, in.hasRanks = ranks.value, true

		case granted, ok := <-permissionCh:
			if !ok {
				return
			}
			in.permission = granted

		case renamed, ok := <-renamedCh:
			if !ok {
				return
			}
			in.renamed, in.hasRenamed = renamed, true

		case ignored, ok := <-ignoredCh:
			if !ok {
				return
			}
			in.ignored, in.hasIgnored = ignored, true
		}

		a.recompute(&in)
	}
}

// subscribeShortcuts starts a shortcut subscription for one application
// generation. Cancelling it closes the returned channel.
func (a *Aggregator) subscribeShortcuts(ctx context.Context, generation uint64, packages []string) (<-chan sourced[[]types.ShortcutRecord], context.CancelFunc) {
	subCtx, cancel := context.WithCancel(ctx)
	value := stream.NewValue[sourced[[]types.ShortcutRecord]]()
	subID := id.NewSubscriptionID()

	if generation > 1 {
		a.metrics.RecordShortcutResubscribe()
	}
	a.logger.Debug("Subscribing shortcuts",
		zap.String("subscription_id", subID.String()),
		zap.Uint64("generation", generation),
		zap.Int("packages", len(packages)))

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		newSupervisor(a, sourceShortcuts, value).run(subCtx, func(ctx context.Context, emit func([]types.ShortcutRecord)) error {
			return a.sources.Shortcuts.Watch(ctx, packages, emit)
		})
		a.logger.Debug("Shortcut subscription cancelled",
			zap.String("subscription_id", subID.String()),
			zap.Uint64("generation", generation))
	}()

	return value.Subscribe(subCtx), cancel
}

func (a *Aggregator) recompute(in *inputs) {
	if !in.ready() {
		return
	}
	a.metrics.RecordAggregation()

	// The placeholder pass belongs to the first load the application
	// source actually reported, not to the empty stand-in of a failure.
	if !a.firstLoadDone && in.appsLive {
		a.firstLoadDone = true
		a.logger.Debug("First load, emitting placeholder icons", zap.Int("applications", len(in.apps)))
		a.emit(EmissionPlaceholder, a.build(in, true))
	}
	a.emit(EmissionFull, a.build(in, false))
}

func (a *Aggregator) emit(kind string, items []types.LaunchItem) {
	if a.emitted && types.SameInfos(items, a.last) {
		a.metrics.RecordDedupSkip()
		a.logger.Debug("Catalog unchanged, skipping emission", zap.String("kind", kind))
		return
	}
	a.last, a.emitted = items, true

	if a.observe != nil {
		a.observe(kind, items)
	}
	a.out.Publish(items)
	a.metrics.RecordEmission(kind, len(items))
}

// build produces one pass: applications, contacts, shortcuts, then the
// settings entry. Duplicate ids keep the first occurrence.
func (a *Aggregator) build(in *inputs, placeholder bool) []types.LaunchItem {
	items := make([]types.LaunchItem, 0, len(in.apps)+len(in.contacts)+len(in.shortcuts)+1)
	seen := make(map[string]struct{}, cap(items))
	add := func(item types.LaunchItem) {
		itemID := item.Info().ID
		if _, dup := seen[itemID]; dup {
			a.logger.Debug("Dropping duplicate item", zap.String("item_id", itemID))
			return
		}
		seen[itemID] = struct{}{}
		items = append(items, item)
	}

	for _, rec := range in.apps {
		app := types.NewApplication(rec)
		if placeholder {
			app.Icon = types.PlaceholderIcon
		}
		applyLabel(&app.ItemInfo, in.renamed)
		app.IgnoreNotifications = in.ignored.Has(app.ID)
		if in.permission && !app.IgnoreNotifications {
			if rank, ok := in.ranks[rec.Component.Package]; ok {
				app.NotificationRank, app.HasNotificationRank = rank, true
			}
		}
		add(app)
	}
	for _, rec := range in.contacts {
		contact := types.NewContact(rec)
		applyLabel(&contact.ItemInfo, in.renamed)
		add(contact)
	}
	for _, rec := range in.shortcuts {
		shortcut := types.NewShortcut(rec)
		applyLabel(&shortcut.ItemInfo, in.renamed)
		add(shortcut)
	}
	add(types.NewSettingsEntry(a.cfg.SettingsIcon))

	return items
}

func applyLabel(info *types.ItemInfo, renamed map[string]string) {
	label, ok := renamed[info.ID]
	if !ok || strings.TrimSpace(label) == "" {
		return
	}
	info.Label = label
	info.Renamed = true
}

// packageIDs returns the distinct packages of apps in first-seen order.
func packageIDs(apps []types.AppRecord) []string {
	seen := make(map[string]struct{}, len(apps))
	out := make([]string, 0, len(apps))
	for _, rec := range apps {
		pkg := rec.Component.Package
		if _, ok := seen[pkg]; ok {
			continue
		}
		seen[pkg] = struct{}{}
		out = append(out, pkg)
	}
	return out
}
