package ranking

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/catalog/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/catalog/internal/shared/stream"
	"github.com/GriffinCanCode/AgentOS/catalog/internal/shared/types"
	"github.com/GriffinCanCode/AgentOS/catalog/internal/shared/utils"
)

var ErrAlreadyStarted = errors.New("pipeline already started")

// CatalogSource streams the aggregated catalog.
type CatalogSource interface {
	Watch(ctx context.Context) <-chan []types.LaunchItem
}

// CounterSource streams the usage counters.
type CounterSource interface {
	Watch(ctx context.Context) <-chan map[string]types.Counter
}

// HiddenSource streams the soft-deleted ids.
type HiddenSource interface {
	WatchDeleted(ctx context.Context) <-chan types.IDSet
}

// Pipeline keeps a ranked Result current. Nothing is emitted until the
// catalog, counters and hidden set have each reported once.
type Pipeline struct {
	catalog  CatalogSource
	counters CounterSource
	hidden   HiddenSource
	headSize int

	query *stream.Value[string]
	out   *stream.Value[Result]

	mu     sync.RWMutex
	lookup map[string]types.LaunchItem

	logger  *zap.Logger
	metrics *monitoring.Metrics

	lifecycle sync.Mutex
	started   bool
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

// NewPipeline creates a pipeline. A non-positive headSize uses DefaultHeadSize.
func NewPipeline(catalog CatalogSource, counters CounterSource, hidden HiddenSource, headSize int, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	if headSize <= 0 {
		headSize = DefaultHeadSize
	}
	return &Pipeline{
		catalog:  catalog,
		counters: counters,
		hidden:   hidden,
		headSize: headSize,
		query:    stream.NewValueOf(""),
		out:      stream.NewValue[Result](),
		lookup:   make(map[string]types.LaunchItem),
		logger:   logger.Named("ranking"),
	}
}

// WithMetrics adds metrics tracking to the pipeline
func (p *Pipeline) WithMetrics(metrics *monitoring.Metrics) *Pipeline {
	p.metrics = metrics
	return p
}

// Start subscribes the inputs and begins ranking. It returns immediately.
func (p *Pipeline) Start(ctx context.Context) error {
	p.lifecycle.Lock()
	defer p.lifecycle.Unlock()
	if p.started {
		return ErrAlreadyStarted
	}
	p.started = true

	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.run(ctx)
	}()
	return nil
}

// Close stops ranking and waits for the loop to exit.
func (p *Pipeline) Close() {
	p.lifecycle.Lock()
	cancel := p.cancel
	p.lifecycle.Unlock()

	if cancel != nil {
		cancel()
	}
	p.wg.Wait()
}

// SetQuery replaces the filter query.
func (p *Pipeline) SetQuery(query string) error {
	if err := utils.ValidateQuery(query); err != nil {
		return err
	}
	p.query.Publish(query)
	return nil
}

// Query returns the current filter query.
func (p *Pipeline) Query() string {
	query, _ := p.query.Load()
	return query
}

// Watch streams ranked results, starting with the latest one if any.
func (p *Pipeline) Watch(ctx context.Context) <-chan Result {
	return p.out.Subscribe(ctx)
}

// Current returns the latest ranked result.
func (p *Pipeline) Current() (Result, bool) {
	return p.out.Load()
}

// Lookup finds an item of the latest catalog by id, ignoring the query and
// the hidden set. The item carries its deprioritized stamp.
func (p *Pipeline) Lookup(itemID string) (types.LaunchItem, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	item, ok := p.lookup[itemID]
	return item, ok
}

func (p *Pipeline) run(ctx context.Context) {
	catalogCh := p.catalog.Watch(ctx)
	countersCh := p.counters.Watch(ctx)
	hiddenCh := p.hidden.WatchDeleted(ctx)
	queryCh := p.query.Subscribe(ctx)

	var (
		in                                     Input
		hasCatalog, hasCounters, hasHidden, ok bool
	)

	for {
		select {
		case <-ctx.Done():
			return
		case in.Catalog, ok = <-catalogCh:
			hasCatalog = true
		case in.Counters, ok = <-countersCh:
			hasCounters = true
		case in.Hidden, ok = <-hiddenCh:
			hasHidden = true
		case in.Query, ok = <-queryCh:
		}
		if !ok {
			return
		}
		if !hasCatalog || !hasCounters || !hasHidden {
			continue
		}
		p.evaluate(in)
	}
}

func (p *Pipeline) evaluate(in Input) {
	start := time.Now()

	stamped := Stamp(in.Catalog, in.Counters)
	lookup := make(map[string]types.LaunchItem, len(stamped))
	for _, item := range stamped {
		lookup[item.Info().ID] = item
	}
	p.mu.Lock()
	p.lookup = lookup
	p.mu.Unlock()

	result := rankStamped(stamped, in, p.headSize)
	p.out.Publish(result)

	p.metrics.RecordRanking(time.Since(start), len(result.Items))
	p.logger.Debug("Ranked catalog",
		zap.Int("catalog", len(in.Catalog)),
		zap.Int("results", len(result.Items)),
		zap.Bool("search_empty", result.SearchEmptyWithQuery))
}
