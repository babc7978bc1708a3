package usage

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/catalog/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/catalog/internal/shared/stream"
	"github.com/GriffinCanCode/AgentOS/catalog/internal/shared/types"
	"github.com/GriffinCanCode/AgentOS/catalog/internal/storage"
)

// TableName is the storage table holding counter records.
const TableName = "counters"

// Config tunes the recency boost.
type Config struct {
	// BoostWeight multiplies the decayed short-term count in the combined score.
	BoostWeight float64
	// ShortTermHalfLife is the time after which the short-term count halves.
	ShortTermHalfLife time.Duration
	// RefreshInterval is how often Watch re-emits so decayed scores follow
	// the clock between launches.
	RefreshInterval time.Duration
}

// DefaultConfig returns the default boost settings.
func DefaultConfig() Config {
	return Config{
		BoostWeight:       2.0,
		ShortTermHalfLife: 72 * time.Hour,
		RefreshInterval:   time.Hour,
	}
}

// record is the persisted form of a counter.
type record struct {
	ShortTerm     uint  `json:"short_term"`
	LongTerm      uint  `json:"long_term"`
	LastLaunch    int64 `json:"last_launch_ms,omitempty"`
	Deprioritized bool  `json:"deprioritized,omitempty"`
}

func (r record) empty() bool {
	return r.ShortTerm == 0 && r.LongTerm == 0 && !r.Deprioritized
}

// Store persists per-item usage counters.
type Store struct {
	table   *storage.Table
	cfg     Config
	now     func() time.Time
	logger  *zap.Logger
	metrics *monitoring.Metrics
}

// NewStore loads the counter table from kv.
func NewStore(ctx context.Context, kv storage.Store, cfg Config, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ShortTermHalfLife <= 0 {
		cfg.ShortTermHalfLife = DefaultConfig().ShortTermHalfLife
	}
	if cfg.RefreshInterval <= 0 {
		cfg.RefreshInterval = DefaultConfig().RefreshInterval
	}

	table, err := storage.NewTable(ctx, kv, TableName)
	if err != nil {
		return nil, fmt.Errorf("open usage store: %w", err)
	}

	return &Store{
		table:  table,
		cfg:    cfg,
		now:    time.Now,
		logger: logger.Named("usage"),
	}, nil
}

// WithClock replaces the time source
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// WithMetrics adds metrics tracking to the store
func (s *Store) WithMetrics(metrics *monitoring.Metrics) *Store {
	s.metrics = metrics
	return s
}

// RecordLaunch counts one launch of itemID. Deprioritized items do not
// accumulate usage.
func (s *Store) RecordLaunch(ctx context.Context, itemID string) error {
	if itemID == "" {
		return types.ErrEmptyID
	}

	now := s.now()
	recorded := false
	err := s.update(ctx, itemID, func(rec record) record {
		if rec.Deprioritized {
			return rec
		}
		decayed := s.decay(rec.ShortTerm, rec.LastLaunch, now)
		rec.ShortTerm = uint(math.Round(decayed)) + 1
		rec.LongTerm++
		rec.LastLaunch = now.UnixMilli()
		recorded = true
		return rec
	})
	if err != nil {
		return err
	}

	if recorded {
		s.metrics.IncLaunchesRecorded()
		s.logger.Debug("Recorded launch", zap.String("item_id", itemID))
	}
	return nil
}

// Deprioritize moves itemID to the deprioritized state, keeping its counts.
func (s *Store) Deprioritize(ctx context.Context, itemID string) error {
	if itemID == "" {
		return types.ErrEmptyID
	}
	return s.update(ctx, itemID, func(rec record) record {
		rec.Deprioritized = true
		return rec
	})
}

// Undeprioritize restores itemID to the normal state with its previous counts.
func (s *Store) Undeprioritize(ctx context.Context, itemID string) error {
	if itemID == "" {
		return types.ErrEmptyID
	}
	return s.update(ctx, itemID, func(rec record) record {
		rec.Deprioritized = false
		return rec
	})
}

// ToggleDeprioritized flips the deprioritized state of itemID in one
// read-modify-write and returns the new state.
func (s *Store) ToggleDeprioritized(ctx context.Context, itemID string) (bool, error) {
	if itemID == "" {
		return false, types.ErrEmptyID
	}
	var deprioritized bool
	err := s.update(ctx, itemID, func(rec record) record {
		rec.Deprioritized = !rec.Deprioritized
		deprioritized = rec.Deprioritized
		return rec
	})
	if err != nil {
		return false, err
	}
	return deprioritized, nil
}

// Counter returns the current counter of itemID. Unknown ids yield the
// neutral zero counter.
func (s *Store) Counter(itemID string) types.Counter {
	raw, ok := s.table.Get(itemID)
	if !ok {
		return types.Counter{}
	}
	rec, err := decode(raw)
	if err != nil {
		return types.Counter{}
	}
	return s.toCounter(rec, s.now())
}

// Snapshot returns every known counter.
func (s *Store) Snapshot() map[string]types.Counter {
	return s.counters(s.table.Snapshot())
}

// Watch streams the counter map on every change, starting with the current
// one, and again every RefreshInterval with the scores decayed to the
// current time.
func (s *Store) Watch(ctx context.Context) <-chan map[string]types.Counter {
	return stream.Refresh(s.table.Watch(ctx), s.cfg.RefreshInterval, func(rows storage.Snapshot) map[string]types.Counter {
		return s.counters(rows)
	})
}

func (s *Store) update(ctx context.Context, itemID string, fn func(record) record) error {
	err := s.table.Update(ctx, itemID, func(raw []byte, ok bool) ([]byte, bool, error) {
		var rec record
		if ok {
			decoded, err := decode(raw)
			if err != nil {
				s.logger.Warn("Discarding unreadable counter record", zap.String("item_id", itemID), zap.Error(err))
			} else {
				rec = decoded
			}
		}

		next := fn(rec)
		if next.empty() {
			return nil, false, nil
		}
		data, err := sonic.Marshal(next)
		if err != nil {
			return nil, false, fmt.Errorf("encode counter: %w", err)
		}
		return data, true, nil
	})
	if err != nil {
		return fmt.Errorf("update counter %s: %w", itemID, err)
	}
	return nil
}

func (s *Store) counters(rows storage.Snapshot) map[string]types.Counter {
	now := s.now()
	out := make(map[string]types.Counter, len(rows))
	for itemID, raw := range rows {
		rec, err := decode(raw)
		if err != nil {
			continue
		}
		out[itemID] = s.toCounter(rec, now)
	}
	return out
}

func (s *Store) toCounter(rec record, now time.Time) types.Counter {
	if rec.Deprioritized {
		return types.DeprioritizedCounter()
	}
	decayed := s.decay(rec.ShortTerm, rec.LastLaunch, now)
	return types.NormalCounter(rec.ShortTerm, rec.LongTerm, float64(rec.LongTerm)+s.cfg.BoostWeight*decayed)
}

// decay halves shortTerm for every half-life elapsed since lastLaunchMs.
func (s *Store) decay(shortTerm uint, lastLaunchMs int64, now time.Time) float64 {
	if shortTerm == 0 || lastLaunchMs == 0 {
		return float64(shortTerm)
	}
	elapsed := now.Sub(time.UnixMilli(lastLaunchMs))
	if elapsed <= 0 {
		return float64(shortTerm)
	}
	return float64(shortTerm) * math.Pow(0.5, float64(elapsed)/float64(s.cfg.ShortTermHalfLife))
}

func decode(raw []byte) (record, error) {
	var rec record
	if err := sonic.Unmarshal(raw, &rec); err != nil {
		return record{}, err
	}
	return rec, nil
}
