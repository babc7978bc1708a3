package catalog

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/GriffinCanCode/AgentOS/catalog/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/catalog/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/AgentOS/catalog/internal/shared/stream"
)

// Source names used in logs and metrics
const (
	sourceApplications  = "applications"
	sourceShortcuts     = "shortcuts"
	sourceContacts      = "contacts"
	sourceNotifications = "notifications"
)

// sourced is a source value. live is false for the empty stand-in
// published when a source fails before it ever reported.
type sourced[T any] struct {
	value T
	live  bool
}

// supervisor keeps one source subscribed, publishing into out. out keeps
// the last-known value across failures.
type supervisor[T any] struct {
	name    string
	breaker *resilience.Breaker
	limiter *rate.Limiter
	out     *stream.Value[sourced[T]]
	logger  *zap.Logger
	metrics *monitoring.Metrics
}

func (s *supervisor[T]) run(ctx context.Context, watch func(ctx context.Context, emit func(T)) error) {
	emit := func(v T) { s.out.Publish(sourced[T]{value: v, live: true}) }
	for {
		err := s.breaker.Execute(ctx, func(ctx context.Context) error {
			return watch(ctx, emit)
		})
		if ctx.Err() != nil {
			return
		}

		switch {
		case errors.Is(err, resilience.ErrCircuitOpen), errors.Is(err, resilience.ErrTooManyRequests):
			s.metrics.RecordBreakerRejected(s.name)
		case err != nil:
			s.metrics.RecordSourceError(s.name)
			s.logger.Warn("Source failed, keeping last-known value",
				zap.String("source", s.name),
				zap.Error(err))
		default:
			s.logger.Debug("Source ended, resubscribing", zap.String("source", s.name))
		}

		if _, ok := s.out.Load(); !ok {
			s.out.Publish(sourced[T]{})
		}

		if err := s.limiter.Wait(ctx); err != nil {
			return
		}
	}
}
