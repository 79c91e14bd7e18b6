package clock

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/adserve-labs/adengine/internal/models"
	"github.com/adserve-labs/adengine/internal/observability"
)

// Store persists the simulated day across restarts.
type Store interface {
	LoadDay(ctx context.Context) (uint32, error)
	SaveDay(ctx context.Context, day uint32) error
}

// AdvanceHook runs after the day moves forward, before the new day is
// acknowledged to the caller. Used to rebuild the active-campaign cache.
type AdvanceHook func(ctx context.Context, day uint32) error

// Service owns the simulated integer-day clock. The current day is held
// in an atomic so the hot serve path reads it without locking; Postgres
// keeps the durable copy.
type Service struct {
	day     atomic.Uint32
	store   Store
	hook    AdvanceHook
	metrics observability.MetricsRegistry
}

// NewService loads the persisted day and returns the running clock.
func NewService(ctx context.Context, store Store, hook AdvanceHook, metrics observability.MetricsRegistry) (*Service, error) {
	day, err := store.LoadDay(ctx)
	if err != nil {
		return nil, err
	}
	s := &Service{store: store, hook: hook, metrics: metrics}
	s.day.Store(day)
	metrics.SetCurrentDay(day)
	return s, nil
}

// Now returns the current simulated day.
func (s *Service) Now() uint32 {
	return s.day.Load()
}

// Advance moves the clock to day. Time only moves forward: a smaller day
// is a validation error, the same day is an acknowledged no-op. On a real
// advance the hook runs before the new day is returned, so callers see a
// cache consistent with the day they were told.
func (s *Service) Advance(ctx context.Context, day uint32) (uint32, error) {
	current := s.day.Load()
	if day < current {
		return current, models.NewValidation("current_date must not move backwards")
	}
	if day == current {
		return current, nil
	}

	if err := s.store.SaveDay(ctx, day); err != nil {
		return current, err
	}
	s.day.Store(day)
	s.metrics.SetCurrentDay(day)
	zap.L().Info("advanced simulated day", zap.Uint32("from", current), zap.Uint32("to", day))

	if s.hook != nil {
		if err := s.hook(ctx, day); err != nil {
			return day, err
		}
	}
	return day, nil
}
