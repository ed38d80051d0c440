package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"comparteride/api/internal/repository"
)

// Sweeper periodically closes rides whose arrival date has passed. It runs on
// its own timer, independent of request handling; join/update re-validate the
// active flag inside their own transactions, so racing with the sweep is safe.
type Sweeper struct {
	rides    repository.RideRepository
	interval time.Duration
	logger   *zap.Logger
}

func NewSweeper(rides repository.RideRepository, interval time.Duration, logger *zap.Logger) *Sweeper {
	if interval <= 0 {
		interval = 20 * time.Minute
	}
	return &Sweeper{rides: rides, interval: interval, logger: logger}
}

// Run blocks until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("ride sweeper started", zap.Duration("interval", s.interval))
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("ride sweeper stopped")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	closed, err := s.rides.DeactivateArrived(ctx, time.Now())
	if err != nil {
		s.logger.Error("ride sweep failed", zap.Error(err))
		return
	}
	if closed > 0 {
		s.logger.Info("rides closed", zap.Int64("count", closed))
	}
}
