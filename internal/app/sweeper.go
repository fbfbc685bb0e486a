package app

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Sweeper periodically force-ends sessions whose admin walked away. Without
// it an abandoned session stays active forever and keeps its game locked.
type Sweeper struct {
	service  *Service
	logger   *zap.Logger
	idleTTL  time.Duration
	interval time.Duration
}

func NewSweeper(service *Service, logger *zap.Logger, idleTTL, interval time.Duration) *Sweeper {
	return &Sweeper{
		service:  service,
		logger:   logger,
		idleTTL:  idleTTL,
		interval: interval,
	}
}

// Run sweeps until ctx is canceled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			ended := s.service.EndExpired(ctx, s.idleTTL)
			if len(ended) > 0 {
				s.logger.Info("ended idle sessions",
					zap.Int64s("sessions", ended),
					zap.Duration("idle_ttl", s.idleTTL))
			}
		}
	}
}
