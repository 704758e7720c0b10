package agent

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// CycleRunner performs one poll cycle.
type CycleRunner interface {
	Run(ctx context.Context) error
}

// Scheduler runs a cycle immediately and then once per interval.
//
// Every trigger starts its cycle on a new goroutine, so a slow cycle never
// delays the next tick and two cycles may be in flight at once. Missed ticks
// are dropped, not caught up.
type Scheduler struct {
	cycle    CycleRunner
	interval time.Duration
	logger   logrus.FieldLogger

	wg sync.WaitGroup
}

func NewScheduler(cycle CycleRunner, interval time.Duration, logger logrus.FieldLogger) *Scheduler {
	return &Scheduler{
		cycle:    cycle,
		interval: interval,
		logger:   logger,
	}
}

// Run blocks until ctx is cancelled and every in-flight cycle has returned.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.trigger(ctx)

	for {
		select {
		case <-ctx.Done():
			s.wg.Wait()
			return nil
		case <-ticker.C:
			s.trigger(ctx)
		}
	}
}

func (s *Scheduler) trigger(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.cycle.Run(ctx); err != nil {
			logCycleError(s.logger, err)
		}
	}()
}
