package watch

import (
	"context"
	"sync"
	"time"

	"github.com/JustJay7/ecourts-fetcher/pkg/logger"
)

// Scheduler calls a job on a fixed interval until its context ends. A tick
// that arrives while the previous call is still running is skipped. The job
// receives the scheduler's context and must return once it is cancelled.
type Scheduler struct {
	interval time.Duration
	job      func(ctx context.Context)
	logger   *logger.Logger

	mu      sync.Mutex
	running bool
}

func NewScheduler(interval time.Duration, job func(ctx context.Context), log *logger.Logger) *Scheduler {
	return &Scheduler{interval: interval, job: job, logger: log}
}

// Start blocks until ctx is cancelled
func (s *Scheduler) Start(ctx context.Context) {
	if s.interval <= 0 {
		s.logger.Warn("Watch scheduler disabled", "interval", s.interval.String())
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("Watch scheduler started", "interval", s.interval.String())
	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Watch scheduler stopped")
			return
		case <-ticker.C:
			if !s.claim() {
				s.logger.Warn("Previous watch pass still running, skipping tick")
				continue
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				defer s.release()
				s.job(ctx)
			}()
		}
	}
}

func (s *Scheduler) claim() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return false
	}
	s.running = true
	return true
}

func (s *Scheduler) release() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}
