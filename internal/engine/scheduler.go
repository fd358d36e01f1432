package engine

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"
)

// Scheduler fires a run at fixed local-time anchors every day. It arms a
// one-shot timer for the next anchor strictly after now, runs, and re-arms.
// Stop cancels the pending wait; it never interrupts an in-flight run.
type Scheduler struct {
	anchors []int
	run     func(ctx context.Context)
	logger  *slog.Logger
	clock   func() time.Time

	mu     sync.Mutex
	armed  bool
	cancel context.CancelFunc
}

// NewScheduler creates a scheduler for the given anchor hours
func NewScheduler(anchors []int, run func(ctx context.Context), logger *slog.Logger) *Scheduler {
	hours := make([]int, len(anchors))
	copy(hours, anchors)
	sort.Ints(hours)
	return &Scheduler{
		anchors: hours,
		run:     run,
		logger:  logger,
		clock:   time.Now,
	}
}

// Start arms the scheduler loop. Starting an armed scheduler is a no-op.
func (s *Scheduler) Start(parent context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.armed {
		return
	}

	ctx, cancel := context.WithCancel(parent)
	s.cancel = cancel
	s.armed = true

	go s.loop(parent, ctx)

	s.logger.Info("scheduler started", slog.Any("anchors", s.anchors))
}

// Stop cancels the pending timer and clears running state
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.armed {
		return
	}
	s.cancel()
	s.cancel = nil
	s.armed = false
	s.logger.Info("scheduler stopped")
}

// Armed reports whether a timer is pending
func (s *Scheduler) Armed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.armed
}

// loop waits on waitCtx so Stop can cancel the pending timer, but fires the
// run under parent: a stopped scheduler lets a sweep already in flight finish.
func (s *Scheduler) loop(parent, waitCtx context.Context) {
	for {
		now := s.clock()
		delay := nextAnchorDelay(now, s.anchors)
		s.logger.Info("next sweep armed",
			slog.Time("at", now.Add(delay)),
			slog.Duration("in", delay),
		)

		timer := time.NewTimer(delay)
		select {
		case <-waitCtx.Done():
			timer.Stop()
			return
		case <-timer.C:
			s.run(parent)
		}

		select {
		case <-waitCtx.Done():
			return
		default:
		}
	}
}

// nextAnchorDelay computes the time until the first anchor strictly after
// now, wrapping to the first anchor of the next day when now is past the
// last anchor.
func nextAnchorDelay(now time.Time, anchors []int) time.Duration {
	for _, h := range anchors {
		next := time.Date(now.Year(), now.Month(), now.Day(), h, 0, 0, 0, now.Location())
		if next.After(now) {
			return next.Sub(now)
		}
	}

	first := time.Date(now.Year(), now.Month(), now.Day(), anchors[0], 0, 0, 0, now.Location()).AddDate(0, 0, 1)
	return first.Sub(now)
}
