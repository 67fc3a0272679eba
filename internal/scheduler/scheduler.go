package scheduler

import (
	"context"
	"fmt"
	"time"

	"SignalBoard/internal/portfolio"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Scheduler drives the recurring portfolio poll. The schedule is bound to
// the owning context: Stop (or context cancellation) guarantees no further
// snapshot mutation after teardown.
type Scheduler struct {
	cron   *cron.Cron
	poller *portfolio.Poller
	log    *logrus.Logger
	ctx    context.Context
}

// NewScheduler creates a Scheduler around the given poller.
func NewScheduler(ctx context.Context, poller *portfolio.Poller, log *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(cron.WithSeconds()),
		poller: poller,
		log:    log,
		ctx:    ctx,
	}
}

// Register schedules the recurring poll at the given interval.
func (s *Scheduler) Register(every time.Duration) error {
	if every < time.Second {
		return fmt.Errorf("poll interval %s is below 1s", every)
	}
	spec := fmt.Sprintf("@every %s", every)
	if _, err := s.cron.AddFunc(spec, s.poll); err != nil {
		return fmt.Errorf("register poll task: %w", err)
	}
	return nil
}

// Start performs the initial poll and starts the recurring schedule.
func (s *Scheduler) Start() {
	go s.poll()
	s.cron.Start()
	s.log.Info("scheduler started")
}

// Stop cancels the recurring schedule. In-flight polls finish; no new ones
// are started.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.log.Info("scheduler stopped")
}

func (s *Scheduler) poll() {
	if s.ctx.Err() != nil {
		return
	}
	// Refresh logs its own failures; poll errors never reach the user.
	_ = s.poller.Refresh(s.ctx)
}
