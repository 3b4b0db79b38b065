// Package scheduler runs the periodic expiry sweep over AVAILABLE donations.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const sweepTimeout = time.Minute

// Expirer is implemented by *matching.Engine.
type Expirer interface {
	ExpireDonations(ctx context.Context, now time.Time) (int, error)
}

type Scheduler struct {
	cron    *cron.Cron
	expirer Expirer
	now     func() time.Time
}

func New(expirer Expirer) *Scheduler {
	cronLogger := cron.PrintfLogger(logrus.StandardLogger())
	return &Scheduler{
		cron:    cron.New(cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger))),
		expirer: expirer,
		now:     time.Now,
	}
}

// Start registers the sweep on schedule (standard five-field cron syntax or a
// descriptor such as "@every 15m") and starts the cron loop.
func (s *Scheduler) Start(schedule string) error {
	if _, err := s.cron.AddFunc(schedule, s.Sweep); err != nil {
		return fmt.Errorf("scheduling expiry sweep %q: %w", schedule, err)
	}
	logrus.WithField("schedule", schedule).Info("scheduled donation expiry sweep")
	s.cron.Start()
	return nil
}

// Sweep cancels expired donations once.
func (s *Scheduler) Sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	count, err := s.expirer.ExpireDonations(ctx, s.now())
	if err != nil {
		logrus.WithError(err).Error("donation expiry sweep failed")
		return
	}
	if count > 0 {
		logrus.WithField("cancelled", count).Info("expired donations cancelled")
	}
}

// Stop waits for a running sweep to finish.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}
