// Package schedule re-invokes the pipeline on a fixed interval.
package schedule

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Scheduler runs a job now and then every interval. A run still in progress
// when the next tick fires makes that tick a no-op.
type Scheduler struct {
	cron     *cron.Cron
	interval time.Duration
	log      logrus.FieldLogger
}

// New creates a scheduler for interval (rounded down to whole seconds)
func New(interval time.Duration, log logrus.FieldLogger) (*Scheduler, error) {
	if interval < time.Second {
		return nil, fmt.Errorf("interval must be at least one second, got %s", interval)
	}
	logger := cronLogger{log: log}
	c := cron.New(
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	return &Scheduler{cron: c, interval: interval.Truncate(time.Second), log: log}, nil
}

// Spec is the cron expression used for the interval
func (s *Scheduler) Spec() string {
	return "@every " + s.interval.String()
}

// Run calls job immediately, then on every tick until ctx is cancelled. It
// waits for a running job to finish before returning.
func (s *Scheduler) Run(ctx context.Context, job func(context.Context)) error {
	id, err := s.cron.AddJob(s.Spec(), cron.FuncJob(func() { job(ctx) }))
	if err != nil {
		return fmt.Errorf("failed to schedule job: %w", err)
	}

	s.log.WithField("spec", s.Spec()).Info("scheduler started")
	// the first run goes through the chain too, so a slow first run makes
	// the early ticks skip instead of overlapping it
	wrapped := s.cron.Entry(id).WrappedJob
	var first sync.WaitGroup
	first.Add(1)
	go func() {
		defer first.Done()
		wrapped.Run()
	}()
	s.cron.Start()

	<-ctx.Done()
	<-s.cron.Stop().Done()
	first.Wait()
	s.log.Info("scheduler stopped")
	return nil
}

// cronLogger adapts logrus to cron.Logger
type cronLogger struct {
	log logrus.FieldLogger
}

func (l cronLogger) fields(keysAndValues []any) logrus.Fields {
	fields := logrus.Fields{}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return fields
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.WithFields(l.fields(keysAndValues)).Debugf("cron: %s", msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.WithFields(l.fields(keysAndValues)).WithError(err).Errorf("cron: %s", msg)
}
