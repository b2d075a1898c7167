// Package jobs runs the periodic maintenance tasks of the API.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"

	"github.com/planitkids/fritids/core"
)

// NotificationPurger deletes bus notifications older than a given time.
type NotificationPurger interface {
	PurgeBefore(ctx context.Context, t time.Time) (int64, error)
}

type Scheduler struct {
	cron   *cron.Cron
	logger core.Logger
	now    func() time.Time
}

func NewScheduler(logger core.Logger) *Scheduler {
	cl := cronLogger{logger: logger}
	return &Scheduler{
		cron:   cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl))),
		logger: logger,
		now:    time.Now,
	}
}

// AddNotificationPurge schedules the deletion of notifications older than retention.
func (s *Scheduler) AddNotificationPurge(spec string, retention time.Duration, purger NotificationPurger) error {
	_, err := s.cron.AddFunc(spec, func() { s.purgeNotifications(retention, purger) })
	return errors.Wrapf(err, "scheduling notification purge %q", spec)
}

func (s *Scheduler) purgeNotifications(retention time.Duration, purger NotificationPurger) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	n, err := purger.PurgeBefore(ctx, s.now().Add(-retention))
	if err != nil {
		s.logger.Error(fmt.Sprintf("purging notifications: %v", err), err)
		return
	}
	s.logger.Info(fmt.Sprintf("purged %d notifications", n))
}

func (s *Scheduler) Start() { s.cron.Start() }

// Stop stops the scheduler and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) error {
	select {
	case <-s.cron.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// cronLogger reports the cron events through a core.Logger.
type cronLogger struct {
	logger core.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("cron: "+msg, kvMap(keysAndValues))
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("cron: "+msg, err, kvMap(keysAndValues))
}

func kvMap(keysAndValues []interface{}) map[string]interface{} {
	m := make(map[string]interface{}, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		m[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return m
}
