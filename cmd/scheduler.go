package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Abhishek-kmr525/admin.freereminders.net-sub000/automation/application"
	"github.com/Abhishek-kmr525/admin.freereminders.net-sub000/automation/domain"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// cronLogger routes robfig/cron messages through logrus.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logrus.WithFields(kvFields(keysAndValues)).Debug("[CRON] " + msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	logrus.WithError(err).WithFields(kvFields(keysAndValues)).Error("[CRON] " + msg)
}

func kvFields(kv []interface{}) logrus.Fields {
	fields := logrus.Fields{}
	for i := 0; i+1 < len(kv); i += 2 {
		fields[fmt.Sprint(kv[i])] = kv[i+1]
	}
	return fields
}

// newScheduler registers the periodic triggers: dispatch cycles, horizon
// extension and the stale-claim watchdog. Overlapping runs of the same job
// are skipped.
func newScheduler(ctx context.Context, app *appContainer) (*cron.Cron, error) {
	logger := cronLogger{}
	c := cron.New(
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)

	cfg := app.cfg.Scheduler
	jobs := []struct {
		name string
		expr string
		run  func()
	}{
		{"dispatch", cfg.DispatchCron, func() { runDispatchJob(ctx, app) }},
		{"horizon", cfg.HorizonCron, func() { runHorizonJob(ctx, app) }},
		{"requeue", cfg.RequeueCron, func() { runRequeueJob(ctx, app) }},
	}
	for _, job := range jobs {
		if job.expr == "" || job.expr == "-" {
			logrus.Infof("[CRON] %s job disabled", job.name)
			continue
		}
		if _, err := c.AddFunc(job.expr, job.run); err != nil {
			return nil, fmt.Errorf("schedule %s job %q: %w", job.name, job.expr, err)
		}
		logrus.Infof("[CRON] %s job scheduled (%s)", job.name, job.expr)
	}
	return c, nil
}

func runDispatchJob(ctx context.Context, app *appContainer) {
	res, err := app.dispatcher.RunOnce(ctx)
	switch {
	case errors.Is(err, domain.ErrCycleInProgress):
		logrus.Debug("[CRON] dispatch cycle still running, skipping tick")
	case err != nil:
		logrus.WithError(err).Error("[CRON] dispatch cycle failed")
	case res.Outcome == application.CycleProcessed:
		logrus.Debugf("[CRON] dispatch cycle processed %d posts in %s", res.Claimed, res.Duration.Round(time.Millisecond))
	}
}

func runHorizonJob(ctx context.Context, app *appContainer) {
	if _, err := app.service.ExtendHorizons(ctx); err != nil {
		logrus.WithError(err).Error("[CRON] horizon extension failed")
	}
}

func runRequeueJob(ctx context.Context, app *appContainer) {
	if _, err := app.dispatcher.RequeueStale(ctx); err != nil {
		logrus.WithError(err).Error("[CRON] stale claim requeue failed")
	}
}
