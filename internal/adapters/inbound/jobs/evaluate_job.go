// Package jobs holds background schedules started by long-running commands.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/choidage/daker/internal/logging"
)

// Evaluator asks the dashboard to evaluate its alert rules.
type Evaluator interface {
	Evaluate(ctx context.Context) (int, error)
}

// ScheduleAlertEvaluation runs ev on spec (any robfig/cron expression,
// e.g. "@every 5m") until ctx is done. onNew is called when an evaluation
// raised alerts.
func ScheduleAlertEvaluation(ctx context.Context, ev Evaluator, spec string, timeout time.Duration, logger *logging.Logger, onNew func(n int)) (*cron.Cron, error) {
	log := logger.With("jobs")
	c := cron.New(cron.WithChain(
		cron.Recover(cron.DefaultLogger),
		cron.SkipIfStillRunning(cron.DefaultLogger),
	))

	_, err := c.AddFunc(spec, func() {
		jobCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		n, err := ev.Evaluate(jobCtx)
		if err != nil {
			log.Warnf("alert evaluation failed: %v", err)
			return
		}
		log.Debugf("alert evaluation new_alerts=%d", n)
		if n > 0 && onNew != nil {
			onNew(n)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("scheduling alert evaluation %q: %w", spec, err)
	}

	c.Start()
	go func() {
		<-ctx.Done()
		c.Stop()
	}()
	return c, nil
}
