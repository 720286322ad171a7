package jobs

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// Extender is the part of the scheduler the horizon job drives.
type Extender interface {
	ExtendHorizon(ctx context.Context) (int, error)
}

// HorizonJob keeps recurring classes materialized ahead of today.
type HorizonJob struct {
	Extender Extender
	Timeout  time.Duration
}

// Run is one pass; exported so boot and tests can call it directly.
func (j HorizonJob) Run(ctx context.Context) (int, error) {
	timeout := j.Timeout
	if timeout <= 0 {
		timeout = 4 * time.Minute
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	n, err := j.Extender.ExtendHorizon(ctx)
	if err != nil {
		log.Printf("[HORIZON] error after %d instances: %v", n, err)
		return n, err
	}
	log.Printf("[HORIZON] created=%d dur=%s", n, time.Since(start))
	return n, nil
}

// StartHorizonCron schedules Run on spec (standard 5-field cron) in loc.
// The caller stops the returned cron on shutdown.
func StartHorizonCron(job HorizonJob, spec string, loc *time.Location) (*cron.Cron, error) {
	if loc == nil {
		loc = time.UTC
	}
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithChain(cron.Recover(cron.DefaultLogger), cron.SkipIfStillRunning(cron.DefaultLogger)),
	)
	if _, err := c.AddFunc(spec, func() {
		_, _ = job.Run(context.Background())
	}); err != nil {
		return nil, fmt.Errorf("horizon cron %q: %w", spec, err)
	}
	log.Printf("[HORIZON] started schedule=%q tz=%s", spec, loc)
	c.Start()
	return c, nil
}
