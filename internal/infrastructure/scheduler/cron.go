// Package scheduler drives recurring sync runs for deployments that do
// not rely on a system cron.
package scheduler

import (
	"context"
	"strconv"
	"strings"
	"time"

	"fbsync/internal/ports"
)

// CronScheduler fires the job once per day at the minute/hour of the
// configured cron expression. Only daily "m h * * *" expressions are
// honored; anything else fires immediately and then every 24 hours.
type CronScheduler struct {
	spec string
	loc  *time.Location
	stop chan struct{}
}

var _ ports.Scheduler = (*CronScheduler)(nil)

// NewCronScheduler builds a scheduler from a cron expression string.
func NewCronScheduler(spec string, loc *time.Location) *CronScheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &CronScheduler{spec: spec, loc: loc}
}

// Start begins firing the job; returns immediately.
func (c *CronScheduler) Start(ctx context.Context, job func(time.Time)) error {
	if job == nil {
		return nil
	}

	if c.stop != nil {
		return nil
	}

	c.stop = make(chan struct{})
	go func() {
		timer := time.NewTimer(untilNext(c.spec, time.Now().In(c.loc)))
		defer timer.Stop()

		select {
		case t := <-timer.C:
			job(t)
		case <-ctx.Done():
			return
		case <-c.stop:
			return
		}

		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case t := <-ticker.C:
				job(t)
			case <-ctx.Done():
				return
			case <-c.stop:
				return
			}
		}
	}()

	return nil
}

// Stop halts the scheduling goroutine.
func (c *CronScheduler) Stop(ctx context.Context) error {
	if c.stop == nil {
		return nil
	}
	close(c.stop)
	c.stop = nil
	return nil
}

// untilNext returns the wait before the next daily firing time. Zero
// when the expression is not a plain daily one.
func untilNext(spec string, now time.Time) time.Duration {
	fields := strings.Fields(spec)
	if len(fields) != 5 || fields[2] != "*" || fields[3] != "*" || fields[4] != "*" {
		return 0
	}

	minute, err := strconv.Atoi(fields[0])
	if err != nil || minute < 0 || minute > 59 {
		return 0
	}
	hour, err := strconv.Atoi(fields[1])
	if err != nil || hour < 0 || hour > 23 {
		return 0
	}

	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(now)
}
