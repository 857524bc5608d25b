// Package ingest runs background jobs inside the server process: periodic
// route regeneration and the nightly content mirror.
package ingest

import (
	"context"
	"expert-api/internal/logger"
	"time"
)

// Job is one scheduled unit of work. Errors are logged and the schedule
// continues.
type Job func(ctx context.Context) error

// nextDailyAt returns the next occurrence of hour:00 in loc strictly after now.
func nextDailyAt(now time.Time, loc *time.Location, hour int) time.Time {
	now = now.In(loc)
	t := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, loc)
	if !t.After(now) {
		t = t.AddDate(0, 0, 1)
	}
	return t
}

// StartEvery runs job every interval until ctx is cancelled. The first run
// happens one interval after the call.
func StartEvery(ctx context.Context, name string, every time.Duration, job Job) {
	if every <= 0 {
		return
	}
	l := logger.L()
	go func() {
		tk := time.NewTicker(every)
		defer tk.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-tk.C:
				run(ctx, name, job)
			}
		}
	}()
	l.Info("schedule_start", "job", name, "every", every.String())
}

// StartDaily runs job once a day at hour:00 in loc until ctx is cancelled.
func StartDaily(ctx context.Context, name string, loc *time.Location, hour int, job Job) {
	if loc == nil {
		loc = time.UTC
	}
	next := nextDailyAt(time.Now(), loc, hour)
	logger.L().Info("schedule_start", "job", name, "next", next)
	go func() {
		for {
			t := time.NewTimer(time.Until(next))
			select {
			case <-ctx.Done():
				t.Stop()
				return
			case <-t.C:
			}
			run(ctx, name, job)
			next = nextDailyAt(time.Now(), loc, hour)
		}
	}()
}

func run(ctx context.Context, name string, job Job) {
	l := logger.L()
	t0 := time.Now()
	l.Info("job_start", "job", name)
	if err := job(ctx); err != nil {
		l.Error("job_error", "job", name, "err", err)
		return
	}
	l.Info("job_done", "job", name, "duration_ms", time.Since(t0).Milliseconds())
}
