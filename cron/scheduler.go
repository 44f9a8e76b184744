package cron

import (
	"context"
	"fmt"
	"sort"

	"github.com/robfig/cron/v3"

	"gallery.GO/core/logger"
)

// StartCron schedules every registered job and starts the scheduler. A job
// still running when its next tick fires is skipped for that tick.
func StartCron(log *logger.Logger) (*cron.Cron, error) {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	jobs := Jobs()
	names := make([]string, 0, len(jobs))
	for name := range jobs {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		j := jobs[name]
		ctx := log.WithField(context.Background(), "job", name)
		run := j.Run
		if _, err := c.AddFunc(j.Schedule, func() {
			defer func() {
				if r := recover(); r != nil {
					log.Error(ctx, "cron job panicked", fmt.Errorf("%v", r))
				}
			}()
			run()
		}); err != nil {
			return nil, fmt.Errorf("register job %s (%q): %w", name, j.Schedule, err)
		}
		log.Info(log.WithField(ctx, "schedule", j.Schedule), "cron job scheduled")
	}
	c.Start()
	return c, nil
}

// RunJob runs one registered job synchronously.
func RunJob(name string, args ...string) error {
	j, ok := Jobs()[name]
	if !ok {
		return fmt.Errorf("unknown job: %s", name)
	}
	j.Run(args...)
	return nil
}
