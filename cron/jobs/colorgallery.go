// Package jobs registers the module's scheduled jobs. Import it for side effects.
package jobs

import (
	"context"
	"sync"
	"time"

	"gorm.io/gorm"

	"gallery.GO/config"
	"gallery.GO/core/logger"
	"gallery.GO/cron"
	"gallery.GO/service/colorgallery"
)

// PropagateJobName is runnable with `cron:start --job colorgallery_propagate [window]`.
const PropagateJobName = "colorgallery_propagate"

var openDB = sync.OnceValues(func() (*gorm.DB, error) { return config.NewDB() })

func init() {
	job := newPropagateJob(func(ctx context.Context, since time.Time) (*colorgallery.Report, error) {
		db, err := openDB()
		if err != nil {
			return nil, err
		}
		svc, err := colorgallery.ForDB(db)
		if err != nil {
			return nil, err
		}
		return svc.PropagateUpdated(ctx, since), nil
	}, time.Now, logger.Default())
	schedule := propagationSchedule(func() (config.GallerySettings, error) {
		return config.LoadBaseSettings(config.LoadAppConfig().GallerySettingsFile)
	})
	cron.Register(PropagateJobName, config.CronSchedule(PropagateJobName, schedule), job.Run)
}

// propagationSchedule reads propagation_schedule from the base settings,
// falling back to the default when they do not load.
func propagationSchedule(load func() (config.GallerySettings, error)) string {
	s, err := load()
	if err != nil || s.PropagationSchedule == "" {
		return config.DefaultGallerySettings().PropagationSchedule
	}
	return s.PropagationSchedule
}

type propagateFunc func(ctx context.Context, since time.Time) (*colorgallery.Report, error)

// propagateJob remembers when the last successful run started so each run
// covers the products updated since then. The first run looks back to
// process start.
type propagateJob struct {
	run propagateFunc
	now func() time.Time
	log *logger.Logger

	mu   sync.Mutex
	last time.Time
}

func newPropagateJob(run propagateFunc, now func() time.Time, log *logger.Logger) *propagateJob {
	return &propagateJob{run: run, now: now, log: log, last: now()}
}

// Run accepts an optional look-back window ("24h") overriding the last run time.
func (j *propagateJob) Run(args ...string) {
	j.mu.Lock()
	defer j.mu.Unlock()

	ctx := j.log.WithField(context.Background(), "job", PropagateJobName)
	started := j.now()
	since := j.last
	if len(args) > 0 {
		window, err := time.ParseDuration(args[0])
		if err != nil || window <= 0 {
			j.log.Warn(ctx, "invalid look-back window, using last run", err)
		} else {
			since = started.Add(-window)
		}
	}

	report, err := j.run(ctx, since)
	if err != nil {
		j.log.Error(ctx, "automatic propagation not started", err)
		return
	}
	ctx = j.log.WithField(ctx, "run_id", report.RunID)
	ctx = j.log.WithField(ctx, "children_changed", report.Counts.ChildrenChanged)
	if report.HasErrors() {
		j.log.Error(ctx, "automatic propagation finished with errors", report.Err())
		return
	}
	j.last = started
	j.log.Info(ctx, "automatic propagation finished")
}
