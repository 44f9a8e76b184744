package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"gallery.GO/core/logger"
	"gallery.GO/cron"
	_ "gallery.GO/cron/jobs"
)

var jobName string

var cronStartCmd = &cobra.Command{
	Use:   "cron:start [args...]",
	Short: "Start the cron scheduler or run a single job by name",
	RunE: func(c *cobra.Command, args []string) error {
		log := logger.Default()
		ctx := c.Context()
		if jobName != "" {
			name := strings.ToLower(jobName)
			log.Info(log.WithField(ctx, "job", name), "running cron job")
			return cron.RunJob(name, args...)
		}
		sched, err := cron.StartCron(log)
		if err != nil {
			return err
		}
		log.Info(ctx, "cron scheduler started, waiting for SIGINT/SIGTERM")
		<-ctx.Done()
		<-sched.Stop().Done()
		log.Info(ctx, "cron scheduler stopped")
		return nil
	},
}

func init() {
	cronStartCmd.Flags().StringVarP(&jobName, "job", "j", "", "Run a single cron job by name and exit")
	Register(cronStartCmd)
}
