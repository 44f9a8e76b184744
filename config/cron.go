package config

import "strings"

// CronSchedule returns the schedule for a registered job, overridable with
// CRON_SCHEDULE_<NAME>.
func CronSchedule(name, def string) string {
	return GetEnv("CRON_SCHEDULE_"+strings.ToUpper(name), def)
}
