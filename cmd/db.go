package cmd

import (
	"github.com/spf13/cobra"

	"gallery.GO/config"
	"gallery.GO/core/logger"
)

var dbMigrateCmd = &cobra.Command{
	Use:   "db:migrate",
	Short: "Apply schema migrations (adds the media color tag column)",
	RunE: func(c *cobra.Command, args []string) error {
		db, err := config.NewDB()
		if err != nil {
			return err
		}
		if err := config.Migrate(db); err != nil {
			return err
		}
		logger.Default().Info(c.Context(), "schema up to date")
		return nil
	},
}

func init() {
	Register(dbMigrateCmd)
}
