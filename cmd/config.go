package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"gallery.GO/config"
	"gallery.GO/core/logger"
	configRepo "gallery.GO/model/repository/config"
	"gallery.GO/service/colorgallery"
)

var (
	openConfigDB = config.NewDB
	// afterConfigSet drops cached documents built from the old value.
	afterConfigSet = func(ctx context.Context, db *gorm.DB) {
		if svc, err := colorgallery.ForDB(db); err == nil {
			svc.InvalidateCaches(ctx)
		}
	}
)

func newConfigSetCmd() *cobra.Command {
	var storeID uint16
	c := &cobra.Command{
		Use:          "config:set <path> <value>",
		Short:        "Store a color gallery setting in core_config_data",
		Example:      "  gallery config:set rollpix_gallery/stock/out_of_stock_behavior dim --store 2",
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE: func(c *cobra.Command, args []string) error {
			path, value := args[0], args[1]
			if !strings.HasPrefix(path, config.SettingsPathPrefix+"/") {
				return fmt.Errorf("path %q is outside %s/", path, config.SettingsPathPrefix)
			}
			key := path[strings.LastIndex(path, "/")+1:]
			if err := config.CheckSetting(key, value); err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			db, err := openConfigDB()
			if err != nil {
				return err
			}
			scope, scopeID := configRepo.ScopeDefault, 0
			if storeID != 0 {
				scope, scopeID = configRepo.ScopeStores, int(storeID)
			}
			if err := configRepo.NewConfigRepository(db).Save(c.Context(), scope, scopeID, path, value); err != nil {
				return err
			}
			afterConfigSet(c.Context(), db)
			ctx := logger.Default().WithStore(c.Context(), storeID)
			logger.Default().Info(logger.Default().WithField(ctx, "path", path), "setting saved")
			fmt.Fprintf(c.OutOrStdout(), "%s = %s (%s %d)\n", path, value, scope, scopeID)
			return nil
		},
	}
	c.Flags().Uint16VarP(&storeID, "store", "s", 0, "Store view id (0 saves the default scope)")
	return c
}

func init() {
	Register(newConfigSetCmd())
}
