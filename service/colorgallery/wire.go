package colorgallery

import (
	"context"
	"errors"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	"gallery.GO/config"
	"gallery.GO/core/cache"
	"gallery.GO/core/logger"
	"gallery.GO/core/metrics"
	catalogRepo "gallery.GO/model/repository/catalog"
	configRepo "gallery.GO/model/repository/config"
	galleryRepo "gallery.GO/model/repository/gallery"
	inventoryRepo "gallery.GO/model/repository/inventory"
)

// Build wires a Service over db: gorm repositories, store settings from
// core_config_data, the MSI/legacy salability chain and the document cache.
func Build(db *gorm.DB, app *config.Config, reg prometheus.Registerer, log *logger.Logger) (*Service, error) {
	if db == nil {
		return nil, errNoDB
	}
	if log == nil {
		log = logger.Default()
	}
	base, err := config.LoadBaseSettings(app.GallerySettingsFile)
	if err != nil {
		log.Warn(context.Background(), "gallery settings invalid, using defaults", err)
	}
	memo := cache.GetInstance()
	settings := config.NewStoreSettings(base, configRepo.NewConfigRepository(db), memo, func(storeID uint16, err error) {
		log.Warn(log.WithStore(context.Background(), storeID), "store settings overlay ignored", err)
	})

	msiAvailable := inventoryRepo.ProbeMSI(db)
	stock := NewSalabilityChain(log, msiAvailable, inventoryRepo.NewMSIRepository(db), inventoryRepo.NewLegacyRepository(db))
	catalog := catalogRepo.NewCatalogRepository(db)

	return NewService(Deps{
		Settings: settings,
		Catalog:  catalog,
		Graph:    catalog,
		Products: catalog,
		Store:    galleryRepo.NewMediaRepository(db),
		Stock:    stock,
		Docs:     config.DocumentCache(base.ConfigCacheTTL),
		Memo:     memo,
		Metrics:  metrics.NewGalleryMetrics(reg),
		Log:      log,
	}), nil
}

var errNoDB = errors.New("colorgallery: nil database")

var (
	sharedOnce sync.Once
	shared     *Service
	sharedErr  error
)

// ForDB returns the process service, built on first use with the app config
// and the default Prometheus registerer.
func ForDB(db *gorm.DB) (*Service, error) {
	sharedOnce.Do(func() {
		shared, sharedErr = Build(db, config.LoadAppConfig(), prometheus.DefaultRegisterer, logger.Default())
	})
	return shared, sharedErr
}
