package config

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/gorm"

	entity "gallery.GO/model/entity"
	inventoryEntity "gallery.GO/model/entity/inventory"
	productEntity "gallery.GO/model/entity/product"
)

//go:embed migrations
var migrationsFS embed.FS

// Entities lists every table the module reads or writes.
func Entities() []interface{} {
	return []interface{}{
		&entity.EavAttribute{}, &entity.EavAttributeOption{}, &entity.EavAttributeOptionValue{},
		&entity.CoreConfigData{},
		&productEntity.Product{}, &productEntity.ProductInt{}, &productEntity.ProductVarchar{},
		&productEntity.SuperAttribute{}, &productEntity.SuperLink{},
		&productEntity.MediaGallery{}, &productEntity.MediaGalleryValue{}, &productEntity.MediaGalleryValueToEntity{},
		&productEntity.StockItem{},
		&inventoryEntity.InventorySource{}, &inventoryEntity.InventorySourceItem{},
	}
}

// Migrate upgrades the schema. MySQL and PostgreSQL run the embedded SQL
// migrations against the existing catalog; SQLite gets the full schema
// through AutoMigrate.
func Migrate(db *gorm.DB) error {
	dialect := db.Dialector.Name()
	if dialect == "sqlite" {
		return db.AutoMigrate(Entities()...)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	var driver database.Driver
	switch dialect {
	case "mysql":
		driver, err = migratemysql.WithInstance(sqlDB, &migratemysql.Config{})
	case "postgres":
		driver, err = migratepgx.WithInstance(sqlDB, &migratepgx.Config{})
	default:
		return fmt.Errorf("migrate: unsupported dialect %q", dialect)
	}
	if err != nil {
		return fmt.Errorf("migrate driver: %w", err)
	}

	src, err := iofs.New(migrationsFS, "migrations/"+dialect)
	if err != nil {
		return fmt.Errorf("migrate source: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, dialect, driver)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}
