package config

import (
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	applog "gallery.GO/core/logger"
)

// DSN returns the mysql connection string, built from MYSQL_* parts when
// MYSQL_DSN is empty.
func (c *Config) DSN() string {
	if c.MySQLDSN != "" {
		return c.MySQLDSN
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4&loc=Local",
		c.MySQLUser, c.MySQLPass, c.MySQLHost, c.MySQLPort, c.MySQLDB)
}

// Dialector picks the gorm driver for DB_DRIVER.
func (c *Config) Dialector() (gorm.Dialector, error) {
	switch c.DBDriver {
	case "", "mysql":
		return mysql.Open(c.DSN()), nil
	case "postgres":
		if c.PostgresDSN == "" {
			return nil, fmt.Errorf("POSTGRES_DSN is required for DB_DRIVER=postgres")
		}
		return postgres.Open(c.PostgresDSN), nil
	case "sqlite":
		return sqlite.Open(c.SQLitePath), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
}

func NewDB() (*gorm.DB, error) {
	cfg := LoadAppConfig()
	dialector, err := cfg.Dialector()
	if err != nil {
		return nil, err
	}

	logMode := logger.Info
	if cfg.GormLog == "off" {
		logMode = logger.Silent
	}

	gormLogger := logger.New(
		applog.Default().Zerolog(), // zerolog.Logger satisfies gorm's Printf writer
		logger.Config{
			SlowThreshold: time.Second, // Slow SQL threshold
			LogLevel:      logMode,     // Log level
			Colorful:      false,
		},
	)

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, err
	}
	return db, nil
}
