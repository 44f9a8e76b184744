package config

import (
	"fmt"
	"sync"

	"github.com/kelseyhightower/envconfig"
)

// AppConfig holds global application configuration
var AppConfig *Config
var once sync.Once

type Config struct {
	AppName   string `envconfig:"APP_NAME" default:"colorgallery"`
	Env       string `envconfig:"APP_ENV" default:"development"`
	Port      string `envconfig:"PORT" default:"8080"`
	Debug     bool   `envconfig:"DEBUG" default:"false"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`
	MediaURL  string `envconfig:"MEDIA_URL" default:"/media/catalog/product"`

	DBDriver    string `envconfig:"DB_DRIVER" default:"mysql"`
	MySQLDSN    string `envconfig:"MYSQL_DSN"`
	MySQLUser   string `envconfig:"MYSQL_USER"`
	MySQLPass   string `envconfig:"MYSQL_PASS"`
	MySQLHost   string `envconfig:"MYSQL_HOST" default:"127.0.0.1"`
	MySQLPort   string `envconfig:"MYSQL_PORT" default:"3306"`
	MySQLDB     string `envconfig:"MYSQL_DB"`
	PostgresDSN string `envconfig:"POSTGRES_DSN"`
	SQLitePath  string `envconfig:"SQLITE_PATH" default:"colorgallery.db"`
	GormLog     string `envconfig:"GORM_LOG" default:"info"`

	RedisAddr string `envconfig:"REDIS_ADDR"`
	RedisPass string `envconfig:"REDIS_PASS"`
	RedisDB   int    `envconfig:"REDIS_DB" default:"0"`

	AuthType string `envconfig:"AUTH_TYPE" default:"basic"`
	APIKey   string `envconfig:"API_KEY"`
	APIUser  string `envconfig:"API_USER"`
	APIPass  string `envconfig:"API_PASS"`

	// GallerySettingsFile points at an optional colorgallery.yaml.
	GallerySettingsFile string `envconfig:"COLORGALLERY_SETTINGS_FILE"`
}

// ParseApp decodes the process environment into a Config.
func ParseApp() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// LoadAppConfig initializes the global AppConfig variable
func LoadAppConfig() *Config {
	once.Do(func() {
		cfg, err := ParseApp()
		if err != nil {
			panic(err)
		}
		AppConfig = cfg
	})
	return AppConfig
}
