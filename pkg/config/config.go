package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const EnvPrefix = "SWIFTPOS"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Store        StoreConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SWIFTPOS_APP_ENV" default:"dev"`
	Port         string `envconfig:"SWIFTPOS_APP_PORT" default:"7373"`
	LogLevel     string `envconfig:"SWIFTPOS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SWIFTPOS_LOG_WARN_STACK" default:"false"`
	CORSOrigins  string `envconfig:"SWIFTPOS_CORS_ORIGINS" default:"http://localhost:5173"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// DBConfig selects the storage backend. The embedded sqlite file is the
// single-terminal default; postgres is the multi-terminal deployment option.
type DBConfig struct {
	Driver string `envconfig:"SWIFTPOS_DB_DRIVER" default:"sqlite"`
	DSN    string `envconfig:"SWIFTPOS_DB_DSN" default:"file:swiftpos.db?_foreign_keys=on"`

	MaxOpenConns    int           `envconfig:"SWIFTPOS_DB_MAX_OPEN_CONNS" default:"1"`
	MaxIdleConns    int           `envconfig:"SWIFTPOS_DB_MAX_IDLE_CONNS" default:"1"`
	ConnMaxLifetime time.Duration `envconfig:"SWIFTPOS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SWIFTPOS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

func (db DBConfig) validate() error {
	switch db.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("unsupported db driver %q (expected %s or %s)", db.Driver, DriverSQLite, DriverPostgres)
	}
	if db.DSN == "" {
		return fmt.Errorf("database DSN is required")
	}
	return nil
}

// RedisConfig is optional: the commit idempotency guard activates only when a
// URL or address is configured.
type RedisConfig struct {
	URL          string        `envconfig:"SWIFTPOS_REDIS_URL"`
	Address      string        `envconfig:"SWIFTPOS_REDIS_ADDR"`
	Password     string        `envconfig:"SWIFTPOS_REDIS_PASSWORD"`
	DB           int           `envconfig:"SWIFTPOS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SWIFTPOS_REDIS_POOL_SIZE" default:"5"`
	DialTimeout  time.Duration `envconfig:"SWIFTPOS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SWIFTPOS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SWIFTPOS_REDIS_WRITE_TIMEOUT" default:"5s"`

	IdempotencyTTL time.Duration `envconfig:"SWIFTPOS_REDIS_IDEMPOTENCY_TTL" default:"24h"`
}

func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}

// StoreConfig carries the operator-facing knobs the engine reads when a commit
// request does not override them.
type StoreConfig struct {
	ReceiptRetries int `envconfig:"SWIFTPOS_RECEIPT_RETRIES" default:"3"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"SWIFTPOS_AUTO_MIGRATE" default:"true"`
}
