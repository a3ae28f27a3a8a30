package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/angelmondragon/storefront-cart/pkg/enums"
	"github.com/angelmondragon/storefront-cart/pkg/money"
)

type Config struct {
	App          AppConfig
	Cart         CartConfig
	Redis        RedisConfig
	DB           DBConfig
	Commerce     CommerceConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Cart.validate(); err != nil {
		return nil, err
	}
	switch cfg.Cart.Storage {
	case StorageRedis:
		if cfg.Redis.URL == "" && cfg.Redis.Address == "" {
			return nil, fmt.Errorf("%s or %s is required when %s=%s", EnvRedisURL, EnvRedisAddr, EnvCartStorage, StorageRedis)
		}
	case StorageSQL:
		if !cfg.FeatureFlags.UseSQLite && cfg.DB.DSN == "" {
			return nil, fmt.Errorf("%s is required when %s=%s", EnvDBDSN, EnvCartStorage, StorageSQL)
		}
	}
	if err := cfg.Commerce.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadDatabase reads only the sections the migration tool needs.
func LoadDatabase() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg.App); err != nil {
		return nil, fmt.Errorf("parsing app config: %w", err)
	}
	if err := envconfig.Process(EnvPrefix, &cfg.DB); err != nil {
		return nil, fmt.Errorf("parsing db config: %w", err)
	}
	if err := envconfig.Process(EnvPrefix, &cfg.FeatureFlags); err != nil {
		return nil, fmt.Errorf("parsing feature flags: %w", err)
	}
	if !cfg.FeatureFlags.UseSQLite && cfg.DB.DSN == "" {
		return nil, fmt.Errorf("%s is required unless %s is set", EnvDBDSN, EnvUseSQLite)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"STOREFRONT_APP_ENV" required:"true"`
	Port         string `envconfig:"STOREFRONT_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"STOREFRONT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"STOREFRONT_LOG_WARN_STACK" default:"false"`

	// CORSOrigins lists the storefront UI origins, comma separated.
	CORSOrigins []string `envconfig:"STOREFRONT_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type CartConfig struct {
	Storage          string        `envconfig:"STOREFRONT_CART_STORAGE" default:"memory"`
	FileDir          string        `envconfig:"STOREFRONT_CART_FILE_DIR" default:"data/carts"`
	SnapshotTTL      time.Duration `envconfig:"STOREFRONT_CART_SNAPSHOT_TTL" default:"720h"`
	IdleTTL          time.Duration `envconfig:"STOREFRONT_CART_IDLE_TTL" default:"30m"`
	SweepInterval    time.Duration `envconfig:"STOREFRONT_CART_SWEEP_INTERVAL" default:"1m"`
	PersistTimeout   time.Duration `envconfig:"STOREFRONT_CART_PERSIST_TIMEOUT" default:"2s"`
	CheckoutLockTTL  time.Duration `envconfig:"STOREFRONT_CHECKOUT_LOCK_TTL" default:"30s"`
	DeliveryFee      string        `envconfig:"STOREFRONT_CART_DELIVERY_FEE" default:"0"`
	Currency         string        `envconfig:"STOREFRONT_CART_CURRENCY" default:"IDR"`
	CurrencyExponent int32         `envconfig:"STOREFRONT_CART_CURRENCY_EXPONENT" default:"0"`

	deliveryFeeMinor int64
}

// DeliveryFeeMinor returns the configured delivery fee in minor currency units.
func (c CartConfig) DeliveryFeeMinor() int64 {
	return c.deliveryFeeMinor
}

func (c *CartConfig) validate() error {
	c.Storage = strings.ToLower(strings.TrimSpace(c.Storage))
	switch c.Storage {
	case StorageMemory, StorageFile, StorageRedis, StorageSQL:
	default:
		return fmt.Errorf("%s must be one of memory, file, redis, sql (got %q)", EnvCartStorage, c.Storage)
	}
	if c.Storage == StorageFile && strings.TrimSpace(c.FileDir) == "" {
		return fmt.Errorf("%s is required when %s=%s", EnvCartFileDir, EnvCartStorage, StorageFile)
	}
	currency, err := enums.ParseCurrency(c.Currency)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", EnvCartCurrency, err)
	}
	c.Currency = currency.String()
	if c.CurrencyExponent < 0 || c.CurrencyExponent > 4 {
		return fmt.Errorf("currency exponent must be between 0 and 4")
	}
	fee, err := money.Parse(c.DeliveryFee, c.CurrencyExponent)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", EnvCartDeliveryFee, err)
	}
	if fee < 0 {
		return fmt.Errorf("%s must be non-negative", EnvCartDeliveryFee)
	}
	c.deliveryFeeMinor = fee
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"STOREFRONT_REDIS_URL"`
	Address      string        `envconfig:"STOREFRONT_REDIS_ADDR"`
	Password     string        `envconfig:"STOREFRONT_REDIS_PASSWORD"`
	DB           int           `envconfig:"STOREFRONT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"STOREFRONT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"STOREFRONT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"STOREFRONT_REDIS_WRITE_TIMEOUT" default:"3s"`
}

type DBConfig struct {
	DSN        string `envconfig:"STOREFRONT_DB_DSN"`
	SQLitePath string `envconfig:"STOREFRONT_SQLITE_PATH" default:"data/storefront.db"`

	MaxOpenConns    int           `envconfig:"STOREFRONT_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"STOREFRONT_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"STOREFRONT_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"STOREFRONT_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type CommerceConfig struct {
	BaseURL string        `envconfig:"STOREFRONT_COMMERCE_BASE_URL" required:"true"`
	Timeout time.Duration `envconfig:"STOREFRONT_COMMERCE_TIMEOUT" default:"10s"`
}

func (c *CommerceConfig) validate() error {
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", EnvCommerceBaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must be an http(s) url", EnvCommerceBaseURL)
	}
	if u.Host == "" {
		return fmt.Errorf("%s must include a host", EnvCommerceBaseURL)
	}
	return nil
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"STOREFRONT_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"STOREFRONT_AUTO_MIGRATE" default:"false"`
}
