package config

const (
	EnvPrefix = "STOREFRONT"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv   = "STOREFRONT_APP_ENV"
	EnvPort     = "STOREFRONT_APP_PORT"
	EnvLogLevel = "STOREFRONT_LOG_LEVEL"

	EnvCartStorage     = "STOREFRONT_CART_STORAGE"
	EnvCartFileDir     = "STOREFRONT_CART_FILE_DIR"
	EnvCartDeliveryFee = "STOREFRONT_CART_DELIVERY_FEE"
	EnvCartCurrency    = "STOREFRONT_CART_CURRENCY"

	EnvRedisURL  = "STOREFRONT_REDIS_URL"
	EnvRedisAddr = "STOREFRONT_REDIS_ADDR"
	EnvDBDSN     = "STOREFRONT_DB_DSN"
	EnvUseSQLite = "STOREFRONT_USE_SQLITE"

	EnvCommerceBaseURL = "STOREFRONT_COMMERCE_BASE_URL"
)

// Cart storage drivers accepted by STOREFRONT_CART_STORAGE.
const (
	StorageMemory = "memory"
	StorageFile   = "file"
	StorageRedis  = "redis"
	StorageSQL    = "sql"
)
