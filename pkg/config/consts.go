package config

const (
	// EnvPrefix scopes every environment variable this service reads.
	EnvPrefix = "mediafolio"

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvAppEnv      = "MEDIAFOLIO_APP_ENV"
	EnvPort        = "MEDIAFOLIO_APP_PORT"
	EnvDBDSN       = "MEDIAFOLIO_DB_DSN"
	EnvDBHost      = "MEDIAFOLIO_DB_HOST"
	EnvDBUser      = "MEDIAFOLIO_DB_USER"
	EnvDBName      = "MEDIAFOLIO_DB_NAME"
	EnvRedisURL    = "MEDIAFOLIO_REDIS_URL"
	EnvCacheSecret = "MEDIAFOLIO_CACHE_SECRET"
	EnvGCSBucket   = "MEDIAFOLIO_GCS_BUCKET_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
