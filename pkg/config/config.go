package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	Cache        CacheConfig
	Catalog      CatalogConfig
	FeatureFlags FeatureFlagsConfig
	GCP          GCPConfig
	GCS          GCSConfig
	Backup       BackupConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"MEDIAFOLIO_APP_ENV" required:"true"`
	Port         string `envconfig:"MEDIAFOLIO_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"MEDIAFOLIO_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"MEDIAFOLIO_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"MEDIAFOLIO_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"MEDIAFOLIO_DB_DSN"`
	Driver string `envconfig:"MEDIAFOLIO_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"MEDIAFOLIO_DB_HOST"`
	LegacyPort     int    `envconfig:"MEDIAFOLIO_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"MEDIAFOLIO_DB_USER"`
	LegacyPassword string `envconfig:"MEDIAFOLIO_DB_PASSWORD"`
	LegacyName     string `envconfig:"MEDIAFOLIO_DB_NAME"`
	LegacySSLMode  string `envconfig:"MEDIAFOLIO_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"MEDIAFOLIO_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MEDIAFOLIO_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"MEDIAFOLIO_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MEDIAFOLIO_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"MEDIAFOLIO_REDIS_URL" required:"true"`
	Address      string        `envconfig:"MEDIAFOLIO_REDIS_ADDR"`
	Password     string        `envconfig:"MEDIAFOLIO_REDIS_PASSWORD"`
	DB           int           `envconfig:"MEDIAFOLIO_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MEDIAFOLIO_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MEDIAFOLIO_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MEDIAFOLIO_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MEDIAFOLIO_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MEDIAFOLIO_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// CacheConfig controls the read-path cache. Secret keys the fingerprint HMAC
// so cache entries cannot be addressed by guessing query parameters.
type CacheConfig struct {
	Secret string        `envconfig:"MEDIAFOLIO_CACHE_SECRET" required:"true"`
	TTL    time.Duration `envconfig:"MEDIAFOLIO_CACHE_TTL" default:"5m"`
}

type CatalogConfig struct {
	FeatureWindow   int    `envconfig:"MEDIAFOLIO_CATALOG_FEATURE_WINDOW" default:"10"`
	DefaultPerPage  int    `envconfig:"MEDIAFOLIO_CATALOG_DEFAULT_PER_PAGE" default:"5"`
	MaxPerPage      int    `envconfig:"MEDIAFOLIO_CATALOG_MAX_PER_PAGE" default:"100"`
	AssetBaseURL    string `envconfig:"MEDIAFOLIO_CATALOG_ASSET_BASE_URL" default:"https://assets.mediafolio.io"`
	OptimizedParams string `envconfig:"MEDIAFOLIO_CATALOG_OPTIMIZED_PARAMS" default:"q_auto,f_auto"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"MEDIAFOLIO_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"MEDIAFOLIO_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"MEDIAFOLIO_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"MEDIAFOLIO_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"MEDIAFOLIO_GOOGLE_APPLICATION_CREDENTIALS"`
}

type GCSConfig struct {
	BucketName string `envconfig:"MEDIAFOLIO_GCS_BUCKET_NAME"`
}

type BackupConfig struct {
	Prefix   string        `envconfig:"MEDIAFOLIO_BACKUP_PREFIX" default:"catalog"`
	Folder   string        `envconfig:"MEDIAFOLIO_BACKUP_FOLDER" default:"backup"`
	Interval time.Duration `envconfig:"MEDIAFOLIO_BACKUP_INTERVAL" default:"24h"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
