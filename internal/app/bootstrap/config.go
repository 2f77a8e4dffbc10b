// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"
	_ "time/tzdata" // the default zone must resolve on hosts without zoneinfo

	"github.com/dalemusser/stratashop/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// EnvVarPrefix is the prefix for environment variables.
const EnvVarPrefix = "STRATASHOP"

// DefaultTimezone is where the shop operates.
const DefaultTimezone = "Asia/Ho_Chi_Minh"

// appConfigKeys defines the configuration keys for this application.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, api_key, etc.
//   - Environment variables: STRATASHOP_MONGO_URI, STRATASHOP_API_KEY, etc.
//   - Command-line flags: --mongo_uri, --api_key, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "stratashop", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	// API access
	{Name: "api_key", Default: "", Desc: "Bearer key required on /api/* (empty rejects every API request)"},
	{Name: "api_cors_origins", Default: "", Desc: "Comma-separated origins allowed to call /api/* (empty or * for any)"},

	// File storage configuration
	{Name: "storage_type", Default: "local", Desc: "Storage backend: 'local' or 's3'"},
	{Name: "storage_local_path", Default: "./uploads", Desc: "Local storage path for uploaded images"},
	{Name: "storage_local_url", Default: "/files", Desc: "URL prefix for serving local files"},

	// S3/CloudFront configuration
	{Name: "storage_s3_region", Default: "", Desc: "AWS region for S3"},
	{Name: "storage_s3_bucket", Default: "", Desc: "S3 bucket name"},
	{Name: "storage_s3_prefix", Default: "uploads/", Desc: "S3 key prefix"},
	{Name: "storage_cf_url", Default: "", Desc: "CloudFront distribution URL"},
	{Name: "storage_cf_keypair_id", Default: "", Desc: "CloudFront key pair ID"},
	{Name: "storage_cf_key_path", Default: "", Desc: "Path to CloudFront private key file"},

	// Image storage breaker
	{Name: "blob_breaker_failures", Default: 5, Desc: "Consecutive storage failures before uploads are refused"},
	{Name: "blob_breaker_timeout", Default: "30s", Desc: "How long uploads stay refused once the breaker opens"},

	// Snapshot sharing
	{Name: "redis_url", Default: "", Desc: "Redis URL for the shared dashboard snapshot (blank = in-process)"},

	// Sales stats
	{Name: "timezone", Default: DefaultTimezone, Desc: "IANA time zone for month and year boundaries"},
	{Name: "stats_read_timeout", Default: "10s", Desc: "Timeout for the reads of one stats refresh"},
	{Name: "stats_lookup_concurrency", Default: 0, Desc: "Parallel category lookups per refresh (0 = sequential)"},
	{Name: "stats_warm_on_startup", Default: true, Desc: "Compute a dashboard snapshot before serving traffic"},

	// Operation timeouts
	{Name: "timeout_ping", Default: "2s", Desc: "Timeout for health check pings"},
	{Name: "timeout_short", Default: "5s", Desc: "Timeout for single-document reads and writes"},
	{Name: "timeout_medium", Default: "10s", Desc: "Timeout for list queries"},
	{Name: "timeout_long", Default: "30s", Desc: "Timeout for image uploads"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, STRATASHOP_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, EnvVarPrefix, appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		APIKey:         appValues.String("api_key"),
		APICORSOrigins: appValues.String("api_cors_origins"),

		// File storage
		StorageType:      appValues.String("storage_type"),
		StorageLocalPath: appValues.String("storage_local_path"),
		StorageLocalURL:  appValues.String("storage_local_url"),

		// S3/CloudFront
		StorageS3Region:    appValues.String("storage_s3_region"),
		StorageS3Bucket:    appValues.String("storage_s3_bucket"),
		StorageS3Prefix:    appValues.String("storage_s3_prefix"),
		StorageCFURL:       appValues.String("storage_cf_url"),
		StorageCFKeyPairID: appValues.String("storage_cf_keypair_id"),
		StorageCFKeyPath:   appValues.String("storage_cf_key_path"),

		BlobBreakerFailures: uint32(appValues.Int("blob_breaker_failures")),
		BlobBreakerTimeout:  appValues.Duration("blob_breaker_timeout", 30*time.Second),

		RedisURL: appValues.String("redis_url"),

		Timezone:               appValues.String("timezone"),
		StatsReadTimeout:       appValues.Duration("stats_read_timeout", 10*time.Second),
		StatsLookupConcurrency: appValues.Int("stats_lookup_concurrency"),
		StatsWarmOnStartup:     appValues.Bool("stats_warm_on_startup"),

		Timeouts: timeouts.Config{
			Ping:   appValues.Duration("timeout_ping", timeouts.DefaultPing),
			Short:  appValues.Duration("timeout_short", timeouts.DefaultShort),
			Medium: appValues.Duration("timeout_medium", timeouts.DefaultMedium),
			Long:   appValues.Duration("timeout_long", timeouts.DefaultLong),
		},
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	if _, err := resolveLocation(appCfg.Timezone); err != nil {
		logger.Error("invalid time zone", zap.String("timezone", appCfg.Timezone), zap.Error(err))
		return err
	}

	switch appCfg.StorageType {
	case "local", "":
	case "s3":
		if appCfg.StorageS3Bucket == "" || appCfg.StorageS3Region == "" {
			return fmt.Errorf("storage_type s3 requires storage_s3_bucket and storage_s3_region")
		}
	default:
		return fmt.Errorf("unknown storage type: %q (want local or s3)", appCfg.StorageType)
	}

	if appCfg.StatsLookupConcurrency < 0 {
		return fmt.Errorf("stats_lookup_concurrency must not be negative, got %d", appCfg.StatsLookupConcurrency)
	}

	return nil
}

// resolveLocation loads an IANA zone. Blank means DefaultTimezone.
func resolveLocation(name string) (*time.Location, error) {
	if name == "" {
		name = DefaultTimezone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", name, err)
	}
	return loc, nil
}
