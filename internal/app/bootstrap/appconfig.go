// internal/app/bootstrap/appconfig.go
package bootstrap

import (
	"time"

	"github.com/dalemusser/stratashop/internal/app/system/timeouts"
)

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration.
//
// WAFFLE's CoreConfig handles framework-level settings like:
//   - HTTP/HTTPS ports and TLS configuration
//   - Logging level and format
//   - CORS settings for the site as a whole
//   - Request body size limits
//
// AppConfig carries what is specific to the shop console: the database,
// the API key, image storage, the shared snapshot cache, and the time zone
// the reporting windows are cut in.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Maximum connections in pool (default: 100)
	MongoMinPoolSize uint64 // Minimum connections to keep warm (default: 10)

	// Bearer key required on /api/*. Empty rejects every API request.
	APIKey string
	// Origins allowed to call /api/* from a browser, comma-separated.
	// Empty or "*" allows any origin.
	APICORSOrigins string

	// File storage configuration
	StorageType      string // Storage backend: "local" or "s3"
	StorageLocalPath string // Local storage path (e.g., "./uploads")
	StorageLocalURL  string // URL prefix for serving local files (e.g., "/files")

	// S3/CloudFront configuration (only used if StorageType is "s3")
	StorageS3Region    string // AWS region
	StorageS3Bucket    string // S3 bucket name
	StorageS3Prefix    string // Key prefix (e.g., "uploads/")
	StorageCFURL       string // CloudFront distribution URL
	StorageCFKeyPairID string // CloudFront key pair ID
	StorageCFKeyPath   string // Path to CloudFront private key file

	// Image storage circuit breaker
	BlobBreakerFailures uint32        // Consecutive failures before uploads are refused (default: 5)
	BlobBreakerTimeout  time.Duration // How long uploads stay refused (default: 30s)

	// Redis URL for sharing the latest dashboard snapshot between instances.
	// Blank keeps the snapshot in process memory.
	RedisURL string

	// Sales stats
	Timezone               string        // IANA zone the month and year windows are cut in
	StatsReadTimeout       time.Duration // Bound on one refresh's reads (default: 10s)
	StatsLookupConcurrency int           // Parallel category lookups per refresh (0 = sequential)
	StatsWarmOnStartup     bool          // Compute a snapshot before serving traffic

	// Per-operation timeouts for handlers and stores. Zero keeps the default.
	Timeouts timeouts.Config
}
