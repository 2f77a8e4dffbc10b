// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"

	categorystore "github.com/dalemusser/stratashop/internal/app/store/categories"
	orderstore "github.com/dalemusser/stratashop/internal/app/store/orders"
	productstore "github.com/dalemusser/stratashop/internal/app/store/products"
	"github.com/dalemusser/stratashop/internal/app/system/blobstore"
	"github.com/dalemusser/stratashop/internal/app/system/clock"
	"github.com/dalemusser/stratashop/internal/app/system/indexes"
	"github.com/dalemusser/stratashop/internal/app/system/salesstats"
	"github.com/dalemusser/stratashop/internal/app/system/validators"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ConnectDB connects to MongoDB, image storage, and (if configured) Redis,
// then wires the stats service on top of them.
//
// WAFFLE calls this after configuration is loaded but before EnsureSchema and
// Startup. A configured backend that cannot be reached aborts startup.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	// Configure MongoDB connection pool
	poolCfg := wafflemongo.DefaultPoolConfig()
	if appCfg.MongoMaxPoolSize > 0 {
		poolCfg.MaxPoolSize = appCfg.MongoMaxPoolSize
	}
	if appCfg.MongoMinPoolSize > 0 {
		poolCfg.MinPoolSize = appCfg.MongoMinPoolSize
	}

	client, err := wafflemongo.ConnectWithPool(ctx, appCfg.MongoURI, appCfg.MongoDatabase, poolCfg)
	if err != nil {
		return DBDeps{}, err
	}

	db := client.Database(appCfg.MongoDatabase)

	logger.Info("connected to MongoDB",
		zap.String("database", appCfg.MongoDatabase),
		zap.Uint64("max_pool_size", poolCfg.MaxPoolSize),
		zap.Uint64("min_pool_size", poolCfg.MinPoolSize),
	)

	backend, err := connectStorage(ctx, appCfg, logger)
	if err != nil {
		return DBDeps{}, err
	}
	blobs := blobstore.New(backend, blobstore.Config{
		MaxFailures: appCfg.BlobBreakerFailures,
		OpenTimeout: appCfg.BlobBreakerTimeout,
	}, logger)

	rdb, err := connectRedis(ctx, appCfg.RedisURL, logger)
	if err != nil {
		return DBDeps{}, err
	}

	loc, err := resolveLocation(appCfg.Timezone)
	if err != nil {
		return DBDeps{}, err
	}
	clk := clock.System{Location: loc}

	var pub salesstats.Publisher
	if rdb != nil {
		pub = salesstats.NewRedisPublisher(rdb, "")
	}
	stats := salesstats.NewService(
		orderstore.New(db),
		productstore.New(db),
		categorystore.New(db),
		clk,
		pub,
		salesstats.Config{
			ReadTimeout:       appCfg.StatsReadTimeout,
			LookupConcurrency: appCfg.StatsLookupConcurrency,
		},
		logger,
	)

	return DBDeps{
		MongoClient:   client,
		MongoDatabase: db,
		Blobs:         blobs,
		Redis:         rdb,
		Clock:         clk,
		Stats:         stats,
	}, nil
}

// connectStorage builds the image storage backend selected by storage_type.
func connectStorage(ctx context.Context, appCfg AppConfig, logger *zap.Logger) (storage.Store, error) {
	switch appCfg.StorageType {
	case "s3":
		store, err := storage.NewS3(ctx, storage.S3Config{
			Region:                   appCfg.StorageS3Region,
			Bucket:                   appCfg.StorageS3Bucket,
			Prefix:                   appCfg.StorageS3Prefix,
			CloudFrontURL:            appCfg.StorageCFURL,
			CloudFrontKeyPairID:      appCfg.StorageCFKeyPairID,
			CloudFrontPrivateKeyPath: appCfg.StorageCFKeyPath,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize S3 storage: %w", err)
		}
		logger.Info("initialized S3/CloudFront image storage",
			zap.String("bucket", appCfg.StorageS3Bucket),
			zap.String("prefix", appCfg.StorageS3Prefix),
		)
		return store, nil
	case "local", "":
		store, err := storage.NewLocal(storage.LocalConfig{
			BasePath: appCfg.StorageLocalPath,
			BaseURL:  appCfg.StorageLocalURL,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize local storage: %w", err)
		}
		logger.Info("initialized local image storage",
			zap.String("path", appCfg.StorageLocalPath),
			zap.String("url", appCfg.StorageLocalURL),
		)
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", appCfg.StorageType)
	}
}

// connectRedis returns nil when url is blank.
func connectRedis(ctx context.Context, url string, logger *zap.Logger) (*redis.Client, error) {
	if url == "" {
		logger.Info("redis_url not set; dashboard snapshots stay in process memory")
		return nil, nil
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis_url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	logger.Info("connected to Redis", zap.String("addr", opts.Addr), zap.Int("db", opts.DB))
	return rdb, nil
}

// EnsureSchema sets up collections, validators, and indexes.
//
// This runs after ConnectDB succeeds but before Startup and before the HTTP
// handler is built. The context has a timeout based on
// coreCfg.IndexBootTimeout.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	db := deps.MongoDatabase

	// Ensure collections exist and attach JSON-Schema validators.
	// This runs first so indexes can be created on existing collections.
	logger.Info("ensuring collections and validators")
	if err := validators.EnsureAll(ctx, db); err != nil {
		logger.Error("failed to ensure validators", zap.Error(err))
		return err
	}

	// Ensure database indexes for query performance.
	logger.Info("ensuring database indexes")
	if err := indexes.EnsureAll(ctx, db); err != nil {
		logger.Error("failed to ensure indexes", zap.Error(err))
		return err
	}

	logger.Info("database schema ensured successfully")
	return nil
}
