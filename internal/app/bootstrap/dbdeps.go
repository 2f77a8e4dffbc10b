// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/stratashop/internal/app/system/blobstore"
	"github.com/dalemusser/stratashop/internal/app/system/clock"
	"github.com/dalemusser/stratashop/internal/app/system/salesstats"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database and backend dependencies for this WAFFLE app.
//
// This struct is created in ConnectDB and passed to subsequent lifecycle
// hooks: EnsureSchema, Startup, BuildHandler, and Shutdown. The stats
// service lives here too so the snapshot warmed in Startup is the one
// BuildHandler serves.
//
// The Shutdown hook is responsible for closing these connections gracefully
// when the application terminates.
type DBDeps struct {
	// MongoDB client and database
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	// Blobs stores product and category images behind a circuit breaker.
	Blobs *blobstore.Store

	// Redis holds the shared dashboard snapshot. Nil when redis_url is blank.
	Redis *redis.Client

	// Clock is the wall clock in the configured time zone.
	Clock clock.Clock

	// Stats computes and publishes dashboard snapshots.
	Stats *salesstats.Service
}
