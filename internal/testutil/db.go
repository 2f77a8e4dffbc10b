// Package testutil provides utilities for testing, including database setup and fixtures.
package testutil

import (
	"context"
	"fmt"
	"hash/fnv"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dalemusser/stratashop/internal/app/system/indexes"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	// DefaultTestDBURI is used when STRATASHOP_TEST_MONGO_URI is unset.
	DefaultTestDBURI = "mongodb://localhost:27017"
	// TestDBName prefixes every per-test database.
	TestDBName = "stratashop_test"

	// MongoDB caps database names at 63 bytes.
	maxDBName = 63
)

var (
	clientOnce sync.Once
	client     *mongo.Client
	clientErr  error
)

// TestDBURI returns the MongoDB URI tests connect to.
func TestDBURI() string {
	if uri := os.Getenv("STRATASHOP_TEST_MONGO_URI"); uri != "" {
		return uri
	}
	return DefaultTestDBURI
}

// getClient returns the MongoDB client shared by every test in the binary.
func getClient() (*mongo.Client, error) {
	clientOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		pool := wafflemongo.DefaultPoolConfig()
		pool.MaxPoolSize = 200
		pool.MinPoolSize = 10
		client, clientErr = wafflemongo.ConnectWithPool(ctx, TestDBURI(), TestDBName, pool)
	})
	return client, clientErr
}

// SetupTestDB returns an empty database with production indexes, named after
// the test so packages can run in parallel. It is dropped on cleanup.
func SetupTestDB(t *testing.T) *mongo.Database {
	t.Helper()

	client, err := getClient()
	if err != nil {
		t.Fatalf("failed to connect to test MongoDB at %s: %v", TestDBURI(), err)
	}

	db := client.Database(dbNameFor(t.Name()))

	ctx, cancel := TestContext()
	defer cancel()

	if err := db.Drop(ctx); err != nil {
		t.Fatalf("failed to drop test database: %v", err)
	}
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("failed to create indexes: %v", err)
	}

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := db.Drop(ctx); err != nil {
			t.Logf("warning: failed to drop test database on cleanup: %v", err)
		}
	})

	return db
}

// dbNameFor maps a test name to a valid database name. Names too long for
// MongoDB are cut and suffixed with a hash of the full name so that sibling
// subtests sharing a long prefix still get distinct databases.
func dbNameFor(testName string) string {
	suffix := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		default:
			return '_'
		}
	}, testName)

	name := TestDBName + "_" + suffix
	if len(name) <= maxDBName {
		return name
	}

	h := fnv.New32a()
	h.Write([]byte(testName))
	tag := fmt.Sprintf("_%08x", h.Sum32())
	return name[:maxDBName-len(tag)] + tag
}

// TestContext returns a context with a reasonable timeout for test operations.
func TestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}
