package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dalemusser/stratashop/internal/app/system/blobstore"
	"github.com/dalemusser/waffle/pantry/storage"
	"go.uber.org/zap"
)

// TestBlobs is a blob store on local disk under a per-test temp directory.
type TestBlobs struct {
	*blobstore.Store
	Dir string
}

// SetupTestBlobs returns a local-disk blob store that is removed when the test ends.
func SetupTestBlobs(t *testing.T) *TestBlobs {
	t.Helper()

	dir := t.TempDir()
	backend, err := storage.NewLocal(storage.LocalConfig{
		BasePath: dir,
		BaseURL:  "/files",
	})
	if err != nil {
		t.Fatalf("failed to create local storage: %v", err)
	}
	return &TestBlobs{
		Store: blobstore.New(backend, blobstore.Config{}, zap.NewNop()),
		Dir:   dir,
	}
}

// Exists reports whether an object with key is on disk.
func (b *TestBlobs) Exists(key string) bool {
	_, err := os.Stat(filepath.Join(b.Dir, filepath.FromSlash(key)))
	return err == nil
}

// PNG is a minimal PNG header, enough to pass image content sniffing.
var PNG = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")
