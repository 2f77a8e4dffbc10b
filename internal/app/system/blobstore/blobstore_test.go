package blobstore

import (
	"bytes"
	"context"
	"errors"
	"io"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dalemusser/waffle/pantry/storage"
	"go.uber.org/zap"
)

type memBackend struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
	fail    error
	puts    int
}

func newMemBackend() *memBackend {
	return &memBackend{objects: map[string][]byte{}, types: map[string]string{}}
}

func (m *memBackend) Put(_ context.Context, path string, r io.Reader, opts *storage.PutOptions) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.puts++
	if m.fail != nil {
		return m.fail
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.objects[path] = b
	if opts != nil {
		m.types[path] = opts.ContentType
	}
	return nil
}

func (m *memBackend) Delete(_ context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	delete(m.objects, path)
	return nil
}

func (m *memBackend) URL(path string) string {
	return "/files/" + path
}

func TestKey(t *testing.T) {
	at := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)
	key := Key("/products/", "IMG_0001.JPG", at)

	re := regexp.MustCompile(`^products/2024/03/[0-9a-f]{8}\.jpg$`)
	if !re.MatchString(key) {
		t.Errorf("Key() = %q, want products/2024/03/<8 hex>.jpg", key)
	}
	if Key("categories", "a.png", at) == Key("categories", "a.png", at) {
		t.Error("Key() should differ between calls")
	}
}

func TestStore_UploadAndDelete(t *testing.T) {
	backend := newMemBackend()
	s := New(backend, Config{}, zap.NewNop())
	ctx := context.Background()

	obj, err := s.Upload(ctx, "categories", "logo.png", strings.NewReader("png-bytes"), "image/png")
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if !strings.HasPrefix(obj.Key, "categories/") {
		t.Errorf("Key = %q, want categories/ prefix", obj.Key)
	}
	if obj.URL != "/files/"+obj.Key {
		t.Errorf("URL = %q, want %q", obj.URL, "/files/"+obj.Key)
	}
	if !bytes.Equal(backend.objects[obj.Key], []byte("png-bytes")) {
		t.Error("uploaded bytes not stored")
	}
	if backend.types[obj.Key] != "image/png" {
		t.Errorf("content type = %q, want image/png", backend.types[obj.Key])
	}

	if err := s.Delete(ctx, obj.Key); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, ok := backend.objects[obj.Key]; ok {
		t.Error("Delete() did not remove the object")
	}
	if err := s.Delete(ctx, ""); err != nil {
		t.Errorf("Delete(\"\") error = %v, want nil", err)
	}
}

func TestStore_DefaultContentType(t *testing.T) {
	backend := newMemBackend()
	s := New(backend, Config{}, zap.NewNop())

	obj, err := s.Upload(context.Background(), "products", "x", strings.NewReader("x"), "")
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if backend.types[obj.Key] != "application/octet-stream" {
		t.Errorf("content type = %q, want application/octet-stream", backend.types[obj.Key])
	}
}

func TestStore_BreakerOpens(t *testing.T) {
	backend := newMemBackend()
	backend.fail = errors.New("bucket unreachable")
	s := New(backend, Config{MaxFailures: 2, OpenTimeout: time.Hour}, zap.NewNop())
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := s.Upload(ctx, "products", "a.jpg", strings.NewReader("a"), "image/jpeg")
		if err == nil || errors.Is(err, ErrUnavailable) {
			t.Fatalf("Upload() #%d error = %v, want backend error", i+1, err)
		}
	}

	_, err := s.Upload(ctx, "products", "a.jpg", strings.NewReader("a"), "image/jpeg")
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("Upload() with open breaker error = %v, want %v", err, ErrUnavailable)
	}
	if backend.puts != 2 {
		t.Errorf("backend Put called %d times, want 2", backend.puts)
	}
}
