// Package blobstore stores uploaded images and hands back their public URLs.
//
// It sits in front of a waffle storage backend (local disk or S3/CloudFront)
// and trips a circuit breaker when the backend keeps failing, so a dead
// bucket fails uploads fast instead of holding every request to its timeout.
package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// ErrUnavailable is returned while the breaker is open.
var ErrUnavailable = errors.New("blob store temporarily unavailable")

// Backend is the subset of storage.Store the blob store uses.
type Backend interface {
	Put(ctx context.Context, path string, r io.Reader, opts *storage.PutOptions) error
	Delete(ctx context.Context, path string) error
	URL(path string) string
}

// Config tunes the breaker.
type Config struct {
	// MaxFailures consecutive failures open the breaker. Default 5.
	MaxFailures uint32
	// OpenTimeout is how long the breaker stays open before probing. Default 30s.
	OpenTimeout time.Duration
}

// Store uploads and deletes blobs.
type Store struct {
	backend Backend
	cb      *gobreaker.CircuitBreaker
	now     func() time.Time
	log     *zap.Logger
}

// Object identifies a stored blob.
type Object struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// New wraps backend.
func New(backend Backend, cfg Config, logger *zap.Logger) *Store {
	if cfg.MaxFailures == 0 {
		cfg.MaxFailures = 5
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 30 * time.Second
	}
	maxFailures := cfg.MaxFailures

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "blobstore",
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &Store{backend: backend, cb: cb, now: time.Now, log: logger}
}

// Key builds a storage key: prefix/YYYY/MM/<8 hex chars><ext>.
func Key(prefix, filename string, at time.Time) string {
	ext := strings.ToLower(filepath.Ext(filename))
	name := uuid.New().String()[:8] + ext
	prefix = strings.Trim(prefix, "/")
	return fmt.Sprintf("%s/%04d/%02d/%s", prefix, at.Year(), int(at.Month()), name)
}

// Upload stores r under a fresh key below prefix and returns its key and public URL.
func (s *Store) Upload(ctx context.Context, prefix, filename string, r io.Reader, contentType string) (Object, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	key := Key(prefix, filename, s.now().UTC())

	err := s.execute(func() error {
		return s.backend.Put(ctx, key, r, &storage.PutOptions{ContentType: contentType})
	})
	if err != nil {
		return Object{}, fmt.Errorf("upload %s: %w", key, err)
	}
	return Object{Key: key, URL: s.backend.URL(key)}, nil
}

// Delete removes the blob at key. An empty key is a no-op.
func (s *Store) Delete(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	if err := s.execute(func() error { return s.backend.Delete(ctx, key) }); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// URL returns the public URL for key.
func (s *Store) URL(key string) string {
	return s.backend.URL(key)
}

func (s *Store) execute(fn func() error) error {
	_, err := s.cb.Execute(func() (interface{}, error) {
		return nil, fn()
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return ErrUnavailable
	}
	return err
}
