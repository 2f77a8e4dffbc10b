package salesstats

import (
	"context"
	"fmt"
	"time"

	"github.com/dalemusser/stratashop/internal/app/system/clock"
	"github.com/dalemusser/stratashop/internal/app/system/timeouts"
	"github.com/dalemusser/stratashop/internal/domain/models"
	"go.uber.org/zap"
)

// OrderReader reads orders created at or after a point in time.
type OrderReader interface {
	CreatedSince(ctx context.Context, t time.Time) ([]models.Order, error)
}

// ProductReader reads products created at or after a point in time.
type ProductReader interface {
	CreatedSince(ctx context.Context, t time.Time) ([]models.Product, error)
}

// Config tunes a Service.
type Config struct {
	// ReadTimeout bounds the whole read phase of a refresh, lookups included.
	// Zero uses timeouts.Medium().
	ReadTimeout time.Duration
	// LookupConcurrency is passed to Aggregator.Concurrency.
	LookupConcurrency int
}

// Service reads the reporting windows, computes a snapshot, and publishes it.
type Service struct {
	orders    OrderReader
	products  ProductReader
	lookup    CategoryLookup
	clock     clock.Clock
	publisher Publisher
	cfg       Config
	log       *zap.Logger
}

// NewService wires a Service. A nil publisher means an in-memory one.
func NewService(orders OrderReader, products ProductReader, lookup CategoryLookup, clk clock.Clock, pub Publisher, cfg Config, logger *zap.Logger) *Service {
	if pub == nil {
		pub = NewMemoryPublisher()
	}
	return &Service{
		orders:    orders,
		products:  products,
		lookup:    lookup,
		clock:     clk,
		publisher: pub,
		cfg:       cfg,
		log:       logger,
	}
}

// Refresh recomputes the snapshot from the stores and publishes it.
//
// Orders are read once for the year window; the month window is a subset of
// it, so both views come from the same read. On error nothing is published.
func (s *Service) Refresh(ctx context.Context) (*Snapshot, error) {
	started := time.Now()
	now := s.clock.Now()

	snap, err := s.compute(ctx, now)
	refreshDuration.Observe(time.Since(started).Seconds())
	if err != nil {
		refreshTotal.WithLabelValues("error").Inc()
		s.log.Error("sales stats refresh failed", zap.Error(err))
		return nil, err
	}

	if err := s.publisher.Publish(ctx, snap); err != nil {
		// The snapshot is still good for this caller.
		refreshTotal.WithLabelValues("unpublished").Inc()
		s.log.Warn("sales stats publish failed", zap.Error(err))
		return snap, nil
	}

	refreshTotal.WithLabelValues("ok").Inc()
	s.log.Debug("sales stats refreshed",
		zap.Time("as_of", now),
		zap.Int("orders_this_month", snap.OrdersThisMonth),
		zap.Int("products_this_month", snap.ProductsThisMonth),
		zap.Duration("took", time.Since(started)),
	)
	return snap, nil
}

func (s *Service) compute(ctx context.Context, now time.Time) (*Snapshot, error) {
	timeout := s.cfg.ReadTimeout
	if timeout <= 0 {
		timeout = timeouts.Medium()
	}
	ctx, cancel := timeouts.WithTimeout(ctx, timeout, s.log, "salesstats.refresh")
	defer cancel()

	orders, err := s.orders.CreatedSince(ctx, clock.StartOfYear(now))
	if err != nil {
		return nil, fmt.Errorf("%w: orders: %w", ErrReadFailure, err)
	}
	products, err := s.products.CreatedSince(ctx, clock.StartOfMonth(now))
	if err != nil {
		return nil, fmt.Errorf("%w: products: %w", ErrReadFailure, err)
	}

	agg := Aggregator{Lookup: s.lookup, Concurrency: s.cfg.LookupConcurrency}
	return agg.Compute(ctx, now, orders, products)
}

// Latest returns the last published snapshot, or Empty() if there is none.
func (s *Service) Latest(ctx context.Context) (*Snapshot, error) {
	snap, err := s.publisher.Latest(ctx)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return Empty(), nil
	}
	return snap, nil
}
