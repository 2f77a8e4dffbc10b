package salesstats

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dalemusser/stratashop/internal/app/system/clock"
	"github.com/dalemusser/stratashop/internal/domain/models"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// ErrReadFailure means a run could not read its inputs: a store query failed
// or timed out, or a category lookup returned an error. The run is abandoned
// and whatever snapshot was published before stays in place.
var ErrReadFailure = errors.New("salesstats: read failure")

// CategoryLookup resolves a category id to its display data.
// It returns (nil, nil) when no category has the id.
type CategoryLookup interface {
	Lookup(ctx context.Context, id string) (*models.Category, error)
}

// LookupFunc adapts a function to CategoryLookup.
type LookupFunc func(ctx context.Context, id string) (*models.Category, error)

// Lookup calls f.
func (f LookupFunc) Lookup(ctx context.Context, id string) (*models.Category, error) {
	return f(ctx, id)
}

// Aggregator turns orders and products into a Snapshot.
//
// Each distinct category id is looked up at most once per Compute call,
// whether it shows up in the month window, the year window, or both. Ids the
// lookup does not know are remembered as missing and left out of the
// category rankings; the orders still count everywhere else.
type Aggregator struct {
	Lookup CategoryLookup

	// Concurrency > 1 resolves distinct category ids up front with that many
	// lookups in flight. Otherwise ids are resolved one at a time as they
	// are met.
	Concurrency int
}

// Compute is Aggregator{Lookup: lookup}.Compute.
func Compute(ctx context.Context, now time.Time, orders []models.Order, products []models.Product, lookup CategoryLookup) (*Snapshot, error) {
	return Aggregator{Lookup: lookup}.Compute(ctx, now, orders, products)
}

// Compute builds the snapshot for now. Windows are inclusive at their start
// and open-ended: startOfMonth and startOfYear are taken in now's location,
// and records without a created_at belong to neither window.
func (a Aggregator) Compute(ctx context.Context, now time.Time, orders []models.Order, products []models.Product) (*Snapshot, error) {
	loc := now.Location()
	startOfMonth := clock.StartOfMonth(now)
	startOfYear := clock.StartOfYear(now)

	res := newResolver(a.Lookup)
	snap := Empty()
	snap.GeneratedAt = now

	for _, p := range products {
		if createdSince(p.CreatedAt, startOfMonth) {
			snap.ProductsThisMonth++
		}
	}

	var monthOrders, yearOrders []models.Order
	for _, o := range orders {
		if createdSince(o.CreatedAt, startOfYear) {
			yearOrders = append(yearOrders, o)
		}
		if createdSince(o.CreatedAt, startOfMonth) {
			monthOrders = append(monthOrders, o)
		}
	}

	if a.Concurrency > 1 {
		if err := res.prefetch(ctx, categoryIDs(yearOrders, monthOrders), a.Concurrency); err != nil {
			return nil, err
		}
	}

	monthRevenue := decimal.Zero
	month := newTallies()
	snap.OrdersThisMonth = len(monthOrders)
	for _, o := range monthOrders {
		staff := strings.TrimSpace(o.StaffName)
		if staff == "" {
			staff = UnknownStaff
		}
		snap.SalesByStaff[staff] += len(o.Items)
		monthRevenue = monthRevenue.Add(o.Revenue())
		for _, it := range o.Items {
			if err := month.add(ctx, res, it.CategoryID); err != nil {
				return nil, err
			}
		}
	}

	yearRevenue := decimal.Zero
	year := newTallies()
	for _, o := range yearOrders {
		m := o.CreatedAt.In(loc).Month() - 1
		snap.OrdersPerMonth[m]++
		snap.SalesPerMonth[m] += len(o.Items)
		yearRevenue = yearRevenue.Add(o.Revenue())
		for _, it := range o.Items {
			if err := year.add(ctx, res, it.CategoryID); err != nil {
				return nil, err
			}
		}
	}

	snap.TotalRevenueThisMonth = models.NewAmount(monthRevenue)
	snap.TotalRevenueThisYear = models.NewAmount(yearRevenue)
	snap.TopCategoriesMonth = month.m
	snap.TopCategoriesYear = year.m
	return snap, nil
}

func createdSince(t *time.Time, start time.Time) bool {
	return t != nil && !t.Before(start)
}

// categoryIDs lists the distinct non-empty category ids across the given orders.
func categoryIDs(groups ...[]models.Order) []string {
	seen := map[string]bool{}
	var ids []string
	for _, orders := range groups {
		for _, o := range orders {
			for _, it := range o.Items {
				id := strings.TrimSpace(it.CategoryID)
				if id == "" || seen[id] {
					continue
				}
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	return ids
}

// tallies accumulates one window's category counts. The first encounter of
// an id records the category's name and image; later ones only count.
type tallies struct {
	m    map[string]CategoryTally
	next int
}

func newTallies() *tallies {
	return &tallies{m: map[string]CategoryTally{}}
}

func (t *tallies) add(ctx context.Context, res *resolver, categoryID string) error {
	id := strings.TrimSpace(categoryID)
	if id == "" {
		id = UnknownCategory
	}
	if cur, ok := t.m[id]; ok {
		cur.Sold++
		t.m[id] = cur
		return nil
	}

	entry := CategoryTally{Name: UnknownCategory, Sold: 1, FirstSeen: t.next}
	if id != UnknownCategory {
		cat, err := res.resolve(ctx, id)
		if err != nil {
			return err
		}
		if cat == nil {
			return nil
		}
		entry.Name = cat.Name
		entry.ImageURL = cat.ImageURL
	}
	t.m[id] = entry
	t.next++
	return nil
}

// resolver memoizes category lookups for one run. A nil entry records a miss.
type resolver struct {
	lookup CategoryLookup

	mu    sync.Mutex
	cache map[string]*models.Category
}

func newResolver(lookup CategoryLookup) *resolver {
	return &resolver{lookup: lookup, cache: map[string]*models.Category{}}
}

func (r *resolver) cached(id string) (*models.Category, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cat, ok := r.cache[id]
	return cat, ok
}

func (r *resolver) store(id string, cat *models.Category) {
	r.mu.Lock()
	r.cache[id] = cat
	r.mu.Unlock()
}

func (r *resolver) fetch(ctx context.Context, id string) (*models.Category, error) {
	cat, err := r.lookup.Lookup(ctx, id)
	categoryLookups.Inc()
	if err != nil {
		return nil, fmt.Errorf("%w: category %s: %w", ErrReadFailure, id, err)
	}
	if cat == nil {
		categoryMisses.Inc()
	}
	return cat, nil
}

func (r *resolver) resolve(ctx context.Context, id string) (*models.Category, error) {
	if cat, ok := r.cached(id); ok {
		return cat, nil
	}
	cat, err := r.fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	r.store(id, cat)
	return cat, nil
}

// prefetch resolves ids with at most limit lookups in flight.
// ids must be distinct.
func (r *resolver) prefetch(ctx context.Context, ids []string, limit int) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for _, id := range ids {
		if _, ok := r.cached(id); ok {
			continue
		}
		g.Go(func() error {
			cat, err := r.fetch(gctx, id)
			if err != nil {
				return err
			}
			r.store(id, cat)
			return nil
		})
	}
	return g.Wait()
}
