// Package salesstats computes the dashboard's monthly and yearly sales
// figures from raw orders and products.
//
// A snapshot is always rebuilt from a full read of the reporting window.
// Nothing is updated incrementally, so a stale or partial snapshot can only
// come from stale input, never from drift.
package salesstats

import (
	"sort"
	"time"

	"github.com/dalemusser/stratashop/internal/domain/models"
)

const (
	// UnknownStaff is the sales-by-staff key for orders without a staff name.
	UnknownStaff = "unknown"
	// UnknownCategory is the bucket for line items without a category id.
	UnknownCategory = "unknown"
	// DashboardTopN is how many categories the dashboard ranks.
	DashboardTopN = 5
)

// CategoryTally is one category's units sold within a window.
// FirstSeen is the order in which the category first appeared in the
// window and breaks ties when ranking.
type CategoryTally struct {
	Name      string `json:"name"`
	ImageURL  string `json:"image_url"`
	Sold      int    `json:"sold"`
	FirstSeen int    `json:"first_seen"`
}

// Snapshot is the full set of dashboard figures for one instant.
type Snapshot struct {
	GeneratedAt           time.Time                `json:"generated_at"`
	ProductsThisMonth     int                      `json:"products_this_month"`
	OrdersThisMonth       int                      `json:"orders_this_month"`
	SalesByStaff          map[string]int           `json:"sales_by_staff"`
	OrdersPerMonth        [12]int                  `json:"orders_per_month"`
	SalesPerMonth         [12]int                  `json:"sales_per_month"`
	TotalRevenueThisMonth models.Amount            `json:"total_revenue_this_month"`
	TotalRevenueThisYear  models.Amount            `json:"total_revenue_this_year"`
	TopCategoriesMonth    map[string]CategoryTally `json:"top_categories_month"`
	TopCategoriesYear     map[string]CategoryTally `json:"top_categories_year"`
}

// Empty returns the all-zero snapshot served before any run has succeeded.
func Empty() *Snapshot {
	return &Snapshot{
		SalesByStaff:       map[string]int{},
		TopCategoriesMonth: map[string]CategoryTally{},
		TopCategoriesYear:  map[string]CategoryTally{},
	}
}

// RankedCategory is a CategoryTally with its id, as listed on the dashboard.
type RankedCategory struct {
	ID string `json:"id"`
	CategoryTally
}

// Top ranks categories by units sold, highest first, ties in first-seen
// order, and returns at most n of them. n <= 0 returns all.
func Top(m map[string]CategoryTally, n int) []RankedCategory {
	out := make([]RankedCategory, 0, len(m))
	for id, t := range m {
		out = append(out, RankedCategory{ID: id, CategoryTally: t})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Sold != out[j].Sold {
			return out[i].Sold > out[j].Sold
		}
		if out[i].FirstSeen != out[j].FirstSeen {
			return out[i].FirstSeen < out[j].FirstSeen
		}
		return out[i].ID < out[j].ID
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
