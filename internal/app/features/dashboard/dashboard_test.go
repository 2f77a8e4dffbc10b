package dashboard

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	errorsfeature "github.com/dalemusser/stratashop/internal/app/features/errors"
	categorystore "github.com/dalemusser/stratashop/internal/app/store/categories"
	orderstore "github.com/dalemusser/stratashop/internal/app/store/orders"
	productstore "github.com/dalemusser/stratashop/internal/app/store/products"
	"github.com/dalemusser/stratashop/internal/app/system/clock"
	"github.com/dalemusser/stratashop/internal/app/system/salesstats"
	"github.com/dalemusser/stratashop/internal/domain/models"
	"github.com/dalemusser/stratashop/internal/testutil"
	"go.uber.org/zap"
)

var testNow = time.Date(2024, time.May, 20, 14, 30, 0, 0, time.UTC)

type fakeStats struct {
	refreshErr error
	latestErr  error
	latest     *salesstats.Snapshot
}

func (f *fakeStats) Refresh(context.Context) (*salesstats.Snapshot, error) {
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	return f.latest, nil
}

func (f *fakeStats) Latest(context.Context) (*salesstats.Snapshot, error) {
	if f.latestErr != nil {
		return nil, f.latestErr
	}
	return f.latest, nil
}

func serve(h *Handler, target string) *testutil.ResponseRecorder {
	rec := testutil.NewRecorder()
	Routes(h).ServeHTTP(rec, testutil.NewRequest(http.MethodGet, target))
	return rec
}

func newHandler(svc StatsService) *Handler {
	logger := zap.NewNop()
	return NewHandler(svc, errorsfeature.NewErrorLogger(logger), logger)
}

// TestStats runs the real service against MongoDB-backed stores.
func TestStats(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	cats := categorystore.New(db)
	orders := orderstore.New(db)
	products := productstore.New(db)

	var ids []string
	for i := range 7 {
		c, err := cats.Create(ctx, categorystore.CreateInput{Name: fmt.Sprintf("Dòng %d", i), ImageURL: "/img.png"})
		if err != nil {
			t.Fatalf("seed category: %v", err)
		}
		ids = append(ids, c.ID.Hex())
	}
	// Category i sells i+1 phones this month.
	for i, id := range ids {
		items := make([]models.LineItem, i+1)
		for j := range items {
			items[j] = models.LineItem{CategoryID: id, Price: models.AmountFromInt(1000)}
		}
		if _, err := orders.Create(ctx, orderstore.CreateInput{
			BuyerName: "Khách", Phone: "0901234567", StaffName: "Linh", Items: items, CreatedAt: testNow.Add(-time.Hour),
		}); err != nil {
			t.Fatalf("seed order: %v", err)
		}
	}

	svc := salesstats.NewService(orders, products, cats, clock.Fixed{T: testNow}, nil, salesstats.Config{}, zap.NewNop())
	rec := serve(newHandler(svc), "/stats")
	rec.AssertStatus(t, http.StatusOK)

	var got struct {
		OrdersThisMonth int                         `json:"orders_this_month"`
		SalesByStaff    map[string]int              `json:"sales_by_staff"`
		TopMonth        []salesstats.RankedCategory `json:"top_month"`
		TopYear         []salesstats.RankedCategory `json:"top_year"`
	}
	rec.DecodeJSON(t, &got)

	if got.OrdersThisMonth != 7 {
		t.Errorf("orders_this_month = %d, want 7", got.OrdersThisMonth)
	}
	if got.SalesByStaff["Linh"] != 28 {
		t.Errorf("sales_by_staff[Linh] = %d, want 28", got.SalesByStaff["Linh"])
	}
	if len(got.TopMonth) != salesstats.DashboardTopN || len(got.TopYear) != salesstats.DashboardTopN {
		t.Fatalf("top lists have %d and %d entries, want %d", len(got.TopMonth), len(got.TopYear), salesstats.DashboardTopN)
	}
	if got.TopMonth[0].ID != ids[6] || got.TopMonth[0].Sold != 7 || got.TopMonth[0].Name != "Dòng 6" {
		t.Errorf("top_month[0] = %+v, want Dòng 6 with 7 sold", got.TopMonth[0])
	}
}

func TestStats_RefreshFailure(t *testing.T) {
	prev := salesstats.Empty()
	prev.GeneratedAt = testNow.Add(-time.Hour)
	prev.OrdersThisMonth = 3

	tests := []struct {
		name       string
		svc        *fakeStats
		wantOrders int
	}{
		{
			name:       "previous snapshot",
			svc:        &fakeStats{refreshErr: salesstats.ErrReadFailure, latest: prev},
			wantOrders: 3,
		},
		{
			name:       "publisher also down",
			svc:        &fakeStats{refreshErr: salesstats.ErrReadFailure, latestErr: errors.New("redis down")},
			wantOrders: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(newHandler(tt.svc), "/stats")
			rec.AssertStatus(t, http.StatusServiceUnavailable)

			var body struct {
				Error    string `json:"error"`
				Snapshot struct {
					OrdersThisMonth int              `json:"orders_this_month"`
					TopMonth        []map[string]any `json:"top_month"`
				} `json:"snapshot"`
			}
			rec.DecodeJSON(t, &body)
			if body.Error == "" {
				t.Error("error message missing")
			}
			if body.Snapshot.OrdersThisMonth != tt.wantOrders {
				t.Errorf("snapshot.orders_this_month = %d, want %d", body.Snapshot.OrdersThisMonth, tt.wantOrders)
			}
			if body.Snapshot.TopMonth == nil {
				t.Error("snapshot.top_month should be an empty list, not null")
			}
		})
	}
}

func TestLatest(t *testing.T) {
	snap := salesstats.Empty()
	snap.OrdersThisMonth = 9
	rec := serve(newHandler(&fakeStats{latest: snap, refreshErr: errors.New("must not be called")}), "/stats/latest")
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"orders_this_month":9`)

	rec = serve(newHandler(&fakeStats{latestErr: errors.New("redis down")}), "/stats/latest")
	rec.AssertStatus(t, http.StatusServiceUnavailable)
}
