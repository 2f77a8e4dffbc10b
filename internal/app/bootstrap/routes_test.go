package bootstrap

import (
	"net/http"
	"testing"
	"time"

	categorystore "github.com/dalemusser/stratashop/internal/app/store/categories"
	orderstore "github.com/dalemusser/stratashop/internal/app/store/orders"
	productstore "github.com/dalemusser/stratashop/internal/app/store/products"
	"github.com/dalemusser/stratashop/internal/app/system/clock"
	"github.com/dalemusser/stratashop/internal/app/system/salesstats"
	"github.com/dalemusser/stratashop/internal/testutil"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	db := testutil.SetupTestDB(t)
	blobs := testutil.SetupTestBlobs(t)
	clk := clock.Fixed{T: time.Date(2024, time.March, 15, 10, 0, 0, 0, time.UTC)}

	deps := DBDeps{
		MongoClient:   db.Client(),
		MongoDatabase: db,
		Blobs:         blobs.Store,
		Clock:         clk,
		Stats: salesstats.NewService(orderstore.New(db), productstore.New(db), categorystore.New(db),
			clk, nil, salesstats.Config{}, zap.NewNop()),
	}

	appCfg := validAppConfig()
	appCfg.APIKey = testutil.TestAPIKey
	appCfg.StorageLocalPath = blobs.Dir
	appCfg.StorageLocalURL = "/files"

	h, err := BuildHandler(&config.CoreConfig{}, appCfg, deps, zap.NewNop())
	if err != nil {
		t.Fatalf("BuildHandler() error = %v", err)
	}
	return h
}

func TestBuildHandler(t *testing.T) {
	h := newTestRouter(t)

	tests := []struct {
		name string
		req  *http.Request
		want int
	}{
		{name: "orders with key", req: testutil.NewAPIRequest(t, http.MethodGet, "/api/orders", nil), want: http.StatusOK},
		{name: "products with key", req: testutil.NewAPIRequest(t, http.MethodGet, "/api/products", nil), want: http.StatusOK},
		{name: "categories with key", req: testutil.NewAPIRequest(t, http.MethodGet, "/api/categories", nil), want: http.StatusOK},
		{name: "users with key", req: testutil.NewAPIRequest(t, http.MethodGet, "/api/users", nil), want: http.StatusOK},
		{name: "dashboard with key", req: testutil.NewAPIRequest(t, http.MethodGet, "/api/dashboard/stats", nil), want: http.StatusOK},
		{name: "orders without key", req: testutil.NewRequest(http.MethodGet, "/api/orders"), want: http.StatusUnauthorized},
		{name: "unknown api route", req: testutil.NewAPIRequest(t, http.MethodGet, "/api/nope", nil), want: http.StatusNotFound},
		{name: "health", req: testutil.NewRequest(http.MethodGet, "/health"), want: http.StatusOK},
		{name: "liveness", req: testutil.NewRequest(http.MethodGet, "/livez"), want: http.StatusOK},
		{name: "metrics", req: testutil.NewRequest(http.MethodGet, "/metrics"), want: http.StatusOK},
		{name: "unknown route", req: testutil.NewRequest(http.MethodGet, "/nope"), want: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := testutil.NewRecorder()
			h.ServeHTTP(rec, tt.req)
			rec.AssertStatus(t, tt.want)
		})
	}
}

func TestBuildHandler_PreflightSkipsAuth(t *testing.T) {
	h := newTestRouter(t)

	req := testutil.NewRequest(http.MethodOptions, "/api/orders")
	req.Header.Set("Origin", "https://admin.shop.vn")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	rec := testutil.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code == http.StatusUnauthorized {
		t.Fatal("preflight request should not require the API key")
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got == "" {
		t.Error("preflight response should carry Access-Control-Allow-Origin")
	}
}
