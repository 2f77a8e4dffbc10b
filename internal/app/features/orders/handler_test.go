package ordersfeature

import (
	"net/http"
	"testing"
	"time"

	errorsfeature "github.com/dalemusser/stratashop/internal/app/features/errors"
	orderstore "github.com/dalemusser/stratashop/internal/app/store/orders"
	"github.com/dalemusser/stratashop/internal/app/system/clock"
	"github.com/dalemusser/stratashop/internal/domain/models"
	"github.com/dalemusser/stratashop/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

var testNow = time.Date(2024, time.March, 15, 10, 0, 0, 0, time.UTC)

func newTestHandler(t *testing.T) (*Handler, *orderstore.Store) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	store := orderstore.New(db)
	logger := zap.NewNop()
	return NewHandler(store, clock.Fixed{T: testNow}, errorsfeature.NewErrorLogger(logger), logger), store
}

func serve(h *Handler, r *http.Request) *testutil.ResponseRecorder {
	rec := testutil.NewRecorder()
	Routes(h).ServeHTTP(rec, r)
	return rec
}

func seedOrder(t *testing.T, store *orderstore.Store, buyer, phone string, at time.Time) *models.Order {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()
	o, err := store.Create(ctx, orderstore.CreateInput{
		BuyerName: buyer,
		Phone:     phone,
		Items:     []models.LineItem{{CategoryID: "cat1", Price: models.AmountFromInt(1000000)}},
		CreatedAt: at,
	})
	if err != nil {
		t.Fatalf("seed order: %v", err)
	}
	return o
}

func TestCreate(t *testing.T) {
	h, store := newTestHandler(t)

	body := map[string]any{
		"buyer_name": "  Nguyễn Văn An ",
		"phone":      "0901 234 567",
		"note":       "<b>giao</b> buổi sáng",
		"staff_name": "Linh",
		"products": []map[string]any{
			{"category_id": "cat1", "model": "iPhone 13", "price": "15500000"},
			{"category_id": "cat2", "model": "iPhone 12", "price": 9000000},
		},
	}
	rec := serve(h, testutil.NewAPIRequest(t, http.MethodPost, "/", body))
	rec.AssertStatus(t, http.StatusCreated)

	var got models.Order
	rec.DecodeJSON(t, &got)
	if got.BuyerName != "Nguyễn Văn An" {
		t.Errorf("BuyerName = %q, want trimmed name", got.BuyerName)
	}
	if got.Note != "giao buổi sáng" {
		t.Errorf("Note = %q, want markup stripped", got.Note)
	}
	if got.CreatedAt == nil || !got.CreatedAt.Equal(testNow) {
		t.Errorf("CreatedAt = %v, want server clock %v", got.CreatedAt, testNow)
	}
	if got.Revenue().String() != "24500000" {
		t.Errorf("Revenue() = %s, want 24500000", got.Revenue().String())
	}

	ctx, cancel := testutil.TestContext()
	defer cancel()
	if _, err := store.GetByID(ctx, got.ID); err != nil {
		t.Errorf("created order not stored: %v", err)
	}
}

func TestCreate_Validation(t *testing.T) {
	h, _ := newTestHandler(t)

	tests := []struct {
		name  string
		body  any
		field string
	}{
		{
			name:  "missing buyer",
			body:  map[string]any{"phone": "0901234567", "products": []map[string]any{{"price": 1}}},
			field: "buyer_name",
		},
		{
			name:  "bad phone",
			body:  map[string]any{"buyer_name": "An", "phone": "12", "products": []map[string]any{{"price": 1}}},
			field: "phone",
		},
		{
			name:  "no products",
			body:  map[string]any{"buyer_name": "An", "phone": "0901234567", "products": []map[string]any{}},
			field: "products",
		},
		{
			name:  "negative price",
			body:  map[string]any{"buyer_name": "An", "phone": "0901234567", "products": []map[string]any{{"price": -5}}},
			field: "products[0].price",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(h, testutil.NewAPIRequest(t, http.MethodPost, "/", tt.body))
			rec.AssertStatus(t, http.StatusBadRequest)
			rec.AssertContains(t, tt.field)
		})
	}
}

func TestCreate_UnknownField(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := serve(h, testutil.NewAPIRequest(t, http.MethodPost, "/", `{"buyer_name":"An","created_at":"2020-01-01T00:00:00Z"}`))
	rec.AssertStatus(t, http.StatusBadRequest)
}

func TestList_CurrentMonthOnly(t *testing.T) {
	h, store := newTestHandler(t)

	seedOrder(t, store, "An", "0901111111", testNow.Add(-time.Hour))
	seedOrder(t, store, "Bình", "0902222222", clock.StartOfMonth(testNow))
	seedOrder(t, store, "Cường", "0903333333", clock.StartOfMonth(testNow).Add(-time.Second))

	rec := serve(h, testutil.NewAPIRequest(t, http.MethodGet, "/", nil))
	rec.AssertStatus(t, http.StatusOK)

	var got listResponse
	rec.DecodeJSON(t, &got)
	if got.Total != 2 || len(got.Orders) != 2 {
		t.Fatalf("got %d orders (total %d), want 2", len(got.Orders), got.Total)
	}
	if got.Orders[0].BuyerName != "An" {
		t.Errorf("first order = %q, want newest first", got.Orders[0].BuyerName)
	}
}

func TestList_SearchAndPaging(t *testing.T) {
	h, store := newTestHandler(t)

	seedOrder(t, store, "Nguyễn An", "0901111111", testNow.Add(-3*time.Hour))
	seedOrder(t, store, "Trần Bình", "0902222222", testNow.Add(-2*time.Hour))
	seedOrder(t, store, "Lê An", "0903333333", testNow.Add(-time.Hour))

	tests := []struct {
		name      string
		target    string
		wantTotal int64
		wantLen   int
	}{
		{"folded name", "/?q=NGUY%E1%BB%84N", 1, 1},
		{"folded with space", "/?q=le%20an", 1, 1},
		{"phone digits", "/?q=0902", 1, 1},
		{"no match", "/?q=zzz", 0, 0},
		{"limit", "/?limit=2", 3, 2},
		{"second page", "/?limit=2&page=2", 3, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(h, testutil.NewAPIRequest(t, http.MethodGet, tt.target, nil))
			rec.AssertStatus(t, http.StatusOK)
			var got listResponse
			rec.DecodeJSON(t, &got)
			if got.Total != tt.wantTotal || len(got.Orders) != tt.wantLen {
				t.Errorf("got %d orders (total %d), want %d (total %d)", len(got.Orders), got.Total, tt.wantLen, tt.wantTotal)
			}
		})
	}
}

func TestGet(t *testing.T) {
	h, store := newTestHandler(t)
	o := seedOrder(t, store, "An", "0901111111", testNow)

	rec := serve(h, testutil.NewAPIRequest(t, http.MethodGet, "/"+o.ID.Hex(), nil))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, o.ID.Hex())

	rec = serve(h, testutil.NewAPIRequest(t, http.MethodGet, "/"+primitive.NewObjectID().Hex(), nil))
	rec.AssertStatus(t, http.StatusNotFound)

	rec = serve(h, testutil.NewAPIRequest(t, http.MethodGet, "/not-an-id", nil))
	rec.AssertStatus(t, http.StatusBadRequest)
}

func TestPatch(t *testing.T) {
	h, store := newTestHandler(t)
	o := seedOrder(t, store, "An", "0901111111", testNow)

	rec := serve(h, testutil.NewAPIRequest(t, http.MethodPatch, "/"+o.ID.Hex(), map[string]any{
		"address": "12 Lê Lợi, Q1",
	}))
	rec.AssertStatus(t, http.StatusOK)

	var got models.Order
	rec.DecodeJSON(t, &got)
	if got.Address != "12 Lê Lợi, Q1" {
		t.Errorf("Address = %q", got.Address)
	}
	if got.BuyerName != "An" {
		t.Errorf("BuyerName = %q, absent field should be left alone", got.BuyerName)
	}

	rec = serve(h, testutil.NewAPIRequest(t, http.MethodPatch, "/"+o.ID.Hex(), map[string]any{"buyer_name": "  "}))
	rec.AssertStatus(t, http.StatusBadRequest)

	rec = serve(h, testutil.NewAPIRequest(t, http.MethodPatch, "/"+primitive.NewObjectID().Hex(), map[string]any{"note": "x"}))
	rec.AssertStatus(t, http.StatusNotFound)
}

func TestDelete(t *testing.T) {
	h, store := newTestHandler(t)
	o := seedOrder(t, store, "An", "0901111111", testNow)

	rec := serve(h, testutil.NewAPIRequest(t, http.MethodDelete, "/"+o.ID.Hex(), nil))
	rec.AssertStatus(t, http.StatusNoContent)

	rec = serve(h, testutil.NewAPIRequest(t, http.MethodDelete, "/"+o.ID.Hex(), nil))
	rec.AssertStatus(t, http.StatusNotFound)
}
