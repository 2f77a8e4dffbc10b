package orderstore

import (
	"errors"
	"testing"
	"time"

	"github.com/dalemusser/stratashop/internal/domain/models"
	"github.com/dalemusser/stratashop/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func sampleInput(buyer, phone string, at time.Time) CreateInput {
	return CreateInput{
		BuyerName: buyer,
		Phone:     phone,
		StaffName: "Linh",
		Items: []models.LineItem{
			{CategoryID: "cat1", Model: "iPhone 13", Price: models.AmountFromInt(1000000)},
		},
		CreatedAt: at,
	}
}

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	at := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	o, err := store.Create(ctx, sampleInput("  Nguyễn Văn An ", "090 123 4567", at))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if o.ID.IsZero() {
		t.Error("ID should not be zero")
	}
	if o.BuyerName != "Nguyễn Văn An" {
		t.Errorf("BuyerName = %q, want %q", o.BuyerName, "Nguyễn Văn An")
	}
	if o.Phone != "0901234567" {
		t.Errorf("Phone = %q, want %q", o.Phone, "0901234567")
	}
	if o.CreatedAt == nil || !o.CreatedAt.Equal(at) {
		t.Errorf("CreatedAt = %v, want %v", o.CreatedAt, at)
	}

	got, err := store.GetByID(ctx, o.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if len(got.Items) != 1 || got.Items[0].Price.IntPart() != 1000000 {
		t.Errorf("Items = %+v, want one item priced 1000000", got.Items)
	}
}

func TestStore_Create_NoItems(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	in := sampleInput("An", "0901", time.Now())
	in.Items = nil
	if _, err := store.Create(ctx, in); !errors.Is(err, ErrNoItems) {
		t.Errorf("Create() error = %v, want %v", err, ErrNoItems)
	}
}

func TestStore_GetByID_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.GetByID(ctx, primitive.NewObjectID()); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID() error = %v, want %v", err, ErrNotFound)
	}
}

func TestStore_CreatedSince(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	boundary := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	if _, err := store.Create(ctx, sampleInput("at boundary", "1", boundary)); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := store.Create(ctx, sampleInput("just before", "2", boundary.Add(-time.Millisecond))); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := store.Create(ctx, sampleInput("later", "3", boundary.Add(72*time.Hour))); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	// A legacy record without created_at.
	if _, err := db.Collection("orders").InsertOne(ctx, bson.M{"buyer_name": "undated", "products": bson.A{}}); err != nil {
		t.Fatalf("InsertOne() error = %v", err)
	}

	orders, err := store.CreatedSince(ctx, boundary)
	if err != nil {
		t.Fatalf("CreatedSince() error = %v", err)
	}
	if len(orders) != 2 {
		t.Fatalf("CreatedSince() returned %d orders, want 2", len(orders))
	}
	for _, o := range orders {
		if o.BuyerName == "just before" || o.BuyerName == "undated" {
			t.Errorf("CreatedSince() should not include %q", o.BuyerName)
		}
	}
}

func TestStore_CreatedSince_LooseRecords(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	at := time.Date(2024, 5, 2, 8, 0, 0, 0, time.UTC)
	_, err := db.Collection("orders").InsertOne(ctx, bson.M{
		"created_at": at,
		"staff_name": "Minh",
		"products": bson.A{
			bson.M{"price": "500000", "category_id": "cat2"},
			bson.M{"price": int32(250000)},
			bson.M{"model": "no price"},
		},
	})
	if err != nil {
		t.Fatalf("InsertOne() error = %v", err)
	}

	orders, err := store.CreatedSince(ctx, at)
	if err != nil {
		t.Fatalf("CreatedSince() error = %v", err)
	}
	if len(orders) != 1 {
		t.Fatalf("CreatedSince() returned %d orders, want 1", len(orders))
	}
	if got := orders[0].Revenue().IntPart(); got != 750000 {
		t.Errorf("Revenue() = %d, want 750000", got)
	}
	if orders[0].Items[1].CategoryID != "" {
		t.Errorf("CategoryID = %q, want empty", orders[0].Items[1].CategoryID)
	}
}

func TestStore_List(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	for i, buyer := range []string{"Trần Bình", "Lê Châu", "Phạm Dũng"} {
		in := sampleInput(buyer, "09000000"+string(rune('0'+i)), base.Add(time.Duration(i)*time.Hour))
		if _, err := store.Create(ctx, in); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}
	if _, err := store.Create(ctx, sampleInput("Old", "0123", base.AddDate(0, -1, 0))); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	t.Run("newest first within window", func(t *testing.T) {
		orders, err := store.List(ctx, ListOptions{Since: base})
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(orders) != 3 {
			t.Fatalf("List() returned %d orders, want 3", len(orders))
		}
		if orders[0].BuyerName != "Phạm Dũng" {
			t.Errorf("first order = %q, want %q", orders[0].BuyerName, "Phạm Dũng")
		}
	})

	t.Run("search by folded name", func(t *testing.T) {
		orders, err := store.List(ctx, ListOptions{Since: base, Search: "chau"})
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(orders) != 1 || orders[0].BuyerName != "Lê Châu" {
			t.Errorf("List(chau) = %v, want only Lê Châu", orders)
		}
	})

	t.Run("search by phone", func(t *testing.T) {
		orders, err := store.List(ctx, ListOptions{Search: "0123"})
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(orders) != 1 || orders[0].BuyerName != "Old" {
			t.Errorf("List(0123) = %v, want only Old", orders)
		}
	})

	t.Run("count", func(t *testing.T) {
		n, err := store.Count(ctx, ListOptions{Since: base})
		if err != nil {
			t.Fatalf("Count() error = %v", err)
		}
		if n != 3 {
			t.Errorf("Count() = %d, want 3", n)
		}
	})
}

func TestStore_Update(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	o, err := store.Create(ctx, sampleInput("An", "0901", time.Now()))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	name := "Võ Thị Hoa"
	addr := "12 Lý Thường Kiệt"
	if err := store.Update(ctx, o.ID, UpdateInput{BuyerName: &name, Address: &addr}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	got, err := store.GetByID(ctx, o.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.BuyerName != name {
		t.Errorf("BuyerName = %q, want %q", got.BuyerName, name)
	}
	if got.Address != addr {
		t.Errorf("Address = %q, want %q", got.Address, addr)
	}
	if got.Phone != "0901" {
		t.Errorf("Phone = %q, want unchanged %q", got.Phone, "0901")
	}

	if err := store.Update(ctx, primitive.NewObjectID(), UpdateInput{Note: &name}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update() nonexistent error = %v, want %v", err, ErrNotFound)
	}
}

func TestStore_Delete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	o, err := store.Create(ctx, sampleInput("An", "0901", time.Now()))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := store.Delete(ctx, o.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := store.Delete(ctx, o.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete() error = %v, want %v", err, ErrNotFound)
	}
}
