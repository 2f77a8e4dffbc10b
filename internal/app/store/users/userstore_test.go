package userstore

import (
	"errors"
	"testing"

	"github.com/dalemusser/stratashop/internal/domain/models"
	"github.com/dalemusser/stratashop/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u, err := store.Create(ctx, models.User{Name: " Trần Linh ", Email: " Linh@Shop.VN "})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if u.Name != "Trần Linh" {
		t.Errorf("Name = %q, want %q", u.Name, "Trần Linh")
	}
	if u.Email != "linh@shop.vn" {
		t.Errorf("Email = %q, want %q", u.Email, "linh@shop.vn")
	}
	if u.Role != models.RoleUser {
		t.Errorf("Role = %q, want default %q", u.Role, models.RoleUser)
	}

	got, err := store.GetByEmail(ctx, "LINH@shop.vn")
	if err != nil {
		t.Fatalf("GetByEmail() error = %v", err)
	}
	if got.ID != u.ID {
		t.Errorf("GetByEmail() ID = %v, want %v", got.ID, u.ID)
	}
}

func TestStore_Create_Duplicate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Create(ctx, models.User{Name: "A", Email: "dup@shop.vn"}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	_, err := store.Create(ctx, models.User{Name: "B", Email: "DUP@shop.vn"})
	if !errors.Is(err, ErrDuplicateEmail) {
		t.Errorf("Create() duplicate error = %v, want %v", err, ErrDuplicateEmail)
	}
}

func TestStore_Create_BadRole(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.Create(ctx, models.User{Name: "A", Email: "a@shop.vn", Role: "owner"})
	if !errors.Is(err, ErrBadRole) {
		t.Errorf("Create() error = %v, want %v", err, ErrBadRole)
	}
}

func TestStore_ListAndUpdate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	b, _ := store.Create(ctx, models.User{Name: "Bình", Email: "binh@shop.vn", Role: models.RoleStaff})
	_, _ = store.Create(ctx, models.User{Name: "An", Email: "an@shop.vn"})

	users, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(users) != 2 || users[0].Name != "An" {
		t.Fatalf("List() = %v, want An first", users)
	}

	if err := store.Update(ctx, b.ID, UserUpdate{Name: "Bình Lê", Email: "binh@shop.vn", Role: "admin"}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	got, err := store.GetByID(ctx, b.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Name != "Bình Lê" || got.Role != models.RoleAdmin {
		t.Errorf("after Update got Name=%q Role=%q", got.Name, got.Role)
	}

	if err := store.Update(ctx, b.ID, UserUpdate{Name: "x", Email: "an@shop.vn", Role: "user"}); !errors.Is(err, ErrDuplicateEmail) {
		t.Errorf("Update() to taken email error = %v, want %v", err, ErrDuplicateEmail)
	}
	if err := store.Update(ctx, primitive.NewObjectID(), UserUpdate{Name: "x", Email: "x@shop.vn", Role: "user"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update() nonexistent error = %v, want %v", err, ErrNotFound)
	}
	if err := store.Update(ctx, b.ID, UserUpdate{Name: "x", Email: "x@shop.vn", Role: "root"}); !errors.Is(err, ErrBadRole) {
		t.Errorf("Update() bad role error = %v, want %v", err, ErrBadRole)
	}
}
