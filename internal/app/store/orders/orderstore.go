// internal/app/store/orders/orderstore.go
package orderstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/stratashop/internal/app/store/storeutil"
	"github.com/dalemusser/stratashop/internal/app/system/normalize"
	"github.com/dalemusser/stratashop/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	// ErrNotFound is returned when an order is not found.
	ErrNotFound = errors.New("order not found")
	// ErrNoItems is returned when creating an order without line items.
	ErrNoItems = errors.New("order must contain at least one product")
)

// Store provides access to the orders collection.
type Store struct {
	c *mongo.Collection
}

// New creates a new order store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("orders")}
}

// CreatedSince returns every order whose created_at is at or after t.
// Orders without created_at never match.
func (s *Store) CreatedSince(ctx context.Context, t time.Time) ([]models.Order, error) {
	cur, err := s.c.Find(ctx, bson.M{"created_at": bson.M{"$gte": t}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var orders []models.Order
	if err := cur.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// CreateInput contains the input for creating an order.
type CreateInput struct {
	BuyerName     string
	Phone         string
	Address       string
	Note          string
	StaffName     string
	PaymentMethod string
	Items         []models.LineItem
	CreatedAt     time.Time
}

// Create inserts a new order.
func (s *Store) Create(ctx context.Context, input CreateInput) (*models.Order, error) {
	if len(input.Items) == 0 {
		return nil, ErrNoItems
	}

	created := input.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	buyer := normalize.Name(input.BuyerName)
	order := models.Order{
		ID:            primitive.NewObjectID(),
		BuyerName:     buyer,
		BuyerNameCI:   text.Fold(buyer),
		Phone:         normalize.Phone(input.Phone),
		Address:       strings.TrimSpace(input.Address),
		Note:          input.Note,
		StaffName:     normalize.Name(input.StaffName),
		PaymentMethod: strings.TrimSpace(input.PaymentMethod),
		Items:         input.Items,
		CreatedAt:     &created,
	}

	if _, err := s.c.InsertOne(ctx, order); err != nil {
		return nil, err
	}
	return &order, nil
}

// GetByID retrieves an order by ID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	var o models.Order
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&o); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

// ListOptions contains options for listing orders.
type ListOptions struct {
	Since  time.Time // inclusive lower bound on created_at; zero means no bound
	Search string    // case-insensitive match on buyer name or phone
	Page   int64
	Limit  int64
}

func listFilter(opts ListOptions) bson.M {
	filter := bson.M{}
	if !opts.Since.IsZero() {
		filter["created_at"] = bson.M{"$gte": opts.Since}
	}
	if q := normalize.QueryParam(opts.Search); q != "" {
		clauses := bson.A{bson.M{"buyer_name_ci": storeutil.Contains(text.Fold(q))}}
		// A query with no digits would match every phone.
		if phone := normalize.Phone(q); phone != "" && phone != "+" {
			clauses = append(clauses, bson.M{"phone": storeutil.Contains(phone)})
		}
		filter["$or"] = clauses
	}
	return filter
}

// List returns orders newest first.
func (s *Store) List(ctx context.Context, opts ListOptions) ([]models.Order, error) {
	filter := listFilter(opts)
	findOpts := storeutil.Paginate(opts.Limit, opts.Page).
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})

	cur, err := s.c.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var orders []models.Order
	if err := cur.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// Count returns how many orders List would return across all pages.
func (s *Store) Count(ctx context.Context, opts ListOptions) (int64, error) {
	return s.c.CountDocuments(ctx, listFilter(opts))
}

// UpdateInput contains the buyer-facing fields an operator may correct after a sale.
type UpdateInput struct {
	BuyerName *string
	Phone     *string
	Address   *string
	Note      *string
}

// Update applies the non-nil fields of input.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, input UpdateInput) error {
	set := bson.M{"updated_at": time.Now()}

	if input.BuyerName != nil {
		name := normalize.Name(*input.BuyerName)
		set["buyer_name"] = name
		set["buyer_name_ci"] = text.Fold(name)
	}
	if input.Phone != nil {
		set["phone"] = normalize.Phone(*input.Phone)
	}
	if input.Address != nil {
		set["address"] = strings.TrimSpace(*input.Address)
	}
	if input.Note != nil {
		set["note"] = *input.Note
	}

	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes an order.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
