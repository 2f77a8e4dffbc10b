// internal/app/store/categories/categorystore.go
package categorystore

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"time"

	"github.com/dalemusser/stratashop/internal/app/system/normalize"
	"github.com/dalemusser/stratashop/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrNotFound is returned when a category is not found.
	ErrNotFound = errors.New("category not found")
	// ErrEmptyName is returned when creating a category without a name.
	ErrEmptyName = errors.New("category name is required")
)

// Store provides access to the categories collection.
type Store struct {
	c *mongo.Collection
}

// New creates a new category store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("categories")}
}

// CreateInput contains the input for creating a category.
type CreateInput struct {
	Name     string
	ImageURL string
	ImageKey string
}

// Create inserts a new category at the end of the display order.
func (s *Store) Create(ctx context.Context, input CreateInput) (*models.Category, error) {
	name := normalize.Name(input.Name)
	if name == "" {
		return nil, ErrEmptyName
	}

	n, err := s.c.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, err
	}

	cat := models.Category{
		ID:        primitive.NewObjectID(),
		Name:      name,
		NameCI:    text.Fold(name),
		ImageURL:  input.ImageURL,
		ImageKey:  input.ImageKey,
		Order:     int(n),
		CreatedAt: time.Now(),
	}
	if _, err := s.c.InsertOne(ctx, cat); err != nil {
		return nil, err
	}
	return &cat, nil
}

// GetByID retrieves a category by ID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Category, error) {
	var cat models.Category
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&cat); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &cat, nil
}

// Lookup resolves a category by its hex id as stored on order line items.
// A malformed or unknown id is reported as (nil, nil); only database
// failures return an error.
func (s *Store) Lookup(ctx context.Context, id string) (*models.Category, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	cat, err := s.GetByID(ctx, oid)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return cat, err
}

// List returns categories in display order: by order, then name. Records
// without an order field sort as order 0.
func (s *Store) List(ctx context.Context) ([]models.Category, error) {
	opts := options.Find().SetSort(bson.D{{Key: "order", Value: 1}, {Key: "name_ci", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var cats []models.Category
	if err := cur.All(ctx, &cats); err != nil {
		return nil, err
	}
	// Mongo sorts a missing order before 0; decoded, both are 0.
	slices.SortStableFunc(cats, func(a, b models.Category) int {
		return cmp.Or(cmp.Compare(a.Order, b.Order), cmp.Compare(a.NameCI, b.NameCI))
	})
	return cats, nil
}

// Reorder sets each category's order to its index in ids.
// Ids not present in the collection are ignored.
func (s *Store) Reorder(ctx context.Context, ids []primitive.ObjectID) error {
	if len(ids) == 0 {
		return nil
	}
	writes := make([]mongo.WriteModel, 0, len(ids))
	for i, id := range ids {
		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": id}).
			SetUpdate(bson.M{"$set": bson.M{"order": i}}))
	}
	_, err := s.c.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false))
	return err
}

// Delete removes a category and returns the deleted record so callers can
// clean up its image.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (*models.Category, error) {
	var cat models.Category
	if err := s.c.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&cat); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &cat, nil
}
