// internal/app/store/products/productstore.go
package productstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/stratashop/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when a product is not found.
var ErrNotFound = errors.New("product not found")

// Store provides access to the products collection.
type Store struct {
	c *mongo.Collection
}

// New creates a new product store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("products")}
}

// Input holds the editable fields of a product. Create and Replace share it.
type Input struct {
	CategoryID   string
	Brand        string
	Color        string
	Storage      string
	Battery      int
	BuyingPrice  models.Amount
	SellingPrice models.Amount
	Status       string
	Note         string
	ImagePath    string
	ImageKey     string
	IsSelling    bool
}

func (in Input) fields() bson.M {
	return bson.M{
		"category_id":   strings.TrimSpace(in.CategoryID),
		"brand":         strings.TrimSpace(in.Brand),
		"color":         strings.TrimSpace(in.Color),
		"storage":       strings.TrimSpace(in.Storage),
		"battery":       in.Battery,
		"buying_price":  in.BuyingPrice,
		"selling_price": in.SellingPrice,
		"status":        strings.TrimSpace(in.Status),
		"note":          in.Note,
		"image_path":    in.ImagePath,
		"image_key":     in.ImageKey,
		"is_selling":    in.IsSelling,
	}
}

// Create inserts a new product stamped with createdAt.
func (s *Store) Create(ctx context.Context, in Input, createdAt time.Time) (*models.Product, error) {
	doc := in.fields()
	id := primitive.NewObjectID()
	doc["_id"] = id
	doc["created_at"] = createdAt

	if _, err := s.c.InsertOne(ctx, doc); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// GetByID retrieves a product by ID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	var p models.Product
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// Replace overwrites every editable field of a product.
func (s *Store) Replace(ctx context.Context, id primitive.ObjectID, in Input) error {
	set := in.fields()
	set["updated_at"] = time.Now()

	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a product.
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

// CreatedSince returns every product whose created_at is at or after t.
func (s *Store) CreatedSince(ctx context.Context, t time.Time) ([]models.Product, error) {
	return s.find(ctx, bson.M{"created_at": bson.M{"$gte": t}}, nil)
}

// List returns all products newest first.
func (s *Store) List(ctx context.Context) ([]models.Product, error) {
	return s.find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}))
}

// ListInStockByCategory returns the category's products that have not been sold.
func (s *Store) ListInStockByCategory(ctx context.Context, categoryID string) ([]models.Product, error) {
	filter := bson.M{"category_id": categoryID, "is_selling": bson.M{"$ne": true}}
	return s.find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
}

// CountByCategory returns how many products reference the category.
func (s *Store) CountByCategory(ctx context.Context, categoryID string) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"category_id": categoryID})
}

func (s *Store) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Product, error) {
	if opts == nil {
		opts = options.Find()
	}
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var products []models.Product
	if err := cur.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}
