// internal/domain/models/category.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Category is a phone line (e.g. "iPhone 13 Pro Max").
//
// Sold is a legacy counter some older records still carry. Sales per category
// are computed from orders on read; nothing here maintains it.
type Category struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	NameCI    string             `bson:"name_ci,omitempty" json:"-"`
	ImageURL  string             `bson:"image_url,omitempty" json:"image_url,omitempty"`
	ImageKey  string             `bson:"image_key,omitempty" json:"-"`
	Order     int                `bson:"order" json:"order"`
	Sold      int                `bson:"sold,omitempty" json:"sold,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}
