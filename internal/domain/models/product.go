// internal/domain/models/product.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product is one phone in inventory.
//
// IsSelling keeps the name the console has always used: true means the phone
// has been sold, false means it is still in stock.
type Product struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CategoryID   string             `bson:"category_id" json:"category_id"`
	Brand        string             `bson:"brand" json:"brand"`
	Color        string             `bson:"color" json:"color"`
	Storage      string             `bson:"storage" json:"storage"`
	Battery      int                `bson:"battery" json:"battery"` // percent, 0-100
	BuyingPrice  Amount             `bson:"buying_price" json:"buying_price"`
	SellingPrice Amount             `bson:"selling_price" json:"selling_price"`
	Status       string             `bson:"status,omitempty" json:"status,omitempty"`
	Note         string             `bson:"note,omitempty" json:"note,omitempty"`
	ImagePath    string             `bson:"image_path,omitempty" json:"image_path,omitempty"` // public URL
	ImageKey     string             `bson:"image_key,omitempty" json:"-"`                     // blob key, for cleanup
	IsSelling    bool               `bson:"is_selling" json:"is_selling"`
	CreatedAt    *time.Time         `bson:"created_at,omitempty" json:"created_at,omitempty"`
	UpdatedAt    *time.Time         `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}

// Product conditions shown in the console.
const (
	ConditionNew  = "Mới"
	ConditionUsed = "Cũ"
)

// Battery bounds.
const (
	MinBattery = 0
	MaxBattery = 100
)
