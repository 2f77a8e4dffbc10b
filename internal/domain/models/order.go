// internal/domain/models/order.go
package models

import (
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Order is a completed sale. Items are the phones sold in it; an order
// without a CreatedAt is kept but never counted in any reporting window.
type Order struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	BuyerName     string             `bson:"buyer_name" json:"buyer_name"`
	BuyerNameCI   string             `bson:"buyer_name_ci,omitempty" json:"-"` // folded for search
	Phone         string             `bson:"phone" json:"phone"`
	Address       string             `bson:"address,omitempty" json:"address,omitempty"`
	Note          string             `bson:"note,omitempty" json:"note,omitempty"`
	StaffName     string             `bson:"staff_name,omitempty" json:"staff_name,omitempty"`
	PaymentMethod string             `bson:"payment_method,omitempty" json:"payment_method,omitempty"`
	Items         []LineItem         `bson:"products" json:"products"`
	CreatedAt     *time.Time         `bson:"created_at,omitempty" json:"created_at,omitempty"`
	UpdatedAt     *time.Time         `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}

// LineItem is one phone inside an order. Only Price and CategoryID feed the
// dashboard; the rest is descriptive.
type LineItem struct {
	ProductID  string `bson:"product_id,omitempty" json:"product_id,omitempty"`
	CategoryID string `bson:"category_id,omitempty" json:"category_id,omitempty"`
	Model      string `bson:"model,omitempty" json:"model,omitempty"`
	Color      string `bson:"color,omitempty" json:"color,omitempty"`
	Storage    string `bson:"storage,omitempty" json:"storage,omitempty"`
	IMEI       string `bson:"imei_number,omitempty" json:"imei_number,omitempty"`
	ImagePath  string `bson:"image_path,omitempty" json:"image_path,omitempty"`
	Price      Amount `bson:"price" json:"price"`
}

// Revenue is the sum of the order's item prices.
func (o Order) Revenue() decimal.Decimal {
	total := decimal.Zero
	for _, it := range o.Items {
		total = total.Add(it.Price.Decimal)
	}
	return total
}
