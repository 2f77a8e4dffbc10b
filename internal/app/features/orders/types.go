// internal/app/features/orders/types.go
package ordersfeature

import (
	"github.com/dalemusser/stratashop/internal/domain/models"
)

// lineItemInput is one phone sold in an order.
type lineItemInput struct {
	ProductID  string        `json:"product_id"`
	CategoryID string        `json:"category_id"`
	Model      string        `json:"model"`
	Color      string        `json:"color"`
	Storage    string        `json:"storage"`
	IMEI       string        `json:"imei_number"`
	ImagePath  string        `json:"image_path"`
	Price      models.Amount `json:"price"`
}

// createInput is the POST /api/orders body.
type createInput struct {
	BuyerName     string          `json:"buyer_name" validate:"required,max=200" label:"Buyer name"`
	Phone         string          `json:"phone" validate:"required,phone" label:"Phone"`
	Address       string          `json:"address" validate:"max=500" label:"Address"`
	Note          string          `json:"note"`
	StaffName     string          `json:"staff_name" validate:"max=200" label:"Staff name"`
	PaymentMethod string          `json:"payment_method" validate:"max=50" label:"Payment method"`
	Products      []lineItemInput `json:"products"`
}

// patchInput is the PATCH /api/orders/{id} body. Absent fields are left alone.
type patchInput struct {
	BuyerName *string `json:"buyer_name"`
	Phone     *string `json:"phone"`
	Address   *string `json:"address"`
	Note      *string `json:"note"`
}

// listResponse is a page of orders.
type listResponse struct {
	Orders []models.Order `json:"orders"`
	Total  int64          `json:"total"`
	Page   int64          `json:"page"`
	Limit  int64          `json:"limit"`
}
