// internal/app/features/products/types.go
package productsfeature

import (
	"github.com/dalemusser/stratashop/internal/domain/models"
)

// productForm holds the text fields of the product form.
type productForm struct {
	CategoryID string `json:"category_id" validate:"required,objectid" label:"Category"`
	Brand      string `json:"brand" validate:"required,max=200" label:"Brand"`
	Color      string `json:"color" validate:"required,max=100" label:"Color"`
	Storage    string `json:"storage" validate:"required,max=50" label:"Storage"`
	Battery    int    `json:"battery" validate:"min=0,max=100" label:"Battery"`
	Status     string `json:"status" validate:"max=50" label:"Status"`
}

// summaryResponse is the inventory page: stock on one side, sold phones on the other.
type summaryResponse struct {
	Available    []models.Product `json:"available"`
	Sold         []models.Product `json:"sold"`
	TotalBuying  models.Amount    `json:"total_buying"`  // buying_price over available
	TotalSelling models.Amount    `json:"total_selling"` // selling_price over sold
}
