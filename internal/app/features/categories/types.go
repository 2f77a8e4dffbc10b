// internal/app/features/categories/types.go
package categoriesfeature

// reorderInput is the PUT /api/categories/order body: category ids in display order.
type reorderInput struct {
	IDs []string `json:"ids"`
}
