// internal/app/features/categories/handler.go
package categoriesfeature

import (
	"context"
	"errors"
	"net/http"

	errorsfeature "github.com/dalemusser/stratashop/internal/app/features/errors"
	categorystore "github.com/dalemusser/stratashop/internal/app/store/categories"
	productstore "github.com/dalemusser/stratashop/internal/app/store/products"
	"github.com/dalemusser/stratashop/internal/app/system/blobstore"
	"github.com/dalemusser/stratashop/internal/app/system/formutil"
	"github.com/dalemusser/stratashop/internal/app/system/jsonutil"
	"github.com/dalemusser/stratashop/internal/app/system/timeouts"
	"github.com/dalemusser/stratashop/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const imagePrefix = "categories"

// Handler handles category HTTP requests.
type Handler struct {
	Categories *categorystore.Store
	Products   *productstore.Store
	Blobs      *blobstore.Store
	ErrLog     *errorsfeature.ErrorLogger
	Log        *zap.Logger
}

// NewHandler creates a new categories handler.
func NewHandler(categories *categorystore.Store, products *productstore.Store, blobs *blobstore.Store,
	errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Categories: categories,
		Products:   products,
		Blobs:      blobs,
		ErrLog:     errLog,
		Log:        logger,
	}
}

// List handles GET /api/categories.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	cats, err := h.Categories.List(ctx)
	if err != nil {
		h.ErrLog.Log(r, "failed to list categories", err)
		jsonutil.InternalError(w, "failed to list categories")
		return
	}
	if cats == nil {
		cats = []models.Category{}
	}
	jsonutil.OK(w, cats)
}

// Create handles POST /api/categories: a name and a required image.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if err := formutil.Parse(w, r); err != nil {
		if errors.Is(err, formutil.ErrTooLarge) {
			jsonutil.Error(w, http.StatusRequestEntityTooLarge, err.Error())
			return
		}
		jsonutil.BadRequest(w, err.Error())
		return
	}

	fields := map[string]string{}
	name := formutil.Value(r, "name")
	if name == "" {
		fields["name"] = "Name is required."
	}
	img, err := formutil.Image(r, "image")
	switch {
	case errors.Is(err, formutil.ErrNotImage):
		fields["image"] = "Image must be an image file."
	case err != nil:
		h.ErrLog.Log(r, "failed to read category image", err)
		jsonutil.BadRequest(w, "failed to read image")
		return
	case img == nil:
		fields["image"] = "Image is required."
	}
	if img != nil {
		defer img.Close()
	}
	if len(fields) > 0 {
		jsonutil.ValidationError(w, fields)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	obj, err := h.Blobs.Upload(ctx, imagePrefix, img.Filename, img, img.ContentType)
	if err != nil {
		if errors.Is(err, blobstore.ErrUnavailable) {
			jsonutil.ServiceUnavailable(w, "image storage is unavailable, try again shortly")
			return
		}
		h.ErrLog.Log(r, "failed to upload category image", err)
		jsonutil.InternalError(w, "failed to save category")
		return
	}

	cat, err := h.Categories.Create(ctx, categorystore.CreateInput{
		Name:     name,
		ImageURL: obj.URL,
		ImageKey: obj.Key,
	})
	if err != nil {
		// Clean up uploaded image on DB error
		if derr := h.Blobs.Delete(ctx, obj.Key); derr != nil {
			h.Log.Warn("failed to delete orphaned category image", zap.String("key", obj.Key), zap.Error(derr))
		}
		if errors.Is(err, categorystore.ErrEmptyName) {
			jsonutil.ValidationError(w, map[string]string{"name": "Name is required."})
			return
		}
		h.ErrLog.Log(r, "failed to create category", err)
		jsonutil.InternalError(w, "failed to save category")
		return
	}

	h.Log.Info("category created", zap.String("category_id", cat.ID.Hex()), zap.String("name", cat.Name))
	jsonutil.Created(w, cat)
}

// Reorder handles PUT /api/categories/order. Each listed category's order
// becomes its index in the list.
func (h *Handler) Reorder(w http.ResponseWriter, r *http.Request) {
	var in reorderInput
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.BadRequest(w, err.Error())
		return
	}

	ids := make([]primitive.ObjectID, 0, len(in.IDs))
	for _, s := range in.IDs {
		id, err := primitive.ObjectIDFromHex(s)
		if err != nil {
			jsonutil.ValidationError(w, map[string]string{"ids": "invalid category id: " + s})
			return
		}
		ids = append(ids, id)
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Categories.Reorder(ctx, ids); err != nil {
		h.ErrLog.Log(r, "failed to reorder categories", err)
		jsonutil.InternalError(w, "failed to reorder categories")
		return
	}

	cats, err := h.Categories.List(ctx)
	if err != nil {
		h.ErrLog.Log(r, "failed to list categories", err)
		jsonutil.InternalError(w, "failed to list categories")
		return
	}
	jsonutil.OK(w, cats)
}

// Delete handles DELETE /api/categories/{id} and removes its image.
// Products that still reference the category are left as they are.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		jsonutil.BadRequest(w, "invalid category id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	cat, err := h.Categories.Delete(ctx, id)
	if errors.Is(err, categorystore.ErrNotFound) {
		jsonutil.NotFound(w, "category not found")
		return
	}
	if err != nil {
		h.ErrLog.Log(r, "failed to delete category", err)
		jsonutil.InternalError(w, "failed to delete category")
		return
	}

	if err := h.Blobs.Delete(ctx, cat.ImageKey); err != nil {
		h.Log.Warn("failed to delete category image", zap.String("key", cat.ImageKey), zap.Error(err))
	}
	if n, err := h.Products.CountByCategory(ctx, id.Hex()); err == nil && n > 0 {
		h.Log.Warn("deleted category still has products",
			zap.String("category_id", id.Hex()),
			zap.Int64("products", n),
		)
	}

	h.Log.Info("category deleted", zap.String("category_id", id.Hex()), zap.String("name", cat.Name))
	jsonutil.NoContent(w)
}

// InStock handles GET /api/categories/{id}/products: the category's unsold phones.
func (h *Handler) InStock(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		jsonutil.BadRequest(w, "invalid category id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if _, err := h.Categories.GetByID(ctx, id); err != nil {
		if errors.Is(err, categorystore.ErrNotFound) {
			jsonutil.NotFound(w, "category not found")
			return
		}
		h.ErrLog.Log(r, "failed to load category", err)
		jsonutil.InternalError(w, "failed to list products")
		return
	}

	products, err := h.Products.ListInStockByCategory(ctx, id.Hex())
	if err != nil {
		h.ErrLog.Log(r, "failed to list category products", err)
		jsonutil.InternalError(w, "failed to list products")
		return
	}
	if products == nil {
		products = []models.Product{}
	}
	jsonutil.OK(w, products)
}
