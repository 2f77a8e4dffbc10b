// internal/app/features/products/handler.go
package productsfeature

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	errorsfeature "github.com/dalemusser/stratashop/internal/app/features/errors"
	categorystore "github.com/dalemusser/stratashop/internal/app/store/categories"
	productstore "github.com/dalemusser/stratashop/internal/app/store/products"
	"github.com/dalemusser/stratashop/internal/app/system/blobstore"
	"github.com/dalemusser/stratashop/internal/app/system/clock"
	"github.com/dalemusser/stratashop/internal/app/system/formutil"
	"github.com/dalemusser/stratashop/internal/app/system/htmlsanitize"
	"github.com/dalemusser/stratashop/internal/app/system/inputval"
	"github.com/dalemusser/stratashop/internal/app/system/jsonutil"
	"github.com/dalemusser/stratashop/internal/app/system/timeouts"
	"github.com/dalemusser/stratashop/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// imagePrefix is the blob key prefix for product photos.
const imagePrefix = "products"

// Handler handles product HTTP requests.
type Handler struct {
	Products   *productstore.Store
	Categories *categorystore.Store
	Blobs      *blobstore.Store
	Clock      clock.Clock
	ErrLog     *errorsfeature.ErrorLogger
	Log        *zap.Logger
}

// NewHandler creates a new products handler.
func NewHandler(products *productstore.Store, categories *categorystore.Store, blobs *blobstore.Store,
	clk clock.Clock, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Products:   products,
		Categories: categories,
		Blobs:      blobs,
		Clock:      clk,
		ErrLog:     errLog,
		Log:        logger,
	}
}

func pathID(r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	return id, err == nil
}

// List handles GET /api/products.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	all, err := h.Products.List(ctx)
	if err != nil {
		h.ErrLog.Log(r, "failed to list products", err)
		jsonutil.InternalError(w, "failed to list products")
		return
	}

	resp := summaryResponse{Available: []models.Product{}, Sold: []models.Product{}}
	buying, selling := decimal.Zero, decimal.Zero
	for _, p := range all {
		if p.IsSelling {
			resp.Sold = append(resp.Sold, p)
			selling = selling.Add(p.SellingPrice.Decimal)
		} else {
			resp.Available = append(resp.Available, p)
			buying = buying.Add(p.BuyingPrice.Decimal)
		}
	}
	resp.TotalBuying = models.NewAmount(buying)
	resp.TotalSelling = models.NewAmount(selling)

	jsonutil.OK(w, resp)
}

// Get handles GET /api/products/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonutil.BadRequest(w, "invalid product id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, err := h.Products.GetByID(ctx, id)
	if errors.Is(err, productstore.ErrNotFound) {
		jsonutil.NotFound(w, "product not found")
		return
	}
	if err != nil {
		h.ErrLog.Log(r, "failed to load product", err)
		jsonutil.InternalError(w, "failed to load product")
		return
	}
	jsonutil.OK(w, p)
}

// readForm parses and validates the product form. A non-nil map means
// field errors; a non-nil error means the request could not be read.
func (h *Handler) readForm(ctx context.Context, w http.ResponseWriter, r *http.Request) (productstore.Input, map[string]string, error) {
	if err := formutil.Parse(w, r); err != nil {
		return productstore.Input{}, nil, err
	}

	form := productForm{
		CategoryID: formutil.Value(r, "category_id"),
		Brand:      formutil.Value(r, "brand"),
		Color:      formutil.Value(r, "color"),
		Storage:    formutil.Value(r, "storage"),
		Status:     formutil.Value(r, "status"),
	}
	fields := map[string]string{}

	if raw := formutil.Value(r, "battery"); raw == "" {
		fields["battery"] = "Battery is required."
	} else if n, err := strconv.Atoi(raw); err != nil {
		fields["battery"] = "Battery must be a whole number."
	} else {
		form.Battery = n
	}

	if res := inputval.Validate(form); res.HasErrors() {
		for k, v := range res.Fields() {
			if _, ok := fields[k]; !ok {
				fields[k] = v
			}
		}
	}

	price := func(key, label string) models.Amount {
		raw := formutil.Value(r, key)
		if raw == "" {
			fields[key] = label + " is required."
			return models.Amount{}
		}
		a, err := models.ParseAmount(raw)
		if err != nil || a.IsNegative() {
			fields[key] = label + " must be a non-negative amount."
			return models.Amount{}
		}
		return a
	}
	buying := price("buying_price", "Buying price")
	selling := price("selling_price", "Selling price")

	if _, bad := fields["category_id"]; !bad {
		cat, err := h.Categories.Lookup(ctx, form.CategoryID)
		if err != nil {
			return productstore.Input{}, nil, err
		}
		if cat == nil {
			fields["category_id"] = "Category does not exist."
		}
	}

	if len(fields) > 0 {
		return productstore.Input{}, fields, nil
	}

	return productstore.Input{
		CategoryID:   form.CategoryID,
		Brand:        form.Brand,
		Color:        form.Color,
		Storage:      form.Storage,
		Battery:      form.Battery,
		BuyingPrice:  buying,
		SellingPrice: selling,
		Status:       form.Status,
		Note:         htmlsanitize.Note(r.FormValue("note")),
		IsSelling:    formutil.Bool(r, "is_selling"),
	}, nil, nil
}

// formError writes the response for a form that could not be read.
func (h *Handler) formError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, formutil.ErrTooLarge):
		jsonutil.Error(w, http.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, formutil.ErrNotMultipart), errors.Is(err, formutil.ErrNotImage):
		jsonutil.BadRequest(w, err.Error())
	case errors.Is(err, blobstore.ErrUnavailable):
		jsonutil.ServiceUnavailable(w, "image storage is unavailable, try again shortly")
	default:
		h.ErrLog.Log(r, "failed to read product form", err)
		jsonutil.InternalError(w, "failed to save product")
	}
}

// uploadImage stores the optional image field. ok is false when nothing was sent.
func (h *Handler) uploadImage(ctx context.Context, r *http.Request) (obj blobstore.Object, ok bool, err error) {
	img, err := formutil.Image(r, "image")
	if err != nil || img == nil {
		return blobstore.Object{}, false, err
	}
	defer img.Close()

	obj, err = h.Blobs.Upload(ctx, imagePrefix, img.Filename, img, img.ContentType)
	if err != nil {
		return blobstore.Object{}, false, err
	}
	return obj, true, nil
}

// discardImage removes a blob that is no longer referenced. Failures are logged only.
func (h *Handler) discardImage(ctx context.Context, key string) {
	if err := h.Blobs.Delete(ctx, key); err != nil {
		h.Log.Warn("failed to delete product image", zap.String("key", key), zap.Error(err))
	}
}

// Create handles POST /api/products (multipart).
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	in, fields, err := h.readForm(ctx, w, r)
	if err != nil {
		h.formError(w, r, err)
		return
	}
	if fields != nil {
		jsonutil.ValidationError(w, fields)
		return
	}

	obj, uploaded, err := h.uploadImage(ctx, r)
	if err != nil {
		h.formError(w, r, err)
		return
	}
	if uploaded {
		in.ImagePath, in.ImageKey = obj.URL, obj.Key
	}

	p, err := h.Products.Create(ctx, in, h.Clock.Now())
	if err != nil {
		if uploaded {
			h.discardImage(ctx, obj.Key)
		}
		h.ErrLog.Log(r, "failed to create product", err)
		jsonutil.InternalError(w, "failed to save product")
		return
	}

	h.Log.Info("product created", zap.String("product_id", p.ID.Hex()), zap.String("category_id", p.CategoryID))
	jsonutil.Created(w, p)
}

// Update handles PUT /api/products/{id}. The stored image is kept unless a
// new one is uploaded, in which case the old blob is removed.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonutil.BadRequest(w, "invalid product id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	current, err := h.Products.GetByID(ctx, id)
	if errors.Is(err, productstore.ErrNotFound) {
		jsonutil.NotFound(w, "product not found")
		return
	}
	if err != nil {
		h.ErrLog.Log(r, "failed to load product", err)
		jsonutil.InternalError(w, "failed to save product")
		return
	}

	in, fields, err := h.readForm(ctx, w, r)
	if err != nil {
		h.formError(w, r, err)
		return
	}
	if fields != nil {
		jsonutil.ValidationError(w, fields)
		return
	}

	obj, uploaded, err := h.uploadImage(ctx, r)
	if err != nil {
		h.formError(w, r, err)
		return
	}
	if uploaded {
		in.ImagePath, in.ImageKey = obj.URL, obj.Key
	} else {
		in.ImagePath, in.ImageKey = current.ImagePath, current.ImageKey
	}

	if err := h.Products.Replace(ctx, id, in); err != nil {
		if uploaded {
			h.discardImage(ctx, obj.Key)
		}
		if errors.Is(err, productstore.ErrNotFound) {
			jsonutil.NotFound(w, "product not found")
			return
		}
		h.ErrLog.Log(r, "failed to update product", err)
		jsonutil.InternalError(w, "failed to save product")
		return
	}
	if uploaded && current.ImageKey != "" {
		h.discardImage(ctx, current.ImageKey)
	}

	p, err := h.Products.GetByID(ctx, id)
	if err != nil {
		h.ErrLog.Log(r, "failed to reload product", err)
		jsonutil.InternalError(w, "failed to load product")
		return
	}
	jsonutil.OK(w, p)
}

// Delete handles DELETE /api/products/{id} and removes the product's image.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonutil.BadRequest(w, "invalid product id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, err := h.Products.GetByID(ctx, id)
	if errors.Is(err, productstore.ErrNotFound) {
		jsonutil.NotFound(w, "product not found")
		return
	}
	if err != nil {
		h.ErrLog.Log(r, "failed to load product", err)
		jsonutil.InternalError(w, "failed to delete product")
		return
	}

	if err := h.Products.Delete(ctx, id); err != nil {
		if errors.Is(err, productstore.ErrNotFound) {
			jsonutil.NotFound(w, "product not found")
			return
		}
		h.ErrLog.Log(r, "failed to delete product", err)
		jsonutil.InternalError(w, "failed to delete product")
		return
	}
	h.discardImage(ctx, p.ImageKey)

	h.Log.Info("product deleted", zap.String("product_id", id.Hex()))
	jsonutil.NoContent(w)
}
