// internal/app/features/orders/handler.go
package ordersfeature

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	errorsfeature "github.com/dalemusser/stratashop/internal/app/features/errors"
	orderstore "github.com/dalemusser/stratashop/internal/app/store/orders"
	"github.com/dalemusser/stratashop/internal/app/system/clock"
	"github.com/dalemusser/stratashop/internal/app/system/htmlsanitize"
	"github.com/dalemusser/stratashop/internal/app/system/inputval"
	"github.com/dalemusser/stratashop/internal/app/system/jsonutil"
	"github.com/dalemusser/stratashop/internal/app/system/timeouts"
	"github.com/dalemusser/stratashop/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// MaxPageSize caps the limit query parameter.
const MaxPageSize = 100

// Handler handles order HTTP requests.
type Handler struct {
	Orders *orderstore.Store
	Clock  clock.Clock
	ErrLog *errorsfeature.ErrorLogger
	Log    *zap.Logger
}

// NewHandler creates a new orders handler.
func NewHandler(orders *orderstore.Store, clk clock.Clock, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Orders: orders,
		Clock:  clk,
		ErrLog: errLog,
		Log:    logger,
	}
}

func queryInt(r *http.Request, key string, def int64) int64 {
	v, err := strconv.ParseInt(r.URL.Query().Get(key), 10, 64)
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func pathID(r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	return id, err == nil
}

// List handles GET /api/orders: this month's orders, newest first.
// Query: q (buyer name or phone), page (1-based), limit.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	opts := orderstore.ListOptions{
		Since:  clock.StartOfMonth(h.Clock.Now()),
		Search: r.URL.Query().Get("q"),
		Page:   queryInt(r, "page", 1),
		Limit:  min(queryInt(r, "limit", 20), MaxPageSize),
	}

	orders, err := h.Orders.List(ctx, opts)
	if err != nil {
		h.ErrLog.Log(r, "failed to list orders", err)
		jsonutil.InternalError(w, "failed to list orders")
		return
	}
	total, err := h.Orders.Count(ctx, opts)
	if err != nil {
		h.ErrLog.Log(r, "failed to count orders", err)
		jsonutil.InternalError(w, "failed to list orders")
		return
	}
	if orders == nil {
		orders = []models.Order{}
	}

	jsonutil.OK(w, listResponse{Orders: orders, Total: total, Page: opts.Page, Limit: opts.Limit})
}

// Get handles GET /api/orders/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonutil.BadRequest(w, "invalid order id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	o, err := h.Orders.GetByID(ctx, id)
	if errors.Is(err, orderstore.ErrNotFound) {
		jsonutil.NotFound(w, "order not found")
		return
	}
	if err != nil {
		h.ErrLog.Log(r, "failed to load order", err)
		jsonutil.InternalError(w, "failed to load order")
		return
	}
	jsonutil.OK(w, o)
}

// Create handles POST /api/orders. created_at is the server clock, not the client's.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in createInput
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.BadRequest(w, err.Error())
		return
	}
	if res := inputval.Validate(in); res.HasErrors() {
		jsonutil.ValidationError(w, res.Fields())
		return
	}
	if len(in.Products) == 0 {
		jsonutil.ValidationError(w, map[string]string{"products": "at least one product is required"})
		return
	}

	items := make([]models.LineItem, 0, len(in.Products))
	for i, p := range in.Products {
		if p.Price.IsNegative() {
			jsonutil.ValidationError(w, map[string]string{
				"products[" + strconv.Itoa(i) + "].price": "price must not be negative",
			})
			return
		}
		items = append(items, models.LineItem{
			ProductID:  strings.TrimSpace(p.ProductID),
			CategoryID: strings.TrimSpace(p.CategoryID),
			Model:      strings.TrimSpace(p.Model),
			Color:      strings.TrimSpace(p.Color),
			Storage:    strings.TrimSpace(p.Storage),
			IMEI:       strings.TrimSpace(p.IMEI),
			ImagePath:  strings.TrimSpace(p.ImagePath),
			Price:      p.Price,
		})
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	o, err := h.Orders.Create(ctx, orderstore.CreateInput{
		BuyerName:     in.BuyerName,
		Phone:         in.Phone,
		Address:       htmlsanitize.PlainText(in.Address),
		Note:          htmlsanitize.Note(in.Note),
		StaffName:     strings.TrimSpace(in.StaffName),
		PaymentMethod: strings.TrimSpace(in.PaymentMethod),
		Items:         items,
		CreatedAt:     h.Clock.Now(),
	})
	if errors.Is(err, orderstore.ErrNoItems) {
		jsonutil.ValidationError(w, map[string]string{"products": err.Error()})
		return
	}
	if err != nil {
		h.ErrLog.Log(r, "failed to create order", err)
		jsonutil.InternalError(w, "failed to create order")
		return
	}

	h.Log.Info("order created",
		zap.String("order_id", o.ID.Hex()),
		zap.String("staff", o.StaffName),
		zap.Int("items", len(o.Items)),
	)
	jsonutil.Created(w, o)
}

// Patch handles PATCH /api/orders/{id}: corrects buyer details after a sale.
func (h *Handler) Patch(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonutil.BadRequest(w, "invalid order id")
		return
	}

	var in patchInput
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.BadRequest(w, err.Error())
		return
	}

	fields := map[string]string{}
	if in.BuyerName != nil && strings.TrimSpace(*in.BuyerName) == "" {
		fields["buyer_name"] = "Buyer name is required."
	}
	if in.Phone != nil && !inputval.IsValidPhone(*in.Phone) {
		fields["phone"] = "Phone must be a phone number."
	}
	if len(fields) > 0 {
		jsonutil.ValidationError(w, fields)
		return
	}

	upd := orderstore.UpdateInput{BuyerName: in.BuyerName, Phone: in.Phone}
	if in.Address != nil {
		a := htmlsanitize.PlainText(*in.Address)
		upd.Address = &a
	}
	if in.Note != nil {
		n := htmlsanitize.Note(*in.Note)
		upd.Note = &n
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Orders.Update(ctx, id, upd); err != nil {
		if errors.Is(err, orderstore.ErrNotFound) {
			jsonutil.NotFound(w, "order not found")
			return
		}
		h.ErrLog.Log(r, "failed to update order", err)
		jsonutil.InternalError(w, "failed to update order")
		return
	}

	o, err := h.Orders.GetByID(ctx, id)
	if err != nil {
		h.ErrLog.Log(r, "failed to reload order", err)
		jsonutil.InternalError(w, "failed to load order")
		return
	}
	jsonutil.OK(w, o)
}

// Delete handles DELETE /api/orders/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonutil.BadRequest(w, "invalid order id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Orders.Delete(ctx, id); err != nil {
		if errors.Is(err, orderstore.ErrNotFound) {
			jsonutil.NotFound(w, "order not found")
			return
		}
		h.ErrLog.Log(r, "failed to delete order", err)
		jsonutil.InternalError(w, "failed to delete order")
		return
	}

	h.Log.Info("order deleted", zap.String("order_id", id.Hex()))
	jsonutil.NoContent(w)
}
