// internal/app/features/dashboard/dashboard.go
package dashboard

import (
	"context"
	"net/http"

	errorsfeature "github.com/dalemusser/stratashop/internal/app/features/errors"
	"github.com/dalemusser/stratashop/internal/app/system/jsonutil"
	"github.com/dalemusser/stratashop/internal/app/system/salesstats"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// StatsService computes and serves sales snapshots. *salesstats.Service implements it.
type StatsService interface {
	Refresh(ctx context.Context) (*salesstats.Snapshot, error)
	Latest(ctx context.Context) (*salesstats.Snapshot, error)
}

// Handler provides dashboard handlers.
type Handler struct {
	Service StatsService
	ErrLog  *errorsfeature.ErrorLogger
	Log     *zap.Logger
}

// NewHandler creates a new dashboard Handler.
func NewHandler(svc StatsService, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Service: svc,
		ErrLog:  errLog,
		Log:     logger,
	}
}

// StatsResponse is a snapshot plus its top categories, ranked for display.
type StatsResponse struct {
	*salesstats.Snapshot
	TopMonth []salesstats.RankedCategory `json:"top_month"`
	TopYear  []salesstats.RankedCategory `json:"top_year"`
}

func newStatsResponse(snap *salesstats.Snapshot) StatsResponse {
	return StatsResponse{
		Snapshot: snap,
		TopMonth: salesstats.Top(snap.TopCategoriesMonth, salesstats.DashboardTopN),
		TopYear:  salesstats.Top(snap.TopCategoriesYear, salesstats.DashboardTopN),
	}
}

// Routes returns a chi.Router with dashboard routes mounted at /api/dashboard.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/stats", h.Stats)
	r.Get("/stats/latest", h.Latest)
	return r
}

// Stats recomputes the snapshot. When the refresh fails the response is a
// 503 carrying the last good snapshot, so the page can still render.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	snap, err := h.Service.Refresh(r.Context())
	if err == nil {
		jsonutil.OK(w, newStatsResponse(snap))
		return
	}

	h.ErrLog.Log(r, "dashboard stats refresh failed", err)
	prev, lerr := h.Service.Latest(r.Context())
	if lerr != nil {
		h.Log.Warn("failed to load previous snapshot", zap.Error(lerr))
		prev = salesstats.Empty()
	}
	jsonutil.ErrorWith(w, http.StatusServiceUnavailable, "sales stats are temporarily unavailable",
		map[string]any{"snapshot": newStatsResponse(prev)})
}

// Latest returns the last published snapshot without recomputing it.
func (h *Handler) Latest(w http.ResponseWriter, r *http.Request) {
	snap, err := h.Service.Latest(r.Context())
	if err != nil {
		h.ErrLog.Log(r, "failed to load latest snapshot", err)
		jsonutil.ServiceUnavailable(w, "sales stats are temporarily unavailable")
		return
	}
	jsonutil.OK(w, newStatsResponse(snap))
}
