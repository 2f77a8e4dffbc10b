// internal/app/features/health/health.go
package health

import (
	"context"
	"net/http"

	"github.com/dalemusser/stratashop/internal/app/system/jsonutil"
	"github.com/dalemusser/stratashop/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Handler provides health check endpoints.
type Handler struct {
	mongoClient *mongo.Client
	redis       *redis.Client // nil when snapshots are kept in memory
	logger      *zap.Logger
}

// NewHandler creates a new health check Handler. rdb may be nil.
func NewHandler(mongoClient *mongo.Client, rdb *redis.Client, logger *zap.Logger) *Handler {
	return &Handler{
		mongoClient: mongoClient,
		redis:       rdb,
		logger:      logger,
	}
}

// Response represents the health check response.
type Response struct {
	Status   string            `json:"status"`
	Services map[string]string `json:"services,omitempty"`
}

// Routes returns a chi.Router with health check routes mounted.
// Provides /health (full check), /health/ready, and /health/live.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.Check)
	r.Get("/ready", h.Ready)
	r.Get("/live", h.Live)
	return r
}

// MountRootEndpoints adds the Kubernetes probe paths on the root router:
// /ready and /readyz for readiness, /livez for liveness.
func MountRootEndpoints(r chi.Router, h *Handler) {
	r.Get("/ready", h.Ready)
	r.Get("/readyz", h.Ready)
	r.Get("/livez", h.Live)
}

// services pings every dependency and reports each one as "ok" or "unavailable".
func (h *Handler) services(ctx context.Context) (map[string]string, bool) {
	out := map[string]string{}
	healthy := true

	pctx, cancel := context.WithTimeout(ctx, timeouts.Ping())
	defer cancel()

	if err := h.mongoClient.Ping(pctx, readpref.Primary()); err != nil {
		healthy = false
		out["mongodb"] = "unavailable"
		h.logger.Warn("health check: mongodb ping failed", zap.Error(err))
	} else {
		out["mongodb"] = "ok"
	}

	if h.redis != nil {
		if err := h.redis.Ping(pctx).Err(); err != nil {
			healthy = false
			out["redis"] = "unavailable"
			h.logger.Warn("health check: redis ping failed", zap.Error(err))
		} else {
			out["redis"] = "ok"
		}
	}
	return out, healthy
}

// Check performs a full health check of every dependency.
func (h *Handler) Check(w http.ResponseWriter, r *http.Request) {
	services, healthy := h.services(r.Context())
	resp := Response{Status: "ok", Services: services}
	status := http.StatusOK
	if !healthy {
		resp.Status = "degraded"
		status = http.StatusServiceUnavailable
	}
	jsonutil.JSON(w, status, resp)
}

// Ready checks if the service is ready to accept requests.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if _, healthy := h.services(r.Context()); !healthy {
		h.logger.Warn("readiness check failed")
		jsonutil.JSON(w, http.StatusServiceUnavailable, Response{Status: "not ready"})
		return
	}
	jsonutil.OK(w, Response{Status: "ready"})
}

// Live reports that the process is up. It checks nothing else.
func (h *Handler) Live(w http.ResponseWriter, r *http.Request) {
	jsonutil.OK(w, Response{Status: "alive"})
}
