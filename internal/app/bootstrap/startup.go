// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/stratashop/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs once after DB connections and schema/index setup are complete,
// but before the HTTP handler is built and requests are served.
//
// It applies the configured operation timeouts first. When
// stats_warm_on_startup is set it then computes a first dashboard snapshot so
// /api/dashboard/stats/latest has something to serve. A failed warm-up is
// logged, not fatal: the dashboard recomputes on its next request.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	timeouts.Configure(appCfg.Timeouts)
	logger.Debug("operation timeouts configured",
		zap.Duration("ping", timeouts.Ping()),
		zap.Duration("short", timeouts.Short()),
		zap.Duration("medium", timeouts.Medium()),
		zap.Duration("long", timeouts.Long()),
	)

	if appCfg.StatsWarmOnStartup {
		snap, err := deps.Stats.Refresh(ctx)
		if err != nil {
			logger.Warn("initial sales stats refresh failed", zap.Error(err))
			return nil
		}
		logger.Info("sales stats warmed",
			zap.Int("orders_this_month", snap.OrdersThisMonth),
			zap.String("revenue_this_month", snap.TotalRevenueThisMonth.String()),
		)
	}

	return nil
}
