package app

import (
	"github.com/yungbote/pagetree/internal/config"
	apphttp "github.com/yungbote/pagetree/internal/http"
	"github.com/yungbote/pagetree/internal/observability"
	"github.com/yungbote/pagetree/internal/platform/envutil"
	"github.com/yungbote/pagetree/internal/platform/logger"
)

func wireRouter(log *logger.Logger, cfg *config.Config, metrics *observability.Metrics, handlers Handlers, middleware Middleware) apphttp.RouterConfig {
	serviceName := ""
	if envutil.Bool("OTEL_ENABLED", false) {
		serviceName = cfg.Otel.ServiceName
	}
	return apphttp.RouterConfig{
		Log:              log,
		ServiceName:      serviceName,
		CORSOrigins:      cfg.HTTP.CORSOrigins,
		MaxRequestBytes:  cfg.HTTP.MaxRequestBytes,
		Metrics:          metrics,
		AuthMiddleware:   middleware.Auth,
		PageViewHandler:  handlers.PageView,
		PageAdminHandler: handlers.PageAdmin,
		HealthHandler:    handlers.Health,
	}
}
