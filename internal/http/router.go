package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/pagetree/internal/http/handlers"
	httpMW "github.com/yungbote/pagetree/internal/http/middleware"
	"github.com/yungbote/pagetree/internal/observability"
	"github.com/yungbote/pagetree/internal/platform/logger"
)

type RouterConfig struct {
	Log             *logger.Logger
	ServiceName     string
	CORSOrigins     []string
	MaxRequestBytes int64
	Metrics         *observability.Metrics

	AuthMiddleware *httpMW.AuthMiddleware

	PageViewHandler  *httpH.PageViewHandler
	PageAdminHandler *httpH.PageAdminHandler
	HealthHandler    *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.LimitBody(cfg.MaxRequestBytes))
	if cfg.AuthMiddleware != nil {
		r.Use(cfg.AuthMiddleware.AttachPrincipal())
	}

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapF(cfg.Metrics.WriteHTTP))
	}

	api := r.Group("/api")
	api.Use(httpMW.CORS(cfg.CORSOrigins))
	if cfg.PageAdminHandler != nil {
		h := cfg.PageAdminHandler
		// Public reads
		api.GET("/pages/tree", h.Tree)
		api.GET("/pages/types", h.Types)
		api.GET("/pages/:id", h.Get)

		protected := api.Group("/")
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}
		protected.POST("/pages", h.Create)
		protected.PATCH("/pages/:id", h.Edit)
		protected.POST("/pages/:id/move", h.Move)
		protected.POST("/pages/:id/publish", h.Publish)
		protected.POST("/pages/:id/unpublish", h.Unpublish)
		protected.DELETE("/pages/:id", h.Delete)
	}

	// Everything else is a page path.
	if cfg.PageViewHandler != nil {
		r.NoRoute(cfg.PageViewHandler.Serve)
	}
	return r
}
