package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/pagetree/internal/config"
	httpH "github.com/yungbote/pagetree/internal/http/handlers"
	"github.com/yungbote/pagetree/internal/http/views"
	"github.com/yungbote/pagetree/internal/platform/logger"
)

type Handlers struct {
	PageView  *httpH.PageViewHandler
	PageAdmin *httpH.PageAdminHandler
	Health    *httpH.HealthHandler
}

func wireHandlers(log *logger.Logger, cfg *config.Config, db *gorm.DB, s Services) (Handlers, error) {
	log.Info("Wiring handlers...")
	store, err := views.NewStore(cfg.Templates.Dir)
	if err != nil {
		return Handlers{}, fmt.Errorf("load templates: %w", err)
	}
	return Handlers{
		PageView:  httpH.NewPageViewHandler(log, s.Render, s.Pages, store),
		PageAdmin: httpH.NewPageAdminHandler(s.Pages),
		Health:    httpH.NewHealthHandler(db),
	}, nil
}
