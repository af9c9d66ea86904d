package app

import (
	httpMW "github.com/yungbote/pagetree/internal/http/middleware"
	"github.com/yungbote/pagetree/internal/platform/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

func wireMiddleware(log *logger.Logger, s Services) Middleware {
	return Middleware{Auth: httpMW.NewAuthMiddleware(log, s.Signer)}
}
