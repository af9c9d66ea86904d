package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/pagetree/internal/domain/pages"
	"github.com/yungbote/pagetree/internal/http/response"
	"github.com/yungbote/pagetree/internal/platform/authtoken"
	"github.com/yungbote/pagetree/internal/platform/ctxutil"
	"github.com/yungbote/pagetree/internal/platform/logger"
)

type AuthMiddleware struct {
	log    *logger.Logger
	signer *authtoken.Signer
}

// NewAuthMiddleware accepts a nil signer; every request is then anonymous.
func NewAuthMiddleware(log *logger.Logger, signer *authtoken.Signer) *AuthMiddleware {
	return &AuthMiddleware{log: log.With("Middleware", "AuthMiddleware"), signer: signer}
}

// AttachPrincipal resolves the bearer token, if any, into the request's
// principal. No token means anonymous; a bad token is rejected.
func (am *AuthMiddleware) AttachPrincipal() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractBearer(c)
		if tokenString == "" || am.signer == nil {
			c.Next()
			return
		}
		p, err := am.signer.Parse(tokenString)
		if err != nil {
			am.log.Debug("Rejected bearer token", "error", err)
			response.RespondError(c, http.StatusUnauthorized, "unauthorized", errors.New("missing or invalid token"))
			c.Abort()
			return
		}
		c.Request = c.Request.WithContext(ctxutil.WithPrincipal(c.Request.Context(), p))
		c.Next()
	}
}

// RequireAuth rejects anonymous requests. It must run after
// AttachPrincipal.
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !ctxutil.GetPrincipal(c.Request.Context()).Authenticated {
			response.RespondError(c, http.StatusUnauthorized, "login_required", pages.ErrLoginRequired)
			c.Abort()
			return
		}
		c.Next()
	}
}

func extractBearer(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}
