package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/pagetree/internal/observability"
	"github.com/yungbote/pagetree/internal/platform/ctxutil"
)

// Metrics records request counts and latency when metrics are enabled.
// Page paths are unbounded, so rendered pages are labelled by variant
// ("page:form") and unresolved ones as "page:none".
func Metrics(m *observability.Metrics) gin.HandlerFunc {
	if m == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		start := time.Now()
		m.ApiInflightInc()
		defer m.ApiInflightDec()

		c.Next()

		m.ObserveAPI(c.Request.Method, routeLabel(c), strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}

func routeLabel(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}
	if _, variant := ctxutil.GetTraceData(c.Request.Context()).Page(); variant != "" {
		return "page:" + variant
	}
	return "page:none"
}
