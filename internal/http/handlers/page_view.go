package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/pagetree/internal/domain/pages"
	"github.com/yungbote/pagetree/internal/http/views"
	pagesmod "github.com/yungbote/pagetree/internal/modules/pages"
	"github.com/yungbote/pagetree/internal/modules/pages/processors"
	"github.com/yungbote/pagetree/internal/modules/pages/render"
	"github.com/yungbote/pagetree/internal/platform/apierr"
	"github.com/yungbote/pagetree/internal/platform/ctxutil"
	"github.com/yungbote/pagetree/internal/platform/logger"
)

type PageViewHandler struct {
	log      *logger.Logger
	boundary *render.Boundary
	pages    pagesmod.Usecases
	views    *views.Store
}

func NewPageViewHandler(log *logger.Logger, boundary *render.Boundary, pages pagesmod.Usecases, store *views.Store) *PageViewHandler {
	return &PageViewHandler{
		log:      log.With("handler", "PageViewHandler"),
		boundary: boundary,
		pages:    pages,
		views:    store,
	}
}

// GET|HEAD|POST /<path>
func (h *PageViewHandler) Serve(c *gin.Context) {
	switch c.Request.Method {
	case http.MethodGet, http.MethodHead, http.MethodPost:
	default:
		c.Header("Allow", "GET, HEAD, POST")
		h.renderError(c, http.StatusMethodNotAllowed, "Method not allowed", "This page cannot handle that request.")
		return
	}
	ctx := c.Request.Context()
	p := ctxutil.GetPrincipal(ctx)

	out, err := h.boundary.Render(ctx, &processors.Request{HTTP: c.Request, Principal: p, Path: c.Request.URL.Path})
	if err != nil {
		h.fail(c, err)
		return
	}
	if out.Response != nil {
		out.Response.ServeHTTP(c.Writer, c.Request)
		return
	}

	menu, err := h.pages.Menu(ctx, p, out.Path)
	if err != nil {
		h.log.Warn("Menu unavailable", "error", err)
	}
	out.Context["menu"] = menu
	out.Context["principal"] = p

	body, name, err := h.views.Render(out.TemplateCandidates, out.Context)
	if err != nil {
		h.log.Error("Page template failed", "node_id", out.Node.ID, "template", name, "error", err)
		h.renderError(c, http.StatusInternalServerError, "Server error", "Something went wrong.")
		return
	}
	if out.Preview {
		c.Header("Cache-Control", "private, no-store")
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", body)
}

func (h *PageViewHandler) fail(c *gin.Context, err error) {
	ae := apierr.FromDomain(err)
	_ = c.Error(err)
	if ae.RetryAfter > 0 {
		c.Header("Retry-After", strconv.Itoa(ae.RetryAfter))
	}
	switch {
	case errors.Is(err, pages.ErrNotFound):
		h.renderError(c, http.StatusNotFound, "Not found", "There is no page at this address.")
	case errors.Is(err, pages.ErrLoginRequired):
		h.renderError(c, http.StatusUnauthorized, "Login required", "Sign in to view this page.")
	case errors.Is(err, pages.ErrBusy):
		h.renderError(c, http.StatusServiceUnavailable, "Busy", "The site is busy. Try again shortly.")
	default:
		h.renderError(c, ae.Status, "Server error", "Something went wrong.")
	}
}

func (h *PageViewHandler) renderError(c *gin.Context, status int, title, message string) {
	body, _, err := h.views.Render([]string{"error.html"}, map[string]any{"title": title, "message": message})
	if err != nil {
		c.String(status, message)
		return
	}
	c.Data(status, "text/html; charset=utf-8", body)
}
