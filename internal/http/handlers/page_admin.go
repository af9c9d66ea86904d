package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/pagetree/internal/domain/pages"
	"github.com/yungbote/pagetree/internal/http/response"
	pagesmod "github.com/yungbote/pagetree/internal/modules/pages"
	"github.com/yungbote/pagetree/internal/modules/pages/tree"
	"github.com/yungbote/pagetree/internal/platform/ctxutil"
)

type PageAdminHandler struct {
	pages pagesmod.Usecases
}

func NewPageAdminHandler(pages pagesmod.Usecases) *PageAdminHandler {
	return &PageAdminHandler{pages: pages}
}

func pageID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondDomainError(c, fmt.Errorf("%w: page id %q", pages.ErrInvalidInput, c.Param("id")))
		return uuid.Nil, false
	}
	return id, true
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.RespondDomainError(c, fmt.Errorf("%w: %v", pages.ErrInvalidInput, err))
		return false
	}
	return true
}

// GET /api/pages/tree?current=/a/b
func (h *PageAdminHandler) Tree(c *gin.Context) {
	menu, err := h.pages.Menu(c.Request.Context(), ctxutil.GetPrincipal(c.Request.Context()), c.Query("current"))
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	if menu == nil {
		menu = []*pagesmod.MenuItem{}
	}
	response.RespondOK(c, gin.H{"items": menu})
}

// GET /api/pages/types
func (h *PageAdminHandler) Types(c *gin.Context) {
	response.RespondOK(c, gin.H{"types": h.pages.Variants(ctxutil.GetPrincipal(c.Request.Context()))})
}

// GET /api/pages/:id
func (h *PageAdminHandler) Get(c *gin.Context) {
	id, ok := pageID(c)
	if !ok {
		return
	}
	v, err := h.pages.GetPage(c.Request.Context(), ctxutil.GetPrincipal(c.Request.Context()), id)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"page": v})
}

// POST /api/pages
func (h *PageAdminHandler) Create(c *gin.Context) {
	var in pagesmod.CreatePageInput
	if !bindJSON(c, &in) {
		return
	}
	v, err := h.pages.CreatePage(c.Request.Context(), ctxutil.GetPrincipal(c.Request.Context()), in)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"page": v})
}

// PATCH /api/pages/:id
func (h *PageAdminHandler) Edit(c *gin.Context) {
	id, ok := pageID(c)
	if !ok {
		return
	}
	var in pagesmod.EditPageInput
	if !bindJSON(c, &in) {
		return
	}
	v, err := h.pages.EditPage(c.Request.Context(), ctxutil.GetPrincipal(c.Request.Context()), id, in)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"page": v})
}

// POST /api/pages/:id/move
// body: {"parent_id": "<uuid>"|null, "position": 0}. Leaving out
// parent_id reorders among the current siblings.
func (h *PageAdminHandler) Move(c *gin.Context) {
	id, ok := pageID(c)
	if !ok {
		return
	}
	var req struct {
		ParentID json.RawMessage `json:"parent_id"`
		Position *int            `json:"position"`
	}
	if !bindJSON(c, &req) {
		return
	}
	ctx := c.Request.Context()
	p := ctxutil.GetPrincipal(ctx)

	var (
		node *pages.Node
		err  error
	)
	if len(req.ParentID) == 0 {
		if req.Position == nil {
			response.RespondDomainError(c, fmt.Errorf("%w: parent_id or position is required", pages.ErrInvalidInput))
			return
		}
		node, err = h.pages.ReorderPage(ctx, p, id, *req.Position)
	} else {
		var parentID *uuid.UUID
		if err := json.Unmarshal(req.ParentID, &parentID); err != nil {
			response.RespondDomainError(c, fmt.Errorf("%w: parent_id: %v", pages.ErrInvalidInput, err))
			return
		}
		node, err = h.pages.MovePage(ctx, p, id, parentID, req.Position)
	}
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"node": node})
}

// POST /api/pages/:id/publish
// body (optional): {"publish_at": RFC3339, "expire_at": RFC3339}
func (h *PageAdminHandler) Publish(c *gin.Context) {
	id, ok := pageID(c)
	if !ok {
		return
	}
	var req struct {
		PublishAt *time.Time `json:"publish_at"`
		ExpireAt  *time.Time `json:"expire_at"`
	}
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}
	node, err := h.pages.PublishPage(c.Request.Context(), ctxutil.GetPrincipal(c.Request.Context()), id, req.PublishAt, req.ExpireAt)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"node": node})
}

// POST /api/pages/:id/unpublish
func (h *PageAdminHandler) Unpublish(c *gin.Context) {
	id, ok := pageID(c)
	if !ok {
		return
	}
	node, err := h.pages.UnpublishPage(c.Request.Context(), ctxutil.GetPrincipal(c.Request.Context()), id)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"node": node})
}

// DELETE /api/pages/:id?orphans=cascade|reparent
func (h *PageAdminHandler) Delete(c *gin.Context) {
	id, ok := pageID(c)
	if !ok {
		return
	}
	policy, err := tree.ParseDeletePolicy(c.Query("orphans"))
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	if err := h.pages.DeletePage(c.Request.Context(), ctxutil.GetPrincipal(c.Request.Context()), id, policy); err != nil {
		response.RespondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
