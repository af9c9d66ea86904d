// Package render turns a request path into either a template context or
// a finished response.
package render

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/yungbote/pagetree/internal/domain/pages"
	"github.com/yungbote/pagetree/internal/modules/pages/permissions"
	"github.com/yungbote/pagetree/internal/modules/pages/processors"
	"github.com/yungbote/pagetree/internal/modules/pages/templates"
	"github.com/yungbote/pagetree/internal/modules/pages/tree"
	"github.com/yungbote/pagetree/internal/modules/pages/variants"
	"github.com/yungbote/pagetree/internal/platform/ctxutil"
	"github.com/yungbote/pagetree/internal/platform/dbctx"
	"github.com/yungbote/pagetree/internal/platform/logger"
)

// Outcome is either Response (write it and stop) or a context to render
// with the first existing template in TemplateCandidates.
type Outcome struct {
	Node               *pages.Node
	Payload            pages.Payload
	Path               string
	Preview            bool
	TemplateCandidates []string
	Context            map[string]any

	Response   http.Handler
	TerminalBy string
}

type Config struct {
	// HomeSlug is served for the empty path.
	HomeSlug string
}

type Boundary struct {
	tree       *tree.Tree
	variants   *variants.Registry
	perms      *permissions.Delegate
	processors *processors.Registry
	templates  templates.Resolver
	log        *logger.Logger
	cfg        Config
	now        func() time.Time
}

func New(
	tr *tree.Tree,
	reg *variants.Registry,
	perms *permissions.Delegate,
	procs *processors.Registry,
	resolver templates.Resolver,
	baseLog *logger.Logger,
	cfg Config,
) *Boundary {
	return &Boundary{
		tree:       tr,
		variants:   reg,
		perms:      perms,
		processors: procs,
		templates:  resolver,
		log:        baseLog.With("service", "RenderBoundary"),
		cfg:        cfg,
		now:        time.Now,
	}
}

func (b *Boundary) Render(ctx context.Context, req *processors.Request) (*Outcome, error) {
	path := processors.NormalizePath(req.Path)
	if path == "" {
		path = b.cfg.HomeSlug
	}
	node, err := b.tree.ResolveByPath(ctx, path)
	if err != nil {
		return nil, err
	}
	ctxutil.SetPage(ctx, node.ID.String(), node.VariantType)

	preview := false
	if !node.VisibleAt(b.now()) {
		if !b.perms.CanChange(ctx, node, req.Principal) {
			return nil, pages.ErrNotFound
		}
		preview = true
	}
	if node.LoginRequired && !req.Principal.Authenticated {
		return nil, pages.ErrLoginRequired
	}

	log := b.log.With(ctxutil.LogFields(ctx)...).With("node_id", node.ID, "path", path)

	payload, err := b.variants.Resolve(dbctx.Context{Ctx: ctx}, node)
	if err != nil {
		if errors.Is(err, pages.ErrOrphanedNode) || errors.Is(err, pages.ErrUnknownVariant) {
			log.Error("Page payload unresolvable", "variant", node.VariantType, "error", err)
		}
		return nil, err
	}
	breadcrumbs, err := b.tree.Ancestors(ctx, node)
	if err != nil {
		return nil, err
	}
	// Processors and templates see the node's own path, whatever spelling
	// the request used.
	path = resolvedPath(breadcrumbs, node)

	res, err := b.processors.Dispatch(ctx, req, processors.Target{Node: node, Payload: payload, Path: path})
	if err != nil {
		var he *processors.HandlerError
		if errors.As(err, &he) {
			log.Error("Page processor failed", "processor", he.Processor, "selector", he.Selector, "error", he.Err)
		}
		return nil, err
	}

	out := &Outcome{Node: node, Payload: payload, Path: path, Preview: preview}
	if res.Response != nil {
		out.Response = res.Response.Response
		out.TerminalBy = res.Response.Processor
		return out, nil
	}

	out.Context = map[string]any{
		"page":        node,
		"content":     payload,
		"path":        path,
		"breadcrumbs": breadcrumbs,
		"preview":     preview,
	}
	for k, v := range res.Context {
		out.Context[k] = v
	}
	out.TemplateCandidates = b.templates.Candidates(node)
	return out, nil
}

func resolvedPath(ancestors []*pages.Node, node *pages.Node) string {
	segs := make([]string, 0, len(ancestors)+1)
	for _, a := range ancestors {
		segs = append(segs, a.Slug)
	}
	return strings.Join(append(segs, node.Slug), "/")
}
