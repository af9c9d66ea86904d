// Package tree owns the shape of the content tree: where nodes sit, in
// what order, and who may change that at the same time.
package tree

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"gorm.io/gorm"

	"github.com/yungbote/pagetree/internal/data/repos"
	"github.com/yungbote/pagetree/internal/domain/pages"
	"github.com/yungbote/pagetree/internal/modules/pages/variants"
	"github.com/yungbote/pagetree/internal/platform/dbctx"
	"github.com/yungbote/pagetree/internal/platform/locker"
	"github.com/yungbote/pagetree/internal/platform/logger"
)

var tracer = otel.Tracer("github.com/yungbote/pagetree/tree")

type Config struct {
	// LockTimeout bounds how long a mutation waits for its subtree.
	LockTimeout time.Duration
	// MaxDepth is the deepest level a node may sit at; roots are level 1.
	MaxDepth int
}

func (c Config) withDefaults() Config {
	if c.LockTimeout <= 0 {
		c.LockTimeout = 5 * time.Second
	}
	if c.MaxDepth <= 0 {
		c.MaxDepth = 32
	}
	return c
}

// DeleteHook runs inside the deleting transaction with every node about
// to be removed.
type DeleteHook func(dbc dbctx.Context, removed []*pages.Node) error

type Tree struct {
	db       *gorm.DB
	log      *logger.Logger
	nodes    repos.NodeRepo
	payloads repos.PayloadRepo
	variants *variants.Registry
	locks    locker.Locker
	cfg      Config

	hooksMu sync.RWMutex
	hooks   []DeleteHook
}

func New(
	db *gorm.DB,
	baseLog *logger.Logger,
	nodes repos.NodeRepo,
	payloads repos.PayloadRepo,
	reg *variants.Registry,
	locks locker.Locker,
	cfg Config,
) *Tree {
	if locks == nil {
		locks = locker.NewLocal()
	}
	return &Tree{
		db:       db,
		log:      baseLog.With("service", "PageTree"),
		nodes:    nodes,
		payloads: payloads,
		variants: reg,
		locks:    locks,
		cfg:      cfg.withDefaults(),
	}
}

func (t *Tree) OnDelete(h DeleteHook) {
	t.hooksMu.Lock()
	t.hooks = append(t.hooks, h)
	t.hooksMu.Unlock()
}

func (t *Tree) MaxDepth() int { return t.cfg.MaxDepth }

func (t *Tree) Get(ctx context.Context, id uuid.UUID) (*pages.Node, error) {
	return t.get(dbctx.Context{Ctx: ctx}, id)
}

func (t *Tree) get(dbc dbctx.Context, id uuid.UUID) (*pages.Node, error) {
	n, err := t.nodes.Get(dbc, id)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, fmt.Errorf("%w: %s", pages.ErrNotFound, id)
	}
	return n, nil
}

// Children lists the children of parentID in sibling order; nil lists
// the roots.
func (t *Tree) Children(ctx context.Context, parentID *uuid.UUID) ([]*pages.Node, error) {
	return t.nodes.QueryChildren(dbctx.Context{Ctx: ctx}, parentID)
}

// Ancestors returns the chain above node, root first.
func (t *Tree) Ancestors(ctx context.Context, node *pages.Node) ([]*pages.Node, error) {
	return t.ancestors(dbctx.Context{Ctx: ctx}, node)
}

func (t *Tree) ancestors(dbc dbctx.Context, node *pages.Node) ([]*pages.Node, error) {
	var chain []*pages.Node
	cur := node
	for cur != nil && cur.ParentID != nil {
		if len(chain) > t.cfg.MaxDepth {
			return nil, fmt.Errorf("%w: parent chain of %s does not terminate", pages.ErrCycleDetected, node.ID)
		}
		parent, err := t.nodes.Get(dbc, *cur.ParentID)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, fmt.Errorf("%w: parent %s of %s is missing", pages.ErrNotFound, *cur.ParentID, cur.ID)
		}
		chain = append(chain, parent)
		cur = parent
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain, nil
}

// PathOf joins the slugs from the root down to node.
func (t *Tree) PathOf(ctx context.Context, node *pages.Node) (string, error) {
	chain, err := t.Ancestors(ctx, node)
	if err != nil {
		return "", err
	}
	parts := make([]string, 0, len(chain)+1)
	for _, a := range chain {
		parts = append(parts, a.Slug)
	}
	parts = append(parts, node.Slug)
	return strings.Join(parts, "/"), nil
}

// SplitPath breaks "/a/b/" into ["a", "b"], dropping empty segments.
func SplitPath(path string) []string {
	var out []string
	for _, seg := range strings.Split(path, "/") {
		if seg = strings.TrimSpace(seg); seg != "" {
			out = append(out, seg)
		}
	}
	return out
}

// ResolveByPath walks slug segments from the root level down.
func (t *Tree) ResolveByPath(ctx context.Context, path string) (*pages.Node, error) {
	segs := SplitPath(path)
	if len(segs) == 0 || len(segs) > t.cfg.MaxDepth {
		return nil, fmt.Errorf("%w: %q", pages.ErrNotFound, path)
	}
	dbc := dbctx.Context{Ctx: ctx}
	var parentID *uuid.UUID
	var node *pages.Node
	for _, seg := range segs {
		child, err := t.nodes.FindChildBySlug(dbc, parentID, seg)
		if err != nil {
			return nil, err
		}
		if child == nil {
			return nil, fmt.Errorf("%w: %q", pages.ErrNotFound, path)
		}
		node = child
		parentID = &child.ID
	}
	return node, nil
}
