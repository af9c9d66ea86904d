package tree

import (
	"context"

	"github.com/google/uuid"

	"github.com/yungbote/pagetree/internal/domain/pages"
	"github.com/yungbote/pagetree/internal/platform/dbctx"
)

// Branch is a node with its children loaded.
type Branch struct {
	Node     *pages.Node
	Children []*Branch
}

// Forest loads the subtrees under parentID (nil for the whole site),
// at most depth levels deep; depth <= 0 means MaxDepth. One query per
// level.
func (t *Tree) Forest(ctx context.Context, parentID *uuid.UUID, depth int) ([]*Branch, error) {
	if depth <= 0 || depth > t.cfg.MaxDepth {
		depth = t.cfg.MaxDepth
	}
	dbc := dbctx.Context{Ctx: ctx}
	top, err := t.nodes.QueryChildren(dbc, parentID)
	if err != nil {
		return nil, err
	}
	roots := make([]*Branch, 0, len(top))
	index := map[uuid.UUID]*Branch{}
	frontier := make([]uuid.UUID, 0, len(top))
	for _, n := range top {
		b := &Branch{Node: n}
		roots = append(roots, b)
		index[n.ID] = b
		frontier = append(frontier, n.ID)
	}
	for level := 1; level < depth && len(frontier) > 0; level++ {
		kids, err := t.nodes.QueryChildrenOf(dbc, frontier)
		if err != nil {
			return nil, err
		}
		frontier = frontier[:0]
		for _, k := range kids {
			parent := index[*k.ParentID]
			b := &Branch{Node: k}
			parent.Children = append(parent.Children, b)
			index[k.ID] = b
			frontier = append(frontier, k.ID)
		}
	}
	return roots, nil
}

// Walk visits branches depth first, parents before children.
func Walk(branches []*Branch, fn func(b *Branch, depth int)) {
	var visit func(bs []*Branch, depth int)
	visit = func(bs []*Branch, depth int) {
		for _, b := range bs {
			fn(b, depth)
			visit(b.Children, depth+1)
		}
	}
	visit(branches, 0)
}
