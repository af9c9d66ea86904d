package tree

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/yungbote/pagetree/internal/domain/pages"
	"github.com/yungbote/pagetree/internal/platform/dbctx"
)

// Move re-parents the node (nil for the root level) and places it at
// position among its new siblings. Moving under itself or a descendant
// fails with ErrCycleDetected and changes nothing.
func (t *Tree) Move(ctx context.Context, id uuid.UUID, newParentID *uuid.UUID, position *int) (*pages.Node, error) {
	if position != nil && *position < 0 {
		return nil, fmt.Errorf("%w: negative position %d", pages.ErrInvalidPlacement, *position)
	}
	if newParentID != nil && *newParentID == id {
		return nil, fmt.Errorf("%w: %w: %s cannot be its own parent", pages.ErrInvalidPlacement, pages.ErrCycleDetected, id)
	}
	if newParentID != nil {
		pid := *newParentID
		newParentID = &pid
	}

	scope := func(dbc dbctx.Context) ([]string, error) {
		node, err := t.get(dbc, id)
		if err != nil {
			return nil, err
		}
		own, err := t.subtreeKey(dbc, node)
		if err != nil {
			return nil, err
		}
		from, err := t.siblingKey(dbc, node.ParentID)
		if err != nil {
			return nil, err
		}
		to, err := t.siblingKey(dbc, newParentID)
		if err != nil {
			return nil, err
		}
		return []string{own, from, to}, nil
	}

	var moved *pages.Node
	err := t.mutate(ctx, "Move", scope, func(dbc dbctx.Context) error {
		node, err := t.get(dbc, id)
		if err != nil {
			return err
		}
		if newParentID != nil {
			parent, err := t.nodes.Get(dbc, *newParentID)
			if err != nil {
				return err
			}
			if parent == nil {
				return fmt.Errorf("%w: parent %w: %s", pages.ErrInvalidPlacement, pages.ErrNotFound, *newParentID)
			}
			height, err := t.subtreeHeight(dbc, node)
			if err != nil {
				return err
			}
			if err := t.checkPlacement(dbc, node, parent, height); err != nil {
				return err
			}
		}

		if pages.SameParent(node.ParentID, newParentID) {
			siblings, err := t.nodes.QueryChildren(dbc, node.ParentID)
			if err != nil {
				return err
			}
			rest := without(siblings, node.ID)
			pos := clampPosition(position, len(rest))
			ordered := insertAt(rest, pos, node)
			if err := t.nodes.UpdatePositions(dbc, renumber(ordered)); err != nil {
				return err
			}
			node.Position = pos
			moved = node
			return nil
		}

		clash, err := t.nodes.FindChildBySlug(dbc, newParentID, node.Slug)
		if err != nil {
			return err
		}
		if clash != nil {
			return fmt.Errorf("%w: slug %q is taken under the new parent", pages.ErrInvalidPlacement, node.Slug)
		}

		old, err := t.nodes.QueryChildren(dbc, node.ParentID)
		if err != nil {
			return err
		}
		if err := t.nodes.UpdatePositions(dbc, renumber(without(old, node.ID))); err != nil {
			return err
		}

		dest, err := t.nodes.QueryChildren(dbc, newParentID)
		if err != nil {
			return err
		}
		pos := clampPosition(position, len(dest))
		if err := t.nodes.UpdatePositions(dbc, renumber(insertAt(dest, pos, node), node.ID)); err != nil {
			return err
		}

		var parentVal interface{}
		if newParentID != nil {
			parentVal = *newParentID
		}
		if err := t.nodes.UpdateFields(dbc, node.ID, map[string]interface{}{
			"parent_id": parentVal,
			"position":  pos,
		}); err != nil {
			return err
		}
		node.ParentID = newParentID
		node.Position = pos
		moved = node
		t.log.Info("Page moved", "node_id", node.ID, "position", pos)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return moved, nil
}

// Reorder moves the node within its current sibling list.
func (t *Tree) Reorder(ctx context.Context, id uuid.UUID, position int) (*pages.Node, error) {
	node, err := t.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return t.Move(ctx, id, node.ParentID, &position)
}

// subtreeHeight counts levels from node down, 1 for a leaf.
func (t *Tree) subtreeHeight(dbc dbctx.Context, node *pages.Node) (int, error) {
	height := 1
	frontier := []uuid.UUID{node.ID}
	for {
		kids, err := t.nodes.QueryChildrenOf(dbc, frontier)
		if err != nil {
			return 0, err
		}
		if len(kids) == 0 {
			return height, nil
		}
		height++
		if height > t.cfg.MaxDepth+1 {
			return height, nil
		}
		frontier = frontier[:0]
		for _, k := range kids {
			frontier = append(frontier, k.ID)
		}
	}
}

// descendants lists every node under node, parents before children.
func (t *Tree) descendants(dbc dbctx.Context, node *pages.Node) ([]*pages.Node, error) {
	var out []*pages.Node
	frontier := []uuid.UUID{node.ID}
	for depth := 0; len(frontier) > 0; depth++ {
		if depth > t.cfg.MaxDepth {
			return nil, fmt.Errorf("%w: subtree under %s does not terminate", pages.ErrCycleDetected, node.ID)
		}
		kids, err := t.nodes.QueryChildrenOf(dbc, frontier)
		if err != nil {
			return nil, err
		}
		out = append(out, kids...)
		frontier = make([]uuid.UUID, 0, len(kids))
		for _, k := range kids {
			frontier = append(frontier, k.ID)
		}
	}
	return out, nil
}
