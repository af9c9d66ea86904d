package tree

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/yungbote/pagetree/internal/domain/pages"
	"github.com/yungbote/pagetree/internal/platform/dbctx"
)

type DeletePolicy int

const (
	// DeleteCascade removes the node and everything under it.
	DeleteCascade DeletePolicy = iota
	// DeleteReparent removes only the node; its children take its slot
	// under its parent, keeping their order.
	DeleteReparent
)

func ParseDeletePolicy(s string) (DeletePolicy, error) {
	switch s {
	case "", "cascade":
		return DeleteCascade, nil
	case "reparent":
		return DeleteReparent, nil
	default:
		return DeleteCascade, fmt.Errorf("%w: delete policy %q", pages.ErrInvalidInput, s)
	}
}

func (t *Tree) Delete(ctx context.Context, id uuid.UUID, policy DeletePolicy) error {
	return t.mutate(ctx, "Delete", t.nodeAndSiblingsScope(id), func(dbc dbctx.Context) error {
		node, err := t.get(dbc, id)
		if err != nil {
			return err
		}
		siblings, err := t.nodes.QueryChildren(dbc, node.ParentID)
		if err != nil {
			return err
		}
		slot := indexOf(siblings, node.ID)
		rest := without(siblings, node.ID)

		var removed []*pages.Node
		switch policy {
		case DeleteReparent:
			children, err := t.nodes.QueryChildren(dbc, &node.ID)
			if err != nil {
				return err
			}
			if err := t.checkAdoption(dbc, node, children, rest); err != nil {
				return err
			}
			// The node's row goes first so a child may take over its slug.
			removed = []*pages.Node{node}
			if err := t.removeNodes(dbc, removed); err != nil {
				return err
			}
			if slot < 0 || slot > len(rest) {
				slot = len(rest)
			}
			ordered := insertAt(rest, slot, children...)
			childIDs := make([]uuid.UUID, 0, len(children))
			for _, c := range children {
				childIDs = append(childIDs, c.ID)
			}
			if err := t.nodes.UpdatePositions(dbc, renumber(ordered, childIDs...)); err != nil {
				return err
			}
			var parentVal interface{}
			if node.ParentID != nil {
				parentVal = *node.ParentID
			}
			for _, c := range children {
				if err := t.nodes.UpdateFields(dbc, c.ID, map[string]interface{}{
					"parent_id": parentVal,
					"position":  c.Position,
				}); err != nil {
					return err
				}
			}
		default:
			desc, err := t.descendants(dbc, node)
			if err != nil {
				return err
			}
			removed = append([]*pages.Node{node}, desc...)
			if err := t.nodes.UpdatePositions(dbc, renumber(rest)); err != nil {
				return err
			}
			if err := t.removeNodes(dbc, removed); err != nil {
				return err
			}
		}

		t.log.Info("Page deleted", "node_id", node.ID, "removed", len(removed), "reparent", policy == DeleteReparent)
		return nil
	})
}

// checkAdoption validates moving children of node up one level, next to
// the siblings that remain.
func (t *Tree) checkAdoption(dbc dbctx.Context, node *pages.Node, children, remaining []*pages.Node) error {
	if node.ParentID != nil {
		parent, err := t.get(dbc, *node.ParentID)
		if err != nil {
			return err
		}
		allowed := t.variants.PermittedChildTypes(parent)
		for _, c := range children {
			if !allowed.Permits(c.VariantType) {
				return fmt.Errorf("%w: %q does not accept orphaned %q child %s", pages.ErrInvalidPlacement, parent.VariantType, c.VariantType, c.Slug)
			}
		}
	}
	used := make(map[string]struct{}, len(remaining))
	for _, s := range remaining {
		used[s.Slug] = struct{}{}
	}
	for _, c := range children {
		if _, clash := used[c.Slug]; clash {
			return fmt.Errorf("%w: orphaned child slug %q clashes with a sibling", pages.ErrInvalidPlacement, c.Slug)
		}
	}
	return nil
}

// removeNodes deletes payloads, runs hooks, then deletes the node rows.
// A node of an unregistered variant stops the delete so its payload row
// is never left behind.
func (t *Tree) removeNodes(dbc dbctx.Context, removed []*pages.Node) error {
	ids := make([]uuid.UUID, 0, len(removed))
	for _, n := range removed {
		p, err := t.variants.NewPayload(n.VariantType)
		if err != nil {
			return fmt.Errorf("delete %s: %w", n.ID, err)
		}
		p.SetPageNodeID(n.ID)
		if err := t.payloads.Delete(dbc, p); err != nil {
			return fmt.Errorf("delete %s payload: %w", n.VariantType, err)
		}
		ids = append(ids, n.ID)
	}

	t.hooksMu.RLock()
	hooks := append([]DeleteHook(nil), t.hooks...)
	t.hooksMu.RUnlock()
	for _, h := range hooks {
		if err := h(dbc, removed); err != nil {
			return err
		}
	}
	return t.nodes.Delete(dbc, ids)
}
