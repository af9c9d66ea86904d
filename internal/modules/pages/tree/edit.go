package tree

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/pagetree/internal/data/db"
	"github.com/yungbote/pagetree/internal/domain/pages"
	"github.com/yungbote/pagetree/internal/platform/dbctx"
)

// EditFunc changes fields of a loaded node and payload in place. It must
// not change placement; use Move for that.
type EditFunc func(dbc dbctx.Context, node *pages.Node, payload pages.Payload) error

// Edit loads the node and its payload under the subtree lock, applies fn,
// re-validates, and saves both.
func (t *Tree) Edit(ctx context.Context, id uuid.UUID, fn EditFunc) (*pages.Node, pages.Payload, error) {
	var (
		outNode    *pages.Node
		outPayload pages.Payload
	)
	err := t.mutate(ctx, "Edit", t.nodeAndSiblingsScope(id), func(dbc dbctx.Context) error {
		node, err := t.get(dbc, id)
		if err != nil {
			return err
		}
		payload, err := t.variants.Resolve(dbc, node)
		if err != nil {
			return err
		}
		before := *node
		if err := fn(dbc, node, payload); err != nil {
			return err
		}
		if node.ID != before.ID || !pages.SameParent(node.ParentID, before.ParentID) ||
			node.Position != before.Position || node.VariantType != before.VariantType {
			return fmt.Errorf("%w: edit cannot change identity, placement, or variant", pages.ErrInvalidInput)
		}
		if node.Slug != before.Slug || node.Slug == "" {
			if err := validateFields(node); err != nil {
				return err
			}
			if err := t.assignSlug(dbc, node, node.ParentID); err != nil {
				return err
			}
		} else if err := validateFields(node); err != nil {
			return err
		}

		if err := t.nodes.Put(dbc, node); err != nil {
			if db.IsUniqueViolation(err) {
				return fmt.Errorf("%w: slug %q is taken", pages.ErrInvalidPlacement, node.Slug)
			}
			return err
		}
		payload.SetPageNodeID(node.ID)
		if err := t.payloads.Put(dbc, payload); err != nil {
			return err
		}
		outNode, outPayload = node, payload
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return outNode, outPayload, nil
}

// SetStatus publishes or unpublishes a node and sets its publication
// window.
func (t *Tree) SetStatus(ctx context.Context, id uuid.UUID, status pages.Status, publishAt, expireAt *time.Time) (*pages.Node, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: status %q", pages.ErrInvalidInput, status)
	}
	if err := validateWindow(publishAt, expireAt); err != nil {
		return nil, err
	}
	var out *pages.Node
	err := t.Atomically(ctx, id, func(dbc dbctx.Context, node *pages.Node) error {
		if err := t.nodes.UpdateFields(dbc, node.ID, map[string]interface{}{
			"status":     status,
			"publish_at": publishAt,
			"expire_at":  expireAt,
		}); err != nil {
			return err
		}
		node.Status, node.PublishAt, node.ExpireAt = status, publishAt, expireAt
		out = node
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Atomically runs fn under the node's subtree lock and inside a
// transaction. Processors that write go through here so a failed or
// cancelled request leaves nothing half done.
func (t *Tree) Atomically(ctx context.Context, id uuid.UUID, fn func(dbc dbctx.Context, node *pages.Node) error) error {
	scope := func(dbc dbctx.Context) ([]string, error) {
		node, err := t.get(dbc, id)
		if err != nil {
			return nil, err
		}
		k, err := t.subtreeKey(dbc, node)
		if err != nil {
			return nil, err
		}
		return []string{k}, nil
	}
	return t.mutate(ctx, "Atomically", scope, func(dbc dbctx.Context) error {
		node, err := t.get(dbc, id)
		if err != nil {
			return err
		}
		return fn(dbc, node)
	})
}

func (t *Tree) nodeAndSiblingsScope(id uuid.UUID) scopeFunc {
	return func(dbc dbctx.Context) ([]string, error) {
		node, err := t.get(dbc, id)
		if err != nil {
			return nil, err
		}
		own, err := t.subtreeKey(dbc, node)
		if err != nil {
			return nil, err
		}
		siblings, err := t.siblingKey(dbc, node.ParentID)
		if err != nil {
			return nil, err
		}
		return []string{own, siblings}, nil
	}
}
