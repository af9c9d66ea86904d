package tree

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/pagetree/internal/data/db"
	"github.com/yungbote/pagetree/internal/domain/pages"
	"github.com/yungbote/pagetree/internal/platform/dbctx"
	"github.com/yungbote/pagetree/internal/platform/slug"
)

// Insert places a new node and its payload under parentID (nil for the
// root level) at position (nil to append). Both rows are written in the
// same transaction or not at all.
func (t *Tree) Insert(ctx context.Context, node *pages.Node, payload pages.Payload, parentID *uuid.UUID, position *int) error {
	if node == nil || payload == nil {
		return fmt.Errorf("%w: node and payload are required", pages.ErrInvalidInput)
	}
	if _, ok := t.variants.Lookup(node.VariantType); !ok {
		return fmt.Errorf("%w: %w: %q", pages.ErrInvalidPlacement, pages.ErrUnknownVariant, node.VariantType)
	}
	if payload.VariantType() != node.VariantType {
		return fmt.Errorf("%w: payload is %q, node is %q", pages.ErrInvalidInput, payload.VariantType(), node.VariantType)
	}
	if position != nil && *position < 0 {
		return fmt.Errorf("%w: negative position %d", pages.ErrInvalidPlacement, *position)
	}
	if err := validateFields(node); err != nil {
		return err
	}
	if parentID != nil {
		pid := *parentID
		parentID = &pid
	}

	scope := func(dbc dbctx.Context) ([]string, error) {
		k, err := t.siblingKey(dbc, parentID)
		if err != nil {
			return nil, err
		}
		return []string{k}, nil
	}
	return t.mutate(ctx, "Insert", scope, func(dbc dbctx.Context) error {
		var parent *pages.Node
		if parentID != nil {
			p, err := t.nodes.Get(dbc, *parentID)
			if err != nil {
				return err
			}
			if p == nil {
				return fmt.Errorf("%w: parent %w: %s", pages.ErrInvalidPlacement, pages.ErrNotFound, *parentID)
			}
			parent = p
			if err := t.checkPlacement(dbc, node, parent, 1); err != nil {
				return err
			}
		}

		if node.ID != uuid.Nil {
			existing, err := t.nodes.Get(dbc, node.ID)
			if err != nil {
				return err
			}
			if existing != nil {
				return fmt.Errorf("%w: node %s is already in the tree", pages.ErrInvalidPlacement, node.ID)
			}
		} else {
			node.ID = uuid.New()
		}

		if err := t.assignSlug(dbc, node, parentID); err != nil {
			return err
		}

		siblings, err := t.nodes.QueryChildren(dbc, parentID)
		if err != nil {
			return err
		}
		pos := clampPosition(position, len(siblings))
		ordered := insertAt(siblings, pos, node)
		if err := t.nodes.UpdatePositions(dbc, renumber(ordered, node.ID)); err != nil {
			return err
		}

		node.ParentID = parentID
		node.Position = pos
		if err := t.nodes.Create(dbc, node); err != nil {
			if db.IsUniqueViolation(err) {
				return fmt.Errorf("%w: slug %q is taken", pages.ErrInvalidPlacement, node.Slug)
			}
			return err
		}
		payload.SetPageNodeID(node.ID)
		if err := t.payloads.Create(dbc, payload); err != nil {
			return fmt.Errorf("create %s payload: %w", node.VariantType, err)
		}
		t.log.Info("Page inserted", "node_id", node.ID, "slug", node.Slug, "variant", node.VariantType, "position", pos)
		return nil
	})
}

// checkPlacement validates putting a subtree of the given height (1 for
// a single node) under parent.
func (t *Tree) checkPlacement(dbc dbctx.Context, node, parent *pages.Node, height int) error {
	chain, err := t.ancestors(dbc, parent)
	if err != nil {
		return err
	}
	chain = append(chain, parent)
	if node.ID != uuid.Nil {
		for _, a := range chain {
			if a.ID == node.ID {
				return fmt.Errorf("%w: %w: %s would become its own ancestor", pages.ErrInvalidPlacement, pages.ErrCycleDetected, node.ID)
			}
		}
	}
	if len(chain)+height > t.cfg.MaxDepth {
		return fmt.Errorf("%w: depth %d exceeds %d", pages.ErrInvalidPlacement, len(chain)+height, t.cfg.MaxDepth)
	}
	if !t.variants.PermittedChildTypes(parent).Permits(node.VariantType) {
		return fmt.Errorf("%w: %q does not accept %q children", pages.ErrInvalidPlacement, parent.VariantType, node.VariantType)
	}
	return nil
}

// assignSlug generates a unique slug from the title when none was given
// and rejects an explicit one that a sibling already uses.
func (t *Tree) assignSlug(dbc dbctx.Context, node *pages.Node, parentID *uuid.UUID) error {
	taken := func(candidate string) (bool, error) {
		clash, err := t.nodes.FindChildBySlug(dbc, parentID, candidate)
		if err != nil {
			return false, err
		}
		return clash != nil && clash.ID != node.ID, nil
	}
	if node.Slug == "" {
		base := slug.Make(node.Title)
		if base == "" {
			base = "page"
		}
		s, err := slug.Unique(base, taken)
		if err != nil {
			return err
		}
		node.Slug = s
		return nil
	}
	used, err := taken(node.Slug)
	if err != nil {
		return err
	}
	if used {
		return fmt.Errorf("%w: slug %q is taken", pages.ErrInvalidPlacement, node.Slug)
	}
	return nil
}

func validateFields(node *pages.Node) error {
	if node.Title == "" && node.Slug == "" {
		return fmt.Errorf("%w: title or slug is required", pages.ErrInvalidInput)
	}
	if node.Slug != "" && !slug.Valid(node.Slug) {
		return fmt.Errorf("%w: slug %q", pages.ErrInvalidInput, node.Slug)
	}
	if node.Status == "" {
		node.Status = pages.StatusDraft
	}
	if !node.Status.Valid() {
		return fmt.Errorf("%w: status %q", pages.ErrInvalidInput, node.Status)
	}
	return validateWindow(node.PublishAt, node.ExpireAt)
}

func validateWindow(publishAt, expireAt *time.Time) error {
	if publishAt != nil && expireAt != nil && !expireAt.After(*publishAt) {
		return fmt.Errorf("%w: expiry must be after publish time", pages.ErrInvalidInput)
	}
	return nil
}
