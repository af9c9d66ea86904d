package pages

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	domain "github.com/yungbote/pagetree/internal/domain/pages"
	"github.com/yungbote/pagetree/internal/modules/pages/tree"
	"github.com/yungbote/pagetree/internal/platform/dbctx"
)

type CreatePageInput struct {
	ParentID      *uuid.UUID      `json:"parent_id,omitempty"`
	Position      *int            `json:"position,omitempty"`
	VariantType   string          `json:"variant_type"`
	Title         string          `json:"title"`
	Slug          string          `json:"slug,omitempty"`
	Description   string          `json:"description,omitempty"`
	Status        domain.Status   `json:"status,omitempty"`
	PublishAt     *time.Time      `json:"publish_at,omitempty"`
	ExpireAt      *time.Time      `json:"expire_at,omitempty"`
	InMenus       *bool           `json:"in_menus,omitempty"`
	LoginRequired bool            `json:"login_required,omitempty"`
	Content       json.RawMessage `json:"content,omitempty"`
}

func (u Usecases) CreatePage(ctx context.Context, p domain.Principal, in CreatePageInput) (*PageView, error) {
	desc, ok := u.deps.Variants.Lookup(in.VariantType)
	if !ok {
		return nil, fmt.Errorf("%w: %w: %q", domain.ErrInvalidInput, domain.ErrUnknownVariant, in.VariantType)
	}
	if !u.deps.Perms.CanCreate(desc.Type, p) {
		return nil, fmt.Errorf("%w: cannot create %s pages", domain.ErrPermissionDenied, desc.Type)
	}
	parent, err := u.parent(ctx, in.ParentID)
	if err != nil {
		return nil, err
	}
	if !u.deps.Perms.CanAdd(ctx, parent, p) {
		return nil, fmt.Errorf("%w: cannot add pages here", domain.ErrPermissionDenied)
	}

	payload := desc.New()
	if len(in.Content) > 0 {
		if err := json.Unmarshal(in.Content, payload); err != nil {
			return nil, fmt.Errorf("%w: content: %v", domain.ErrInvalidInput, err)
		}
	}
	inMenus := true
	if in.InMenus != nil {
		inMenus = *in.InMenus
	}
	node := &domain.Node{
		Title:         in.Title,
		Slug:          in.Slug,
		Description:   in.Description,
		Status:        in.Status,
		PublishAt:     in.PublishAt,
		ExpireAt:      in.ExpireAt,
		VariantType:   desc.Type,
		InMenus:       inMenus,
		LoginRequired: in.LoginRequired,
	}
	if err := u.deps.Tree.Insert(ctx, node, payload, in.ParentID, in.Position); err != nil {
		return nil, err
	}
	u.deps.Log.Info("Page created", "node_id", node.ID, "variant", node.VariantType, "principal", p.UserID)
	return u.view(ctx, p, node, payload)
}

type EditPageInput struct {
	Title         *string         `json:"title,omitempty"`
	Slug          *string         `json:"slug,omitempty"`
	Description   *string         `json:"description,omitempty"`
	InMenus       *bool           `json:"in_menus,omitempty"`
	LoginRequired *bool           `json:"login_required,omitempty"`
	Content       json.RawMessage `json:"content,omitempty"`
}

func (u Usecases) EditPage(ctx context.Context, p domain.Principal, id uuid.UUID, in EditPageInput) (*PageView, error) {
	node, err := u.deps.Tree.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !u.deps.Perms.CanChange(ctx, node, p) {
		return nil, fmt.Errorf("%w: cannot change %s", domain.ErrPermissionDenied, id)
	}
	node, payload, err := u.deps.Tree.Edit(ctx, id, func(_ dbctx.Context, n *domain.Node, pl domain.Payload) error {
		if in.Title != nil {
			n.Title = *in.Title
		}
		if in.Slug != nil {
			n.Slug = *in.Slug
		}
		if in.Description != nil {
			n.Description = *in.Description
		}
		if in.InMenus != nil {
			n.InMenus = *in.InMenus
		}
		if in.LoginRequired != nil {
			n.LoginRequired = *in.LoginRequired
		}
		if len(in.Content) > 0 {
			if err := json.Unmarshal(in.Content, pl); err != nil {
				return fmt.Errorf("%w: content: %v", domain.ErrInvalidInput, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return u.view(ctx, p, node, payload)
}

// MovePage needs CanMove on the node and, when the parent changes,
// CanAdd on the destination.
func (u Usecases) MovePage(ctx context.Context, p domain.Principal, id uuid.UUID, parentID *uuid.UUID, position *int) (*domain.Node, error) {
	node, err := u.deps.Tree.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	parent, err := u.parent(ctx, parentID)
	if err != nil {
		return nil, err
	}
	if !u.deps.Perms.CanMove(ctx, node, parent, p) {
		return nil, fmt.Errorf("%w: cannot move %s", domain.ErrPermissionDenied, id)
	}
	if !domain.SameParent(node.ParentID, parentID) && !u.deps.Perms.CanAdd(ctx, parent, p) {
		return nil, fmt.Errorf("%w: cannot add pages under the destination", domain.ErrPermissionDenied)
	}
	return u.deps.Tree.Move(ctx, id, parentID, position)
}

func (u Usecases) ReorderPage(ctx context.Context, p domain.Principal, id uuid.UUID, position int) (*domain.Node, error) {
	node, err := u.deps.Tree.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return u.MovePage(ctx, p, id, node.ParentID, &position)
}

func (u Usecases) PublishPage(ctx context.Context, p domain.Principal, id uuid.UUID, publishAt, expireAt *time.Time) (*domain.Node, error) {
	return u.setStatus(ctx, p, id, domain.StatusPublished, publishAt, expireAt)
}

func (u Usecases) UnpublishPage(ctx context.Context, p domain.Principal, id uuid.UUID) (*domain.Node, error) {
	return u.setStatus(ctx, p, id, domain.StatusDraft, nil, nil)
}

func (u Usecases) setStatus(ctx context.Context, p domain.Principal, id uuid.UUID, s domain.Status, publishAt, expireAt *time.Time) (*domain.Node, error) {
	node, err := u.deps.Tree.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !u.deps.Perms.CanChange(ctx, node, p) {
		return nil, fmt.Errorf("%w: cannot change %s", domain.ErrPermissionDenied, id)
	}
	return u.deps.Tree.SetStatus(ctx, id, s, publishAt, expireAt)
}

func (u Usecases) DeletePage(ctx context.Context, p domain.Principal, id uuid.UUID, policy tree.DeletePolicy) error {
	node, err := u.deps.Tree.Get(ctx, id)
	if err != nil {
		return err
	}
	if !u.deps.Perms.CanDelete(ctx, node, p) {
		return fmt.Errorf("%w: cannot delete %s", domain.ErrPermissionDenied, id)
	}
	if err := u.deps.Tree.Delete(ctx, id, policy); err != nil {
		return err
	}
	u.deps.Log.Info("Page deleted", "node_id", id, "principal", p.UserID)
	return nil
}

func (u Usecases) parent(ctx context.Context, parentID *uuid.UUID) (*domain.Node, error) {
	if parentID == nil {
		return nil, nil
	}
	parent, err := u.deps.Tree.Get(ctx, *parentID)
	if err != nil {
		return nil, fmt.Errorf("%w: parent %w", domain.ErrInvalidPlacement, err)
	}
	return parent, nil
}
