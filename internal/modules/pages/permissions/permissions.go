// Package permissions answers whether a principal may mutate a node.
// Each variant may supply its own predicates; a supplied predicate
// replaces the default outright rather than being combined with it.
package permissions

import (
	"context"
	"strings"

	"github.com/yungbote/pagetree/internal/domain/pages"
)

const (
	PermChange = "pages.change_node"
	PermDelete = "pages.delete_node"
)

// PermAdd is the permission that makes a variant type creatable.
func PermAdd(variantType string) string {
	return "pages.add_" + strings.ToLower(variantType)
}

// Check is what an instance predicate sees.
type Check struct {
	Ctx       context.Context
	Node      *pages.Node
	Principal pages.Principal
}

type Predicate func(c Check) bool

// MoveCheck additionally carries the destination parent, nil for root.
type MoveCheck struct {
	Check
	NewParent *pages.Node
}

type MovePredicate func(c MoveCheck) bool

// Overrides holds the predicates a variant declares. Nil fields fall
// back to the defaults.
type Overrides struct {
	CanAdd    Predicate
	CanChange Predicate
	CanDelete Predicate
	CanMove   MovePredicate
	// CanCreate is type level: it runs before any instance exists.
	CanCreate func(p pages.Principal) bool
}

// Source yields the overrides registered for a variant type.
type Source interface {
	Overrides(variantType string) (Overrides, bool)
}

type Delegate struct {
	src Source
}

func NewDelegate(src Source) *Delegate {
	return &Delegate{src: src}
}

func (d *Delegate) overrides(variantType string) Overrides {
	if d == nil || d.src == nil {
		return Overrides{}
	}
	o, _ := d.src.Overrides(variantType)
	return o
}

// CanAdd reports whether children may be added under node.
func (d *Delegate) CanAdd(ctx context.Context, node *pages.Node, p pages.Principal) bool {
	if node == nil {
		return (p.Authenticated && p.Staff) || p.Superuser
	}
	if fn := d.overrides(node.VariantType).CanAdd; fn != nil {
		return fn(Check{Ctx: ctx, Node: node, Principal: p})
	}
	return true
}

func (d *Delegate) CanChange(ctx context.Context, node *pages.Node, p pages.Principal) bool {
	if node == nil {
		return false
	}
	if fn := d.overrides(node.VariantType).CanChange; fn != nil {
		return fn(Check{Ctx: ctx, Node: node, Principal: p})
	}
	return p.HasPerm(PermChange)
}

func (d *Delegate) CanDelete(ctx context.Context, node *pages.Node, p pages.Principal) bool {
	if node == nil {
		return false
	}
	if fn := d.overrides(node.VariantType).CanDelete; fn != nil {
		return fn(Check{Ctx: ctx, Node: node, Principal: p})
	}
	return p.HasPerm(PermDelete)
}

// CanMove defaults to CanChange on the moved node.
func (d *Delegate) CanMove(ctx context.Context, node, newParent *pages.Node, p pages.Principal) bool {
	if node == nil {
		return false
	}
	if fn := d.overrides(node.VariantType).CanMove; fn != nil {
		return fn(MoveCheck{Check: Check{Ctx: ctx, Node: node, Principal: p}, NewParent: newParent})
	}
	return d.CanChange(ctx, node, p)
}

func (d *Delegate) CanCreate(variantType string, p pages.Principal) bool {
	if fn := d.overrides(variantType).CanCreate; fn != nil {
		return fn(p)
	}
	return p.HasPerm(PermAdd(variantType))
}
