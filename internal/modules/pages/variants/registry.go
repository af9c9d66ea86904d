// Package variants maps a node's variant tag to everything the rest of
// the system needs to know about that variant.
package variants

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/yungbote/pagetree/internal/domain/pages"
	"github.com/yungbote/pagetree/internal/modules/pages/permissions"
	"github.com/yungbote/pagetree/internal/platform/dbctx"
)

var ErrFrozen = errors.New("variant registry is frozen")

type ChildPolicy int

const (
	ChildrenAny ChildPolicy = iota
	ChildrenNone
	ChildrenOnly
)

type ChildConstraint struct {
	Policy ChildPolicy
	Types  []string
}

func AnyChildren() ChildConstraint { return ChildConstraint{Policy: ChildrenAny} }
func NoChildren() ChildConstraint  { return ChildConstraint{Policy: ChildrenNone} }
func OnlyChildren(types ...string) ChildConstraint {
	return ChildConstraint{Policy: ChildrenOnly, Types: slices.Clone(types)}
}

func (c ChildConstraint) Permits(variantType string) bool {
	switch c.Policy {
	case ChildrenAny:
		return true
	case ChildrenOnly:
		return slices.Contains(c.Types, variantType)
	default:
		return false
	}
}

func (c ChildConstraint) String() string {
	switch c.Policy {
	case ChildrenAny:
		return "any"
	case ChildrenNone:
		return "none"
	default:
		return strings.Join(c.Types, ",")
	}
}

// Descriptor is one registered variant. Children nil means any.
type Descriptor struct {
	Type        string
	Name        string
	New         func() pages.Payload
	Children    *ChildConstraint
	Permissions permissions.Overrides
}

// PayloadStore is the slice of the record store the registry needs.
type PayloadStore interface {
	Load(dbc dbctx.Context, dst pages.Payload, nodeID uuid.UUID) (bool, error)
}

type Registry struct {
	mu     sync.RWMutex
	store  PayloadStore
	byType map[string]*Descriptor
	order  []string
	frozen bool
}

func NewRegistry(store PayloadStore) *Registry {
	return &Registry{store: store, byType: map[string]*Descriptor{}}
}

func (r *Registry) Register(d Descriptor) error {
	d.Type = strings.TrimSpace(d.Type)
	if d.Type == "" {
		return errors.New("variant type is required")
	}
	if d.New == nil {
		return fmt.Errorf("variant %q: New is required", d.Type)
	}
	if got := d.New().VariantType(); got != d.Type {
		return fmt.Errorf("variant %q: payload reports type %q", d.Type, got)
	}
	if d.Name == "" {
		d.Name = d.Type
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return ErrFrozen
	}
	if _, dup := r.byType[d.Type]; dup {
		return fmt.Errorf("variant %q already registered", d.Type)
	}
	r.byType[d.Type] = &d
	r.order = append(r.order, d.Type)
	return nil
}

// SetChildren replaces the child constraint of a registered variant.
func (r *Registry) SetChildren(variantType string, c ChildConstraint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return ErrFrozen
	}
	d, ok := r.byType[variantType]
	if !ok {
		return fmt.Errorf("%w: %q", pages.ErrUnknownVariant, variantType)
	}
	d.Children = &c
	return nil
}

func (r *Registry) Freeze() {
	r.mu.Lock()
	r.frozen = true
	r.mu.Unlock()
}

func (r *Registry) Lookup(variantType string) (Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.byType[variantType]
	if !ok {
		return Descriptor{}, false
	}
	return *d, true
}

// Types lists registered variant types in registration order.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.order)
}

func (r *Registry) Overrides(variantType string) (permissions.Overrides, bool) {
	d, ok := r.Lookup(variantType)
	if !ok {
		return permissions.Overrides{}, false
	}
	return d.Permissions, true
}

// NewPayload returns an empty payload for the tag.
func (r *Registry) NewPayload(variantType string) (pages.Payload, error) {
	d, ok := r.Lookup(variantType)
	if !ok {
		return nil, fmt.Errorf("%w: %q", pages.ErrUnknownVariant, variantType)
	}
	return d.New(), nil
}

// Resolve loads the payload of node. A tag nobody registered fails
// rather than falling back to some default variant.
func (r *Registry) Resolve(dbc dbctx.Context, node *pages.Node) (pages.Payload, error) {
	if node == nil {
		return nil, pages.ErrNotFound
	}
	p, err := r.NewPayload(node.VariantType)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", node.ID, err)
	}
	ok, err := r.store.Load(dbc, p, node.ID)
	if err != nil {
		return nil, fmt.Errorf("load %s payload for %s: %w", node.VariantType, node.ID, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: node %s has no %s payload", pages.ErrOrphanedNode, node.ID, node.VariantType)
	}
	return p, nil
}

// PermittedChildTypes is the constraint node's variant declares, any when
// it declared none. Unknown variants permit nothing.
func (r *Registry) PermittedChildTypes(node *pages.Node) ChildConstraint {
	if node == nil {
		return AnyChildren()
	}
	d, ok := r.Lookup(node.VariantType)
	if !ok {
		return NoChildren()
	}
	if d.Children == nil {
		return AnyChildren()
	}
	return *d.Children
}

// ChildTypes expands PermittedChildTypes against registered types, in
// registration order. A nil node means the root level.
func (r *Registry) ChildTypes(node *pages.Node) []string {
	c := r.PermittedChildTypes(node)
	var out []string
	for _, t := range r.Types() {
		if c.Permits(t) {
			out = append(out, t)
		}
	}
	return out
}
