package pages

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	domain "github.com/yungbote/pagetree/internal/domain/pages"
	"github.com/yungbote/pagetree/internal/modules/pages/tree"
	"github.com/yungbote/pagetree/internal/platform/dbctx"
)

type PagePermissions struct {
	CanAdd    bool `json:"can_add"`
	CanChange bool `json:"can_change"`
	CanDelete bool `json:"can_delete"`
}

type PageView struct {
	Node        *domain.Node    `json:"node"`
	Content     domain.Payload  `json:"content"`
	Path        string          `json:"path"`
	Permissions PagePermissions `json:"permissions"`
	// ChildTypes are the variants this principal may add under the node.
	ChildTypes []string `json:"child_types"`
}

// GetPage returns a node with what the principal may do to it. Nodes
// that are not publicly visible are only shown to principals who may
// change them.
func (u Usecases) GetPage(ctx context.Context, p domain.Principal, id uuid.UUID) (*PageView, error) {
	node, err := u.deps.Tree.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !node.VisibleAt(time.Now()) && !u.deps.Perms.CanChange(ctx, node, p) {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	payload, err := u.deps.Variants.Resolve(dbctx.Context{Ctx: ctx}, node)
	if err != nil {
		return nil, err
	}
	return u.view(ctx, p, node, payload)
}

func (u Usecases) view(ctx context.Context, p domain.Principal, node *domain.Node, payload domain.Payload) (*PageView, error) {
	path, err := u.deps.Tree.PathOf(ctx, node)
	if err != nil {
		return nil, err
	}
	v := &PageView{
		Node:    node,
		Content: payload,
		Path:    "/" + path,
		Permissions: PagePermissions{
			CanAdd:    u.deps.Perms.CanAdd(ctx, node, p),
			CanChange: u.deps.Perms.CanChange(ctx, node, p),
			CanDelete: u.deps.Perms.CanDelete(ctx, node, p),
		},
		ChildTypes: []string{},
	}
	if v.Permissions.CanAdd {
		v.ChildTypes = u.creatable(p, u.deps.Variants.ChildTypes(node))
	}
	return v, nil
}

func (u Usecases) creatable(p domain.Principal, types []string) []string {
	out := []string{}
	for _, t := range types {
		if u.deps.Perms.CanCreate(t, p) {
			out = append(out, t)
		}
	}
	return out
}

type VariantInfo struct {
	Type      string `json:"type"`
	Name      string `json:"name"`
	Children  string `json:"children"`
	Creatable bool   `json:"creatable"`
}

func (u Usecases) Variants(p domain.Principal) []VariantInfo {
	var out []VariantInfo
	for _, t := range u.deps.Variants.Types() {
		d, _ := u.deps.Variants.Lookup(t)
		c := u.deps.Variants.PermittedChildTypes(&domain.Node{VariantType: t})
		out = append(out, VariantInfo{
			Type:      d.Type,
			Name:      d.Name,
			Children:  c.String(),
			Creatable: u.deps.Perms.CanCreate(t, p),
		})
	}
	return out
}

type MenuItem struct {
	ID       uuid.UUID   `json:"id"`
	Title    string      `json:"title"`
	Path     string      `json:"path"`
	Current  bool        `json:"current"`
	Ancestor bool        `json:"ancestor"`
	Children []*MenuItem `json:"children,omitempty"`
}

// Menu builds site navigation: nodes flagged for menus, visible now and
// to this principal. A hidden node hides its subtree.
func (u Usecases) Menu(ctx context.Context, p domain.Principal, currentPath string) ([]*MenuItem, error) {
	forest, err := u.deps.Tree.Forest(ctx, nil, 0)
	if err != nil {
		return nil, err
	}
	segs := tree.SplitPath(currentPath)
	if len(segs) == 0 && u.deps.HomeSlug != "" {
		segs = tree.SplitPath(u.deps.HomeSlug)
	}
	current := "/" + strings.Join(segs, "/")
	now := time.Now()

	var build func(bs []*tree.Branch, prefix string) []*MenuItem
	build = func(bs []*tree.Branch, prefix string) []*MenuItem {
		var out []*MenuItem
		for _, b := range bs {
			n := b.Node
			if !n.InMenus || !n.VisibleAt(now) || (n.LoginRequired && !p.Authenticated) {
				continue
			}
			path := prefix + "/" + n.Slug
			item := &MenuItem{ID: n.ID, Title: n.Title, Path: path}
			item.Current = path == current
			item.Ancestor = !item.Current && len(current) > len(path) && current[:len(path)+1] == path+"/"
			item.Children = build(b.Children, path)
			out = append(out, item)
		}
		return out
	}
	return build(forest, ""), nil
}
