package permissions

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/pagetree/internal/domain/pages"
)

type staticSource map[string]Overrides

func (s staticSource) Overrides(t string) (Overrides, bool) {
	o, ok := s[t]
	return o, ok
}

func TestDefaults(t *testing.T) {
	ctx := context.Background()
	d := NewDelegate(staticSource{})
	node := &pages.Node{ID: uuid.New(), VariantType: "richtextpage"}

	anon := pages.Anonymous()
	editor := pages.Principal{Authenticated: true, Staff: true, Permissions: []string{PermChange, PermAdd("richtextpage")}}
	root := pages.Principal{Authenticated: true, Superuser: true}

	require.True(t, d.CanAdd(ctx, node, anon))
	require.False(t, d.CanChange(ctx, node, anon))
	require.True(t, d.CanChange(ctx, node, editor))
	require.False(t, d.CanDelete(ctx, node, editor))
	require.True(t, d.CanDelete(ctx, node, root))
	require.True(t, d.CanMove(ctx, node, nil, editor))

	require.True(t, d.CanCreate("richtextpage", editor))
	require.False(t, d.CanCreate("form", editor))
	require.True(t, d.CanCreate("form", root))
}

func TestOverrideReplacesDefault(t *testing.T) {
	ctx := context.Background()
	d := NewDelegate(staticSource{
		"section": {
			CanDelete: func(c Check) bool { return c.Principal.Superuser || c.Node.ParentID != nil },
			CanAdd:    func(c Check) bool { return c.Principal.Staff },
			CanCreate: func(pages.Principal) bool { return false },
		},
	})
	parent := uuid.New()
	nested := &pages.Node{ID: uuid.New(), ParentID: &parent, VariantType: "section"}
	top := &pages.Node{ID: uuid.New(), VariantType: "section"}
	nobody := pages.Anonymous()
	root := pages.Principal{Superuser: true}

	// The default would refuse an anonymous delete; the override allows
	// it for nested nodes and refuses it only at the top.
	require.True(t, d.CanDelete(ctx, nested, nobody))
	require.False(t, d.CanDelete(ctx, top, nobody))
	require.True(t, d.CanDelete(ctx, top, root))

	// The default add is permissive; the override is not.
	require.False(t, d.CanAdd(ctx, top, nobody))

	// Even a superuser cannot create a type whose override says no.
	require.False(t, d.CanCreate("section", root))

	// Predicates without overrides keep their defaults.
	require.False(t, d.CanChange(ctx, top, nobody))
	require.True(t, d.CanChange(ctx, top, root))
}

func TestCanAddAtRootNeedsStaff(t *testing.T) {
	d := NewDelegate(nil)
	require.False(t, d.CanAdd(context.Background(), nil, pages.Anonymous()))
	require.True(t, d.CanAdd(context.Background(), nil, pages.Principal{Authenticated: true, Staff: true}))
}
