package tree

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/pagetree/internal/data/repos"
	"github.com/yungbote/pagetree/internal/data/repos/testutil"
	"github.com/yungbote/pagetree/internal/domain/pages"
	"github.com/yungbote/pagetree/internal/modules/pages/variants"
	"github.com/yungbote/pagetree/internal/platform/dbctx"
	"github.com/yungbote/pagetree/internal/platform/locker"
)

type fixture struct {
	tree  *Tree
	locks *locker.Local
	nodes repos.NodeRepo
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	nodes := repos.NewNodeRepo(db, log)
	payloads := repos.NewPayloadRepo(db, log)

	reg := variants.NewRegistry(payloads)
	require.NoError(t, reg.Register(variants.Descriptor{Type: pages.VariantRichText, New: func() pages.Payload { return &pages.RichTextPage{} }}))
	none := variants.NoChildren()
	require.NoError(t, reg.Register(variants.Descriptor{Type: pages.VariantLink, New: func() pages.Payload { return &pages.LinkPage{} }, Children: &none}))
	reg.Freeze()

	locks := locker.NewLocal()
	tr := New(db, log, nodes, payloads, reg, locks, Config{LockTimeout: 300 * time.Millisecond, MaxDepth: 4})
	return &fixture{tree: tr, locks: locks, nodes: nodes}
}

func (f *fixture) add(t *testing.T, parent *pages.Node, title string, pos *int) *pages.Node {
	t.Helper()
	var pid *uuid.UUID
	if parent != nil {
		pid = &parent.ID
	}
	n := &pages.Node{Title: title, VariantType: pages.VariantRichText, Status: pages.StatusPublished}
	require.NoError(t, f.tree.Insert(context.Background(), n, &pages.RichTextPage{Content: title}, pid, pos))
	return n
}

func (f *fixture) order(t *testing.T, parent *pages.Node) []string {
	t.Helper()
	var pid *uuid.UUID
	if parent != nil {
		pid = &parent.ID
	}
	kids, err := f.tree.Children(context.Background(), pid)
	require.NoError(t, err)
	out := make([]string, len(kids))
	for i, k := range kids {
		require.Equal(t, i, k.Position, "positions must be dense")
		out[i] = k.Slug
	}
	return out
}

func intp(i int) *int { return &i }

func TestInsertAtPositionShiftsLaterSiblings(t *testing.T) {
	f := newFixture(t)
	root := f.add(t, nil, "Home", nil)
	f.add(t, root, "A", nil)
	f.add(t, root, "B", nil)
	f.add(t, root, "C", nil)

	f.add(t, root, "D", intp(2))
	require.Equal(t, []string{"a", "b", "d", "c"}, f.order(t, root))

	f.add(t, root, "E", intp(99))
	f.add(t, root, "F", intp(0))
	require.Equal(t, []string{"f", "a", "b", "d", "c", "e"}, f.order(t, root))

	err := f.tree.Insert(context.Background(), &pages.Node{Title: "G", VariantType: pages.VariantRichText}, &pages.RichTextPage{}, &root.ID, intp(-1))
	require.ErrorIs(t, err, pages.ErrInvalidPlacement)
}

func TestInsertSlugs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.add(t, nil, "About Us", nil)
	b := f.add(t, nil, "About Us", nil)
	require.Equal(t, "about-us", a.Slug)
	require.Equal(t, "about-us-1", b.Slug)

	err := f.tree.Insert(ctx, &pages.Node{Title: "x", Slug: "about-us", VariantType: pages.VariantRichText}, &pages.RichTextPage{}, nil, nil)
	require.ErrorIs(t, err, pages.ErrInvalidPlacement)

	err = f.tree.Insert(ctx, &pages.Node{Title: "x", Slug: "a/b", VariantType: pages.VariantRichText}, &pages.RichTextPage{}, nil, nil)
	require.ErrorIs(t, err, pages.ErrInvalidInput)

	// The same slug is fine under a different parent.
	child := &pages.Node{Title: "About Us", Slug: "about-us", VariantType: pages.VariantRichText}
	require.NoError(t, f.tree.Insert(ctx, child, &pages.RichTextPage{}, &a.ID, nil))
}

func TestInsertCreatesNodeAndPayloadTogether(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	root := f.add(t, nil, "Home", nil)

	err := f.tree.Insert(ctx, &pages.Node{Title: "Out", VariantType: pages.VariantLink}, &pages.RichTextPage{}, &root.ID, nil)
	require.ErrorIs(t, err, pages.ErrInvalidInput)

	err = f.tree.Insert(ctx, &pages.Node{Title: "Gallery", VariantType: "gallery"}, &pages.RichTextPage{}, &root.ID, nil)
	require.ErrorIs(t, err, pages.ErrUnknownVariant)

	link := &pages.Node{Title: "Out", VariantType: pages.VariantLink}
	require.NoError(t, f.tree.Insert(ctx, link, &pages.LinkPage{URL: "https://example.com"}, &root.ID, nil))
	payload, err := f.tree.variants.Resolve(dbctx.Context{Ctx: ctx}, link)
	require.NoError(t, err)
	require.Equal(t, "https://example.com", payload.(*pages.LinkPage).URL)

	// Links accept no children; the failed insert leaves nothing behind.
	err = f.tree.Insert(ctx, &pages.Node{Title: "Nested", VariantType: pages.VariantRichText}, &pages.RichTextPage{}, &link.ID, nil)
	require.ErrorIs(t, err, pages.ErrInvalidPlacement)
	require.Equal(t, []string{"out"}, f.order(t, root))
	kids, err := f.tree.Children(ctx, &link.ID)
	require.NoError(t, err)
	require.Empty(t, kids)

	err = f.tree.Insert(ctx, &pages.Node{Title: "Lost", VariantType: pages.VariantRichText}, &pages.RichTextPage{}, ptr(uuid.New()), nil)
	require.ErrorIs(t, err, pages.ErrInvalidPlacement)
	require.ErrorIs(t, err, pages.ErrNotFound)
}

func ptr(id uuid.UUID) *uuid.UUID { return &id }

func TestResolveByPathRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	home := f.add(t, nil, "Home", nil)
	about := f.add(t, home, "About", nil)
	team := f.add(t, about, "Team", nil)
	blog := f.add(t, nil, "Blog", nil)

	for _, n := range []*pages.Node{home, about, team, blog} {
		path, err := f.tree.PathOf(ctx, n)
		require.NoError(t, err)
		got, err := f.tree.ResolveByPath(ctx, "/"+path+"/")
		require.NoError(t, err)
		require.Equal(t, n.ID, got.ID, path)
	}

	p, err := f.tree.PathOf(ctx, team)
	require.NoError(t, err)
	require.Equal(t, "home/about/team", p)

	_, err = f.tree.ResolveByPath(ctx, "home/missing")
	require.ErrorIs(t, err, pages.ErrNotFound)
	_, err = f.tree.ResolveByPath(ctx, "/")
	require.ErrorIs(t, err, pages.ErrNotFound)
}

func TestMoveUnderDescendantIsCycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.add(t, nil, "A", nil)
	b := f.add(t, a, "B", nil)
	c := f.add(t, b, "C", nil)

	for i := 0; i < 2; i++ {
		_, err := f.tree.Move(ctx, a.ID, &c.ID, nil)
		require.ErrorIs(t, err, pages.ErrCycleDetected)
		require.ErrorIs(t, err, pages.ErrInvalidPlacement)
	}
	_, err := f.tree.Move(ctx, a.ID, &a.ID, nil)
	require.ErrorIs(t, err, pages.ErrCycleDetected)

	got, err := f.tree.Get(ctx, a.ID)
	require.NoError(t, err)
	require.Nil(t, got.ParentID)
	path, err := f.tree.PathOf(ctx, c)
	require.NoError(t, err)
	require.Equal(t, "a/b/c", path)
}

func TestMoveAcrossParentsRenumbersBoth(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	left := f.add(t, nil, "Left", nil)
	right := f.add(t, nil, "Right", nil)
	f.add(t, left, "L1", nil)
	l2 := f.add(t, left, "L2", nil)
	f.add(t, left, "L3", nil)
	f.add(t, right, "R1", nil)
	f.add(t, right, "R2", nil)

	moved, err := f.tree.Move(ctx, l2.ID, &right.ID, intp(1))
	require.NoError(t, err)
	require.Equal(t, right.ID, *moved.ParentID)
	require.Equal(t, []string{"l1", "l3"}, f.order(t, left))
	require.Equal(t, []string{"r1", "l2", "r2"}, f.order(t, right))

	got, err := f.tree.ResolveByPath(ctx, "right/l2")
	require.NoError(t, err)
	require.Equal(t, l2.ID, got.ID)

	_, err = f.tree.Move(ctx, l2.ID, nil, intp(0))
	require.NoError(t, err)
	require.Equal(t, []string{"l2", "left", "right"}, f.order(t, nil))
}

func TestReorderWithinParent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	root := f.add(t, nil, "Root", nil)
	a := f.add(t, root, "A", nil)
	f.add(t, root, "B", nil)
	f.add(t, root, "C", nil)

	_, err := f.tree.Reorder(ctx, a.ID, 2)
	require.NoError(t, err)
	require.Equal(t, []string{"b", "c", "a"}, f.order(t, root))
	_, err = f.tree.Reorder(ctx, a.ID, 0)
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b", "c"}, f.order(t, root))
}

func TestMoveRespectsSlugsAndDepth(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	x := f.add(t, nil, "X", nil)
	y := f.add(t, nil, "Y", nil)
	f.add(t, x, "Same", nil)
	same := f.add(t, y, "Same", nil)

	_, err := f.tree.Move(ctx, same.ID, &x.ID, nil)
	require.ErrorIs(t, err, pages.ErrInvalidPlacement)

	// MaxDepth is 4: x/d1/d2 plus a two level subtree would be 5.
	d1 := f.add(t, x, "D1", nil)
	d2 := f.add(t, d1, "D2", nil)
	sub := f.add(t, nil, "Sub", nil)
	f.add(t, sub, "Leaf", nil)
	_, err = f.tree.Move(ctx, sub.ID, &d2.ID, nil)
	require.ErrorIs(t, err, pages.ErrInvalidPlacement)
	_, err = f.tree.Move(ctx, sub.ID, &d1.ID, nil)
	require.NoError(t, err)
}

func TestDeleteCascade(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	root := f.add(t, nil, "Root", nil)
	a := f.add(t, root, "A", nil)
	b := f.add(t, root, "B", nil)
	deep := f.add(t, a, "Deep", nil)

	var removed []uuid.UUID
	f.tree.OnDelete(func(_ dbctx.Context, ns []*pages.Node) error {
		for _, n := range ns {
			removed = append(removed, n.ID)
		}
		return nil
	})

	require.NoError(t, f.tree.Delete(ctx, a.ID, DeleteCascade))
	require.ElementsMatch(t, []uuid.UUID{a.ID, deep.ID}, removed)
	require.Equal(t, []string{"b"}, f.order(t, root))
	_, err := f.tree.Get(ctx, deep.ID)
	require.ErrorIs(t, err, pages.ErrNotFound)
	got, err := f.tree.Get(ctx, b.ID)
	require.NoError(t, err)
	require.Equal(t, 0, got.Position)

	require.ErrorIs(t, f.tree.Delete(ctx, a.ID, DeleteCascade), pages.ErrNotFound)
}

func TestDeleteReparentKeepsChildrenInSlot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	root := f.add(t, nil, "Root", nil)
	f.add(t, root, "First", nil)
	mid := f.add(t, root, "Mid", nil)
	f.add(t, root, "Last", nil)
	f.add(t, mid, "C1", nil)
	f.add(t, mid, "C2", nil)

	require.NoError(t, f.tree.Delete(ctx, mid.ID, DeleteReparent))
	require.Equal(t, []string{"first", "c1", "c2", "last"}, f.order(t, root))

	got, err := f.tree.ResolveByPath(ctx, "root/c2")
	require.NoError(t, err)
	require.Equal(t, root.ID, *got.ParentID)
}

func TestDeleteReparentChildMayReuseParentSlug(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	root := f.add(t, nil, "Root", nil)
	mid := f.add(t, root, "Mid", nil)
	inner := f.add(t, mid, "Mid", nil)

	require.NoError(t, f.tree.Delete(ctx, mid.ID, DeleteReparent))
	require.Equal(t, []string{"mid"}, f.order(t, root))

	got, err := f.tree.ResolveByPath(ctx, "root/mid")
	require.NoError(t, err)
	require.Equal(t, inner.ID, got.ID)
	require.Equal(t, 0, got.Position)
}

func TestDeleteReparentRejectsSlugClash(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	root := f.add(t, nil, "Root", nil)
	f.add(t, root, "Dup", nil)
	mid := f.add(t, root, "Mid", nil)
	f.add(t, mid, "Dup", nil)

	err := f.tree.Delete(ctx, mid.ID, DeleteReparent)
	require.ErrorIs(t, err, pages.ErrInvalidPlacement)
	require.Equal(t, []string{"dup", "mid"}, f.order(t, root))
}

func TestMutationTimesOutWithBusy(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	root := f.add(t, nil, "Root", nil)

	release, err := f.locks.Acquire(ctx, []string{"tree:" + root.ID.String()}, time.Second)
	require.NoError(t, err)

	start := time.Now()
	err = f.tree.Insert(ctx, &pages.Node{Title: "Late", VariantType: pages.VariantRichText}, &pages.RichTextPage{}, &root.ID, nil)
	require.ErrorIs(t, err, pages.ErrBusy)
	require.Less(t, time.Since(start), 2*time.Second)

	release()
	f.add(t, root, "Late", nil)
}

func TestConcurrentCrossMovesNeverCycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.tree.cfg.LockTimeout = 5 * time.Second

	for i := 0; i < 5; i++ {
		a := f.add(t, nil, "A", nil)
		b := f.add(t, nil, "B", nil)

		var wg sync.WaitGroup
		errs := make([]error, 2)
		wg.Add(2)
		go func() { defer wg.Done(); _, errs[0] = f.tree.Move(ctx, a.ID, &b.ID, nil) }()
		go func() { defer wg.Done(); _, errs[1] = f.tree.Move(ctx, b.ID, &a.ID, nil) }()
		wg.Wait()

		require.False(t, errs[0] == nil && errs[1] == nil, "both moves cannot succeed")
		for _, err := range errs {
			if err != nil {
				require.ErrorIs(t, err, pages.ErrCycleDetected)
			}
		}
		for _, n := range []*pages.Node{a, b} {
			got, err := f.tree.Get(ctx, n.ID)
			require.NoError(t, err)
			_, err = f.tree.Ancestors(ctx, got)
			require.NoError(t, err)
		}
		require.NoError(t, f.tree.Delete(ctx, a.ID, DeleteCascade))
		if _, err := f.tree.Get(ctx, b.ID); err == nil {
			require.NoError(t, f.tree.Delete(ctx, b.ID, DeleteCascade))
		}
	}
}

func TestEditAndStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	root := f.add(t, nil, "Root", nil)
	a := f.add(t, root, "A", nil)
	f.add(t, root, "B", nil)

	node, payload, err := f.tree.Edit(ctx, a.ID, func(_ dbctx.Context, n *pages.Node, p pages.Payload) error {
		n.Title = "Renamed"
		n.Slug = "renamed"
		p.(*pages.RichTextPage).Content = "new body"
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, "renamed", node.Slug)
	require.Equal(t, "new body", payload.(*pages.RichTextPage).Content)

	_, _, err = f.tree.Edit(ctx, a.ID, func(_ dbctx.Context, n *pages.Node, _ pages.Payload) error {
		n.Slug = "b"
		return nil
	})
	require.ErrorIs(t, err, pages.ErrInvalidPlacement)

	_, _, err = f.tree.Edit(ctx, a.ID, func(_ dbctx.Context, n *pages.Node, _ pages.Payload) error {
		n.ParentID = nil
		return nil
	})
	require.ErrorIs(t, err, pages.ErrInvalidInput)

	now := time.Now().UTC()
	later := now.Add(time.Hour)
	_, err = f.tree.SetStatus(ctx, a.ID, pages.StatusPublished, &later, &now)
	require.ErrorIs(t, err, pages.ErrInvalidInput)

	n, err := f.tree.SetStatus(ctx, a.ID, pages.StatusDraft, nil, nil)
	require.NoError(t, err)
	require.Equal(t, pages.StatusDraft, n.Status)
	got, err := f.tree.Get(ctx, a.ID)
	require.NoError(t, err)
	require.Equal(t, pages.StatusDraft, got.Status)
}

func TestForest(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	home := f.add(t, nil, "Home", nil)
	about := f.add(t, home, "About", nil)
	f.add(t, about, "Team", nil)
	f.add(t, home, "Blog", nil)

	forest, err := f.tree.Forest(ctx, nil, 0)
	require.NoError(t, err)
	var seen []string
	Walk(forest, func(b *Branch, depth int) {
		seen = append(seen, b.Node.Slug)
	})
	require.Equal(t, []string{"home", "about", "team", "blog"}, seen)

	shallow, err := f.tree.Forest(ctx, nil, 2)
	require.NoError(t, err)
	require.Len(t, shallow[0].Children, 2)
	require.Empty(t, shallow[0].Children[0].Children)
}
