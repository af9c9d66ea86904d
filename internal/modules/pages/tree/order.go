package tree

import (
	"slices"

	"github.com/google/uuid"

	"github.com/yungbote/pagetree/internal/domain/pages"
)

func indexOf(nodes []*pages.Node, id uuid.UUID) int {
	for i, n := range nodes {
		if n.ID == id {
			return i
		}
	}
	return -1
}

func without(nodes []*pages.Node, id uuid.UUID) []*pages.Node {
	out := make([]*pages.Node, 0, len(nodes))
	for _, n := range nodes {
		if n.ID != id {
			out = append(out, n)
		}
	}
	return out
}

// clampPosition maps nil or past-the-end to append.
func clampPosition(position *int, n int) int {
	if position == nil || *position > n {
		return n
	}
	return *position
}

func insertAt(nodes []*pages.Node, pos int, add ...*pages.Node) []*pages.Node {
	out := make([]*pages.Node, 0, len(nodes)+len(add))
	out = append(out, nodes[:pos]...)
	out = append(out, add...)
	return append(out, nodes[pos:]...)
}

// renumber makes positions dense in slice order and returns only the
// nodes whose position actually changed, skipping any id in skip.
func renumber(ordered []*pages.Node, skip ...uuid.UUID) map[uuid.UUID]int {
	changed := map[uuid.UUID]int{}
	for i, n := range ordered {
		if n.Position == i {
			continue
		}
		n.Position = i
		if !slices.Contains(skip, n.ID) {
			changed[n.ID] = i
		}
	}
	return changed
}
