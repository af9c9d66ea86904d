package testutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/pagetree/internal/domain/pages"
)

// SeedNode writes a published node and its rich text payload directly,
// bypassing tree validation.
func SeedNode(tb testing.TB, ctx context.Context, tx *gorm.DB, parentID *uuid.UUID, slug string, position int) *pages.Node {
	tb.Helper()
	n := &pages.Node{
		ID:          uuid.New(),
		ParentID:    parentID,
		Slug:        slug,
		Title:       slug,
		Position:    position,
		Status:      pages.StatusPublished,
		VariantType: pages.VariantRichText,
		InMenus:     true,
	}
	if err := tx.WithContext(ctx).Create(n).Error; err != nil {
		tb.Fatalf("seed node: %v", err)
	}
	p := &pages.RichTextPage{Content: "# " + slug}
	p.SetPageNodeID(n.ID)
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed payload: %v", err)
	}
	return n
}
