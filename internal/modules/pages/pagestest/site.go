// Package pagestest wires a complete page site over in-memory SQLite for
// tests.
package pagestest

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/pagetree/internal/data/repos"
	"github.com/yungbote/pagetree/internal/data/repos/testutil"
	"github.com/yungbote/pagetree/internal/domain/pages"
	"github.com/yungbote/pagetree/internal/modules/pages/builtin"
	"github.com/yungbote/pagetree/internal/modules/pages/permissions"
	"github.com/yungbote/pagetree/internal/modules/pages/processors"
	"github.com/yungbote/pagetree/internal/modules/pages/tree"
	"github.com/yungbote/pagetree/internal/modules/pages/variants"
	"github.com/yungbote/pagetree/internal/platform/locker"
	"github.com/yungbote/pagetree/internal/platform/logger"
	"github.com/yungbote/pagetree/internal/platform/markup"
)

type Site struct {
	DB         *gorm.DB
	Log        *logger.Logger
	Nodes      repos.NodeRepo
	Entries    repos.FormEntryRepo
	Variants   *variants.Registry
	Processors *processors.Registry
	Perms      *permissions.Delegate
	Tree       *tree.Tree
}

// New builds a site with the built-in variants. extra runs before the
// registries are frozen.
func New(tb testing.TB, extra func(s *Site) error) *Site {
	tb.Helper()
	db := testutil.DB(tb)
	log := testutil.Logger(tb)
	nodes := repos.NewNodeRepo(db, log)
	payloads := repos.NewPayloadRepo(db, log)

	s := &Site{
		DB:         db,
		Log:        log,
		Nodes:      nodes,
		Entries:    repos.NewFormEntryRepo(db, log),
		Variants:   variants.NewRegistry(payloads),
		Processors: processors.NewRegistry(),
	}
	s.Perms = permissions.NewDelegate(s.Variants)
	s.Tree = tree.New(db, log, nodes, payloads, s.Variants, locker.NewLocal(), tree.Config{LockTimeout: 2 * time.Second, MaxDepth: 8})

	if err := builtin.Register(s.Variants, s.Processors, builtin.Deps{
		Tree:    s.Tree,
		Entries: s.Entries,
		Markup:  markup.New(),
		Log:     log,
	}); err != nil {
		tb.Fatalf("register builtin: %v", err)
	}
	if extra != nil {
		if err := extra(s); err != nil {
			tb.Fatalf("extra registration: %v", err)
		}
	}
	s.Variants.Freeze()
	s.Processors.Freeze()
	return s
}

// Add inserts a published page.
func (s *Site) Add(tb testing.TB, parent *pages.Node, title string, payload pages.Payload) *pages.Node {
	tb.Helper()
	var pid *uuid.UUID
	if parent != nil {
		pid = &parent.ID
	}
	n := &pages.Node{Title: title, VariantType: payload.VariantType(), Status: pages.StatusPublished, InMenus: true}
	if err := s.Tree.Insert(context.Background(), n, payload, pid, nil); err != nil {
		tb.Fatalf("insert %q: %v", title, err)
	}
	return n
}

var (
	Superuser = pages.Principal{UserID: uuid.MustParse("00000000-0000-0000-0000-000000000001"), Authenticated: true, Staff: true, Superuser: true}
	Visitor   = pages.Principal{UserID: uuid.MustParse("00000000-0000-0000-0000-000000000002"), Authenticated: true}
)
