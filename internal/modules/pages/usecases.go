package pages

import (
	"github.com/yungbote/pagetree/internal/modules/pages/permissions"
	"github.com/yungbote/pagetree/internal/modules/pages/tree"
	"github.com/yungbote/pagetree/internal/modules/pages/variants"
	"github.com/yungbote/pagetree/internal/platform/logger"
)

type UsecasesDeps struct {
	Log *logger.Logger

	Tree     *tree.Tree
	Variants *variants.Registry
	Perms    *permissions.Delegate

	// HomeSlug is the page served at "/", marked current in menus there.
	HomeSlug string
}

// Usecases is the permission-checked surface that admin tooling and the
// HTTP API call into.
type Usecases struct {
	deps UsecasesDeps
}

func New(deps UsecasesDeps) Usecases {
	deps.Log = deps.Log.With("module", "pages")
	return Usecases{deps: deps}
}
