package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/pagetree/internal/config"
	pagesmod "github.com/yungbote/pagetree/internal/modules/pages"
	"github.com/yungbote/pagetree/internal/modules/pages/builtin"
	"github.com/yungbote/pagetree/internal/modules/pages/permissions"
	"github.com/yungbote/pagetree/internal/modules/pages/processors"
	"github.com/yungbote/pagetree/internal/modules/pages/render"
	"github.com/yungbote/pagetree/internal/modules/pages/templates"
	"github.com/yungbote/pagetree/internal/modules/pages/tree"
	"github.com/yungbote/pagetree/internal/modules/pages/variants"
	"github.com/yungbote/pagetree/internal/platform/authtoken"
	"github.com/yungbote/pagetree/internal/platform/logger"
	"github.com/yungbote/pagetree/internal/platform/markup"
)

type Services struct {
	Variants   *variants.Registry
	Processors *processors.Registry
	Perms      *permissions.Delegate
	Tree       *tree.Tree
	Render     *render.Boundary
	Pages      pagesmod.Usecases
	// Signer is nil without a JWT secret; every request is then anonymous.
	Signer *authtoken.Signer
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg *config.Config, clients Clients, r Repos) (Services, error) {
	log.Info("Wiring services...")

	vr := variants.NewRegistry(r.Payloads)
	pr := processors.NewRegistry()
	perms := permissions.NewDelegate(vr)
	tr := tree.New(db, log, r.Nodes, r.Payloads, vr, clients.Locker, tree.Config{
		LockTimeout: cfg.Tree.LockTimeout.Duration,
		MaxDepth:    cfg.Tree.MaxDepth,
	})

	if err := builtin.Register(vr, pr, builtin.Deps{
		Tree:    tr,
		Entries: r.FormEntries,
		Markup:  markup.New(),
		Log:     log,
	}); err != nil {
		return Services{}, fmt.Errorf("register builtin pages: %w", err)
	}
	manifest, err := config.LoadManifest(cfg.ManifestPath)
	if err != nil {
		return Services{}, err
	}
	if err := pagesmod.ApplyManifest(manifest, vr, pr); err != nil {
		return Services{}, err
	}
	vr.Freeze()
	pr.Freeze()
	log.Info("Page registries frozen", "variants", vr.Types())

	resolver := templates.NewResolver(templates.Config{
		Prefix:  cfg.Templates.Prefix,
		Ext:     cfg.Templates.Ext,
		Default: cfg.Templates.Default,
	})
	boundary := render.New(tr, vr, perms, pr, resolver, log, render.Config{HomeSlug: cfg.Tree.HomeSlug})

	var signer *authtoken.Signer
	if cfg.Auth.JWTSecret != "" {
		signer, err = authtoken.NewSigner(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
		if err != nil {
			return Services{}, err
		}
	} else {
		log.Warn("JWT_SECRET_KEY is not set; all requests are anonymous")
	}

	return Services{
		Variants:   vr,
		Processors: pr,
		Perms:      perms,
		Tree:       tr,
		Render:     boundary,
		Pages:      pagesmod.New(pagesmod.UsecasesDeps{Log: log, Tree: tr, Variants: vr, Perms: perms, HomeSlug: cfg.Tree.HomeSlug}),
		Signer:     signer,
	}, nil
}
