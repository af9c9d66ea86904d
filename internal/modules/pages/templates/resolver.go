// Package templates names the templates a page may render with, most
// specific first. It never checks whether they exist.
package templates

import (
	"strings"

	"github.com/yungbote/pagetree/internal/domain/pages"
)

type Config struct {
	Prefix  string
	Ext     string
	Default string
}

func DefaultConfig() Config {
	return Config{Prefix: "pages/", Ext: ".html", Default: "pages/page.html"}
}

type Resolver struct {
	cfg Config
}

func NewResolver(cfg Config) Resolver {
	d := DefaultConfig()
	if cfg.Prefix == "" {
		cfg.Prefix = d.Prefix
	}
	if cfg.Ext == "" {
		cfg.Ext = d.Ext
	}
	if cfg.Default == "" {
		cfg.Default = cfg.Prefix + "page" + cfg.Ext
	}
	return Resolver{cfg: cfg}
}

// Candidates returns exactly three names: by slug, by variant type, and
// the site default.
func (r Resolver) Candidates(node *pages.Node) []string {
	var slug, variant string
	if node != nil {
		slug = node.Slug
		variant = strings.ToLower(node.VariantType)
	}
	return []string{
		r.cfg.Prefix + slug + r.cfg.Ext,
		r.cfg.Prefix + variant + r.cfg.Ext,
		r.cfg.Default,
	}
}
