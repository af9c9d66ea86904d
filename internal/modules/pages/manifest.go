package pages

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/yungbote/pagetree/internal/config"
	"github.com/yungbote/pagetree/internal/modules/pages/processors"
	"github.com/yungbote/pagetree/internal/modules/pages/variants"
)

// ApplyManifest installs the declared child constraints and per-path
// static context. It must run before the registries are frozen.
func ApplyManifest(m *config.Manifest, vr *variants.Registry, pr *processors.Registry) error {
	if m == nil {
		return nil
	}
	for _, variantType := range slices.Sorted(maps.Keys(m.Variants)) {
		vm := m.Variants[variantType]
		if !vm.Children.Set {
			continue
		}
		c := variants.AnyChildren()
		switch {
		case vm.Children.Any:
		case vm.Children.None:
			c = variants.NoChildren()
		default:
			c = variants.OnlyChildren(vm.Children.Types...)
		}
		if err := vr.SetChildren(variantType, c); err != nil {
			return fmt.Errorf("manifest variant %q: %w", variantType, err)
		}
	}
	for _, path := range slices.Sorted(maps.Keys(m.Paths)) {
		pm := m.Paths[path]
		if len(pm.Context) == 0 {
			continue
		}
		static := maps.Clone(pm.Context)
		p := processors.New("manifest:/"+processors.NormalizePath(path), func(context.Context, *processors.Request, processors.Target) (processors.Result, error) {
			return processors.Merge(maps.Clone(static)), nil
		})
		if err := pr.RegisterForPath(path, p); err != nil {
			return fmt.Errorf("manifest path %q: %w", path, err)
		}
	}
	return nil
}
