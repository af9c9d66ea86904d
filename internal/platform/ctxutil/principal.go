package ctxutil

import (
	"context"

	"github.com/yungbote/pagetree/internal/domain/pages"
)

type principalKey struct{}

func WithPrincipal(ctx context.Context, p pages.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// GetPrincipal falls back to the anonymous principal.
func GetPrincipal(ctx context.Context) pages.Principal {
	if p, ok := ctx.Value(principalKey{}).(pages.Principal); ok {
		return p
	}
	return pages.Anonymous()
}
