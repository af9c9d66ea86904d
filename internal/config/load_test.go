package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pagetree.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http:
  addr: ":9090"
tree:
  lock_timeout: 250ms
  max_depth: 8
database:
  driver: sqlite
  sqlite_path: /tmp/x.db
`), 0o600))

	t.Setenv("PAGETREE_CONFIG_PATH", path)
	t.Setenv("TREE_MAX_DEPTH", "4")
	t.Setenv("JWT_SECRET_KEY", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.HTTP.Addr)
	require.Equal(t, 250*time.Millisecond, cfg.Tree.LockTimeout.Duration)
	require.Equal(t, 4, cfg.Tree.MaxDepth)
	require.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	require.Equal(t, "home", cfg.Tree.HomeSlug)
	require.Equal(t, "pages/page.html", cfg.Templates.Default)
}

func TestLoadRejectsPostgresWithoutDSN(t *testing.T) {
	t.Setenv("PAGETREE_CONFIG_PATH", "")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DATABASE_DSN", "")
	t.Setenv("POSTGRES_HOST", "")
	_, err := Load()
	require.Error(t, err)
}

func TestLoadManifestDefault(t *testing.T) {
	m, err := LoadManifest("")
	require.NoError(t, err)
	require.True(t, m.Variants["link"].Children.None)
	require.True(t, m.Variants["richtextpage"].Children.Any)
	require.Contains(t, m.Paths, "contact")
}

func TestChildrenRuleList(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "site.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
variants:
  gallery:
    children: [image, video]
`), 0o600))
	m, err := LoadManifest(path)
	require.NoError(t, err)
	rule := m.Variants["gallery"].Children
	require.True(t, rule.Set)
	require.Equal(t, []string{"image", "video"}, rule.Types)
}
