package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/pagetree/internal/platform/envutil"
)

func defaultConfig() *Config {
	return &Config{
		Env: "development",
		HTTP: HTTPConfig{
			Addr:              ":8080",
			ReadHeaderTimeout: Duration{5 * time.Second},
			ShutdownTimeout:   Duration{15 * time.Second},
			MaxRequestBytes:   1 << 20,
			CORSOrigins:       []string{"http://localhost:3000", "http://127.0.0.1:3000"},
		},
		Database: DatabaseConfig{
			Driver:     "sqlite",
			SQLitePath: "pagetree.db",
		},
		Redis: RedisConfig{
			Prefix:  "pagetree:lock:",
			LockTTL: Duration{30 * time.Second},
		},
		Tree: TreeConfig{
			LockTimeout: Duration{5 * time.Second},
			MaxDepth:    32,
			HomeSlug:    "home",
		},
		Templates: TemplatesConfig{
			Prefix:  "pages/",
			Ext:     ".html",
			Default: "pages/page.html",
		},
		Auth: AuthConfig{Issuer: "pagetree"},
		Otel: OtelConfig{ServiceName: "pagetree", Version: "dev"},
	}
}

// Load applies, in order: defaults, the YAML file named by
// PAGETREE_CONFIG_PATH (or ./config/pagetree.yaml if present), then
// environment overrides.
func Load() (*Config, error) {
	cfg := defaultConfig()

	cfgPath := strings.TrimSpace(os.Getenv("PAGETREE_CONFIG_PATH"))
	if cfgPath == "" {
		if wd, err := os.Getwd(); err == nil {
			p := filepath.Join(wd, "config", "pagetree.yaml")
			if _, err := os.Stat(p); err == nil {
				cfgPath = p
			}
		}
	}
	if cfgPath != "" {
		b, err := os.ReadFile(cfgPath)
		if err != nil {
			return nil, err
		}
		// Decoding over the defaults keeps anything the file leaves out.
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", cfgPath, err)
		}
	}

	applyEnv(cfg)
	if err := normalize(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Env = envutil.String("LOG_MODE", cfg.Env)
	cfg.HTTP.Addr = envutil.String("PAGETREE_HTTP_ADDR", cfg.HTTP.Addr)
	if v := envutil.String("CORS_ORIGINS", ""); v != "" {
		cfg.HTTP.CORSOrigins = splitList(v)
	}

	cfg.Database.Driver = envutil.String("DB_DRIVER", cfg.Database.Driver)
	cfg.Database.DSN = envutil.String("DATABASE_DSN", cfg.Database.DSN)
	cfg.Database.SQLitePath = envutil.String("SQLITE_PATH", cfg.Database.SQLitePath)
	if cfg.Database.DSN == "" && envutil.String("POSTGRES_HOST", "") != "" {
		cfg.Database.DSN = fmt.Sprintf(
			"postgres://%s:%s@%s:%s/%s?sslmode=disable",
			envutil.String("POSTGRES_USER", "postgres"),
			envutil.String("POSTGRES_PASSWORD", ""),
			envutil.String("POSTGRES_HOST", "localhost"),
			envutil.String("POSTGRES_PORT", "5432"),
			envutil.String("POSTGRES_NAME", "pagetree"),
		)
	}

	cfg.Redis.Addr = envutil.String("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Tree.LockTimeout.Duration = envutil.Duration("TREE_LOCK_TIMEOUT", cfg.Tree.LockTimeout.Duration)
	cfg.Tree.MaxDepth = envutil.Int("TREE_MAX_DEPTH", cfg.Tree.MaxDepth)
	cfg.Tree.HomeSlug = envutil.String("TREE_HOME_SLUG", cfg.Tree.HomeSlug)
	cfg.Templates.Dir = envutil.String("TEMPLATES_DIR", cfg.Templates.Dir)
	cfg.Auth.JWTSecret = envutil.String("JWT_SECRET_KEY", cfg.Auth.JWTSecret)
	cfg.Otel.ServiceName = envutil.String("OTEL_SERVICE_NAME", cfg.Otel.ServiceName)
	cfg.Otel.Version = envutil.String("SERVICE_VERSION", cfg.Otel.Version)
	cfg.ManifestPath = envutil.String("PAGETREE_MANIFEST_PATH", cfg.ManifestPath)
}

func normalize(cfg *Config) error {
	if cfg.Env == "" {
		cfg.Env = "development"
	}
	if strings.TrimSpace(cfg.HTTP.Addr) == "" {
		cfg.HTTP.Addr = ":8080"
	}
	if cfg.HTTP.MaxRequestBytes <= 0 {
		cfg.HTTP.MaxRequestBytes = 1 << 20
	}
	if cfg.HTTP.ShutdownTimeout.Duration <= 0 {
		cfg.HTTP.ShutdownTimeout.Duration = 15 * time.Second
	}

	cfg.Database.Driver = strings.ToLower(strings.TrimSpace(cfg.Database.Driver))
	switch cfg.Database.Driver {
	case "", "sqlite":
		cfg.Database.Driver = "sqlite"
		if cfg.Database.SQLitePath == "" && cfg.Database.DSN == "" {
			return errors.New("database.sqlite_path is required for the sqlite driver")
		}
	case "postgres", "postgresql":
		cfg.Database.Driver = "postgres"
		if cfg.Database.DSN == "" {
			return errors.New("database.dsn (or POSTGRES_HOST) is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unsupported database.driver %q", cfg.Database.Driver)
	}

	if cfg.Tree.LockTimeout.Duration <= 0 {
		return errors.New("tree.lock_timeout must be positive")
	}
	if cfg.Tree.MaxDepth <= 0 {
		return errors.New("tree.max_depth must be positive")
	}
	cfg.Tree.HomeSlug = strings.Trim(strings.TrimSpace(cfg.Tree.HomeSlug), "/")

	if cfg.Templates.Prefix == "" {
		cfg.Templates.Prefix = "pages/"
	}
	if cfg.Templates.Ext == "" {
		cfg.Templates.Ext = ".html"
	}
	if cfg.Templates.Default == "" {
		cfg.Templates.Default = cfg.Templates.Prefix + "page" + cfg.Templates.Ext
	}
	if cfg.Redis.LockTTL.Duration <= 0 {
		cfg.Redis.LockTTL.Duration = 30 * time.Second
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
