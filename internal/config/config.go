package config

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration accepts "5s" style strings or integer nanoseconds in YAML.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	raw := strings.TrimSpace(node.Value)
	if raw == "" || raw == "null" || raw == "~" {
		d.Duration = 0
		return nil
	}
	if node.Tag == "!!int" {
		var n int64
		if err := node.Decode(&n); err != nil {
			return err
		}
		d.Duration = time.Duration(n)
		return nil
	}
	dd, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("duration must look like \"5s\": %w", err)
	}
	d.Duration = dd
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return d.Duration.String(), nil
}

type HTTPConfig struct {
	Addr              string   `yaml:"addr"`
	ReadHeaderTimeout Duration `yaml:"read_header_timeout"`
	ShutdownTimeout   Duration `yaml:"shutdown_timeout"`
	MaxRequestBytes   int64    `yaml:"max_request_bytes"`
	CORSOrigins       []string `yaml:"cors_origins"`
}

type DatabaseConfig struct {
	// Driver is "sqlite" or "postgres".
	Driver     string `yaml:"driver"`
	DSN        string `yaml:"dsn"`
	SQLitePath string `yaml:"sqlite_path"`
}

type RedisConfig struct {
	// Addr enables the distributed tree locker when set.
	Addr    string   `yaml:"addr"`
	Prefix  string   `yaml:"prefix"`
	LockTTL Duration `yaml:"lock_ttl"`
}

type TreeConfig struct {
	LockTimeout Duration `yaml:"lock_timeout"`
	MaxDepth    int      `yaml:"max_depth"`
	HomeSlug    string   `yaml:"home_slug"`
}

type TemplatesConfig struct {
	// Dir replaces the embedded templates when set.
	Dir     string `yaml:"dir"`
	Prefix  string `yaml:"prefix"`
	Ext     string `yaml:"ext"`
	Default string `yaml:"default"`
}

type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
	Issuer    string `yaml:"issuer"`
}

type OtelConfig struct {
	ServiceName string `yaml:"service_name"`
	Version     string `yaml:"version"`
}

type Config struct {
	Env       string          `yaml:"env"`
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Tree      TreeConfig      `yaml:"tree"`
	Templates TemplatesConfig `yaml:"templates"`
	Auth      AuthConfig      `yaml:"auth"`
	Otel      OtelConfig      `yaml:"otel"`
	// ManifestPath overrides the embedded site manifest.
	ManifestPath string `yaml:"manifest_path"`
}
