package config

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed site.yaml
var defaultManifestYAML []byte

// Manifest is the site layout declared outside code: child constraints
// per variant and static context per exact path.
type Manifest struct {
	Variants map[string]VariantManifest `yaml:"variants"`
	Paths    map[string]PathManifest    `yaml:"paths"`
}

type VariantManifest struct {
	// Children is "any", "none", or a list of variant types.
	Children ChildrenRule `yaml:"children"`
}

type ChildrenRule struct {
	Set   bool
	Any   bool
	None  bool
	Types []string
}

func (c *ChildrenRule) UnmarshalYAML(node *yaml.Node) error {
	c.Set = true
	switch node.Kind {
	case yaml.ScalarNode:
		switch strings.ToLower(strings.TrimSpace(node.Value)) {
		case "any", "*":
			c.Any = true
		case "none", "":
			c.None = true
		default:
			c.Types = []string{strings.TrimSpace(node.Value)}
		}
		return nil
	case yaml.SequenceNode:
		var types []string
		if err := node.Decode(&types); err != nil {
			return err
		}
		for _, t := range types {
			if t = strings.TrimSpace(t); t != "" {
				c.Types = append(c.Types, t)
			}
		}
		if len(c.Types) == 0 {
			c.None = true
		}
		return nil
	default:
		return fmt.Errorf("children: expected \"any\", \"none\" or a list, got %v", node.Tag)
	}
}

type PathManifest struct {
	Context map[string]interface{} `yaml:"context"`
}

// LoadManifest reads path when given, else the embedded default.
func LoadManifest(path string) (*Manifest, error) {
	raw := defaultManifestYAML
	if p := strings.TrimSpace(path); p != "" {
		b, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read manifest %s: %w", p, err)
		}
		raw = b
	}
	var m Manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	return &m, nil
}
