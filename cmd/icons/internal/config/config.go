// Package config loads the optional icons.yaml file and the ICONS_*
// environment overrides used by the icons CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/go-drift/icons/pkg/icon"
)

// FileName is the configuration file looked up in the project root.
const FileName = "icons.yaml"

// Config represents the optional icons.yaml configuration.
type Config struct {
	DefaultPrefix  string                  `yaml:"default_prefix,omitempty"`
	Fallback       string                  `yaml:"fallback,omitempty"`
	IgnoreNotFound bool                    `yaml:"ignore_not_found,omitempty"`
	Attributes     AttrMap                 `yaml:"attributes,omitempty"`
	Prefixes       map[string]PrefixConfig `yaml:"prefixes,omitempty"`
	Providers      []ProviderConfig        `yaml:"providers,omitempty"`
	Aliases        map[string]string       `yaml:"aliases,omitempty"`
	Cache          CacheConfig             `yaml:"cache,omitempty"`
	Iconify        IconifyConfig           `yaml:"iconify,omitempty"`
}

// PrefixConfig holds the default attributes of one prefix.
type PrefixConfig struct {
	Attributes AttrMap    `yaml:"attributes,omitempty"`
	Suffixes   SuffixList `yaml:"suffixes,omitempty"`
}

// ProviderConfig declares where a prefix is served from.
type ProviderConfig struct {
	Prefix string `yaml:"prefix"`
	// Type is one of "directory", "collection" or "iconify".
	Type string `yaml:"type"`
	// Path is the directory or JSON file, relative to the project root.
	Path string `yaml:"path,omitempty"`
	// Collection is the remote prefix for iconify providers. It defaults to
	// Prefix.
	Collection string `yaml:"collection,omitempty"`
	// Memo keeps resolved icons in memory.
	Memo bool `yaml:"memo,omitempty"`
}

// CacheConfig selects the durable cache.
type CacheConfig struct {
	// Backend is one of "file", "sqlite" or "none".
	Backend string         `yaml:"backend,omitempty"`
	Dir     string         `yaml:"dir,omitempty"`
	TTL     *time.Duration `yaml:"ttl,omitempty"`
}

// IconifyConfig configures remote providers.
type IconifyConfig struct {
	Hosts   []string      `yaml:"hosts,omitempty"`
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

// AttrMap is a YAML mapping of attribute names to scalar values. Document
// order is preserved.
type AttrMap struct {
	attrs icon.Attributes
}

// NewAttrMap wraps attrs.
func NewAttrMap(attrs icon.Attributes) AttrMap { return AttrMap{attrs: attrs} }

// Attributes returns the attributes in document order.
func (m AttrMap) Attributes() icon.Attributes { return m.attrs }

// IsZero reports whether the map is empty, for omitempty.
func (m AttrMap) IsZero() bool { return m.attrs.Len() == 0 }

// UnmarshalYAML implements yaml.Unmarshaler.
func (m *AttrMap) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: attributes must be a mapping", node.Line)
	}
	var attrs icon.Attributes
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		if value.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: attribute %q must be a scalar", value.Line, key.Value)
		}
		if value.Tag == "!!null" {
			continue
		}
		attrs = attrs.With(key.Value, value.Value)
	}
	m.attrs = attrs
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (m AttrMap) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for name, value := range m.attrs.All() {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: name},
			&yaml.Node{Kind: yaml.ScalarNode, Value: value, Style: yaml.DoubleQuotedStyle},
		)
	}
	return node, nil
}

// SuffixRule adds attributes to names ending in "-" + Suffix.
type SuffixRule struct {
	Suffix     string
	Attributes AttrMap
}

// SuffixList is a YAML mapping of suffix to attributes. Document order is
// preserved because rules are tried in order.
type SuffixList []SuffixRule

// UnmarshalYAML implements yaml.Unmarshaler.
func (l *SuffixList) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: suffixes must be a mapping", node.Line)
	}
	var rules SuffixList
	for i := 0; i+1 < len(node.Content); i += 2 {
		var attrs AttrMap
		if err := attrs.UnmarshalYAML(node.Content[i+1]); err != nil {
			return err
		}
		rules = append(rules, SuffixRule{Suffix: node.Content[i].Value, Attributes: attrs})
	}
	*l = rules
	return nil
}

// LoadOptional reads icons.yaml from dir if present.
func LoadOptional(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", FileName, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", FileName, err)
	}

	return &cfg, nil
}

// FindProjectRoot walks up from the current directory to the first directory
// holding icons.yaml or go.mod. Without either it returns the current
// directory.
func FindProjectRoot() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for dir := cwd; ; {
		for _, marker := range []string{FileName, "go.mod"} {
			if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
				return dir, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return cwd, nil
		}
		dir = parent
	}
}
