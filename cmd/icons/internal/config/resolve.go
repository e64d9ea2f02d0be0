package config

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/go-drift/icons/pkg/cache"
	"github.com/go-drift/icons/pkg/fetch"
	"github.com/go-drift/icons/pkg/icon"
	"github.com/go-drift/icons/pkg/provider"
	"github.com/go-drift/icons/pkg/render"
)

// Provider types.
const (
	TypeDirectory  = "directory"
	TypeCollection = "collection"
	TypeIconify    = "iconify"
)

// Cache backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendNone   = "none"
)

// Env holds the ICONS_* overrides. Unset variables leave the file values
// alone.
type Env struct {
	CacheDir       string         `env:"ICONS_CACHE_DIR"`
	CacheBackend   string         `env:"ICONS_CACHE_BACKEND"`
	CacheTTL       *time.Duration `env:"ICONS_CACHE_TTL"`
	DefaultPrefix  string         `env:"ICONS_DEFAULT_PREFIX"`
	Fallback       string         `env:"ICONS_FALLBACK"`
	IgnoreNotFound *bool          `env:"ICONS_IGNORE_NOT_FOUND"`
	IconifyHosts   []string       `env:"ICONS_ICONIFY_HOSTS" envSeparator:","`
	HTTPTimeout    time.Duration  `env:"ICONS_HTTP_TIMEOUT"`
}

// ParseEnv reads the ICONS_* variables.
func ParseEnv() (Env, error) {
	var e Env
	if err := env.Parse(&e); err != nil {
		return Env{}, fmt.Errorf("parse env: %w", err)
	}
	return e, nil
}

// Apply overlays the set variables onto cfg.
func (e Env) Apply(cfg *Config) {
	if e.CacheDir != "" {
		cfg.Cache.Dir = e.CacheDir
	}
	if e.CacheBackend != "" {
		cfg.Cache.Backend = e.CacheBackend
	}
	if e.CacheTTL != nil {
		cfg.Cache.TTL = e.CacheTTL
	}
	if e.DefaultPrefix != "" {
		cfg.DefaultPrefix = e.DefaultPrefix
	}
	if e.Fallback != "" {
		cfg.Fallback = e.Fallback
	}
	if e.IgnoreNotFound != nil {
		cfg.IgnoreNotFound = *e.IgnoreNotFound
	}
	if len(e.IconifyHosts) > 0 {
		cfg.Iconify.Hosts = e.IconifyHosts
	}
	if e.HTTPTimeout > 0 {
		cfg.Iconify.Timeout = e.HTTPTimeout
	}
}

// ProviderSpec is a validated provider declaration.
type ProviderSpec struct {
	Prefix string
	Type   string
	// Path is absolute for directory and collection providers.
	Path string
	// Collection is the remote prefix of an iconify provider.
	Collection string
	Memo       bool
}

// Resolved contains resolved configuration values.
type Resolved struct {
	Root           string
	DefaultPrefix  string
	Fallback       string
	IgnoreNotFound bool
	Renderer       *render.Renderer
	Providers      []ProviderSpec
	Aliases        map[string]string
	CacheBackend   string
	// CacheDir is the configured cache root, empty for the default location.
	CacheDir     string
	CacheTTL     time.Duration
	IconifyHosts []string
	HTTPTimeout  time.Duration
}

// Resolve loads icons.yaml (if present), applies the environment and
// resolves defaults.
func Resolve(dir string) (*Resolved, error) {
	cfg, err := LoadOptional(dir)
	if err != nil {
		return nil, err
	}
	e, err := ParseEnv()
	if err != nil {
		return nil, err
	}
	e.Apply(cfg)
	return cfg.Resolve(dir)
}

// Resolve validates cfg and fills in defaults. Relative paths are taken
// relative to dir.
func (cfg *Config) Resolve(dir string) (*Resolved, error) {
	r := &Resolved{
		Root:           dir,
		DefaultPrefix:  strings.TrimSpace(cfg.DefaultPrefix),
		Fallback:       strings.TrimSpace(cfg.Fallback),
		IgnoreNotFound: cfg.IgnoreNotFound,
		Aliases:        cfg.Aliases,
		CacheBackend:   strings.ToLower(strings.TrimSpace(cfg.Cache.Backend)),
		CacheDir:       cfg.Cache.Dir,
		CacheTTL:       cache.DefaultTTL,
		IconifyHosts:   cfg.Iconify.Hosts,
		HTTPTimeout:    cfg.Iconify.Timeout,
	}

	if strings.Contains(r.DefaultPrefix, ":") {
		return nil, fmt.Errorf("default_prefix must not contain ':' (got %q)", r.DefaultPrefix)
	}

	switch r.CacheBackend {
	case "":
		r.CacheBackend = BackendFile
	case BackendFile, BackendSQLite, BackendNone:
	default:
		return nil, fmt.Errorf("cache.backend must be file, sqlite or none (got %q)", cfg.Cache.Backend)
	}
	if cfg.Cache.TTL != nil {
		if *cfg.Cache.TTL < 0 {
			return nil, fmt.Errorf("cache.ttl must not be negative (got %s)", *cfg.Cache.TTL)
		}
		r.CacheTTL = *cfg.Cache.TTL
	}
	if r.CacheDir != "" && !filepath.IsAbs(r.CacheDir) {
		r.CacheDir = filepath.Join(dir, r.CacheDir)
	}

	if len(r.IconifyHosts) == 0 {
		r.IconifyHosts = slices.Clone(provider.DefaultHosts)
	}
	if r.HTTPTimeout <= 0 {
		r.HTTPTimeout = fetch.DefaultTimeout
	}

	seen := make(map[string]bool)
	for i, p := range cfg.Providers {
		spec, err := resolveProvider(dir, p)
		if err != nil {
			return nil, fmt.Errorf("providers[%d]: %w", i, err)
		}
		if seen[spec.Prefix] {
			return nil, fmt.Errorf("providers[%d]: duplicate prefix %q", i, spec.Prefix)
		}
		seen[spec.Prefix] = true
		r.Providers = append(r.Providers, spec)
	}

	r.Renderer = &render.Renderer{
		Defaults:       cfg.Attributes.Attributes(),
		PrefixDefaults: make(map[string]icon.Attributes, len(cfg.Prefixes)),
		Suffixes:       make(map[string][]render.SuffixRule, len(cfg.Prefixes)),
	}
	for prefix, pc := range cfg.Prefixes {
		r.Renderer.PrefixDefaults[prefix] = pc.Attributes.Attributes()
		for _, s := range pc.Suffixes {
			r.Renderer.Suffixes[prefix] = append(r.Renderer.Suffixes[prefix], render.SuffixRule{
				Suffix:     s.Suffix,
				Attributes: s.Attributes.Attributes(),
			})
		}
	}

	return r, nil
}

func resolveProvider(dir string, p ProviderConfig) (ProviderSpec, error) {
	spec := ProviderSpec{
		Prefix:     strings.TrimSpace(p.Prefix),
		Type:       strings.ToLower(strings.TrimSpace(p.Type)),
		Path:       strings.TrimSpace(p.Path),
		Collection: strings.TrimSpace(p.Collection),
		Memo:       p.Memo,
	}
	if spec.Prefix == "" || strings.ContainsAny(spec.Prefix, ": \t") {
		return spec, fmt.Errorf("invalid prefix %q", p.Prefix)
	}

	switch spec.Type {
	case TypeDirectory, TypeCollection:
		if spec.Path == "" {
			return spec, fmt.Errorf("%s provider %q requires a path", spec.Type, spec.Prefix)
		}
		if !filepath.IsAbs(spec.Path) {
			spec.Path = filepath.Join(dir, spec.Path)
		}
	case TypeIconify:
		if spec.Collection == "" {
			spec.Collection = spec.Prefix
		}
		if !fetch.ValidPrefix(spec.Collection) {
			return spec, fmt.Errorf("invalid iconify collection %q", spec.Collection)
		}
	default:
		return spec, fmt.Errorf("unknown provider type %q for prefix %q", p.Type, spec.Prefix)
	}
	return spec, nil
}
