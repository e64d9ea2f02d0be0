package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-drift/icons/cmd/icons/internal/cachedir"
	"github.com/go-drift/icons/cmd/icons/internal/config"
	"github.com/go-drift/icons/pkg/cache"
	"github.com/go-drift/icons/pkg/fetch"
	"github.com/go-drift/icons/pkg/icon"
	"github.com/go-drift/icons/pkg/manager"
	"github.com/go-drift/icons/pkg/provider"
)

// project is the configuration, cache and manager of one invocation.
type project struct {
	cfg     *config.Resolved
	cache   cache.Cache
	manager *manager.Manager
}

// Close releases the cache.
func (p *project) Close() error {
	return closeCache(p.cache)
}

func closeCache(c cache.Cache) error {
	if closer, ok := c.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// loadConfig resolves icons.yaml from the project root.
func loadConfig() (*config.Resolved, error) {
	root, err := config.FindProjectRoot()
	if err != nil {
		return nil, err
	}
	return config.Resolve(root)
}

func openProject() (*project, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	c, err := openCache(cfg)
	if err != nil {
		return nil, err
	}
	m, err := newManager(cfg, c)
	if err != nil {
		_ = closeCache(c)
		return nil, err
	}
	return &project{cfg: cfg, cache: c, manager: m}, nil
}

// sqliteFile is the database name inside the entries directory.
const sqliteFile = "cache.db"

func openCache(cfg *config.Resolved) (cache.Cache, error) {
	if cfg.CacheBackend == config.BackendNone {
		return cache.Noop{}, nil
	}
	dir, err := cachedir.EntriesDir(cfg.CacheDir)
	if err != nil {
		return nil, err
	}
	switch cfg.CacheBackend {
	case config.BackendSQLite:
		return cache.OpenSQLite(filepath.Join(dir, sqliteFile), cache.WithDefaultTTL(cfg.CacheTTL))
	default:
		return cache.NewFileCache(dir, cache.WithDefaultTTL(cfg.CacheTTL))
	}
}

// newManager registers every configured provider, then every fetched
// collection whose prefix is not configured.
func newManager(cfg *config.Resolved, c cache.Cache) (*manager.Manager, error) {
	m := manager.New(manager.Options{
		DefaultPrefix:  cfg.DefaultPrefix,
		Fallback:       cfg.Fallback,
		IgnoreNotFound: cfg.IgnoreNotFound,
		Renderer:       cfg.Renderer,
		Aliases:        cfg.Aliases,
	})

	for _, spec := range cfg.Providers {
		p, err := buildProvider(cfg, spec, c)
		if err != nil {
			return nil, fmt.Errorf("provider %q: %w", spec.Prefix, err)
		}
		if err := m.Register(spec.Prefix, p); err != nil {
			return nil, err
		}
	}

	fetched, err := fetchedCollections(cfg)
	if err != nil {
		return nil, err
	}
	for prefix, path := range fetched {
		if _, ok := m.Provider(prefix); ok {
			continue
		}
		if err := m.Register(prefix, provider.NewMemo(provider.NewCollectionFile(path))); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func buildProvider(cfg *config.Resolved, spec config.ProviderSpec, c cache.Cache) (provider.Provider, error) {
	var p provider.Provider
	switch spec.Type {
	case config.TypeDirectory:
		d, err := provider.NewDirectory(spec.Path)
		if err != nil {
			return nil, err
		}
		p = d
	case config.TypeCollection:
		p = provider.NewCollectionFile(spec.Path)
	case config.TypeIconify:
		p = provider.NewIconify(spec.Collection,
			provider.WithHosts(cfg.IconifyHosts...),
			provider.WithCache(c),
			provider.WithTimeout(cfg.HTTPTimeout),
		)
	default:
		return nil, fmt.Errorf("unknown provider type %q", spec.Type)
	}
	if spec.Memo {
		p = provider.NewMemo(p)
	}
	return p, nil
}

// fetchedCollections maps prefix to path for every collection downloaded
// with "icons fetch".
func fetchedCollections(cfg *config.Resolved) (map[string]string, error) {
	dir, err := cachedir.CollectionsDir(cfg.CacheDir)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", dir, err)
	}
	out := make(map[string]string)
	for _, e := range entries {
		prefix, ok := strings.CutSuffix(e.Name(), ".json")
		if e.IsDir() || !ok || !fetch.ValidPrefix(prefix) {
			continue
		}
		out[prefix] = filepath.Join(dir, e.Name())
	}
	return out, nil
}

// parseAttrFlags splits --attr name=value and --class flags out of args.
func parseAttrFlags(args []string) (icon.Attributes, []string, error) {
	var attrs icon.Attributes
	var rest []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		var pair string
		switch {
		case arg == "--attr" || arg == "-a":
			if i+1 >= len(args) {
				return attrs, nil, fmt.Errorf("%s requires name=value", arg)
			}
			pair = args[i+1]
			i++
		case strings.HasPrefix(arg, "--attr="):
			pair = strings.TrimPrefix(arg, "--attr=")
		case arg == "--class":
			if i+1 >= len(args) {
				return attrs, nil, fmt.Errorf("--class requires a value")
			}
			attrs = attrs.Merge(icon.NewAttributes("class", args[i+1]))
			i++
			continue
		case arg == "--size":
			if i+1 >= len(args) {
				return attrs, nil, fmt.Errorf("--size requires a value")
			}
			attrs = attrs.With("width", args[i+1]).With("height", args[i+1])
			i++
			continue
		default:
			if strings.HasPrefix(arg, "-") {
				return attrs, nil, fmt.Errorf("unknown flag: %s", arg)
			}
			rest = append(rest, arg)
			continue
		}
		name, value, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return attrs, nil, fmt.Errorf("invalid attribute %q, expected name=value", pair)
		}
		attrs = attrs.Merge(icon.NewAttributes(name, value))
	}
	return attrs, rest, nil
}
