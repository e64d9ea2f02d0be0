package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/go-drift/icons/cmd/icons/internal/cachedir"
	"github.com/go-drift/icons/cmd/icons/internal/config"
	"github.com/go-drift/icons/pkg/cache"
)

func init() {
	RegisterCommand(&Command{
		Name:  "cache",
		Short: "Inspect or clean the icon cache",
		Long: `Inspect or clean the durable cache used by remote providers.

Subcommands:
  info     Show the cache location, backend and size
  clear    Remove every entry of the current version (--all: every version
           and every fetched collection)
  prune    Remove expired entries`,
		Usage: "icons cache info|clear [--all]|prune",
		Run:   runCache,
	})
}

func runCache(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("missing subcommand: info, clear or prune")
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	switch args[0] {
	case "info":
		return cacheInfo(cfg)
	case "clear":
		all := len(args) > 1 && args[1] == "--all"
		return cacheClear(cfg, all)
	case "prune":
		return cachePrune(cfg)
	default:
		return fmt.Errorf("unknown cache subcommand %q", args[0])
	}
}

func cacheInfo(cfg *config.Resolved) error {
	root, err := cachedir.Root(cfg.CacheDir)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Root:     %s\n", root)
	fmt.Fprintf(stdout, "Backend:  %s\n", cfg.CacheBackend)
	fmt.Fprintf(stdout, "Version:  %s\n", cachedir.Version())
	if cfg.CacheTTL == 0 {
		fmt.Fprintln(stdout, "TTL:      never expires")
	} else {
		fmt.Fprintf(stdout, "TTL:      %s\n", cfg.CacheTTL)
	}

	if cfg.CacheBackend != config.BackendNone {
		dir, err := cachedir.EntriesDir(cfg.CacheDir)
		if err != nil {
			return err
		}
		switch cfg.CacheBackend {
		case config.BackendSQLite:
			size := int64(0)
			if info, err := os.Stat(filepath.Join(dir, sqliteFile)); err == nil {
				size = info.Size()
			}
			fmt.Fprintf(stdout, "Database: %s\n", humanize.Bytes(uint64(size)))
		default:
			c, err := cache.NewFileCache(dir)
			if err != nil {
				return err
			}
			stats, err := c.Stats()
			if err != nil {
				return err
			}
			fmt.Fprintf(stdout, "Entries:  %s (%s)\n", humanize.Comma(int64(stats.Entries)), humanize.Bytes(uint64(stats.Bytes)))
		}
	}

	versions, err := cachedir.Versions(root)
	if err != nil {
		return err
	}
	if len(versions) > 0 {
		fmt.Fprintf(stdout, "Versions: %s\n", strings.Join(versions, ", "))
	}

	fetched, err := fetchedCollections(cfg)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Fetched collections: %d\n", len(fetched))
	return nil
}

func cacheClear(cfg *config.Resolved, all bool) error {
	if all {
		root, err := cachedir.Root(cfg.CacheDir)
		if err != nil {
			return err
		}
		for _, sub := range []string{"entries", "collections"} {
			if err := os.RemoveAll(filepath.Join(root, sub)); err != nil {
				return fmt.Errorf("failed to remove %s: %w", sub, err)
			}
		}
		fmt.Fprintf(stdout, "Removed %s\n", root)
		return nil
	}

	c, err := openCache(cfg)
	if err != nil {
		return err
	}
	defer closeCache(c)
	if err := c.Clear(); err != nil {
		return err
	}
	fmt.Fprintln(stdout, "Cache cleared")
	return nil
}

// pruner is implemented by the durable backends.
type pruner interface {
	Prune() (int, error)
}

func cachePrune(cfg *config.Resolved) error {
	c, err := openCache(cfg)
	if err != nil {
		return err
	}
	defer closeCache(c)

	p, ok := c.(pruner)
	if !ok {
		fmt.Fprintln(stdout, "Nothing to prune")
		return nil
	}
	n, err := p.Prune()
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Removed %d expired entries\n", n)
	return nil
}
