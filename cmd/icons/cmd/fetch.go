package cmd

import (
	"context"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/go-drift/icons/cmd/icons/internal/cachedir"
	"github.com/go-drift/icons/pkg/fetch"
	"github.com/go-drift/icons/pkg/provider"
)

func init() {
	RegisterCommand(&Command{
		Name:  "fetch",
		Short: "Download Iconify JSON collections",
		Long: `Download Iconify JSON collections from the iconify/icon-sets repository.

Fetched collections are stored in <cache>/collections/<prefix>.json and are
served under their prefix unless icons.yaml declares a provider for it.

Use --list to print the available collections instead. Use --url to download
a single collection from another location, and --sha256 to verify it.`,
		Usage: "icons fetch [--list] [--url URL] [--sha256 HEX] PREFIX...",
		Run:   runFetch,
	})
}

// FetchOptions configures a collection download.
type FetchOptions struct {
	Prefixes []string
	URL      string // Override source (single prefix only)
	SHA256   string // Expected checksum (single prefix only)
	List     bool
}

func runFetch(args []string) error {
	opts := FetchOptions{}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--list":
			opts.List = true
		case arg == "--url" || arg == "--sha256":
			if i+1 >= len(args) {
				return fmt.Errorf("%s requires a value", arg)
			}
			if arg == "--url" {
				opts.URL = args[i+1]
			} else {
				opts.SHA256 = args[i+1]
			}
			i++
		case strings.HasPrefix(arg, "--url="):
			opts.URL = strings.TrimPrefix(arg, "--url=")
		case strings.HasPrefix(arg, "--sha256="):
			opts.SHA256 = strings.TrimPrefix(arg, "--sha256=")
		case strings.HasPrefix(arg, "-"):
			return fmt.Errorf("unknown flag: %s", arg)
		default:
			opts.Prefixes = append(opts.Prefixes, arg)
		}
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	d := fetch.NewDownloader(cfg.HTTPTimeout)

	if opts.List {
		return listCollections(context.Background(), d)
	}

	dir, err := cachedir.CollectionsDir(cfg.CacheDir)
	if err != nil {
		return err
	}
	return FetchCollections(context.Background(), d, dir, opts)
}

// FetchCollections downloads the requested collections into dir.
func FetchCollections(ctx context.Context, d *fetch.Downloader, dir string, opts FetchOptions) error {
	if len(opts.Prefixes) == 0 {
		return fmt.Errorf("at least one collection prefix is required")
	}
	if (opts.URL != "" || opts.SHA256 != "") && len(opts.Prefixes) != 1 {
		return fmt.Errorf("--url and --sha256 require exactly one prefix")
	}

	for _, prefix := range opts.Prefixes {
		url := opts.URL
		if url == "" {
			var err error
			if url, err = fetch.CollectionURL(prefix); err != nil {
				return err
			}
		} else if !fetch.ValidPrefix(prefix) {
			return fmt.Errorf("invalid collection prefix %q", prefix)
		}

		dest := filepath.Join(dir, prefix+".json")
		fmt.Fprintf(stdout, "Fetching %s...\n", prefix)
		var err error
		if opts.SHA256 != "" {
			err = d.DownloadVerified(ctx, url, dest, opts.SHA256)
		} else {
			err = d.Download(ctx, url, dest)
		}
		if err != nil {
			return fmt.Errorf("failed to fetch %s: %w", prefix, err)
		}

		// Reject documents that would fail on first use.
		names, err := provider.NewCollectionFile(dest).All()
		if err != nil {
			_ = os.Remove(dest)
			return fmt.Errorf("failed to fetch %s: %w", prefix, err)
		}

		info, err := os.Stat(dest)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "  %d icons, %s -> %s\n", len(names), humanize.Bytes(uint64(info.Size())), dest)
	}
	return nil
}

func listCollections(ctx context.Context, d *fetch.Downloader) error {
	index, err := fetch.FetchCollections(ctx, d)
	if err != nil {
		return err
	}
	for _, prefix := range slices.Sorted(maps.Keys(index)) {
		info := index[prefix]
		fmt.Fprintf(stdout, "%-24s %6s  %s\n", prefix, humanize.Comma(int64(info.Total)), info.Name)
	}
	return nil
}
