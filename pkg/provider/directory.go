package provider

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/go-drift/icons/pkg/icon"
)

// Directory serves SVG files below a root directory. The name "brand/logo"
// maps to <root>/brand/logo.svg.
type Directory struct {
	root string
}

var _ Provider = (*Directory)(nil)

// NewDirectory returns a provider rooted at root. The directory is not
// required to exist yet.
func NewDirectory(root string) (*Directory, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	return &Directory{root: abs}, nil
}

// Root returns the absolute root directory.
func (d *Directory) Root() string { return d.root }

// resolve maps name to a file path inside the root. ok is false when the name
// is unusable or the path escapes the root, including through symlinks.
func (d *Directory) resolve(name string) (string, bool) {
	if name == "" || strings.ContainsRune(name, 0) || strings.Contains(name, `\`) {
		return "", false
	}
	path := filepath.Join(d.root, filepath.FromSlash(name)+".svg")
	if !within(d.root, path) {
		return "", false
	}

	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		// Missing files are checked again by the caller.
		return path, errors.Is(err, fs.ErrNotExist)
	}
	realRoot, err := filepath.EvalSymlinks(d.root)
	if err != nil {
		return "", false
	}
	if !within(realRoot, resolved) {
		return "", false
	}
	return resolved, true
}

func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel)
}

// Get implements Provider.
func (d *Directory) Get(name string) (icon.Icon, error) {
	path, ok := d.resolve(name)
	if !ok {
		return icon.Icon{}, notFound("directory.Get", name)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return icon.Icon{}, notFound("directory.Get", name)
		}
		return icon.Icon{}, fmt.Errorf("read icon %q: %w", name, err)
	}
	return icon.FromString(string(data))
}

// Has implements Provider.
func (d *Directory) Has(name string) bool {
	path, ok := d.resolve(name)
	if !ok {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// All implements Provider. Names use forward slashes and omit ".svg".
func (d *Directory) All() ([]string, error) {
	var names []string
	err := filepath.WalkDir(d.root, func(path string, e fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && path == d.root {
				return fs.SkipAll
			}
			return err
		}
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".svg") {
			return nil
		}
		rel, err := filepath.Rel(d.root, path)
		if err != nil {
			return err
		}
		names = append(names, filepath.ToSlash(strings.TrimSuffix(rel, filepath.Ext(rel))))
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.Sort(names)
	return names, nil
}
