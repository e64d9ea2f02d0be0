// Package cachedir resolves where the icons CLI keeps its durable cache.
//
// Priority order: --cache-dir flag > ICONS_CACHE_DIR env > the user cache
// directory (os.UserCacheDir()/go-drift-icons).
//
// Cached entries live under a per-version subdirectory so that a CLI upgrade
// never reads entries written in an older format. Downloaded collections are
// shared between versions.
package cachedir

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/mod/module"
	"golang.org/x/mod/semver"
)

// DevVersion names the entry directory shared by non-release builds.
const DevVersion = "dev"

var global struct {
	version  string
	cacheDir string
}

// SetGlobal initializes the resolver with the CLI version.
// This should be called at startup from root.go.
func SetGlobal(version string) {
	global.version = NormalizeVersion(version)
}

// Version returns the entry namespace set by SetGlobal.
func Version() string {
	if global.version == "" {
		return DevVersion
	}
	return global.version
}

// NormalizeVersion returns a canonical release version, or DevVersion if the
// version is not a release (dev builds, pseudo-versions from go install).
// Explicit prerelease tags (v0.2.0-rc1) are allowed.
//
// Examples:
//
//	"v0.1.0"                          -> "v0.1.0"
//	"0.1.0"                           -> "v0.1.0"
//	"icons-v0.1.0"                    -> "v0.1.0"
//	"v0.2.0-rc1"                      -> "v0.2.0-rc1"
//	"v1.2.0+build.5"                  -> "v1.2.0"
//	"0.1.0-dev"                       -> "dev"
//	"v0.2.1-0.20260122153045-abc123def456" -> "dev"
func NormalizeVersion(version string) string {
	version = strings.TrimPrefix(strings.TrimSpace(version), "icons-")
	if version != "" && !strings.HasPrefix(version, "v") {
		version = "v" + version
	}

	if !semver.IsValid(version) || strings.HasSuffix(semver.Prerelease(version), "-dev") {
		return DevVersion
	}
	if module.IsPseudoVersion(version) {
		return DevVersion
	}
	// Short forms like v1.2 are valid semver but not release tags.
	core := version
	if i := strings.IndexAny(core, "-+"); i >= 0 {
		core = core[:i]
	}
	if strings.Count(core, ".") != 2 {
		return DevVersion
	}
	return semver.Canonical(version)
}

// SetCacheDir sets an override for the cache directory.
// This is typically called when parsing the --cache-dir flag.
func SetCacheDir(dir string) {
	global.cacheDir = dir
}

// Root returns the cache root directory. envDir is the value of
// ICONS_CACHE_DIR, already read by the caller's configuration.
func Root(envDir string) (string, error) {
	if global.cacheDir != "" {
		return global.cacheDir, nil
	}
	if envDir != "" {
		return envDir, nil
	}

	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve user cache directory: %w", err)
	}
	return filepath.Join(base, "go-drift-icons"), nil
}

// EntriesDir returns <root>/entries/<version>.
func EntriesDir(envDir string) (string, error) {
	root, err := Root(envDir)
	if err != nil {
		return "", err
	}
	return filepath.Join(root, "entries", Version()), nil
}

// CollectionsDir returns <root>/collections, where fetched Iconify JSON
// collections are stored.
func CollectionsDir(envDir string) (string, error) {
	root, err := Root(envDir)
	if err != nil {
		return "", err
	}
	return filepath.Join(root, "collections"), nil
}

// Versions lists the entry namespaces present under root, newest release
// first. The dev namespace, if present, comes last.
func Versions(root string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(root, "entries"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read cache directory %s: %w", root, err)
	}

	var releases []string
	hasDev := false
	for _, entry := range entries {
		switch {
		case !entry.IsDir():
		case entry.Name() == DevVersion:
			hasDev = true
		case semver.IsValid(entry.Name()):
			releases = append(releases, entry.Name())
		}
	}

	semver.Sort(releases)
	for i, j := 0, len(releases)-1; i < j; i, j = i+1, j-1 {
		releases[i], releases[j] = releases[j], releases[i]
	}
	if hasDev {
		releases = append(releases, DevVersion)
	}
	return releases, nil
}
