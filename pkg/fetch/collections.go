package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
)

const (
	// IconSetsRepo hosts the published Iconify JSON collections.
	IconSetsRepo = "iconify/icon-sets"

	// IconSetsBase is the raw content root of IconSetsRepo.
	IconSetsBase = "https://raw.githubusercontent.com/" + IconSetsRepo + "/master"

	// CollectionsIndexURL lists every published collection.
	CollectionsIndexURL = IconSetsBase + "/collections.json"
)

var validPrefix = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// CollectionInfo is one entry of the collections index.
type CollectionInfo struct {
	Name     string `json:"name"`
	Total    int    `json:"total"`
	Version  string `json:"version,omitempty"`
	Category string `json:"category,omitempty"`
	License  struct {
		Title string `json:"title"`
		SPDX  string `json:"spdx,omitempty"`
	} `json:"license"`
}

// FetchCollections downloads and parses the collections index.
func FetchCollections(ctx context.Context, d *Downloader) (map[string]CollectionInfo, error) {
	body, err := d.Get(ctx, CollectionsIndexURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch collections index: %w", err)
	}

	var index map[string]CollectionInfo
	if err := json.Unmarshal(body, &index); err != nil {
		return nil, fmt.Errorf("failed to parse collections index: %w", err)
	}
	return index, nil
}

// CollectionURL returns the download URL of a collection's JSON document.
func CollectionURL(prefix string) (string, error) {
	if !validPrefix.MatchString(prefix) {
		return "", fmt.Errorf("invalid collection prefix %q", prefix)
	}
	return fmt.Sprintf("%s/json/%s.json", IconSetsBase, prefix), nil
}

// ValidPrefix reports whether prefix is a well-formed Iconify prefix.
func ValidPrefix(prefix string) bool {
	return validPrefix.MatchString(prefix)
}
