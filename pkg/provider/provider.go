// Package provider resolves local icon names to icons.
//
// A Provider serves one namespace. Implementations in this package read SVG
// files from a directory, Iconify JSON collections, and the Iconify HTTP API.
// Chain composes providers and Memo adds an in-process memo on top of any of
// them.
//
// Providers report a missing icon with an error matching
// errors.ErrIconNotFound. Any other error is a real failure.
package provider

import (
	iconerrors "github.com/go-drift/icons/pkg/errors"
	"github.com/go-drift/icons/pkg/icon"
)

// Provider resolves local names within one namespace.
type Provider interface {
	// Get returns the icon for name.
	Get(name string) (icon.Icon, error)
	// Has reports whether Get would succeed.
	Has(name string) bool
	// All returns every name the provider can resolve. It may be expensive.
	All() ([]string, error)
}

func notFound(op, name string) error {
	return iconerrors.New(op, iconerrors.KindIconNotFound, name, nil)
}
