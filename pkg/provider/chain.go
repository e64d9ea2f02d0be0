package provider

import (
	"maps"
	"slices"

	iconerrors "github.com/go-drift/icons/pkg/errors"
	"github.com/go-drift/icons/pkg/icon"
)

// Chain tries providers in order and returns the first hit.
//
// A failing provider does not stop the chain. When nothing matches, Get
// returns the first error that was not a plain miss, or not-found if every
// provider simply missed.
type Chain []Provider

var _ Provider = Chain(nil)

// NewChain returns a chain over providers. Nil entries are skipped.
func NewChain(providers ...Provider) Chain {
	c := make(Chain, 0, len(providers))
	for _, p := range providers {
		if p != nil {
			c = append(c, p)
		}
	}
	return c
}

// Get implements Provider.
func (c Chain) Get(name string) (icon.Icon, error) {
	var firstErr error
	for _, p := range c {
		ic, err := p.Get(name)
		if err == nil {
			return ic, nil
		}
		if firstErr == nil && !iconerrors.IsNotFound(err) {
			firstErr = err
		}
	}
	if firstErr != nil {
		return icon.Icon{}, firstErr
	}
	return icon.Icon{}, notFound("chain.Get", name)
}

// Has implements Provider.
func (c Chain) Has(name string) bool {
	for _, p := range c {
		if p.Has(name) {
			return true
		}
	}
	return false
}

// All implements Provider. The result is the sorted union of every member.
// A member that fails to list is skipped unless all of them fail.
func (c Chain) All() ([]string, error) {
	set := make(map[string]struct{})
	var firstErr error
	failed := 0
	for _, p := range c {
		names, err := p.All()
		if err != nil {
			failed++
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		for _, n := range names {
			set[n] = struct{}{}
		}
	}
	if len(c) > 0 && failed == len(c) {
		return nil, firstErr
	}
	return slices.Sorted(maps.Keys(set)), nil
}
