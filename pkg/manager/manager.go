// Package manager resolves icon names such as "tabler:home" to rendered icons.
//
// A Manager owns the prefix registry and the alias table. Lookups go through
// the alias table first, then the provider registered for the prefix, then the
// fallback and ignore-not-found policies, and finally the renderer.
package manager

import (
	"maps"
	"slices"
	"strings"
	"sync"

	iconerrors "github.com/go-drift/icons/pkg/errors"
	"github.com/go-drift/icons/pkg/icon"
	"github.com/go-drift/icons/pkg/provider"
	"github.com/go-drift/icons/pkg/render"
)

// maxAliasHops bounds alias and fallback re-resolution. Exceeding it reports
// the icon as not found.
const maxAliasHops = 32

// Options configures a Manager.
type Options struct {
	// DefaultPrefix is used for names without a colon.
	DefaultPrefix string
	// Fallback is resolved in place of any icon that cannot be found.
	Fallback string
	// IgnoreNotFound returns an empty icon instead of failing when an icon
	// or its provider is missing. Malformed names still fail.
	IgnoreNotFound bool
	// Renderer supplies default attributes. Nil renders with none.
	Renderer *render.Renderer
	// Aliases maps full names to other full names.
	Aliases map[string]string
}

// Manager resolves names against registered providers. It is safe for
// concurrent use.
type Manager struct {
	opts     Options
	renderer *render.Renderer

	mu        sync.RWMutex
	providers map[string]provider.Provider
	aliases   map[string]string
}

// New returns a Manager with no providers registered.
func New(opts Options) *Manager {
	m := &Manager{
		opts:      opts,
		renderer:  opts.Renderer,
		providers: make(map[string]provider.Provider),
		aliases:   make(map[string]string, len(opts.Aliases)),
	}
	if m.renderer == nil {
		m.renderer = &render.Renderer{}
	}
	maps.Copy(m.aliases, opts.Aliases)
	return m
}

// Register serves prefix from p, replacing any earlier registration.
func (m *Manager) Register(prefix string, p provider.Provider) error {
	if prefix == "" || strings.ContainsAny(prefix, ": \t\n") {
		return iconerrors.Newf("manager.Register", iconerrors.KindInvalidName, prefix, "invalid prefix")
	}
	if p == nil {
		return iconerrors.Newf("manager.Register", iconerrors.KindProviderNotFound, prefix, "nil provider")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.providers[prefix] = p
	return nil
}

// Alias makes name resolve as target. Both are full names.
func (m *Manager) Alias(name, target string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.aliases[name] = target
}

// Provider returns the provider registered for prefix.
func (m *Manager) Provider(prefix string) (provider.Provider, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.providers[prefix]
	return p, ok
}

// Prefixes returns the registered prefixes in sorted order.
func (m *Manager) Prefixes() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Sorted(maps.Keys(m.providers))
}

// Options returns the options the Manager was created with.
func (m *Manager) Options() Options { return m.opts }

func (m *Manager) alias(name string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	target, ok := m.aliases[name]
	return target, ok
}

// Get resolves name and renders it with attrs layered over the defaults.
func (m *Manager) Get(name string, attrs icon.Attributes) (icon.Icon, error) {
	return m.get(name, attrs, 0)
}

func (m *Manager) get(name string, attrs icon.Attributes, hops int) (icon.Icon, error) {
	if hops > maxAliasHops {
		return icon.Icon{}, iconerrors.Newf("manager.Get", iconerrors.KindIconNotFound, name, "too many alias hops")
	}
	if target, ok := m.alias(name); ok {
		return m.get(target, attrs, hops+1)
	}

	prefix, local, err := ParseName(name, m.opts.DefaultPrefix)
	if err != nil {
		return icon.Icon{}, err
	}

	p, ok := m.Provider(prefix)
	if !ok {
		if m.opts.IgnoreNotFound {
			return icon.Icon{}, nil
		}
		return icon.Icon{}, iconerrors.New("manager.Get", iconerrors.KindProviderNotFound, prefix, nil)
	}

	ic, err := p.Get(local)
	if err != nil {
		if !iconerrors.IsNotFound(err) {
			return icon.Icon{}, err
		}
		if fb := m.opts.Fallback; fb != "" && fb != name {
			// A failing fallback behaves as if none were configured.
			if ic, err := m.get(fb, attrs, hops+1); err == nil {
				return ic, nil
			}
		}
		if m.opts.IgnoreNotFound {
			return icon.Icon{}, nil
		}
		return icon.Icon{}, iconerrors.New("manager.Get", iconerrors.KindIconNotFound, name, err)
	}
	return m.renderer.Render(ic, prefix, attrs, local), nil
}

// Has reports whether name resolves. Malformed names report false instead of
// failing.
func (m *Manager) Has(name string) bool {
	return m.has(name, 0)
}

func (m *Manager) has(name string, hops int) bool {
	if hops > maxAliasHops {
		return false
	}
	if target, ok := m.alias(name); ok {
		return m.has(target, hops+1)
	}
	prefix, local, err := ParseName(name, m.opts.DefaultPrefix)
	if err != nil {
		return false
	}
	p, ok := m.Provider(prefix)
	return ok && p.Has(local)
}

// Render resolves name and returns its markup.
func (m *Manager) Render(name string, attrs icon.Attributes) (string, error) {
	ic, err := m.Get(name, attrs)
	if err != nil {
		return "", err
	}
	return ic.ToMarkup(), nil
}

// List returns the local names served under prefix.
func (m *Manager) List(prefix string) ([]string, error) {
	p, ok := m.Provider(prefix)
	if !ok {
		return nil, iconerrors.New("manager.List", iconerrors.KindProviderNotFound, prefix, nil)
	}
	return p.All()
}
