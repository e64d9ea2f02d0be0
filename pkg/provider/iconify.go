package provider

import (
	"context"
	"encoding/json"
	"maps"
	"net/url"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/go-drift/icons/pkg/cache"
	iconerrors "github.com/go-drift/icons/pkg/errors"
	"github.com/go-drift/icons/pkg/fetch"
	"github.com/go-drift/icons/pkg/icon"
)

// DefaultHosts are the public Iconify API mirrors, tried in order.
var DefaultHosts = []string{
	"https://api.iconify.design",
	"https://api.simplesvg.com",
	"https://api.unisvg.com",
}

// Iconify serves one collection of the Iconify HTTP API.
//
// Lookups consult the cache first and only reach the network on a miss.
// Every fetched icon is written to the cache before it is returned. Hosts are
// tried one at a time; a failing host is reported to the error handler and the
// next one is tried. When every host fails the icon is reported as not found:
// at this layer "unavailable" and "network down" are the same outcome.
type Iconify struct {
	prefix     string
	hosts      []string
	cache      cache.Cache
	downloader *fetch.Downloader
	timeout    time.Duration

	group singleflight.Group
}

var _ Provider = (*Iconify)(nil)

// IconifyOption configures an Iconify provider.
type IconifyOption func(*Iconify)

// WithHosts replaces DefaultHosts.
func WithHosts(hosts ...string) IconifyOption {
	return func(p *Iconify) {
		p.hosts = nil
		for _, h := range hosts {
			if h = strings.TrimRight(strings.TrimSpace(h), "/"); h != "" {
				p.hosts = append(p.hosts, h)
			}
		}
	}
}

// WithCache sets the durable cache. The default is cache.Noop.
func WithCache(c cache.Cache) IconifyOption {
	return func(p *Iconify) {
		if c != nil {
			p.cache = c
		}
	}
}

// WithDownloader sets the HTTP client wrapper.
func WithDownloader(d *fetch.Downloader) IconifyOption {
	return func(p *Iconify) { p.downloader = d }
}

// WithTimeout bounds each request.
func WithTimeout(timeout time.Duration) IconifyOption {
	return func(p *Iconify) { p.timeout = timeout }
}

// NewIconify returns a provider for the remote collection prefix.
func NewIconify(prefix string, opts ...IconifyOption) *Iconify {
	p := &Iconify{
		prefix:  prefix,
		hosts:   slices.Clone(DefaultHosts),
		cache:   cache.Noop{},
		timeout: fetch.DefaultTimeout,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.downloader == nil {
		p.downloader = fetch.NewDownloader(p.timeout)
	}
	return p
}

// Prefix returns the remote collection prefix.
func (p *Iconify) Prefix() string { return p.prefix }

func (p *Iconify) key(name string) string {
	return "iconify." + p.prefix + "." + name
}

func (p *Iconify) cached(name string) (icon.Icon, bool, error) {
	data, ok, err := p.cache.Get(p.key(name))
	if err != nil || !ok {
		return icon.Icon{}, false, err
	}
	var ic icon.Icon
	if err := json.Unmarshal(data, &ic); err != nil {
		// Unreadable entries are refetched and overwritten.
		return icon.Icon{}, false, nil
	}
	return ic, true, nil
}

// Get implements Provider.
func (p *Iconify) Get(name string) (icon.Icon, error) {
	if !fetch.ValidPrefix(p.prefix) || !fetch.ValidPrefix(name) {
		return icon.Icon{}, notFound("iconify.Get", name)
	}
	if ic, ok, err := p.cached(name); err != nil {
		return icon.Icon{}, err
	} else if ok {
		return ic, nil
	}

	v, err, _ := p.group.Do(name, func() (any, error) {
		icons, err := p.fetch([]string{name})
		if err != nil {
			return nil, err
		}
		ic, ok := icons[name]
		if !ok {
			return nil, notFound("iconify.Get", name)
		}
		return ic, nil
	})
	if err != nil {
		return icon.Icon{}, err
	}
	return v.(icon.Icon), nil
}

// GetMany resolves several names with at most one request per host. Names
// that cannot be resolved are absent from the result.
func (p *Iconify) GetMany(names []string) (map[string]icon.Icon, error) {
	out := make(map[string]icon.Icon, len(names))
	if !fetch.ValidPrefix(p.prefix) {
		return out, nil
	}

	var missing []string
	for _, name := range names {
		if !fetch.ValidPrefix(name) {
			continue
		}
		if _, seen := out[name]; seen || slices.Contains(missing, name) {
			continue
		}
		ic, ok, err := p.cached(name)
		if err != nil {
			return out, err
		}
		if ok {
			out[name] = ic
			continue
		}
		missing = append(missing, name)
	}
	if len(missing) == 0 {
		return out, nil
	}

	fetched, err := p.fetch(missing)
	if err != nil {
		return out, err
	}
	maps.Copy(out, fetched)
	return out, nil
}

// Has implements Provider. Without a cached entry this performs a full fetch
// and discards the icon, so it is not a cheap check.
func (p *Iconify) Has(name string) bool {
	if fetch.ValidPrefix(name) && p.cache.Has(p.key(name)) {
		return true
	}
	_, err := p.Get(name)
	return err == nil
}

// fetch requests names from the first host that answers. Only cache write
// failures and malformed icon records are returned as errors.
func (p *Iconify) fetch(names []string) (map[string]icon.Icon, error) {
	query := url.Values{"icons": {strings.Join(names, ",")}}
	var doc *document
	for _, host := range p.hosts {
		body, err := p.get(host + "/" + p.prefix + ".json?" + query.Encode())
		if err != nil {
			iconerrors.Report(iconerrors.New("iconify.fetch", iconerrors.KindTransport, host, err))
			continue
		}
		d, err := parseDocument(body)
		if err != nil {
			iconerrors.Report(iconerrors.New("iconify.fetch", iconerrors.KindTransport, host, err))
			continue
		}
		doc = d
		break
	}

	out := make(map[string]icon.Icon, len(names))
	if doc == nil {
		return out, nil
	}
	for _, name := range names {
		ic, err := doc.icon(name)
		if iconerrors.IsNotFound(err) {
			continue
		}
		if err != nil {
			return out, err
		}
		data, err := json.Marshal(ic)
		if err != nil {
			return out, err
		}
		if err := p.cache.Set(p.key(name), data); err != nil {
			return out, err
		}
		out[name] = ic
	}
	return out, nil
}

func (p *Iconify) get(u string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()
	return p.downloader.Get(ctx, u)
}

// collectionInfo is the Iconify /collection response.
type collectionInfo struct {
	Uncategorized []string            `json:"uncategorized"`
	Categories    map[string][]string `json:"categories"`
	Hidden        []string            `json:"hidden"`
	Aliases       map[string]string   `json:"aliases"`
}

// All implements Provider by asking the API for the collection's icon list.
// The list is cached under its own key.
func (p *Iconify) All() ([]string, error) {
	if !fetch.ValidPrefix(p.prefix) {
		return nil, nil
	}
	listKey := "iconify-list." + p.prefix
	if data, ok, err := p.cache.Get(listKey); err != nil {
		return nil, err
	} else if ok {
		var names []string
		if json.Unmarshal(data, &names) == nil {
			return names, nil
		}
	}

	query := url.Values{"prefix": {p.prefix}, "aliases": {"1"}, "hidden": {"1"}}
	for _, host := range p.hosts {
		body, err := p.get(host + "/collection?" + query.Encode())
		if err != nil {
			iconerrors.Report(iconerrors.New("iconify.All", iconerrors.KindTransport, host, err))
			continue
		}
		var info collectionInfo
		if err := json.Unmarshal(body, &info); err != nil {
			iconerrors.Report(iconerrors.New("iconify.All", iconerrors.KindTransport, host, err))
			continue
		}

		set := make(map[string]struct{})
		for _, n := range info.Uncategorized {
			set[n] = struct{}{}
		}
		for _, list := range info.Categories {
			for _, n := range list {
				set[n] = struct{}{}
			}
		}
		for _, n := range info.Hidden {
			set[n] = struct{}{}
		}
		for n := range info.Aliases {
			set[n] = struct{}{}
		}
		names := slices.Sorted(maps.Keys(set))

		data, err := json.Marshal(names)
		if err != nil {
			return nil, err
		}
		if err := p.cache.Set(listKey, data); err != nil {
			return nil, err
		}
		return names, nil
	}
	return nil, iconerrors.Newf("iconify.All", iconerrors.KindTransport, p.prefix, "no host answered")
}
