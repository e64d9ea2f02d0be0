package provider

import (
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"slices"
	"sync"

	iconerrors "github.com/go-drift/icons/pkg/errors"
	"github.com/go-drift/icons/pkg/icon"
)

// MaxAliasDepth bounds alias chains inside a collection. A chain longer than
// this, including any cycle, resolves to not-found.
const MaxAliasDepth = 10

// record is an icon or alias entry. Pointer fields distinguish "absent" from
// zero values so aliases override only what they set.
type record struct {
	Body   *string  `json:"body"`
	Width  *float64 `json:"width"`
	Height *float64 `json:"height"`
	Left   *float64 `json:"left"`
	Top    *float64 `json:"top"`
	Rotate *int     `json:"rotate"`
	HFlip  *bool    `json:"hFlip"`
	VFlip  *bool    `json:"vFlip"`
}

type aliasRecord struct {
	Parent string `json:"parent"`
	record
}

// document is an Iconify JSON collection. The Iconify API answers with the
// same shape for a subset of icons.
type document struct {
	Prefix   string                 `json:"prefix"`
	Icons    map[string]record      `json:"icons"`
	Aliases  map[string]aliasRecord `json:"aliases"`
	Width    *float64               `json:"width"`
	Height   *float64               `json:"height"`
	Left     *float64               `json:"left"`
	Top      *float64               `json:"top"`
	NotFound []string               `json:"not_found"`
}

func parseDocument(data []byte) (*document, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, iconerrors.New("collection.parse", iconerrors.KindInvalidSourceData, "", err)
	}
	if doc.Icons == nil {
		return nil, iconerrors.Newf("collection.parse", iconerrors.KindInvalidSourceData, doc.Prefix, "missing icons")
	}
	return &doc, nil
}

// resolve follows alias parents until a direct icon is found. Fields set on
// an alias replace the parent's.
func (doc *document) resolve(name string, depth int) (record, bool) {
	if r, ok := doc.Icons[name]; ok {
		return r, true
	}
	if depth >= MaxAliasDepth {
		return record{}, false
	}
	alias, ok := doc.Aliases[name]
	if !ok || alias.Parent == "" {
		return record{}, false
	}
	parent, ok := doc.resolve(alias.Parent, depth+1)
	if !ok {
		return record{}, false
	}
	return parent.override(alias.record), true
}

func (r record) override(o record) record {
	if o.Body != nil {
		r.Body = o.Body
	}
	if o.Width != nil {
		r.Width = o.Width
	}
	if o.Height != nil {
		r.Height = o.Height
	}
	if o.Left != nil {
		r.Left = o.Left
	}
	if o.Top != nil {
		r.Top = o.Top
	}
	if o.Rotate != nil {
		r.Rotate = o.Rotate
	}
	if o.HFlip != nil {
		r.HFlip = o.HFlip
	}
	if o.VFlip != nil {
		r.VFlip = o.VFlip
	}
	return r
}

// data fills missing dimensions from the document defaults.
func (doc *document) data(r record) icon.Data {
	pick := func(v, def *float64) float64 {
		switch {
		case v != nil:
			return *v
		case def != nil:
			return *def
		}
		return 0
	}
	d := icon.Data{
		Body:   r.Body,
		Width:  pick(r.Width, doc.Width),
		Height: pick(r.Height, doc.Height),
		Left:   pick(r.Left, doc.Left),
		Top:    pick(r.Top, doc.Top),
	}
	if r.Rotate != nil {
		d.Rotate = *r.Rotate
	}
	if r.HFlip != nil {
		d.HFlip = *r.HFlip
	}
	if r.VFlip != nil {
		d.VFlip = *r.VFlip
	}
	return d
}

func (doc *document) icon(name string) (icon.Icon, error) {
	r, ok := doc.resolve(name, 0)
	if !ok {
		return icon.Icon{}, notFound("collection.Get", name)
	}
	return icon.FromData(doc.data(r))
}

func (doc *document) names() []string {
	set := make(map[string]struct{}, len(doc.Icons)+len(doc.Aliases))
	for n := range doc.Icons {
		set[n] = struct{}{}
	}
	for n := range doc.Aliases {
		set[n] = struct{}{}
	}
	return slices.Sorted(maps.Keys(set))
}

// Collection serves icons from one Iconify JSON document. The document is
// read and parsed on first use, so a missing file only fails when an icon is
// requested. A failed load is retried on the next call.
type Collection struct {
	source string
	load   func() ([]byte, error)

	mu  sync.Mutex
	doc *document
}

var _ Provider = (*Collection)(nil)

// NewCollectionFile returns a collection backed by the JSON file at path.
func NewCollectionFile(path string) *Collection {
	return &Collection{
		source: path,
		load: func() ([]byte, error) {
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("failed to read collection: %w", err)
			}
			return data, nil
		},
	}
}

// NewCollection returns a collection backed by an in-memory document.
func NewCollection(data []byte) *Collection {
	return &Collection{
		source: "memory",
		load:   func() ([]byte, error) { return data, nil },
	}
}

func (c *Collection) document() (*document, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.doc != nil {
		return c.doc, nil
	}
	data, err := c.load()
	if err != nil {
		return nil, err
	}
	doc, err := parseDocument(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.source, err)
	}
	c.doc = doc
	return doc, nil
}

// Prefix returns the prefix declared by the document.
func (c *Collection) Prefix() (string, error) {
	doc, err := c.document()
	if err != nil {
		return "", err
	}
	return doc.Prefix, nil
}

// Get implements Provider.
func (c *Collection) Get(name string) (icon.Icon, error) {
	doc, err := c.document()
	if err != nil {
		return icon.Icon{}, err
	}
	return doc.icon(name)
}

// Has implements Provider.
func (c *Collection) Has(name string) bool {
	doc, err := c.document()
	if err != nil {
		return false
	}
	_, ok := doc.resolve(name, 0)
	return ok
}

// All implements Provider. Alias names are included.
func (c *Collection) All() ([]string, error) {
	doc, err := c.document()
	if err != nil {
		return nil, err
	}
	return doc.names(), nil
}
