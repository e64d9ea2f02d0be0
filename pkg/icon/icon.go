// Package icon defines the immutable icon value and its transforms.
//
// An Icon is a pair of inner SVG markup and root attributes. Every With* method
// returns a new Icon; the receiver is never modified, so icons are safe to
// share between goroutines and to keep in caches.
//
//	ic := icon.New(`<path d="..."/>`, icon.NewAttributes("viewBox", "0 0 24 24"))
//	ic = ic.WithClass("w-6 h-6").WithSize(32)
//	fmt.Println(ic.ToMarkup())
package icon

import (
	"fmt"
	"html"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"

	"github.com/go-drift/icons/pkg/svg"
)

// MergeMode controls how WithAttributes combines a patch with existing attributes.
type MergeMode int

const (
	// MergeModeMerge applies the patch over existing attributes.
	MergeModeMerge MergeMode = iota
	// MergeModeReplace discards existing attributes.
	MergeModeReplace
)

// safeName matches attribute names that may be written to markup.
var safeName = regexp.MustCompile(`^[A-Za-z_:][-A-Za-z0-9_:.]*$`)

// Icon is a resolved icon.
type Icon struct {
	content string
	attrs   Attributes
}

// New returns an icon with the given inner markup and root attributes.
func New(content string, attrs Attributes) Icon {
	return Icon{content: content, attrs: attrs}
}

// FromString parses a complete <svg> document.
func FromString(svgText string) (Icon, error) {
	content, parsed, err := svg.ParseString(svgText)
	if err != nil {
		return Icon{}, err
	}
	var attrs Attributes
	for _, a := range parsed {
		attrs = attrs.With(a.Name, a.Value)
	}
	return New(content, attrs), nil
}

// Content returns the inner markup.
func (i Icon) Content() string { return i.content }

// Attributes returns the root attributes.
func (i Icon) Attributes() Attributes { return i.attrs }

// IsEmpty reports whether the icon has no content and no attributes.
func (i Icon) IsEmpty() bool { return i.content == "" && i.attrs.Len() == 0 }

// Equal reports whether two icons have the same content and attributes.
func (i Icon) Equal(o Icon) bool {
	return i.content == o.content && i.attrs.Equal(o.attrs)
}

// WithAttributes applies patch. Nil values in the patch are ignored; other
// values are stringified. Names not yet present are appended in sorted order.
func (i Icon) WithAttributes(patch map[string]any, mode MergeMode) Icon {
	var next Attributes
	for _, name := range slices.Sorted(maps.Keys(patch)) {
		v, ok := stringify(patch[name])
		if !ok {
			continue
		}
		next = next.With(name, v)
	}
	if mode == MergeModeReplace {
		return New(i.content, next)
	}
	return New(i.content, i.attrs.Merge(next))
}

// WithAttrs merges an Attributes value with class concatenation.
func (i Icon) WithAttrs(attrs Attributes) Icon {
	return New(i.content, i.attrs.Merge(attrs))
}

// ReplaceAttributes returns a copy carrying exactly attrs.
func (i Icon) ReplaceAttributes(attrs Attributes) Icon {
	return New(i.content, attrs)
}

// WithClass merges classes into the class attribute. Each argument may hold
// several space separated classes.
func (i Icon) WithClass(classes ...string) Icon {
	var fields []string
	for _, c := range classes {
		fields = append(fields, strings.Fields(c)...)
	}
	if len(fields) == 0 {
		return i
	}
	return i.WithAttrs(NewAttributes("class", strings.Join(fields, " ")))
}

// WithSize sets width and height to the same value.
func (i Icon) WithSize(size any) Icon {
	v, ok := stringify(size)
	if !ok {
		return i
	}
	return New(i.content, i.attrs.With("width", v).With("height", v))
}

// WithStrokeWidth sets stroke-width.
func (i Icon) WithStrokeWidth(width any) Icon {
	return i.withValue("stroke-width", width)
}

// WithFill sets fill. Recognised SVG colour keywords are lower-cased.
func (i Icon) WithFill(color string) Icon {
	return i.withValue("fill", normalizeColor(color))
}

// WithStroke sets stroke. Recognised SVG colour keywords are lower-cased.
func (i Icon) WithStroke(color string) Icon {
	return i.withValue("stroke", normalizeColor(color))
}

// WithRotation appends a CSS rotate transform to the inline style.
func (i Icon) WithRotation(degrees float64) Icon {
	rule := "transform: rotate(" + strconv.FormatFloat(degrees, 'f', -1, 64) + "deg)"
	style := strings.TrimRight(strings.TrimSpace(i.attrs.Value("style")), "; ")
	if style != "" {
		rule = style + "; " + rule
	}
	return New(i.content, i.attrs.With("style", rule))
}

// ToMarkup serializes the icon as <svg ...>content</svg>. Attributes whose
// names are not safe identifiers are skipped and values are HTML-escaped.
func (i Icon) ToMarkup() string {
	var b strings.Builder
	b.Grow(len(i.content) + 16*i.attrs.Len() + 11)
	b.WriteString("<svg")
	for name, value := range i.attrs.All() {
		if !safeName.MatchString(name) {
			continue
		}
		b.WriteByte(' ')
		b.WriteString(name)
		b.WriteString(`="`)
		b.WriteString(html.EscapeString(value))
		b.WriteByte('"')
	}
	b.WriteByte('>')
	b.WriteString(i.content)
	b.WriteString("</svg>")
	return b.String()
}

// String implements fmt.Stringer by returning ToMarkup.
func (i Icon) String() string { return i.ToMarkup() }

func (i Icon) withValue(name string, value any) Icon {
	v, ok := stringify(value)
	if !ok {
		return i
	}
	return New(i.content, i.attrs.With(name, v))
}

func stringify(v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		return x, true
	case *string:
		if x == nil {
			return "", false
		}
		return *x, true
	case bool:
		return strconv.FormatBool(x), true
	case int:
		return strconv.Itoa(x), true
	case int64:
		return strconv.FormatInt(x, 10), true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32), true
	case fmt.Stringer:
		return x.String(), true
	default:
		return fmt.Sprint(x), true
	}
}

func normalizeColor(c string) string {
	lower := strings.ToLower(strings.TrimSpace(c))
	if _, ok := colornames.Map[lower]; ok {
		return lower
	}
	return c
}
