package svg

import (
	"encoding/xml"
	"html"
	"io"
	"strings"

	iconerrors "github.com/go-drift/icons/pkg/errors"
)

// droppedElements are removed together with everything they contain.
var droppedElements = map[string]bool{
	"script":        true,
	"foreignobject": true,
}

// Sanitize removes active content from an SVG fragment:
//   - <script> and <foreignObject> elements
//   - on* event handler attributes
//   - javascript: URIs (rewritten to "#")
//   - external http(s) references in <use> and <image> href/src
//
// Markup that needs no change is copied through unmodified.
func Sanitize(fragment string) (string, error) {
	if fragment == "" {
		return "", nil
	}

	d := newDecoder(fragment)
	var out strings.Builder
	out.Grow(len(fragment))

	skip := 0
	for {
		start := int(d.InputOffset())
		tok, err := d.RawToken()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", iconerrors.New("svg.Sanitize", iconerrors.KindInvalidSvg, "", err)
		}
		raw := fragment[start:int(d.InputOffset())]

		switch t := tok.(type) {
		case xml.StartElement:
			if skip > 0 || droppedElements[strings.ToLower(t.Name.Local)] {
				skip++
				continue
			}
			if attrs, changed := sanitizeAttrs(t); changed {
				out.WriteString(rebuildStart(t.Name, attrs, strings.HasSuffix(raw, "/>")))
				continue
			}
			out.WriteString(raw)
		case xml.EndElement:
			if skip > 0 {
				skip--
				continue
			}
			out.WriteString(raw)
		default:
			if skip > 0 {
				continue
			}
			out.WriteString(raw)
		}
	}
	return out.String(), nil
}

func sanitizeAttrs(el xml.StartElement) ([]xml.Attr, bool) {
	element := strings.ToLower(el.Name.Local)
	kept := make([]xml.Attr, 0, len(el.Attr))
	changed := false

	for _, a := range el.Attr {
		value, ok := cleanAttr(element, a.Name.Local, a.Value)
		if !ok {
			changed = true
			continue
		}
		if value != a.Value {
			a.Value = value
			changed = true
		}
		kept = append(kept, a)
	}
	return kept, changed
}

// SafeAttr applies the sanitizer's attribute rules to an attribute of the root
// <svg> element. ok is false when the attribute must be dropped.
func SafeAttr(name, value string) (string, bool) {
	return cleanAttr("svg", name, value)
}

// cleanAttr drops event handlers and external <use>/<image> references and
// rewrites javascript: URIs to "#".
func cleanAttr(element, name, value string) (string, bool) {
	local := strings.ToLower(name)
	if i := strings.LastIndexByte(local, ':'); i >= 0 {
		local = local[i+1:]
	}
	if strings.HasPrefix(local, "on") {
		return "", false
	}
	uri := compactURI(value)
	if strings.HasPrefix(uri, "javascript:") {
		return "#", true
	}
	if (element == "use" || element == "image") && (local == "href" || local == "src") && isExternal(uri) {
		return "", false
	}
	return value, true
}

// compactURI lower-cases v and drops whitespace and control characters, which
// browsers ignore inside a URI scheme.
func compactURI(v string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(v) {
		if r <= ' ' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isExternal(v string) bool {
	return strings.HasPrefix(v, "http://") || strings.HasPrefix(v, "https://") || strings.HasPrefix(v, "//")
}

func rebuildStart(name xml.Name, attrs []xml.Attr, selfClosing bool) string {
	var b strings.Builder
	b.WriteByte('<')
	b.WriteString(qualified(name))
	for _, a := range attrs {
		b.WriteByte(' ')
		b.WriteString(qualified(a.Name))
		b.WriteString(`="`)
		b.WriteString(html.EscapeString(a.Value))
		b.WriteByte('"')
	}
	if selfClosing {
		b.WriteString("/>")
	} else {
		b.WriteByte('>')
	}
	return b.String()
}

func qualified(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}
