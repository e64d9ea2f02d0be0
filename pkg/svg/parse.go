// Package svg splits SVG documents into root attributes and sanitized inner markup.
//
// It does not build a DOM. The inner markup is kept byte-for-byte except where
// sanitization removes or rewrites something.
package svg

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"html"
	"io"
	"regexp"
	"strings"

	"golang.org/x/net/html/charset"

	iconerrors "github.com/go-drift/icons/pkg/errors"
)

// Attr is a root element attribute as written in the source document.
type Attr struct {
	Name  string
	Value string
}

var (
	xmlDeclEncoding = regexp.MustCompile(`^\s*<\?xml[^>]*encoding\s*=\s*["']([^"']+)["']`)
	tagAttr         = regexp.MustCompile(`([^\s=/>"']+)\s*=\s*(?:"([^"]*)"|'([^']*)')`)
)

// Parse extracts the root <svg> element's attributes and its sanitized inner
// markup. Root attributes follow the same rules as Sanitize. Documents
// declaring a non-UTF-8 encoding are transcoded first.
func Parse(text []byte) (content string, attrs []Attr, err error) {
	doc, err := toUTF8(text)
	if err != nil {
		return "", nil, iconerrors.New("svg.Parse", iconerrors.KindInvalidSvg, "", err)
	}

	rootTag, inner, err := splitRoot(doc)
	if err != nil {
		return "", nil, iconerrors.New("svg.Parse", iconerrors.KindInvalidSvg, "", err)
	}

	content, err = Sanitize(inner)
	if err != nil {
		return "", nil, err
	}
	return content, parseTagAttrs(rootTag), nil
}

// ParseString is Parse for string input.
func ParseString(text string) (string, []Attr, error) {
	return Parse([]byte(text))
}

func toUTF8(text []byte) (string, error) {
	m := xmlDeclEncoding.FindSubmatch(text)
	if m == nil {
		return string(text), nil
	}
	label := strings.ToLower(strings.TrimSpace(string(m[1])))
	if label == "utf-8" || label == "utf8" {
		return string(text), nil
	}
	r, err := charset.NewReaderLabel(label, bytes.NewReader(text))
	if err != nil {
		return "", fmt.Errorf("unsupported encoding %q: %w", label, err)
	}
	out, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("transcode %q: %w", label, err)
	}
	return string(out), nil
}

// newDecoder returns a decoder over already UTF-8 input.
func newDecoder(doc string) *xml.Decoder {
	d := xml.NewDecoder(strings.NewReader(doc))
	d.Entity = xml.HTMLEntity
	d.CharsetReader = func(_ string, in io.Reader) (io.Reader, error) {
		return in, nil
	}
	return d
}

// splitRoot returns the raw root start tag and the raw markup between the
// root start and end tags.
func splitRoot(doc string) (rootTag, inner string, err error) {
	d := newDecoder(doc)

	depth := 0
	innerStart := -1
	for {
		off := int(d.InputOffset())
		tok, err := d.Token()
		if err == io.EOF {
			if innerStart < 0 {
				return "", "", fmt.Errorf("no root <svg> element")
			}
			return "", "", fmt.Errorf("unterminated <svg> element")
		}
		if err != nil {
			return "", "", err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if innerStart < 0 {
				if t.Name.Local != "svg" {
					return "", "", fmt.Errorf("root element is <%s>, want <svg>", t.Name.Local)
				}
				innerStart = int(d.InputOffset())
				rootTag = doc[off:innerStart]
			}
			depth++
		case xml.EndElement:
			depth--
			if depth == 0 {
				// A self-closing root yields off == innerStart.
				return rootTag, doc[innerStart:off], nil
			}
		case xml.CharData:
			if innerStart < 0 && len(bytes.TrimSpace(t)) > 0 {
				return "", "", fmt.Errorf("text before root element")
			}
		}
	}
}

func parseTagAttrs(tag string) []Attr {
	// Skip the element name.
	tag = strings.TrimPrefix(tag, "<")
	if i := strings.IndexAny(tag, " \t\r\n/>"); i >= 0 {
		tag = tag[i:]
	} else {
		return nil
	}

	var attrs []Attr
	for _, m := range tagAttr.FindAllStringSubmatch(tag, -1) {
		value := m[2]
		if value == "" {
			value = m[3]
		}
		value, ok := SafeAttr(m[1], html.UnescapeString(value))
		if !ok {
			continue
		}
		attrs = append(attrs, Attr{Name: m[1], Value: value})
	}
	return attrs
}
