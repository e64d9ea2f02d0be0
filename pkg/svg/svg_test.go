package svg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	iconerrors "github.com/go-drift/icons/pkg/errors"
)

func TestParseSplitsRootAttributesAndContent(t *testing.T) {
	doc := `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="24" height='24' viewBox="0 0 24 24" data-x="a &amp; b"><path d="M12 2L2 7"/></svg>`

	content, attrs, err := ParseString(doc)
	require.NoError(t, err)

	assert.Equal(t, `<path d="M12 2L2 7"/>`, content)
	assert.Equal(t, []Attr{
		{Name: "xmlns", Value: "http://www.w3.org/2000/svg"},
		{Name: "width", Value: "24"},
		{Name: "height", Value: "24"},
		{Name: "viewBox", Value: "0 0 24 24"},
		{Name: "data-x", Value: "a & b"},
	}, attrs)
}

func TestParseSelfClosingRoot(t *testing.T) {
	content, attrs, err := ParseString(`<svg viewBox="0 0 1 1"/>`)
	require.NoError(t, err)
	assert.Empty(t, content)
	assert.Len(t, attrs, 1)
}

func TestParseRejectsNonSvg(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"empty", ""},
		{"wrong root", `<html><body/></html>`},
		{"unterminated", `<svg><path d="M0 0">`},
		{"mismatched", `<svg><g></path></svg>`},
		{"text before root", `hello <svg></svg>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ParseString(tt.doc)
			require.Error(t, err)
			assert.ErrorIs(t, err, iconerrors.ErrInvalidSvg)
		})
	}
}

func TestParseTranscodesDeclaredEncoding(t *testing.T) {
	// "é" in ISO-8859-1 is 0xE9.
	doc := []byte("<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?><svg><title>caf\xe9</title></svg>")
	content, _, err := Parse(doc)
	require.NoError(t, err)
	assert.Equal(t, "<title>café</title>", content)
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "untouched markup is copied verbatim",
			in:   `<g fill="none"><path d="M0 0h24v24H0z" stroke-width='2'/></g>`,
			want: `<g fill="none"><path d="M0 0h24v24H0z" stroke-width='2'/></g>`,
		},
		{
			name: "script removed",
			in:   `<script>alert(1)</script><path d="M0"/>`,
			want: `<path d="M0"/>`,
		},
		{
			name: "foreignObject removed with children",
			in:   `<foreignObject><div><p>x</p></div></foreignObject><circle r="1"/>`,
			want: `<circle r="1"/>`,
		},
		{
			name: "event handlers dropped",
			in:   `<path onclick="steal()" d="M0"/>`,
			want: `<path d="M0"/>`,
		},
		{
			name: "javascript uri neutralized",
			in:   `<a href=" JavaScript:alert(1)"><path d="M0"/></a>`,
			want: `<a href="#"><path d="M0"/></a>`,
		},
		{
			name: "external use reference dropped",
			in:   `<use xlink:href="https://evil.example/sprite.svg#x"/><use href="#local"/>`,
			want: `<use/><use href="#local"/>`,
		},
		{
			name: "external image source dropped",
			in:   `<image src="http://evil.example/a.png" width="1"></image>`,
			want: `<image width="1"></image>`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Sanitize(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseSanitizesContent(t *testing.T) {
	content, _, err := ParseString(`<svg><script>x</script><path d="M1"/></svg>`)
	require.NoError(t, err)
	assert.Equal(t, `<path d="M1"/>`, content)
}

func TestParseSanitizesRootAttributes(t *testing.T) {
	doc := `<svg onload="alert(2)" OnMouseOver='x()' width="24" xlink:href=" javascript:alert(3)"><path d="M0"/></svg>`
	content, attrs, err := ParseString(doc)
	require.NoError(t, err)
	assert.Equal(t, `<path d="M0"/>`, content)
	assert.Equal(t, []Attr{
		{Name: "width", Value: "24"},
		{Name: "xlink:href", Value: "#"},
	}, attrs)
}

func TestSafeAttr(t *testing.T) {
	tests := []struct {
		name, value string
		want        string
		ok          bool
	}{
		{"class", "w-6", "w-6", true},
		{"onclick", "x()", "", false},
		{"ONLOAD", "x()", "", false},
		{"ev:onclick", "x()", "", false},
		{"href", "javascript:alert(1)", "#", true},
		{"href", "https://example.com/a.svg", "https://example.com/a.svg", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := SafeAttr(tt.name, tt.value)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
