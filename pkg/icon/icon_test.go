package icon

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	iconerrors "github.com/go-drift/icons/pkg/errors"
)

func sample() Icon {
	return New(`<path d="M0 0"/>`, NewAttributes("viewBox", "0 0 24 24", "class", "icon"))
}

func TestWithAttributesEmptyPatchIsIdentity(t *testing.T) {
	a := sample()
	b := a.WithAttributes(map[string]any{}, MergeModeMerge)
	assert.True(t, a.Equal(b))
	assert.Equal(t, a.ToMarkup(), b.ToMarkup())
}

func TestTransformsDoNotMutateReceiver(t *testing.T) {
	a := sample()
	before := a.Attributes().Map()

	transforms := map[string]func(Icon) Icon{
		"attributes": func(i Icon) Icon { return i.WithAttributes(map[string]any{"x": 1}, MergeModeMerge) },
		"replace":    func(i Icon) Icon { return i.WithAttributes(map[string]any{"x": 1}, MergeModeReplace) },
		"class":      func(i Icon) Icon { return i.WithClass("w-6") },
		"size":       func(i Icon) Icon { return i.WithSize(32) },
		"stroke":     func(i Icon) Icon { return i.WithStroke("red") },
		"fill":       func(i Icon) Icon { return i.WithFill("currentColor") },
		"strokeW":    func(i Icon) Icon { return i.WithStrokeWidth(1.5) },
		"rotation":   func(i Icon) Icon { return i.WithRotation(90) },
	}
	for name, fn := range transforms {
		t.Run(name, func(t *testing.T) {
			b := fn(a)
			assert.Equal(t, before, a.Attributes().Map())
			assert.False(t, a.Equal(b), "transform should produce a different value")
		})
	}
}

func TestWithClassConcatenates(t *testing.T) {
	ic := New("", NewAttributes("class", "icon")).WithClass("w-6 h-6")
	assert.Equal(t, "icon w-6 h-6", ic.Attributes().Value("class"))

	ic = New("", Attributes{}).WithClass("  a ", "b  c")
	assert.Equal(t, "a b c", ic.Attributes().Value("class"))
}

func TestWithAttributesMerge(t *testing.T) {
	ic := sample().WithAttributes(map[string]any{
		"class":        "w-6",
		"width":        24,
		"aria-hidden":  true,
		"stroke-width": 1.5,
		"fill":         nil,
	}, MergeModeMerge)

	attrs := ic.Attributes()
	assert.Equal(t, "icon w-6", attrs.Value("class"))
	assert.Equal(t, "24", attrs.Value("width"))
	assert.Equal(t, "true", attrs.Value("aria-hidden"))
	assert.Equal(t, "1.5", attrs.Value("stroke-width"))
	assert.False(t, attrs.Has("fill"))
	assert.Equal(t, []string{"viewBox", "class", "aria-hidden", "stroke-width", "width"}, attrs.Names())
}

func TestWithAttributesNilNeverClears(t *testing.T) {
	ic := sample().WithAttributes(map[string]any{"viewBox": nil}, MergeModeMerge)
	assert.Equal(t, "0 0 24 24", ic.Attributes().Value("viewBox"))
}

func TestWithAttributesReplace(t *testing.T) {
	ic := sample().WithAttributes(map[string]any{"width": "10", "skip": nil}, MergeModeReplace)
	assert.Equal(t, []string{"width"}, ic.Attributes().Names())
	assert.Equal(t, `<path d="M0 0"/>`, ic.Content())
}

func TestWithSizeAndColors(t *testing.T) {
	ic := sample().WithSize("2em").WithFill("RED").WithStroke("#ff0000")
	attrs := ic.Attributes()
	assert.Equal(t, "2em", attrs.Value("width"))
	assert.Equal(t, "2em", attrs.Value("height"))
	assert.Equal(t, "red", attrs.Value("fill"))
	assert.Equal(t, "#ff0000", attrs.Value("stroke"))
}

func TestWithRotationKeepsStyle(t *testing.T) {
	ic := New("", NewAttributes("style", "color: red;")).WithRotation(45)
	assert.Equal(t, "color: red; transform: rotate(45deg)", ic.Attributes().Value("style"))

	ic = New("", Attributes{}).WithRotation(-22.5)
	assert.Equal(t, "transform: rotate(-22.5deg)", ic.Attributes().Value("style"))
}

func TestToMarkup(t *testing.T) {
	ic := New(`<path d="M0"/>`, NewAttributes(
		"width", "24",
		"data-title", `"quoted" & <tag>`,
		`onload="x`, "evil",
		"bad name", "x",
	))
	assert.Equal(t,
		`<svg width="24" data-title="&#34;quoted&#34; &amp; &lt;tag&gt;"><path d="M0"/></svg>`,
		ic.ToMarkup())

	assert.Equal(t, "<svg></svg>", Icon{}.ToMarkup())
}

func TestFromString(t *testing.T) {
	ic, err := FromString(`<svg viewBox="0 0 24 24" width="24"><path d="M1"/></svg>`)
	require.NoError(t, err)
	assert.Equal(t, `<path d="M1"/>`, ic.Content())
	assert.Equal(t, []string{"viewBox", "width"}, ic.Attributes().Names())

	_, err = FromString(`<div/>`)
	assert.ErrorIs(t, err, iconerrors.ErrInvalidSvg)
}

func TestJSONRoundTripPreservesOrder(t *testing.T) {
	ic := New(`<path d="M0"/>`, NewAttributes("z", "1", "a", "2", "class", "x y"))
	data, err := json.Marshal(ic)
	require.NoError(t, err)

	var got Icon
	require.NoError(t, json.Unmarshal(data, &got))
	assert.True(t, ic.Equal(got))
	assert.Equal(t, []string{"z", "a", "class"}, got.Attributes().Names())
}

func TestAttributesWithout(t *testing.T) {
	a := NewAttributes("a", "1", "b", "2")
	b := a.Without("a")
	assert.Equal(t, []string{"b"}, b.Names())
	assert.Equal(t, []string{"a", "b"}, a.Names())
	assert.Equal(t, a, a.Without("missing"))
}

func TestAttributesFromMapIsSorted(t *testing.T) {
	a := AttributesFromMap(map[string]string{"b": "2", "a": "1"})
	assert.Equal(t, []string{"a", "b"}, a.Names())
}
