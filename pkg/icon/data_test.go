package icon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	iconerrors "github.com/go-drift/icons/pkg/errors"
)

const body = `<path d="M0 0h24"/>`

func bodyOf(s string) *string { return &s }

func TestFromDataWithoutTransforms(t *testing.T) {
	ic, err := FromData(Data{Body: bodyOf(body), Width: 20, Height: 10, Left: 2, Top: 3})
	require.NoError(t, err)

	assert.Equal(t, body, ic.Content())
	attrs := ic.Attributes()
	assert.Equal(t, "20", attrs.Value("width"))
	assert.Equal(t, "10", attrs.Value("height"))
	assert.Equal(t, "2 3 20 10", attrs.Value("viewBox"))
}

func TestFromDataDefaults(t *testing.T) {
	ic, err := FromData(Data{Body: bodyOf(body)})
	require.NoError(t, err)
	assert.Equal(t, "0 0 16 16", ic.Attributes().Value("viewBox"))
}

func TestFromDataMissingBody(t *testing.T) {
	_, err := FromData(Data{Width: 24})
	assert.ErrorIs(t, err, iconerrors.ErrInvalidSourceData)
}

func TestFromDataEmptyBody(t *testing.T) {
	ic, err := FromData(Data{Body: bodyOf(""), Width: 24, Height: 24})
	require.NoError(t, err)
	assert.Empty(t, ic.Content())
	assert.Equal(t, "0 0 24 24", ic.Attributes().Value("viewBox"))
}

func TestFromDataRotateThenFlip(t *testing.T) {
	ic, err := FromData(Data{Body: bodyOf(body), Width: 24, Height: 24, Rotate: 1, HFlip: true})
	require.NoError(t, err)

	want := `<g transform="translate(24 0) scale(-1 1)">` +
		`<g transform="translate(24 0) rotate(90)">` + body + `</g>` +
		`</g>`
	assert.Equal(t, want, ic.Content())
	assert.Equal(t, "24", ic.Attributes().Value("width"))
	assert.Equal(t, "24", ic.Attributes().Value("height"))
	assert.Equal(t, "0 0 24 24", ic.Attributes().Value("viewBox"))
}

func TestFromDataTransforms(t *testing.T) {
	tests := []struct {
		name    string
		data    Data
		content string
		viewBox string
	}{
		{
			name:    "quarter turn swaps dimensions",
			data:    Data{Body: bodyOf(body), Width: 20, Height: 10, Left: 5, Top: 5, Rotate: 1},
			content: `<g transform="translate(10 0) rotate(90)">` + body + `</g>`,
			viewBox: "0 0 10 20",
		},
		{
			name:    "half turn",
			data:    Data{Body: bodyOf(body), Width: 20, Height: 10, Rotate: 2},
			content: `<g transform="translate(20 10) rotate(180)">` + body + `</g>`,
			viewBox: "0 0 20 10",
		},
		{
			name:    "three quarter turn",
			data:    Data{Body: bodyOf(body), Width: 20, Height: 10, Rotate: 3},
			content: `<g transform="translate(0 20) rotate(270)">` + body + `</g>`,
			viewBox: "0 0 10 20",
		},
		{
			name:    "both flips",
			data:    Data{Body: bodyOf(body), Width: 20, Height: 10, HFlip: true, VFlip: true},
			content: `<g transform="translate(20 10) scale(-1 -1)">` + body + `</g>`,
			viewBox: "0 0 20 10",
		},
		{
			name:    "vertical flip resets origin",
			data:    Data{Body: bodyOf(body), Width: 20, Height: 10, Left: 1, Top: 1, VFlip: true},
			content: `<g transform="translate(0 10) scale(1 -1)">` + body + `</g>`,
			viewBox: "0 0 20 10",
		},
		{
			name:    "flip uses rotated frame",
			data:    Data{Body: bodyOf(body), Width: 20, Height: 10, Rotate: 1, VFlip: true},
			content: `<g transform="translate(0 20) scale(1 -1)"><g transform="translate(10 0) rotate(90)">` + body + `</g></g>`,
			viewBox: "0 0 10 20",
		},
		{
			name:    "full turn is no rotation",
			data:    Data{Body: bodyOf(body), Width: 20, Height: 10, Rotate: 4},
			content: body,
			viewBox: "0 0 20 10",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ic, err := FromData(tt.data)
			require.NoError(t, err)
			assert.Equal(t, tt.content, ic.Content())
			assert.Equal(t, tt.viewBox, ic.Attributes().Value("viewBox"))
		})
	}
}
