package icon

import (
	"strconv"

	iconerrors "github.com/go-drift/icons/pkg/errors"
)

// DefaultSize is the width and height assumed when a record does not set one.
const DefaultSize = 16

// Data is an icon record in the Iconify data format.
type Data struct {
	// Body is the inner markup. Nil means the record has no body field; an
	// empty string is a valid, blank icon.
	Body   *string
	Width  float64
	Height float64
	Left   float64
	Top    float64
	// Rotate counts clockwise quarter turns (0-3).
	Rotate int
	HFlip  bool
	VFlip  bool
}

// FromData builds an icon from an Iconify record, applying its transforms.
//
// Rotation is applied first and flips second: the flip must operate in the
// rotated coordinate frame. Rotating by a quarter or three quarters swaps
// width and height for everything that follows. When any transform is applied
// the viewBox origin becomes 0 0.
func FromData(d Data) (Icon, error) {
	if d.Body == nil {
		return Icon{}, iconerrors.Newf("icon.FromData", iconerrors.KindInvalidSourceData, "", "missing body")
	}

	width, height := d.Width, d.Height
	if width <= 0 {
		width = DefaultSize
	}
	if height <= 0 {
		height = DefaultSize
	}
	left, top := d.Left, d.Top
	body := *d.Body
	rotate := ((d.Rotate % 4) + 4) % 4

	if rotate != 0 || d.HFlip || d.VFlip {
		switch rotate {
		case 1:
			body = group("translate("+num(height)+" 0) rotate(90)", body)
			width, height = height, width
		case 2:
			body = group("translate("+num(width)+" "+num(height)+") rotate(180)", body)
		case 3:
			body = group("translate(0 "+num(width)+") rotate(270)", body)
			width, height = height, width
		}

		switch {
		case d.HFlip && d.VFlip:
			body = group("translate("+num(width)+" "+num(height)+") scale(-1 -1)", body)
		case d.HFlip:
			body = group("translate("+num(width)+" 0) scale(-1 1)", body)
		case d.VFlip:
			body = group("translate(0 "+num(height)+") scale(1 -1)", body)
		}
		left, top = 0, 0
	}

	attrs := NewAttributes(
		"width", num(width),
		"height", num(height),
		"viewBox", num(left)+" "+num(top)+" "+num(width)+" "+num(height),
	)
	return New(body, attrs), nil
}

func group(transform, body string) string {
	return `<g transform="` + transform + `">` + body + `</g>`
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
