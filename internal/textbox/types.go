// Package textbox locates the in-game dialogue rectangle in a frame
// and decides whether its content is new enough to warrant OCR.
package textbox

import (
	"image"

	"dialogwatch/internal/frame"
)

// Rect is a detected textbox rectangle in frame coordinates. It is
// always clamped to lie fully inside the frame that produced it.
type Rect struct {
	X, Y, W, H int
}

// ToImageRect converts Rect to the stdlib image.Rectangle used for
// cropping.
func (r Rect) ToImageRect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.W, r.Y+r.H)
}

// Inside reports whether r lies entirely within bounds.
func (r Rect) Inside(bounds image.Rectangle) bool {
	ir := r.ToImageRect()
	return ir.Min.X >= bounds.Min.X && ir.Min.Y >= bounds.Min.Y &&
		ir.Max.X <= bounds.Max.X && ir.Max.Y <= bounds.Max.Y
}

// clamp shrinks r so it fits entirely inside bounds.
func clamp(r Rect, bounds image.Rectangle) Rect {
	ir := r.ToImageRect().Intersect(bounds)
	if ir.Empty() {
		return Rect{}
	}
	return Rect{X: ir.Min.X, Y: ir.Min.Y, W: ir.Dx(), H: ir.Dy()}
}

// Snapshot is a cropped textbox region plus its content fingerprint,
// produced once per detected Rect per tick.
type Snapshot struct {
	Rect        Rect
	Crop        *frame.Frame
	Fingerprint uint64
}
