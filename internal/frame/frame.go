// Package frame captures framebuffers of the target game window and
// gates them through a stability check before the rest of the pipeline
// ever sees one.
package frame

import "image"

// Frame is an immutable 2D pixel buffer with 24-bit RGB samples,
// row-major, 3 bytes per pixel. Alpha is discarded at capture time.
type Frame struct {
	Width  int
	Height int
	Pix    []byte
}

// At returns the R, G, B bytes at (x, y). Callers must keep x, y in
// bounds; Frame performs no bounds checking on the hot path.
func (f *Frame) At(x, y int) (r, g, b byte) {
	i := (y*f.Width + x) * 3
	return f.Pix[i], f.Pix[i+1], f.Pix[i+2]
}

// Bounds reports the frame's rectangle with origin at (0, 0).
func (f *Frame) Bounds() image.Rectangle {
	return image.Rect(0, 0, f.Width, f.Height)
}

// FromRGBA packs an *image.RGBA captured from the OS into a Frame,
// dropping the alpha channel.
func FromRGBA(src *image.RGBA) *Frame {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	pix := make([]byte, w*h*3)
	o := 0
	for y := 0; y < h; y++ {
		row := src.Pix[(y)*src.Stride : (y)*src.Stride+w*4]
		for x := 0; x < w; x++ {
			i := x * 4
			pix[o] = row[i]
			pix[o+1] = row[i+1]
			pix[o+2] = row[i+2]
			o += 3
		}
	}
	return &Frame{Width: w, Height: h, Pix: pix}
}

// Crop returns a new Frame holding a copy of the pixels inside r,
// clamped to the source bounds.
func (f *Frame) Crop(r image.Rectangle) *Frame {
	r = r.Intersect(f.Bounds())
	if r.Empty() {
		return &Frame{}
	}
	w, h := r.Dx(), r.Dy()
	pix := make([]byte, w*h*3)
	for y := 0; y < h; y++ {
		srcOff := ((y+r.Min.Y)*f.Width + r.Min.X) * 3
		dstOff := y * w * 3
		copy(pix[dstOff:dstOff+w*3], f.Pix[srcOff:srcOff+w*3])
	}
	return &Frame{Width: w, Height: h, Pix: pix}
}
