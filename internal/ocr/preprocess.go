// Package ocr preprocesses a cropped textbox image and runs it through
// an external OCR engine under a bounded-concurrency, timed wrapper.
package ocr

import (
	"image"
	"image/color"

	"dialogwatch/internal/frame"
)

// PreprocessConfig tunes the grayscale/upscale/threshold pipeline fed
// to the OCR engine.
type PreprocessConfig struct {
	Upscale   int // integer factor, 2-6
	Threshold int // 0-255, ignored when Adaptive is set
	Adaptive  bool
}

// Preprocess converts a cropped frame into a binary image ready for
// OCR: grayscale with blue-dominant inversion, nearest-neighbor
// upscale, then a global or adaptive threshold.
func Preprocess(f *frame.Frame, cfg PreprocessConfig) *image.Gray {
	gray := toGrayInverted(f)
	scale := cfg.Upscale
	if scale < 2 {
		scale = 2
	}
	if scale > 6 {
		scale = 6
	}
	upscaled := nearestNeighborUpscale(gray, scale)
	if cfg.Adaptive {
		return adaptiveThreshold(upscaled)
	}
	return globalThreshold(upscaled, cfg.Threshold)
}

// toGrayInverted applies the white-on-blue-tuned weighted grayscale
// conversion and inverts pixels where blue clearly dominates, so pale
// text on a dark blue textbox comes out dark-on-light like printed
// text.
func toGrayInverted(f *frame.Frame) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, f.Width, f.Height))
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			r, g, b := f.At(x, y)
			gray := 0.2*float64(r) + 0.3*float64(g) + 0.5*float64(b)
			if b > r && b > g && b > 100 {
				gray = 255 - gray
			}
			if gray < 0 {
				gray = 0
			}
			if gray > 255 {
				gray = 255
			}
			img.SetGray(x, y, color.Gray{Y: byte(gray)})
		}
	}
	return img
}

// nearestNeighborUpscale scales img by an integer factor, preserving
// the hard pixel-font edges bicubic/bilinear filtering would blur.
func nearestNeighborUpscale(img *image.Gray, factor int) *image.Gray {
	b := img.Bounds()
	w, h := b.Dx()*factor, b.Dy()*factor
	out := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		sy := b.Min.Y + y/factor
		for x := 0; x < w; x++ {
			sx := b.Min.X + x/factor
			out.SetGray(x, y, img.GrayAt(sx, sy))
		}
	}
	return out
}

// globalThreshold is the default: a single cutoff applied uniformly.
func globalThreshold(img *image.Gray, threshold int) *image.Gray {
	b := img.Bounds()
	out := image.NewGray(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			v := img.GrayAt(x, y).Y
			if int(v) >= threshold {
				out.SetGray(x, y, color.Gray{Y: 255})
			} else {
				out.SetGray(x, y, color.Gray{Y: 0})
			}
		}
	}
	return out
}

// adaptiveThreshold is the allowed alternative: threshold each pixel
// against the mean of a local window rather than a single global
// cutoff, better tolerating uneven lighting across the textbox.
func adaptiveThreshold(img *image.Gray) *image.Gray {
	const window = 15
	const c = 7
	b := img.Bounds()
	out := image.NewGray(b)
	half := window / 2

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			sum, n := 0, 0
			for wy := y - half; wy <= y+half; wy++ {
				if wy < b.Min.Y || wy >= b.Max.Y {
					continue
				}
				for wx := x - half; wx <= x+half; wx++ {
					if wx < b.Min.X || wx >= b.Max.X {
						continue
					}
					sum += int(img.GrayAt(wx, wy).Y)
					n++
				}
			}
			mean := 128
			if n > 0 {
				mean = sum / n
			}
			v := int(img.GrayAt(x, y).Y)
			if v >= mean-c {
				out.SetGray(x, y, color.Gray{Y: 255})
			} else {
				out.SetGray(x, y, color.Gray{Y: 0})
			}
		}
	}
	return out
}
