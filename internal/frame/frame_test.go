package frame

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromRGBA_DropsAlpha(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2, 2))
	src.Pix = []byte{
		10, 20, 30, 255, 40, 50, 60, 255,
		70, 80, 90, 0, 100, 110, 120, 128,
	}
	f := FromRGBA(src)
	require.Equal(t, 2, f.Width)
	require.Equal(t, 2, f.Height)

	r, g, b := f.At(1, 1)
	assert.Equal(t, byte(100), r)
	assert.Equal(t, byte(110), g)
	assert.Equal(t, byte(120), b)
}

func TestCrop_ClampsToBounds(t *testing.T) {
	f := solidFrame(10, 10, 1, 2, 3)
	cropped := f.Crop(image.Rect(5, 5, 20, 20))
	assert.Equal(t, 5, cropped.Width)
	assert.Equal(t, 5, cropped.Height)

	r, g, b := cropped.At(0, 0)
	assert.Equal(t, byte(1), r)
	assert.Equal(t, byte(2), g)
	assert.Equal(t, byte(3), b)
}

func TestCrop_EmptyWhenFullyOutside(t *testing.T) {
	f := solidFrame(4, 4, 0, 0, 0)
	cropped := f.Crop(image.Rect(10, 10, 20, 20))
	assert.Equal(t, 0, cropped.Width)
}
