package ocr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dialogwatch/internal/frame"
)

func solidFrame(w, h int, r, g, b byte) *frame.Frame {
	pix := make([]byte, w*h*3)
	for i := 0; i < len(pix); i += 3 {
		pix[i], pix[i+1], pix[i+2] = r, g, b
	}
	return &frame.Frame{Width: w, Height: h, Pix: pix}
}

func TestPreprocess_UpscalesByFactor(t *testing.T) {
	f := solidFrame(10, 5, 0, 0, 0)
	out := Preprocess(f, PreprocessConfig{Upscale: 3, Threshold: 128})
	require.Equal(t, 30, out.Bounds().Dx())
	require.Equal(t, 15, out.Bounds().Dy())
}

func TestPreprocess_ClampsUpscaleRange(t *testing.T) {
	f := solidFrame(4, 4, 0, 0, 0)
	tooLow := Preprocess(f, PreprocessConfig{Upscale: 0, Threshold: 128})
	assert.Equal(t, 8, tooLow.Bounds().Dx())

	tooHigh := Preprocess(f, PreprocessConfig{Upscale: 20, Threshold: 128})
	assert.Equal(t, 24, tooHigh.Bounds().Dx())
}

func TestToGrayInverted_InvertsBlueDominant(t *testing.T) {
	f := solidFrame(1, 1, 10, 10, 200) // strongly blue
	gray := toGrayInverted(f)
	// un-inverted weighted sum would be 0.2*10+0.3*10+0.5*200 = 105;
	// blue-dominant branch inverts it to 255-105 = 150.
	assert.Equal(t, byte(150), gray.GrayAt(0, 0).Y)
}

func TestToGrayInverted_NoInversionWhenRedDominant(t *testing.T) {
	f := solidFrame(1, 1, 200, 10, 10)
	gray := toGrayInverted(f)
	assert.Equal(t, byte(0.2*200+0.3*10+0.5*10), gray.GrayAt(0, 0).Y)
}

func TestGlobalThreshold_Binarizes(t *testing.T) {
	f := solidFrame(2, 1, 200, 200, 200)
	gray := toGrayInverted(f)
	out := globalThreshold(gray, 128)
	assert.Equal(t, byte(255), out.GrayAt(0, 0).Y)
	assert.Equal(t, byte(255), out.GrayAt(1, 0).Y)
}

func TestNearestNeighborUpscale_PreservesHardEdges(t *testing.T) {
	f := solidFrame(2, 1, 0, 0, 0)
	gray := toGrayInverted(f)
	up := nearestNeighborUpscale(gray, 4)
	require.Equal(t, 8, up.Bounds().Dx())
	// every pixel in the first source column's block matches the source pixel
	for x := 0; x < 4; x++ {
		assert.Equal(t, gray.GrayAt(0, 0).Y, up.GrayAt(x, 0).Y)
	}
}
