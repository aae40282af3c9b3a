package textbox

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"dialogwatch/internal/frame"
)

// paintBorderRun draws a horizontal run of border-colored pixels on
// row y from x0 to x1, simulating a dialogue box's bottom border.
func paintBorderRun(f *frame.Frame, y, x0, x1 int, c rgb) {
	for x := x0; x <= x1; x++ {
		i := (y*f.Width + x) * 3
		f.Pix[i] = byte(c.r)
		f.Pix[i+1] = byte(c.g)
		f.Pix[i+2] = byte(c.b)
	}
}

func TestColorScan_FindsPaintedRun(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NominalHeight = 50
	f := solidFrame(400, 300, 0, 0, 0)
	row := int(float64(300) * cfg.ColorScanStartFrac)
	paintBorderRun(f, row, 20, 320, cfg.BorderPalette[0])

	r, ok := colorScan(f, cfg)
	require.True(t, ok)
	assert.Equal(t, row, r.Y)
	assert.True(t, r.W >= cfg.ColorScanMinRun)
}

func TestColorScan_NoRunReturnsFalse(t *testing.T) {
	cfg := DefaultConfig()
	f := solidFrame(400, 300, 0, 0, 0)
	_, ok := colorScan(f, cfg)
	assert.False(t, ok)
}

func TestComposite_WarmPathSkipsColdScanWhenValid(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CacheTTL = time.Second
	cfg.NominalHeight = 40
	c := NewComposite(cfg)

	f := solidFrame(300, 300, 0, 0, 0)
	cached := Rect{X: 10, Y: 10, W: 100, H: 40}
	paintBorderRun(f, cached.Y, cached.X, cached.X+cached.W-1, cfg.BorderPalette[0])

	c.cache = &cacheEntry{rect: cached, at: time.Now()}
	r, ok := c.Detect(f)
	require.True(t, ok)
	assert.Equal(t, cached, r)
}

func TestComposite_WarmPathInvalidatesOnRevalidationFailure(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CacheTTL = time.Second
	c := NewComposite(cfg)

	lostCalls := 0
	c.OnLost = func() { lostCalls++ }

	f := solidFrame(300, 300, 0, 0, 0) // no border pixels anywhere
	cached := Rect{X: 10, Y: 10, W: 100, H: 40}
	c.cache = &cacheEntry{rect: cached, at: time.Now()}

	_, ok := c.Detect(f)
	assert.False(t, ok)
	assert.Equal(t, 1, lostCalls)
}

// TestDetect_RectAlwaysInsideBounds is the universal property from the
// spec: any rectangle the detector returns is entirely within frame
// bounds, however the cold-path scans synthesize it.
func TestDetect_RectAlwaysInsideBounds(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		cfg := DefaultConfig()
		cfg.NominalHeight = rapid.IntRange(10, 80).Draw(rt, "nominalHeight")
		w := rapid.IntRange(200, 500).Draw(rt, "w")
		h := rapid.IntRange(200, 500).Draw(rt, "h")
		f := solidFrame(w, h, 0, 0, 0)

		row := int(float64(h) * cfg.ColorScanStartFrac)
		if row < h {
			x0 := rapid.IntRange(0, w/2).Draw(rt, "x0")
			x1 := x0 + rapid.IntRange(cfg.ColorScanMinRun, w/2).Draw(rt, "runlen")
			if x1 >= w {
				x1 = w - 1
			}
			paintBorderRun(f, row, x0, x1, cfg.BorderPalette[0])
		}

		c := NewComposite(cfg)
		r, ok := c.Detect(f)
		if ok {
			assert.True(rt, r.Inside(f.Bounds()))
		}
	})
}
