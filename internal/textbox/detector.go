package textbox

import (
	"time"

	"dialogwatch/internal/frame"
)

// rgb is a small per-channel color triple used for border palettes and
// corner templates.
type rgb struct{ r, g, b int }

// Detector is the capability set the Pipeline Driver depends on: locate
// the dialogue rectangle in a frame, or report none found. Composite is
// the only implementation; its cached-region warm path and its
// template-corner and color-scan cold paths are internal to it, not
// separate Detector types.
type Detector interface {
	Detect(f *frame.Frame) (Rect, bool)
}

// Config tunes the detector's warm-path cache and cold-path scans.
type Config struct {
	CacheTTL           time.Duration
	TemplateThreshold  float64
	ColorTolerance     int
	BorderPalette      []rgb
	NominalWidth       int
	NominalHeight      int
	ColorScanStartFrac float64
	ColorScanStride    int
	ColorScanMinRun    int
}

// DefaultConfig returns the spec's documented defaults plus a small
// built-in border-color palette standing in for the title's actual
// dialogue-box art (configurable per game pack in a real deployment).
func DefaultConfig() Config {
	return Config{
		CacheTTL:          5 * time.Second,
		TemplateThreshold: 0.70,
		ColorTolerance:    50,
		BorderPalette: []rgb{
			{20, 24, 82},
			{32, 40, 120},
			{48, 56, 150},
		},
		NominalWidth:       1200,
		NominalHeight:      260,
		ColorScanStartFrac: 0.60,
		ColorScanStride:    10,
		ColorScanMinRun:    40,
	}
}

type cacheEntry struct {
	rect Rect
	at   time.Time
}

// Composite is the detector the driver uses: a cached-region warm path
// backed by template-match and color-scan cold paths.
type Composite struct {
	cfg   Config
	cache *cacheEntry
	now   func() time.Time

	// OnLost is invoked exactly once per warm→cold transition failure,
	// matching the spec's "log on state change only" policy.
	OnLost func()
}

// NewComposite builds the detector the driver wires in.
func NewComposite(cfg Config) *Composite {
	return &Composite{cfg: cfg, now: time.Now}
}

func (c *Composite) Detect(f *frame.Frame) (Rect, bool) {
	now := c.now()

	if c.cache != nil && now.Sub(c.cache.at) < c.cfg.CacheTTL {
		if revalidateBorder(f, c.cache.rect, c.cfg.BorderPalette, c.cfg.ColorTolerance) {
			return c.cache.rect, true
		}
		c.cache = nil
		if c.OnLost != nil {
			c.OnLost()
		}
	}

	if r, ok := templateMatch(f, c.cfg); ok {
		r = clamp(r, f.Bounds())
		c.cache = &cacheEntry{rect: r, at: now}
		return r, true
	}

	if r, ok := colorScan(f, c.cfg); ok {
		r = clamp(r, f.Bounds())
		c.cache = &cacheEntry{rect: r, at: now}
		return r, true
	}

	if now.Sub(zeroIfNil(c.cache)) >= c.cfg.CacheTTL {
		c.cache = nil
	}
	return Rect{}, false
}

func zeroIfNil(c *cacheEntry) time.Time {
	if c == nil {
		return time.Time{}
	}
	return c.at
}

// revalidateBorder samples the rectangle's top border for a minimum
// count of pixels matching the target border palette within tolerance.
func revalidateBorder(f *frame.Frame, r Rect, palette []rgb, tolerance int) bool {
	if !r.Inside(f.Bounds()) || r.W <= 0 {
		return false
	}
	matches, sampled := 0, 0
	for x := r.X; x < r.X+r.W; x += 3 {
		sampled++
		rr, gg, bb := f.At(x, r.Y)
		if matchesPalette(rr, gg, bb, palette, tolerance) {
			matches++
		}
	}
	if sampled == 0 {
		return false
	}
	return matches*100 >= sampled*50
}

func matchesPalette(r, g, b byte, palette []rgb, tolerance int) bool {
	for _, c := range palette {
		if absi(int(r)-c.r) <= tolerance && absi(int(g)-c.g) <= tolerance && absi(int(b)-c.b) <= tolerance {
			return true
		}
	}
	return false
}

func absi(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
