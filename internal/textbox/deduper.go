package textbox

import "dialogwatch/internal/frame"

const dimTolX = 5
const dimTolY = 5
const dimTolW = 10
const dimTolH = 10

// Deduper rejects textbox snapshots whose cropped content matches the
// last one forwarded to OCR. It is owned by the driver goroutine.
type Deduper struct {
	have   bool
	lastFP uint64
	lastR  Rect

	// OnForward resets the Stability Gate to Unstable whenever a
	// snapshot is forwarded, per the spec's explicit hoist of that
	// reset out of the gate and into this stage.
	OnForward func()
}

// NewDeduper constructs an empty deduper; the first snapshot it sees is
// always forwarded.
func NewDeduper() *Deduper {
	return &Deduper{}
}

// Snapshot crops f at r and computes its fingerprint.
func Snapshot(f *frame.Frame, r Rect) Snapshot {
	crop := f.Crop(r.ToImageRect())
	return Snapshot{Rect: r, Crop: crop, Fingerprint: fingerprint(crop)}
}

// ShouldForward reports whether s differs enough from the last
// forwarded snapshot to warrant OCR, and records s as the new baseline
// when it does.
func (d *Deduper) ShouldForward(s Snapshot) bool {
	if !d.have {
		d.record(s)
		return true
	}

	dimsDiffer := absi(s.Rect.X-d.lastR.X) > dimTolX || absi(s.Rect.Y-d.lastR.Y) > dimTolY ||
		absi(s.Rect.W-d.lastR.W) > dimTolW || absi(s.Rect.H-d.lastR.H) > dimTolH

	if s.Fingerprint == d.lastFP && !dimsDiffer {
		return false
	}

	d.record(s)
	return true
}

func (d *Deduper) record(s Snapshot) {
	d.have = true
	d.lastFP = s.Fingerprint
	d.lastR = s.Rect
	if d.OnForward != nil {
		d.OnForward()
	}
}

// fingerprint folds (width, height) with the ARGB of seven sample
// points in the middle 60%x60% of the crop (its centre, its four
// corners, and the midpoints of its left and right edges) — a cheap
// hash used only to decide whether to re-run OCR, never for identity.
func fingerprint(f *frame.Frame) uint64 {
	if f.Width == 0 || f.Height == 0 {
		return 0
	}
	cx0 := f.Width * 2 / 10
	cx1 := f.Width * 8 / 10
	cy0 := f.Height * 2 / 10
	cy1 := f.Height * 8 / 10
	cx := (cx0 + cx1) / 2
	cy := (cy0 + cy1) / 2

	points := [7][2]int{
		{cx, cy},
		{cx0, cy0}, {cx1, cy0},
		{cx0, cy1}, {cx1, cy1},
		{cx0, cy}, {cx1, cy},
	}

	const fnvOffset = 14695981039346656037
	const fnvPrime = 1099511628211

	h := uint64(fnvOffset)
	h = (h ^ uint64(f.Width)) * fnvPrime
	h = (h ^ uint64(f.Height)) * fnvPrime
	for _, p := range points {
		x, y := clampCoord(p[0], f.Width), clampCoord(p[1], f.Height)
		r, g, b := f.At(x, y)
		argb := uint64(0xFF)<<24 | uint64(r)<<16 | uint64(g)<<8 | uint64(b)
		h = (h ^ argb) * fnvPrime
	}
	return h
}

func clampCoord(v, limit int) int {
	if limit <= 0 {
		return 0
	}
	if v < 0 {
		return 0
	}
	if v >= limit {
		return limit - 1
	}
	return v
}
