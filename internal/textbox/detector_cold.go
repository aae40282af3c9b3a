package textbox

import "dialogwatch/internal/frame"

const cornerTemplateSize = 12

// templateMatch implements the cold-path's first attempt: look for a
// top-left corner (border pixels along the top row and left column of
// a small patch, non-border pixels filling the interior) and, once
// found, search a bounded neighborhood for the matching top-right
// corner before synthesizing the full rectangle.
func templateMatch(f *frame.Frame, cfg Config) (Rect, bool) {
	b := f.Bounds()
	startY := int(float64(b.Dy()) * cfg.ColorScanStartFrac)

	tlx, tly, bestScore, found := 0, 0, 0.0, false
	for y := startY; y < b.Dy()-cornerTemplateSize; y += cfg.ColorScanStride {
		for x := 0; x < b.Dx()-cornerTemplateSize; x += cfg.ColorScanStride {
			score := cornerScore(f, x, y, cfg, topLeftCorner)
			if score >= cfg.TemplateThreshold && score > bestScore {
				tlx, tly, bestScore, found = x, y, score, true
			}
		}
	}
	if !found {
		return Rect{}, false
	}

	maxSearch := tlx + cfg.NominalWidth + cornerTemplateSize
	if maxSearch > b.Dx()-cornerTemplateSize {
		maxSearch = b.Dx() - cornerTemplateSize
	}
	minSearch := tlx + cfg.NominalWidth - cornerTemplateSize
	if minSearch < tlx {
		minSearch = tlx
	}

	trx, trBest, trFound := 0, 0.0, false
	for x := minSearch; x <= maxSearch; x += cfg.ColorScanStride {
		score := cornerScore(f, x, tly, cfg, topRightCorner)
		if score >= cfg.TemplateThreshold && score > trBest {
			trx, trBest, trFound = x, score, true
		}
	}
	if !trFound {
		return Rect{}, false
	}

	w := trx + cornerTemplateSize - tlx
	return Rect{X: tlx, Y: tly, W: w, H: cfg.NominalHeight}, true
}

type cornerKind int

const (
	topLeftCorner cornerKind = iota
	topRightCorner
)

// cornerScore compares the border-row/border-column cells of a
// cornerTemplateSize x cornerTemplateSize patch starting at (x, y)
// against the known border palette and returns the fraction of those
// border cells that actually matched. Interior cells are not scored:
// requiring only "not border-colored" there would be satisfied by
// nearly any background and defeats the match.
func cornerScore(f *frame.Frame, x, y int, cfg Config, kind cornerKind) float64 {
	matches, total := 0, 0
	for dy := 0; dy < cornerTemplateSize; dy++ {
		for dx := 0; dx < cornerTemplateSize; dx++ {
			onBorder := dy == 0
			switch kind {
			case topLeftCorner:
				onBorder = onBorder || dx == 0
			case topRightCorner:
				onBorder = onBorder || dx == cornerTemplateSize-1
			}
			if !onBorder {
				continue
			}
			total++
			r, g, b := f.At(x+dx, y+dy)
			if matchesPalette(r, g, b, cfg.BorderPalette, 40) {
				matches++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(matches) / float64(total)
}

// colorScan is the cold path's fallback: scan horizontal rows in the
// lower portion of the frame looking for a long run of border-colored
// pixels, and infer a rectangle from the first/last matching columns.
func colorScan(f *frame.Frame, cfg Config) (Rect, bool) {
	b := f.Bounds()
	startY := int(float64(b.Dy()) * cfg.ColorScanStartFrac)

	for y := startY; y < b.Dy(); y += cfg.ColorScanStride {
		firstX, lastX, run, bestRun := -1, -1, 0, 0
		bestFirst, bestLast := -1, -1
		for x := 0; x < b.Dx(); x++ {
			r, g, bl := f.At(x, y)
			if matchesPalette(r, g, bl, cfg.BorderPalette, cfg.ColorTolerance) {
				if firstX == -1 {
					firstX = x
				}
				lastX = x
				run++
				if run > bestRun {
					bestRun, bestFirst, bestLast = run, firstX, lastX
				}
			} else {
				firstX, run = -1, 0
			}
		}
		if bestRun >= cfg.ColorScanMinRun {
			return Rect{X: bestFirst, Y: y, W: bestLast - bestFirst + 1, H: cfg.NominalHeight}, true
		}
	}
	return Rect{}, false
}
