// Package pipeline runs the fixed-tick driver that chains the frame,
// textbox, OCR, text, and catalog stages together.
package pipeline

import (
	"context"
	"sync"
	"time"

	"dialogwatch/internal/dialogue"
	"dialogwatch/internal/frame"
	"dialogwatch/internal/logx"
	"dialogwatch/internal/ocr"
	"dialogwatch/internal/speaker"
	"dialogwatch/internal/text"
	"dialogwatch/internal/textbox"
)

// slowTickThreshold is the spec's boundary for a performance_slow
// event: the synchronous portion of a tick (capture through dedup)
// SHOULD complete in under 60ms; a tick over 100ms is reported.
const slowTickThreshold = 100 * time.Millisecond

// frameSource is the capability the driver needs from the Frame
// Source stage. *frame.Source is the only production implementation;
// tests substitute a fake that skips real screen capture.
type frameSource interface {
	Capture() (*frame.Frame, error)
}

// Driver owns every piece of state the pipeline needs between ticks:
// the Stability Gate, the detector's cache, and the deduper's last
// fingerprint. None of it is shared outside the driver goroutine
// except the two catalogs, which guard themselves.
type Driver struct {
	source     frameSource
	gate       *frame.StabilityGate
	detector   textbox.Detector
	deduper    *textbox.Deduper
	engine     ocr.Engine
	preproc    ocr.PreprocessConfig
	ocrLang    string
	normalizer *text.Normalizer
	matcher    *speaker.Matcher
	catalog    *dialogue.Catalog
	log        *logx.Logger

	tickInterval time.Duration

	// OnDialogueDetected fires after a new or updated entry is
	// produced, per the spec's step 7. It runs on the OCR worker
	// goroutine, not the ticker goroutine.
	OnDialogueDetected func(dialogue.Entry, speaker.Profile)

	stats *latencyStats

	capWasAvailable bool
	haveTextbox     bool
}

// Config bundles everything the driver needs to wire its stages.
type Config struct {
	Source     frameSource
	Gate       *frame.StabilityGate
	Detector   textbox.Detector
	Deduper    *textbox.Deduper
	Engine     ocr.Engine
	Preprocess ocr.PreprocessConfig
	OCRLang    string
	Normalizer *text.Normalizer
	Matcher    *speaker.Matcher
	Catalog    *dialogue.Catalog
	Log        *logx.Logger

	TickInterval time.Duration
}

// New builds a Driver from cfg and wires the detector's lost-textbox
// callback and the deduper's stability-reset callback to the gate, per
// the spec's §4.4 hoist of that reset out of the Stability Gate.
func New(cfg Config) *Driver {
	d := &Driver{
		source:       cfg.Source,
		gate:         cfg.Gate,
		detector:     cfg.Detector,
		deduper:      cfg.Deduper,
		engine:       cfg.Engine,
		preproc:      cfg.Preprocess,
		ocrLang:      cfg.OCRLang,
		normalizer:   cfg.Normalizer,
		matcher:      cfg.Matcher,
		catalog:      cfg.Catalog,
		log:          cfg.Log,
		tickInterval: cfg.TickInterval,
		stats:        newLatencyStats(64),
		haveTextbox:  true,
	}
	if c, ok := d.detector.(*textbox.Composite); ok {
		c.OnLost = d.onTextboxLost
	}
	d.deduper.OnForward = d.gate.Reset
	return d
}

// Run drives the pipeline at the configured tick until ctx is
// canceled. A missed tick (the previous one still running) is never
// possible here since each tick's synchronous portion runs to
// completion before the next fires; only OCR work is backgrounded.
func (d *Driver) Run(ctx context.Context) {
	ticker := time.NewTicker(d.tickInterval)
	defer ticker.Stop()

	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.tick(&wg)
		}
	}
}

func (d *Driver) tick(wg *sync.WaitGroup) {
	defer func() {
		if r := recover(); r != nil && d.log != nil {
			d.log.Error(logx.EventError, "pipeline stage panicked; tick dropped", "panic", r)
		}
	}()

	start := time.Now()
	defer func() {
		elapsed := time.Since(start)
		d.stats.record(elapsed)
		if elapsed > slowTickThreshold && d.log != nil {
			d.log.Warn(logx.EventPerformanceSlow, "tick exceeded performance budget", "elapsed_ms", elapsed.Milliseconds())
		}
	}()

	f, err := d.source.Capture()
	if err != nil {
		d.logCaptureUnavailable()
		return
	}
	d.capWasAvailable = true

	now := time.Now()
	emit, stable := d.gate.Feed(f, now)
	if !emit {
		return
	}

	rect, ok := d.detector.Detect(stable)
	if !ok {
		return
	}
	d.haveTextbox = true

	snap := textbox.Snapshot(stable, rect)
	if !d.deduper.ShouldForward(snap) {
		return
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer func() {
			if r := recover(); r != nil && d.log != nil {
				d.log.Error(logx.EventError, "ocr worker panicked", "panic", r)
			}
		}()
		d.processOCR(snap)
	}()
}

func (d *Driver) processOCR(snap textbox.Snapshot) {
	img := ocr.Preprocess(snap.Crop, d.preproc)
	raw, err := d.engine.Recognize(img, d.ocrLang)
	if err != nil {
		if d.log != nil {
			d.log.Warn(logx.EventDialogueRejected, "ocr call failed or timed out", "err", err.Error())
		}
		return
	}
	if d.log != nil {
		d.log.Debug(logx.EventOCRRaw, "ocr raw output", "text", raw)
	}

	clean, ok := d.normalizer.Normalize(raw)
	if !ok {
		if d.log != nil {
			d.log.Debug(logx.EventDialogueRejected, "quality filter rejected ocr output", "raw", raw)
		}
		return
	}
	if d.log != nil {
		d.log.Debug(logx.EventOCRCleaned, "normalized dialogue text", "text", clean)
	}

	before, existed := d.catalog.GetByText(clean)
	entry := d.catalog.AddOrUpdate(clean, raw)

	profile, _ := d.speakerOf(entry.Speaker)

	if d.log != nil {
		if existed && before.SeenCount < entry.SeenCount {
			d.log.Info(logx.EventDialogueUpdated, "dialogue re-observed", "id", entry.ID)
		} else if !existed {
			d.log.Info(logx.EventDialogueAdded, "new dialogue observed", "id", entry.ID, "speaker", entry.Speaker)
		}
	}

	if d.OnDialogueDetected != nil {
		d.OnDialogueDetected(entry, profile)
	}
}

func (d *Driver) speakerOf(name string) (speaker.Profile, bool) {
	// The matcher resolved this name when the entry was first created;
	// look it up by name for the event payload without re-scoring.
	if d.matcher == nil {
		return speaker.Profile{}, false
	}
	return d.matcher.CatalogLookup(name)
}

func (d *Driver) onTextboxLost() {
	if d.haveTextbox && d.log != nil {
		d.log.Info(logx.EventTextboxLost, "textbox no longer detected")
	}
	d.haveTextbox = false
}

func (d *Driver) logCaptureUnavailable() {
	if d.capWasAvailable && d.log != nil {
		d.log.Warn(logx.EventError, "frame capture unavailable")
	}
	d.capWasAvailable = false
}

// Stats returns the rolling tick-duration percentiles, exposed
// read-only for the control-plane stats surface.
func (d *Driver) Stats() (p50, p95 time.Duration) {
	return d.stats.percentiles()
}

// ResolveSpeaker adapts m into a dialogue.SpeakerResolver, for
// installing as the dialogue Catalog's resolver so first-seen
// attribution is routed through the Speaker Matcher.
func ResolveSpeaker(m *speaker.Matcher) dialogue.SpeakerResolver {
	return func(s string) (string, string) {
		p := m.Match(s, speaker.MatchContext{})
		return p.Name, p.TTSVoiceID
	}
}
