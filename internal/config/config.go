package config

import (
	"flag"
	"runtime"
	"strings"
	"time"
)

// Config holds every recognized option from the tuning surface. All
// fields are immutable after Load returns; only the Pipeline Driver
// holds further runtime state.
type Config struct {
	TickInterval     time.Duration
	StabilityDelay   time.Duration
	SimilarityStride int
	SimilarityTol    int
	SimilarityCutoff int

	TextboxCacheTTL    time.Duration
	TextboxTemplateThr float64
	TextboxColorTol    int

	OCRUpscale     int
	OCRThreshold   int
	OCRTimeout     time.Duration
	OCRConcurrency int
	OCRLanguage    string

	QualityMinLen        int
	QualityMaxLen        int
	QualityMinLetterFrac float64

	WindowTitles []string
	DialoguePath string
	SpeakerPath  string

	CaptureTimeout time.Duration

	ControlAddr string
	ObserveAddr string
	LogJSON     bool
	LogLevel    string
}

// Load parses command-line flags and returns the resolved configuration.
func Load() *Config {
	tick := flag.Int("tick-interval-ms", 67, "pipeline tick interval in milliseconds")
	stability := flag.Int("stability-delay-ms", 300, "minimum stable dwell before a frame is emitted")
	stride := flag.Int("frame-similarity-stride", 750, "byte stride used when sampling frames for similarity")
	tol := flag.Int("similarity-tolerance", 10, "per-channel tolerance for the similarity test")
	cutoff := flag.Int("similarity-cutoff-pct", 5, "percentage of differing sampled pixels at or above which frames count as changed")

	cacheTTL := flag.Int("textbox-cache-ttl-ms", 5000, "validity window for the cached textbox rectangle")
	templateThr := flag.Float64("textbox-template-threshold", 0.70, "minimum corner template match score")
	colorTol := flag.Int("textbox-color-tolerance", 50, "per-channel tolerance for the color-scan fallback")

	upscale := flag.Int("ocr-upscale", 3, "integer upscale factor applied before OCR (2-6)")
	threshold := flag.Int("ocr-threshold", 128, "global threshold applied before OCR (0-255)")
	ocrTimeout := flag.Int("ocr-timeout-ms", 2000, "timeout for a single OCR call")
	ocrConcurrency := flag.Int("ocr-concurrency", 1, "maximum concurrent OCR calls")
	ocrLang := flag.String("ocr-language", "eng", "language hint passed to the OCR engine")

	minLen := flag.Int("quality-min-len", 3, "minimum accepted text length after whitespace compaction")
	maxLen := flag.Int("quality-max-len", 500, "maximum accepted text length after whitespace compaction")
	minLetterFrac := flag.Float64("quality-min-letter-fraction", 0.40, "minimum fraction of letters required to accept a string")

	windowTitles := flag.String("window-titles", "", "comma-separated ordered list of window title substrings to match")
	dialoguePath := flag.String("dialogue-catalog-path", "data/dialogue_catalog.json", "path to the dialogue catalog JSON file")
	speakerPath := flag.String("speaker-catalog-path", "data/speaker_catalog.json", "path to the speaker catalog JSON file")

	captureTimeout := flag.Int("capture-timeout-ms", 50, "frame capture timeout; stored in Config.CaptureTimeout, which the frame source does not apply (captures run to completion)")

	controlAddr := flag.String("control-addr", defaultControlAddress(), "control-plane listen address (unix socket path or npipe name)")
	observeAddr := flag.String("observe-addr", ":8089", "address the observability websocket listens on")
	logJSON := flag.Bool("log-json", false, "emit structured logs as JSON instead of the human-readable text formatter")
	logLevel := flag.String("log-level", "info", "minimum log level: debug, info, warning, error")

	flag.Parse()

	var titles []string
	for _, t := range strings.Split(*windowTitles, ",") {
		t = strings.TrimSpace(t)
		if t != "" {
			titles = append(titles, t)
		}
	}

	return &Config{
		TickInterval:     time.Duration(*tick) * time.Millisecond,
		StabilityDelay:   time.Duration(*stability) * time.Millisecond,
		SimilarityStride: *stride,
		SimilarityTol:    *tol,
		SimilarityCutoff: *cutoff,

		TextboxCacheTTL:    time.Duration(*cacheTTL) * time.Millisecond,
		TextboxTemplateThr: *templateThr,
		TextboxColorTol:    *colorTol,

		OCRUpscale:     *upscale,
		OCRThreshold:   *threshold,
		OCRTimeout:     time.Duration(*ocrTimeout) * time.Millisecond,
		OCRConcurrency: *ocrConcurrency,
		OCRLanguage:    *ocrLang,

		QualityMinLen:        *minLen,
		QualityMaxLen:        *maxLen,
		QualityMinLetterFrac: *minLetterFrac,

		WindowTitles: titles,
		DialoguePath: *dialoguePath,
		SpeakerPath:  *speakerPath,

		CaptureTimeout: time.Duration(*captureTimeout) * time.Millisecond,

		ControlAddr: *controlAddr,
		ObserveAddr: *observeAddr,
		LogJSON:     *logJSON,
		LogLevel:    *logLevel,
	}
}

func defaultControlAddress() string {
	if runtime.GOOS == "windows" {
		return `\\.\pipe\dialogwatch-control`
	}
	return "/tmp/dialogwatch-control.sock"
}
