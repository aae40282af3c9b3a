// watchprobe runs a single capture-detect-OCR pass and prints what
// each stage saw, for diagnosing a game pack's textbox detector
// tuning without running the full pipeline.
package main

import (
	"fmt"
	"log"
	"os"

	"dialogwatch/internal/config"
	"dialogwatch/internal/frame"
	"dialogwatch/internal/ocr"
	"dialogwatch/internal/text"
	"dialogwatch/internal/textbox"
)

func main() {
	cfg := config.Load()

	source := frame.NewSource(cfg.WindowTitles, func(usingDesktop bool) {
		if usingDesktop {
			log.Println("target window not found; probing the full desktop instead")
		}
	})

	f, err := source.Capture()
	if err != nil {
		log.Fatalf("capture failed: %v", err)
	}
	fmt.Printf("captured frame: %dx%d\n", f.Width, f.Height)

	detectorCfg := textbox.DefaultConfig()
	detectorCfg.CacheTTL = cfg.TextboxCacheTTL
	detectorCfg.TemplateThreshold = cfg.TextboxTemplateThr
	detectorCfg.ColorTolerance = cfg.TextboxColorTol
	detector := textbox.NewComposite(detectorCfg)

	rect, ok := detector.Detect(f)
	if !ok {
		fmt.Println("no textbox detected in this frame")
		os.Exit(0)
	}
	fmt.Printf("textbox rect: x=%d y=%d w=%d h=%d\n", rect.X, rect.Y, rect.W, rect.H)

	snap := textbox.Snapshot(f, rect)
	preprocessed := ocr.Preprocess(snap.Crop, ocr.PreprocessConfig{
		Upscale:   cfg.OCRUpscale,
		Threshold: cfg.OCRThreshold,
	})

	engine := ocr.NewBounded(ocr.NewTesseractEngine(), cfg.OCRConcurrency, cfg.OCRTimeout)
	defer engine.Close()

	raw, err := engine.Recognize(preprocessed, cfg.OCRLanguage)
	if err != nil {
		log.Fatalf("ocr failed: %v", err)
	}
	fmt.Printf("raw ocr text: %q\n", raw)

	textCfg := text.DefaultConfig()
	textCfg.Quality.MinLen = cfg.QualityMinLen
	textCfg.Quality.MaxLen = cfg.QualityMaxLen
	textCfg.Quality.MinLetterFraction = cfg.QualityMinLetterFrac
	normalizer := text.NewNormalizer(textCfg)
	clean, accepted := normalizer.Normalize(raw)
	if !accepted {
		fmt.Println("quality filter rejected this text")
		return
	}
	fmt.Printf("normalized text: %q\n", clean)
}
