package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"dialogwatch/internal/config"
	"dialogwatch/internal/control"
	"dialogwatch/internal/dialogue"
	"dialogwatch/internal/frame"
	"dialogwatch/internal/logx"
	"dialogwatch/internal/observe"
	"dialogwatch/internal/ocr"
	"dialogwatch/internal/pipeline"
	"dialogwatch/internal/playback"
	"dialogwatch/internal/speaker"
	"dialogwatch/internal/text"
	"dialogwatch/internal/textbox"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			log.Fatalf("PANIC: %v", r)
		}
	}()

	cfg := config.Load()

	logger := logx.New(os.Stderr, cfg.LogJSON, cfg.LogLevel)
	defer logger.Close()

	if err := os.MkdirAll(filepath.Dir(cfg.DialoguePath), 0o755); err != nil && cfg.DialoguePath != "" {
		log.Fatalf("failed to create dialogue catalog directory: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(cfg.SpeakerPath), 0o755); err != nil && cfg.SpeakerPath != "" {
		log.Fatalf("failed to create speaker catalog directory: %v", err)
	}

	speakers, err := speaker.NewCatalog(cfg.SpeakerPath, logger)
	if err != nil {
		log.Fatalf("failed to initialize speaker catalog: %v", err)
	}
	matcher := speaker.NewMatcher(speakers, "npc")

	dialogues, err := dialogue.NewCatalog(cfg.DialoguePath, pipeline.ResolveSpeaker(matcher), logger)
	if err != nil {
		log.Fatalf("failed to initialize dialogue catalog: %v", err)
	}

	source := frame.NewSource(cfg.WindowTitles, func(usingDesktop bool) {
		if usingDesktop {
			logger.Warn(logx.EventError, "target window not found; falling back to full desktop capture")
		} else {
			logger.Info(logx.EventFrameCaptured, "target window located")
		}
	})

	gate := frame.NewStabilityGate(cfg.SimilarityStride, cfg.SimilarityTol, cfg.SimilarityCutoff, cfg.StabilityDelay)

	detectorCfg := textbox.DefaultConfig()
	detectorCfg.CacheTTL = cfg.TextboxCacheTTL
	detectorCfg.TemplateThreshold = cfg.TextboxTemplateThr
	detectorCfg.ColorTolerance = cfg.TextboxColorTol
	detector := textbox.NewComposite(detectorCfg)

	deduper := textbox.NewDeduper()

	engine := ocr.NewBounded(ocr.NewTesseractEngine(), cfg.OCRConcurrency, cfg.OCRTimeout)
	defer engine.Close()

	textCfg := text.DefaultConfig()
	textCfg.Quality.MinLen = cfg.QualityMinLen
	textCfg.Quality.MaxLen = cfg.QualityMaxLen
	textCfg.Quality.MinLetterFraction = cfg.QualityMinLetterFrac
	normalizer := text.NewNormalizer(textCfg)

	hub := observe.NewHub()
	player, err := playback.New(logger)
	if err != nil {
		logger.Warn(logx.EventError, "audio playback unavailable", "err", err.Error())
		player = nil
	}
	if player != nil {
		defer player.Close()
	}

	driver := pipeline.New(pipeline.Config{
		Source:     source,
		Gate:       gate,
		Detector:   detector,
		Deduper:    deduper,
		Engine:     engine,
		Preprocess: ocr.PreprocessConfig{Upscale: cfg.OCRUpscale, Threshold: cfg.OCRThreshold},
		OCRLang:    cfg.OCRLanguage,
		Normalizer: normalizer,
		Matcher:    matcher,
		Catalog:    dialogues,
		Log:        logger,

		TickInterval: cfg.TickInterval,
	})
	driver.OnDialogueDetected = func(e dialogue.Entry, p speaker.Profile) {
		hub.PublishDialogue(e.Speaker, e.Text, e.SeenCount)
		if player != nil && e.HasAudio {
			player.PlayAsync(e.AudioPath)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())

	controlSrv := control.New(cfg.ControlAddr, driver, cancel, logger)
	go func() {
		if err := controlSrv.Serve(); err != nil {
			logger.Warn(logx.EventError, "control listener stopped", "err", err.Error())
		}
	}()

	go func() {
		mux := http.NewServeMux()
		mux.Handle("/events", hub)
		if err := http.ListenAndServe(cfg.ObserveAddr, mux); err != nil {
			logger.Warn(logx.EventError, "observe listener stopped", "err", err.Error())
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		cancel()
	}()

	log.Println("dialogwatch running")
	driver.Run(ctx)

	if err := dialogues.Save(); err != nil {
		logger.Error(logx.EventError, "final dialogue catalog save failed", "err", err.Error())
	}
	if err := speakers.Save(); err != nil {
		logger.Error(logx.EventError, "final speaker catalog save failed", "err", err.Error())
	}
}
