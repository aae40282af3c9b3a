package ocr

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"sync"
	"time"

	"github.com/otiai10/gosseract/v2"
)

// Engine is the capability the rest of the pipeline depends on: run
// OCR over a preprocessed binary image and return the raw text. Real
// engines must be cancelable and safe to call from the bounded wrapper
// below; they need not be safe for unsynchronized concurrent use
// themselves.
type Engine interface {
	Recognize(img image.Image, language string) (string, error)
	Close() error
}

// TesseractEngine wraps the gosseract/Tesseract cgo bindings. A single
// *gosseract.Client is not safe for concurrent use, so calls serialize
// on mu; the Bounded wrapper below additionally caps how many
// callers may be waiting on that lock at once.
type TesseractEngine struct {
	mu     sync.Mutex
	client *gosseract.Client
}

// NewTesseractEngine constructs an engine backed by a fresh Tesseract
// client.
func NewTesseractEngine() *TesseractEngine {
	return &TesseractEngine{client: gosseract.NewClient()}
}

func (e *TesseractEngine) Recognize(img image.Image, language string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("ocr: encode preprocessed image: %w", err)
	}

	if language != "" {
		if err := e.client.SetLanguage(language); err != nil {
			return "", fmt.Errorf("ocr: set language %q: %w", language, err)
		}
	}
	if err := e.client.SetImageFromBytes(buf.Bytes()); err != nil {
		return "", fmt.Errorf("ocr: set image: %w", err)
	}

	text, err := e.client.Text()
	if err != nil {
		return "", fmt.Errorf("ocr: recognize: %w", err)
	}
	return text, nil
}

func (e *TesseractEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.client.Close()
}

// Bounded wraps an Engine with a timeout and a semaphore bounding how
// many OCR calls may be in flight at once, matching the spec's "engine
// is single-threaded per instance; concurrency bounded by a semaphore
// (default 1)". The timeout pattern mirrors a goroutine racing
// time.After: if the native call hangs, the goroutine is abandoned but
// the semaphore slot it holds is NOT released, intentionally
// preventing a second call into an already-wedged engine.
type Bounded struct {
	inner   Engine
	timeout time.Duration
	sem     chan struct{}
}

// NewBounded builds a time- and concurrency-bounded wrapper around
// inner. concurrency must be >= 1.
func NewBounded(inner Engine, concurrency int, timeout time.Duration) *Bounded {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Bounded{
		inner:   inner,
		timeout: timeout,
		sem:     make(chan struct{}, concurrency),
	}
}

type recognizeResult struct {
	text string
	err  error
}

// Recognize blocks until a semaphore slot is free, then runs the
// underlying engine with a timeout. On timeout it returns "" and a
// recoverable error without releasing the goroutine running the
// native call; the semaphore slot stays held so a hung engine can
// never exceed its configured concurrency.
func (b *Bounded) Recognize(img image.Image, language string) (string, error) {
	b.sem <- struct{}{}

	ch := make(chan recognizeResult, 1)
	go func() {
		text, err := b.inner.Recognize(img, language)
		ch <- recognizeResult{text: text, err: err}
		<-b.sem
	}()

	select {
	case out := <-ch:
		return out.text, out.err
	case <-time.After(b.timeout):
		return "", fmt.Errorf("ocr: timeout after %v", b.timeout)
	}
}

func (b *Bounded) Close() error {
	return b.inner.Close()
}
