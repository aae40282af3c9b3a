package frame

import (
	"errors"
	"image"
	"sync"

	"github.com/kbinani/screenshot"
)

// ErrUnavailable is returned by Capture when no frame could be produced
// this tick — the target window is gone, or the OS capture call failed.
// Callers skip the tick rather than treating this as fatal.
var ErrUnavailable = errors.New("frame: capture unavailable")

// windowFinder locates the target window's screen rectangle by an
// ordered list of title substrings. Implementations are OS-specific;
// see windowfinder_windows.go and windowfinder_other.go.
type windowFinder interface {
	find(titles []string) (rect image.Rectangle, ok bool)
}

// Source produces frames from the OS on demand. It caches the last
// located window handle/rect and falls back to a desktop-wide capture,
// logging the fallback transition only once per state change.
type Source struct {
	titles []string
	finder windowFinder

	mu           sync.Mutex
	cachedRect   image.Rectangle
	haveCache    bool
	usingDesktop bool
	onFallback   func(usingDesktop bool)
}

// NewSource builds a Source targeting windows whose title contains any
// of titles, in order of preference. onFallback, if non-nil, is invoked
// whenever the desktop-wide/window-targeted state changes, so callers
// can log the transition exactly once.
func NewSource(titles []string, onFallback func(usingDesktop bool)) *Source {
	return &Source{
		titles:     titles,
		finder:     newWindowFinder(),
		onFallback: onFallback,
	}
}

// Capture grabs the current framebuffer of the target window, or the
// primary desktop when the window cannot be located. It returns
// ErrUnavailable if no capture could be produced at all.
func (s *Source) Capture() (*Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rect, ok := s.resolveRect(); ok {
		img, err := screenshot.CaptureRect(rect)
		if err == nil {
			s.setDesktopFallback(false)
			return FromRGBA(img), nil
		}
		s.haveCache = false
	}

	img, err := screenshot.CaptureDisplay(0)
	if err != nil {
		return nil, ErrUnavailable
	}
	s.setDesktopFallback(true)
	return FromRGBA(img), nil
}

func (s *Source) resolveRect() (image.Rectangle, bool) {
	if s.haveCache {
		return s.cachedRect, true
	}
	if len(s.titles) == 0 {
		return image.Rectangle{}, false
	}
	rect, ok := s.finder.find(s.titles)
	if !ok {
		return image.Rectangle{}, false
	}
	s.cachedRect = rect
	s.haveCache = true
	return rect, true
}

func (s *Source) setDesktopFallback(v bool) {
	if s.usingDesktop == v {
		return
	}
	s.usingDesktop = v
	if s.onFallback != nil {
		s.onFallback(v)
	}
}

// Invalidate clears the cached window handle, forcing the next Capture
// to re-resolve it.
func (s *Source) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.haveCache = false
}
