//go:build !windows

package frame

import "image"

// noWindowFinder always falls through to the desktop-wide capture.
// Locating a window by title outside Win32 needs a platform-specific
// accessibility API (Quartz on macOS, X11/Wayland on Linux) that is
// out of scope for the core; the desktop fallback is an accepted
// substitute per the Source's own fallback policy.
type noWindowFinder struct{}

func newWindowFinder() windowFinder {
	return noWindowFinder{}
}

func (noWindowFinder) find(titles []string) (image.Rectangle, bool) {
	return image.Rectangle{}, false
}
