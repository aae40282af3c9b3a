//go:build windows

package frame

import (
	"image"
	"strings"
	"syscall"

	"github.com/lxn/win"
)

type win32Finder struct{}

func newWindowFinder() windowFinder {
	return win32Finder{}
}

// find walks the top-level windows looking for the first whose title
// contains one of titles, tried in order so callers can rank
// preference (e.g. the game window over a launcher window).
func (win32Finder) find(titles []string) (image.Rectangle, bool) {
	for _, want := range titles {
		if hwnd, ok := findByTitleSubstring(want); ok {
			var r win.RECT
			if win.GetWindowRect(hwnd, &r) {
				return image.Rect(int(r.Left), int(r.Top), int(r.Right), int(r.Bottom)), true
			}
		}
	}
	return image.Rectangle{}, false
}

func findByTitleSubstring(want string) (win.HWND, bool) {
	want = strings.ToLower(want)
	var found win.HWND
	cb := syscall.NewCallback(func(hwnd win.HWND, lparam uintptr) uintptr {
		var buf [256]uint16
		n := win.GetWindowText(hwnd, &buf[0], int32(len(buf)))
		if n == 0 {
			return 1
		}
		title := strings.ToLower(syscall.UTF16ToString(buf[:n]))
		if strings.Contains(title, want) {
			found = hwnd
			return 0
		}
		return 1
	})
	win.EnumWindows(cb, 0)
	return found, found != 0
}
