//go:build windows

package control

import (
	"net"

	"github.com/Microsoft/go-winio"
)

// listen binds a named pipe at addr (a \\.\pipe\... path).
func listen(addr string) (net.Listener, error) {
	return winio.ListenPipe(addr, nil)
}
