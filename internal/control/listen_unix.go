//go:build !windows

package control

import (
	"net"
	"os"
)

// listen binds a Unix domain socket at addr, removing any stale socket
// file left by a previous, uncleanly terminated run.
func listen(addr string) (net.Listener, error) {
	if err := os.Remove(addr); err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	return net.Listen("unix", addr)
}
