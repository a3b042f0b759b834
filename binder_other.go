//go:build !linux

package ndp

import "fmt"

// bind reports ErrOpenSocket on platforms without an AF_PACKET-style raw
// socket. spec.md §1 scopes this engine to a single link-layer segment
// reachable through a raw device-level socket, which is a Linux-specific
// facility; there is no portable non-Linux equivalent to fall back to.
func bind(ifname string) (t transport, addr Address, mtu int, code ErrorCode, err error) {
	return nil, Address{}, 0, ErrOpenSocket, fmt.Errorf("raw packet sockets are not supported on this platform")
}
