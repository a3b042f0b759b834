//go:build linux

package ndp

import (
	"fmt"
	"net"

	"golang.org/x/sys/unix"
)

// linuxTransport is a transport backed by a bound AF_PACKET raw socket.
// It is the concrete result of bind's four steps: open,
// resolve, enable promiscuous reception, and bind.
type linuxTransport struct {
	fd      int
	ifIndex int
}

var _ transport = (*linuxTransport)(nil)

// bind implements the interface binder from spec.md §4.1: open a raw
// device-level socket, resolve the named interface's index/hardware
// address/MTU, enable promiscuous membership, and bind for broadcast
// I/O. Each step fails fast with its own error code; the socket is
// closed on any failure after it was opened.
func bind(ifname string) (t transport, addr Address, mtu int, code ErrorCode, err error) {
	fd, sockErr := unix.Socket(unix.AF_PACKET, unix.SOCK_RAW, int(htons(unix.ETH_P_ALL)))
	if sockErr != nil {
		return nil, Address{}, 0, ErrOpenSocket, fmt.Errorf("open packet socket: %w", sockErr)
	}

	ifi, ifErr := net.InterfaceByName(ifname)
	if ifErr != nil {
		unix.Close(fd)
		return nil, Address{}, 0, ErrGetIfIndex, fmt.Errorf("resolve interface %q: %w", ifname, ifErr)
	}

	localAddr, ok := AddressFromHardwareAddr(ifi.HardwareAddr)
	if !ok {
		unix.Close(fd)
		return nil, Address{}, 0, ErrGetAddress, fmt.Errorf("interface %q has no hardware address", ifname)
	}

	if ifi.MTU <= 0 {
		unix.Close(fd)
		return nil, Address{}, 0, ErrGetMTU, fmt.Errorf("interface %q reports no MTU", ifname)
	}

	mreq := &unix.PacketMreq{
		Ifindex: int32(ifi.Index),
		Type:    unix.PACKET_MR_PROMISC,
	}
	if promErr := unix.SetsockoptPacketMreq(fd, unix.SOL_PACKET, unix.PACKET_ADD_MEMBERSHIP, mreq); promErr != nil {
		unix.Close(fd)
		return nil, Address{}, 0, ErrAddPromiscuous, fmt.Errorf("enable promiscuous mode on %q: %w", ifname, promErr)
	}

	sa := &unix.SockaddrLinklayer{
		Protocol: htons(unix.ETH_P_ALL),
		Ifindex:  ifi.Index,
	}
	if bindErr := unix.Bind(fd, sa); bindErr != nil {
		unix.Close(fd)
		return nil, Address{}, 0, ErrBindSocket, fmt.Errorf("bind socket to %q: %w", ifname, bindErr)
	}

	return &linuxTransport{fd: fd, ifIndex: ifi.Index}, localAddr, ifi.MTU, ErrNone, nil
}

// sendFrame transmits frame as an all-ones link-layer broadcast.
func (t *linuxTransport) sendFrame(frame []byte) error {
	sa := &unix.SockaddrLinklayer{
		Protocol: htons(unix.ETH_P_ALL),
		Ifindex:  t.ifIndex,
		Pkttype:  unix.PACKET_BROADCAST,
		Halen:    AddrLen,
	}
	copy(sa.Addr[:AddrLen], Broadcast[:])

	return unix.Sendto(t.fd, frame, 0, sa)
}

// recvFrame performs a single non-blocking receive.
func (t *linuxTransport) recvFrame(buf []byte) (int, error) {
	n, _, err := unix.Recvfrom(t.fd, buf, unix.MSG_DONTWAIT)
	if err != nil {
		if err == unix.EAGAIN || err == unix.EWOULDBLOCK || err == unix.EINTR {
			return 0, nil
		}
		return 0, err
	}
	return n, nil
}

func (t *linuxTransport) close() error {
	return unix.Close(t.fd)
}
