package ndp

import (
	"fmt"
	"net"
)

// AddrLen is the fixed width of a neighbor's hardware address, in octets.
const AddrLen = 6

// Address is an opaque 6-octet hardware address. The zero value is the
// all-zeros address; it is not treated specially anywhere in this package.
type Address [AddrLen]byte

// Broadcast is the all-ones hardware address used as the beacon's target.
var Broadcast = Address{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}

// AddressFromHardwareAddr copies the first AddrLen octets of a
// net.HardwareAddr into an Address. It returns false if mac is shorter
// than AddrLen.
func AddressFromHardwareAddr(mac net.HardwareAddr) (Address, bool) {
	var a Address
	if len(mac) < AddrLen {
		return a, false
	}
	copy(a[:], mac[:AddrLen])
	return a, true
}

// ParseAddress parses the canonical colon-hex form ("AA:BB:CC:DD:EE:FF",
// case-insensitive) into an Address.
func ParseAddress(s string) (Address, error) {
	mac, err := net.ParseMAC(s)
	if err != nil {
		return Address{}, fmt.Errorf("parse address %q: %w", s, err)
	}
	a, ok := AddressFromHardwareAddr(mac)
	if !ok {
		return Address{}, fmt.Errorf("parse address %q: wrong length %d", s, len(mac))
	}
	return a, nil
}

// String renders the address as six uppercase hex pairs joined by colons.
func (a Address) String() string {
	return fmt.Sprintf("%02X:%02X:%02X:%02X:%02X:%02X",
		a[0], a[1], a[2], a[3], a[4], a[5])
}

// HardwareAddr returns a's octets as a net.HardwareAddr for use with the
// ethernet frame codec and the raw socket APIs.
func (a Address) HardwareAddr() net.HardwareAddr {
	return net.HardwareAddr(a[:])
}
