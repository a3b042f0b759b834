package ndp

import (
	"fmt"

	"github.com/mdlayher/ethernet"
)

// BeaconEtherType is the non-reserved EtherType carried by every beacon,
// always transmitted in network byte order on the wire.
const BeaconEtherType ethernet.EtherType = 0x3900

// BeaconLen is the wire size of a beacon frame: two hardware addresses
// plus a 2-byte EtherType, with no payload and no padding.
const BeaconLen = 2*AddrLen + 2

// beacon is the 14-octet frame a sender emits and a receiver decodes.
type beacon struct {
	target Address
	source Address
}

// marshal encodes b as an Ethernet frame with an empty payload and
// returns exactly BeaconLen bytes: mdlayher/ethernet zero-pads the
// payload to the Ethernet minimum, and that padding is cut off.
func (b beacon) marshal() ([]byte, error) {
	frame := ethernet.Frame{
		Destination: b.target.HardwareAddr(),
		Source:      b.source.HardwareAddr(),
		EtherType:   BeaconEtherType,
	}
	out, err := frame.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("marshal beacon: %w", err)
	}
	return out[:BeaconLen], nil
}

// unmarshalBeacon decodes a received frame. It returns ok=false (with a
// nil error) for any frame whose EtherType is not BeaconEtherType — such
// frames are simply not beacons, not malformed input.
func unmarshalBeacon(raw []byte) (b beacon, ok bool, err error) {
	if len(raw) < BeaconLen {
		return beacon{}, false, nil
	}

	var frame ethernet.Frame
	if err := frame.UnmarshalBinary(raw); err != nil {
		return beacon{}, false, fmt.Errorf("unmarshal beacon: %w", err)
	}

	if frame.EtherType != BeaconEtherType {
		return beacon{}, false, nil
	}

	target, okT := AddressFromHardwareAddr(frame.Destination)
	source, okS := AddressFromHardwareAddr(frame.Source)
	if !okT || !okS {
		return beacon{}, false, nil
	}

	return beacon{target: target, source: source}, true, nil
}
