package ndp

// ErrorCode is a stable small integer identifying the engine's current
// fault, if any. Only the interface binder (see binder_linux.go) ever
// sets one; per-frame I/O failures after a successful start are tolerated
// silently and never change it.
type ErrorCode int

const (
	ErrNone ErrorCode = iota
	ErrOpenSocket
	ErrGetIfIndex
	ErrGetAddress
	ErrGetMTU
	ErrAddPromiscuous
	ErrBindSocket
)

// String renders the human-readable description of an error code, or ""
// for ErrNone. This mirrors the original's NULL-for-no-error convention.
func (e ErrorCode) String() string {
	switch e {
	case ErrNone:
		return ""
	case ErrOpenSocket:
		return "Could not open socket, try running with elevated privileges"
	case ErrGetIfIndex:
		return "Failed to retrieve the interface index"
	case ErrGetAddress:
		return "Failed to retrieve the hardware address"
	case ErrGetMTU:
		return "Failed to retrieve the maximum transmission unit"
	case ErrAddPromiscuous:
		return "Failed to add the promiscuous mode"
	case ErrBindSocket:
		return "Failed to bind the socket to the interface"
	default:
		return "Unknown error occurred"
	}
}
