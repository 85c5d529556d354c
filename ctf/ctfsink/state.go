package ctfsink

import "github.com/barometric/ctf-fs/ctf"

// streamState is the per-output-stream protocol state machine: Uninit ->
// PacketOpen <-> PacketClosed -> Final. It turns "any other transition is a
// protocol error" into an explicit switch instead of an implicit invariant
// on map membership.
type streamState int

const (
	stateUninit streamState = iota
	statePacketOpen
	statePacketClosed
	stateFinal
)

func (s streamState) String() string {
	switch s {
	case stateUninit:
		return "uninit"
	case statePacketOpen:
		return "packet-open"
	case statePacketClosed:
		return "packet-closed"
	case stateFinal:
		return "final"
	default:
		return "unknown"
	}
}

// onPacketBegin validates and performs the Uninit|PacketClosed -> PacketOpen
// transition.
func (s streamState) onPacketBegin() (streamState, error) {
	switch s {
	case stateUninit, statePacketClosed:
		return statePacketOpen, nil
	default:
		return s, ctf.NewProtocolError("packet-begin while stream is %s", s)
	}
}

// onEvent validates that an event may be appended: only while PacketOpen.
func (s streamState) onEvent() error {
	if s != statePacketOpen {
		return ctf.NewProtocolError("event while stream is %s", s)
	}
	return nil
}

// onPacketEnd validates and performs the PacketOpen -> PacketClosed
// transition.
func (s streamState) onPacketEnd() (streamState, error) {
	if s != statePacketOpen {
		return s, ctf.NewProtocolError("packet-end while stream is %s", s)
	}
	return statePacketClosed, nil
}
