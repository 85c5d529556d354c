package ctf

import "fmt"

// NotificationKind identifies which variant a Notification carries.
type NotificationKind int

const (
	// PacketBegin announces the start of a packet on a stream.
	PacketBegin NotificationKind = iota
	// EventNotification carries a single decoded event.
	EventNotification
	// PacketEnd announces the end of a packet on a stream.
	PacketEnd
)

func (k NotificationKind) String() string {
	switch k {
	case PacketBegin:
		return "packet-begin"
	case EventNotification:
		return "event"
	case PacketEnd:
		return "packet-end"
	default:
		return fmt.Sprintf("NotificationKind(%d)", int(k))
	}
}

// Notification is the wire type emitted by SourceIterator.Next and consumed
// by ctfsink.Mirror. Exactly one of Packet/Event is meaningful, selected by
// Kind: PacketBegin and PacketEnd carry Packet; EventNotification carries
// Event (whose own Packet field still identifies the enclosing packet).
//
// Ordering: for a single Stream, notifications follow the pattern
// (PacketBegin, Event*, PacketEnd)+, in file order, and within a file in
// reader order. There is no ordering guarantee across streams.
type Notification struct {
	Kind   NotificationKind
	Packet *Packet
	Event  *Event
}

// NewPacketBegin constructs a PacketBegin notification for p.
func NewPacketBegin(p *Packet) Notification {
	return Notification{Kind: PacketBegin, Packet: p}
}

// NewPacketEnd constructs a PacketEnd notification for p.
func NewPacketEnd(p *Packet) Notification {
	return Notification{Kind: PacketEnd, Packet: p}
}

// NewEventNotification constructs an Event notification.
func NewEventNotification(e *Event) Notification {
	return Notification{Kind: EventNotification, Event: e}
}

// Stream returns the Stream this notification pertains to, regardless of
// kind.
func (n Notification) Stream() *Stream {
	switch n.Kind {
	case PacketBegin, PacketEnd:
		if n.Packet == nil {
			return nil
		}
		return n.Packet.Stream
	case EventNotification:
		return n.Event.Stream()
	default:
		return nil
	}
}
