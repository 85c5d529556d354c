package ctf

// Event is a single decoded CTF event belonging to a Packet. Like Packet, an
// Event is transient: it exists only as the payload of an Event
// notification, and carries back-references to its Stream, StreamClass, and
// EventClass resolvable by identity.
type Event struct {
	EventClass *EventClass
	Packet     *Packet

	Header        map[string]any
	StreamContext map[string]any
	Context       map[string]any
	Payload       map[string]any
}

// Stream returns the stream the event's packet belongs to.
func (e *Event) Stream() *Stream {
	if e.Packet == nil {
		return nil
	}
	return e.Packet.Stream
}

// StreamClass returns the event's stream class, resolved through the event
// class back-pointer: upward references are back-pointers resolvable
// through the owning trace.
func (e *Event) StreamClass() *StreamClass {
	if e.EventClass == nil {
		return nil
	}
	return e.EventClass.StreamClass()
}
