package ctf

// Packet is a bounded section of a stream file: a header, a packet-context
// struct, and a sequence of events. Packets are transient — they appear only
// in the notification stream, never stored in the schema tree.
type Packet struct {
	Stream *Stream

	// PacketContext holds the decoded packet-context field values (including
	// timestamp_begin/timestamp_end when present), opaque to this package.
	// The external Writer interprets them when flushing.
	PacketContext map[string]any
}

// NewPacket constructs a Packet bound to the given stream.
func NewPacket(s *Stream, packetContext map[string]any) *Packet {
	return &Packet{Stream: s, PacketContext: packetContext}
}
