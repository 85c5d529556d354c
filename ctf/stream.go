package ctf

// Stream is a logical sequence of packets sharing a StreamClass. On the
// source side it is created per StreamFileGroup; on the sink side it is
// created lazily on the first PacketBegin for a given input stream.
type Stream struct {
	handle Handle

	StreamClass *StreamClass

	InstanceID    int64
	HasInstanceID bool
}

// NewStream constructs a Stream of the given class, with a fresh identity
// handle. instanceID/hasInstanceID preserve the stream's optional
// instance-id, when the group it was built from carried one.
func NewStream(sc *StreamClass, instanceID int64, hasInstanceID bool) *Stream {
	return &Stream{
		handle:        newHandle(),
		StreamClass:   sc,
		InstanceID:    instanceID,
		HasInstanceID: hasInstanceID,
	}
}

// Handle returns the stream's stable identity, used by ctfsink.Mirror as the
// key for its input-stream -> output-stream map.
func (s *Stream) Handle() Handle { return s.handle }
