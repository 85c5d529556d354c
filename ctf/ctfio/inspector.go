package ctfio

// HeaderInspector decodes just the first packet's header and context structs
// of a stream file, without constructing a full Notification stream. This is
// the "shallow" counterpart to StreamFileReader used by stream-file
// grouping, which only needs a handful of scalar fields to group files, not
// a fully resolved Packet/Stream/Event tree.
type HeaderInspector interface {
	// InspectFirstPacket opens path and decodes its first packet header and
	// packet context, returning both as raw field maps understood by
	// ctfsrc.Inspect. Field names follow CTF metadata naming:
	// "stream_id", "stream_instance_id" in header; "timestamp_begin" in
	// context.
	InspectFirstPacket(path string) (header map[string]any, packetContext map[string]any, err error)
}

// HeaderInspectorFunc adapts a plain function to HeaderInspector.
type HeaderInspectorFunc func(path string) (map[string]any, map[string]any, error)

func (f HeaderInspectorFunc) InspectFirstPacket(path string) (map[string]any, map[string]any, error) {
	return f(path)
}
