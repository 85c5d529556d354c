// Package ctfsrc implements the source-side pieces of the CTF filesystem
// plugin: DataStreamInspector, StreamGrouper, SourceIterator, and the ports
// a pipeline runtime would bind to them.
package ctfsrc

import (
	"fmt"

	"github.com/barometric/ctf-fs/ctf"
	"github.com/barometric/ctf-fs/ctf/ctfio"
)

// InspectResult is the reduced set of fields DataStreamInspector extracts
// from a stream file's first packet.
type InspectResult struct {
	StreamClass *ctf.StreamClass

	InstanceID    int64
	HasInstanceID bool

	BeginNS    int64
	HasBeginNS bool
}

// Inspect opens path via insp and extracts (stream_instance_id, stream_id,
// timestamp_begin) from its first packet's header and context, resolving
// stream_id against trace's stream classes.
//
// stream_id resolution: if the header lacks a stream_id and the trace has
// exactly one stream class, that class is used; otherwise a missing
// stream_id with more than one stream class is deliberately treated as an
// error here, not guessed at.
func Inspect(path string, trace *ctf.Trace, insp ctfio.HeaderInspector) (InspectResult, error) {
	header, packetContext, err := insp.InspectFirstPacket(path)
	if err != nil {
		return InspectResult{}, ctf.NewIOError("inspect %q: %w", path, err)
	}

	var result InspectResult

	if raw, ok := header["stream_instance_id"]; ok {
		id, err := asInt64(raw)
		if err != nil {
			return InspectResult{}, ctf.NewSchemaError("%q: stream_instance_id: %w", path, err)
		}
		result.InstanceID = id
		result.HasInstanceID = true
	}

	sc, err := resolveStreamClass(path, trace, header)
	if err != nil {
		return InspectResult{}, err
	}
	result.StreamClass = sc

	if raw, ok := packetContext["timestamp_begin"]; ok {
		ticks, err := asUint64(raw)
		if err != nil {
			return InspectResult{}, ctf.NewSchemaError("%q: timestamp_begin: %w", path, err)
		}
		if sc.Clock == nil {
			return InspectResult{}, ctf.NewSchemaError("%q: timestamp_begin present but stream class %d has no clock", path, sc.ID)
		}
		result.BeginNS = sc.Clock.NsFromEpoch(ticks)
		result.HasBeginNS = true
	}

	return result, nil
}

func resolveStreamClass(path string, trace *ctf.Trace, header map[string]any) (*ctf.StreamClass, error) {
	raw, ok := header["stream_id"]
	if !ok {
		if sc, ok := trace.SingleStreamClass(); ok {
			return sc, nil
		}
		return nil, ctf.NewSchemaError("%q: missing stream_id and trace has more than one stream class", path)
	}

	id, err := asInt64(raw)
	if err != nil {
		return nil, ctf.NewSchemaError("%q: stream_id: %w", path, err)
	}

	for _, sc := range trace.StreamClasses() {
		if sc.ID == id {
			return sc, nil
		}
	}

	return nil, ctf.NewSchemaError("%q: no stream class with id %d", path, id)
}

func asInt64(v any) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case uint64:
		return int64(n), nil
	case uint:
		return int64(n), nil
	default:
		return 0, unsupportedFieldType(v)
	}
}

func asUint64(v any) (uint64, error) {
	switch n := v.(type) {
	case uint64:
		return n, nil
	case uint:
		return uint64(n), nil
	case int64:
		return uint64(n), nil
	case int:
		return uint64(n), nil
	default:
		return 0, unsupportedFieldType(v)
	}
}

func unsupportedFieldType(v any) error {
	return fmt.Errorf("unsupported field type %T", v)
}
