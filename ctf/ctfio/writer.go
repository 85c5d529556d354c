package ctfio

import "github.com/barometric/ctf-fs/ctf"

// Writer is the CTF writer codec: it owns an output trace directory and
// knows how to emit metadata text and packet bytes for a single output
// Stream. ctfsink.Mirror drives one Writer per input Trace.
type Writer interface {
	// Dir returns the output trace directory this writer owns, e.g.
	// "<base>/<trace_name_base>_000".
	Dir() string

	// WriteMetadata emits the textual CTF metadata for the writer's output
	// trace schema. Called once, after the output trace's top-level schema
	// (env, packet-header layout, trace-level clock classes) has been
	// populated.
	WriteMetadata(schemaText string) error

	// OpenStream allocates on-disk state for a new output Stream (normally
	// one file per stream), to be written to by subsequent FlushPacket
	// calls.
	OpenStream(s *ctf.Stream) error

	// FlushPacket writes the accumulated packet-context, header, and events
	// for the current open packet on s to disk. Flushing clears the
	// writer's accumulated per-packet state for s.
	FlushPacket(s *ctf.Stream) error

	// AppendEvent accumulates e against the currently open packet on its
	// stream, to be emitted by the next FlushPacket.
	AppendEvent(e *ctf.Event) error

	// Close flushes and releases every resource the writer holds (one open
	// file per active output stream). Close is idempotent.
	Close() error
}
