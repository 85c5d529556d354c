// Package ctf provides the in-memory trace/stream schema model shared by the
// CTF filesystem source and sink: Trace, StreamClass, EventClass, ClockClass,
// Stream, Packet, Event, and the Notification type that threads them through
// a pipeline.
//
// The schema tree (Trace ⊃ StreamClass ⊃ EventClass; Trace ⊃ ClockClass) uses
// exclusive ownership downward and resolvable back-pointers upward. Schema
// objects are identified across a trace by a stable Handle, not by value, so
// that sink-side mirroring can perform identity-keyed, idempotent copies.
//
// This package does not itself parse CTF metadata or decode/encode packet
// bytes; see ctfio for the external-collaborator interfaces that do.
package ctf
