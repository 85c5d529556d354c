// Package ctfio declares the external-collaborator interfaces this module
// treats as given: the CTF metadata grammar parser, the low-level binary
// stream-file decoder, and the writer codec that emits packet bytes. None of
// these are implemented here -- the source and sink packages are written
// entirely against these interfaces, so any conforming implementation can
// be substituted.
package ctfio

import (
	"io"

	"github.com/barometric/ctf-fs/ctf"
)

// StreamFileReader decodes notifications from a single CTF stream file. One
// reader is bound to exactly one file for its lifetime; SourceIterator opens
// a fresh reader for each file in a StreamFileGroup in turn.
//
// Next returns io.EOF (not a package-specific sentinel) when the file's
// notifications are exhausted, matching the stdlib iterator convention used
// throughout this module's readers and writers.
type StreamFileReader interface {
	// Next decodes and returns the next notification, or io.EOF once the
	// file has been fully consumed. A well-formed, non-empty stream file
	// always yields PacketBegin before anything else.
	Next() (ctf.Notification, error)

	// Close releases any resources (file handles) held by the reader. Close
	// is idempotent.
	Close() error
}

// OpenStreamFileReaderFunc opens a StreamFileReader bound to the stream file
// at path, decoding it against trace's schema. The source Iterator calls it
// for each file of a StreamFileGroup in turn.
type OpenStreamFileReaderFunc func(path string, trace *ctf.Trace) (StreamFileReader, error)

var _ io.Closer = StreamFileReader(nil)
