package ctfsink

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"

	"github.com/barometric/ctf-fs/ctf"
	"github.com/barometric/ctf-fs/ctf/ctfio"
)

// fsWriter is a reference ctfio.Writer: it owns an output trace directory,
// advisory-locked for its lifetime, one metadata file, and one file per
// output Stream. The on-disk record format here is a plain gob stream of
// packetRecord values, not the byte-for-byte CTF 1.8 wire format -- that
// codec is an out-of-scope external collaborator; fsWriter is a conformant,
// runnable implementation of the Writer interface for local use and
// testing, not a claim of CTF byte compatibility.
type fsWriter struct {
	dir  string
	lock *flock.Flock

	mu      sync.Mutex
	files   map[ctf.Handle]*os.File
	encs    map[ctf.Handle]*gob.Encoder
	pending map[ctf.Handle]*packetRecord
	closed  bool
}

// packetRecord is one flushed packet: its context plus every event appended
// to it since the preceding packet-begin.
type packetRecord struct {
	PacketContext map[string]any
	Events        []eventRecord
}

type eventRecord struct {
	EventClassID int64
	Header       map[string]any
	Context      map[string]any
	Payload      map[string]any
}

// NewFSWriter creates (or reuses) "<base>/<traceNameBase>_<NNN>", locks it,
// and returns a Writer bound to it. It matches NewWriterFunc's signature so
// it can be passed directly to NewMirror.
func NewFSWriter(base, traceNameBase string, id int) (ctfio.Writer, error) {
	dir := filepath.Join(base, fmt.Sprintf("%s_%03d", traceNameBase, id))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output trace dir %q: %w", dir, err)
	}

	lock := flock.New(filepath.Join(dir, ".lock"))
	if err := lock.Lock(); err != nil {
		return nil, fmt.Errorf("lock output trace dir %q: %w", dir, err)
	}

	return &fsWriter{
		dir:     dir,
		lock:    lock,
		files:   make(map[ctf.Handle]*os.File),
		encs:    make(map[ctf.Handle]*gob.Encoder),
		pending: make(map[ctf.Handle]*packetRecord),
	}, nil
}

func (w *fsWriter) Dir() string { return w.dir }

func (w *fsWriter) WriteMetadata(schemaText string) error {
	path := filepath.Join(w.dir, "metadata")
	return os.WriteFile(path, []byte(schemaText), 0o644)
}

func (w *fsWriter) OpenStream(s *ctf.Stream) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, exists := w.files[s.Handle()]; exists {
		return nil
	}

	name := fmt.Sprintf("stream_%d", s.StreamClass.ID)
	if s.HasInstanceID {
		name = fmt.Sprintf("%s_%d", name, s.InstanceID)
	}

	f, err := os.Create(filepath.Join(w.dir, name))
	if err != nil {
		return fmt.Errorf("create output stream file: %w", err)
	}

	w.files[s.Handle()] = f
	w.encs[s.Handle()] = gob.NewEncoder(f)
	return nil
}

func (w *fsWriter) AppendEvent(e *ctf.Event) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	s := e.Stream()
	if s == nil {
		return fmt.Errorf("append event: no stream")
	}

	rec, ok := w.pending[s.Handle()]
	if !ok {
		rec = &packetRecord{PacketContext: e.Packet.PacketContext}
		w.pending[s.Handle()] = rec
	}

	rec.Events = append(rec.Events, eventRecord{
		EventClassID: e.EventClass.ID,
		Header:       e.Header,
		Context:      e.Context,
		Payload:      e.Payload,
	})

	return nil
}

// FlushPacket writes the accumulated packetRecord for s to its stream file
// and clears the pending buffer, ready for the next packet-begin.
func (w *fsWriter) FlushPacket(s *ctf.Stream) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	enc, ok := w.encs[s.Handle()]
	if !ok {
		return fmt.Errorf("flush packet: stream %s has no open output file", s.Handle())
	}

	rec := w.pending[s.Handle()]
	if rec == nil {
		rec = &packetRecord{}
	}
	delete(w.pending, s.Handle())

	if err := enc.Encode(rec); err != nil {
		return fmt.Errorf("encode packet record: %w", err)
	}
	return nil
}

func (w *fsWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true

	var errs []error
	for _, f := range w.files {
		if err := f.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := w.lock.Unlock(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return fmt.Errorf("close writer for %q: %d error(s)", w.dir, len(errs))
	}
	return nil
}
