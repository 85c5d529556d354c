package ctfsink_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gofrs/flock"

	"github.com/barometric/ctf-fs/ctf"
	"github.com/barometric/ctf-fs/ctf/ctfsink"
)

func TestFSWriter_writeMetadataAndStreamLifecycle(t *testing.T) {
	base := t.TempDir()

	w, err := ctfsink.NewFSWriter(base, "my-trace", 0)
	if err != nil {
		t.Fatalf("NewFSWriter: %v", err)
	}

	wantDir := filepath.Join(base, "my-trace_000")
	if have := w.Dir(); have != wantDir {
		t.Fatalf("Dir: want %q, have %q", wantDir, have)
	}

	if err := w.WriteMetadata("/* CTF 1.8 */"); err != nil {
		t.Fatalf("WriteMetadata: %v", err)
	}
	metaBytes, err := os.ReadFile(filepath.Join(wantDir, "metadata"))
	if err != nil {
		t.Fatalf("read metadata file: %v", err)
	}
	if want, have := "/* CTF 1.8 */", string(metaBytes); want != have {
		t.Fatalf("metadata contents: want %q, have %q", want, have)
	}

	sc := ctf.NewStreamClass(3, true)
	stream := ctf.NewStream(sc, 0, false)

	if err := w.OpenStream(stream); err != nil {
		t.Fatalf("OpenStream: %v", err)
	}
	if _, err := os.Stat(filepath.Join(wantDir, "stream_3")); err != nil {
		t.Fatalf("expected stream file to exist: %v", err)
	}

	// OpenStream is idempotent for the same output stream identity.
	if err := w.OpenStream(stream); err != nil {
		t.Fatalf("second OpenStream: %v", err)
	}

	ec := ctf.NewEventClass(1, "my_event", ctf.FieldLayout{Raw: "struct { int x; }"})
	if err := sc.AddEventClass(ec); err != nil {
		t.Fatalf("AddEventClass: %v", err)
	}

	packet := ctf.NewPacket(stream, map[string]any{"timestamp_begin": uint64(100)})
	event := &ctf.Event{EventClass: ec, Packet: packet, Payload: map[string]any{"x": int64(1)}}

	if err := w.AppendEvent(event); err != nil {
		t.Fatalf("AppendEvent: %v", err)
	}
	if err := w.FlushPacket(stream); err != nil {
		t.Fatalf("FlushPacket: %v", err)
	}

	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	// Close is idempotent.
	if err := w.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

func TestFSWriter_flushPacketWithoutOpenStreamFails(t *testing.T) {
	base := t.TempDir()

	w, err := ctfsink.NewFSWriter(base, "my-trace", 0)
	if err != nil {
		t.Fatalf("NewFSWriter: %v", err)
	}
	defer w.Close()

	sc := ctf.NewStreamClass(0, true)
	stream := ctf.NewStream(sc, 0, false)

	if err := w.FlushPacket(stream); err == nil {
		t.Fatal("expected error flushing a packet for a stream with no open output file")
	}
}

func TestFSWriter_locksOutputDirForItsLifetime(t *testing.T) {
	base := t.TempDir()

	w, err := ctfsink.NewFSWriter(base, "locked-trace", 0)
	if err != nil {
		t.Fatalf("NewFSWriter: %v", err)
	}

	lockPath := filepath.Join(base, "locked-trace_000", ".lock")
	other := flock.New(lockPath)
	locked, err := other.TryLock()
	if err != nil {
		t.Fatalf("TryLock: %v", err)
	}
	if locked {
		other.Unlock()
		t.Fatal("expected the output dir's lock file to be held by the writer")
	}

	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	locked, err = other.TryLock()
	if err != nil {
		t.Fatalf("TryLock after Close: %v", err)
	}
	if !locked {
		t.Fatal("expected the lock to be released once the writer closed")
	}
	other.Unlock()
}
