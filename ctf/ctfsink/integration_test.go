package ctfsink_test

import (
	"encoding/gob"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/barometric/ctf-fs/ctf"
	"github.com/barometric/ctf-fs/ctf/ctfsink"
)

// packetRecord mirrors the private record fsWriter encodes with gob; gob
// matches struct fields by name, so a local copy with the same field names
// and types decodes the writer's own output.
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

// buildTwoClassTrace constructs an input Trace with two stream classes, one
// event class each, sharing a single clock class.
func buildTwoClassTrace(t *testing.T) (*ctf.Trace, [2]*ctf.StreamClass, [2]*ctf.EventClass) {
	t.Helper()

	trace := ctf.NewTrace("integration-trace", "/* CTF 1.8 */")
	clock := ctf.NewClockClass("monotonic", "uuid-integration", 1_000_000_000, 0)
	trace.AddClockClass(clock)

	var scs [2]*ctf.StreamClass
	var ecs [2]*ctf.EventClass
	for i := 0; i < 2; i++ {
		sc := ctf.NewStreamClass(int64(i), true)
		sc.Clock = clock
		ec := ctf.NewEventClass(1, "tick", ctf.FieldLayout{Raw: "struct { int64_t n; }"})
		if err := sc.AddEventClass(ec); err != nil {
			t.Fatalf("AddEventClass sc%d: %v", i, err)
		}
		if err := trace.AddStreamClass(sc); err != nil {
			t.Fatalf("AddStreamClass sc%d: %v", i, err)
		}
		scs[i] = sc
		ecs[i] = ec
	}

	if err := trace.MarkStatic(); err != nil {
		t.Fatalf("MarkStatic: %v", err)
	}
	return trace, scs, ecs
}

// driveStream emits a (PacketBegin, Event x5, PacketEnd) notification
// sequence for one stream directly into the sink component, the same shape
// ctfsrc.Iterator.Next would produce for a single stream file.
func driveStream(t *testing.T, sink *ctfsink.Component, sc *ctf.StreamClass, ec *ctf.EventClass, instanceID int64) {
	t.Helper()

	stream := ctf.NewStream(sc, instanceID, true)
	packet := ctf.NewPacket(stream, map[string]any{"timestamp_begin": uint64(instanceID * 1000)})

	if err := sink.Consume(ctf.Notification{Kind: ctf.PacketBegin, Packet: packet}); err != nil {
		t.Fatalf("consume packet-begin: %v", err)
	}

	for i := int64(0); i < 5; i++ {
		event := &ctf.Event{
			EventClass: ec,
			Packet:     packet,
			Payload:    map[string]any{"n": i},
		}
		if err := sink.Consume(ctf.Notification{Kind: ctf.EventNotification, Event: event}); err != nil {
			t.Fatalf("consume event %d: %v", i, err)
		}
	}

	if err := sink.Consume(ctf.Notification{Kind: ctf.PacketEnd, Packet: packet}); err != nil {
		t.Fatalf("consume packet-end: %v", err)
	}
}

// TestSinkRoundTrip_twoStreamClassesTwoStreamsFiveEvents exercises the
// sink's full lazy-mirroring path against the real filesystem writer: two
// stream classes, two streams (one per class), five events per stream, one
// packet per stream.
func TestSinkRoundTrip_twoStreamClassesTwoStreamsFiveEvents(t *testing.T) {
	base := t.TempDir()

	_, scs, ecs := buildTwoClassTrace(t)

	sink := ctfsink.NewComponent(nil)
	if err := sink.Init(ctfsink.Params{Base: base}, ctfsink.NewFSWriter); err != nil {
		t.Fatalf("Init: %v", err)
	}

	driveStream(t, sink, scs[0], ecs[0], 0)
	driveStream(t, sink, scs[1], ecs[1], 0)

	if err := sink.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	entries, err := os.ReadDir(base)
	if err != nil {
		t.Fatalf("ReadDir base: %v", err)
	}
	if want, have := 1, len(entries); want != have {
		t.Fatalf("output trace dir count: want %d, have %d (both stream classes belong to the same input trace)", want, have)
	}
	outDir := filepath.Join(base, entries[0].Name())

	if _, err := os.Stat(filepath.Join(outDir, "metadata")); err != nil {
		t.Fatalf("expected metadata file: %v", err)
	}

	for _, sc := range scs {
		// driveStream gives each stream instance id 0, so fsWriter names its
		// file "stream_<class id>_0".
		path := filepath.Join(outDir, "stream_"+strconv.FormatInt(sc.ID, 10)+"_0")
		rec := decodeOnePacket(t, path)

		if want, have := uint64(0), rec.PacketContext["timestamp_begin"]; want != have {
			t.Errorf("stream %d: packet context timestamp_begin: want %v, have %v", sc.ID, want, have)
		}
		if want, have := 5, len(rec.Events); want != have {
			t.Fatalf("stream %d: event count: want %d, have %d", sc.ID, want, have)
		}
		for i, ev := range rec.Events {
			if want, have := int64(1), ev.EventClassID; want != have {
				t.Errorf("stream %d event %d: event class id: want %d, have %d", sc.ID, i, want, have)
			}
			if want, have := int64(i), ev.Payload["n"]; want != have {
				t.Errorf("stream %d event %d: payload n: want %v, have %v", sc.ID, i, want, have)
			}
		}
	}
}

func decodeOnePacket(t *testing.T, path string) packetRecord {
	t.Helper()

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %q: %v", path, err)
	}
	defer f.Close()

	var rec packetRecord
	dec := gob.NewDecoder(f)
	if err := dec.Decode(&rec); err != nil {
		t.Fatalf("decode packet record from %q: %v", path, err)
	}

	// A single-packet stream has nothing left to decode.
	if err := dec.Decode(&packetRecord{}); err != io.EOF {
		t.Fatalf("expected exactly one packet record in %q, got extra data (err=%v)", path, err)
	}

	return rec
}
