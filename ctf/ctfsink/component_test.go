package ctfsink_test

import (
	"testing"

	"github.com/barometric/ctf-fs/ctf"
	"github.com/barometric/ctf-fs/ctf/ctfio"
	"github.com/barometric/ctf-fs/ctf/ctfsink"
)

func TestComponent_initRejectsEmptyBase(t *testing.T) {
	c := ctfsink.NewComponent(nil)
	newWriter := func(base, traceNameBase string, id int) (ctfio.Writer, error) {
		return &fakeWriter{dir: traceNameBase}, nil
	}
	if err := c.Init(ctfsink.Params{}, newWriter); err == nil {
		t.Fatal("expected error for empty base parameter")
	}
}

func TestComponent_consumeBeforeInitIsError(t *testing.T) {
	c := ctfsink.NewComponent(nil)
	_, sc, _ := newInputTrace(t)
	stream := ctf.NewStream(sc, 0, false)
	n := ctf.NewPacketBegin(ctf.NewPacket(stream, nil))

	if err := c.Consume(n); err == nil {
		t.Fatal("expected error consuming before Init")
	}
}

func TestComponent_consumeDispatchesAndRecordsDiagnostics(t *testing.T) {
	c := ctfsink.NewComponent(nil)
	_, sc, _ := newInputTrace(t)
	stream := ctf.NewStream(sc, 0, false)

	var writers []*fakeWriter
	newWriter := func(base, traceNameBase string, id int) (ctfio.Writer, error) {
		w := &fakeWriter{dir: traceNameBase}
		writers = append(writers, w)
		return w, nil
	}
	if err := c.Init(ctfsink.Params{Base: "/out"}, newWriter); err != nil {
		t.Fatalf("Init: %v", err)
	}

	// packet-end without a preceding packet-begin is a protocol error.
	n := ctf.NewPacketEnd(ctf.NewPacket(stream, nil))
	if err := c.Consume(n); err == nil {
		t.Fatal("expected protocol error")
	}
	if err := c.Status(); err == nil {
		t.Fatal("expected Status to surface the last error")
	}
	if want, have := 1, len(c.RecentDiagnostics(0)); want != have {
		t.Fatalf("diagnostic count: want %d, have %d", want, have)
	}

	if err := c.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if err := c.Finalize(); err != nil {
		t.Fatalf("second Finalize should be a no-op: %v", err)
	}
}
