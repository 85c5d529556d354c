package ctf_test

import (
	"testing"

	"github.com/barometric/ctf-fs/ctf"
)

func TestTrace_addStreamClassFailsAfterMarkStatic(t *testing.T) {
	trace := ctf.NewTrace("t", "/* CTF 1.8 */")
	sc := ctf.NewStreamClass(0, true)
	if err := trace.AddStreamClass(sc); err != nil {
		t.Fatalf("AddStreamClass: %v", err)
	}
	if err := trace.MarkStatic(); err != nil {
		t.Fatalf("MarkStatic: %v", err)
	}

	other := ctf.NewStreamClass(1, true)
	if err := trace.AddStreamClass(other); err == nil {
		t.Fatal("expected AddStreamClass to fail once the trace is static")
	}
}

func TestTrace_markStaticIsNotIdempotent(t *testing.T) {
	trace := ctf.NewTrace("t", "/* CTF 1.8 */")
	if err := trace.MarkStatic(); err != nil {
		t.Fatalf("first MarkStatic: %v", err)
	}
	if err := trace.MarkStatic(); err == nil {
		t.Fatal("expected second MarkStatic to fail")
	}
}

func TestTrace_clockPriorityDefaultsToZero(t *testing.T) {
	trace := ctf.NewTrace("t", "/* CTF 1.8 */")
	clock := ctf.NewClockClass("monotonic", "uuid-1", 1_000_000_000, 0)
	trace.AddClockClass(clock)
	if err := trace.MarkStatic(); err != nil {
		t.Fatalf("MarkStatic: %v", err)
	}

	priority, ok := trace.ClockPriority(clock)
	if !ok {
		t.Fatal("expected clock class to be covered by the priority map after MarkStatic")
	}
	if want, have := uint64(0), priority; want != have {
		t.Fatalf("default priority: want %d, have %d", want, have)
	}

	trace.SetClockPriority(clock, 7)
	priority, ok = trace.ClockPriority(clock)
	if !ok {
		t.Fatal("expected clock class still covered after SetClockPriority")
	}
	if want, have := uint64(7), priority; want != have {
		t.Fatalf("overridden priority: want %d, have %d", want, have)
	}
}

func TestTrace_clockPriorityBeforeMarkStaticIsUncovered(t *testing.T) {
	trace := ctf.NewTrace("t", "/* CTF 1.8 */")
	clock := ctf.NewClockClass("monotonic", "uuid-1", 1_000_000_000, 0)
	trace.AddClockClass(clock)

	if _, ok := trace.ClockPriority(clock); ok {
		t.Fatal("expected no priority coverage before MarkStatic builds the map")
	}
}

func TestTrace_singleStreamClass(t *testing.T) {
	trace := ctf.NewTrace("t", "/* CTF 1.8 */")

	if _, ok := trace.SingleStreamClass(); ok {
		t.Fatal("expected no single stream class on an empty trace")
	}

	sc := ctf.NewStreamClass(0, true)
	if err := trace.AddStreamClass(sc); err != nil {
		t.Fatalf("AddStreamClass: %v", err)
	}
	got, ok := trace.SingleStreamClass()
	if !ok {
		t.Fatal("expected a single stream class")
	}
	if got != sc {
		t.Fatal("SingleStreamClass returned a different stream class than the one added")
	}

	other := ctf.NewStreamClass(1, true)
	if err := trace.AddStreamClass(other); err != nil {
		t.Fatalf("AddStreamClass other: %v", err)
	}
	if _, ok := trace.SingleStreamClass(); ok {
		t.Fatal("expected no single stream class once a second one is added")
	}
}
