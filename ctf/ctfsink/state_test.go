package ctfsink

import "testing"

func TestStreamState_fullLifecycle(t *testing.T) {
	s := stateUninit

	s, err := s.onPacketBegin()
	if err != nil {
		t.Fatalf("onPacketBegin from uninit: %v", err)
	}
	if want, have := statePacketOpen, s; want != have {
		t.Fatalf("want %s, have %s", want, have)
	}

	if err := s.onEvent(); err != nil {
		t.Fatalf("onEvent while packet-open: %v", err)
	}

	s, err = s.onPacketEnd()
	if err != nil {
		t.Fatalf("onPacketEnd from packet-open: %v", err)
	}
	if want, have := statePacketClosed, s; want != have {
		t.Fatalf("want %s, have %s", want, have)
	}

	s, err = s.onPacketBegin()
	if err != nil {
		t.Fatalf("onPacketBegin from packet-closed: %v", err)
	}
	if want, have := statePacketOpen, s; want != have {
		t.Fatalf("want %s, have %s", want, have)
	}
}

func TestStreamState_eventBeforePacketOpenIsError(t *testing.T) {
	if err := stateUninit.onEvent(); err == nil {
		t.Fatal("expected error for event while uninit")
	}
	if err := statePacketClosed.onEvent(); err == nil {
		t.Fatal("expected error for event while packet-closed")
	}
}

func TestStreamState_packetEndWithoutPacketOpenIsError(t *testing.T) {
	if _, err := stateUninit.onPacketEnd(); err == nil {
		t.Fatal("expected error for packet-end while uninit")
	}
	if _, err := statePacketClosed.onPacketEnd(); err == nil {
		t.Fatal("expected error for packet-end while already closed")
	}
}

func TestStreamState_doublePacketBeginIsError(t *testing.T) {
	if _, err := statePacketOpen.onPacketBegin(); err == nil {
		t.Fatal("expected error for packet-begin while already open")
	}
}
