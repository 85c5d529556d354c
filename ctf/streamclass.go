package ctf

import (
	"fmt"
	"sync"
)

// StreamClass describes the schema shared by every Stream that belongs to
// it: event header/context/packet layouts and the list of EventClasses it
// declares. A stream class's id is unique within its owning trace; if the
// trace has only one stream class, the id may be legitimately absent from
// packet headers on disk.
type StreamClass struct {
	handle Handle

	ID            int64
	HasID         bool // false when the id is a synthesized placeholder
	EventHeader   FieldLayout
	EventContext  FieldLayout
	PacketContext FieldLayout
	Clock         *ClockClass // clock association, may be nil

	trace *Trace // back-pointer, resolvable only, never owning

	mu               sync.Mutex
	eventClassesByID map[int64]*EventClass
	eventClasses     []*EventClass
}

// NewStreamClass constructs a StreamClass with a fresh identity handle. The
// stream class is not yet attached to a Trace; Trace.AddStreamClass does
// that, and fails once the trace has been marked static.
func NewStreamClass(id int64, hasID bool) *StreamClass {
	return &StreamClass{
		handle:           newHandle(),
		ID:               id,
		HasID:            hasID,
		eventClassesByID: map[int64]*EventClass{},
	}
}

// Handle returns the stream class's stable identity.
func (sc *StreamClass) Handle() Handle { return sc.handle }

// Trace returns the owning trace, or nil if the stream class has not yet
// been attached to one.
func (sc *StreamClass) Trace() *Trace { return sc.trace }

// AddEventClass attaches ec to sc, keyed by ec.ID. Adding an event class
// whose id is already present is a programming error: (StreamClass.ID,
// EventClass.ID) must be globally unique.
func (sc *StreamClass) AddEventClass(ec *EventClass) error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if _, exists := sc.eventClassesByID[ec.ID]; exists {
		return fmt.Errorf("event class id %d already exists in stream class %d", ec.ID, sc.ID)
	}

	ec.streamClass = sc
	sc.eventClassesByID[ec.ID] = ec
	sc.eventClasses = append(sc.eventClasses, ec)
	return nil
}

// EventClassByID returns the event class with the given id, if any.
func (sc *StreamClass) EventClassByID(id int64) (*EventClass, bool) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	ec, ok := sc.eventClassesByID[id]
	return ec, ok
}

// EventClasses returns a stable-ordered snapshot of the event classes
// declared by this stream class.
func (sc *StreamClass) EventClasses() []*EventClass {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	out := make([]*EventClass, len(sc.eventClasses))
	copy(out, sc.eventClasses)
	return out
}
