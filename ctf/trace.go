package ctf

import (
	"fmt"
	"sync"
)

// Trace is the in-memory root of a schema tree: it owns every StreamClass and
// ClockClass discovered in one CTF trace directory's metadata. Once marked
// static (TraceDiscovery has finished inspecting every stream file), no new
// stream class may be added -- a "frozen after Finish" discipline, except a
// Trace is frozen for structure rather than for trace events.
//
// Trace is read-only after construction is complete (i.e. after MarkStatic),
// and may be shared freely across threads from that point on.
type Trace struct {
	handle Handle

	Name   string // display name, from TraceDiscovery
	Schema string // raw metadata text, as returned by the external parser

	mu            sync.Mutex
	static        bool
	streamClasses []*StreamClass
	clockClasses  []*ClockClass
	priorityMap   *ClockClassPriorityMap
}

// NewTrace constructs an empty, non-static Trace for the given display name
// and raw metadata text.
func NewTrace(name, schema string) *Trace {
	return &Trace{
		handle: newHandle(),
		Name:   name,
		Schema: schema,
	}
}

// Handle returns the trace's stable identity, used by ctfsink.Mirror as the
// key for its input-trace -> output-writer map.
func (tr *Trace) Handle() Handle { return tr.handle }

// AddStreamClass attaches sc to the trace. It is a programming error to call
// this after MarkStatic.
func (tr *Trace) AddStreamClass(sc *StreamClass) error {
	tr.mu.Lock()
	defer tr.mu.Unlock()

	if tr.static {
		return fmt.Errorf("trace %q is static: cannot add stream class %d", tr.Name, sc.ID)
	}

	sc.trace = tr
	tr.streamClasses = append(tr.streamClasses, sc)
	return nil
}

// AddClockClass attaches cc to the trace, for later inclusion in a
// ClockClassPriorityMap. Unlike stream classes, clock classes may be added
// before or after MarkStatic is called, since the sink adds clock classes
// to its output traces lazily, when it first sees a packet of an input
// trace and when it resolves a stream class. A clock class added after
// MarkStatic is not covered by the trace's priority map.
func (tr *Trace) AddClockClass(cc *ClockClass) {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	tr.clockClasses = append(tr.clockClasses, cc)
}

// MarkStatic freezes the trace's stream-class list and builds its clock
// class priority map. It must be called exactly once, after TraceDiscovery
// and StreamGrouper have finished populating the trace.
// Calling it twice is a programming error.
func (tr *Trace) MarkStatic() error {
	tr.mu.Lock()
	defer tr.mu.Unlock()

	if tr.static {
		return fmt.Errorf("trace %q is already static", tr.Name)
	}

	tr.static = true
	tr.priorityMap = BuildClockClassPriorityMap(tr.clockClasses)
	return nil
}

// Static reports whether the trace has been frozen.
func (tr *Trace) Static() bool {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return tr.static
}

// StreamClasses returns a stable-ordered snapshot of the trace's stream
// classes.
func (tr *Trace) StreamClasses() []*StreamClass {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	out := make([]*StreamClass, len(tr.streamClasses))
	copy(out, tr.streamClasses)
	return out
}

// ClockClasses returns a stable-ordered snapshot of the trace's clock
// classes.
func (tr *Trace) ClockClasses() []*ClockClass {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	out := make([]*ClockClass, len(tr.clockClasses))
	copy(out, tr.clockClasses)
	return out
}

// SingleStreamClass returns the trace's one and only stream class, and true,
// if and only if the trace has exactly one. This backs the fallback rule in
// DataStreamInspector: a packet header without a stream_id
// resolves to the trace's single stream class, if there is one.
func (tr *Trace) SingleStreamClass() (*StreamClass, bool) {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	if len(tr.streamClasses) != 1 {
		return nil, false
	}
	return tr.streamClasses[0], true
}

// ClockPriority returns the priority assigned to cc by the trace's clock
// class priority map, and whether the map covers cc at all. It returns
// (0, false) before MarkStatic has been called.
func (tr *Trace) ClockPriority(cc *ClockClass) (uint64, bool) {
	tr.mu.Lock()
	pm := tr.priorityMap
	tr.mu.Unlock()
	return pm.Priority(cc)
}

// SetClockPriority overrides the priority assigned to cc. It is a no-op
// before MarkStatic has built the priority map. Exposed only for tests and
// for a future cross-stream ordering policy; default construction never
// calls this, since BuildClockClassPriorityMap assigns every clock class
// priority 0.
func (tr *Trace) SetClockPriority(cc *ClockClass, priority uint64) {
	tr.mu.Lock()
	pm := tr.priorityMap
	tr.mu.Unlock()
	pm.SetPriority(cc, priority)
}
