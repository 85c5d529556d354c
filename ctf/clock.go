package ctf

// ClockClass describes the clock used to timestamp events and packets in one
// or more StreamClasses. Clock classes are identified by identity, not value,
// across a single Trace: two clock classes with the same name can coexist
// (they are not merged) unless the metadata parser itself deduplicates them.
type ClockClass struct {
	handle Handle

	Name      string
	UUID      string
	Frequency uint64
	Offset    int64 // seconds, added after raw ticks are scaled to ns
}

// NewClockClass constructs a ClockClass with a fresh identity handle.
func NewClockClass(name, uuid string, frequency uint64, offset int64) *ClockClass {
	return &ClockClass{
		handle:    newHandle(),
		Name:      name,
		UUID:      uuid,
		Frequency: frequency,
		Offset:    offset,
	}
}

// Handle returns the clock class's stable identity.
func (cc *ClockClass) Handle() Handle { return cc.handle }

// NsFromEpoch converts a raw tick count in this clock's frequency to absolute
// nanoseconds since the Unix epoch.
//
// A pre-epoch raw value produces a negative result rather than being clamped
// to zero or discarded; whether that is the right behavior for callers that
// coerce it back into an unsigned field is an open policy question this
// package deliberately does not resolve on its own.
func (cc *ClockClass) NsFromEpoch(raw uint64) int64 {
	freq := cc.Frequency
	if freq == 0 {
		freq = 1
	}
	ns := (int64(raw) * 1_000_000_000) / int64(freq)
	return ns + cc.Offset*1_000_000_000
}

// SameIdentity reports whether two clock classes describe the same
// underlying clock, for the purposes of idempotent sink-side copying. This
// is identity by name/uuid, not by Handle, because the sink compares an
// input clock class against output clock classes it created itself
// (different identities, same clock).
func (cc *ClockClass) SameIdentity(other *ClockClass) bool {
	if cc == nil || other == nil {
		return false
	}
	if cc.UUID != "" && other.UUID != "" {
		return cc.UUID == other.UUID
	}
	return cc.Name == other.Name
}

// ClockClassPriorityMap assigns a priority to every ClockClass of a Trace.
// It is built once, after the trace schema is loaded, and must cover every
// clock class of the trace exactly once. Priority is presently a placeholder
// for a future cross-stream ordering policy:
// every clock class is assigned priority 0 by BuildClockClassPriorityMap.
type ClockClassPriorityMap struct {
	priority map[Handle]uint64
}

// BuildClockClassPriorityMap assigns priority 0 to every clock class in ccs.
func BuildClockClassPriorityMap(ccs []*ClockClass) *ClockClassPriorityMap {
	m := &ClockClassPriorityMap{priority: make(map[Handle]uint64, len(ccs))}
	for _, cc := range ccs {
		m.priority[cc.handle] = 0
	}
	return m
}

// Priority returns the priority assigned to cc, and whether cc is covered by
// the map at all.
func (m *ClockClassPriorityMap) Priority(cc *ClockClass) (uint64, bool) {
	if m == nil || cc == nil {
		return 0, false
	}
	p, ok := m.priority[cc.handle]
	return p, ok
}

// SetPriority overrides the priority of cc. Exposed only for tests and for
// a future ordering policy; default construction never calls this.
func (m *ClockClassPriorityMap) SetPriority(cc *ClockClass, priority uint64) {
	if m == nil || cc == nil {
		return
	}
	m.priority[cc.handle] = priority
}

// Len returns the number of clock classes covered by the map.
func (m *ClockClassPriorityMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.priority)
}
