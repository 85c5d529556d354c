package ctf

// FieldLayout is an opaque description of a struct's field layout, as parsed
// from CTF metadata. This package never interprets layouts itself; it is the
// external metadata parser and StreamFileReader/Writer collaborators that
// understand them. FieldLayout only needs to be copyable and comparable
// enough to support the sink's "copy once" identity discipline.
type FieldLayout struct {
	Raw string // metadata-grammar text fragment describing the struct
}

// Copy returns a value copy of the layout, safe to attach to a different
// owning schema object.
func (fl FieldLayout) Copy() FieldLayout { return FieldLayout{Raw: fl.Raw} }

// EventClass describes one kind of event within a StreamClass: its id, name,
// and payload layout. (StreamClass.id, EventClass.id) is globally unique
// within a trace.
type EventClass struct {
	handle Handle

	ID      int64
	Name    string
	Payload FieldLayout

	streamClass *StreamClass // back-pointer, resolvable only, never owning
}

// NewEventClass constructs an EventClass with a fresh identity handle. The
// event class is not yet attached to a StreamClass; StreamClass.AddEventClass
// does that.
func NewEventClass(id int64, name string, payload FieldLayout) *EventClass {
	return &EventClass{
		handle:  newHandle(),
		ID:      id,
		Name:    name,
		Payload: payload,
	}
}

// Handle returns the event class's stable identity.
func (ec *EventClass) Handle() Handle { return ec.handle }

// StreamClass returns the owning stream class, or nil if the event class has
// not yet been attached to one.
func (ec *EventClass) StreamClass() *StreamClass { return ec.streamClass }
