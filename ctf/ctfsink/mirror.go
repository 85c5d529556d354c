// Package ctfsink implements the sink half of the pipeline: it receives the
// notification stream a ctfsrc port emits and reconstructs one or more
// on-disk CTF traces, lazily materializing stream-classes, event-classes,
// streams, and packets the first time their input counterparts are observed.
package ctfsink

import (
	"fmt"
	"sync"

	"github.com/alphadose/haxmap"
	"go.uber.org/zap"

	"github.com/barometric/ctf-fs/ctf"
	"github.com/barometric/ctf-fs/ctf/ctfio"
	"github.com/barometric/ctf-fs/internal/ctfutil"
)

// Mirror is the sink's core: it maintains three identity-keyed mappings
// (input Trace -> output Writer, input StreamClass -> output StreamClass,
// input Stream -> output Stream) and a per-output-stream protocol state,
// and drives schema/packet copying from the handler methods below.
//
// A Mirror is not safe for concurrent calls to OnPacketBegin/OnEvent/
// OnPacketEnd for the *same* input stream; the pipeline runtime serializes
// delivery per component. Distinct streams may be delivered
// concurrently, which is why the identity maps are haxmap's lock-striped
// maps rather than a single mutex-guarded Go map.
type Mirror struct {
	logger     *zap.Logger
	newWriter  NewWriterFunc
	outputBase string

	traceToWriter  *haxmap.Map[ctf.Handle, ctfio.Writer]
	scToSC         *haxmap.Map[ctf.Handle, *ctf.StreamClass]
	streamToStream *haxmap.Map[ctf.Handle, *ctf.Stream]
	streamStates   *haxmap.Map[ctf.Handle, streamState]
	writerTraces   *haxmap.Map[ctf.Handle, *ctf.Trace] // writer's output Trace, keyed by the *input* trace handle

	// pendingPackets holds the output Packet currently open on each input
	// stream (keyed by input Stream handle), carrying the packet-context
	// copied at packet-begin through to the events appended before the
	// matching packet-end.
	pendingPackets *haxmap.Map[ctf.Handle, *ctf.Packet]

	mu        sync.Mutex
	nextID    int
	finalized bool
}

// NewWriterFunc creates a fresh output Writer for the next output trace
// directory under outputBase, numbered sequentially. traceNameBase is the
// input trace's display name, used to derive the
// "<base>/<trace_name_base>_<NNN>" directory name; id is the zero-padded
// monotonic counter the mirror assigns.
type NewWriterFunc func(outputBase, traceNameBase string, id int) (ctfio.Writer, error)

// NewMirror constructs an empty Mirror. outputBase is the root directory
// beneath which every output trace directory is created.
func NewMirror(logger *zap.Logger, outputBase string, newWriter NewWriterFunc) *Mirror {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Mirror{
		logger:         logger,
		newWriter:      newWriter,
		outputBase:     outputBase,
		traceToWriter:  haxmap.New[ctf.Handle, ctfio.Writer](),
		scToSC:         haxmap.New[ctf.Handle, *ctf.StreamClass](),
		streamToStream: haxmap.New[ctf.Handle, *ctf.Stream](),
		streamStates:   haxmap.New[ctf.Handle, streamState](),
		writerTraces:   haxmap.New[ctf.Handle, *ctf.Trace](),
		pendingPackets: haxmap.New[ctf.Handle, *ctf.Packet](),
	}
}

// OnPacketBegin resolves (creating if absent) the output writer, stream
// class, and stream for the input packet's stream, then copies the
// packet-context values and transitions the stream's protocol state to
// PacketOpen.
func (m *Mirror) OnPacketBegin(p *ctf.Packet) error {
	inStream := p.Stream
	if inStream == nil {
		return ctf.NewProtocolError("packet-begin with no stream")
	}
	inSC := inStream.StreamClass
	if inSC == nil {
		return ctf.NewProtocolError("packet-begin: stream has no stream class")
	}
	inTrace := inSC.Trace()
	if inTrace == nil {
		return ctf.NewProtocolError("packet-begin: stream class has no trace")
	}

	writer, outTrace, err := m.resolveWriter(inTrace)
	if err != nil {
		return err
	}

	outSC, err := m.resolveStreamClass(inSC, inTrace, outTrace)
	if err != nil {
		return err
	}

	outStream, err := m.resolveStream(inStream, outSC, writer)
	if err != nil {
		return err
	}

	state, _ := m.streamStates.Get(inStream.Handle())
	next, err := state.onPacketBegin()
	if err != nil {
		return err
	}
	m.streamStates.Set(inStream.Handle(), next)

	outPacket := ctf.NewPacket(outStream, copyFields(p.PacketContext))
	m.pendingPackets.Set(inStream.Handle(), outPacket)

	return nil
}

// OnEvent resolves the output stream and stream class (missing either is an
// error — packet-begin must precede), resolves or lazily copies the output
// event class, deep-copies the event, and appends it to the writer.
func (m *Mirror) OnEvent(e *ctf.Event) error {
	inStream := e.Stream()
	if inStream == nil {
		return ctf.NewProtocolError("event with no stream")
	}

	outPacket, ok := m.pendingPackets.Get(inStream.Handle())
	if !ok {
		return ctf.NewProtocolError("event before packet-begin on stream %s", inStream.Handle())
	}

	inSC := inStream.StreamClass
	outSC, ok := m.scToSC.Get(inSC.Handle())
	if !ok {
		return ctf.NewProtocolError("event: stream class %s not yet mirrored", inSC.Handle())
	}

	state, _ := m.streamStates.Get(inStream.Handle())
	if err := state.onEvent(); err != nil {
		return err
	}

	inEC := e.EventClass
	if inEC == nil {
		return ctf.NewSchemaError("event has no event class")
	}

	outEC, ok := outSC.EventClassByID(inEC.ID)
	if !ok {
		outEC = ctf.NewEventClass(inEC.ID, inEC.Name, inEC.Payload.Copy())
		if err := outSC.AddEventClass(outEC); err != nil {
			return fmt.Errorf("mirror event class %d: %w", inEC.ID, err)
		}
	}

	outEvent := &ctf.Event{
		EventClass:    outEC,
		Packet:        outPacket,
		Header:        copyFields(e.Header),
		StreamContext: copyFields(e.StreamContext),
		Context:       copyFields(e.Context),
		Payload:       copyFields(e.Payload),
	}

	writer, _ := m.traceToWriter.Get(inSC.Trace().Handle())
	if err := writer.AppendEvent(outEvent); err != nil {
		return ctf.NewIOError("append event: %w", err)
	}

	return nil
}

// OnPacketEnd resolves the output stream (missing is an error -- packet-end
// without packet-begin) and flushes the packet to disk.
func (m *Mirror) OnPacketEnd(p *ctf.Packet) error {
	inStream := p.Stream
	if inStream == nil {
		return ctf.NewProtocolError("packet-end with no stream")
	}

	outStream, ok := m.streamToStream.Get(inStream.Handle())
	if !ok {
		return ctf.NewProtocolError("packet-end without packet-begin on stream %s", inStream.Handle())
	}

	state, _ := m.streamStates.Get(inStream.Handle())
	next, err := state.onPacketEnd()
	if err != nil {
		return err
	}
	m.streamStates.Set(inStream.Handle(), next)

	inSC := inStream.StreamClass
	writer, _ := m.traceToWriter.Get(inSC.Trace().Handle())
	if err := writer.FlushPacket(outStream); err != nil {
		return ctf.NewIOError("flush packet: %w", err)
	}

	m.pendingPackets.Del(inStream.Handle())
	return nil
}

// resolveWriter looks up traceToWriter, creating a fresh output directory
// and deep-copying the input trace's top-level schema on first sight.
func (m *Mirror) resolveWriter(inTrace *ctf.Trace) (ctfio.Writer, *ctf.Trace, error) {
	if writer, ok := m.traceToWriter.Get(inTrace.Handle()); ok {
		outTrace, _ := m.writerTraces.Get(inTrace.Handle())
		return writer, outTrace, nil
	}

	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.mu.Unlock()

	writer, err := m.newWriter(m.outputBase, inTrace.Name, id)
	if err != nil {
		return nil, nil, ctf.NewIOError("create writer for trace %q: %w", inTrace.Name, err)
	}

	outTrace := ctf.NewTrace(inTrace.Name, inTrace.Schema)
	for _, cc := range inTrace.ClockClasses() {
		outTrace.AddClockClass(ctf.NewClockClass(cc.Name, cc.UUID, cc.Frequency, cc.Offset))
	}

	if err := writer.WriteMetadata(outTrace.Schema); err != nil {
		_ = writer.Close()
		return nil, nil, ctf.NewIOError("write metadata for trace %q: %w", inTrace.Name, err)
	}

	if existing, loaded := m.traceToWriter.GetOrSet(inTrace.Handle(), writer); loaded {
		// Another goroutine raced us and won; drop our writer, reuse theirs.
		_ = writer.Close()
		outTrace, _ = m.writerTraces.Get(inTrace.Handle())
		return existing, outTrace, nil
	}
	m.writerTraces.Set(inTrace.Handle(), outTrace)

	return writer, outTrace, nil
}

// resolveStreamClass resolves inSC's clock class in outTrace, copying it
// only if no clock class with the same name/uuid is present (resolveWriter
// has already copied the trace's clock classes), deep-copies inSC's
// layouts, and inserts the mapping. Event classes are not copied here;
// OnEvent copies each one on its first occurrence.
func (m *Mirror) resolveStreamClass(inSC *ctf.StreamClass, inTrace, outTrace *ctf.Trace) (*ctf.StreamClass, error) {
	if outSC, ok := m.scToSC.Get(inSC.Handle()); ok {
		return outSC, nil
	}

	var outClock *ctf.ClockClass
	if inSC.Clock != nil {
		outClock = m.mirrorClockClass(inSC.Clock, outTrace)
	}

	outSC := ctf.NewStreamClass(inSC.ID, inSC.HasID)
	outSC.EventHeader = inSC.EventHeader.Copy()
	outSC.EventContext = inSC.EventContext.Copy()
	outSC.PacketContext = inSC.PacketContext.Copy()
	outSC.Clock = outClock

	if err := outTrace.AddStreamClass(outSC); err != nil {
		return nil, fmt.Errorf("mirror stream class %d: %w", inSC.ID, err)
	}

	if existing, loaded := m.scToSC.GetOrSet(inSC.Handle(), outSC); loaded {
		return existing, nil
	}
	return outSC, nil
}

// mirrorClockClass returns outTrace's copy of cc, creating it only if no
// clock class with the same name/uuid already exists.
func (m *Mirror) mirrorClockClass(cc *ctf.ClockClass, outTrace *ctf.Trace) *ctf.ClockClass {
	for _, existing := range outTrace.ClockClasses() {
		if existing.SameIdentity(cc) {
			return existing
		}
	}
	copied := ctf.NewClockClass(cc.Name, cc.UUID, cc.Frequency, cc.Offset)
	outTrace.AddClockClass(copied)
	return copied
}

// resolveStream creates an output Stream of class outSC, preserving the
// instance-id if present, and inserts the mapping. Tolerates repeated
// PacketBegin for the same input stream (a new packet in the same stream):
// the mapping already exists, this is a no-op.
func (m *Mirror) resolveStream(inStream *ctf.Stream, outSC *ctf.StreamClass, writer ctfio.Writer) (*ctf.Stream, error) {
	if outStream, ok := m.streamToStream.Get(inStream.Handle()); ok {
		return outStream, nil
	}

	outStream := ctf.NewStream(outSC, inStream.InstanceID, inStream.HasInstanceID)
	if err := writer.OpenStream(outStream); err != nil {
		return nil, ctf.NewIOError("open output stream: %w", err)
	}

	if existing, loaded := m.streamToStream.GetOrSet(inStream.Handle(), outStream); loaded {
		return existing, nil
	}
	m.streamStates.Set(inStream.Handle(), stateUninit)
	return outStream, nil
}

// Finalize flushes and closes every output writer. It is idempotent.
func (m *Mirror) Finalize() error {
	m.mu.Lock()
	if m.finalized {
		m.mu.Unlock()
		return nil
	}
	m.finalized = true
	m.mu.Unlock()

	var errs []error
	m.traceToWriter.ForEach(func(_ ctf.Handle, w ctfio.Writer) bool {
		if err := w.Close(); err != nil {
			errs = append(errs, err)
		}
		return true
	})
	m.streamStates.ForEach(func(h ctf.Handle, s streamState) bool {
		if s != stateFinal {
			m.streamStates.Set(h, stateFinal)
		}
		return true
	})

	if err := ctfutil.Join(errs...); err != nil {
		return fmt.Errorf("finalize: %w", err)
	}
	return nil
}

func copyFields(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
