package ctfsink

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/barometric/ctf-fs/ctf"
	"github.com/barometric/ctf-fs/internal/ctfringbuf"
	"github.com/barometric/ctf-fs/internal/ctfutil"
)

// Params is the sink's external parameter map: base is the root directory
// beneath which output trace directories are created.
type Params struct {
	Base string
}

// Diagnostic is one entry in the component's bounded recent-history buffer,
// mirroring ctfsrc.Component's.
type Diagnostic struct {
	When    time.Time
	Message string
}

const diagnosticsCapacity = 64

// Component is the sink's lifecycle wrapper around a Mirror: Init validates
// parameters and constructs the Mirror, Consume dispatches one notification
// at a time, Finalize releases every output writer.
type Component struct {
	logger *zap.Logger
	mirror *Mirror

	mu          sync.Mutex
	finalized   bool
	diagnostics *ctfringbuf.RingBuffer[Diagnostic]
	status      *ctfutil.Atomic[error]
}

// NewComponent constructs a Component bound to its logger. Init supplies the
// writer factory, usually ctfsink.NewFSWriter; tests substitute a fake.
func NewComponent(logger *zap.Logger) *Component {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Component{
		logger:      logger,
		diagnostics: ctfringbuf.New[Diagnostic](diagnosticsCapacity),
		status:      ctfutil.NewAtomic[error](nil),
	}
}

// Init validates params and constructs the underlying Mirror.
func (c *Component) Init(params Params, newWriter NewWriterFunc) error {
	if params.Base == "" {
		err := ctf.NewConfigError("base parameter is required")
		c.setStatus(err)
		return err
	}

	c.mu.Lock()
	c.mirror = NewMirror(c.logger, params.Base, newWriter)
	c.mu.Unlock()
	return nil
}

// Consume dispatches a single notification to the mirror's matching
// handler. Schema and I/O errors are recorded as diagnostics and returned;
// callers decide whether a given error ends the run.
func (c *Component) Consume(n ctf.Notification) error {
	c.mu.Lock()
	mirror := c.mirror
	c.mu.Unlock()

	if mirror == nil {
		return ctf.NewConfigError("sink consumed a notification before Init")
	}

	var err error
	switch n.Kind {
	case ctf.PacketBegin:
		err = mirror.OnPacketBegin(n.Packet)
	case ctf.EventNotification:
		err = mirror.OnEvent(n.Event)
	case ctf.PacketEnd:
		err = mirror.OnPacketEnd(n.Packet)
	default:
		err = ctf.NewProtocolError("unknown notification kind %v", n.Kind)
	}

	if err != nil {
		c.diag("%v", err)
		c.setStatus(err)
	}
	return err
}

// Finalize releases the mirror's output writers. It is idempotent.
func (c *Component) Finalize() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.finalized {
		return nil
	}
	c.finalized = true

	if c.mirror == nil {
		return nil
	}
	return c.mirror.Finalize()
}

// Status returns the last error surfaced by Consume, or nil.
func (c *Component) Status() error {
	return c.status.Get()
}

// RecentDiagnostics returns up to n of the most recent diagnostic messages,
// newest first. n <= 0 returns everything retained.
func (c *Component) RecentDiagnostics(n int) []Diagnostic {
	return c.diagnostics.Recent(n)
}

func (c *Component) setStatus(err error) {
	c.status.Set(err)
}

func (c *Component) diag(format string, args ...any) {
	c.diagnostics.Add(Diagnostic{When: time.Now().UTC(), Message: fmt.Sprintf(format, args...)})
}
