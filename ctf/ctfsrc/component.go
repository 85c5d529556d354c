package ctfsrc

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/barometric/ctf-fs/ctf"
	"github.com/barometric/ctf-fs/ctf/ctfdiscover"
	"github.com/barometric/ctf-fs/ctf/ctfio"
	"github.com/barometric/ctf-fs/internal/ctfdebug"
	"github.com/barometric/ctf-fs/internal/ctfringbuf"
	"github.com/barometric/ctf-fs/internal/ctfutil"
)

// Params mirrors the source's external parameter map: path is
// required, offset-s/offset-ns are optional and currently informational
// (reserved for a future timestamp-shifting feature; the core iteration
// engine specified here does not apply them).
type Params struct {
	Path     string
	OffsetS  int64
	OffsetNS int64
}

// Diagnostic is one entry in a component's bounded recent-history buffer.
type Diagnostic struct {
	When    time.Time
	Message string
}

const diagnosticsCapacity = 64

// Component is the source component's lifecycle: Init builds the TraceModel
// and ports for every discovered trace; Finalize releases every port's
// iterator. The bounded recent-diagnostics history is kept after Finalize.
type Component struct {
	logger    *zap.Logger
	parser    ctfio.MetadataParser
	inspector ctfio.HeaderInspector
	openFile  ctfio.OpenStreamFileReaderFunc
	decode    ctfio.PacketizedDecoder

	mu          sync.Mutex
	finalized   bool
	traces      []*ctf.Trace
	ports       []*Port
	diagnostics *ctfringbuf.RingBuffer[Diagnostic]
	status      *ctfutil.Atomic[error]
}

// NewComponent constructs a Component bound to its external collaborators.
func NewComponent(logger *zap.Logger, parser ctfio.MetadataParser, inspector ctfio.HeaderInspector, openFile ctfio.OpenStreamFileReaderFunc, decode ctfio.PacketizedDecoder) *Component {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Component{
		logger:      logger,
		parser:      parser,
		inspector:   inspector,
		openFile:    openFile,
		decode:      decode,
		diagnostics: ctfringbuf.New[Diagnostic](diagnosticsCapacity),
		status:      ctfutil.NewAtomic[error](nil),
	}
}

// Init discovers traces under params.Path, builds a TraceModel and a set of
// ports for each, and marks every successfully built trace static. Schema
// errors on one trace are logged and skip just that trace; a
// config error (missing path, empty discovery) fails Init entirely.
func (c *Component) Init(ctx context.Context, params Params) error {
	if params.Path == "" {
		err := ctf.NewConfigError("path parameter is required")
		c.setStatus(err)
		return err
	}

	discovered, err := ctfdiscover.Discover(ctx, c.logger, params.Path)
	if err != nil {
		c.setStatus(err)
		return err
	}

	for _, d := range discovered {
		trace, ports, err := c.buildTrace(d)
		if err != nil {
			c.diag("trace %s: %v", d.DisplayName, err)
			c.logger.Warn("skipping trace", zap.String("trace", d.DisplayName), zap.Error(err))
			continue
		}

		c.mu.Lock()
		c.traces = append(c.traces, trace)
		c.ports = append(c.ports, ports...)
		c.mu.Unlock()
	}

	return nil
}

// buildTrace builds a single discovered trace: parse metadata, build the
// clock-class priority map (via MarkStatic), group stream files, create one
// port per group, and mark the trace static.
func (c *Component) buildTrace(d ctfdiscover.DiscoveredTrace) (*ctf.Trace, []*Port, error) {
	text, _, err := ctfio.ReadMetadataText(d.AbsPath+"/metadata", c.decode)
	if err != nil {
		return nil, nil, ctf.NewSchemaError("read metadata: %w", err)
	}

	trace, err := c.parser.ParseMetadata(d.DisplayName, text)
	if err != nil {
		return nil, nil, ctf.NewSchemaError("parse metadata: %w", err)
	}

	paths, err := listStreamFiles(d.AbsPath)
	if err != nil {
		return nil, nil, ctf.NewIOError("list stream files: %w", err)
	}

	if ctfdebug.Enabled() {
		c.logger.Debug("discovered stream files",
			zap.String("trace", d.DisplayName),
			zap.Int("count", len(paths)),
			zap.String("size", ctfutil.HumanizeBytes(totalSize(paths))))
	}

	groups, err := Group(trace, paths, c.inspector)
	if err != nil {
		return nil, nil, fmt.Errorf("group stream files: %w", err)
	}

	ports := make([]*Port, 0, len(groups))
	for _, g := range groups {
		port, err := NewPort(g, trace, c.openFile, c.logger)
		if err != nil {
			return nil, nil, fmt.Errorf("open port for group: %w", err)
		}
		ports = append(ports, port)
		ctfdebug.Global.GroupsFormed.Add(1)
		ctfdebug.Global.FilesDiscovered.Add(uint64(len(g.Files)))
	}

	if err := trace.MarkStatic(); err != nil {
		return nil, nil, err
	}

	return trace, ports, nil
}

// Ports returns every port created across every successfully built trace.
func (c *Component) Ports() []*Port {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*Port, len(c.ports))
	copy(out, c.ports)
	return out
}

// Traces returns every successfully built trace.
func (c *Component) Traces() []*ctf.Trace {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*ctf.Trace, len(c.traces))
	copy(out, c.traces)
	return out
}

// Finalize releases every port's iterator. It is idempotent.
func (c *Component) Finalize() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.finalized {
		return nil
	}
	c.finalized = true

	var errs []error
	for _, p := range c.ports {
		if err := p.Finalize(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := ctfutil.Join(errs...); err != nil {
		for _, reason := range ctfutil.FlattenErrors(errs...) {
			c.diag("port close: %s", reason)
		}
		return fmt.Errorf("finalize: %w", err)
	}
	return nil
}

// Status returns the last fatal error surfaced by Init, or nil.
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
