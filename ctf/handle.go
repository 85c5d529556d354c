package ctf

import (
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Handle is a stable, process-local identity for a schema-tree object (a
// Trace, ClockClass, StreamClass, EventClass, or Stream). Two objects with
// equal handles are the same object; handles are never reused within a
// process, so they double as map keys for identity-based lookups like the
// ones ctfsink.Mirror performs.
//
// Handle exists because the mirror needs a comparable, hashable key for its
// input->output maps, and a bare Go pointer works but is awkward to log or
// put in a haxmap.Map. Generating one ULID per object is cheap relative
// to the I/O this package otherwise does.
type Handle string

// NewHandle allocates a fresh Handle. It's exposed for collaborators (e.g.
// ctfsrc.Port) that want a ULID-based correlation id with the same
// generation discipline as the schema tree's own handles, but aren't
// themselves schema objects.
func NewHandle() Handle {
	return newHandle()
}

func newHandle() Handle {
	handleMu.Lock()
	defer handleMu.Unlock()
	return Handle(ulid.MustNew(ulid.Timestamp(time.Now()), handleEntropy).String())
}

var (
	handleMu      sync.Mutex
	handleEntropy = ulid.DefaultEntropy()
)

func (h Handle) String() string { return string(h) }
