package ctfsrc

import (
	"go.uber.org/zap"

	"github.com/barometric/ctf-fs/ctf"
	"github.com/barometric/ctf-fs/ctf/ctfio"
)

// Port is the source's unit of fan-out: one per StreamFileGroup, not per
// stream file. The pipeline runtime binds to Port.Iterator and reads Name
// as the port's display label.
type Port struct {
	// Name is the path of the first (earliest) file in the group, used by
	// the containing graph runtime as the port's display name.
	Name string

	// Handle is a log-correlation id for this port, independent of the
	// group's own identity.
	Handle string

	Group    *StreamFileGroup
	Iterator *Iterator
}

// NewPort opens an Iterator for group and returns the bound Port.
func NewPort(group *StreamFileGroup, trace *ctf.Trace, openFile ctfio.OpenStreamFileReaderFunc, logger *zap.Logger) (*Port, error) {
	it, err := NewIterator(group, trace, openFile, logger)
	if err != nil {
		return nil, err
	}

	return &Port{
		Name:     group.Files[0].Path,
		Handle:   ctf.NewHandle().String(),
		Group:    group,
		Iterator: it,
	}, nil
}

// Finalize releases the port's iterator.
func (p *Port) Finalize() error {
	return p.Iterator.Finalize()
}
