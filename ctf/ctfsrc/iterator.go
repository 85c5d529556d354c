package ctfsrc

import (
	"errors"
	"io"
	"time"

	"github.com/avast/retry-go/v4"
	"go.uber.org/zap"

	"github.com/barometric/ctf-fs/ctf"
	"github.com/barometric/ctf-fs/ctf/ctfio"
	"github.com/barometric/ctf-fs/internal/ctfdebug"
)

// Iterator is the per-port cursor: it walks a group's ordered file list,
// delegating per-file decoding to the external StreamFileReader, and
// seamlessly advances across file boundaries. No notification reordering is
// performed; the per-file reader is trusted to emit well-formed
// (PacketBegin, Event*, PacketEnd)+ sequences.
//
// Iterator is not safe for concurrent use by multiple goroutines -- each
// port is driven by a single cooperative producer.
type Iterator struct {
	group    *StreamFileGroup
	openFile ctfio.OpenStreamFileReaderFunc
	trace    *ctf.Trace
	logger   *zap.Logger

	fileIdx int
	reader  ctfio.StreamFileReader
}

// NewIterator opens the first file of group and returns a ready-to-use
// Iterator. group must contain at least one file.
func NewIterator(group *StreamFileGroup, trace *ctf.Trace, openFile ctfio.OpenStreamFileReaderFunc, logger *zap.Logger) (*Iterator, error) {
	if len(group.Files) == 0 {
		return nil, ctf.NewConfigError("stream file group has no files")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	it := &Iterator{
		group:    group,
		openFile: openFile,
		trace:    trace,
		logger:   logger,
	}

	reader, err := it.open(group.Files[0].Path)
	if err != nil {
		return nil, err
	}
	it.reader = reader

	return it, nil
}

// Next returns the next notification in the group, or io.EOF once every
// file in the group has been exhausted.
func (it *Iterator) Next() (ctf.Notification, error) {
	n, err := it.reader.Next()
	if err == nil {
		ctfdebug.Global.NotificationsEmitted.Add(1)
		return n, nil
	}
	if !errors.Is(err, io.EOF) {
		return ctf.Notification{}, ctf.NewIOError("read %q: %w", it.group.Files[it.fileIdx].Path, err)
	}

	if err := it.reader.Close(); err != nil {
		it.logger.Debug("close stream file reader", zap.String("path", it.group.Files[it.fileIdx].Path), zap.Error(err))
	}
	it.reader = nil
	it.fileIdx++

	if it.fileIdx == len(it.group.Files) {
		return ctf.Notification{}, io.EOF
	}

	path := it.group.Files[it.fileIdx].Path
	reader, err := it.open(path)
	if err != nil {
		return ctf.Notification{}, err
	}
	it.reader = reader

	n, err = it.reader.Next()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return ctf.Notification{}, ctf.NewProtocolError("fresh stream file %q yielded immediate End", path)
		}
		return ctf.Notification{}, ctf.NewIOError("read %q: %w", path, err)
	}

	ctfdebug.Global.NotificationsEmitted.Add(1)
	return n, nil
}

// Finalize releases the reader and the iterator state. It is idempotent.
func (it *Iterator) Finalize() error {
	if it.reader == nil {
		return nil
	}
	err := it.reader.Close()
	it.reader = nil
	return err
}

// open opens path with a short retry window: transient "too many open
// files" style errors are worth a few attempts, decode errors are not.
func (it *Iterator) open(path string) (ctfio.StreamFileReader, error) {
	reader, err := retry.DoWithData(
		func() (ctfio.StreamFileReader, error) { return it.openFile(path, it.trace) },
		retry.Attempts(3),
		retry.Delay(5*time.Millisecond),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, ctf.NewIOError("open %q: %w", path, err)
	}
	return reader, nil
}
