// Package ctfdiscover implements TraceDiscovery: recursively walking a root
// path to find CTF trace directories.
package ctfdiscover

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/barometric/ctf-fs/ctf"
)

// maxConcurrentWalks bounds the fan-out of the errgroup that walks
// subdirectories concurrently; unbounded fan-out would exhaust file
// descriptors on traces with very deep directory trees.
const maxConcurrentWalks = 32

// DiscoveredTrace is one CTF trace directory found under a root path, paired
// with the display name TraceDiscovery derived for it.
type DiscoveredTrace struct {
	AbsPath     string
	DisplayName string
}

// Discover resolves rootPath to a canonical absolute path and recursively
// walks it, returning every CTF trace directory found (a directory
// containing a regular file named "metadata"), annotated with a display
// name unique among the result set.
//
// Discover never recurses into a trace directory once found.
// Permission-denied subdirectories are skipped with a debug log line, not
// fatal. An empty result, a missing root, or a root that resolves to "/"
// are all config errors.
func Discover(ctx context.Context, logger *zap.Logger, rootPath string) ([]DiscoveredTrace, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	root, err := resolveRoot(rootPath)
	if err != nil {
		return nil, ctf.NewConfigError("resolve root path %q: %w", rootPath, err)
	}

	if root == string(filepath.Separator) {
		return nil, ctf.NewConfigError("root path resolves to filesystem root %q", root)
	}

	var (
		mu    sync.Mutex
		found []string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentWalks)

	var walk func(dir string) error
	walk = func(dir string) error {
		select {
		case <-gctx.Done():
			return gctx.Err()
		default:
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			if os.IsPermission(err) {
				logger.Debug("skipping unreadable directory", zap.String("dir", dir), zap.Error(err))
				return nil
			}
			if dir == root {
				return ctf.NewIOError("read root directory %q: %w", dir, err)
			}
			logger.Debug("skipping directory", zap.String("dir", dir), zap.Error(err))
			return nil
		}

		if hasMetadataFile(entries) {
			mu.Lock()
			found = append(found, dir)
			mu.Unlock()
			return nil // do not descend into a trace directory
		}

		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			sub := filepath.Join(dir, entry.Name())
			g.Go(func() error { return walk(sub) })
		}

		return nil
	}

	if err := walk(root); err != nil {
		return nil, err
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if len(found) == 0 {
		return nil, ctf.NewConfigError("no CTF traces found under %q", root)
	}

	sort.Strings(found)

	names := deriveDisplayNames(found)
	traces := make([]DiscoveredTrace, len(found))
	for i, path := range found {
		traces[i] = DiscoveredTrace{AbsPath: path, DisplayName: names[i]}
	}

	return traces, nil
}

// hasMetadataFile reports whether entries contains a regular file named
// "metadata".
func hasMetadataFile(entries []os.DirEntry) bool {
	for _, entry := range entries {
		if entry.IsDir() || entry.Name() != "metadata" {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.Mode().IsRegular() {
			return true
		}
	}
	return false
}

// resolveRoot canonicalizes rootPath: absolute, symlinks resolved, trailing
// slashes collapsed. Transient stat failures (e.g. EINTR on a busy NFS
// mount) are retried a handful of times before surfacing.
func resolveRoot(rootPath string) (string, error) {
	abs, err := filepath.Abs(rootPath)
	if err != nil {
		return "", err
	}

	resolved, err := retry.DoWithData(
		func() (string, error) { return filepath.EvalSymlinks(abs) },
		retry.Attempts(3),
		retry.Delay(10*time.Millisecond),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return "", fmt.Errorf("eval symlinks: %w", err)
	}

	return filepath.Clean(resolved), nil
}
