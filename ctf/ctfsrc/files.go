package ctfsrc

import (
	"os"
	"path/filepath"
	"strings"
)

// listStreamFiles returns the regular, non-empty, non-hidden files of dir,
// excluding "metadata". Order is
// filesystem order; Group does not depend on input order.
func listStreamFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || name == "metadata" || strings.HasPrefix(name, ".") {
			continue
		}

		info, err := entry.Info()
		if err != nil || !info.Mode().IsRegular() || info.Size() == 0 {
			continue
		}

		paths = append(paths, filepath.Join(dir, name))
	}

	return paths, nil
}

// totalSize sums the on-disk size of paths, for debug logging. Any stat
// failure is treated as zero rather than failing the caller.
func totalSize(paths []string) uint64 {
	var total uint64
	for _, p := range paths {
		if info, err := os.Stat(p); err == nil {
			total += uint64(info.Size())
		}
	}
	return total
}
