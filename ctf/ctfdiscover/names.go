package ctfdiscover

import "strings"

// deriveDisplayNames computes display names for a set of absolute trace
// paths by stripping the longest common prefix P across all of them, where
// P ends at a '/' boundary. The result never starts with '/'. Input order is preserved in the output.
func deriveDisplayNames(paths []string) []string {
	prefix := longestCommonDirPrefix(paths)

	names := make([]string, len(paths))
	for i, path := range paths {
		names[i] = strings.TrimPrefix(path[len(prefix):], "/")
	}
	return names
}

// longestCommonDirPrefix returns the longest prefix shared by every path in
// paths, truncated so it ends exactly at a '/' (or is empty). With a single
// path, the prefix is everything up to and including its final '/', so that
// path's own base name becomes its display name.
func longestCommonDirPrefix(paths []string) string {
	if len(paths) == 0 {
		return ""
	}

	prefix := paths[0]
	for _, path := range paths[1:] {
		prefix = commonPrefix(prefix, path)
		if prefix == "" {
			break
		}
	}

	if len(paths) == 1 {
		if idx := strings.LastIndex(prefix, "/"); idx >= 0 {
			return prefix[:idx+1]
		}
		return ""
	}

	if idx := strings.LastIndex(prefix, "/"); idx >= 0 {
		return prefix[:idx+1]
	}
	return ""
}

func commonPrefix(a, b string) string {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return a[:i]
}
