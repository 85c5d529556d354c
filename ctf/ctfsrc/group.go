package ctfsrc

import (
	"sort"

	"github.com/barometric/ctf-fs/ctf"
	"github.com/barometric/ctf-fs/ctf/ctfio"
)

// StreamFileInfo is one on-disk file belonging to a StreamFileGroup.
type StreamFileInfo struct {
	Path       string
	BeginNS    int64
	HasBeginNS bool
}

// StreamFileGroup is an ordered collection of stream files that together
// compose one logical Stream: all files share a (StreamClass, instance id),
// ordered by BeginNS ascending. If the group has no instance id, it is a
// singleton.
type StreamFileGroup struct {
	StreamClass *ctf.StreamClass

	InstanceID    int64
	HasInstanceID bool

	Files []StreamFileInfo
}

type groupKey struct {
	streamClass *ctf.StreamClass
	instanceID  int64
}

// Group partitions paths into StreamFileGroups. Each path is inspected via
// insp; a file whose stream class cannot be resolved fails the whole call
// -- in the absence of partial-result semantics in the interface, Group
// surfaces the first such failure to its caller, which may choose to skip
// the offending trace entirely.
func Group(trace *ctf.Trace, paths []string, insp ctfio.HeaderInspector) ([]*StreamFileGroup, error) {
	var (
		groups []*StreamFileGroup
		index  = map[groupKey]*StreamFileGroup{}
	)

	for _, path := range paths {
		res, err := Inspect(path, trace, insp)
		if err != nil {
			return nil, err
		}

		info := StreamFileInfo{Path: path, BeginNS: res.BeginNS, HasBeginNS: res.HasBeginNS}

		// No ordering key means no sharing: force a singleton group.
		hasInstanceID := res.HasInstanceID && res.HasBeginNS

		if !hasInstanceID {
			groups = append(groups, &StreamFileGroup{
				StreamClass: res.StreamClass,
				Files:       []StreamFileInfo{info},
			})
			continue
		}

		key := groupKey{streamClass: res.StreamClass, instanceID: res.InstanceID}
		g, ok := index[key]
		if !ok {
			g = &StreamFileGroup{
				StreamClass:   res.StreamClass,
				InstanceID:    res.InstanceID,
				HasInstanceID: true,
			}
			index[key] = g
			groups = append(groups, g)
		}
		g.insert(info)
	}

	return groups, nil
}

// insert places info into the group's file list at the position that keeps
// Files sorted by BeginNS ascending, with ties resolved by insertion order.
func (g *StreamFileGroup) insert(info StreamFileInfo) {
	pos := sort.Search(len(g.Files), func(i int) bool {
		return g.Files[i].BeginNS > info.BeginNS
	})
	g.Files = append(g.Files, StreamFileInfo{})
	copy(g.Files[pos+1:], g.Files[pos:])
	g.Files[pos] = info
}
