// Package ctfdebug holds process-wide debug counters, gated by the
// CTF_FS_DEBUG environment variable: pipeline throughput counters rather
// than object-pool reuse stats, since this module has no pool of its own.
package ctfdebug

import (
	"os"
	"sync/atomic"
)

// Counters tracks pipeline-wide throughput for debug reporting.
type Counters struct {
	FilesDiscovered      atomic.Uint64
	GroupsFormed         atomic.Uint64
	NotificationsEmitted atomic.Uint64
	PacketsMirrored      atomic.Uint64
	SchemaElementsCopied atomic.Uint64
}

// Values returns a snapshot of every counter.
func (c *Counters) Values() map[string]uint64 {
	return map[string]uint64{
		"files_discovered":       c.FilesDiscovered.Load(),
		"groups_formed":          c.GroupsFormed.Load(),
		"notifications_emitted":  c.NotificationsEmitted.Load(),
		"packets_mirrored":       c.PacketsMirrored.Load(),
		"schema_elements_copied": c.SchemaElementsCopied.Load(),
	}
}

// Global is the process-wide counter set.
var Global Counters

// Enabled reports whether CTF_FS_DEBUG=1 is set in the environment.
func Enabled() bool {
	return os.Getenv("CTF_FS_DEBUG") == "1"
}
