// Package ctfquery implements the out-of-band metadata-info query surface:
// given a trace directory's metadata file, return its textual CTF schema,
// de-packetizing it first if necessary.
package ctfquery

import (
	"github.com/barometric/ctf-fs/ctf/ctfio"
)

// MetadataInfo is the result of a metadata-info query: the full textual CTF
// metadata, always beginning with the "/* CTF 1.8" signature, and whether
// the on-disk file was packetized (binary-framed) before decoding.
type MetadataInfo struct {
	Text         string
	IsPacketized bool
}

// Query answers query("metadata-info", {path}) -> {text, is-packetized}.
// decode is the external packetized-metadata decoder; it may be nil if path
// is known never to be packetized.
func Query(path string, decode ctfio.PacketizedDecoder) (MetadataInfo, error) {
	text, isPacketized, err := ctfio.ReadMetadataText(path, decode)
	if err != nil {
		return MetadataInfo{}, err
	}
	return MetadataInfo{Text: text, IsPacketized: isPacketized}, nil
}
