package ctfio

import (
	"encoding/binary"
	"fmt"
	"os"
	"strings"
)

// ctfMetadataMagic is the big-endian TSDL packetized-metadata magic number
// that marks a metadata file as binary-framed rather than plain text.
const ctfMetadataMagic uint32 = 0x75D11D57

// ctfSignature is the textual marker every CTF 1.8 metadata stream begins
// with.
const ctfSignature = "/* CTF 1.8"

const ctfSignatureLine = "/* CTF 1.8 */\n"

// ReadMetadataText reads path and returns its textual CTF metadata,
// de-packetizing via decode if the file is binary-framed.
// If the resulting text doesn't begin with the CTF 1.8 signature, one is
// prepended. Both ctfsrc's trace construction and ctfquery's metadata-info
// request share this helper so the two code paths can't disagree about what
// "the metadata text" means for a given file.
func ReadMetadataText(path string, decode PacketizedDecoder) (text string, isPacketized bool, err error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", false, fmt.Errorf("read %q: %w", path, err)
	}

	if len(raw) >= 4 && binary.BigEndian.Uint32(raw[:4]) == ctfMetadataMagic {
		if decode == nil {
			return "", true, fmt.Errorf("%q: packetized metadata has no decoder configured", path)
		}
		text, err = decode.DecodePacketizedMetadata(raw)
		if err != nil {
			return "", true, fmt.Errorf("decode packetized metadata %q: %w", path, err)
		}
		isPacketized = true
	} else {
		text = string(raw)
	}

	if !strings.HasPrefix(text, ctfSignature) {
		text = ctfSignatureLine + text
	}

	return text, isPacketized, nil
}
