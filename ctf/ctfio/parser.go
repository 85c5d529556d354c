package ctfio

import "github.com/barometric/ctf-fs/ctf"

// MetadataParser turns the raw text of a trace's metadata file into a
// populated Trace schema: its stream classes, event classes, and clock
// classes. This is the CTF metadata grammar parser, an external
// collaborator; Component.buildTrace calls it once per discovered trace.
type MetadataParser interface {
	ParseMetadata(name, text string) (*ctf.Trace, error)
}

// MetadataParserFunc adapts a plain function to MetadataParser.
type MetadataParserFunc func(name, text string) (*ctf.Trace, error)

func (f MetadataParserFunc) ParseMetadata(name, text string) (*ctf.Trace, error) {
	return f(name, text)
}

// PacketizedDecoder reconstructs the textual CTF metadata from a packetized
// (binary-framed) metadata file, for ReadMetadataText, which serves both
// ctfquery.Query and the source's trace construction.
type PacketizedDecoder interface {
	DecodePacketizedMetadata(raw []byte) (text string, err error)
}

// PacketizedDecoderFunc adapts a plain function to PacketizedDecoder.
type PacketizedDecoderFunc func(raw []byte) (string, error)

func (f PacketizedDecoderFunc) DecodePacketizedMetadata(raw []byte) (string, error) {
	return f(raw)
}
