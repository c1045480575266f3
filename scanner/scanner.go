// Package scanner defines the capability the indexer core depends on but
// does not implement: recognizing record boundaries in a format-specific
// way, modeled as an injected strategy instead of subclass dispatch.
//
// The core (package indexer) owns geometry discovery, validation, and
// descriptor construction; a Strategy only locates where each record's
// header and content begin and end.
package scanner

// EmitFunc is called once per record a Strategy discovers. headerLine is
// the full header line including its sentinel byte but excluding its
// terminator; contentStart is the absolute byte offset of the first
// content byte; recordEnd is the absolute byte offset one past the
// record's last content byte (i.e. the offset of the next header, or EOF).
type EmitFunc func(headerLine []byte, contentStart, recordEnd int64)

// Strategy is the upper-layer collaborator that knows the sentinel byte
// for one payload format, and optionally classifies payload content. Id
// extraction is not part of it: the indexer derives ids from the emitted
// header line with DefaultID or a configured IDTransform. The core never
// interprets payload bytes itself.
type Strategy interface {
	// ScanRecords walks data once and calls emit for every record found.
	ScanRecords(data []byte, emit EmitFunc) error

	// Classify returns an opaque payload_kind tag for a record given its
	// first content line (terminator stripped). Implementations that do
	// not classify payloads should return KindUnknown.
	Classify(firstContentLine []byte) uint8
}

// KindUnknown is the default payload_kind a Strategy may return when it
// does not classify content.
const KindUnknown uint8 = 0

// DefaultID extracts a record id the default way: the substring from the
// byte after the sentinel up to the first space or tab. The indexer applies
// it to every header line a Strategy emits unless an IDTransform is
// configured.
func DefaultID(headerLine []byte) string {
	if len(headerLine) == 0 {
		return ""
	}
	body := headerLine[1:]
	end := len(body)
	for i, b := range body {
		if b == ' ' || b == '\t' {
			end = i
			break
		}
	}
	return string(body[:end])
}
