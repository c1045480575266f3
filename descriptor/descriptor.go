// Package descriptor packs and unpacks the fixed-width record descriptor
// that is the atomic unit of the persistent index: the byte geometry of one
// sequence record inside its source file.
//
// Two wire layouts exist, chosen once per index build (see Select):
// a 32-bit variant for source files under 4GiB, and a 64-bit variant
// otherwise. Both are big-endian so an index built on one machine reopens
// identically on another of equal pointer width.
package descriptor

import (
	"encoding/binary"
	"fmt"
)

// Descriptor is the in-memory, codec-independent form of one record's
// geometry.
type Descriptor struct {
	Offset           uint64 // absolute byte offset of the first content byte
	SeqLength        uint64 // total content bytes, terminators and header excluded
	LineLength       uint16 // bytes of one full interior content line, terminator included
	TerminatorLength uint16 // 1 (LF) or 2 (CRLF)
	FileNo           uint8  // index into the file registry
	PayloadKind      uint8  // opaque tag, not interpreted by this package
}

// PayloadPerLine returns the number of content bytes carried by one
// interior line (the line length minus its terminator).
func (d Descriptor) PayloadPerLine() int64 {
	return int64(d.LineLength) - int64(d.TerminatorLength)
}

// Codec identifies which wire layout a descriptor was packed with. The
// choice is fixed for the lifetime of an index.
type Codec uint8

const (
	// Codec32 stores Offset and SeqLength as 32-bit fields. Selected when
	// every source file is no larger than 2^32-1 bytes.
	Codec32 Codec = 32
	// Codec64 stores Offset and SeqLength as 64-bit fields. Selected when
	// any source file exceeds 2^32-1 bytes.
	Codec64 Codec = 64
)

// maxUint32 is the largest file size still representable by Codec32.
const maxUint32 = 1<<32 - 1

// Select returns Codec64 iff maxFileSize exceeds what Codec32 can address.
func Select(maxFileSize uint64) Codec {
	if maxFileSize > maxUint32 {
		return Codec64
	}
	return Codec32
}

// String renders the codec the way it is persisted in the __codec__
// meta-key ("32" or "64").
func (c Codec) String() string {
	if c == Codec64 {
		return "64"
	}
	return "32"
}

// ParseCodec is the inverse of String, used when reopening a persisted
// index.
func ParseCodec(s string) (Codec, error) {
	switch s {
	case "32":
		return Codec32, nil
	case "64":
		return Codec64, nil
	default:
		return 0, fmt.Errorf("descriptor: unrecognized codec %q", s)
	}
}

// Size returns the packed byte width of a descriptor under this codec.
func (c Codec) Size() int {
	if c == Codec64 {
		return 8 + 8 + 2 + 2 + 1 + 1
	}
	return 4 + 4 + 2 + 2 + 1 + 1
}

// ErrOffsetOverflow is returned by Pack when a Codec32 descriptor's Offset
// or SeqLength cannot be represented in 32 bits.
var ErrOffsetOverflow = fmt.Errorf("descriptor: offset or seq_length overflows 32-bit codec")

// Pack serializes d under codec c.
func (c Codec) Pack(d Descriptor) ([]byte, error) {
	buf := make([]byte, c.Size())

	if c == Codec64 {
		binary.BigEndian.PutUint64(buf[0:8], d.Offset)
		binary.BigEndian.PutUint64(buf[8:16], d.SeqLength)
		binary.BigEndian.PutUint16(buf[16:18], d.LineLength)
		binary.BigEndian.PutUint16(buf[18:20], d.TerminatorLength)
		buf[20] = d.FileNo
		buf[21] = d.PayloadKind
		return buf, nil
	}

	if d.Offset > maxUint32 || d.SeqLength > maxUint32 {
		return nil, ErrOffsetOverflow
	}

	binary.BigEndian.PutUint32(buf[0:4], uint32(d.Offset))
	binary.BigEndian.PutUint32(buf[4:8], uint32(d.SeqLength))
	binary.BigEndian.PutUint16(buf[8:10], d.LineLength)
	binary.BigEndian.PutUint16(buf[10:12], d.TerminatorLength)
	buf[12] = d.FileNo
	buf[13] = d.PayloadKind
	return buf, nil
}

// ErrShortBuffer is returned by Unpack when buf is smaller than the
// codec's fixed width.
var ErrShortBuffer = fmt.Errorf("descriptor: buffer too short for codec")

// Unpack deserializes a descriptor packed with codec c.
func (c Codec) Unpack(buf []byte) (Descriptor, error) {
	if len(buf) < c.Size() {
		return Descriptor{}, ErrShortBuffer
	}

	var d Descriptor
	if c == Codec64 {
		d.Offset = binary.BigEndian.Uint64(buf[0:8])
		d.SeqLength = binary.BigEndian.Uint64(buf[8:16])
		d.LineLength = binary.BigEndian.Uint16(buf[16:18])
		d.TerminatorLength = binary.BigEndian.Uint16(buf[18:20])
		d.FileNo = buf[20]
		d.PayloadKind = buf[21]
		return d, nil
	}

	d.Offset = uint64(binary.BigEndian.Uint32(buf[0:4]))
	d.SeqLength = uint64(binary.BigEndian.Uint32(buf[4:8]))
	d.LineLength = binary.BigEndian.Uint16(buf[8:10])
	d.TerminatorLength = binary.BigEndian.Uint16(buf[10:12])
	d.FileNo = buf[12]
	d.PayloadKind = buf[13]
	return d, nil
}

// MaxLineLength is the largest interior line length (content + terminator)
// a descriptor can represent; enforced by the indexer as LineTooLong.
const MaxLineLength = 1<<16 - 1
