// Package translate implements the coordinate translator: the O(1)
// arithmetic that turns a (record_id, start, stop) query into an exact
// byte range in a source file, honoring line wrapping, strand, and the
// compound-id query grammar.
package translate

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/havingwolf/seqidx/descriptor"
)

// compoundPattern matches "<core_id>:<a><sep><b>" with optional '_'
// thousands separators in the numbers.
var compoundPattern = regexp.MustCompile(`^(.+):([0-9_]+)(?:,|-|\.\.)([0-9_]+)$`)

// ParseCompound splits a query string of the form "chr1:5,12" (or
// "chr1:12..5", "chr1:5-12") into (core id, start, stop). ok is false if
// query does not match the compound grammar, in which case query should be
// used verbatim as a plain id with default start/stop.
func ParseCompound(query string) (id string, start, stop int64, ok bool) {
	m := compoundPattern.FindStringSubmatch(query)
	if m == nil {
		return "", 0, 0, false
	}

	a, errA := strconv.ParseInt(strings.ReplaceAll(m[2], "_", ""), 10, 64)
	b, errB := strconv.ParseInt(strings.ReplaceAll(m[3], "_", ""), 10, 64)
	if errA != nil || errB != nil {
		return "", 0, 0, false
	}

	return m[1], a, b, true
}

// Range is a resolved, clamped query range plus the strand metadata it
// implies.
type Range struct {
	Start  int64 // 1-based, inclusive, forward order (Start <= Stop)
	Stop   int64 // 1-based, inclusive
	Strand int8  // +1 if the caller's start <= stop, -1 if they were reversed
}

// Resolve applies defaulting, strand detection from start>stop, and
// clamping to [1, seqLength]. start or stop of 0 means "not supplied" and
// takes its default (1 and seqLength respectively).
func Resolve(start, stop, seqLength int64) Range {
	if start == 0 {
		start = 1
	}
	if stop == 0 {
		stop = seqLength
	}

	strand := int8(1)
	if start > stop {
		start, stop = stop, start
		strand = -1
	}

	if start < 1 {
		start = 1
	}
	if stop > seqLength {
		stop = seqLength
	}

	return Range{Start: start, Stop: stop, Strand: strand}
}

// ByteOffset computes the absolute byte offset of the n-th (1-based)
// content byte of a record described by d. This is the O(1) calculation at
// the heart of the data structure: no scanning.
func ByteOffset(d descriptor.Descriptor, n int64) int64 {
	payloadPerLine := d.PayloadPerLine()
	k := n - 1
	return int64(d.Offset) + int64(d.LineLength)*(k/payloadPerLine) + (k % payloadPerLine)
}
