// Package indexer implements the core of the engine: a single sequential
// pass per source file that detects record boundaries (via an
// injected scanner.Strategy), discovers and validates each record's line
// geometry, and emits a packed descriptor into the persistent index store.
package indexer

import (
	"bytes"
	"fmt"
	"os"

	"github.com/bits-and-blooms/bloom/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/havingwolf/seqidx/descriptor"
	"github.com/havingwolf/seqidx/errtax"
	"github.com/havingwolf/seqidx/registry"
	"github.com/havingwolf/seqidx/scanner"
	"github.com/havingwolf/seqidx/store"
)

// Indexer walks source files and populates a store.Store with packed
// descriptors. One Indexer is bound to a single codec for its whole
// lifetime.
type Indexer struct {
	Strategy    scanner.Strategy
	Codec       descriptor.Codec
	Registry    *registry.Registry
	IDTransform func(headerLine []byte) string // optional override of scanner.DefaultID
	Lenient     bool                            // best-effort geometry instead of fatal
	Logger      *zap.Logger                     // nil disables logging
	Debug       bool
	Filter      *bloom.BloomFilter // optional; Add(id) called per emitted record
}

// Stats summarizes one IndexFile/IndexFiles pass.
type Stats struct {
	FilesIndexed       int
	RecordsIndexed     int
	GeometryViolations int
}

func (ix *Indexer) log() *zap.Logger {
	if ix.Logger == nil {
		return zap.NewNop()
	}
	return ix.Logger
}

// IndexFiles runs IndexFile over every path in order, accumulating
// per-file statistics. Under the lenient policy, interior line-geometry
// violations never reach this level: IndexFile logs them and indexes the
// record with best-effort geometry. Any other per-file error (I/O,
// LineTooLong, a full registry) does not abort a lenient pass either; such
// errors are combined into the returned error (via go.uber.org/multierr),
// and Stats.GeometryViolations counts the files that returned one. Under
// the strict (default) policy, the first violation or I/O error aborts
// and is returned alone.
func (ix *Indexer) IndexFiles(st store.Store, paths []string) (Stats, error) {
	var stats Stats
	var combined error

	for _, path := range paths {
		n, err := ix.IndexFile(st, path)
		stats.RecordsIndexed += n
		if err != nil {
			if !ix.Lenient {
				return stats, err
			}
			combined = multierr.Append(combined, err)
			stats.GeometryViolations++
		}
		stats.FilesIndexed++
	}

	return stats, combined
}

// IndexFile performs a single sequential pass over one file: header
// detection and boundary discovery are delegated to ix.Strategy; geometry
// discovery, validation, length computation, and descriptor assembly
// happen here.
func (ix *Indexer) IndexFile(st store.Store, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("indexer: reading %s: %w", path, err)
	}

	fileNo, err := ix.Registry.Register(path)
	if err != nil {
		return 0, fmt.Errorf("indexer: registering %s: %w", path, err)
	}

	var count int
	var scanErr error

	err = ix.Strategy.ScanRecords(data, func(headerLine []byte, contentStart, recordEnd int64) {
		if scanErr != nil {
			return
		}

		id := ix.resolveID(headerLine)

		d, classifyLine, gerr := ix.geometry(path, data, contentStart, recordEnd)
		if gerr != nil {
			scanErr = gerr
			return
		}

		d.Offset = uint64(contentStart)
		d.FileNo = fileNo
		d.PayloadKind = ix.Strategy.Classify(classifyLine)

		if ix.Debug {
			if _, exists, _ := st.Get([]byte(id)); exists {
				ix.log().Warn("record id collision: last write wins",
					zap.String("id", id), zap.String("file", path))
			}
		}

		packed, perr := ix.Codec.Pack(d)
		if perr != nil {
			scanErr = fmt.Errorf("indexer: %s: %s: %w", path, id, perr)
			return
		}

		if perr := st.Put([]byte(id), packed); perr != nil {
			scanErr = perr
			return
		}

		if ix.Filter != nil {
			ix.Filter.Add([]byte(id))
		}
		count++
	})
	if err != nil {
		return count, fmt.Errorf("indexer: scanning %s: %w", path, err)
	}
	if scanErr != nil {
		return count, scanErr
	}

	ix.log().Debug("indexed file", zap.String("path", path), zap.Int("records", count))
	return count, nil
}

func (ix *Indexer) resolveID(headerLine []byte) string {
	if ix.IDTransform != nil {
		return ix.IDTransform(headerLine)
	}
	return scanner.DefaultID(headerLine)
}

// geometry discovers and validates one record's line geometry and returns
// a Descriptor with Offset/FileNo/PayloadKind still zero (the caller fills
// those in). classifyLine is the first content line with its terminator
// stripped, suitable for Strategy.Classify.
func (ix *Indexer) geometry(path string, data []byte, contentStart, recordEnd int64) (descriptor.Descriptor, []byte, error) {
	content := data[contentStart:recordEnd]
	lines := splitLines(content)

	if len(lines) == 0 {
		return descriptor.Descriptor{LineLength: 1, TerminatorLength: 1}, nil, nil
	}

	first := lines[0]
	if len(first) > descriptor.MaxLineLength {
		return descriptor.Descriptor{}, nil, errtax.ErrLineTooLong
	}
	firstTerm := terminatorLen(first)

	if len(lines) == 1 {
		term := firstTerm
		if term == 0 {
			term = 1
		}
		payload := len(first) - firstTerm
		d := descriptor.Descriptor{
			SeqLength:        uint64(payload),
			LineLength:       uint16(payload + term),
			TerminatorLength: uint16(term),
		}
		return d, first[:payload], nil
	}

	if firstTerm == 0 {
		return descriptor.Descriptor{}, nil, &errtax.LineGeometryViolation{
			File: path, Line: lineNumberAt(data, contentStart), Expected: -1, Actual: len(first),
		}
	}

	lineLength := len(first)
	payloadPerLine := lineLength - firstTerm
	seq := uint64(payloadPerLine)
	classify := first[:payloadPerLine]

	lineOffset := contentStart + int64(lineLength)
	for i := 1; i < len(lines)-1; i++ {
		line := lines[i]
		if len(line) > descriptor.MaxLineLength {
			return descriptor.Descriptor{}, nil, errtax.ErrLineTooLong
		}
		lt := terminatorLen(line)
		if len(line) != lineLength || lt != firstTerm {
			violation := &errtax.LineGeometryViolation{
				File: path, Line: lineNumberAt(data, lineOffset), Expected: lineLength, Actual: len(line),
			}
			if !ix.Lenient {
				return descriptor.Descriptor{}, nil, violation
			}
			ix.log().Warn("line geometry violation (lenient): record indexed with best-effort geometry",
				zap.String("file", violation.File), zap.Int("line", violation.Line),
				zap.Int("expected", violation.Expected), zap.Int("actual", violation.Actual))
			seq += uint64(len(line) - lt)
			lineOffset += int64(len(line))
			continue
		}
		seq += uint64(payloadPerLine)
		lineOffset += int64(len(line))
	}

	last := lines[len(lines)-1]
	lastTerm := terminatorLen(last)
	seq += uint64(len(last) - lastTerm)

	d := descriptor.Descriptor{
		SeqLength:        seq,
		LineLength:       uint16(lineLength),
		TerminatorLength: uint16(firstTerm),
	}
	return d, classify, nil
}

// splitLines splits content into lines, each retaining its trailing
// terminator bytes (if any); the final element has none iff content does
// not end in a newline.
func splitLines(content []byte) [][]byte {
	var lines [][]byte
	start := 0
	for start < len(content) {
		idx := bytes.IndexByte(content[start:], '\n')
		if idx < 0 {
			lines = append(lines, content[start:])
			break
		}
		end := start + idx + 1
		lines = append(lines, content[start:end])
		start = end
	}
	return lines
}

// terminatorLen measures the line terminator width: 2 for CRLF, 1 for LF,
// 0 if the line has neither (only valid for the final line of a file with
// no trailing newline).
func terminatorLen(line []byte) int {
	n := len(line)
	if n >= 2 && line[n-2] == '\r' && line[n-1] == '\n' {
		return 2
	}
	if n >= 1 && line[n-1] == '\n' {
		return 1
	}
	return 0
}

func lineNumberAt(data []byte, pos int64) int {
	if pos > int64(len(data)) {
		pos = int64(len(data))
	}
	return bytes.Count(data[:pos], []byte{'\n'}) + 1
}
