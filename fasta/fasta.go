// Package fasta is a reference scanner.Strategy for FASTA-like files: a
// record begins with '>' at column 0, its header runs to the line
// terminator, and its content runs until the next header or EOF.
//
// This package is a consumer of the core engine, not part of it — concrete
// payload parsing lives outside the core, swapped in via scanner.Strategy.
package fasta

import (
	"bytes"

	"github.com/havingwolf/seqidx/scanner"
)

// Sentinel is the header-line marker this strategy recognizes.
const Sentinel = '>'

// Scanner implements scanner.Strategy for FASTA records.
type Scanner struct{}

// New returns a ready-to-use FASTA scanner.
func New() Scanner { return Scanner{} }

// ScanRecords implements scanner.Strategy.
func (Scanner) ScanRecords(data []byte, emit scanner.EmitFunc) error {
	n := int64(len(data))
	var pos int64

	for pos < n {
		if data[pos] != Sentinel {
			// Not at a header boundary; caller is expected to start
			// scanning at byte 0 of a well-formed file. Skip forward to
			// the next line start defensively rather than failing, since
			// leading blank lines are common in hand-edited FASTA files.
			nl := bytes.IndexByte(data[pos:], '\n')
			if nl < 0 {
				break
			}
			pos += int64(nl) + 1
			continue
		}

		headerEnd := bytes.IndexByte(data[pos:], '\n')
		var headerLine []byte
		var contentStart int64
		if headerEnd < 0 {
			headerLine = data[pos:n]
			contentStart = n
		} else {
			lineEnd := pos + int64(headerEnd)
			headerLine = trimCR(data[pos:lineEnd])
			contentStart = lineEnd + 1
		}

		// Find the next header at column 0, scanning line by line from
		// contentStart; recordEnd is that header's offset, or EOF.
		recordEnd := n
		cursor := contentStart
		for cursor < n {
			lineStart := cursor
			nl := bytes.IndexByte(data[cursor:], '\n')
			if nl < 0 {
				cursor = n
				break
			}
			cursor += int64(nl) + 1
			if lineStart < n && data[lineStart] == Sentinel {
				recordEnd = lineStart
				break
			}
		}

		emit(headerLine, contentStart, recordEnd)

		if headerEnd < 0 {
			break
		}
		pos = recordEnd
	}

	return nil
}

// Classify inspects the first content line's alphabet and returns a
// payload_kind tag: 1=DNA, 2=RNA, 3=protein, 0=unknown (empty line). This
// is a coarse heuristic: only A, C, G, T, U and N (either case) count as
// nucleotide letters, so any other byte, including the other IUPAC
// ambiguity codes, classifies the line as protein; U without T is RNA and
// everything else is DNA. It is adequate for a reference implementation
// but not a substitute for a format-aware classifier in a real deployment.
const (
	KindUnknown = scanner.KindUnknown
	KindDNA     uint8 = 1
	KindRNA     uint8 = 2
	KindProtein uint8 = 3
)

func (Scanner) Classify(firstContentLine []byte) uint8 {
	if len(firstContentLine) == 0 {
		return KindUnknown
	}

	var hasU, hasT, other bool
	for _, b := range firstContentLine {
		switch b {
		case 'A', 'C', 'G', 'N', 'a', 'c', 'g', 'n':
			// common to DNA, RNA, and ambiguity codes
		case 'T', 't':
			hasT = true
		case 'U', 'u':
			hasU = true
		default:
			other = true
		}
	}

	switch {
	case other:
		return KindProtein
	case hasU && !hasT:
		return KindRNA
	default:
		return KindDNA
	}
}

func trimCR(line []byte) []byte {
	if n := len(line); n > 0 && line[n-1] == '\r' {
		return line[:n-1]
	}
	return line
}
