package translate

import (
	"testing"

	"github.com/havingwolf/seqidx/descriptor"
)

// tiny.fa, LF terminators:
//
//	>chr1 foo
//	AAAACCCC
//	GGGGTTTT
//	N
//
// header ends at byte 10 (">chr1 foo\n"), so content starts at offset 10.
// line_length = 9 (8 payload + 1 LF), terminator_length = 1, seq_length = 17.
var tinyDescriptor = descriptor.Descriptor{
	Offset:           10,
	SeqLength:        17,
	LineLength:       9,
	TerminatorLength: 1,
}

func TestByteOffsetWrapsAcrossLines(t *testing.T) {
	tests := []struct {
		n    int64
		want int64
	}{
		{1, 10},  // first A
		{8, 17},  // last C of AAAACCCC
		{9, 19},  // first G of GGGGTTTT (skips the LF at byte 18)
		{17, 28}, // the final N
	}
	for _, tt := range tests {
		if got := ByteOffset(tinyDescriptor, tt.n); got != tt.want {
			t.Errorf("ByteOffset(%d) = %d, want %d", tt.n, got, tt.want)
		}
	}
}

func TestParseCompound(t *testing.T) {
	tests := []struct {
		query      string
		id         string
		start, end int64
		ok         bool
	}{
		{"chr1:5,12", "chr1", 5, 12, true},
		{"chr1:12..5", "chr1", 12, 5, true},
		{"chr1:5-12", "chr1", 5, 12, true},
		{"chr1:1_000,2_000", "chr1", 1000, 2000, true},
		{"chr1", "", 0, 0, false},
		{"chr1:notanumber,3", "", 0, 0, false},
	}
	for _, tt := range tests {
		id, start, end, ok := ParseCompound(tt.query)
		if ok != tt.ok {
			t.Fatalf("ParseCompound(%q) ok = %v, want %v", tt.query, ok, tt.ok)
		}
		if !ok {
			continue
		}
		if id != tt.id || start != tt.start || end != tt.end {
			t.Errorf("ParseCompound(%q) = (%q, %d, %d), want (%q, %d, %d)", tt.query, id, start, end, tt.id, tt.start, tt.end)
		}
	}
}

func TestResolveDefaultsAndStrand(t *testing.T) {
	r := Resolve(0, 0, 17)
	if r.Start != 1 || r.Stop != 17 || r.Strand != 1 {
		t.Fatalf("Resolve(0,0,17) = %+v", r)
	}

	r = Resolve(12, 5, 17)
	if r.Start != 5 || r.Stop != 12 || r.Strand != -1 {
		t.Fatalf("Resolve(12,5,17) = %+v, want start=5 stop=12 strand=-1", r)
	}

	r = Resolve(-3, 100, 17)
	if r.Start != 1 || r.Stop != 17 {
		t.Fatalf("Resolve clamp = %+v, want start=1 stop=17", r)
	}
}
