package indexer

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/havingwolf/seqidx/descriptor"
	"github.com/havingwolf/seqidx/errtax"
	"github.com/havingwolf/seqidx/fasta"
	"github.com/havingwolf/seqidx/registry"
	"github.com/havingwolf/seqidx/store"
)

func writeFile(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func openStore(t *testing.T) store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "idx"), store.ModeCreateRW)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

const tinyFA = ">chr1 foo\nAAAACCCC\nGGGGTTTT\nN\n"

func TestIndexFileSimpleExtraction(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "tiny.fa", tinyFA)

	st := openStore(t)
	ix := &Indexer{Strategy: fasta.New(), Codec: descriptor.Codec32, Registry: registry.New()}

	n, err := ix.IndexFile(st, path)
	if err != nil {
		t.Fatalf("IndexFile: %v", err)
	}
	if n != 1 {
		t.Fatalf("indexed %d records, want 1", n)
	}

	raw, ok, err := st.Get([]byte("chr1"))
	if err != nil || !ok {
		t.Fatalf("Get(chr1): ok=%v err=%v", ok, err)
	}
	d, err := descriptor.Codec32.Unpack(raw)
	if err != nil {
		t.Fatal(err)
	}

	if d.SeqLength != 17 {
		t.Errorf("SeqLength = %d, want 17", d.SeqLength)
	}
	if d.LineLength != 9 || d.TerminatorLength != 1 {
		t.Errorf("LineLength/TerminatorLength = %d/%d, want 9/1", d.LineLength, d.TerminatorLength)
	}
}

func TestIndexFileCRLF(t *testing.T) {
	dir := t.TempDir()
	contents := ">chr1 foo\r\nAAAACCCC\r\nGGGGTTTT\r\nN\r\n"
	path := writeFile(t, dir, "tiny_crlf.fa", contents)

	st := openStore(t)
	ix := &Indexer{Strategy: fasta.New(), Codec: descriptor.Codec32, Registry: registry.New()}

	if _, err := ix.IndexFile(st, path); err != nil {
		t.Fatalf("IndexFile: %v", err)
	}

	raw, _, _ := st.Get([]byte("chr1"))
	d, _ := descriptor.Codec32.Unpack(raw)

	if d.TerminatorLength != 2 {
		t.Errorf("TerminatorLength = %d, want 2", d.TerminatorLength)
	}
	if d.LineLength != 10 {
		t.Errorf("LineLength = %d, want 10", d.LineLength)
	}
	if d.SeqLength != 17 {
		t.Errorf("SeqLength = %d, want 17", d.SeqLength)
	}
}

func TestIndexFileGeometryViolationFatal(t *testing.T) {
	dir := t.TempDir()
	// Content lines of length 8,8,7,8 within a single record.
	contents := ">chr1\nAAAAAAAA\nCCCCCCCC\nGGGGGGG\nTTTTTTTT\n"
	path := writeFile(t, dir, "bad.fa", contents)

	st := openStore(t)
	ix := &Indexer{Strategy: fasta.New(), Codec: descriptor.Codec32, Registry: registry.New()}

	_, err := ix.IndexFile(st, path)
	var violation *errtax.LineGeometryViolation
	if !errors.As(err, &violation) {
		t.Fatalf("expected LineGeometryViolation, got %v", err)
	}
}

func TestIndexFileGeometryViolationLenient(t *testing.T) {
	dir := t.TempDir()
	contents := ">chr1\nAAAAAAAA\nCCCCCCCC\nGGGGGGG\nTTTTTTTT\n"
	path := writeFile(t, dir, "bad.fa", contents)

	st := openStore(t)
	ix := &Indexer{Strategy: fasta.New(), Codec: descriptor.Codec32, Registry: registry.New(), Lenient: true}

	n, err := ix.IndexFile(st, path)
	if err != nil {
		t.Fatalf("lenient IndexFile should not fail: %v", err)
	}
	if n != 1 {
		t.Fatalf("indexed %d records, want 1", n)
	}
}

func TestIndexFileLastWriteWins(t *testing.T) {
	dir := t.TempDir()
	path1 := writeFile(t, dir, "a.fa", ">chr1\nAAAA\n")
	path2 := writeFile(t, dir, "b.fa", ">chr1\nCCCCCCCC\n")

	st := openStore(t)
	reg := registry.New()
	ix := &Indexer{Strategy: fasta.New(), Codec: descriptor.Codec32, Registry: reg}

	if _, err := ix.IndexFile(st, path1); err != nil {
		t.Fatal(err)
	}
	if _, err := ix.IndexFile(st, path2); err != nil {
		t.Fatal(err)
	}

	raw, _, _ := st.Get([]byte("chr1"))
	d, _ := descriptor.Codec32.Unpack(raw)
	if d.SeqLength != 8 {
		t.Fatalf("SeqLength = %d, want 8 (second file's record should win)", d.SeqLength)
	}
	if d.FileNo != 1 {
		t.Fatalf("FileNo = %d, want 1 (second registered file)", d.FileNo)
	}
}

func TestIndexFileLineTooLong(t *testing.T) {
	dir := t.TempDir()
	huge := make([]byte, 70000)
	for i := range huge {
		huge[i] = 'A'
	}
	contents := ">chr1\n" + string(huge) + "\n"
	path := writeFile(t, dir, "huge.fa", contents)

	st := openStore(t)
	ix := &Indexer{Strategy: fasta.New(), Codec: descriptor.Codec32, Registry: registry.New()}

	_, err := ix.IndexFile(st, path)
	if !errors.Is(err, errtax.ErrLineTooLong) {
		t.Fatalf("expected ErrLineTooLong, got %v", err)
	}
}
