package store

import (
	"path/filepath"
	"testing"
)

func TestOpenPutGetIterateClose(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "idx")

	s, err := Open(path, ModeCreateRW)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	if err := s.Put([]byte("chr1"), []byte("descriptor-bytes")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.Put([]byte("chr2"), []byte("other-bytes")); err != nil {
		t.Fatalf("Put: %v", err)
	}

	v, ok, err := s.Get([]byte("chr1"))
	if err != nil || !ok || string(v) != "descriptor-bytes" {
		t.Fatalf("Get(chr1) = %q, %v, %v", v, ok, err)
	}

	_, ok, err = s.Get([]byte("missing"))
	if err != nil || ok {
		t.Fatalf("Get(missing) = ok=%v, err=%v, want ok=false", ok, err)
	}

	var keys []string
	for k := range s.IterateKeys() {
		keys = append(keys, string(k))
	}
	if len(keys) != 2 {
		t.Fatalf("IterateKeys returned %v, want 2 keys", keys)
	}

	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	// Reopen read-only and confirm the data survived.
	ro, err := Open(path, ModeRead)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer ro.Close()

	v, ok, err = ro.Get([]byte("chr2"))
	if err != nil || !ok || string(v) != "other-bytes" {
		t.Fatalf("reopened Get(chr2) = %q, %v, %v", v, ok, err)
	}

	if err := ro.Put([]byte("x"), []byte("y")); err == nil {
		t.Fatal("expected Put on read-only store to fail")
	}
}

func TestOpenReadMissingFails(t *testing.T) {
	dir := t.TempDir()
	if _, err := Open(filepath.Join(dir, "absent"), ModeRead); err == nil {
		t.Fatal("expected error opening absent store read-only")
	}
}

func TestSentinelLifecycle(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "idx")

	if SentinelSet(path) {
		t.Fatal("sentinel should not be set before WriteSentinel")
	}

	if err := WriteSentinel(path); err != nil {
		t.Fatalf("WriteSentinel: %v", err)
	}
	if !SentinelSet(path) {
		t.Fatal("expected sentinel to be set")
	}

	if err := ClearSentinel(path); err != nil {
		t.Fatalf("ClearSentinel: %v", err)
	}
	if SentinelSet(path) {
		t.Fatal("sentinel should be cleared")
	}
}

func TestIsReservedKey(t *testing.T) {
	cases := map[string]bool{
		"__codec__":    true,
		"__sentinel__": true,
		"__file_3__":   true,
		"chr1":         false,
		"__weird":      false,
	}
	for k, want := range cases {
		if got := IsReservedKey([]byte(k)); got != want {
			t.Errorf("IsReservedKey(%q) = %v, want %v", k, got, want)
		}
	}
}
