package registry

import "testing"

func TestRegisterIsIdempotent(t *testing.T) {
	r := New()

	a, err := r.Register("/data/chr.fa")
	if err != nil {
		t.Fatal(err)
	}
	b, err := r.Register("/data/chr.fa")
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Fatalf("repeated Register returned different numbers: %d != %d", a, b)
	}

	c, err := r.Register("/data/other.fa")
	if err != nil {
		t.Fatal(err)
	}
	if c == a {
		t.Fatalf("distinct paths got the same file number %d", a)
	}
}

func TestPathAndFileNo(t *testing.T) {
	r := New()
	no, _ := r.Register("/a.fa")

	p, ok := r.Path(no)
	if !ok || p != "/a.fa" {
		t.Fatalf("Path(%d) = %q, %v", no, p, ok)
	}

	got, ok := r.FileNo("/a.fa")
	if !ok || got != no {
		t.Fatalf("FileNo round trip mismatch: got %d, want %d", got, no)
	}

	if _, ok := r.Path(99); ok {
		t.Fatal("expected Path of unregistered file_no to be absent")
	}
}

func TestPutReservesFollowingNumbers(t *testing.T) {
	r := New()
	r.Put(5, "/reopened.fa")

	no, err := r.Register("/new.fa")
	if err != nil {
		t.Fatal(err)
	}
	if no <= 5 {
		t.Fatalf("Register after Put(5, ...) returned %d, want > 5", no)
	}
}

func TestEntriesSortedByFileNo(t *testing.T) {
	r := New()
	r.Put(3, "/c.fa")
	r.Put(1, "/a.fa")
	r.Put(2, "/b.fa")

	entries := r.Entries()
	if len(entries) != 3 {
		t.Fatalf("len(entries) = %d, want 3", len(entries))
	}
	for i := 1; i < len(entries); i++ {
		if entries[i-1].FileNo >= entries[i].FileNo {
			t.Fatalf("entries not sorted: %v", entries)
		}
	}
}

func TestRegisterFull(t *testing.T) {
	r := New()
	for i := 0; i < 256; i++ {
		if _, err := r.Register(string(rune(i))); err != nil {
			t.Fatalf("unexpected error at %d: %v", i, err)
		}
	}

	if _, err := r.Register("overflow"); err != ErrFull {
		t.Fatalf("expected ErrFull, got %v", err)
	}
}
