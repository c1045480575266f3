package seqidx

import (
	"fmt"
	"io"
	"iter"

	"github.com/havingwolf/seqidx/descriptor"
	"github.com/havingwolf/seqidx/errtax"
	"github.com/havingwolf/seqidx/store"
	"github.com/havingwolf/seqidx/translate"
)

// lookup resolves id to its descriptor via the persistent store, the
// single point Length, Path, Subseq and SubseqQuery go through.
func (e *Engine) lookup(id string) (descriptor.Descriptor, error) {
	v, ok, err := e.st.Get([]byte(id))
	if err != nil {
		return descriptor.Descriptor{}, &errtax.IoError{Op: "store.Get", Err: err}
	}
	if !ok {
		return descriptor.Descriptor{}, fmt.Errorf("%w: %s", errtax.ErrUnknownId, id)
	}
	return e.codec.Unpack(v)
}

// Length returns id's total content length (seq_length), excluding header
// and line terminators.
func (e *Engine) Length(id string) (int64, error) {
	d, err := e.lookup(id)
	if err != nil {
		return 0, err
	}
	return int64(d.SeqLength), nil
}

// Contains reports whether id is present in the index. When a Bloom filter
// was built, a negative answer is returned without touching the store; a
// positive one is always confirmed there since Bloom filters admit false
// positives but never false negatives.
func (e *Engine) Contains(id string) bool {
	if e.filter != nil && !e.filter.Test([]byte(id)) {
		return false
	}
	_, ok, err := e.st.Get([]byte(id))
	return err == nil && ok
}

// Path returns the absolute path of the source file id's record lives in.
func (e *Engine) Path(id string) (string, error) {
	d, err := e.lookup(id)
	if err != nil {
		return "", err
	}
	p, ok := e.reg.Path(d.FileNo)
	if !ok {
		return "", fmt.Errorf("seqidx: file_no %d not registered: %w", d.FileNo, errtax.ErrIndexUnavailable)
	}
	return p, nil
}

// Subseq returns the content bytes in [start, stop] (1-based, inclusive)
// of id. start or stop of 0 takes the default (1 and the record's full
// length respectively); start > stop is accepted and
// resolved to the same forward byte range with Strand recorded as -1 (use
// SubseqQuery to get that metadata back).
func (e *Engine) Subseq(id string, start, stop int64) ([]byte, error) {
	d, err := e.lookup(id)
	if err != nil {
		return nil, err
	}
	r := translate.Resolve(start, stop, int64(d.SeqLength))
	return e.readRange(d, r)
}

// SubseqQuery resolves a compound query string ("chr1:5,12", "chr1:12..5",
// "chr1:5-12", or a bare id taking the whole record) and returns the
// selected bytes together with the resolved Range, which carries the
// strand implied by the caller's argument order.
func (e *Engine) SubseqQuery(query string) ([]byte, translate.Range, error) {
	id, start, stop, ok := translate.ParseCompound(query)
	if !ok {
		id, start, stop = query, 0, 0
	}

	d, err := e.lookup(id)
	if err != nil {
		return nil, translate.Range{}, err
	}

	r := translate.Resolve(start, stop, int64(d.SeqLength))
	b, err := e.readRange(d, r)
	return b, r, err
}

// readRange reads the forward byte range r describes out of id's source
// file, honoring line wrapping: it walks one content line's worth of
// bytes at a time using the same offset formula translate.ByteOffset
// exposes for a single point, so the grid it reads against is identical
// either way.
func (e *Engine) readRange(d descriptor.Descriptor, r translate.Range) ([]byte, error) {
	path, ok := e.reg.Path(d.FileNo)
	if !ok {
		return nil, fmt.Errorf("seqidx: file_no %d not registered: %w", d.FileNo, errtax.ErrIndexUnavailable)
	}

	f, err := e.cache.Acquire(path)
	if err != nil {
		return nil, &errtax.IoError{Op: "open", Err: err}
	}

	payloadPerLine := d.PayloadPerLine()
	if payloadPerLine <= 0 {
		return nil, fmt.Errorf("seqidx: descriptor has non-positive payload_per_line")
	}
	if r.Stop < r.Start {
		return nil, nil
	}

	out := make([]byte, 0, r.Stop-r.Start+1)
	n := r.Start
	for n <= r.Stop {
		col := (n - 1) % payloadPerLine
		chunkStart := translate.ByteOffset(d, n)

		remainInLine := payloadPerLine - col
		remainWanted := r.Stop - n + 1
		chunkLen := remainInLine
		if remainWanted < chunkLen {
			chunkLen = remainWanted
		}

		buf := make([]byte, chunkLen)
		if _, err := f.ReadAt(buf, chunkStart); err != nil && err != io.EOF {
			return nil, &errtax.IoError{Op: "read", Err: err}
		}
		out = append(out, buf...)
		n += chunkLen
	}

	return out, nil
}

// Ids enumerates every record id in the index, in the store's native key
// order, skipping reserved meta-keys.
func (e *Engine) Ids() iter.Seq[string] {
	return func(yield func(string) bool) {
		for key := range e.st.IterateKeys() {
			if store.IsReservedKey(key) {
				continue
			}
			if !yield(string(key)) {
				return
			}
		}
	}
}

// Len reports the number of indexed records.
func (e *Engine) Len() int {
	n := 0
	for range e.Ids() {
		n++
	}
	return n
}
