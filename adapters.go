package seqidx

import "iter"

// Tied is a read-only, map-like view over an Engine: code written against
// a plain map[string][]byte can
// target Tied with only its lookup and iteration calls changed, instead of
// threading Engine's richer query surface through unrelated call sites.
type Tied struct {
	eng *Engine
}

// AsTied wraps e in the map-like adapter.
func (e *Engine) AsTied() Tied { return Tied{eng: e} }

// Get returns id's full content and whether it was found. Errors other
// than "not found" (I/O failures) are folded into ok=false, matching the
// map[string][]byte idiom this adapter stands in for; callers that need
// the distinction should use Engine.Subseq directly.
func (t Tied) Get(id string) ([]byte, bool) {
	b, err := t.eng.Subseq(id, 1, 0)
	if err != nil {
		return nil, false
	}
	return b, true
}

// Has reports whether id is present, without reading its content.
func (t Tied) Has(id string) bool { return t.eng.Contains(id) }

// Keys enumerates every id, mirroring maps.Keys over a real Go map.
func (t Tied) Keys() iter.Seq[string] { return t.eng.Ids() }

// Len reports the number of records.
func (t Tied) Len() int { return t.eng.Len() }

// StreamRecord is one (id, full sequence) pair yielded by Engine.Stream.
type StreamRecord struct {
	Id  string
	Seq []byte
}

// Stream walks every indexed record in store order and reads its full
// content, reusing the engine's file-handle cache rather than opening each
// source file directly — the forward-only counterpart to Subseq's random
// access, for callers that want to process an entire index once.
//
// A non-nil error for one record does not stop the walk; the caller
// decides whether to continue by returning false from its range-over-func
// body, same as any other iter.Seq2.
func (e *Engine) Stream() iter.Seq2[StreamRecord, error] {
	return func(yield func(StreamRecord, error) bool) {
		for id := range e.Ids() {
			seq, err := e.Subseq(id, 1, 0)
			if !yield(StreamRecord{Id: id, Seq: seq}, err) {
				return
			}
		}
	}
}
