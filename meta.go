package seqidx

import (
	"bytes"
	"fmt"

	"github.com/bits-and-blooms/bloom/v3"

	"github.com/havingwolf/seqidx/descriptor"
	"github.com/havingwolf/seqidx/errtax"
	"github.com/havingwolf/seqidx/registry"
	"github.com/havingwolf/seqidx/store"
)

// persistMeta writes the reserved meta-keys a reopen needs to reconstruct
// in-memory state without rescanning any source file: the chosen codec,
// the file registry, and the id Bloom filter.
func persistMeta(st store.Store, codec descriptor.Codec, reg *registry.Registry, filter *bloom.BloomFilter) error {
	if err := st.Put(store.CodecKey(), []byte(codec.String())); err != nil {
		return err
	}
	for _, e := range reg.Entries() {
		if err := st.Put(store.FileKey(e.FileNo), []byte(e.Path)); err != nil {
			return err
		}
	}
	if filter != nil {
		var buf bytes.Buffer
		if _, err := filter.WriteTo(&buf); err != nil {
			return fmt.Errorf("seqidx: persisting bloom filter: %w", err)
		}
		if err := st.Put(store.BloomKey(), buf.Bytes()); err != nil {
			return err
		}
	}
	return nil
}

// loadMeta is persistMeta's inverse, used both on a pure reopen (nothing
// stale) and after an incremental rebuild to pick up the registry/codec an
// earlier process instance established.
func loadMeta(st store.Store) (descriptor.Codec, *registry.Registry, *bloom.BloomFilter, error) {
	v, ok, err := st.Get(store.CodecKey())
	if err != nil {
		return 0, nil, nil, err
	}
	if !ok {
		return 0, nil, nil, fmt.Errorf("seqidx: index missing codec meta-key: %w", errtax.ErrIndexUnavailable)
	}
	codec, err := descriptor.ParseCodec(string(v))
	if err != nil {
		return 0, nil, nil, err
	}

	reg := registry.New()
	for key := range st.IterateKeys() {
		no, ok := store.ParseFileKey(key)
		if !ok {
			continue
		}
		path, exists, err := st.Get(key)
		if err != nil {
			return 0, nil, nil, err
		}
		if !exists {
			continue
		}
		reg.Put(no, string(path))
	}

	var filter *bloom.BloomFilter
	if v, ok, err := st.Get(store.BloomKey()); err == nil && ok {
		f := &bloom.BloomFilter{}
		if _, rerr := f.ReadFrom(bytes.NewReader(v)); rerr == nil {
			filter = f
		}
	}

	return codec, reg, filter, nil
}
