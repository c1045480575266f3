// Package seqidx is an indexed random-access engine for large sequence
// files: it builds a persistent, compact index mapping record ids to their
// exact byte geometry so that any subsequence of any record can be read in
// O(1) seeks regardless of file size, without holding the file in memory.
//
// The core deliberately knows nothing about payload formats — package
// fasta supplies the default scanner.Strategy for FASTA-like files, and
// callers can plug in another Strategy for other sentinel-delimited
// formats via WithScanner.
package seqidx

import (
	"fmt"
	"os"

	"github.com/bits-and-blooms/bloom/v3"

	"github.com/havingwolf/seqidx/cache"
	"github.com/havingwolf/seqidx/descriptor"
	"github.com/havingwolf/seqidx/freshness"
	"github.com/havingwolf/seqidx/indexer"
	"github.com/havingwolf/seqidx/registry"
	"github.com/havingwolf/seqidx/store"
)

// Engine is a reopened, ready-to-query index over one or more source
// files. The zero value is not usable; construct with Open.
type Engine struct {
	st        store.Store
	reg       *registry.Registry
	codec     descriptor.Codec
	cache     *cache.Cache
	filter    *bloom.BloomFilter
	opts      Options
	indexPath string
}

// Open resolves input (a file path, a directory path, or a []string of
// file paths), brings its index up to date, and returns an Engine ready to
// serve queries. The index is reopened read-only for the Engine's
// lifetime; any (re)indexing happens entirely inside Open.
func Open(input any, opts ...Option) (*Engine, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.Scanner == nil {
		return nil, fmt.Errorf("seqidx: no scanner.Strategy configured")
	}

	sourcePaths, err := resolveInput(input, o.Glob)
	if err != nil {
		return nil, err
	}

	indexPath := o.IndexName
	if indexPath == "" {
		indexPath = defaultIndexPath(input, sourcePaths)
	}

	plan, err := freshness.Evaluate(indexPath, sourcePaths, o.Reindex, o.Logger)
	if err != nil {
		return nil, err
	}

	switch {
	case plan.Absent:
		if err := buildFull(o, indexPath, sourcePaths); err != nil {
			return nil, err
		}
	case len(plan.Updated) > 0:
		if err := buildIncremental(o, indexPath, plan.Updated); err != nil {
			return nil, err
		}
	}

	st, err := store.Open(indexPath, store.ModeRead)
	if err != nil {
		return nil, err
	}

	codec, reg, filter, err := loadMeta(st)
	if err != nil {
		st.Close()
		return nil, err
	}

	c, err := cache.New(o.MaxOpen, o.Logger)
	if err != nil {
		st.Close()
		return nil, err
	}

	return &Engine{
		st:        st,
		reg:       reg,
		codec:     codec,
		cache:     c,
		filter:    filter,
		opts:      o,
		indexPath: indexPath,
	}, nil
}

// buildFull performs a from-scratch index build (the index is absent, or
// force_reindex is set): select a codec from the observed file sizes,
// index every source file, and persist the result under a fresh sentinel.
func buildFull(o Options, indexPath string, sourcePaths []string) error {
	maxSize, err := maxFileSize(sourcePaths)
	if err != nil {
		return err
	}
	codec := descriptor.Select(maxSize)
	reg := registry.New()
	filter := bloom.NewWithEstimates(estimateRecords(sourcePaths), 0.01)

	if err := store.WriteSentinel(indexPath); err != nil {
		return err
	}

	st, err := store.Open(indexPath, store.ModeCreateRW)
	if err != nil {
		return err
	}

	if err := runIndexer(o, st, codec, reg, filter, sourcePaths); err != nil {
		st.Close()
		return err
	}
	if err := persistMeta(st, codec, reg, filter); err != nil {
		st.Close()
		return err
	}
	if err := st.Close(); err != nil {
		return err
	}
	return store.ClearSentinel(indexPath)
}

// buildIncremental reindexes only the files the freshness controller found
// stale, reusing the codec and registry an earlier build already
// committed.
func buildIncremental(o Options, indexPath string, updated []string) error {
	if err := store.WriteSentinel(indexPath); err != nil {
		return err
	}

	st, err := store.Open(indexPath, store.ModeCreateRW)
	if err != nil {
		return err
	}

	codec, reg, filter, err := loadMeta(st)
	if err != nil {
		st.Close()
		return err
	}
	if filter == nil {
		filter = bloom.NewWithEstimates(estimateRecords(updated), 0.01)
	}

	if err := runIndexer(o, st, codec, reg, filter, updated); err != nil {
		st.Close()
		return err
	}
	if err := persistMeta(st, codec, reg, filter); err != nil {
		st.Close()
		return err
	}
	if err := st.Close(); err != nil {
		return err
	}
	return store.ClearSentinel(indexPath)
}

func runIndexer(o Options, st store.Store, codec descriptor.Codec, reg *registry.Registry, filter *bloom.BloomFilter, paths []string) error {
	ix := &indexer.Indexer{
		Strategy:    o.Scanner,
		Codec:       codec,
		Registry:    reg,
		IDTransform: o.IDTransform,
		Lenient:     o.Lenient,
		Logger:      o.Logger,
		Debug:       o.Debug,
		Filter:      filter,
	}
	_, err := ix.IndexFiles(st, paths)
	return err
}

func maxFileSize(paths []string) (uint64, error) {
	var max uint64
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return 0, fmt.Errorf("seqidx: stat %s: %w", p, err)
		}
		if size := uint64(info.Size()); size > max {
			max = size
		}
	}
	return max, nil
}

// estimateRecords sizes the Bloom filter's expected-item count from total
// source size rather than a full pre-scan, which would cost a second pass
// over every file before indexing even starts. 200 bytes/record is a
// conservative lower bound for FASTA-like formats; underestimating only
// raises the filter's false-positive rate; it never causes false
// negatives.
func estimateRecords(paths []string) uint {
	var total int64
	for _, p := range paths {
		if info, err := os.Stat(p); err == nil {
			total += info.Size()
		}
	}
	n := uint(total/200) + 1
	if n < 1024 {
		n = 1024
	}
	return n
}

// IndexPath reports the on-disk location of the persistent index this
// Engine reopened or built.
func (e *Engine) IndexPath() string { return e.indexPath }

// Close releases the file-handle cache and the underlying store. If the
// engine was opened WithClean(true), the index is also deleted.
func (e *Engine) Close() error {
	cerr := e.cache.Close()
	serr := e.st.Close()
	if e.opts.Clean {
		if rerr := store.Remove(e.indexPath); rerr != nil && serr == nil {
			serr = rerr
		}
	}
	if cerr != nil {
		return cerr
	}
	return serr
}
