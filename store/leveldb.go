package store

import (
	"bytes"
	"fmt"
	"iter"
	"os"

	"github.com/natefinch/atomic"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"

	"github.com/havingwolf/seqidx/errtax"
)

// LevelDBStore is the default Store implementation: an embedded, ordered,
// on-disk key-value store (github.com/syndtr/goleveldb), opened at a
// directory path. LevelDB's own on-disk layout already provides the
// ordered mapping the Store interface needs, so this package adds only the
// Mode/meta-key conventions on top.
type LevelDBStore struct {
	db       *leveldb.DB
	mode     Mode
	path     string
	readOnly bool
}

// Open opens (or creates, in ModeCreateRW) the LevelDB store rooted at
// path. ModeRead fails with errtax.ErrIndexUnavailable if the store does
// not exist or cannot be opened.
func Open(path string, mode Mode) (*LevelDBStore, error) {
	opts := &opt.Options{}
	if mode == ModeRead {
		opts.ReadOnly = true
		opts.ErrorIfMissing = true
	}

	db, err := leveldb.OpenFile(path, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errtax.ErrIndexUnavailable, err)
	}

	return &LevelDBStore{db: db, mode: mode, path: path, readOnly: mode == ModeRead}, nil
}

// Exists reports whether an index store already exists at path, without
// opening it.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (s *LevelDBStore) Get(key []byte) ([]byte, bool, error) {
	v, err := s.db.Get(key, nil)
	if err != nil {
		if err == leveldb.ErrNotFound {
			return nil, false, nil
		}
		return nil, false, &errtax.IoError{Op: "store.Get", Err: err}
	}
	return v, true, nil
}

func (s *LevelDBStore) Put(key, value []byte) error {
	if s.mode != ModeCreateRW {
		return errtax.ErrReadOnlyViolation
	}
	if err := s.db.Put(key, value, nil); err != nil {
		return &errtax.IoError{Op: "store.Put", Err: err}
	}
	return nil
}

// IterateKeys yields keys in LevelDB's native ascending byte order.
func (s *LevelDBStore) IterateKeys() iter.Seq[[]byte] {
	return func(yield func([]byte) bool) {
		it := s.db.NewIterator(nil, nil)
		defer it.Release()
		for it.Next() {
			key := bytes.Clone(it.Key())
			if !yield(key) {
				return
			}
		}
	}
}

func (s *LevelDBStore) Close() error {
	return s.db.Close()
}

// WriteSentinel durably marks that an index build is in progress. It is
// written via atomic rename of a companion file next to the store
// directory (rather than as a LevelDB key) so that a process crash mid
// -write can never leave a half-written sentinel value for the freshness
// controller to misread — either the rename happened or it didn't.
func WriteSentinel(path string) error {
	r := bytes.NewReader([]byte(SentinelValue))
	return atomic.WriteFile(sentinelPath(path), r)
}

// ClearSentinel removes the in-progress marker after a successful index
// build.
func ClearSentinel(path string) error {
	err := os.Remove(sentinelPath(path))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// SentinelSet reports whether an in-progress marker is present, meaning a
// prior indexing pass crashed before completing and the index must be
// treated as absent.
func SentinelSet(path string) bool {
	_, err := os.Stat(sentinelPath(path))
	return err == nil
}

func sentinelPath(storePath string) string {
	return storePath + ".building"
}

// Remove deletes the on-disk store entirely, used when a crash is detected
// (stale sentinel) or the engine's "clean" option requests deletion on
// drop.
func Remove(path string) error {
	if err := os.RemoveAll(path); err != nil {
		return err
	}
	return ClearSentinel(path)
}
