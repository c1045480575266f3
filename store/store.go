// Package store defines the persistent index store contract: an ordered or
// hashed on-disk mapping from record ids to packed descriptors, plus the
// reserved meta-keys (codec choice, file registry, in-progress sentinel)
// that let an independent process reopen the index.
package store

import (
	"iter"
	"strconv"
)

// Mode selects how Open behaves.
type Mode int

const (
	// ModeRead opens an existing store for read-only access. Put returns
	// errtax.ErrReadOnlyViolation.
	ModeRead Mode = iota
	// ModeCreateRW opens (creating if absent) a store for read-write
	// access, used only while indexing.
	ModeCreateRW
)

// Store is the persistence contract every index backend must satisfy.
// Keys are record ids or reserved meta-keys; values are packed descriptors
// or meta-key payloads. Implementations need not offer any stronger
// consistency than "readers see a complete snapshot once the writer has
// Close()'d".
type Store interface {
	// Get returns the value for key, or ok=false if absent.
	Get(key []byte) (value []byte, ok bool, err error)
	// Put stores value under key. Valid only when opened ModeCreateRW.
	Put(key, value []byte) error
	// IterateKeys yields every key in the store, in the backend's native
	// order. The sequence is lazy and safe to break out of early.
	IterateKeys() iter.Seq[[]byte]
	// Close flushes and releases the store. After Close, the Store must
	// not be used again.
	Close() error
}

// Reserved meta-key conventions. Record ids in typical corpora
// cannot collide with these since they embed sentinel characters a FASTA
// header id would never contain.
const (
	metaCodecKey    = "__codec__"
	metaSentinelKey = "__sentinel__"
	metaFilePrefix  = "__file_"
	metaFileSuffix  = "__"
	metaBloomKey    = "__bloom__"
)

// BloomKey is the meta-key under which the index's id Bloom filter is
// persisted, so a reopen can skip rebuilding it.
func BloomKey() []byte { return []byte(metaBloomKey) }

// CodecKey is the meta-key under which the chosen descriptor codec ("32" or
// "64") is stored.
func CodecKey() []byte { return []byte(metaCodecKey) }

// SentinelKey is the reserved "__sentinel__" meta-key. IsReservedKey treats
// it as reserved, but no index build writes it: the in-progress marker is
// the companion file managed by WriteSentinel/ClearSentinel instead.
func SentinelKey() []byte { return []byte(metaSentinelKey) }

// SentinelValue is the payload WriteSentinel writes to the in-progress
// marker file while indexing.
const SentinelValue = "in_progress"

// FileKey returns the meta-key under which the registry's path for fileNo
// is stored (e.g. __file_3__).
func FileKey(fileNo uint8) []byte {
	return []byte(metaFilePrefix + strconv.Itoa(int(fileNo)) + metaFileSuffix)
}

// ParseFileKey is the inverse of FileKey: it reports the file_no a reserved
// __file_<n>__ key encodes, used when reconstructing the registry from an
// existing index's meta-keys on reopen.
func ParseFileKey(key []byte) (uint8, bool) {
	s := string(key)
	if len(s) <= len(metaFilePrefix)+len(metaFileSuffix) {
		return 0, false
	}
	if s[:len(metaFilePrefix)] != metaFilePrefix || s[len(s)-len(metaFileSuffix):] != metaFileSuffix {
		return 0, false
	}
	n, err := strconv.Atoi(s[len(metaFilePrefix) : len(s)-len(metaFileSuffix)])
	if err != nil || n < 0 || n > 255 {
		return 0, false
	}
	return uint8(n), true
}

// IsReservedKey reports whether key is one of the meta-keys above rather
// than a record id, so IterateKeys-based consumers (query surface's ids())
// can filter them out.
func IsReservedKey(key []byte) bool {
	s := string(key)
	if s == metaCodecKey || s == metaSentinelKey || s == metaBloomKey {
		return true
	}
	return len(s) > len(metaFilePrefix) && s[:len(metaFilePrefix)] == metaFilePrefix
}
