// Package freshness implements the freshness controller: it compares
// per-file modification times against the index's mtime to decide whether a
// reopen can skip indexing entirely, must reindex a subset of files, or
// must be treated as absent because a prior build crashed.
package freshness

import (
	"os"
	"time"

	"github.com/bits-and-blooms/bitset"
	"go.uber.org/zap"

	"github.com/havingwolf/seqidx/store"
)

// Plan is the decision produced by Evaluate: which of sourcePaths changed
// since the index was last built, and whether the index should be treated
// as entirely absent.
type Plan struct {
	Updated []string // subset of the input paths that must be (re)indexed
	Absent  bool     // true if no valid index exists and a full build is needed

	// updatedMask marks, by position in the original input slice, which
	// files landed in Updated — exposed for debug logging that wants the
	// bitset itself rather than a re-derived slice.
	updatedMask *bitset.BitSet
}

// UpdatedMask returns the bitset of updated-file positions in the slice
// passed to Evaluate.
func (p Plan) UpdatedMask() *bitset.BitSet { return p.updatedMask }

// NeedsWrite reports whether Evaluate's plan requires opening the store in
// ModeCreateRW at all.
func (p Plan) NeedsWrite() bool { return p.Absent || len(p.Updated) > 0 }

func logOf(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}

// Evaluate decides what, if anything, a reopen of indexPath must (re)index:
// whether the index is entirely absent, which of sourcePaths have a newer
// mtime than the index and so must be reindexed, or whether none do and the
// existing index can be reused as-is. force mirrors the force_reindex
// option, discarding any existing index outright. logger, if non-nil,
// receives a debug record describing the resulting plan.
func Evaluate(indexPath string, sourcePaths []string, force bool, logger *zap.Logger) (Plan, error) {
	log := logOf(logger)

	if force {
		if err := store.Remove(indexPath); err != nil {
			return Plan{}, err
		}
	}

	if store.SentinelSet(indexPath) {
		// A prior build crashed mid-write; the sentinel was never
		// cleared, so the index cannot be trusted.
		log.Warn("discarding index with unresolved in-progress sentinel", zap.String("index", indexPath))
		if err := store.Remove(indexPath); err != nil {
			return Plan{}, err
		}
	}

	indexMTime, indexExists := statMTime(indexPath)

	mask := bitset.New(uint(len(sourcePaths)))
	var updated []string

	for i, path := range sourcePaths {
		mtime, ok := statMTime(path)
		if !ok {
			continue // source vanished; detecting removal is out of scope
		}
		if !indexExists || mtime.After(indexMTime) {
			updated = append(updated, path)
			mask.Set(uint(i))
		}
	}

	log.Debug("freshness plan",
		zap.String("index", indexPath),
		zap.Bool("absent", !indexExists),
		zap.Int("updated", len(updated)))

	return Plan{
		Updated:     updated,
		Absent:      !indexExists,
		updatedMask: mask,
	}, nil
}

func statMTime(path string) (time.Time, bool) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, false
	}
	return info.ModTime(), true
}
