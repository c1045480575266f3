package seqidx

import (
	"crypto/md5"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/havingwolf/seqidx/errtax"
)

// resolveInput accepts a single file path, a single directory path
// (expanded with glob), or a nonempty list of file paths. Anything else is
// errtax.ErrPathInvalid. The returned paths are absolute
// and sorted, so index-path naming and file registration are deterministic
// across runs.
func resolveInput(input any, glob string) ([]string, error) {
	switch v := input.(type) {
	case string:
		info, err := os.Stat(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errtax.ErrPathInvalid, err)
		}
		if info.IsDir() {
			matches, err := filepath.Glob(filepath.Join(v, glob))
			if err != nil {
				return nil, err
			}
			if len(matches) == 0 {
				return nil, errtax.ErrNoMatchingFiles
			}
			return absAll(matches)
		}
		abs, err := filepath.Abs(v)
		if err != nil {
			return nil, err
		}
		return []string{abs}, nil

	case []string:
		if len(v) == 0 {
			return nil, errtax.ErrPathInvalid
		}
		return absAll(v)

	default:
		return nil, errtax.ErrPathInvalid
	}
}

func absAll(paths []string) ([]string, error) {
	out := make([]string, len(paths))
	for i, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, err
		}
		out[i] = abs
	}
	sort.Strings(out)
	return out, nil
}

// defaultIndexPath names the on-disk index: "<path>.index" for a single
// source file, "<dir>/directory.index" for a directory, and
// "fileset_<hex md5 of sorted absolute paths>.index" for an explicit list.
func defaultIndexPath(input any, sourcePaths []string) string {
	if s, ok := input.(string); ok {
		if info, err := os.Stat(s); err == nil && info.IsDir() {
			return filepath.Join(s, "directory.index")
		}
		abs, err := filepath.Abs(s)
		if err != nil {
			abs = s
		}
		return abs + ".index"
	}

	sorted := append([]string(nil), sourcePaths...)
	sort.Strings(sorted)
	h := md5.Sum([]byte(strings.Join(sorted, "\x00")))
	return fmt.Sprintf("fileset_%x.index", h)
}
