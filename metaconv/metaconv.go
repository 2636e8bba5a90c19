// Package metaconv implements the MetaConvention: the pure mapping from a
// data path to its companion metadata path, and the inverse structural test
// used by the Driver to exclude companion paths from evaluation.
//
// The convention mirrors the path-splicing idiom used throughout
// gofulmen/pathfinder (join parent/segment with filepath.Join-style
// normalization) but operates purely on the "/"-normalized path strings from
// pathnorm, since companion paths never touch the real filesystem directly.
package metaconv

import (
	"fmt"
	"strings"

	"github.com/dirschema/dirschema-go/pathnorm"
)

// Convention configures companion-path derivation. At least one of
// FilePrefix or FileSuffix must be non-empty.
type Convention struct {
	PathPrefix string
	PathSuffix string
	FilePrefix string
	FileSuffix string
}

// Default returns the convention's documented defaults: a "_meta.json"
// suffix on the file name, no path prefix/suffix.
func Default() Convention {
	return Convention{FileSuffix: "_meta.json"}
}

// Validate enforces the MetaConvention invariant: at least one of
// FilePrefix/FileSuffix must be set, or no companion path can ever be
// distinguished from its data path.
func (c Convention) Validate() error {
	if c.FilePrefix == "" && c.FileSuffix == "" {
		return fmt.Errorf("metaconv: at least one of file_prefix or file_suffix must be non-empty")
	}
	return nil
}

// Companion computes the metadata path for path, per §4.2:
//
//	prefix-part = path_prefix ? "{path_prefix}/{parent}" : parent
//	is_dir:  stem = prefix-part + "/" + last; filename = file_prefix+file_suffix
//	is_file: stem = prefix-part;              filename = file_prefix+last+file_suffix
//	path_suffix, if set, inserts "{stem}/{path_suffix}/{filename}"
func (c Convention) Companion(path string, isDir bool) string {
	parent, last := pathnorm.ParentAndLast(path)

	prefixPart := parent
	if c.PathPrefix != "" {
		prefixPart = joinNonEmpty(c.PathPrefix, parent)
	}

	var stem, filename string
	if isDir {
		stem = joinNonEmpty(prefixPart, last)
		filename = c.FilePrefix + c.FileSuffix
	} else {
		stem = prefixPart
		filename = c.FilePrefix + last + c.FileSuffix
	}

	var result string
	if c.PathSuffix != "" {
		result = joinNonEmpty(joinNonEmpty(stem, c.PathSuffix), filename)
	} else {
		result = joinNonEmpty(stem, filename)
	}
	return pathnorm.Normalize(result)
}

// IsCompanion reports whether path structurally matches the shape a
// companion path produced by this convention would have: its final segment
// carries FilePrefix/FileSuffix, and (when PathSuffix is set) the
// second-to-last path segment equals PathSuffix.
//
// This is the inverse test the Driver uses to exclude companion paths from
// the set passed to the Evaluator -- it does not need to resolve the
// candidate data path, only recognize the companion shape.
func (c Convention) IsCompanion(path string) bool {
	segments := pathnorm.Split(path)
	if len(segments) == 0 {
		return false
	}
	filename := segments[len(segments)-1]
	if !strings.HasPrefix(filename, c.FilePrefix) || !strings.HasSuffix(filename, c.FileSuffix) {
		return false
	}
	// A bare prefix+suffix with nothing between is only a valid companion
	// filename for the is_dir case; for the is_file case the stripped middle
	// is the companion's data-file last segment and must be non-empty.
	if c.PathSuffix != "" {
		if len(segments) < 2 || segments[len(segments)-2] != c.PathSuffix {
			return false
		}
	}
	return true
}

func joinNonEmpty(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + "/" + b
	}
}
