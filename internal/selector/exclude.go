// internal/selector/exclude.go
package selector

import (
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// PathInfo holds information about a candidate file.
type PathInfo struct {
	AbsPath  string // Absolute path on the filesystem
	RelPath  string // Path relative to the scan root, using slashes
	BaseName string // Final component of the path
}

// Excluder decides whether a candidate should be dropped.
type Excluder interface {
	IsExcluded(info PathInfo) (excluded bool, reason string, pattern string)
}

// GlobExcluder matches doublestar patterns against the root-relative path of the file
// and of each of its ancestor directories.
type GlobExcluder struct {
	patterns []string
}

// NewGlobExcluder validates patterns and drops the invalid ones with a warning.
func NewGlobExcluder(patterns []string) *GlobExcluder {
	valid := make([]string, 0, len(patterns))
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		p = strings.TrimRight(strings.ReplaceAll(p, `\`, "/"), "/")
		if !doublestar.ValidatePattern(p) {
			slog.Warn("Invalid exclude pattern syntax, ignoring.", "pattern", p)
			continue
		}
		valid = append(valid, p)
	}
	return &GlobExcluder{patterns: valid}
}

// Patterns returns the validated patterns.
func (e *GlobExcluder) Patterns() []string { return e.patterns }

// IsExcluded implements Excluder.
func (e *GlobExcluder) IsExcluded(info PathInfo) (bool, string, string) {
	if len(e.patterns) == 0 {
		return false, "", ""
	}
	for _, p := range e.patterns {
		if ok, _ := doublestar.Match(p, info.RelPath); ok {
			return true, "path match", p
		}
		if ok, _ := doublestar.Match(p, info.BaseName); ok {
			return true, "basename match", p
		}
	}
	for parent := path.Dir(info.RelPath); parent != "." && parent != "/" && parent != ""; parent = path.Dir(parent) {
		for _, p := range e.patterns {
			if ok, _ := doublestar.Match(p, parent); ok {
				return true, fmt.Sprintf("ancestor %s excluded", parent), p
			}
			if ok, _ := doublestar.Match(p, path.Base(parent)); ok {
				return true, fmt.Sprintf("ancestor %s basename match", parent), p
			}
		}
	}
	return false, "", ""
}
