// cmd/versionmask/helpers.go
package main

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// splitList flattens comma separated values and drops blanks and duplicates, keeping
// the first occurrence order.
func splitList(values []string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0, len(values))
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			cleaned := strings.TrimSpace(part)
			if cleaned == "" {
				continue
			}
			if _, dup := seen[cleaned]; dup {
				continue
			}
			seen[cleaned] = struct{}{}
			out = append(out, cleaned)
		}
	}
	return out
}

// mapsKeys Helper to get map keys for logging set contents
func mapsKeys[M ~map[K]V, K comparable, V any](m M) []K {
	r := make([]K, 0, len(m))
	for k := range m {
		r = append(r, k)
	}
	sort.Slice(r, func(i, j int) bool {
		return fmt.Sprint(r[i]) < fmt.Sprint(r[j])
	})
	return r
}

func tern[T any](cond bool, a, b T) T {
	if cond {
		return a
	}
	return b
}

// displayPath is path relative to base with slashes, or the absolute path when it lies
// outside base.
func displayPath(base, path string) string {
	rel, err := filepath.Rel(base, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
