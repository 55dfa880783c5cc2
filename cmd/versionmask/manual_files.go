// cmd/versionmask/manual_files.go
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// resolveManualFiles turns the -f paths into absolute file paths. Manual files bypass
// the build file name filter and every exclude rule. Paths that cannot be used are
// returned in errorFiles keyed by their display path.
func resolveManualFiles(cwd string, manualFilePaths []string) (files []string, errorFiles map[string]error) {
	errorFiles = make(map[string]error)
	if len(manualFilePaths) == 0 {
		return nil, errorFiles
	}

	seen := make(map[string]bool)
	slog.Debug("Processing manually specified files (-f bypasses name filter and excludes).", "count", len(manualFilePaths))
	for _, manualPathRaw := range manualFilePaths {
		absManualPath := manualPathRaw
		if !filepath.IsAbs(absManualPath) {
			absManualPath = filepath.Join(cwd, manualPathRaw)
		}
		absManualPath = filepath.Clean(absManualPath)
		shown := displayPath(cwd, absManualPath)

		if seen[absManualPath] {
			slog.Debug("Skipping duplicate manual file.", "path", shown)
			continue
		}
		seen[absManualPath] = true

		fileInfo, errStat := os.Stat(absManualPath)
		if errStat != nil {
			slog.Warn(tern(os.IsNotExist(errStat), "Manual file not found.", "Cannot stat manual file."),
				"path", shown, "error", errStat)
			errorFiles[shown] = errStat
			continue
		}
		if fileInfo.IsDir() {
			slog.Warn("Manual path points to a directory, skipping.", "path", shown)
			errorFiles[shown] = fmt.Errorf("path is a directory")
			continue
		}
		files = append(files, absManualPath)
	}
	return files, errorFiles
}

// mergeFiles appends manual files that the scan did not already find.
func mergeFiles(scanned, manual []string) []string {
	seen := make(map[string]struct{}, len(scanned))
	out := append([]string{}, scanned...)
	for _, f := range scanned {
		seen[f] = struct{}{}
	}
	for _, f := range manual {
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}
