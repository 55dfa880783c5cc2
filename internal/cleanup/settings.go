// internal/cleanup/settings.go
package cleanup

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gagin/versionmask/internal/filelock"
)

// SettingsFiles are looked up relative to the project root.
var SettingsFiles = []string{
	"settings.gradle",
	"settings.gradle.kts",
	"buildSrc/settings.gradle",
	"buildSrc/settings.gradle.kts",
}

const (
	commentMarker    = "////"
	availableKeyword = "available"
)

// Status of a cleaned file.
type Status string

const (
	StatusUnchanged   Status = "unchanged"
	StatusUpdated     Status = "updated"
	StatusWouldUpdate Status = "would-update"
	StatusMissing     Status = "missing"
	StatusFailed      Status = "failed"
)

// Result of cleaning one file.
type Result struct {
	Path    string
	Status  Status
	Removed int
	Err     error
}

// StripAvailableComments drops every line holding both the "////" marker and the word
// "available". The trailing newline state of content is preserved.
func StripAvailableComments(content string) (string, int) {
	lines := strings.Split(content, "\n")
	kept := lines[:0:0]
	for _, line := range lines {
		if strings.Contains(line, commentMarker) && strings.Contains(line, availableKeyword) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n"), len(lines) - len(kept)
}

// CleanSettings cleans each settings file that exists under root. Files are only
// rewritten when at least one line was removed.
func CleanSettings(root string, dryRun bool) []Result {
	results := make([]Result, 0, len(SettingsFiles))
	for _, rel := range SettingsFiles {
		path := filepath.Join(root, filepath.FromSlash(rel))
		results = append(results, cleanSettingsFile(path, dryRun))
	}
	return results
}

func cleanSettingsFile(path string, dryRun bool) Result {
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			slog.Debug("Settings file not present.", "path", path)
			return Result{Path: path, Status: StatusMissing}
		}
		slog.Warn("Error reading settings file.", "path", path, "error", err)
		return Result{Path: path, Status: StatusFailed, Err: fmt.Errorf("read %s: %w", path, err)}
	}

	cleaned, removed := StripAvailableComments(string(content))
	if removed == 0 {
		return Result{Path: path, Status: StatusUnchanged}
	}
	if dryRun {
		slog.Info("Would clean settings file.", "path", path, "removed", removed)
		return Result{Path: path, Status: StatusWouldUpdate, Removed: removed}
	}
	if err := filelock.AtomicWrite(path, []byte(cleaned)); err != nil {
		slog.Warn("Error writing settings file.", "path", path, "error", err)
		return Result{Path: path, Status: StatusFailed, Removed: removed, Err: fmt.Errorf("write %s: %w", path, err)}
	}
	slog.Info("Cleaned settings file.", "path", path, "removed", removed)
	return Result{Path: path, Status: StatusUpdated, Removed: removed}
}
