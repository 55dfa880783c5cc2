// internal/cleanup/properties.go
package cleanup

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"github.com/gagin/versionmask/internal/filelock"
)

// DefaultVersionsFile is the properties file name at the project root.
const DefaultVersionsFile = "versions.properties"

const availablePrefix = "# available="

var availableUpdateLine = regexp.MustCompile(`^##\s*# available=(.*)$`)

// Section is either a Comment or a VersionEntry.
type Section interface {
	lines() []string
}

// Comment holds raw lines that are not version entries: headers, comments, blank lines.
type Comment struct {
	Lines []string
}

func (c *Comment) lines() []string { return c.Lines }

// VersionEntry is a "key=value" line with the updates announced below it.
type VersionEntry struct {
	Key              string
	Value            string
	Line             string
	AvailableUpdates []string
}

func (e *VersionEntry) lines() []string {
	out := make([]string, 0, 1+len(e.AvailableUpdates))
	out = append(out, e.Line)
	pad := strings.Index(e.Line, "=") - 2
	if pad < 0 {
		pad = 0
	}
	for _, u := range e.AvailableUpdates {
		out = append(out, "##"+strings.Repeat(" ", pad)+availablePrefix+u)
	}
	return out
}

// VersionsProperties is the section model of a versions.properties file.
type VersionsProperties struct {
	Sections []Section
}

// ParseVersionsProperties splits text into sections. An update line attaches to the
// entry right above it (possibly after other update lines); anywhere else it is kept as
// a comment.
func ParseVersionsProperties(text string) *VersionsProperties {
	model := &VersionsProperties{}
	var lastEntry *VersionEntry
	addComment := func(line string) {
		lastEntry = nil
		if n := len(model.Sections); n > 0 {
			if c, ok := model.Sections[n-1].(*Comment); ok {
				c.Lines = append(c.Lines, line)
				return
			}
		}
		model.Sections = append(model.Sections, &Comment{Lines: []string{line}})
	}

	for _, line := range strings.Split(text, "\n") {
		if m := availableUpdateLine.FindStringSubmatch(line); m != nil && lastEntry != nil {
			lastEntry.AvailableUpdates = append(lastEntry.AvailableUpdates, m[1])
			continue
		}
		trimmed := strings.TrimSpace(line)
		key, value, isEntry := strings.Cut(trimmed, "=")
		if trimmed == "" || strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, "!") || !isEntry {
			addComment(line)
			continue
		}
		entry := &VersionEntry{Key: strings.TrimSpace(key), Value: strings.TrimSpace(value), Line: line}
		model.Sections = append(model.Sections, entry)
		lastEntry = entry
	}
	return model
}

// String serializes the model back to file content.
func (m *VersionsProperties) String() string {
	var all []string
	for _, s := range m.Sections {
		all = append(all, s.lines()...)
	}
	return strings.Join(all, "\n")
}

// Entries returns the version entries in file order.
func (m *VersionsProperties) Entries() []*VersionEntry {
	var out []*VersionEntry
	for _, s := range m.Sections {
		if e, ok := s.(*VersionEntry); ok {
			out = append(out, e)
		}
	}
	return out
}

// ClearAvailableUpdates returns a copy without any available update annotations.
func (m *VersionsProperties) ClearAvailableUpdates() *VersionsProperties {
	out := &VersionsProperties{Sections: make([]Section, 0, len(m.Sections))}
	for _, s := range m.Sections {
		switch s := s.(type) {
		case *VersionEntry:
			cp := *s
			cp.AvailableUpdates = nil
			out.Sections = append(out.Sections, &cp)
		default:
			out.Sections = append(out.Sections, s)
		}
	}
	return out
}

// CleanVersionsProperties removes every available update annotation from the file at
// path. A missing file is not an error.
func CleanVersionsProperties(path string, dryRun bool) Result {
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			slog.Info("No versions file found, nothing to clean.", "path", path)
			return Result{Path: path, Status: StatusMissing}
		}
		slog.Warn("Error reading versions file.", "path", path, "error", err)
		return Result{Path: path, Status: StatusFailed, Err: fmt.Errorf("read %s: %w", path, err)}
	}

	model := ParseVersionsProperties(string(content))
	removed := 0
	for _, e := range model.Entries() {
		removed += len(e.AvailableUpdates)
	}
	if removed == 0 {
		return Result{Path: path, Status: StatusUnchanged}
	}
	if dryRun {
		slog.Info("Would clean versions file.", "path", path, "removed", removed)
		return Result{Path: path, Status: StatusWouldUpdate, Removed: removed}
	}

	cleaned := model.ClearAvailableUpdates().String()
	if err := filelock.AtomicWrite(path, []byte(cleaned)); err != nil {
		slog.Warn("Error writing versions file.", "path", path, "error", err)
		return Result{Path: path, Status: StatusFailed, Removed: removed, Err: fmt.Errorf("write %s: %w", path, err)}
	}
	slog.Info("Cleaned versions file.", "path", path, "removed", removed)
	return Result{Path: path, Status: StatusUpdated, Removed: removed}
}
