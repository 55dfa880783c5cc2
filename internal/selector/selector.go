// internal/selector/selector.go
package selector

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	gocodewalker "github.com/boyter/gocodewalker"

	"github.com/gagin/versionmask/internal/pattern"
)

// ErrInvalidInput is returned when the scan root is not a directory.
var ErrInvalidInput = errors.New("invalid input")

// VCSDirs are version control metadata directories, never walked.
var VCSDirs = []string{".git", ".hg", ".svn"}

// Options tune the walk. The zero value walks every file under root, hidden ones
// included, and ignores .gitignore, .ignore and .gitmodules files.
type Options struct {
	UseGitignore    bool
	ExcludeDirs     []string // directory names skipped by the walker
	ExcludePatterns []string // doublestar globs on the root-relative path
}

// Find returns the absolute paths of every file under root that may contain dependency
// notations, sorted. Errors reported by the walker for individual entries are logged
// and returned joined after the walk; the files found are still returned.
func Find(root string, opts Options) ([]string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot resolve %q: %v", ErrInvalidInput, root, err)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: expected a directory, got %s", ErrInvalidInput, absRoot)
	}

	excluder := NewGlobExcluder(opts.ExcludePatterns)
	slog.Debug("Starting build file scan.", "root", absRoot, "useGitignore", opts.UseGitignore,
		"excludeDirs", opts.ExcludeDirs, "excludePatterns", excluder.Patterns())

	fileListQueue := make(chan *gocodewalker.File, 100)
	fileWalker := gocodewalker.NewFileWalker(absRoot, fileListQueue)
	fileWalker.IgnoreGitIgnore = !opts.UseGitignore
	fileWalker.IgnoreIgnoreFile = !opts.UseGitignore
	fileWalker.IgnoreGitModules = !opts.UseGitignore
	fileWalker.IncludeHidden = true
	fileWalker.ExcludeDirectory = append(append([]string{}, VCSDirs...), opts.ExcludeDirs...)

	var walkErr error
	var entryErrs []error
	var errMu sync.Mutex
	processingDone := make(chan struct{})

	go func() {
		defer close(processingDone)
		fileWalker.SetErrorHandler(func(e error) bool {
			slog.Warn("Error reported by file walker.", "root", absRoot, "error", e)
			errMu.Lock()
			entryErrs = append(entryErrs, e)
			errMu.Unlock()
			return true
		})
		walkErr = fileWalker.Start()
	}()

	var found []string
	for f := range fileListQueue {
		baseName := filepath.Base(f.Location)
		if !pattern.IsBuildFile(baseName) {
			continue
		}
		relPath, errRel := filepath.Rel(absRoot, f.Location)
		if errRel != nil {
			slog.Warn("Could not determine relative path, skipping.", "path", f.Location, "error", errRel)
			continue
		}
		pathInfo := PathInfo{AbsPath: f.Location, RelPath: filepath.ToSlash(relPath), BaseName: baseName}
		if excluded, reason, p := excluder.IsExcluded(pathInfo); excluded {
			slog.Debug("Excluding file.", "path", pathInfo.RelPath, "reason", reason, "pattern", p)
			continue
		}
		if fi, statErr := os.Stat(f.Location); statErr != nil || fi.IsDir() {
			continue
		}
		slog.Debug("Found build file.", "path", pathInfo.RelPath)
		found = append(found, f.Location)
	}
	<-processingDone

	sort.Strings(found)
	slog.Info("Build file scan completed.", "root", absRoot, "found", len(found))

	if walkErr != nil {
		return found, fmt.Errorf("file walk failed for '%s': %w", absRoot, walkErr)
	}
	if len(entryErrs) > 0 {
		return found, fmt.Errorf("file walk reported errors for '%s': %w", absRoot, errors.Join(entryErrs...))
	}
	return found, nil
}
