// internal/update/update.go
package update

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/gagin/versionmask/internal/filelock"
	"github.com/gagin/versionmask/internal/rewrite"
)

// Status of one processed file.
type Status string

const (
	StatusUnchanged   Status = "unchanged"
	StatusUpdated     Status = "updated"
	StatusWouldUpdate Status = "would-update"
	StatusFailed      Status = "failed"
	StatusSkipped     Status = "skipped"
)

// Result describes what happened to one file.
type Result struct {
	Path    string
	Status  Status
	Changes []rewrite.Change
	Err     error
}

// Options for Run.
type Options struct {
	DryRun  bool
	Workers int // <= 0 means runtime.NumCPU()
}

// Rewrite masks the versions of a whole file's text. Lines are split on "\n" only, so a
// trailing newline and any "\r" stay exactly where they were.
func Rewrite(content string, rw *rewrite.Rewriter) (string, []rewrite.Change) {
	lines := strings.Split(content, "\n")
	out, changes := rw.RewriteLines(lines)
	return strings.Join(out, "\n"), changes
}

// UpdateFile rewrites path in place when its content changes. Nothing is written in
// dry-run mode or when the content is already masked.
func UpdateFile(path string, rw *rewrite.Rewriter, dryRun bool) Result {
	content, err := os.ReadFile(path)
	if err != nil {
		slog.Warn("Error reading build file.", "path", path, "error", err)
		return Result{Path: path, Status: StatusFailed, Err: fmt.Errorf("read %s: %w", path, err)}
	}

	oldContent := string(content)
	newContent, changes := Rewrite(oldContent, rw)
	if newContent == oldContent {
		slog.Debug("Build file unchanged.", "path", path)
		return Result{Path: path, Status: StatusUnchanged}
	}

	if dryRun {
		slog.Info("Would update build file.", "path", path, "lines", len(changes))
		return Result{Path: path, Status: StatusWouldUpdate, Changes: changes}
	}

	if err := filelock.AtomicWrite(path, []byte(newContent)); err != nil {
		slog.Warn("Error writing build file.", "path", path, "error", err)
		return Result{Path: path, Status: StatusFailed, Changes: changes, Err: fmt.Errorf("write %s: %w", path, err)}
	}
	slog.Info("Updated build file.", "path", path, "lines", len(changes))
	return Result{Path: path, Status: StatusUpdated, Changes: changes}
}

// Run updates every file with a bounded number of workers. Results come back in the
// order of files. A failing file never stops the others; a cancelled context marks the
// files that were not started as skipped.
func Run(ctx context.Context, files []string, rw *rewrite.Rewriter, opts Options) []Result {
	results := make([]Result, len(files))
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	g := new(errgroup.Group)
	g.SetLimit(workers)
	for i, path := range files {
		if ctx.Err() != nil {
			results[i] = Result{Path: path, Status: StatusSkipped, Err: ctx.Err()}
			continue
		}
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = Result{Path: path, Status: StatusSkipped, Err: err}
				return nil
			}
			results[i] = UpdateFile(path, rw, opts.DryRun)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// Counts tallies results by status.
func Counts(results []Result) map[Status]int {
	counts := make(map[Status]int)
	for _, r := range results {
		counts[r.Status]++
	}
	return counts
}
