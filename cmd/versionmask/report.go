// cmd/versionmask/report.go
package main

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gagin/versionmask/internal/cleanup"
	"github.com/gagin/versionmask/internal/filelock"
	"github.com/gagin/versionmask/internal/rewrite"
	"github.com/gagin/versionmask/internal/update"
)

// Report is the machine readable record of a run written with --report.
type Report struct {
	RunID    string          `yaml:"run_id"`
	Root     string          `yaml:"root"`
	Mode     string          `yaml:"mode"`
	DryRun   bool            `yaml:"dry_run"`
	Started  time.Time       `yaml:"started"`
	Files    []FileReport    `yaml:"files,omitempty"`
	Cleanup  []CleanupReport `yaml:"cleanup,omitempty"`
	Failures int             `yaml:"failures"`
}

type FileReport struct {
	Path    string           `yaml:"path"`
	Status  string           `yaml:"status"`
	Error   string           `yaml:"error,omitempty"`
	Changes []rewrite.Change `yaml:"changes,omitempty"`
}

type CleanupReport struct {
	Path    string `yaml:"path"`
	Status  string `yaml:"status"`
	Removed int    `yaml:"removed,omitempty"`
	Error   string `yaml:"error,omitempty"`
}

func (r *Report) addUpdates(root string, results []update.Result) {
	for _, res := range results {
		fr := FileReport{Path: displayPath(root, res.Path), Status: string(res.Status), Changes: res.Changes}
		if res.Err != nil {
			fr.Error = res.Err.Error()
			r.Failures++
		}
		r.Files = append(r.Files, fr)
	}
}

func (r *Report) addErrors(errorFiles map[string]error) {
	for _, p := range mapsKeys(errorFiles) {
		r.Files = append(r.Files, FileReport{Path: p, Status: string(update.StatusFailed), Error: errorFiles[p].Error()})
		r.Failures++
	}
}

func (r *Report) addCleanup(root string, results []cleanup.Result) {
	for _, res := range results {
		if res.Status == cleanup.StatusMissing {
			continue
		}
		cr := CleanupReport{Path: displayPath(root, res.Path), Status: string(res.Status), Removed: res.Removed}
		if res.Err != nil {
			cr.Error = res.Err.Error()
			r.Failures++
		}
		r.Cleanup = append(r.Cleanup, cr)
	}
}

func writeReport(path string, r *Report) error {
	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if err := filelock.AtomicWrite(path, data); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
