// cmd/versionmask/summary.go
package main

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/gagin/versionmask/internal/cleanup"
	"github.com/gagin/versionmask/internal/update"
)

// FileInfo is a changed file shown in the summary tree.
type FileInfo struct {
	Path     string
	Lines    int
	IsManual bool
}

type TreeNode struct {
	Name     string
	Children map[string]*TreeNode
	FileInfo *FileInfo
}

var (
	headerColor  = color.New(color.Bold)
	updatedColor = color.New(color.FgGreen)
	pendingColor = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed)
)

func buildTree(files []FileInfo) *TreeNode {
	root := &TreeNode{Name: ".", Children: make(map[string]*TreeNode)}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })

	for i := range files {
		file := &files[i]
		parts := strings.Split(file.Path, "/")
		currentNode := root

		for j, part := range parts {
			if part == "" {
				continue
			}
			childNode, exists := currentNode.Children[part]
			if !exists {
				childNode = &TreeNode{Name: part, Children: make(map[string]*TreeNode)}
				currentNode.Children[part] = childNode
			}
			if j == len(parts)-1 {
				if childNode.FileInfo != nil {
					slog.Warn("Tree building conflict: Node already has FileInfo, overwriting.",
						"nodeName", childNode.Name, "existingPath", childNode.FileInfo.Path, "newPath", file.Path)
				}
				childNode.FileInfo = file
			}
			currentNode = childNode
		}
	}
	return root
}

func printTreeRecursive(writer io.Writer, node *TreeNode, indent string, isLast bool) {
	if node.Name != "." {
		connector := tern(isLast, "└── ", "├── ")
		info := ""
		if node.FileInfo != nil {
			info = fmt.Sprintf(" (%d %s)", node.FileInfo.Lines, tern(node.FileInfo.Lines == 1, "line", "lines"))
			if node.FileInfo.IsManual {
				info += " [M]"
			}
		}
		fmt.Fprintf(writer, "%s%s%s%s\n", indent, connector, node.Name, info)
		indent += tern(isLast, "    ", "│   ")
	}

	childNames := make([]string, 0, len(node.Children))
	for name := range node.Children {
		childNames = append(childNames, name)
	}
	sort.Strings(childNames)
	for i, name := range childNames {
		printTreeRecursive(writer, node.Children[name], indent, i == len(childNames)-1)
	}
}

func printSummaryListSection(writer io.Writer, c *color.Color, titleFormat string, items map[string]string) {
	if len(items) == 0 {
		return
	}
	c.Fprintf(writer, titleFormat, len(items))
	for _, p := range mapsKeys(items) {
		if items[p] != "" {
			fmt.Fprintf(writer, "- %s: %s\n", p, items[p])
		} else {
			fmt.Fprintf(writer, "- %s\n", p)
		}
	}
}

// printMigrationSummary prints the tree of rewritten files and the failures.
func printMigrationSummary(results []update.Result, manual map[string]bool, errorFiles map[string]error, root string, dryRun bool, w io.Writer) {
	fmt.Fprintln(w, "\n--- Summary ---")

	var changed []FileInfo
	failed := make(map[string]string)
	unchanged := 0
	for _, r := range results {
		shown := displayPath(root, r.Path)
		switch r.Status {
		case update.StatusUpdated, update.StatusWouldUpdate:
			changed = append(changed, FileInfo{Path: shown, Lines: len(r.Changes), IsManual: manual[r.Path]})
		case update.StatusFailed, update.StatusSkipped:
			failed[shown] = fmt.Sprint(r.Err)
		default:
			unchanged++
		}
	}
	for p, err := range errorFiles {
		failed[p] = err.Error()
	}

	rootName := filepath.Base(root)
	if len(changed) > 0 {
		c := tern(dryRun, pendingColor, updatedColor)
		c.Fprintf(w, "%s %d of %d build files in '%s':\n",
			tern(dryRun, "Would update", "Updated"), len(changed), len(results), rootName)
		printTreeRecursive(w, buildTree(changed), "", true)
	} else {
		headerColor.Fprintf(w, "No build file needed changes in '%s' (%d scanned).\n", rootName, len(results))
	}
	if unchanged > 0 {
		fmt.Fprintf(w, "\nUnchanged: %d\n", unchanged)
	}
	printSummaryListSection(w, errorColor, "\nErrors encountered (%d):\n", failed)
	fmt.Fprintln(w, "---------------")
}

// printCleanupSummary lists what the cleanup touched.
func printCleanupSummary(results []cleanup.Result, root string, w io.Writer) {
	fmt.Fprintln(w, "\n--- Cleanup ---")
	cleaned := make(map[string]string)
	failed := make(map[string]string)
	for _, r := range results {
		shown := displayPath(root, r.Path)
		switch r.Status {
		case cleanup.StatusUpdated, cleanup.StatusWouldUpdate:
			cleaned[shown] = fmt.Sprintf("%s, %d removed", r.Status, r.Removed)
		case cleanup.StatusFailed:
			failed[shown] = fmt.Sprint(r.Err)
		}
	}
	if len(cleaned) == 0 && len(failed) == 0 {
		headerColor.Fprintln(w, "Nothing to clean.")
	}
	printSummaryListSection(w, updatedColor, "Cleaned files (%d):\n", cleaned)
	printSummaryListSection(w, errorColor, "\nErrors encountered (%d):\n", failed)
	fmt.Fprintln(w, "---------------")
}
