package main

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	pflag "github.com/spf13/pflag"

	"github.com/gagin/versionmask/internal/filelock"
)

// Matches: const Version = "major.minor.patch"
// Captures: prefix up to the patch number, patch, the rest of the line.
var versionLineRe = regexp.MustCompile(`^(const Version\s*=\s*['"]?\d+\.\d+\.)(\d+)(['"]?.*)$`)

var errNoVersion = errors.New("version constant not found")

// bumpPatch increments the patch number of the first Version constant in content.
func bumpPatch(content string) (string, string, error) {
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		matches := versionLineRe.FindStringSubmatch(line)
		if matches == nil {
			continue
		}
		patchNumber, err := strconv.Atoi(matches[2])
		if err != nil {
			return "", "", fmt.Errorf("invalid patch number %q: %w", matches[2], err)
		}
		lines[i] = fmt.Sprintf("%s%d%s", matches[1], patchNumber+1, matches[3])
		return strings.Join(lines, "\n"), lines[i], nil
	}
	return "", "", errNoVersion
}

func updateVersionInFile(versionFile string) error {
	content, err := os.ReadFile(versionFile)
	if err != nil {
		return fmt.Errorf("read %s: %w", versionFile, err)
	}
	updated, line, err := bumpPatch(string(content))
	if err != nil {
		return fmt.Errorf("%s: %w", versionFile, err)
	}
	if err := filelock.AtomicWrite(versionFile, []byte(updated)); err != nil {
		return fmt.Errorf("write %s: %w", versionFile, err)
	}
	fmt.Printf("Version updated in %s: %s\n", versionFile, line)
	return nil
}

func main() {
	versionFile := pflag.StringP("file", "f", "cmd/versionmask/main.go", "Go file holding the Version constant.")
	pflag.Parse()

	if err := updateVersionInFile(*versionFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
