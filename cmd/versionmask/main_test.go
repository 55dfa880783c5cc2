// cmd/versionmask/main_test.go
package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/gagin/versionmask/internal/cleanup"
	"github.com/gagin/versionmask/internal/selector"
	"github.com/gagin/versionmask/internal/update"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

// --- Test Helper Functions ---
func setupTestDir(t *testing.T, structure map[string]string) string {
	t.Helper()
	tempDir := t.TempDir()
	paths := make([]string, 0, len(structure))
	for p := range structure {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, relPath := range paths {
		absPath := filepath.Join(tempDir, filepath.FromSlash(relPath))
		require.NoError(t, os.MkdirAll(filepath.Dir(absPath), 0755))
		require.NoError(t, os.WriteFile(absPath, []byte(structure[relPath]), 0644), "Failed to write file: %s", absPath)
	}
	return tempDir
}

func readTestFile(t *testing.T, root, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	require.NoError(t, err)
	return string(data)
}

const rootBuild = `plugins {
    id("com.example.plugin") version "1.2.3"
}

dependencies {
    implementation("com.squareup.okio:okio:2.0.0")
    testImplementation("junit:junit:4.13")
}
`

const rootBuildMasked = `plugins {
    id("com.example.plugin")
}

dependencies {
    implementation("com.squareup.okio:okio:_")
    testImplementation("junit:junit:_")
}
`

const appBuild = `android {
    compileSdkVersion 30
    defaultConfig {
        versionName "1.0.0"
    }
}
dependencies {
    implementation "androidx.core:core-ktx:1.3.2"
}
`

const appBuildMasked = `android {
    compileSdkVersion 30
    defaultConfig {
        versionName "1.0.0"
    }
}
dependencies {
    implementation "androidx.core:core-ktx:_"
}
`

const buildSrcBuild = "plugins {\n    `kotlin-dsl`\n}\n"

func projectStructure() map[string]string {
	return map[string]string{
		"build.gradle.kts":                 rootBuild,
		"settings.gradle.kts":              `include(":app")` + "\n",
		"app/build.gradle":                 appBuild,
		"app/README.md":                    `implementation("a:b:1.0.0")` + "\n",
		"buildSrc/build.gradle.kts":        buildSrcBuild,
		"buildSrc/src/main/kotlin/Libs.kt": `const val okhttp = "com.squareup.okhttp3:okhttp:$okhttpVersion"` + "\n",
		"extra/custom.txt":                 `val dep = "org.foo:bar:1.0"` + "\n",
	}
}

func testOptions(root string) runOptions {
	return runOptions{
		Root:         root,
		Cwd:          root,
		Workers:      2,
		VersionsFile: cleanup.DefaultVersionsFile,
	}
}

func TestRunMigration(t *testing.T) {
	root := setupTestDir(t, projectStructure())
	opts := testOptions(root)
	opts.ManualFiles = []string{"extra/custom.txt"}

	report := &Report{Mode: "migrate"}
	var out bytes.Buffer
	require.NoError(t, runMigration(context.Background(), opts, report, &out))

	assert.Equal(t, rootBuildMasked, readTestFile(t, root, "build.gradle.kts"))
	assert.Equal(t, appBuildMasked, readTestFile(t, root, "app/build.gradle"))
	assert.Equal(t, buildSrcBuild, readTestFile(t, root, "buildSrc/build.gradle.kts"))
	assert.Equal(t, `const val okhttp = "com.squareup.okhttp3:okhttp:_"`+"\n",
		readTestFile(t, root, "buildSrc/src/main/kotlin/Libs.kt"))
	assert.Equal(t, `val dep = "org.foo:bar:_"`+"\n", readTestFile(t, root, "extra/custom.txt"))

	// Not a build file and not given with -f.
	assert.Equal(t, `implementation("a:b:1.0.0")`+"\n", readTestFile(t, root, "app/README.md"))
	assert.Equal(t, `include(":app")`+"\n", readTestFile(t, root, "settings.gradle.kts"))

	assert.Zero(t, report.Failures)
	require.Len(t, report.Files, 5)
	statuses := make(map[string]string)
	for _, f := range report.Files {
		statuses[f.Path] = f.Status
	}
	assert.Equal(t, map[string]string{
		"app/build.gradle":                 string(update.StatusUpdated),
		"build.gradle.kts":                 string(update.StatusUpdated),
		"buildSrc/build.gradle.kts":        string(update.StatusUnchanged),
		"buildSrc/src/main/kotlin/Libs.kt": string(update.StatusUpdated),
		"extra/custom.txt":                 string(update.StatusUpdated),
	}, statuses)

	summary := out.String()
	assert.Contains(t, summary, "Updated 4 of 5 build files")
	assert.Contains(t, summary, "build.gradle.kts (3 lines)")
	assert.Contains(t, summary, "custom.txt (1 line) [M]")
	assert.Contains(t, summary, "Unchanged: 1")
	assert.NotContains(t, summary, "Errors encountered")

	// A second run finds nothing left to mask.
	again := &Report{}
	out.Reset()
	require.NoError(t, runMigration(context.Background(), opts, again, &out))
	for _, f := range again.Files {
		assert.Equal(t, string(update.StatusUnchanged), f.Status, f.Path)
	}
	assert.Contains(t, out.String(), "No build file needed changes")
}

func TestRunMigration_DryRun(t *testing.T) {
	root := setupTestDir(t, projectStructure())
	opts := testOptions(root)
	opts.DryRun = true

	report := &Report{}
	var out bytes.Buffer
	require.NoError(t, runMigration(context.Background(), opts, report, &out))

	assert.Equal(t, rootBuild, readTestFile(t, root, "build.gradle.kts"))
	assert.Equal(t, appBuild, readTestFile(t, root, "app/build.gradle"))
	assert.Contains(t, out.String(), "Would update 3 of 4 build files")

	for _, f := range report.Files {
		if f.Path == "build.gradle.kts" {
			assert.Equal(t, string(update.StatusWouldUpdate), f.Status)
			require.Len(t, f.Changes, 3)
			assert.Equal(t, 1, f.Changes[0].Index)
			assert.Equal(t, `    id("com.example.plugin")`, f.Changes[0].After)
		}
	}
}

func TestRunMigration_ExcludesAndDenylist(t *testing.T) {
	root := setupTestDir(t, projectStructure())
	opts := testOptions(root)
	opts.ExcludePatterns = []string{"buildSrc"}
	opts.ExtraDenylist = []string{"okio"}

	report := &Report{}
	var out bytes.Buffer
	require.NoError(t, runMigration(context.Background(), opts, report, &out))

	assert.Equal(t, `const val okhttp = "com.squareup.okhttp3:okhttp:$okhttpVersion"`+"\n",
		readTestFile(t, root, "buildSrc/src/main/kotlin/Libs.kt"))
	assert.Contains(t, readTestFile(t, root, "build.gradle.kts"), `implementation("com.squareup.okio:okio:2.0.0")`)
	assert.Contains(t, readTestFile(t, root, "build.gradle.kts"), `testImplementation("junit:junit:_")`)
	assert.Len(t, report.Files, 2)
}

func TestRunMigration_ManualFileErrors(t *testing.T) {
	root := setupTestDir(t, projectStructure())
	opts := testOptions(root)
	opts.ManualFiles = []string{"missing.gradle", "app"}

	report := &Report{}
	var out bytes.Buffer
	require.NoError(t, runMigration(context.Background(), opts, report, &out))

	assert.Equal(t, 2, report.Failures)
	summary := out.String()
	assert.Contains(t, summary, "Errors encountered (2)")
	assert.Contains(t, summary, "- app: path is a directory")
	assert.Contains(t, summary, "- missing.gradle:")
}

func TestRunMigration_InvalidRoot(t *testing.T) {
	opts := testOptions(filepath.Join(t.TempDir(), "does-not-exist"))

	var out bytes.Buffer
	err := runMigration(context.Background(), opts, &Report{}, &out)
	require.Error(t, err)
	assert.True(t, errors.Is(err, selector.ErrInvalidInput))
	assert.Empty(t, out.String())
}

func TestRunMigration_CancelledContext(t *testing.T) {
	root := setupTestDir(t, projectStructure())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report := &Report{}
	var out bytes.Buffer
	require.NoError(t, runMigration(ctx, testOptions(root), report, &out))

	assert.Equal(t, rootBuild, readTestFile(t, root, "build.gradle.kts"))
	assert.Equal(t, 4, report.Failures)
	for _, f := range report.Files {
		assert.Equal(t, string(update.StatusSkipped), f.Status)
	}
}

const dirtyVersions = `plugin.org.jetbrains.kotlin.jvm=1.4.10
##                             # available=1.4.20

version.okhttp3=3.12.1
`

const dirtySettings = `plugins {
    id("de.fayard.refreshVersions") version "0.9.7"
////                            # available:"0.10.0"
}
`

func TestRunCleanup(t *testing.T) {
	root := setupTestDir(t, map[string]string{
		"versions.properties": dirtyVersions,
		"settings.gradle.kts": dirtySettings,
	})

	report := &Report{Mode: "cleanup"}
	var out bytes.Buffer
	runCleanup(testOptions(root), report, &out)

	assert.Equal(t, "plugin.org.jetbrains.kotlin.jvm=1.4.10\n\nversion.okhttp3=3.12.1\n",
		readTestFile(t, root, "versions.properties"))
	assert.Equal(t, "plugins {\n    id(\"de.fayard.refreshVersions\") version \"0.9.7\"\n}\n",
		readTestFile(t, root, "settings.gradle.kts"))

	assert.Zero(t, report.Failures)
	require.Len(t, report.Cleanup, 2)
	assert.Equal(t, "versions.properties", report.Cleanup[0].Path)
	assert.Equal(t, 1, report.Cleanup[0].Removed)
	assert.Equal(t, "settings.gradle.kts", report.Cleanup[1].Path)

	summary := out.String()
	assert.Contains(t, summary, "Cleaned files (2)")
	assert.Contains(t, summary, "- settings.gradle.kts: updated, 1 removed")
}

func TestRunCleanup_NothingToClean(t *testing.T) {
	root := setupTestDir(t, map[string]string{"build.gradle": "// empty\n"})

	report := &Report{}
	var out bytes.Buffer
	runCleanup(testOptions(root), report, &out)

	assert.Empty(t, report.Cleanup)
	assert.Contains(t, out.String(), "Nothing to clean.")
}

func TestWriteReport(t *testing.T) {
	root := setupTestDir(t, projectStructure())
	report := &Report{RunID: "run-1", Root: root, Mode: "migrate"}
	var out bytes.Buffer
	require.NoError(t, runMigration(context.Background(), testOptions(root), report, &out))

	reportPath := filepath.Join(t.TempDir(), "report.yaml")
	require.NoError(t, writeReport(reportPath, report))

	data, err := os.ReadFile(reportPath)
	require.NoError(t, err)

	var decoded Report
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	assert.Equal(t, "run-1", decoded.RunID)
	assert.Equal(t, "migrate", decoded.Mode)
	assert.Equal(t, report.Files, decoded.Files)
	assert.Contains(t, string(data), "rule: plugins-clause")
}
