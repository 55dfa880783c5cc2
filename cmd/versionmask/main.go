// cmd/versionmask/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	pflag "github.com/spf13/pflag"

	"github.com/gagin/versionmask/internal/cleanup"
	"github.com/gagin/versionmask/internal/filelock"
	"github.com/gagin/versionmask/internal/pattern"
	"github.com/gagin/versionmask/internal/rewrite"
	"github.com/gagin/versionmask/internal/selector"
	"github.com/gagin/versionmask/internal/update"
)

const Version = "0.3.0"

var (
	targetDirFlagValue string
	manualFiles        []string
	excludePatterns    []string
	useGitignore       bool
	dryRun             bool
	cleanupMode        bool
	workers            int
	reportFile         string
	noColor            bool
	logLevelStr        string
	configFileFlag     string
	versionFlag        bool
)

func init() {
	pflag.StringVarP(&targetDirFlagValue, "directory", "d", ".", "Project root to scan.")
	pflag.StringSliceVarP(&manualFiles, "files", "f", []string{}, "Comma-separated extra files to rewrite regardless of their name.")
	pflag.StringSliceVarP(&excludePatterns, "exclude", "x", []string{}, "Comma-separated doublestar patterns to exclude (adds to config).")
	pflag.BoolVar(&useGitignore, "gitignore", false, "Honor .gitignore and .ignore files while scanning (overrides config).")
	pflag.BoolVarP(&dryRun, "dry-run", "n", false, "Report what would change without writing any file.")
	pflag.BoolVar(&cleanupMode, "cleanup", false, "Clean settings files and the versions file instead of rewriting build files.")
	pflag.IntVarP(&workers, "workers", "w", 0, "Number of files processed in parallel (0 = number of CPUs).")
	pflag.StringVarP(&reportFile, "report", "r", "", "Write a YAML report of the run to this file.")
	pflag.BoolVar(&noColor, "no-color", false, "Disable colored summary output.")
	pflag.StringVar(&logLevelStr, "loglevel", "info", "Set logging verbosity (debug, info, warn, error).")
	pflag.StringVarP(&configFileFlag, "config", "c", "", "Path to a custom configuration file.")
	pflag.BoolVarP(&versionFlag, "version", "v", false, "Print version and exit.")

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: %s [project_directory]
   or: %s [flags]

Replace hardcoded dependency versions in Gradle build files with the "_" placeholder.
Run it on a clean working tree: files are rewritten in place without backup.

Flags:
`, os.Args[0], os.Args[0])
		pflag.PrintDefaults()
	}
}

// runOptions is everything a run needs once flags and config are merged.
type runOptions struct {
	Root            string
	Cwd             string
	ManualFiles     []string
	ExcludeDirs     []string
	ExcludePatterns []string
	ExtraDenylist   []string
	UseGitignore    bool
	DryRun          bool
	Workers         int
	VersionsFile    string
}

func main() {
	pflag.Parse()

	if versionFlag {
		fmt.Printf("versionmask version %s\n", Version)
		os.Exit(0)
	}

	// Setup Logging
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(logLevelStr)); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid log level %q, defaulting to 'info'.\n", logLevelStr)
		logLevel = slog.LevelInfo
	}
	logOpts := &slog.HandlerOptions{Level: logLevel, AddSource: logLevel <= slog.LevelDebug}
	runID := uuid.NewString()
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, logOpts)).With("run", runID))

	appConfig, loadErr := loadConfig(configFileFlag)
	if loadErr != nil {
		if pflag.CommandLine.Changed("config") {
			fmt.Fprintf(os.Stderr, "Error: Could not load configuration file '%s': %v\n", configFileFlag, loadErr)
			os.Exit(1)
		}
		slog.Error("Failed to load configuration, using defaults.", "error", loadErr)
		appConfig = defaultConfig
	}

	// Argument Mode Validation
	positionalArgs := pflag.Args()
	finalTargetDirectory := targetDirFlagValue
	if len(positionalArgs) > 1 {
		fmt.Fprintf(os.Stderr, "Refusing execution: Multiple positional arguments provided: %v.\n", positionalArgs)
		os.Exit(1)
	} else if len(positionalArgs) == 1 {
		if pflag.CommandLine.Changed("directory") {
			fmt.Fprintf(os.Stderr, "Refusing execution: Cannot mix positional argument '%s' with flag '--directory'.\n", positionalArgs[0])
			os.Exit(1)
		}
		finalTargetDirectory = tern(positionalArgs[0] == "", ".", positionalArgs[0])
		slog.Debug("Using project directory from positional argument.", "path", finalTargetDirectory)
	}

	absTargetDir, err := filepath.Abs(finalTargetDirectory)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Invalid project directory path '%s': %v\n", finalTargetDirectory, err)
		os.Exit(1)
	}
	dirInfo, err := os.Stat(absTargetDir)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Error: Project directory '%s' not found.\n", absTargetDir)
		} else {
			fmt.Fprintf(os.Stderr, "Error accessing project directory '%s': %v\n", absTargetDir, err)
		}
		os.Exit(1)
	}
	if !dirInfo.IsDir() {
		fmt.Fprintf(os.Stderr, "Error: Specified project path '%s' is not a directory.\n", absTargetDir)
		os.Exit(1)
	}

	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Cannot determine working directory: %v\n", err)
		os.Exit(1)
	}

	opts := runOptions{
		Root:            absTargetDir,
		Cwd:             cwd,
		ManualFiles:     splitList(manualFiles),
		ExcludeDirs:     splitList(appConfig.ExcludeDirs),
		ExcludePatterns: splitList(append(append([]string{}, appConfig.ExcludePatterns...), excludePatterns...)),
		ExtraDenylist:   splitList(appConfig.ExtraDenylist),
		UseGitignore:    *appConfig.UseGitignore,
		DryRun:          dryRun,
		Workers:         *appConfig.Workers,
		VersionsFile:    *appConfig.VersionsFile,
	}
	if pflag.CommandLine.Changed("gitignore") {
		opts.UseGitignore = useGitignore
	}
	if pflag.CommandLine.Changed("workers") {
		opts.Workers = workers
	}

	lock, err := filelock.AcquireRunLock(absTargetDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if errRelease := lock.Release(); errRelease != nil {
			slog.Warn("Could not release run lock.", "error", errRelease)
		}
	}()

	summaryWriter := io.Writer(os.Stdout)
	color.NoColor = noColor || !(isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	report := &Report{RunID: runID, Root: absTargetDir, DryRun: dryRun, Started: time.Now().UTC()}
	var runErr error
	if cleanupMode {
		report.Mode = "cleanup"
		runCleanup(opts, report, summaryWriter)
	} else {
		report.Mode = "migrate"
		runErr = runMigration(ctx, opts, report, summaryWriter)
	}

	if reportFile != "" {
		if errReport := writeReport(reportFile, report); errReport != nil {
			slog.Error("Failed to write report.", "path", reportFile, "error", errReport)
			report.Failures++
		} else {
			slog.Info("Wrote report.", "path", reportFile)
		}
	}

	slog.Debug("Execution finished.", "failures", report.Failures)
	if runErr != nil || report.Failures > 0 {
		stop()
		_ = lock.Release()
		os.Exit(1)
	}
}

// runMigration scans the project, rewrites the build files and prints the summary. The
// returned error is fatal (invalid root); per-file failures are counted in report.
func runMigration(ctx context.Context, opts runOptions, report *Report, w io.Writer) error {
	files, scanErr := selector.Find(opts.Root, selector.Options{
		UseGitignore:    opts.UseGitignore,
		ExcludeDirs:     opts.ExcludeDirs,
		ExcludePatterns: opts.ExcludePatterns,
	})
	if errors.Is(scanErr, selector.ErrInvalidInput) {
		slog.Error("Cannot scan project.", "error", scanErr)
		return scanErr
	}
	if scanErr != nil {
		slog.Warn("Scan finished with errors; continuing with the files found.", "error", scanErr)
	}

	manual, errorFiles := resolveManualFiles(opts.Cwd, opts.ManualFiles)
	isManual := make(map[string]bool, len(manual))
	for _, f := range manual {
		isManual[f] = true
	}
	files = mergeFiles(files, manual)
	if len(files) == 0 {
		slog.Warn("No build files found.", "root", opts.Root)
	}

	lib := pattern.NewLibrary(opts.ExtraDenylist...)
	slog.Debug("Pattern library ready.", "denylist", lib.Denylist())
	rw := rewrite.New(lib)

	results := update.Run(ctx, files, rw, update.Options{DryRun: opts.DryRun, Workers: opts.Workers})
	slog.Info("Build files processed.", "counts", update.Counts(results))

	report.addUpdates(opts.Root, results)
	report.addErrors(errorFiles)
	if scanErr != nil {
		report.Failures++
	}
	printMigrationSummary(results, isManual, errorFiles, opts.Root, opts.DryRun, w)
	return nil
}

// runCleanup strips available-update annotations from the versions file and the
// settings files.
func runCleanup(opts runOptions, report *Report, w io.Writer) {
	versionsPath := opts.VersionsFile
	if !filepath.IsAbs(versionsPath) {
		versionsPath = filepath.Join(opts.Root, versionsPath)
	}

	results := []cleanup.Result{cleanup.CleanVersionsProperties(versionsPath, opts.DryRun)}
	results = append(results, cleanup.CleanSettings(opts.Root, opts.DryRun)...)

	report.addCleanup(opts.Root, results)
	printCleanupSummary(results, opts.Root, w)
}
