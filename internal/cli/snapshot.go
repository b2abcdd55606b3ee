package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"codesnap/config"
	"codesnap/internal/adapter/fs"
	"codesnap/internal/adapter/report"
	"codesnap/internal/port"
	"codesnap/internal/usecase"
)

var (
	snapshotOutput     string
	snapshotTitle      string
	snapshotNoProgress bool
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot [path]",
	Short: "Write the snapshot report",
	Long: `Scan the project and write the snapshot report. The report is replaced
atomically; files that cannot be read are annotated inline and do not stop
the run.

Examples:
  codesnap snapshot                       # Use base_dir and output from config
  codesnap snapshot /path/to/project      # Scan a specific directory
  codesnap snapshot -o /tmp/snapshot.txt  # Write the report elsewhere`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSnapshot,
}

func init() {
	rootCmd.AddCommand(snapshotCmd)
	snapshotCmd.Flags().StringVarP(&snapshotOutput, "output", "o", "", "report file (default from config, relative to the base directory)")
	snapshotCmd.Flags().StringVar(&snapshotTitle, "title", "", "report title (default from config)")
	snapshotCmd.Flags().BoolVar(&snapshotNoProgress, "no-progress", false, "disable the progress bar")
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	base, err := resolveBaseDir(args)
	if err != nil {
		return err
	}

	output := cfg.Snapshot.OutputPath(base)
	if snapshotOutput != "" {
		output, err = filepath.Abs(snapshotOutput)
		if err != nil {
			return fmt.Errorf("invalid output path: %w", err)
		}
	}

	title := cfg.Snapshot.Title
	if snapshotTitle != "" {
		title = snapshotTitle
	}

	uc := newSnapshotUseCase(cfg.Snapshot, base, output, title)

	var progress port.ProgressFunc
	if !snapshotNoProgress {
		progress = newProgress(cmd.ErrOrStderr())
	}

	result, err := uc.Snapshot(base, output, progress)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\nSnapshot complete:\n")
	fmt.Fprintf(out, "  Files matched:  %d\n", result.FilesMatched)
	fmt.Fprintf(out, "  Files written:  %d\n", result.FilesWritten)
	if len(result.ReadFailures) > 0 {
		fmt.Fprintf(out, "  Read errors:    %d\n", len(result.ReadFailures))
	}
	fmt.Fprintf(out, "  Size:           %s\n", formatBytes(result.BytesWritten))
	fmt.Fprintf(out, "  Duration:       %s\n", formatDuration(result.Duration))

	if len(result.Warnings) > 0 {
		fmt.Fprintf(out, "\nWarnings:\n")
		for _, w := range result.Warnings {
			fmt.Fprintf(out, "  - %s: %v\n", w.Path, w.Err)
		}
	}

	log.Success(fmt.Sprintf("report written to %s", output))
	return nil
}

// resolveBaseDir returns the directory to scan: the positional argument if
// given, otherwise base_dir from the config relative to --dir.
func resolveBaseDir(args []string) (string, error) {
	var base string
	var err error
	if len(args) > 0 {
		base, err = filepath.Abs(args[0])
	} else {
		base, err = GetConfig().Snapshot.ResolveBaseDir(GetRootDir())
	}
	if err != nil {
		return "", fmt.Errorf("invalid path: %w", err)
	}

	info, err := os.Stat(base)
	if err != nil {
		return "", fmt.Errorf("path does not exist: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("path is not a directory: %s", base)
	}
	return base, nil
}

func newSnapshotUseCase(s config.SnapshotConfig, base, output, title string) *usecase.SnapshotUseCase {
	filter := fs.NewFilter(s.IncludeDirPaths(base), s.AlwaysIncludeEntries(), s.Extensions, s.Excludes)

	walker := fs.NewWalker(filter, s.IgnoredDirs)
	if output != "" {
		walker.Skip(output)
	}

	writer := report.NewWriter(fs.NewReader(), title)
	return usecase.NewSnapshotUseCase(walker, writer, log)
}
