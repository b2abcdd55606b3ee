package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list [path]",
	Short: "Print the files that would go into the report",
	Long: `Scan the project with the configured rules and print the numbered index
exactly as it would appear in the report, without writing anything.

Examples:
  codesnap list
  codesnap list /path/to/project`,
	Args: cobra.MaximumNArgs(1),
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	base, err := resolveBaseDir(args)
	if err != nil {
		return err
	}

	uc := newSnapshotUseCase(cfg.Snapshot, base, cfg.Snapshot.OutputPath(base), cfg.Snapshot.Title)
	files, _, err := uc.Collect(base)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for i, f := range files {
		fmt.Fprintf(out, "%d. %s\n", i+1, f.RelPath)
	}
	log.LogInfo(fmt.Sprintf("%d files under %s", len(files), base))
	return nil
}
