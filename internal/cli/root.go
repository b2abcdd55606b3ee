package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"codesnap/config"
	"codesnap/internal/logger"
)

var (
	cfgFile  string
	cfg      *config.Config
	rootDir  string
	logLevel string
	log      *logger.ConsoleLogger
)

var rootCmd = &cobra.Command{
	Use:   "codesnap",
	Short: "Snapshot a slice of a codebase into a single text report",
	Long: `codesnap walks a project directory, keeps the files that belong to the
configured feature directories plus a set of always-included files, and writes
them into one text report: a numbered index followed by every file's content.

Example usage:
  codesnap init                   # Write codesnap.yaml with the defaults
  codesnap list                   # Show which files would be included
  codesnap snapshot               # Write the report
  codesnap snapshot ../app -o snapshot.txt`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		if rootDir == "" {
			rootDir, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}
		}

		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			cfg, err = config.LoadFromDir(rootDir)
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		level := cfg.Logging.Level
		if logLevel != "" {
			level = logLevel
		}
		log = logger.NewConsoleLogger(cmd.ErrOrStderr(), level)

		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./codesnap.yaml)")
	rootCmd.PersistentFlags().StringVarP(&rootDir, "dir", "d", "", "project directory (default is current directory)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "trace, debug, info, warn or error (default from config)")
}

func GetConfig() *config.Config {
	return cfg
}

func GetRootDir() string {
	return rootDir
}
