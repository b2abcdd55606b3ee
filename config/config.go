package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for codesnap.
type Config struct {
	Snapshot SnapshotConfig `yaml:"snapshot"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// SnapshotConfig describes which files go into the report and where it is written.
type SnapshotConfig struct {
	BaseDir       string   `yaml:"base_dir"`
	Output        string   `yaml:"output"` // relative to base_dir unless absolute
	Title         string   `yaml:"title"`
	IncludeDirs   []string `yaml:"include_dirs"`
	AlwaysInclude []string `yaml:"always_include"` // bare filenames or slash-separated relative paths
	Extensions    []string `yaml:"extensions"`
	IgnoredDirs   []string `yaml:"ignored_dirs"`
	Excludes      []string `yaml:"excludes"` // doublestar patterns on the relative path
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultTitle is the header written at the top of every report.
const DefaultTitle = "ÍNDICE DE ARCHIVOS (MÓDULO CAMARERO + SHARED)"

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Snapshot: SnapshotConfig{
			BaseDir: ".",
			Output:  "project-camarero-module.txt",
			Title:   DefaultTitle,
			IncludeDirs: []string{
				"backend/src/modules/camarero",
				"frontend/src/modules/camarero",
				"backend/src/shared",
				"frontend/src/shared",
			},
			AlwaysInclude: []string{
				"README.md", "package.json", "tsconfig.json", "vite.config.ts",
				"index.html", "postcss.config.js", "tailwind.config.js",
				"backend/src/index.ts",
				"backend/src/routes/index.ts",
				"frontend/src/routes/index.tsx",
				"frontend/src/main.tsx",
			},
			Extensions:  []string{".ts", ".tsx", ".js", ".json", ".html", ".css", ".md"},
			IgnoredDirs: []string{"node_modules", ".git", ".vscode", "dist", "__pycache__"},
			Excludes:    []string{},
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Return defaults if no config file
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for codesnap.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, ".codesnap", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	return DefaultConfig(), nil
}

// FileName is the config file looked up in the project directory.
const FileName = "codesnap.yaml"

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate reports the first problem that would make a snapshot run meaningless.
func (c *Config) Validate() error {
	s := c.Snapshot
	if strings.TrimSpace(s.Output) == "" {
		return errors.New("snapshot.output must not be empty")
	}
	for _, ext := range s.Extensions {
		if ext == "" {
			return errors.New("snapshot.extensions contains an empty entry")
		}
	}
	for _, name := range s.IgnoredDirs {
		if name == "" || strings.ContainsAny(name, `/\`) {
			return fmt.Errorf("snapshot.ignored_dirs entry %q must be a bare directory name", name)
		}
	}
	for _, pattern := range s.Excludes {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("snapshot.excludes: invalid pattern %q", pattern)
		}
	}
	return nil
}

// ResolveBaseDir returns the absolute base directory. A relative base_dir is
// taken relative to root.
func (s SnapshotConfig) ResolveBaseDir(root string) (string, error) {
	base := s.BaseDir
	if base == "" {
		base = "."
	}
	if !filepath.IsAbs(base) {
		base = filepath.Join(root, base)
	}
	return filepath.Abs(base)
}

// OutputPath returns the absolute report path for the given base directory.
func (s SnapshotConfig) OutputPath(base string) string {
	if filepath.IsAbs(s.Output) {
		return filepath.Clean(s.Output)
	}
	return filepath.Join(base, filepath.FromSlash(s.Output))
}

// IncludeDirPaths returns the included directory prefixes as clean absolute paths.
func (s SnapshotConfig) IncludeDirPaths(base string) []string {
	dirs := make([]string, 0, len(s.IncludeDirs))
	for _, dir := range s.IncludeDirs {
		if filepath.IsAbs(dir) {
			dirs = append(dirs, filepath.Clean(dir))
			continue
		}
		dirs = append(dirs, filepath.Join(base, filepath.FromSlash(dir)))
	}
	return dirs
}

// AlwaysIncludeEntries returns always_include with separators normalized to "/".
func (s SnapshotConfig) AlwaysIncludeEntries() []string {
	entries := make([]string, 0, len(s.AlwaysInclude))
	for _, entry := range s.AlwaysInclude {
		entries = append(entries, strings.ReplaceAll(entry, `\`, "/"))
	}
	return entries
}
