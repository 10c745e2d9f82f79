package config

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/amirpz/snapkit/internal/errors"
)

const (
	// DefaultRetain is how many counter-based archives survive a prune.
	DefaultRetain = 3

	// DefaultCounterFile is the counter path, relative to the repository.
	DefaultCounterFile = ".snapshot_count"

	// DefaultNoteFile is where sync records its optional message,
	// relative to the repository.
	DefaultNoteFile = "last_agent_log.txt"

	// DefaultLocalSnapshotDir is sync's archive directory, relative to
	// the repository.
	DefaultLocalSnapshotDir = "snapshots"

	// DefaultIconDir is where generated placeholder icons land, relative
	// to the repository.
	DefaultIconDir = "Resources/Assets/Assets.xcassets/AppIcon.appiconset"

	// DefaultConfigFile is looked up in the repository root when no
	// --config flag is given.
	DefaultConfigFile = ".snapkit.yaml"
)

// DefaultExcludeDirs are the directory names sync keeps out of its
// archives at any depth: version-control metadata, build caches, and prior
// snapshots.
var DefaultExcludeDirs = []string{".git", "__pycache__", "DerivedData", ".build", "build", "snapshots"}

// Config holds all snapkit settings. Precedence, lowest to highest:
// built-in defaults, the YAML config file, SNAPKIT_* environment variables,
// command-line flags.
type Config struct {
	// Repository and naming
	RepoPath    string `yaml:"repo"`
	ProjectName string `yaml:"project"`

	// save (counter-based snapshots)
	SnapshotDir string `yaml:"snapshot_dir"`
	CounterFile string `yaml:"counter_file"`
	Retain      int    `yaml:"retain"`

	// sync (timestamp-based snapshots)
	LocalSnapshotDir string   `yaml:"local_snapshot_dir"`
	NoteFile         string   `yaml:"note_file"`
	ExcludeDirs      []string `yaml:"exclude_dirs"`
	ExcludeFiles     []string `yaml:"exclude_files"`

	// icons
	IconDir string `yaml:"icon_dir"`

	// User experience
	Verbose bool `yaml:"-"`

	// Debugging
	Debug   bool   `yaml:"debug"`
	LogFile string `yaml:"log_file"`

	// Build metadata
	VersionInfo VersionInfo `yaml:"-"`
}

// VersionInfo contains build-time version metadata.
type VersionInfo struct {
	Version string
	Commit  string
	Date    string
}

// New creates a Config with default values.
func New() *Config {
	return &Config{
		Retain:           DefaultRetain,
		CounterFile:      DefaultCounterFile,
		NoteFile:         DefaultNoteFile,
		LocalSnapshotDir: DefaultLocalSnapshotDir,
		IconDir:          DefaultIconDir,
		ExcludeDirs:      append([]string(nil), DefaultExcludeDirs...),
		Verbose:          true,

		VersionInfo: VersionInfo{
			Version: "dev",
			Commit:  "unknown",
			Date:    "unknown",
		},
	}
}

// LoadFromFile overlays settings from a YAML config file. The caller
// decides whether a missing file matters; the os.ErrNotExist is passed
// through unwrapped for that purpose.
func (c *Config) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return errors.NewConfigError("config file", path,
			errors.Wrap(errors.ErrInvalidConfiguration, err.Error()))
	}

	return nil
}

// LoadFromEnvironment overlays settings from SNAPKIT_* environment
// variables.
func (c *Config) LoadFromEnvironment() {
	c.RepoPath = getEnvString("SNAPKIT_REPO", c.RepoPath)
	c.ProjectName = getEnvString("SNAPKIT_PROJECT", c.ProjectName)
	c.SnapshotDir = getEnvString("SNAPKIT_SNAPSHOT_DIR", c.SnapshotDir)
	c.CounterFile = getEnvString("SNAPKIT_COUNTER_FILE", c.CounterFile)
	c.Retain = getEnvInt("SNAPKIT_RETAIN", c.Retain)
	c.LocalSnapshotDir = getEnvString("SNAPKIT_LOCAL_SNAPSHOT_DIR", c.LocalSnapshotDir)
	c.NoteFile = getEnvString("SNAPKIT_NOTE_FILE", c.NoteFile)
	c.ExcludeDirs = getEnvList("SNAPKIT_EXCLUDE_DIRS", c.ExcludeDirs)
	c.IconDir = getEnvString("SNAPKIT_ICON_DIR", c.IconDir)
	c.Verbose = getEnvBool("SNAPKIT_VERBOSE", c.Verbose)
	c.Debug = getEnvBool("SNAPKIT_DEBUG", c.Debug)
	c.LogFile = getEnvString("SNAPKIT_LOG_FILE", c.LogFile)
}

// Finalize validates the configuration and fills in derived defaults.
func (c *Config) Finalize() error {
	if c.Retain < 1 {
		return errors.NewConfigError("retain", c.Retain,
			errors.Wrap(errors.ErrInvalidConfiguration,
				fmt.Sprintf("invalid retention count: %d (must be at least 1)", c.Retain)))
	}

	if c.RepoPath == "" {
		wd, err := os.Getwd()
		if err != nil {
			return errors.NewConfigError("repo", "",
				errors.Wrap(errors.ErrInvalidConfiguration,
					fmt.Sprintf("failed to get current directory: %v", err)))
		}
		c.RepoPath = wd
	}

	absRepoPath, err := filepath.Abs(c.RepoPath)
	if err != nil {
		return errors.NewConfigError("repo", c.RepoPath,
			errors.Wrap(errors.ErrInvalidConfiguration,
				fmt.Sprintf("failed to resolve absolute path: %v", err)))
	}
	c.RepoPath = absRepoPath

	if c.ProjectName == "" {
		c.ProjectName = filepath.Base(c.RepoPath)
	}

	if c.SnapshotDir == "" {
		c.SnapshotDir = filepath.Join(dataHome(), "snapkit", "snapshots")
	}

	// The counter path is resolved here; paths consumed by sync stay
	// repo-relative and are anchored by the snapshotter.
	if !filepath.IsAbs(c.CounterFile) {
		c.CounterFile = filepath.Join(c.RepoPath, c.CounterFile)
	}

	if c.LogFile == "" {
		repoHash := fmt.Sprintf("%x", sha256.Sum256([]byte(c.RepoPath)))[:16]
		c.LogFile = filepath.Join(dataHome(), "snapkit", "logs", fmt.Sprintf("snapkit-%s.log", repoHash))
	}

	return nil
}

// dataHome returns the XDG data directory, falling back to ~/.local/share
// and finally the temp directory.
func dataHome() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return dir
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(homeDir, ".local", "share")
	}
	return os.TempDir()
}

// getEnvString returns an environment variable string or a default value.
func getEnvString(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvInt returns an environment variable as int or a default value.
func getEnvInt(key string, defaultValue int) int {
	if valueStr, exists := os.LookupEnv(key); exists {
		if value, err := strconv.Atoi(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}

// getEnvBool returns an environment variable as bool or a default value.
func getEnvBool(key string, defaultValue bool) bool {
	if valueStr, exists := os.LookupEnv(key); exists {
		switch strings.ToLower(valueStr) {
		case "true", "1", "yes":
			return true
		case "false", "0", "no":
			return false
		}
		// Any other value falls back to the default
	}
	return defaultValue
}

// getEnvList returns a comma-separated environment variable as a slice or a
// default value.
func getEnvList(key string, defaultValue []string) []string {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}

	var values []string
	for _, part := range strings.Split(valueStr, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}
