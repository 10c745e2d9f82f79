package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amirpz/snapkit/internal/config"
	"github.com/amirpz/snapkit/internal/logger"
)

// Persistent flag storage, applied over file and environment settings only
// when the user actually set them.
var (
	flagConfig  string
	flagRepo    string
	flagProject string
	flagQuiet   bool
	flagDebug   bool
	flagLogFile string
)

// buildVersion is filled in by Execute before any command runs.
var buildVersion config.VersionInfo

// Execute runs the snapkit CLI and returns the process exit code.
func Execute(versionInfo config.VersionInfo) int {
	buildVersion = versionInfo

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd(versionInfo)
	if err := root.ExecuteContext(ctx); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "❌ Error: %v\n", err)
		return 1
	}
	return 0
}

// newRootCmd builds the root command and wires up the subcommands.
func newRootCmd(versionInfo config.VersionInfo) *cobra.Command {
	root := &cobra.Command{
		Use:   "snapkit",
		Short: "Project snapshot utilities",
		Long: `snapkit bundles three small project-automation tools:

  save   create a numbered zip snapshot, committing and pushing staged changes
  sync   pull, zip the tree into a local snapshots folder, commit and push
  icons  render placeholder app icons into the asset catalog`,
		Version:       fmt.Sprintf("%s (%s) built on %s", versionInfo.Version, versionInfo.Commit, versionInfo.Date),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flagConfig, "config", "", "Path to config file (default: .snapkit.yaml in the repository)")
	pf.StringVar(&flagRepo, "repo", "", "Path to repository (default: current directory)")
	pf.StringVar(&flagProject, "project", "", "Project name used in archive names (default: repository directory name)")
	pf.BoolVar(&flagQuiet, "quiet", false, "Hide informational messages")
	pf.BoolVar(&flagDebug, "debug", false, "Enable debug logging")
	pf.StringVar(&flagLogFile, "log-file", "", "Path to debug log file")

	root.AddCommand(newSaveCmd())
	root.AddCommand(newSyncCmd())
	root.AddCommand(newIconsCmd())

	return root
}

// loadConfig assembles the effective configuration for a command run:
// defaults, then the config file, then the environment, then flags. The
// apply callback lets each subcommand overlay its own flags before
// Finalize.
func loadConfig(cmd *cobra.Command, apply func(*config.Config)) (*config.Config, logger.Logger, error) {
	cfg := config.New()
	cfg.VersionInfo = buildVersion

	path := flagConfig
	explicit := path != ""
	if !explicit {
		repo := flagRepo
		if repo == "" {
			repo = os.Getenv("SNAPKIT_REPO")
		}
		if repo == "" {
			repo = "."
		}
		path = filepath.Join(repo, config.DefaultConfigFile)
	}

	if err := cfg.LoadFromFile(path); err != nil {
		// The implicit config file is optional; an explicit one is not.
		if explicit || !os.IsNotExist(err) {
			return nil, nil, err
		}
	}

	cfg.LoadFromEnvironment()

	flags := cmd.Flags()
	if flags.Changed("repo") {
		cfg.RepoPath = flagRepo
	}
	if flags.Changed("project") {
		cfg.ProjectName = flagProject
	}
	if flags.Changed("quiet") {
		cfg.Verbose = !flagQuiet
	}
	if flags.Changed("debug") {
		cfg.Debug = flagDebug
	}
	if flags.Changed("log-file") {
		cfg.LogFile = flagLogFile
	}

	if apply != nil {
		apply(cfg)
	}

	if err := cfg.Finalize(); err != nil {
		return nil, nil, err
	}

	log := logger.New(cfg.Debug, cfg.LogFile, cfg.Verbose)
	return cfg, log, nil
}

// resolveInRepo anchors a relative path at the repository root.
func resolveInRepo(repoPath, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(repoPath, path)
}
