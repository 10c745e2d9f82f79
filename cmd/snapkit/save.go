package main

import (
	"github.com/spf13/cobra"

	"github.com/amirpz/snapkit/internal/config"
	"github.com/amirpz/snapkit/internal/errors"
	"github.com/amirpz/snapkit/internal/git"
	"github.com/amirpz/snapkit/internal/lock"
	"github.com/amirpz/snapkit/internal/snapshot"
)

// newSaveCmd builds the counter-based snapshot command.
func newSaveCmd() *cobra.Command {
	var (
		flagSnapshotDir string
		flagRetain      int
		flagCounterFile string
	)

	cmd := &cobra.Command{
		Use:   "save",
		Short: "Create a numbered snapshot archive, pushing staged changes first",
		Long: `save bumps the persisted snapshot counter, stages everything, commits and
pushes only when the stage is non-empty, zips the whole working tree to the
snapshot directory as {project}_{N}.zip, and prunes archives beyond the
retention window.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(cmd, func(cfg *config.Config) {
				if cmd.Flags().Changed("snapshot-dir") {
					cfg.SnapshotDir = flagSnapshotDir
				}
				if cmd.Flags().Changed("retain") {
					cfg.Retain = flagRetain
				}
				if cmd.Flags().Changed("counter-file") {
					cfg.CounterFile = flagCounterFile
				}
			})
			if err != nil {
				return err
			}
			defer func() { _ = log.Close() }()

			if !git.IsRepository(cfg.RepoPath) {
				return errors.ErrNotGitRepository
			}

			locker, err := lock.New(cfg.RepoPath)
			if err != nil {
				return err
			}
			if err := locker.Acquire(); err != nil {
				return err
			}
			defer func() {
				if err := locker.Release(); err != nil {
					log.Error("Failed to release lock: %v", err)
				}
			}()

			snapshotter := snapshot.NewCounterSnapshotter(snapshot.CounterConfig{
				RepoPath:    cfg.RepoPath,
				ProjectName: cfg.ProjectName,
				SnapshotDir: cfg.SnapshotDir,
				CounterFile: cfg.CounterFile,
				Retain:      cfg.Retain,
			}, log)

			return snapshotter.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&flagSnapshotDir, "snapshot-dir", "", "Directory for numbered archives (default: $XDG_DATA_HOME/snapkit/snapshots)")
	cmd.Flags().IntVar(&flagRetain, "retain", config.DefaultRetain, "How many numbered archives to keep")
	cmd.Flags().StringVar(&flagCounterFile, "counter-file", config.DefaultCounterFile, "Path of the snapshot counter file")

	return cmd
}
