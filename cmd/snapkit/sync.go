package main

import (
	"github.com/spf13/cobra"

	"github.com/amirpz/snapkit/internal/config"
	"github.com/amirpz/snapkit/internal/errors"
	"github.com/amirpz/snapkit/internal/git"
	"github.com/amirpz/snapkit/internal/snapshot"
)

// newSyncCmd builds the timestamp-based snapshot command.
func newSyncCmd() *cobra.Command {
	var (
		flagDir      string
		flagNoteFile string
		flagExclude  []string
	)

	cmd := &cobra.Command{
		Use:   "sync [message]",
		Short: "Pull, archive the tree locally, then commit and push",
		Long: `sync pulls the latest remote changes (a pull failure aborts the run),
optionally records the given message to the note file, zips the working
tree into the local snapshots folder as {project}_snapshot_{timestamp}.zip
while excluding version-control metadata, build caches and prior snapshots,
and finally commits and pushes whatever changed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(cmd, func(cfg *config.Config) {
				if cmd.Flags().Changed("dir") {
					cfg.LocalSnapshotDir = flagDir
				}
				if cmd.Flags().Changed("note-file") {
					cfg.NoteFile = flagNoteFile
				}
				if cmd.Flags().Changed("exclude") {
					cfg.ExcludeDirs = flagExclude
				}
			})
			if err != nil {
				return err
			}
			defer func() { _ = log.Close() }()

			if !git.IsRepository(cfg.RepoPath) {
				return errors.ErrNotGitRepository
			}

			message := ""
			if len(args) > 0 {
				message = args[0]
			}

			snapshotter := snapshot.NewTimestampSnapshotter(snapshot.TimestampConfig{
				RepoPath:         cfg.RepoPath,
				ProjectName:      cfg.ProjectName,
				LocalSnapshotDir: cfg.LocalSnapshotDir,
				NoteFile:         cfg.NoteFile,
				ExcludeDirs:      cfg.ExcludeDirs,
				ExcludeFiles:     cfg.ExcludeFiles,
			}, log)

			return snapshotter.Run(cmd.Context(), message)
		},
	}

	cmd.Flags().StringVar(&flagDir, "dir", config.DefaultLocalSnapshotDir, "Local snapshot directory, relative to the repository")
	cmd.Flags().StringVar(&flagNoteFile, "note-file", config.DefaultNoteFile, "File the optional message is recorded to")
	cmd.Flags().StringSliceVar(&flagExclude, "exclude", nil, "Directory names to exclude from the archive (replaces the default set)")

	return cmd
}
