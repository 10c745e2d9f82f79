package main

import (
	"github.com/spf13/cobra"

	"github.com/amirpz/snapkit/internal/config"
	"github.com/amirpz/snapkit/internal/icons"
)

// newIconsCmd builds the placeholder icon generator command.
func newIconsCmd() *cobra.Command {
	var flagOut string

	cmd := &cobra.Command{
		Use:   "icons",
		Short: "Generate placeholder app icons",
		Long: `icons renders a placeholder PNG for every app-icon size the asset catalog
needs: a purple square with a white circular outline and a centered glyph.
Replace the output with your real icon design before shipping.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(cmd, func(cfg *config.Config) {
				if cmd.Flags().Changed("out") {
					cfg.IconDir = flagOut
				}
			})
			if err != nil {
				return err
			}
			defer func() { _ = log.Close() }()

			outputDir := resolveInRepo(cfg.RepoPath, cfg.IconDir)
			generator := icons.NewGenerator(outputDir, log)

			if err := generator.Generate(); err != nil {
				// Icon generation is best-effort: print remediation
				// guidance and exit cleanly instead of failing the run.
				log.Error("Could not generate placeholder icons: %v", err)
				log.StatusMessage("To add icons manually, place PNG files in:")
				log.StatusMessage("  %s", outputDir)
				log.StatusMessage("Required sizes: 20, 29, 40, 58, 60, 76, 80, 87, 120, 152, 167, 180, 1024 pixels")
				return nil
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&flagOut, "out", config.DefaultIconDir, "Output directory for generated icons, relative to the repository")

	return cmd
}
