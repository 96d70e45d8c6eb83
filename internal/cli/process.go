package cli

import (
	"fmt"
	"path/filepath"

	"github.com/raine/career-tracker/internal/extract"
	"github.com/raine/career-tracker/internal/processor"
	"github.com/raine/career-tracker/internal/report"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// NewProcessCommand creates the command that extracts screenshots into the
// active season.
func NewProcessCommand(opts *RootOptions) *cobra.Command {
	var seasonID int64

	cmd := &cobra.Command{
		Use:   "process FILE...",
		Short: "Extract stats from screenshots into a season",
		Long: `Sends each screenshot to the vision model one at a time and saves the
confident results. Files processed before (by name) are skipped. A file that
fails does not stop the others.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if err := opts.cfg.Validate(); err != nil {
				if !isInteractiveTerminal() {
					return fmt.Errorf("%w (run `setup` or edit config.env)", err)
				}
				if err := runSetupWizard(ctx, cmd.OutOrStdout(), opts); err != nil {
					return err
				}
				if err := opts.cfg.Validate(); err != nil {
					return err
				}
			}

			store, err := opts.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			season, err := resolveSeason(store, seasonID)
			if err != nil {
				return err
			}

			analyzer, err := opts.newAnalyzer(ctx, opts.cfg)
			if err != nil {
				return fmt.Errorf("failed to initialize %s vision analyzer: %w", opts.cfg.Provider, err)
			}
			log.Info().Str("provider", opts.cfg.Provider).Str("season", season.Name).Msg("vision analyzer initialized")

			uploads, results := loadUploads(args)

			p := processor.New(analyzer, store)
			results = append(results, p.Process(ctx, season.ID, uploads)...)

			fmt.Fprintf(cmd.OutOrStdout(), "Season %q\n\n", season.Name)
			return report.RenderResults(cmd.OutOrStdout(), results)
		},
	}

	cmd.Flags().Int64Var(&seasonID, "season", 0, "season id (default: active season)")

	return cmd
}

// loadUploads reads every path. Unreadable files become failed results named
// like the uploads they would have been.
func loadUploads(paths []string) ([]processor.Upload, []processor.FileResult) {
	var results []processor.FileResult
	uploads := make([]processor.Upload, 0, len(paths))
	for _, path := range paths {
		upload, err := processor.LoadUpload(path)
		if err != nil {
			results = append(results, processor.FileResult{
				Filename:   filepath.Base(path),
				Status:     processor.StatusFailed,
				Extraction: extract.Unknown(err.Error()),
				Err:        err,
			})
			continue
		}
		uploads = append(uploads, upload)
	}
	return uploads, results
}
