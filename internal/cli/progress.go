package cli

import (
	"github.com/raine/career-tracker/internal/report"
	"github.com/spf13/cobra"
)

// NewProgressCommand creates the command that summarizes a season.
func NewProgressCommand(opts *RootOptions) *cobra.Command {
	var seasonID int64

	cmd := &cobra.Command{
		Use:   "progress",
		Short: "Show standing history and top players of a season",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := opts.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			season, err := resolveSeason(store, seasonID)
			if err != nil {
				return err
			}
			progress, err := store.Progress(season.ID)
			if err != nil {
				return err
			}
			return report.Render(cmd.OutOrStdout(), season, progress)
		},
	}

	cmd.Flags().Int64Var(&seasonID, "season", 0, "season id (default: active season)")

	return cmd
}

// NewProcessedCommand creates the command that lists extracted filenames.
func NewProcessedCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "processed",
		Short: "List screenshots that were already extracted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := opts.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			markers, err := store.ListProcessed()
			if err != nil {
				return err
			}
			return report.RenderProcessed(cmd.OutOrStdout(), markers)
		},
	}
}
