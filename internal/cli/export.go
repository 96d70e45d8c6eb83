package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/raine/career-tracker/internal/report"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// NewExportCommand creates the command that writes a JSON backup.
func NewExportCommand(opts *RootOptions) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every season, snapshot and player record as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := opts.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			doc, err := store.Export(opts.now())
			if err != nil {
				return fmt.Errorf("export failed: %w", err)
			}

			if out == "" || out == "-" {
				return report.WriteExport(cmd.OutOrStdout(), doc)
			}

			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("export failed: %w", err)
			}
			if err := report.WriteExport(f, doc); err != nil {
				f.Close()
				return fmt.Errorf("export failed: %w", err)
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("export failed: %w", err)
			}

			log.Info().Str("file", out).
				Int("seasons", len(doc.Seasons)).
				Int("teamSnapshots", len(doc.TeamSnapshots)).
				Int("playerRecords", len(doc.PlayerRecords)).
				Msg("export written")
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d season(s), %d snapshot(s), %d player record(s) to %s\n",
				len(doc.Seasons), len(doc.TeamSnapshots), len(doc.PlayerRecords), out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default: stdout)")

	return cmd
}

var errClearNotConfirmed = errors.New("refusing to clear all data without --yes")

// NewClearCommand creates the command that wipes the database.
func NewClearCommand(opts *RootOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all seasons, records and processed markers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errClearNotConfirmed
			}

			store, err := opts.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.ClearAll(); err != nil {
				return fmt.Errorf("clear failed: %w", err)
			}
			log.Warn().Msg("all data cleared")
			fmt.Fprintln(cmd.OutOrStdout(), "All data cleared.")
			return nil
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "confirm deleting everything")

	return cmd
}
