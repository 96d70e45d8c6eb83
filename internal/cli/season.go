package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/raine/career-tracker/internal/report"
	"github.com/raine/career-tracker/internal/storage"
	"github.com/spf13/cobra"
)

const dateFlagLayout = "2006-01-02"

// NewSeasonCommand creates the season command group.
func NewSeasonCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "season",
		Short: "Create, list and switch seasons",
	}

	cmd.AddCommand(newSeasonCreateCommand(opts))
	cmd.AddCommand(newSeasonListCommand(opts))
	cmd.AddCommand(newSeasonUseCommand(opts))

	return cmd
}

func newSeasonCreateCommand(opts *RootOptions) *cobra.Command {
	var gameVersion, start, end string

	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a season and make it the active one",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			season := storage.Season{
				Name:        strings.Join(args, " "),
				GameVersion: gameVersion,
				CreatedAt:   opts.now(),
			}
			if start != "" {
				t, err := time.Parse(dateFlagLayout, start)
				if err != nil {
					return fmt.Errorf("invalid --start %q, expected YYYY-MM-DD", start)
				}
				season.StartDate = t
			}
			if end != "" {
				t, err := time.Parse(dateFlagLayout, end)
				if err != nil {
					return fmt.Errorf("invalid --end %q, expected YYYY-MM-DD", end)
				}
				season.EndDate = &t
			}

			store, err := opts.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			created, err := store.CreateSeason(season)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created season %d %q (active)\n", created.ID, created.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&gameVersion, "version", "", "game version, e.g. \"FC 25\"")
	cmd.Flags().StringVar(&start, "start", "", "start date (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&end, "end", "", "end date (YYYY-MM-DD)")

	return cmd
}

func newSeasonListCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List seasons, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := opts.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			seasons, err := store.ListSeasons()
			if err != nil {
				return err
			}
			return report.RenderSeasons(cmd.OutOrStdout(), seasons)
		},
	}
}

func newSeasonUseCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "use ID",
		Short: "Make a season the active one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid season id %q", args[0])
			}

			store, err := opts.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.ActivateSeason(id); err != nil {
				return err
			}
			season, err := store.GetSeason(id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Active season is now %d %q\n", season.ID, season.Name)
			return nil
		},
	}
}
