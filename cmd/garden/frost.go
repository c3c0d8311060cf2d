package garden

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/plotwise/garden/internal/service"
)

var frostCmd = &cobra.Command{
	Use:   "frost",
	Short: "Manage your local frost dates",
}

var (
	frostLast     string
	frostFirst    string
	frostLocation string
)

var frostSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Set last spring frost and optional first autumn frost",
	RunE: func(cmd *cobra.Command, args []string) error {
		in := service.SetFrostDatesInput{
			LastFrost:  frostLast,
			FirstFrost: frostFirst,
			Location:   frostLocation,
		}
		return withDB(func(sqldb *sql.DB) error {
			if err := service.SetFrostDates(sqldb, in); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Frost dates saved (last %s", frostLast)
			if frostFirst != "" {
				fmt.Fprintf(cmd.OutOrStdout(), ", first %s", frostFirst)
			}
			fmt.Fprintln(cmd.OutOrStdout(), ")")
			return nil
		})
	},
}

var frostShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show stored frost dates",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			profile, err := service.CurrentFrostProfile(sqldb)
			if err != nil {
				return err
			}
			if profile == nil {
				fmt.Fprintln(cmd.OutOrStdout(), frostPrompt)
				return nil
			}
			first := profile.FirstFrost
			if first == "" {
				first = "-"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Last frost: %s\n", profile.LastFrost)
			fmt.Fprintf(cmd.OutOrStdout(), "First frost: %s\n", first)
			if profile.Location != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Location: %s\n", profile.Location)
			}
			return nil
		})
	},
}

var frostClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove stored frost dates",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			if err := service.ClearFrostDates(sqldb); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Frost dates cleared")
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(frostCmd)
	frostCmd.AddCommand(frostSetCmd, frostShowCmd, frostClearCmd)

	frostSetCmd.Flags().StringVar(&frostLast, "last", "", "Average last spring frost date (YYYY-MM-DD)")
	frostSetCmd.Flags().StringVar(&frostFirst, "first", "", "Average first autumn frost date (YYYY-MM-DD)")
	frostSetCmd.Flags().StringVar(&frostLocation, "location", "", "Location label")
	_ = frostSetCmd.MarkFlagRequired("last")
}
