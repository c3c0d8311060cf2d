package garden

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/plotwise/garden/internal/service"
)

var doctorFix bool

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run data integrity checks",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			report, err := service.RunDoctor(sqldb, doctorFix)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Plants with unknown category: %d\n", report.UnknownCategories)
			fmt.Fprintf(out, "Plants with unparsable spacing: %d\n", report.UnparsableSpacing)
			fmt.Fprintf(out, "Expired image cache rows: %d\n", report.ExpiredImageCache)
			if report.FrostOrderInvalid {
				fmt.Fprintln(out, "First frost date is not after last frost date")
			}
			if doctorFix {
				fmt.Fprintf(out, "Fixed category rows: %d\n", report.FixedCategoryRows)
				fmt.Fprintf(out, "Fixed spacing rows: %d\n", report.FixedSpacingRows)
				fmt.Fprintf(out, "Purged image cache rows: %d\n", report.PurgedImageCache)
				// Re-check after fixes so exit status reflects final state.
				report, err = service.RunDoctor(sqldb, false)
				if err != nil {
					return err
				}
			}
			if !report.Healthy() {
				return fmt.Errorf("doctor found integrity issues")
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false, "Attempt safe auto-fixes")
}
