package garden

import (
	"database/sql"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/plotwise/garden/internal/planting"
	"github.com/plotwise/garden/internal/service"
)

var (
	calendarPlant       string
	calendarCategory    string
	calendarFrom        string
	calendarTo          string
	calendarRecommended bool
	calendarJSON        bool
)

var calendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "Show planting dates for every plant you grow",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			entries, err := service.BuildCalendar(sqldb, service.CalendarOptions{
				Plant:           calendarPlant,
				Category:        calendarCategory,
				From:            calendarFrom,
				To:              calendarTo,
				OnlyRecommended: calendarRecommended,
			})
			if err != nil {
				return handleMissingFrost(cmd.OutOrStdout(), err)
			}
			if calendarJSON {
				return printJSON(cmd.OutOrStdout(), entries)
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No planting dates in range. Add plants with `garden plant add <name>`.")
				return nil
			}
			highlight := color.New(color.FgGreen).SprintFunc()
			fmt.Fprintln(cmd.OutOrStdout(), "DATE\tPLANT\tCATEGORY\tTYPE\tLABEL")
			for _, e := range entries {
				r := e.Recommendation
				line := fmt.Sprintf("%s\t%s\t%s\t%s\t%s", r.Date.Format(planting.DateLayout), e.Plant, e.Category, r.Type, r.Label)
				if r.Note != "" {
					line += " (" + r.Note + ")"
				}
				if r.IsRecommended {
					line = highlight(line)
				}
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(calendarCmd)
	calendarCmd.Flags().StringVar(&calendarPlant, "plant", "", "Only this plant")
	calendarCmd.Flags().StringVar(&calendarCategory, "category", "", "Only plants in this category")
	calendarCmd.Flags().StringVar(&calendarFrom, "from", "", "Start date (YYYY-MM-DD)")
	calendarCmd.Flags().StringVar(&calendarTo, "to", "", "End date (YYYY-MM-DD)")
	calendarCmd.Flags().BoolVar(&calendarRecommended, "recommended", false, "Only recommended dates")
	calendarCmd.Flags().BoolVar(&calendarJSON, "json", false, "Output JSON")
}
