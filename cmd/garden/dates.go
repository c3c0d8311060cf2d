package garden

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/plotwise/garden/internal/planting"
)

var (
	datesCategory   string
	datesName       string
	datesLastFrost  string
	datesFirstFrost string
	datesJSON       bool
)

var datesCmd = &cobra.Command{
	Use:   "dates",
	Short: "Calculate planting dates for a category without touching the database",
	RunE: func(cmd *cobra.Command, args []string) error {
		plant := planting.Plant{Name: datesName, Category: datesCategory}
		recs, ok := planting.Calculate(plant, datesLastFrost, datesFirstFrost)
		if !ok {
			fmt.Fprintln(cmd.OutOrStdout(), "Pass --last-frost YYYY-MM-DD to calculate planting dates.")
			return nil
		}
		if datesJSON {
			return printJSON(cmd.OutOrStdout(), recs)
		}
		if weeks, kind := planting.NameAdjustment(datesName); kind != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: planting out shifted by %+d week(s) (%s)\n", datesName, weeks, kind)
		}
		writeRecommendations(cmd.OutOrStdout(), recs)
		return nil
	},
}

var recommendedMark = color.New(color.FgGreen, color.Bold).SprintFunc()

func writeRecommendations(w io.Writer, recs []planting.Recommendation) {
	fmt.Fprintln(w, "DATE\tTYPE\tLABEL\tRECOMMENDED\tNOTE")
	for _, r := range recs {
		mark := "-"
		if r.IsRecommended {
			mark = recommendedMark("yes")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", r.Date.Format(planting.DateLayout), r.Type, r.Label, mark, r.Note)
	}
}

func init() {
	rootCmd.AddCommand(datesCmd)
	datesCmd.Flags().StringVar(&datesCategory, "category", planting.DefaultCategory, "Plant category")
	datesCmd.Flags().StringVar(&datesName, "name", "", "Plant name (enables name-based adjustments)")
	datesCmd.Flags().StringVar(&datesLastFrost, "last-frost", "", "Last spring frost date (YYYY-MM-DD)")
	datesCmd.Flags().StringVar(&datesFirstFrost, "first-frost", "", "First autumn frost date (YYYY-MM-DD)")
	datesCmd.Flags().BoolVar(&datesJSON, "json", false, "Output JSON")
}
