package garden

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/plotwise/garden/internal/service"
)

var spacingJSON bool

var spacingCmd = &cobra.Command{
	Use:   "spacing <text>",
	Short: "Parse a spacing description like \"50x40 cm\"",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sp, err := service.ParseSpacing(strings.Join(args, " "))
		if err != nil {
			return err
		}
		if spacingJSON {
			return printJSON(cmd.OutOrStdout(), sp)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Between rows: %s cm\n", trimFloat(sp.RowCM))
		fmt.Fprintf(cmd.OutOrStdout(), "Between plants: %s cm\n", trimFloat(sp.PlantCM))
		fmt.Fprintf(cmd.OutOrStdout(), "Density: %.1f plants/m2\n", sp.PlantsPerM2())
		return nil
	},
}

func trimFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func init() {
	rootCmd.AddCommand(spacingCmd)
	spacingCmd.Flags().BoolVar(&spacingJSON, "json", false, "Output JSON")
}
