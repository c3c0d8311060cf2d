package garden

import (
	"database/sql"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/plotwise/garden/internal/service"
)

var plantCmd = &cobra.Command{
	Use:   "plant",
	Short: "Manage the plants you grow",
}

var (
	plantCategory    string
	plantDisplayName string
	plantSpacing     string
	plantNotes       string
	plantJSON        bool
	plantLimit       int

	catalogFile   string
	catalogFormat string
	catalogMode   string
	catalogDryRun bool
)

var plantAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a plant",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			id, err := service.AddPlant(sqldb, service.PlantInput{
				Name:        args[0],
				DisplayName: plantDisplayName,
				Category:    plantCategory,
				Spacing:     plantSpacing,
				Notes:       plantNotes,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added plant %d\n", id)
			return nil
		})
	},
}

var plantListCmd = &cobra.Command{
	Use:   "list",
	Short: "List plants",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			plants, err := service.ListPlants(sqldb, service.ListPlantsFilter{Category: plantCategory, Limit: plantLimit})
			if err != nil {
				return err
			}
			if plantJSON {
				return printJSON(cmd.OutOrStdout(), plants)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ID\tNAME\tCATEGORY\tSPACING\tIMAGE")
			for _, p := range plants {
				image := "-"
				if !p.Image.Empty() {
					image = "yes"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\t%s\t%s\n", p.ID, p.Label(), p.Category, p.Spacing, image)
			}
			return nil
		})
	},
}

var plantShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show a plant with its planting dates",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			p, err := service.PlantByName(sqldb, args[0])
			if err != nil {
				return err
			}
			if plantJSON {
				return printJSON(cmd.OutOrStdout(), p)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Name: %s\n", p.Label())
			fmt.Fprintf(out, "Category: %s\n", p.Category)
			if p.Spacing != "" {
				sp := service.Spacing{RowCM: p.RowSpacingCM, PlantCM: p.PlantSpacingCM}
				fmt.Fprintf(out, "Spacing: %s (%.1f plants/m2)\n", sp, sp.PlantsPerM2())
			}
			if p.Notes != "" {
				fmt.Fprintf(out, "Notes: %s\n", p.Notes)
			}
			if !p.Image.Empty() {
				fmt.Fprintf(out, "Image: %s (%s, %s)\n", p.Image.URL, p.Image.Author, p.Image.License)
			}

			_, recs, err := service.PlantDates(sqldb, args[0])
			if err != nil {
				return handleMissingFrost(out, err)
			}
			writeRecommendations(out, recs)
			return nil
		})
	},
}

var plantRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a plant",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			if err := service.RemovePlant(sqldb, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed plant %s\n", strings.TrimSpace(args[0]))
			return nil
		})
	},
}

var plantImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Import plants from a YAML or JSON catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		if strings.TrimSpace(catalogFile) == "" {
			return fmt.Errorf("--file is required")
		}
		format, err := service.ParseCatalogFormat(formatFor(catalogFile, catalogFormat))
		if err != nil {
			return err
		}
		f, err := os.Open(catalogFile)
		if err != nil {
			return fmt.Errorf("open catalog: %w", err)
		}
		defer f.Close()
		return withDB(func(sqldb *sql.DB) error {
			report, err := service.ImportCatalog(sqldb, f, service.ImportOptions{
				Format: format,
				Mode:   service.ImportMode(strings.ToLower(strings.TrimSpace(catalogMode))),
				DryRun: catalogDryRun,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Import report: inserted=%d updated=%d skipped=%d\n", report.Inserted, report.Updated, report.Skipped)
			for _, w := range report.Warnings {
				fmt.Fprintf(cmd.OutOrStdout(), "warning: %s\n", w)
			}
			if catalogDryRun {
				fmt.Fprintln(cmd.OutOrStdout(), "Dry run: no changes written")
			}
			return nil
		})
	},
}

var plantExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export plants as a YAML or JSON catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := service.ParseCatalogFormat(formatFor(catalogFile, catalogFormat))
		if err != nil {
			return err
		}
		return withDB(func(sqldb *sql.DB) error {
			var w io.Writer = cmd.OutOrStdout()
			if catalogFile != "" {
				f, err := os.Create(catalogFile)
				if err != nil {
					return fmt.Errorf("create catalog file: %w", err)
				}
				defer f.Close()
				w = f
			}
			if err := service.ExportCatalog(sqldb, w, format); err != nil {
				return err
			}
			if catalogFile != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Exported plants to %s\n", catalogFile)
			}
			return nil
		})
	},
}

// formatFor prefers an explicit --format, then the file extension.
func formatFor(path, explicit string) string {
	if strings.TrimSpace(explicit) != "" {
		return explicit
	}
	if strings.HasSuffix(strings.ToLower(path), ".json") {
		return "json"
	}
	return "yaml"
}

func init() {
	rootCmd.AddCommand(plantCmd)
	plantCmd.AddCommand(plantAddCmd, plantListCmd, plantShowCmd, plantRemoveCmd, plantImportCmd, plantExportCmd)

	plantAddCmd.Flags().StringVar(&plantCategory, "category", "", "Plant category (default from config, else vegetable)")
	plantAddCmd.Flags().StringVar(&plantDisplayName, "display-name", "", "Name shown in listings")
	plantAddCmd.Flags().StringVar(&plantSpacing, "spacing", "", "Spacing, e.g. \"50x40 cm\"")
	plantAddCmd.Flags().StringVar(&plantNotes, "notes", "", "Free-text notes")

	plantListCmd.Flags().StringVar(&plantCategory, "category", "", "Filter by category")
	plantListCmd.Flags().IntVar(&plantLimit, "limit", 0, "Maximum plants to list (0 = all)")
	plantListCmd.Flags().BoolVar(&plantJSON, "json", false, "Output JSON")
	plantShowCmd.Flags().BoolVar(&plantJSON, "json", false, "Output JSON")

	for _, c := range []*cobra.Command{plantImportCmd, plantExportCmd} {
		c.Flags().StringVar(&catalogFile, "file", "", "Catalog file path")
		c.Flags().StringVar(&catalogFormat, "format", "", "Catalog format: yaml or json (default from file extension)")
	}
	plantImportCmd.Flags().StringVar(&catalogMode, "mode", "merge", "Conflict mode: fail, skip, merge or replace")
	plantImportCmd.Flags().BoolVar(&catalogDryRun, "dry-run", false, "Validate without writing")
}
