package garden

import (
	"database/sql"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/plotwise/garden/internal/provider/wikimedia"
	"github.com/plotwise/garden/internal/service"
)

var imagesCmd = &cobra.Command{
	Use:   "images",
	Short: "Find plant photos on Wikimedia Commons",
}

var (
	imagesLimit   int
	imagesRefresh bool
	imagesRate    float64
	imagesJSON    bool
)

var imagesFetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Look up images for plants that have none",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := newLogger()
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		rate := cfg.Wikimedia.RequestsPerSecond
		if cmd.Flags().Changed("rate") {
			rate = imagesRate
		}
		if rate <= 0 {
			return fmt.Errorf("--rate must be > 0")
		}
		client := &wikimedia.Client{BaseURL: cfg.Wikimedia.BaseURL, UserAgent: cfg.Wikimedia.UserAgent}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		return withDB(func(sqldb *sql.DB) error {
			report, err := service.FetchPlantImages(ctx, sqldb, client, service.FetchImagesOptions{
				Limit:             imagesLimit,
				RequestsPerSecond: rate,
				Refresh:           imagesRefresh,
				Logger:            logger,
			})
			if err != nil && ctx.Err() == nil {
				return err
			}
			if imagesJSON {
				return printJSON(cmd.OutOrStdout(), report)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Checked: %d\nUpdated: %d\nCache hits: %d\nNo image: %d\nFailed: %d\n",
				report.Checked, report.Updated, report.CacheHits, report.Missing, report.Failed)
			if ctx.Err() != nil {
				fmt.Fprintln(cmd.OutOrStdout(), "Interrupted; run again to continue")
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(imagesCmd)
	imagesCmd.AddCommand(imagesFetchCmd)
	imagesFetchCmd.Flags().IntVar(&imagesLimit, "limit", 0, "Maximum plants to check (0 = all)")
	imagesFetchCmd.Flags().BoolVar(&imagesRefresh, "refresh", false, "Ignore the cache and re-check plants that already have an image")
	imagesFetchCmd.Flags().Float64Var(&imagesRate, "rate", 1, "Requests per second to Wikimedia")
	imagesFetchCmd.Flags().BoolVar(&imagesJSON, "json", false, "Output JSON report")
}
