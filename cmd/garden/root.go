package garden

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/plotwise/garden/internal/app"
	"github.com/plotwise/garden/internal/config"
)

var (
	dbPath     string
	configPath string
	logLevel   string

	cfg config.Config
)

var rootCmd = &cobra.Command{
	Use:   "garden",
	Short: "garden plans planting dates from your local frost dates",
	Long:  "garden is a local-first planting calendar: it keeps the plants you grow and your frost dates, and works out when to sow, plant out and plant in autumn.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig(cmd)
	},
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to SQLite database")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
}

func loadConfig(cmd *cobra.Command) error {
	overrides := map[string]any{}
	if cmd.Flags().Changed("db") {
		overrides["db"] = dbPath
	}
	if cmd.Flags().Changed("log-level") {
		overrides["log_level"] = logLevel
	}
	defaultFile, err := app.DefaultConfigPath()
	if err != nil {
		defaultFile = ""
	}
	loaded, err := config.Load(config.LoadOptions{
		File:        configPath,
		DefaultFile: defaultFile,
		Overrides:   overrides,
	})
	if err != nil {
		return err
	}
	cfg = loaded
	return nil
}
