package garden

import (
	"database/sql"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/plotwise/garden/internal/config"
	"github.com/plotwise/garden/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the planting calculator and calendar over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("addr") {
			cfg.Server.Addr = serveAddr
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		logger, err := newLogger()
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		if cfg.Server.Environment != config.EnvDevelopment {
			gin.SetMode(gin.ReleaseMode)
		}
		metrics, err := server.NewMetrics(nil)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return withDB(func(sqldb *sql.DB) error {
			srv := server.New(sqldb, cfg.Server, logger, metrics)
			logger.Info("starting garden api",
				zap.String("addr", cfg.Server.Addr),
				zap.String("environment", cfg.Server.Environment),
				zap.Bool("force_https", cfg.Server.ForceHTTPS))
			return server.Run(ctx, cfg.Server.Addr, srv.Handler(), logger)
		})
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides server.addr)")
}
