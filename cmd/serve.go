package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/star-engine/internal/engine"
	"github.com/sells-group/star-engine/internal/monitoring"
	"github.com/sells-group/star-engine/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP decision server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if servePort != 0 {
			cfg.Server.Port = servePort
		}

		protocol, err := buildProtocol()
		if err != nil {
			return err
		}

		recorder := monitoring.NewRecorder()
		checker := monitoring.NewChecker(recorder, monitoring.NewAlerter(cfg.Monitoring), cfg.Monitoring)
		go checker.Run(ctx)

		srv := server.New(cfg, engine.New(cfg.Engine), protocol, recorder)

		zap.L().Info("engine configured",
			zap.Float64("density_threshold", cfg.Engine.DensityThreshold),
			zap.Float64("qci_target", cfg.Engine.QCITarget),
		)
		return srv.ListenAndServe(ctx)
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
