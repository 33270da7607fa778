package cli

import (
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/emotionflow/emotion-timeline/metrics"
	"github.com/emotionflow/emotion-timeline/models"
	"github.com/emotionflow/emotion-timeline/orchestrator"
	"github.com/emotionflow/emotion-timeline/server"
)

func (a *app) serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the dashboard",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr != "" {
				a.cfg.Server.Addr = addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			m := metrics.New()
			loader := models.NewLoader(a.cfg)
			if _, err := loader.Load(); err != nil {
				log.Warn("serving without a classifier, analysis is disabled until the configuration is fixed")
			}
			srv, err := server.New(a.cfg, orchestrator.NewPipeline(a.cfg, loader, m), m)
			if err != nil {
				return err
			}
			return srv.Run(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides server.addr")
	return cmd
}
