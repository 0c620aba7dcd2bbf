package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"onlinewatch/internal/config"
	"onlinewatch/internal/log"
	"onlinewatch/internal/relay"
	"onlinewatch/internal/server"
)

const shutdownTimeout = 5 * time.Second

func newServeCommand(root *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the poller with the HTTP API and optional MQTT relay",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := root.load(cmd.Flags())
			if err != nil {
				return err
			}
			defer log.Sync(logger)
			if cmd.Flags().Changed("addr") {
				cfg.ListenAddr = addr
			}
			return runServe(cmd.Context(), cfg, logger)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "Address for the web server; overrides listen_addr.")
	return cmd
}

func runServe(ctx context.Context, cfg config.Config, logger log.Logger) error {
	rt, err := newRuntime(cfg, logger)
	if err != nil {
		return err
	}
	defer rt.Close()

	srv := server.New(cfg.ListenAddr, rt.app, rt.poller, rt.history, rt.registry)

	if cfg.Poll.AttachOnStart {
		rt.app.Lifecycle().Pin()
		rt.poller.Attach()
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("onlinewatch listening", "addr", cfg.ListenAddr, "interval", cfg.Poll.IntervalSeconds,
			"installation", rt.app.InstallationID())
		if err := srv.Run(); err != nil && !server.IsClosed(err) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		rt.poller.Stop()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error(err, "server shutdown")
		}
		return nil
	})
	if cfg.MQTT.Enabled {
		r := relay.NewMQTTRelay(cfg.MQTT, rt.app.InstallationID(), rt.app.Bus(), logger.WithName("relay").Logr())
		g.Go(func() error {
			return r.Run(ctx)
		})
	}

	err = g.Wait()
	logger.Info("onlinewatch stopped")
	return err
}
