package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackielii/spaview/internal/artists"
	"github.com/jackielii/spaview/internal/config"
	"github.com/jackielii/spaview/internal/metrics"
	"github.com/jackielii/spaview/internal/shell"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func serveCmd(root *rootOptions) *cobra.Command {
	var (
		port         int
		mode         string
		distDir      string
		devProxy     string
		strictRoutes bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the application",
		Long: `Serve the application.

In production mode the built assets in the dist directory are served and any
other path gets index.html. In development mode requests are proxied to the
bundler dev server given by --dev-proxy, or served from the dist directory
with live reload when no proxy is set.

PORT, APP_ENV (or NODE_ENV), DIST_DIR and DEV_PROXY override the config file;
flags override both.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(root.configPath, nil)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("port") {
				cfg.Port = port
			}
			if flags.Changed("mode") {
				cfg.Mode = config.ParseMode(mode)
			}
			if flags.Changed("dist") {
				cfg.DistDir = distDir
			}
			if flags.Changed("dev-proxy") {
				cfg.DevProxy = devProxy
			}
			if flags.Changed("strict-routes") {
				cfg.StrictRoutes = strictRoutes
			}
			if root.logLevel != "" {
				cfg.LogLevel = root.logLevel
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger, err := newLogger(cfg.Mode, cfg.LogLevel)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			table, err := artists.Table(artists.Options{Latency: cfg.ViewLatency.Duration})
			if err != nil {
				return err
			}
			srv, err := shell.New(cfg, table,
				shell.WithLogger(logger),
				shell.WithMetrics(metrics.New("artistd")),
			)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if err := srv.Run(ctx); err != nil {
				logger.Error("server stopped", zap.Error(err))
				return err
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", config.DefaultPort, "port to listen on")
	cmd.Flags().StringVar(&mode, "mode", string(config.ModeDevelopment), "development or production")
	cmd.Flags().StringVar(&distDir, "dist", "dist", "directory with the built assets")
	cmd.Flags().StringVar(&devProxy, "dev-proxy", "", "bundler dev server URL (development mode)")
	cmd.Flags().BoolVar(&strictRoutes, "strict-routes", false, "answer 404 for paths the route table does not match")
	return cmd
}
