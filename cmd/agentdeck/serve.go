package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	appconfig "github.com/agentdeckhq/agentdeck/pkg/config"
	"github.com/agentdeckhq/agentdeck/pkg/logger"
	"github.com/agentdeckhq/agentdeck/pkg/presenter"
	"github.com/agentdeckhq/agentdeck/pkg/project"
	"github.com/agentdeckhq/agentdeck/pkg/server"
	"github.com/agentdeckhq/agentdeck/pkg/telemetry"
	"github.com/agentdeckhq/agentdeck/pkg/version"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the localhost API server for the desktop frontend",
	Long: `Serve starts the JSON API the Agent Deck frontend talks to. It binds
to localhost only; the desktop shell is the intended client.`,
	Run: func(cmd *cobra.Command, _ []string) {
		if err := runServe(cmd.Context(), cmd); err != nil {
			presenter.Error(err, "Server exited with an error")
			os.Exit(1)
		}
	},
}

func init() {
	serveCmd.Flags().String("host", "", "Host to bind (default from config)")
	serveCmd.Flags().Int("port", 0, "Port to bind (default from config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(ctx context.Context, cmd *cobra.Command) error {
	cfg, err := appconfig.Load()
	if err != nil {
		return err
	}
	if host, err := cmd.Flags().GetString("host"); err == nil && host != "" {
		cfg.Server.Host = host
	}
	if port, err := cmd.Flags().GetInt("port"); err == nil && port != 0 {
		cfg.Server.Port = port
	}

	shutdownTracer, err := telemetry.InitTracer(ctx, telemetry.Config{
		Enabled:        cfg.Tracing.Enabled,
		ServiceName:    "agentdeck",
		ServiceVersion: version.Get().Version,
		SamplerType:    cfg.Tracing.SamplerType,
		SamplerRatio:   cfg.Tracing.SamplerRatio,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			logger.G(ctx).WithError(err).Warn("Failed to shut down tracer")
		}
	}()

	cat, err := loadCatalog(ctx)
	if err != nil {
		return err
	}

	scanner, err := project.NewScanner()
	if err != nil {
		return err
	}

	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	srv, err := server.New(&server.Config{
		Host: cfg.Server.Host,
		Port: cfg.Server.Port,
	}, cat, scanner, st)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(ctx)
	}()

	select {
	case <-ctx.Done():
		logger.G(ctx).Info("Shutting down")
		return srv.Stop(context.Background())
	case err := <-errCh:
		return err
	}
}
