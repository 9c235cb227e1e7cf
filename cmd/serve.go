package cmd

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"camdetect-ui/internal/api"
	"camdetect-ui/internal/api/handlers"
	"camdetect-ui/internal/logging"
	"camdetect-ui/internal/services"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the web console",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.serve(cmd.Context())
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	cfg := a.cfg

	if cfg.LogdyEnabled {
		w, url, err := logging.StartLogdy(cfg)
		if err != nil {
			log.Warn().Err(err).Msg("Logdy disabled")
		} else {
			logging.Setup(cfg.LogLevel, w)
			log.Info().Str("url", url).Msg("Logs mirrored to Logdy")
		}
	}

	log.Info().
		Str("console_id", cfg.ConsoleID).
		Str("version", cfg.Version).
		Str("environment", cfg.Environment).
		Str("backend", cfg.BackendURL).
		Int("port", cfg.Port).
		Bool("events", cfg.NatsURL != "").
		Bool("detector_probe", cfg.DetectorGRPCURL != "").
		Msg("Starting camera detection console")

	container, err := services.NewServiceContainer(cfg, services.WithDeleteActions(handlers.DeleteRequestAction))
	if err != nil {
		return err
	}

	server := api.NewServer(cfg, container)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		// Listener failed before any shutdown was requested
		_ = container.Shutdown(context.Background())
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("Shutdown signal received")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
		return err
	}
	<-errCh
	log.Info().Msg("Server shutdown complete")
	return nil
}
