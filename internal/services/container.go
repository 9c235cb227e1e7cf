package services

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"

	"camdetect-ui/internal/config"
	"camdetect-ui/internal/preview"
	"camdetect-ui/internal/registry"
	"camdetect-ui/internal/services/detection"
	"camdetect-ui/internal/services/messaging"
	"camdetect-ui/internal/shell"
)

// ServiceContainer holds all services
type ServiceContainer struct {
	Config      *config.Config
	Metrics     *prometheus.Registry
	Registry    *registry.Client
	Shell       *shell.Shell
	DetectorSvc *detection.Service
	// Messaging is nil when NATS_URL is not configured or unreachable
	Messaging *messaging.Service
}

// NewServiceContainer wires the registry client, the page model and the
// optional event and health services
func NewServiceContainer(cfg *config.Config, shellOpts ...shell.Option) (*ServiceContainer, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	metrics, err := registry.NewMetrics(reg)
	if err != nil {
		return nil, fmt.Errorf("register registry metrics: %w", err)
	}

	client, err := registry.New(registry.Config{
		BaseURL:   cfg.BackendURL,
		Timeout:   cfg.RegistryTimeout,
		UserAgent: "camdetect-ui/" + cfg.Version,
		Metrics:   metrics,
	})
	if err != nil {
		return nil, err
	}

	// Initialize detector health probe; an empty URL disables it
	detectorSvc, err := detection.NewService(cfg.DetectorGRPCURL, cfg.DetectorProbeTimeout, cfg.DetectorCacheTTL)
	if err != nil {
		return nil, err
	}

	sc := &ServiceContainer{
		Config:      cfg,
		Metrics:     reg,
		Registry:    client,
		DetectorSvc: detectorSvc,
	}

	opts := []shell.Option{shell.WithConsoleID(cfg.ConsoleID)}
	if cfg.NatsURL != "" {
		msgSvc, err := messaging.NewService(cfg)
		if err != nil {
			// Events are best effort; the console works without them
			log.Warn().Err(err).Str("url", cfg.NatsURL).Msg("NATS unavailable, camera events disabled")
		} else {
			sc.Messaging = msgSvc
			opts = append(opts, shell.WithEvents(msgSvc))
		}
	}
	opts = append(opts, shellOpts...)

	sc.Shell = shell.New(client, opts...)
	return sc, nil
}

// WithDeleteActions is a convenience for web front ends that give each preview
// card a button opening its delete confirmation
func WithDeleteActions(action func(id string) string) shell.Option {
	return shell.WithPanelOptions(preview.WithDeleteAction(action))
}

// Shutdown gracefully shuts down all services
func (sc *ServiceContainer) Shutdown(ctx context.Context) error {
	if sc.Messaging != nil {
		if err := sc.Messaging.Shutdown(ctx); err != nil {
			return err
		}
	}

	if sc.DetectorSvc != nil {
		sc.DetectorSvc.Shutdown(ctx)
	}

	return nil
}
