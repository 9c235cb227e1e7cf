package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"camdetect-ui/internal/config"
	"camdetect-ui/internal/models"
)

// ErrNotConnected is returned when publishing without a live connection
var ErrNotConnected = errors.New("nats connection is not available")

// conn is the part of *nats.Conn the service uses
type conn interface {
	Publish(subject string, data []byte) error
	IsConnected() bool
	Drain() error
	Close()
}

type Service struct {
	conn    conn
	subject string
}

func NewService(cfg *config.Config) (*Service, error) {
	opts := []nats.Option{
		nats.Name("camdetect-ui-" + cfg.ConsoleID),
		nats.Timeout(cfg.NatsConnectTimeout),
		nats.ReconnectWait(cfg.NatsReconnectWait),
		nats.MaxReconnects(cfg.NatsMaxReconnects),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
	}

	nc, err := nats.Connect(cfg.NatsURL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to nats %s: %w", cfg.NatsURL, err)
	}

	log.Info().Str("url", cfg.NatsURL).Str("subject", cfg.EventsSubject).Msg("NATS connection established")

	return newService(nc, cfg.EventsSubject), nil
}

func newService(c conn, subject string) *Service {
	if subject == "" {
		subject = "cameras"
	}
	return &Service{conn: c, subject: subject}
}

// Subject returns the subject events of type t are published on
func (s *Service) Subject(t models.CameraEventType) string {
	return s.subject + "." + string(t)
}

// PublishCameraEvent publishes event as JSON on <subject>.<type>
func (s *Service) PublishCameraEvent(event models.CameraEvent) error {
	if !s.IsConnected() {
		return ErrNotConnected
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode camera event: %w", err)
	}

	subject := s.Subject(event.Type)
	if err := s.conn.Publish(subject, payload); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}

	log.Debug().Str("subject", subject).Str("camera_id", event.Camera.ID).Msg("Camera event published")
	return nil
}

func (s *Service) IsConnected() bool {
	return s.conn != nil && s.conn.IsConnected()
}

func (s *Service) Shutdown(ctx context.Context) error {
	if s.conn != nil {
		// Try graceful drain, fallback to immediate close
		if err := s.conn.Drain(); err != nil {
			log.Warn().Err(err).Msg("Failed to drain NATS connection gracefully, closing immediately")
			s.conn.Close()
		}
	}
	return nil
}
