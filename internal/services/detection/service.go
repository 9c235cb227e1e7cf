// Package detection reports whether the detection pipeline is serving. It
// probes the pipeline's standard gRPC health service and caches the answer so
// page renders do not hammer the pipeline.
package detection

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const (
	statusKey           = "detector_status"
	defaultProbeTimeout = 2 * time.Second
)

// State is the pipeline health as seen by the console
type State string

const (
	StateServing     State = "serving"
	StateNotServing  State = "not_serving"
	StateUnreachable State = "unreachable"
	StateDisabled    State = "disabled"
)

// Status is one probe result
type Status struct {
	State     State     `json:"state" example:"serving"`
	Target    string    `json:"target,omitempty" example:"localhost:50051"`
	Error     string    `json:"error,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

type Service struct {
	conn    *grpc.ClientConn
	client  healthpb.HealthClient
	grpcURL string
	timeout time.Duration
	cache   *cache.Cache

	mu sync.Mutex
}

// NewService creates a prober for grpcURL. An empty URL yields a service that
// always reports StateDisabled.
func NewService(grpcURL string, timeout, ttl time.Duration) (*Service, error) {
	s := &Service{
		grpcURL: grpcURL,
		timeout: timeout,
		cache:   cache.New(ttl, 2*ttl),
	}
	if grpcURL == "" {
		return s, nil
	}

	log.Info().Str("url", grpcURL).Msg("Initializing detector health probe")

	// NewClient does not dial; the first probe establishes the connection
	conn, err := grpc.NewClient(grpcURL, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("failed to create detector client: %w", err)
	}

	s.conn = conn
	s.client = healthpb.NewHealthClient(conn)
	return s, nil
}

// Status returns the cached probe result, probing when it has expired
func (s *Service) Status(ctx context.Context) Status {
	if s.client == nil {
		return Status{State: StateDisabled, CheckedAt: time.Now().UTC()}
	}

	if v, ok := s.cache.Get(statusKey); ok {
		return v.(Status)
	}

	// One probe at a time; concurrent callers reuse its result
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.cache.Get(statusKey); ok {
		return v.(Status)
	}

	st := s.probe(ctx)
	s.cache.SetDefault(statusKey, st)
	return st
}

// Invalidate drops the cached result
func (s *Service) Invalidate() {
	s.cache.Delete(statusKey)
}

// probe ignores the caller's cancellation; its result is cached and shared
func (s *Service) probe(ctx context.Context) Status {
	timeout := s.timeout
	if timeout <= 0 {
		timeout = defaultProbeTimeout
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	st := Status{Target: s.grpcURL, CheckedAt: time.Now().UTC()}

	resp, err := s.client.Check(ctx, &healthpb.HealthCheckRequest{})
	switch {
	case err != nil:
		st.State = StateUnreachable
		st.Error = err.Error()
		log.Warn().Err(err).Str("url", s.grpcURL).Msg("Detector health check failed")
	case resp.GetStatus() == healthpb.HealthCheckResponse_SERVING:
		st.State = StateServing
	default:
		st.State = StateNotServing
		log.Warn().Str("url", s.grpcURL).Str("status", resp.GetStatus().String()).Msg("Detector is not serving")
	}
	return st
}

func (s *Service) Shutdown(ctx context.Context) {
	if s.conn != nil {
		if err := s.conn.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close detector connection")
		}
	}
}
