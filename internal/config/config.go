package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	// Application
	Version     string
	Environment string
	ConsoleID   string
	Host        string
	Port        int
	LogLevel    string

	// Logdy (lightweight web log viewer)
	LogdyEnabled bool
	LogdyHost    string
	LogdyPort    int

	// Camera registry backend
	// Default: http://localhost:8000 (detection backend dev server)
	BackendURL string
	// 0 disables the client timeout; requests then only end with their context
	RegistryTimeout time.Duration

	// NATS (roster change events). Empty URL disables publishing.
	NatsURL            string
	NatsConnectTimeout time.Duration
	NatsReconnectWait  time.Duration
	NatsMaxReconnects  int
	EventsSubject      string

	// Detection pipeline gRPC health probe. Empty URL disables probing.
	DetectorGRPCURL      string
	DetectorProbeTimeout time.Duration
	DetectorCacheTTL     time.Duration

	// Swagger Configuration
	SwaggerHost string

	// Graceful Shutdown
	ShutdownTimeout time.Duration
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("version", "1.0.0")
	v.SetDefault("environment", "development")
	v.SetDefault("console_id", "console-1")
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("port", 8080)
	v.SetDefault("log_level", "info")

	v.SetDefault("logdy_enabled", false)
	v.SetDefault("logdy_host", "localhost")
	v.SetDefault("logdy_port", 8081)

	v.SetDefault("backend_url", "http://localhost:8000")
	v.SetDefault("registry_timeout", time.Duration(0))

	v.SetDefault("nats_url", "")
	v.SetDefault("nats_connect_timeout", 10*time.Second)
	v.SetDefault("nats_reconnect_wait", 2*time.Second)
	v.SetDefault("nats_max_reconnects", -1) // -1 = unlimited
	v.SetDefault("events_subject", "cameras")

	v.SetDefault("detector_grpc_url", "")
	v.SetDefault("detector_probe_timeout", 3*time.Second)
	v.SetDefault("detector_cache_ttl", 15*time.Second)

	v.SetDefault("swagger_host", "localhost:8080")

	v.SetDefault("shutdown_timeout", 10*time.Second)
}

// Override adjusts a loaded configuration before it is validated, e.g. from
// command line flags
type Override func(*Config)

// WithBackendURL overrides the registry base URL when url is not empty
func WithBackendURL(url string) Override {
	return func(c *Config) {
		if url != "" {
			c.BackendURL = strings.TrimRight(url, "/")
		}
	}
}

// WithLogLevel overrides the log level when level is not empty
func WithLogLevel(level string) Override {
	return func(c *Config) {
		if level != "" {
			c.LogLevel = level
		}
	}
}

// Load reads .env, the environment and an optional YAML config file, applies
// overrides, then validates the result once. Environment variables win over
// the file; overrides win over both.
func Load(cfgFile string, overrides ...Override) (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("No .env file found or error loading .env file, using environment variables and defaults")
	} else {
		log.Info().Msg("Loaded configuration from .env file")
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", cfgFile, err)
		}
		log.Info().Str("file", v.ConfigFileUsed()).Msg("Loaded configuration file")
	}

	cfg := &Config{
		// Application
		Version:     v.GetString("version"),
		Environment: v.GetString("environment"),
		ConsoleID:   v.GetString("console_id"),
		Host:        v.GetString("host"),
		Port:        v.GetInt("port"),
		LogLevel:    v.GetString("log_level"),

		// Logdy
		LogdyEnabled: v.GetBool("logdy_enabled"),
		LogdyHost:    v.GetString("logdy_host"),
		LogdyPort:    v.GetInt("logdy_port"),

		// Registry backend
		BackendURL:      strings.TrimRight(v.GetString("backend_url"), "/"),
		RegistryTimeout: v.GetDuration("registry_timeout"),

		// NATS
		NatsURL:            getNatsURL(v),
		NatsConnectTimeout: v.GetDuration("nats_connect_timeout"),
		NatsReconnectWait:  v.GetDuration("nats_reconnect_wait"),
		NatsMaxReconnects:  v.GetInt("nats_max_reconnects"),
		EventsSubject:      v.GetString("events_subject"),

		// Detector health
		DetectorGRPCURL:      v.GetString("detector_grpc_url"),
		DetectorProbeTimeout: v.GetDuration("detector_probe_timeout"),
		DetectorCacheTTL:     v.GetDuration("detector_cache_ttl"),

		SwaggerHost: v.GetString("swagger_host"),

		ShutdownTimeout: v.GetDuration("shutdown_timeout"),
	}

	for _, override := range overrides {
		override(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks the values the console cannot start without
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.BackendURL == "" {
		return fmt.Errorf("backend url is required")
	}
	if !strings.HasPrefix(c.BackendURL, "http://") && !strings.HasPrefix(c.BackendURL, "https://") {
		return fmt.Errorf("backend url must be http(s): %s", c.BackendURL)
	}
	if c.RegistryTimeout < 0 {
		return fmt.Errorf("registry timeout must not be negative: %s", c.RegistryTimeout)
	}
	return nil
}

// ServerAddress returns the listen address of the web console
func (c *Config) ServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Helper functions for Docker environment detection
func isRunningInDocker() bool {
	if os.Getenv("DOCKER_CONTAINER") == "true" {
		return true
	}

	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true
	}

	return false
}

// getNatsURL returns the configured NATS URL. NATS_URL=auto picks the
// Docker Compose service name or localhost depending on the environment.
func getNatsURL(v *viper.Viper) string {
	url := v.GetString("nats_url")
	if url != "auto" {
		return url
	}

	if isRunningInDocker() {
		return "nats://nats:4222"
	}

	return "nats://localhost:4222"
}
