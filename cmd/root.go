package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"camdetect-ui/internal/config"
	"camdetect-ui/internal/logging"
	"camdetect-ui/internal/registry"
)

// app holds the global flags and the configuration they produce
type app struct {
	cfgFile    string
	backendURL string
	logLevel   string

	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "camdetect-ui",
		Short: "Camera management console for the detection backend",
		Long: `Register cameras with the detection backend, remove them, and watch
their live streams from a browser.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.loadConfig,
	}

	rootCmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (YAML, optional)")
	rootCmd.PersistentFlags().StringVar(&a.backendURL, "backend", "", "camera registry base URL (overrides BACKEND_URL)")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides LOG_LEVEL)")

	rootCmd.AddCommand(newServeCmd(a))
	rootCmd.AddCommand(newCamerasCmd(a))
	return rootCmd
}

func (a *app) loadConfig(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.cfgFile,
		config.WithBackendURL(a.backendURL),
		config.WithLogLevel(a.logLevel),
	)
	if err != nil {
		return err
	}

	logging.Setup(cfg.LogLevel)
	a.cfg = cfg
	return nil
}

func (a *app) registryClient() (*registry.Client, error) {
	return registry.New(registry.Config{
		BaseURL:   a.cfg.BackendURL,
		Timeout:   a.cfg.RegistryTimeout,
		UserAgent: "camdetect-ui/" + a.cfg.Version,
	})
}

// Execute runs the CLI until it finishes or the process is interrupted
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
