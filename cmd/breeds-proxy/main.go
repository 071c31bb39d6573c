// Command breeds-proxy serves the breed catalog over HTTP, caching upstream
// results in memory, and offers one-shot list/get subcommands.
package main

import (
	"fmt"
	"os"

	"github.com/Sternrassler/breeds-proxy/internal/config"
	"github.com/Sternrassler/breeds-proxy/pkg/cache"
	"github.com/Sternrassler/breeds-proxy/pkg/client"
	"github.com/Sternrassler/breeds-proxy/pkg/logging"
	"github.com/Sternrassler/breeds-proxy/pkg/service"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// globalOptions are the persistent flags shared by every subcommand.
type globalOptions struct {
	configPath string
	logLevel   string
}

func main() {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:           "breeds-proxy",
		Short:         "Caching proxy for the breed catalog API",
		Long:          "Serve a paginated, searchable view of the upstream breed catalog with an in-memory TTL cache",
		Version:       config.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to YAML config file")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(serveCmd(opts))
	rootCmd.AddCommand(listCmd(opts))
	rootCmd.AddCommand(getCmd(opts))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig builds the configuration: defaults, then the config file,
// then environment, then command-line flags.
func loadConfig(opts *globalOptions) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if opts.configPath != "" {
		var err error
		cfg, err = config.LoadFromFile(opts.configPath)
		if err != nil {
			return nil, err
		}
	}

	if err := config.LoadFromEnv(cfg); err != nil {
		return nil, err
	}

	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// app owns the components wired from one configuration.
type app struct {
	cfg    *config.Config
	logger zerolog.Logger
	client *client.Client
	store  *cache.Store
	svc    *service.Service
}

// newApp sets up logging and wires client, cache and service.
func newApp(cfg *config.Config) (*app, error) {
	logger := logging.Setup(cfg.LoggerConfig())

	upstream, err := client.New(cfg.ClientConfig())
	if err != nil {
		return nil, fmt.Errorf("create upstream client: %w", err)
	}

	store := cache.NewStore(cfg.CacheStoreConfig())

	svc, err := service.New(service.Config{
		Fetcher: upstream,
		Cache:   store,
		TTL:     cfg.Cache.TTL,
	})
	if err != nil {
		store.Close()
		upstream.Close()
		return nil, fmt.Errorf("create service: %w", err)
	}

	return &app{
		cfg:    cfg,
		logger: logger,
		client: upstream,
		store:  store,
		svc:    svc,
	}, nil
}

// Close stops the cache janitor and releases upstream connections.
func (a *app) Close() {
	a.store.Close()
	a.client.Close()
}
