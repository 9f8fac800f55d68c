package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/city-events/internal/config"
	"github.com/pfrederiksen/city-events/internal/logger"
	"github.com/pfrederiksen/city-events/internal/metrics"
	"github.com/pfrederiksen/city-events/internal/notifier"
	"github.com/pfrederiksen/city-events/internal/pipeline"
	"github.com/pfrederiksen/city-events/internal/source"
	"github.com/pfrederiksen/city-events/internal/storage"
)

const (
	ExitSuccess   = 0
	ExitError     = 1
	ExitNewEvents = 2
)

// ExitCodeError ends a command with a specific process exit code
type ExitCodeError struct {
	Code int
}

func (e *ExitCodeError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}

type globalFlags struct {
	configPath string
	verbose    bool
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	g := &globalFlags{}

	cmd := &cobra.Command{
		Use:   "city-events",
		Short: "Discover city events and track them across scrapes",
		Long: `A service that scrapes event listings for a fixed set of cities,
reconciles them with the stored catalogue and serves them over a REST API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&g.configPath, "config", "", "Path to a YAML config file (defaults to the built-in catalogue)")
	cmd.PersistentFlags().BoolVar(&g.verbose, "verbose", false, "Enable verbose logging")

	cmd.AddCommand(
		newServeCmd(g),
		newScrapeCmd(g),
		newEventsCmd(g),
		newTokenCmd(g),
	)

	return cmd
}

// app holds the collaborators shared by the subcommands
type app struct {
	cfg     *config.Config
	log     *logger.Logger
	store   storage.Store
	metrics *metrics.Recorder
	catalog source.Catalog
}

// loadConfig reads the configuration and builds the logger
func (g *globalFlags) loadConfig(stderr io.Writer) (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return nil, nil, err
	}

	level, err := logger.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return nil, nil, err
	}
	if g.verbose {
		level = logger.LevelDebug
	}
	log := logger.New(level, stderr)
	logger.SetDefault(log)

	return cfg, log, nil
}

// open loads the configuration and opens the store and the catalogue.
// Callers must Close the store.
func (g *globalFlags) open(stderr io.Writer) (*app, error) {
	cfg, log, err := g.loadConfig(stderr)
	if err != nil {
		return nil, err
	}

	catalog, err := cfg.Catalog(cfg.SourceOptions())
	if err != nil {
		return nil, fmt.Errorf("building source catalogue: %w", err)
	}

	store, err := storage.Open(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("initializing storage: %w", err)
	}

	log.Debug("Configuration loaded", logger.Fields{
		"config":  cfg.String(),
		"sources": catalog.Len(),
	})

	return &app{
		cfg:     cfg,
		log:     log,
		store:   store,
		metrics: metrics.New(),
		catalog: catalog,
	}, nil
}

// engine builds the reconciliation engine with the configured announcer
func (rt *app) engine() (*pipeline.Engine, error) {
	n, err := notifier.New(rt.cfg.Notify.Kind, rt.log)
	if err != nil {
		return nil, fmt.Errorf("initializing notifier: %w", err)
	}

	return pipeline.New(rt.store, pipeline.Options{
		SerializeWrites: rt.cfg.Scrape.SerializeWrites,
		Notifier:        n,
		Metrics:         rt.metrics,
		Logger:          rt.log,
	}), nil
}

func (rt *app) close() {
	if err := rt.store.Close(); err != nil {
		rt.log.Warn("Closing store failed", logger.Fields{"error": err.Error()})
	}
}

// Execute runs the CLI
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		var exit *ExitCodeError
		if errors.As(err, &exit) {
			os.Exit(exit.Code)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
}
