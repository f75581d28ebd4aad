package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/greenpill-dev-guild/garden-indexer/internal/config"
	"github.com/greenpill-dev-guild/garden-indexer/internal/decoder"
	"github.com/greenpill-dev-guild/garden-indexer/internal/materialize"
	"github.com/greenpill-dev-guild/garden-indexer/internal/metrics"
	"github.com/greenpill-dev-guild/garden-indexer/internal/pipeline"
	"github.com/greenpill-dev-guild/garden-indexer/internal/projection"
	"github.com/greenpill-dev-guild/garden-indexer/internal/store"
	"github.com/greenpill-dev-guild/garden-indexer/pkg/utils"
)

// AppVersion contains the application version
const AppVersion = "1.0.0"

// Application wires the indexer's components together
type Application struct {
	config      *config.Config
	store       store.EntityStore
	metrics     *metrics.Manager
	engine      *materialize.Engine
	coordinator *pipeline.Coordinator
	server      *projection.HTTPServer
	ctx         context.Context
	cancel      context.CancelFunc
}

// NewApplication creates a new application instance
func NewApplication(cfg *config.Config) (*Application, error) {
	ctx, cancel := context.WithCancel(context.Background())

	app := &Application{
		config: cfg,
		ctx:    ctx,
		cancel: cancel,
	}

	logCfg := cfg.Logging
	if err := utils.InitLogger(logCfg.Level, logCfg.Format, logCfg.Output, logCfg.File); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := app.initializeComponents(); err != nil {
		cancel()
		return nil, err
	}

	return app, nil
}

// initializeComponents initializes storage, engine, pipeline and server
func (app *Application) initializeComponents() error {
	logger := utils.GetLogger()
	logger.Info("Initializing indexer components")

	entityStore, err := store.NewEntityStore(&store.Config{
		Type:             app.config.Storage.Type,
		ConnectionString: app.config.Storage.ConnectionString,
		MaxConnections:   app.config.Storage.MaxConnections,
		MaxIdleTime:      app.config.Storage.MaxIdleTime,
	})
	if err != nil {
		return fmt.Errorf("failed to create entity store: %w", err)
	}
	if err := entityStore.Connect(); err != nil {
		return fmt.Errorf("failed to connect to entity store: %w", err)
	}
	if err := entityStore.Migrate(); err != nil {
		return fmt.Errorf("failed to run store migrations: %w", err)
	}
	app.store = entityStore

	app.metrics = metrics.NewManager()
	app.engine = materialize.NewEngine(app.store, app.metrics)

	app.coordinator = pipeline.NewCoordinator(decoder.NewEventDecoder(), app.engine, app.metrics)
	for _, chain := range app.config.Chains {
		src := pipeline.NewChannelSource(chain.ID, chain.BufferSize)
		if err := app.coordinator.AddSource(src); err != nil {
			return fmt.Errorf("failed to register chain %d: %w", chain.ID, err)
		}
	}

	serverCfg := &projection.ServerConfig{
		Port:         app.config.Server.Port,
		Host:         app.config.Server.Host,
		ReadTimeout:  app.config.Server.ReadTimeout,
		WriteTimeout: app.config.Server.WriteTimeout,
	}
	app.server = projection.NewHTTPServer(serverCfg, projection.New(app.store), app.coordinator, app.metrics)

	logger.Info("All components initialized")
	return nil
}

// Start starts the pipeline and the query API
func (app *Application) Start() error {
	if err := app.coordinator.Start(app.ctx); err != nil {
		return fmt.Errorf("failed to start pipeline: %w", err)
	}
	if err := app.server.Start(); err != nil {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	return nil
}

// Stop shuts everything down in reverse order
func (app *Application) Stop() {
	logger := utils.GetLogger()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.server.Stop(shutdownCtx); err != nil {
		logger.WithError(err).Warn("HTTP server shutdown error")
	}
	if err := app.coordinator.Stop(); err != nil {
		logger.WithError(err).Warn("Pipeline shutdown error")
	}
	if err := app.store.Close(); err != nil {
		logger.WithError(err).Warn("Store close error")
	}

	app.cancel()
}

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:     "garden-indexer",
		Short:   "Multi-chain garden event indexer",
		Long:    "Consumes on-chain garden and action events, materializes them into queryable entities, and serves them over HTTP.",
		Version: AppVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}

			app, err := NewApplication(cfg)
			if err != nil {
				return err
			}

			if err := app.Start(); err != nil {
				return err
			}

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
			<-sigChan

			app.Stop()
			return nil
		},
	}

	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
